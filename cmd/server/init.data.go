package main

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	tenantmodels "resto_commerce/internal/api/tenant/models"
	tenantsvc "resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/global"
	"resto_commerce/internal/logger"
)

// InitDefaultData seed một cửa hàng demo khi chạy ở chế độ INITMODE.
// Upsert theo slug nên chạy lại nhiều lần không tạo bản ghi trùng.
func InitDefaultData() {
	log := logger.GetAppLogger()

	if !global.ServerConfig.InitMode {
		return
	}
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	tenantService := tenantsvc.NewTenantService()

	demo := tenantmodels.Tenant{
		Name:     "Quán Demo",
		Slug:     "demo",
		Timezone: "Europe/Madrid",
		OpeningHours: map[string]tenantmodels.OpeningHours{
			"Monday":    {Open: "09:00", Close: "22:00"},
			"Tuesday":   {Open: "09:00", Close: "22:00"},
			"Wednesday": {Open: "09:00", Close: "22:00"},
			"Thursday":  {Open: "09:00", Close: "22:00"},
			"Friday":    {Open: "09:00", Close: "23:00"},
			"Saturday":  {Open: "10:00", Close: "23:00"},
			"Sunday":    {Closed: true},
		},
		DeliveryTypes:  []tenantmodels.DeliveryType{tenantmodels.DeliveryPickup, tenantmodels.DeliveryShipping},
		PaymentMethods: []tenantmodels.PaymentMethod{tenantmodels.PaymentCash, tenantmodels.PaymentCardInPerson},
		DeliveryPricing: tenantmodels.DeliveryPricing{
			Mode:          tenantmodels.DeliveryPricingFreeThreshold,
			Fee:           2.5,
			FreeThreshold: 25,
		},
		SubscriptionTier: tenantmodels.TierFree,
	}

	if _, err := tenantService.Upsert(context.TODO(), bson.M{"slug": demo.Slug}, demo); err != nil {
		log.WithError(err).Error("❌ [INIT] Failed to seed demo tenant")
		return
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
