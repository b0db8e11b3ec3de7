package service

import (
	"testing"

	tenantmodels "resto_commerce/internal/api/tenant/models"
)

func TestDeliverySurcharge(t *testing.T) {
	threshold := tenantmodels.DeliveryPricing{
		Mode:          tenantmodels.DeliveryPricingFreeThreshold,
		Fee:           3.5,
		FreeThreshold: 25,
	}

	tests := []struct {
		name         string
		policy       tenantmodels.DeliveryPricing
		deliveryType tenantmodels.DeliveryType
		subtotal     float64
		want         float64
	}{
		{"free luôn 0", tenantmodels.DeliveryPricing{Mode: tenantmodels.DeliveryPricingFree, Fee: 3.5}, tenantmodels.DeliveryShipping, 10, 0},
		{"fixed thu đúng phí", tenantmodels.DeliveryPricing{Mode: tenantmodels.DeliveryPricingFixed, Fee: 3.5}, tenantmodels.DeliveryShipping, 10, 3.5},
		{"dưới ngưỡng thu phí", threshold, tenantmodels.DeliveryShipping, 24.99, 3.5},
		{"đúng ngưỡng miễn phí", threshold, tenantmodels.DeliveryShipping, 25, 0},
		{"vượt ngưỡng miễn phí", threshold, tenantmodels.DeliveryShipping, 40, 0},
		{"pickup không thu phí", tenantmodels.DeliveryPricing{Mode: tenantmodels.DeliveryPricingFixed, Fee: 3.5}, tenantmodels.DeliveryPickup, 10, 0},
		{"dine-in không thu phí", threshold, tenantmodels.DeliveryDineIn, 10, 0},
		{"mode không khai báo coi như free", tenantmodels.DeliveryPricing{Fee: 3.5}, tenantmodels.DeliveryShipping, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeliverySurcharge(tt.policy, tt.deliveryType, tt.subtotal)
			if got != tt.want {
				t.Errorf("DeliverySurcharge() = %v, muốn %v", got, tt.want)
			}
		})
	}
}
