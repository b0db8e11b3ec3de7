// Package handler chứa HTTP handler cho tenant.
package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "resto_commerce/internal/api/base/handler"
	"resto_commerce/internal/api/tenant/models"
	"resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/common"
)

// TenantHandler xử lý các request liên quan đến cấu hình cửa hàng.
type TenantHandler struct {
	basehdl.BaseHandler[models.Tenant]
	TenantService *service.TenantService
}

// NewTenantHandler tạo mới TenantHandler.
func NewTenantHandler() *TenantHandler {
	svc := service.NewTenantService()
	h := &TenantHandler{TenantService: svc}
	h.BaseService = svc.BaseServiceMongoImpl
	return h
}

// FindBySlug trả về cấu hình public của cửa hàng theo slug (path param :slug).
func (h *TenantHandler) FindBySlug(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		slug := c.Params("slug")
		if slug == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		tenant, err := h.TenantService.FindBySlug(c.Context(), slug)
		basehdl.HandleResponse(c, tenant, err)
		return nil
	})
}

// Status trả về trạng thái nhận đơn hiện tại của cửa hàng:
// đang mở cửa theo khung giờ, có bị tạm dừng không và các hình thức nhận hàng đang bật.
func (h *TenantHandler) Status(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		slug := c.Params("slug")
		if slug == "" {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		tenant, err := h.TenantService.FindBySlug(c.Context(), slug)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		open := service.IsOpenAt(tenant, time.Now())
		basehdl.HandleResponse(c, fiber.Map{
			"open":           open,
			"paused":         tenant.Paused,
			"accepting":      open && !tenant.Paused,
			"deliveryTypes":  tenant.DeliveryTypes,
			"paymentMethods": tenant.PaymentMethods,
			"onlinePayment":  tenant.OnlinePayment,
		}, nil)
		return nil
	})
}
