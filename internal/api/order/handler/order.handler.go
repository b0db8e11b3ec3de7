// Package handler chứa HTTP handler cho đơn hàng và giới hạn đơn.
package handler

import (
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "resto_commerce/internal/api/base/handler"
	"resto_commerce/internal/api/middleware"
	"resto_commerce/internal/api/order/models"
	"resto_commerce/internal/api/order/service"
	tenantsvc "resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/common"
)

// OrderHandler xử lý request đơn hàng.
type OrderHandler struct {
	basehdl.BaseHandler[models.Order]
	OrderService  *service.OrderService
	TenantService *tenantsvc.TenantService
}

// NewOrderHandler tạo mới OrderHandler.
func NewOrderHandler() *OrderHandler {
	svc := service.NewOrderService()
	h := &OrderHandler{
		OrderService:  svc,
		TenantService: tenantsvc.NewTenantService(),
	}
	h.BaseService = svc.BaseServiceMongoImpl
	return h
}

// LimitStatus trả về trạng thái giới hạn đơn hàng hiện tại của cửa hàng.
// Storefront poll endpoint này (hoặc nghe event) để cập nhật gate phía client.
func (h *OrderHandler) LimitStatus(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		tenant, err := h.TenantService.FindOne(c.Context(), bson.M{"_id": tenantID}, nil)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		status, err := h.OrderService.Limits().Status(c.Context(), tenant)
		basehdl.HandleResponse(c, status, err)
		return nil
	})
}

// UpdateStatus cập nhật trạng thái đơn hàng (back-office).
func (h *OrderHandler) UpdateStatus(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		orderID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		var input struct {
			Status models.OrderStatus `json:"status" validate:"required,oneof=pending confirmed rejected done"`
		}
		if err := h.ParseRequestBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		order, err := h.OrderService.UpdateStatus(c.Context(), tenantID, orderID, input.Status)
		basehdl.HandleResponse(c, order, err)
		return nil
	})
}
