// Package handler chứa HTTP handler cho checkout.
// Mỗi request submit dựng một orchestrator mới: máy trạng thái sống trong
// một lần gọi, còn thông tin khách nhập do client giữ và gửi lại đầy đủ.
package handler

import (
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "resto_commerce/internal/api/base/handler"
	"resto_commerce/internal/api/checkout/dto"
	"resto_commerce/internal/api/checkout/service"
	"resto_commerce/internal/api/middleware"
	tenantmodels "resto_commerce/internal/api/tenant/models"
	tenantsvc "resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/common"
)

// CheckoutHandler xử lý request checkout.
type CheckoutHandler struct {
	TenantService *tenantsvc.TenantService
	deps          service.Deps
}

// NewCheckoutHandler tạo mới CheckoutHandler với collaborator thật trên MongoDB.
func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{
		TenantService: tenantsvc.NewTenantService(),
		deps:          service.NewDeps(),
	}
}

// sessionScope lấy tenant + session key từ context, lỗi nếu thiếu session key.
func sessionScope(c fiber.Ctx) (primitive.ObjectID, string, error) {
	tenantID, ok := middleware.TenantIDFromCtx(c)
	if !ok {
		return primitive.NilObjectID, "", common.ErrRequiredField
	}
	sessionKey, ok := middleware.SessionKeyFromCtx(c)
	if !ok {
		return primitive.NilObjectID, "", common.NewError(
			common.ErrCodeValidationInput,
			"Thiếu header X-Session-Key",
			common.StatusBadRequest,
			nil,
		)
	}
	return tenantID, sessionKey, nil
}

// Submit chạy một lượt checkout trọn vẹn: validate thông tin + giỏ + tồn kho
// + giới hạn đơn, rồi tạo đơn (tiền mặt / tại quầy) hoặc phiên thanh toán (online).
// Lỗi validation trả về trong body với state failed, không phải HTTP error.
func (h *CheckoutHandler) Submit(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, sessionKey, err := sessionScope(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.SubmitInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		tenant, err := h.TenantService.FindOne(c.Context(), bson.M{"_id": tenantID}, nil)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		orch := service.NewOrchestrator(tenant, sessionKey, h.deps)
		if err := orch.SetFields(service.Fields{
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			DeliveryType:  tenantmodels.DeliveryType(input.DeliveryType),
			PaymentMethod: tenantmodels.PaymentMethod(input.PaymentMethod),
			Address:       input.Address,
			Notes:         input.Notes,
			Geolocation:   input.Geolocation,
		}); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		outcome, err := orch.Submit(c.Context())
		if err != nil {
			// Lỗi ở bước submit (hết hàng khi trừ kho, provider lỗi, chạm giới hạn)
			// đi theo taxonomy lỗi chung để client đọc được mã
			basehdl.HandleResponse(c, fiber.Map{
				"state":            orch.State(),
				"limitJustReached": orch.LimitJustReached(),
			}, err)
			return nil
		}

		basehdl.HandleResponse(c, submitResponse(orch, outcome), nil)
		return nil
	})
}

// submitResponse dựng body trả về từ trạng thái orchestrator sau một lượt Submit.
func submitResponse(orch *service.Orchestrator, outcome service.Outcome) fiber.Map {
	resp := fiber.Map{
		"state":            orch.State(),
		"issues":           orch.Issues(),
		"corrections":      orch.Corrections(),
		"limitJustReached": orch.LimitJustReached(),
	}
	if outcome.Order != nil {
		resp["order"] = outcome.Order
		resp["dailyNumber"] = outcome.Order.DailyNumber
	}
	if outcome.Preference != nil {
		resp["redirectUrl"] = outcome.Preference.RedirectURL
		resp["preferenceId"] = outcome.Preference.PreferenceID
	}
	return resp
}

// Surcharge tính trước phụ phí giao hàng cho UI hiển thị ở bước collecting.
// Query: deliveryType, subtotal.
func (h *CheckoutHandler) Surcharge(c fiber.Ctx) error {
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

		var query struct {
			DeliveryType string  `query:"deliveryType"`
			Subtotal     float64 `query:"subtotal"`
		}
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		surcharge := service.DeliverySurcharge(
			tenant.DeliveryPricing,
			tenantmodels.DeliveryType(query.DeliveryType),
			query.Subtotal,
		)
		basehdl.HandleResponse(c, fiber.Map{"surcharge": surcharge}, nil)
		return nil
	})
}
