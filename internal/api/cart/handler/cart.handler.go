// Package handler chứa HTTP handler cho giỏ hàng.
// Mọi route đều cần tenant context và session key của khách (header X-Session-Key);
// response luôn gồm trạng thái giỏ mới nhất kèm feedback intent cho UI.
package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "resto_commerce/internal/api/base/handler"
	"resto_commerce/internal/api/cart/dto"
	"resto_commerce/internal/api/cart/models"
	"resto_commerce/internal/api/cart/service"
	"resto_commerce/internal/api/middleware"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
)

// CartHandler xử lý request giỏ hàng.
type CartHandler struct {
	CartService *service.CartService
}

// NewCartHandler tạo mới CartHandler.
func NewCartHandler() *CartHandler {
	return &CartHandler{CartService: service.NewCartService()}
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

// respondCart trả về giỏ + feedback theo format response chung.
func respondCart(c fiber.Ctx, cart models.Cart, feedback models.Feedback, err error) {
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return
	}
	basehdl.HandleResponse(c, fiber.Map{
		"cart":     cart,
		"feedback": feedback,
		"subtotal": cart.Subtotal(),
	}, nil)
}

// Get trả về giỏ hàng hiện tại của phiên (tạo giỏ trống nếu chưa có).
func (h *CartHandler) Get(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, sessionKey, err := sessionScope(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		cart, err := h.CartService.GetOrCreate(c.Context(), tenantID, sessionKey)
		respondCart(c, cart, models.FeedbackNone, err)
		return nil
	})
}

// AddSimple thêm nhanh một đơn vị sản phẩm (body: productId).
func (h *CartHandler) AddSimple(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, sessionKey, err := sessionScope(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.AddSimpleInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		productID, err := primitive.ObjectIDFromHex(input.ProductID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		cart, feedback, err := h.CartService.AddSimple(c.Context(), tenantID, sessionKey, productID)
		respondCart(c, cart, feedback, err)
		return nil
	})
}

// Add thêm sản phẩm với số lượng, cỡ, topping và ghi chú.
func (h *CartHandler) Add(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, sessionKey, err := sessionScope(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.AddWithSelectionInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := validateInput(&input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		productID, err := primitive.ObjectIDFromHex(input.ProductID)
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		selections, err := input.Selections()
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		cart, feedback, err := h.CartService.AddWithSelection(
			c.Context(), tenantID, sessionKey, productID,
			input.Quantity, input.Size, selections, input.Comment,
		)
		respondCart(c, cart, feedback, err)
		return nil
	})
}

// Increment tăng số lượng một line thêm 1.
func (h *CartHandler) Increment(c fiber.Ctx) error {
	return h.lineOp(c, h.CartService.Increment)
}

// Decrement giảm số lượng một line đi 1 (về 0 thì xóa line).
func (h *CartHandler) Decrement(c fiber.Ctx) error {
	return h.lineOp(c, h.CartService.Decrement)
}

// Remove xóa hẳn một line khỏi giỏ.
func (h *CartHandler) Remove(c fiber.Ctx) error {
	return h.lineOp(c, h.CartService.Remove)
}

// lineOp xử lý chung các thao tác nhận lineId trong body.
func (h *CartHandler) lineOp(c fiber.Ctx, op func(ctx context.Context, tenantID primitive.ObjectID, sessionKey, lineID string) (models.Cart, models.Feedback, error)) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, sessionKey, err := sessionScope(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.LineInput
		if err := c.Bind().Body(&input); err != nil || input.LineID == "" {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		cart, feedback, err := op(c.Context(), tenantID, sessionKey, input.LineID)
		respondCart(c, cart, feedback, err)
		return nil
	})
}

// validateInput validate struct với global validator.
func validateInput(input interface{}) error {
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("%s: %v", common.MsgValidationError, err),
			common.StatusBadRequest,
			err,
		)
	}
	return nil
}

// Clear xóa sạch giỏ hàng của phiên.
func (h *CartHandler) Clear(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, sessionKey, err := sessionScope(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		cart, feedback, err := h.CartService.Clear(c.Context(), tenantID, sessionKey)
		respondCart(c, cart, feedback, err)
		return nil
	})
}
