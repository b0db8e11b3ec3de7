// Package handler chứa HTTP handler cho catalog: CRUD danh mục/sản phẩm/topping,
// cập nhật tồn kho danh mục và webhook nhận stock delta từ collaborator bên ngoài.
package handler

import (
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "resto_commerce/internal/api/base/handler"
	"resto_commerce/internal/api/catalog/dto"
	"resto_commerce/internal/api/catalog/models"
	"resto_commerce/internal/api/catalog/service"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/api/middleware"
	"resto_commerce/internal/common"
	"resto_commerce/internal/logger"
)

// CategoryHandler xử lý request danh mục.
type CategoryHandler struct {
	basehdl.BaseHandler[models.Category]
	CategoryService *service.CategoryService
}

// NewCategoryHandler tạo mới CategoryHandler.
func NewCategoryHandler() *CategoryHandler {
	svc := service.NewCategoryService()
	h := &CategoryHandler{CategoryService: svc}
	h.BaseService = svc.BaseServiceMongoImpl
	return h
}

// SetStock gán tồn kho còn lại của danh mục (path param :id).
// Chỉ áp dụng cho danh mục có khai báo trần; thay đổi được đẩy vào reconciliation loop.
func (h *CategoryHandler) SetStock(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		categoryID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		var input dto.SetStockInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.CategoryService.SetCurrentStock(c.Context(), tenantID, categoryID, input.CurrentStock)
		basehdl.HandleResponse(c, updated, err)
		return nil
	})
}

// StockWebhook nhận stock delta đẩy từ collaborator bên ngoài (POS, kho).
// Delta không hợp lệ được log và bỏ qua, không bao giờ trả lỗi cho phía đẩy
// ngoài trường hợp thiếu tenant context.
func (h *CategoryHandler) StockWebhook(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		log := logger.GetAppLogger()

		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok {
			basehdl.HandleResponse(c, nil, common.ErrRequiredField)
			return nil
		}

		var input dto.StockDeltaInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			log.WithError(err).Warn("Stock webhook: payload không parse được, bỏ qua")
			basehdl.HandleResponse(c, fiber.Map{"accepted": false}, nil)
			return nil
		}

		event, err := input.ToEvent(tenantID)
		if err != nil {
			log.WithError(err).WithField("payload", input).Warn("Stock webhook: delta không hợp lệ, bỏ qua")
			basehdl.HandleResponse(c, fiber.Map{"accepted": false}, nil)
			return nil
		}

		events.EmitStockChanged(c.Context(), event)
		basehdl.HandleResponse(c, fiber.Map{"accepted": true}, nil)
		return nil
	})
}

// ProductHandler xử lý request sản phẩm.
type ProductHandler struct {
	basehdl.BaseHandler[models.Product]
	ProductService *service.ProductService
}

// NewProductHandler tạo mới ProductHandler.
func NewProductHandler() *ProductHandler {
	svc := service.NewProductService()
	h := &ProductHandler{ProductService: svc}
	h.BaseService = svc.BaseServiceMongoImpl
	return h
}

// ExtraGroupHandler xử lý request nhóm topping.
type ExtraGroupHandler struct {
	basehdl.BaseHandler[models.ExtraGroup]
}

// NewExtraGroupHandler tạo mới ExtraGroupHandler.
func NewExtraGroupHandler() *ExtraGroupHandler {
	svc := service.NewExtraGroupService()
	h := &ExtraGroupHandler{}
	h.BaseService = svc.BaseServiceMongoImpl
	return h
}

// ExtraHandler xử lý request topping.
type ExtraHandler struct {
	basehdl.BaseHandler[models.Extra]
}

// NewExtraHandler tạo mới ExtraHandler.
func NewExtraHandler() *ExtraHandler {
	svc := service.NewExtraService()
	h := &ExtraHandler{}
	h.BaseService = svc.BaseServiceMongoImpl
	return h
}
