package basehdl

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "resto_commerce/internal/api/base/service"
	"resto_commerce/internal/api/middleware"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
)

// TenantScoped là interface cho model có trường TenantID.
// Base handler dùng nó để gắn tenant từ context vào document khi ghi
// và scope mọi filter đọc theo tenant.
type TenantScoped interface {
	SetTenantID(id primitive.ObjectID)
	GetTenantID() primitive.ObjectID
}

// BaseHandler cung cấp các handler CRUD dùng chung cho một model T.
// T phải là struct model với bson tag; *T nên implement TenantScoped
// để được scope theo tenant tự động.
type BaseHandler[T any] struct {
	BaseService *basesvc.BaseServiceMongoImpl[T]
}

// NewBaseHandler tạo mới BaseHandler trên base service đã cho
func NewBaseHandler[T any](service *basesvc.BaseServiceMongoImpl[T]) *BaseHandler[T] {
	return &BaseHandler[T]{BaseService: service}
}

// ParseRequestBody parse body JSON của request vào out
func (h *BaseHandler[T]) ParseRequestBody(c fiber.Ctx, out interface{}) error {
	return c.Bind().Body(out)
}

// ValidateInput validate struct với global validator (struct tag validate)
func (h *BaseHandler[T]) ValidateInput(input interface{}) error {
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

// tenantFilter gắn điều kiện tenantId vào filter nếu request có tenant context
func tenantFilter(c fiber.Ctx, filter bson.M) bson.M {
	if filter == nil {
		filter = bson.M{}
	}
	if tenantID, ok := middleware.TenantIDFromCtx(c); ok {
		filter["tenantId"] = tenantID
	}
	return filter
}

// parseFilterQuery đọc query param "filter" (JSON) thành bson.M
func parseFilterQuery(c fiber.Ctx) (bson.M, error) {
	raw := c.Query("filter")
	if raw == "" {
		return bson.M{}, nil
	}
	var filter bson.M
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter không phải JSON hợp lệ: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return filter, nil
}

// InsertOne thêm mới một document. Tenant từ context luôn ghi đè tenant trong body.
func (h *BaseHandler[T]) InsertOne(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		var input T
		if err := h.ParseRequestBody(c, &input); err != nil {
			HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		if err := h.ValidateInput(&input); err != nil {
			HandleResponse(c, nil, err)
			return nil
		}

		if scoped, ok := any(&input).(TenantScoped); ok {
			if tenantID, exists := middleware.TenantIDFromCtx(c); exists {
				scoped.SetTenantID(tenantID)
			}
		}

		data, err := h.BaseService.InsertOne(c.Context(), input)
		HandleResponse(c, data, err)
		return nil
	})
}

// Find tìm danh sách document theo filter (query param "filter", JSON)
func (h *BaseHandler[T]) Find(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		filter, err := parseFilterQuery(c)
		if err != nil {
			HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.Find(c.Context(), tenantFilter(c, filter), nil)
		HandleResponse(c, data, err)
		return nil
	})
}

// FindOne tìm một document theo filter
func (h *BaseHandler[T]) FindOne(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		filter, err := parseFilterQuery(c)
		if err != nil {
			HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.BaseService.FindOne(c.Context(), tenantFilter(c, filter), nil)
		HandleResponse(c, data, err)
		return nil
	})
}

// FindOneById tìm một document theo path param :id
func (h *BaseHandler[T]) FindOneById(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		data, err := h.BaseService.FindOne(c.Context(), tenantFilter(c, bson.M{"_id": id}), nil)
		HandleResponse(c, data, err)
		return nil
	})
}

// FindWithPagination tìm document có phân trang (query: filter, page, limit)
func (h *BaseHandler[T]) FindWithPagination(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		filter, err := parseFilterQuery(c)
		if err != nil {
			HandleResponse(c, nil, err)
			return nil
		}

		page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
		limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

		data, err := h.BaseService.FindWithPagination(c.Context(), tenantFilter(c, filter), page, limit, nil)
		HandleResponse(c, data, err)
		return nil
	})
}

// UpdateById cập nhật một document theo path param :id
func (h *BaseHandler[T]) UpdateById(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		var input map[string]interface{}
		if err := h.ParseRequestBody(c, &input); err != nil {
			HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				err,
			))
			return nil
		}

		// Không cho đổi tenant của document qua update
		delete(input, "tenantId")
		delete(input, "_id")

		data, err := h.BaseService.UpdateOne(c.Context(), tenantFilter(c, bson.M{"_id": id}), input, nil)
		HandleResponse(c, data, err)
		return nil
	})
}

// DeleteById xóa một document theo path param :id
func (h *BaseHandler[T]) DeleteById(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		err = h.BaseService.DeleteOne(c.Context(), tenantFilter(c, bson.M{"_id": id}))
		HandleResponse(c, nil, err)
		return nil
	})
}

// CountDocuments đếm số document theo filter
func (h *BaseHandler[T]) CountDocuments(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		filter, err := parseFilterQuery(c)
		if err != nil {
			HandleResponse(c, nil, err)
			return nil
		}

		count, err := h.BaseService.CountDocuments(c.Context(), tenantFilter(c, filter))
		HandleResponse(c, fiber.Map{"count": count}, err)
		return nil
	})
}

// DocumentExists kiểm tra document có tồn tại theo filter không
func (h *BaseHandler[T]) DocumentExists(c fiber.Ctx) error {
	return SafeHandler(c, func() error {
		filter, err := parseFilterQuery(c)
		if err != nil {
			HandleResponse(c, nil, err)
			return nil
		}

		exists, err := h.BaseService.DocumentExists(c.Context(), tenantFilter(c, filter))
		HandleResponse(c, fiber.Map{"exists": exists}, err)
		return nil
	})
}
