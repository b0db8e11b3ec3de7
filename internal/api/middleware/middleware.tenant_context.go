// Package middleware chứa các middleware dùng chung: tenant context và response helper.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/common"
)

// Key trong fiber locals
const (
	localTenantID   = "tenant_id"
	localSessionKey = "session_key"
)

// tenantResolverFunc được gán từ tenant domain (cmd/server) để tránh
// import cycle middleware -> tenant service -> base handler -> middleware.
var tenantResolverFunc func(ctx context.Context, slug string) (primitive.ObjectID, error)

// SetTenantResolver đăng ký hàm resolve slug -> tenant ID.
// Gọi từ cmd/server sau khi tenant service đã khởi tạo.
func SetTenantResolver(fn func(ctx context.Context, slug string) (primitive.ObjectID, error)) {
	tenantResolverFunc = fn
}

// TenantContextMiddleware xác định tenant của request:
// ưu tiên header X-Tenant-ID (hex ObjectID), fallback X-Tenant-Slug (resolve qua tenant service).
// Session key của khách (X-Session-Key) cũng được đưa vào locals tại đây.
func TenantContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if sessionKey := c.Get("X-Session-Key"); sessionKey != "" {
			c.Locals(localSessionKey, sessionKey)
		}

		if idStr := c.Get("X-Tenant-ID"); idStr != "" {
			tenantID, err := primitive.ObjectIDFromHex(idStr)
			if err != nil {
				HandleErrorResponse(c, common.NewError(
					common.ErrCodeValidationFormat,
					"X-Tenant-ID không phải ObjectID hợp lệ",
					common.StatusBadRequest,
					nil,
				))
				return nil
			}
			c.Locals(localTenantID, tenantID)
			return c.Next()
		}

		if slug := c.Get("X-Tenant-Slug"); slug != "" && tenantResolverFunc != nil {
			tenantID, err := tenantResolverFunc(c.Context(), slug)
			if err != nil {
				HandleErrorResponse(c, common.NewError(
					common.ErrCodeValidationInput,
					"Không tìm thấy cửa hàng theo slug",
					common.StatusNotFound,
					nil,
				))
				return nil
			}
			c.Locals(localTenantID, tenantID)
		}

		return c.Next()
	}
}

// RequireTenant chặn request không có tenant context.
// Dùng cho các route storefront (cart, checkout) luôn cần biết cửa hàng.
func RequireTenant() fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, ok := TenantIDFromCtx(c); !ok {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeValidationInput,
				"Thiếu tenant context (header X-Tenant-ID hoặc X-Tenant-Slug)",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		return c.Next()
	}
}

// TenantIDFromCtx lấy tenant ID từ fiber locals
func TenantIDFromCtx(c fiber.Ctx) (primitive.ObjectID, bool) {
	tenantID, ok := c.Locals(localTenantID).(primitive.ObjectID)
	return tenantID, ok
}

// SessionKeyFromCtx lấy session key của khách từ fiber locals
func SessionKeyFromCtx(c fiber.Ctx) (string, bool) {
	sessionKey, ok := c.Locals(localSessionKey).(string)
	return sessionKey, ok && sessionKey != ""
}
