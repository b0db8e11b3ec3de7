// Package router đăng ký route cho tenant.
package router

import (
	"github.com/gofiber/fiber/v3"

	coreRouter "resto_commerce/internal/api/router"
	"resto_commerce/internal/api/tenant/handler"
)

// Register đăng ký các route tenant vào group v1.
// Truyền cho router.SetupRoutes tại cmd/server.
func Register(v1 fiber.Router, r *coreRouter.Router) error {
	h := handler.NewTenantHandler()

	// Route public của storefront (không cần tenant context — slug nằm trong path)
	coreRouter.RegisterRouteWithMiddleware(v1, "/tenants", "GET", "/by-slug/:slug", nil, h.FindBySlug)
	coreRouter.RegisterRouteWithMiddleware(v1, "/tenants", "GET", "/by-slug/:slug/status", nil, h.Status)

	// CRUD back-office
	r.RegisterCRUDRoutes(v1, "/tenants", h, coreRouter.ReadWriteConfig)
	return nil
}
