// Package router đăng ký route cho giỏ hàng.
package router

import (
	"github.com/gofiber/fiber/v3"

	"resto_commerce/internal/api/cart/handler"
	"resto_commerce/internal/api/middleware"
	coreRouter "resto_commerce/internal/api/router"
)

// Register đăng ký các route giỏ hàng vào group v1.
// Mọi route đều yêu cầu tenant context (X-Tenant-ID hoặc X-Tenant-Slug).
func Register(v1 fiber.Router, r *coreRouter.Router) error {
	h := handler.NewCartHandler()

	mws := []fiber.Handler{middleware.TenantContextMiddleware(), middleware.RequireTenant()}

	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "GET", "/", mws, h.Get)
	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "POST", "/add-simple", mws, h.AddSimple)
	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "POST", "/add", mws, h.Add)
	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "POST", "/increment", mws, h.Increment)
	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "POST", "/decrement", mws, h.Decrement)
	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "POST", "/remove", mws, h.Remove)
	coreRouter.RegisterRouteWithMiddleware(v1, "/cart", "POST", "/clear", mws, h.Clear)

	return nil
}
