// Package router đăng ký route cho checkout.
package router

import (
	"github.com/gofiber/fiber/v3"

	"resto_commerce/internal/api/checkout/handler"
	"resto_commerce/internal/api/middleware"
	coreRouter "resto_commerce/internal/api/router"
)

// Register đăng ký các route checkout vào group v1.
// Submit cần cả tenant context và session key; surcharge chỉ cần tenant.
func Register(v1 fiber.Router, r *coreRouter.Router) error {
	h := handler.NewCheckoutHandler()

	mws := []fiber.Handler{middleware.TenantContextMiddleware(), middleware.RequireTenant()}

	coreRouter.RegisterRouteWithMiddleware(v1, "/checkout", "POST", "/submit", mws, h.Submit)
	coreRouter.RegisterRouteWithMiddleware(v1, "/checkout", "GET", "/surcharge", mws, h.Surcharge)

	return nil
}
