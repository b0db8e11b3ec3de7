// Package router đăng ký route cho đơn hàng.
package router

import (
	"github.com/gofiber/fiber/v3"

	"resto_commerce/internal/api/middleware"
	"resto_commerce/internal/api/order/handler"
	coreRouter "resto_commerce/internal/api/router"
)

// Register đăng ký các route đơn hàng vào group v1.
func Register(v1 fiber.Router, r *coreRouter.Router) error {
	h := handler.NewOrderHandler()

	// Đơn hàng chỉ được tạo qua checkout — CRUD ở đây là đọc cho back-office
	r.RegisterCRUDRoutes(v1, "/orders", h, coreRouter.ReadOnlyConfig)

	mws := []fiber.Handler{middleware.TenantContextMiddleware(), middleware.RequireTenant()}
	coreRouter.RegisterRouteWithMiddleware(v1, "/orders", "GET", "/limit-status", mws, h.LimitStatus)
	coreRouter.RegisterRouteWithMiddleware(v1, "/orders", "PUT", "/update-status/:id", mws, h.UpdateStatus)

	return nil
}
