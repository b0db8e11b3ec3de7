// Package router đăng ký route cho catalog.
package router

import (
	"github.com/gofiber/fiber/v3"

	"resto_commerce/internal/api/catalog/handler"
	"resto_commerce/internal/api/middleware"
	coreRouter "resto_commerce/internal/api/router"
)

// Register đăng ký các route catalog vào group v1.
func Register(v1 fiber.Router, r *coreRouter.Router) error {
	categoryHdl := handler.NewCategoryHandler()
	productHdl := handler.NewProductHandler()
	extraGroupHdl := handler.NewExtraGroupHandler()
	extraHdl := handler.NewExtraHandler()

	r.RegisterCRUDRoutes(v1, "/categories", categoryHdl, coreRouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/products", productHdl, coreRouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/extra-groups", extraGroupHdl, coreRouter.ReadWriteConfig)
	r.RegisterCRUDRoutes(v1, "/extras", extraHdl, coreRouter.ReadWriteConfig)

	tenantRequired := []fiber.Handler{middleware.TenantContextMiddleware(), middleware.RequireTenant()}

	// Cập nhật tồn kho danh mục (back-office) và webhook nhận delta từ bên ngoài
	coreRouter.RegisterRouteWithMiddleware(v1, "/categories", "PUT", "/set-stock/:id", tenantRequired, categoryHdl.SetStock)
	coreRouter.RegisterRouteWithMiddleware(v1, "/stock", "POST", "/webhook", tenantRequired, categoryHdl.StockWebhook)

	return nil
}
