// Package router chứa hạ tầng định tuyến: interface CRUDHandler, cấu hình
// operation cho từng collection và helper đăng ký route theo chuẩn Fiber v3.
package router

import (
	"github.com/gofiber/fiber/v3"

	"resto_commerce/internal/api/middleware"
)

// LƯU Ý FIBER V3: middleware truyền trực tiếp trong route
// (router.Get(path, middleware, handler)) KHÔNG được gọi. Phải đăng ký qua
// group + .Use() — dùng RegisterRouteWithMiddleware cho mọi route có middleware.

// CRUDHandler định nghĩa interface cho các handler CRUD
type CRUDHandler interface {
	// Create
	InsertOne(c fiber.Ctx) error

	// Read
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error

	// Update
	UpdateById(c fiber.Ctx) error

	// Delete
	DeleteById(c fiber.Ctx) error

	// Other
	CountDocuments(c fiber.Ctx) error
	DocumentExists(c fiber.Ctx) error
}

// CRUDConfig cấu hình các operation được phép cho mỗi collection
type CRUDConfig struct {
	InsOne   bool // Insert One
	Find     bool // Find All
	FindOne  bool // Find One
	FindById bool // Find By Id
	Paginate bool // Find With Pagination
	UpdById  bool // Update By Id
	DelById  bool // Delete By Id
	Count    bool // Count Documents
	Exists   bool // Document Exists
}

// Config cho từng collection. Các domain dùng chung: ReadOnlyConfig, ReadWriteConfig.
var (
	// ReadOnlyConfig chỉ cho phép đọc (find, find-one, count, exists).
	ReadOnlyConfig = CRUDConfig{
		InsOne: false,
		Find:   true, FindOne: true, FindById: true, Paginate: true,
		UpdById: false, DelById: false,
		Count: true, Exists: true,
	}

	// ReadWriteConfig cho phép đầy đủ CRUD.
	ReadWriteConfig = CRUDConfig{
		InsOne: true,
		Find:   true, FindOne: true, FindById: true, Paginate: true,
		UpdById: true, DelById: true,
		Count: true, Exists: true,
	}
)

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// RegisterRouteWithMiddleware đăng ký route với middleware qua group + .Use()
// (cách duy nhất hoạt động đúng trong Fiber v3). Dùng từ domain router.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case "GET":
		routeGroup.Get(path, handler)
	case "POST":
		routeGroup.Post(path, handler)
	case "PUT":
		routeGroup.Put(path, handler)
	case "DELETE":
		routeGroup.Delete(path, handler)
	}
}

// RegisterCRUDRoutes đăng ký các route CRUD cho một collection theo config.
// Mọi route đều đi qua TenantContextMiddleware để scope dữ liệu theo cửa hàng.
func (r *Router) RegisterCRUDRoutes(router fiber.Router, prefix string, h CRUDHandler, config CRUDConfig) {
	tenantContext := middleware.TenantContextMiddleware()
	mws := []fiber.Handler{tenantContext}

	if config.InsOne {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/insert-one", mws, h.InsertOne)
	}
	if config.Find {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find", mws, h.Find)
	}
	if config.FindOne {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-one", mws, h.FindOne)
	}
	if config.FindById {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-by-id/:id", mws, h.FindOneById)
	}
	if config.Paginate {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-with-pagination", mws, h.FindWithPagination)
	}
	if config.UpdById {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-by-id/:id", mws, h.UpdateById)
	}
	if config.DelById {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-by-id/:id", mws, h.DeleteById)
	}
	if config.Count {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/count", mws, h.CountDocuments)
	}
	if config.Exists {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/exists", mws, h.DocumentExists)
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes thiết lập tất cả các route cho ứng dụng.
// Caller truyền lần lượt Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
