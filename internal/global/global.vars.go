// Package global chứa các biến toàn cục của ứng dụng: cấu hình server,
// registry collections MongoDB, validator và tên các collection.
package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"resto_commerce/config"
	"resto_commerce/internal/registry"
)

// ColNames chứa tên tất cả các collection MongoDB của hệ thống storefront.
// Giá trị được gán tại cmd/server (initColNames) trước khi khởi tạo registry.
type ColNames struct {
	Tenants         string // Cấu hình cửa hàng (giờ mở cửa, hình thức nhận hàng, gói thuê bao)
	Categories      string // Danh mục sản phẩm (cây, có trần tồn kho tùy chọn)
	Products        string // Sản phẩm
	ExtraGroups     string // Nhóm topping/tùy chọn
	Extras          string // Topping/tùy chọn
	Carts           string // Giỏ hàng đã persist theo tenant + session
	Orders          string // Đơn hàng
	OrderCounters   string // Bộ đếm đơn hàng theo ngày (giới hạn theo gói thuê bao)
	PendingPayments string // Marker thanh toán online đang chờ xác nhận
}

var (
	// MongoDB_ColNames tên các collection trong database
	MongoDB_ColNames ColNames

	// ServerConfig cấu hình server, được load từ env tại init
	ServerConfig *config.Configuration

	// MongoDB_Client client kết nối MongoDB
	MongoDB_Client *mongo.Client

	// RegistryCollections registry chứa các collection MongoDB theo tên
	RegistryCollections = registry.NewRegistry[*mongo.Collection]()

	// Validate validator toàn cục (khởi tạo qua InitValidator)
	Validate *validator.Validate
)
