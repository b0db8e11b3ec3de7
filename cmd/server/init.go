package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"resto_commerce/config"
	cartsvc "resto_commerce/internal/api/cart/service"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/api/middleware"
	ordersvc "resto_commerce/internal/api/order/service"
	tenantsvc "resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/database"
	"resto_commerce/internal/global"
	"resto_commerce/internal/logger"
	"resto_commerce/internal/notification"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Tenants = "store_tenants"
	global.MongoDB_ColNames.Categories = "store_categories"
	global.MongoDB_ColNames.Products = "store_products"
	global.MongoDB_ColNames.ExtraGroups = "store_extra_groups"
	global.MongoDB_ColNames.Extras = "store_extras"
	global.MongoDB_ColNames.Carts = "store_carts"
	global.MongoDB_ColNames.Orders = "store_orders"
	global.MongoDB_ColNames.OrderCounters = "store_order_counters"
	global.MongoDB_ColNames.PendingPayments = "store_pending_payments"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (global.InitValidator đăng ký custom validators: no_xss, phone, slug)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database và index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Client, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	db := global.MongoDB_Client.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.CreateStorefrontIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create indexes: %v", err)
	}
	logrus.Info("Ensured storefront indexes")
}

// InitRegistry khởi tạo registry và đăng ký các collections MongoDB
func InitRegistry() {
	if err := initCollections(global.MongoDB_Client, global.ServerConfig); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")
}

// initCollections đăng ký toàn bộ collection storefront vào registry
func initCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	names := global.MongoDB_ColNames
	colNames := []string{
		names.Tenants,
		names.Categories,
		names.Products,
		names.ExtraGroups,
		names.Extras,
		names.Carts,
		names.Orders,
		names.OrderCounters,
		names.PendingPayments,
	}

	for _, name := range colNames {
		if _, err := global.RegistryCollections.Register(name, db.Collection(name)); err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		logrus.Infof("Collection %s registered successfully", name)
	}

	return nil
}

// InitEventWiring nối các domain event với logic phản ứng.
// Gọi sau InitRegistry vì các service cần collection từ registry.
func InitEventWiring() {
	log := logger.GetAppLogger()

	// Tenant resolver cho middleware (tra slug → ID), inject qua hàm
	// để tránh import cycle middleware → service → middleware
	tenantService := tenantsvc.NewTenantService()
	middleware.SetTenantResolver(tenantService.ResolveSlug)

	// Tồn kho thay đổi → reconcile mọi giỏ hàng đang mở của tenant
	cartService := cartsvc.NewCartService()
	events.OnStockChanged(cartService.ApplyStockChange)

	// Đơn hàng mới → email báo cho chủ cửa hàng (best-effort)
	mailer, err := notification.NewMailerFromConfig(global.ServerConfig)
	if err != nil {
		log.Info("SMTP chưa cấu hình, bỏ qua email báo đơn hàng mới")
	} else {
		orderService := ordersvc.NewOrderService()
		events.OnOrderCreated(func(ctx context.Context, e events.OrderCreatedEvent) {
			order, err := orderService.FindOneById(ctx, e.OrderID)
			if err != nil {
				log.WithError(err).Warn("Không tải được đơn hàng để gửi email")
				return
			}
			tenant, err := tenantService.FindOneById(ctx, e.TenantID)
			if err != nil {
				log.WithError(err).Warn("Không tải được cửa hàng để gửi email")
				return
			}
			if err := mailer.SendOrderCreated(tenant, order); err != nil {
				log.WithError(err).WithFields(map[string]interface{}{
					"orderId": e.OrderID.Hex(),
				}).Warn("Gửi email báo đơn hàng mới thất bại")
			}
		})
	}

	log.Info("Initialized event wiring")
}
