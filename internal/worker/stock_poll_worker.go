package worker

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	catalogsvc "resto_commerce/internal/api/catalog/service"
	"resto_commerce/internal/api/events"
	tenantsvc "resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/logger"
)

// StockPollWorker là đường dự phòng của feed tồn kho: định kỳ đọc tồn kho
// hiện tại của mọi danh mục có khai báo trần và mọi sản phẩm có stock riêng,
// rồi phát lại StockChangeEvent. Reconciliation phía giỏ hàng idempotent nên
// phát lại giá trị không đổi là no-op; poller chỉ tồn tại để giỏ hàng không
// bao giờ lệch quá một chu kỳ khi Redis mất kết nối hoặc không được cấu hình.
type StockPollWorker struct {
	tenants    *tenantsvc.TenantService
	categories *catalogsvc.CategoryService
	products   *catalogsvc.ProductService
	interval   time.Duration
}

// NewStockPollWorker tạo mới StockPollWorker với chu kỳ poll cho trước.
func NewStockPollWorker(interval time.Duration) *StockPollWorker {
	if interval < 5*time.Second {
		interval = 30 * time.Second
	}
	return &StockPollWorker{
		tenants:    tenantsvc.NewTenantService(),
		categories: catalogsvc.NewCategoryService(),
		products:   catalogsvc.NewProductService(),
		interval:   interval,
	}
}

// Start chạy worker trong vòng lặp ticker cho tới khi context bị hủy.
func (w *StockPollWorker) Start(ctx context.Context) {
	log := logger.GetWorkerLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🔄 [STOCK_POLL] Starting Stock Poll Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🔄 [STOCK_POLL] Stock Poll Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔄 [STOCK_POLL] Panic khi poll tồn kho, sẽ tiếp tục ở chu kỳ sau")
					}
				}()
				w.pollOnce(ctx)
			}()
		}
	}
}

// pollOnce quét tồn kho của mọi tenant và phát lại sự kiện hiện trạng.
func (w *StockPollWorker) pollOnce(ctx context.Context) {
	log := logger.GetWorkerLogger()

	tenants, err := w.tenants.Find(ctx, bson.M{}, nil)
	if err != nil {
		log.WithError(err).Error("🔄 [STOCK_POLL] Lỗi lấy danh sách cửa hàng")
		return
	}

	for _, tenant := range tenants {
		// Danh mục có khai báo trần tồn kho
		categories, err := w.categories.Find(ctx, bson.M{
			"tenantId": tenant.ID,
			"maxStock": bson.M{"$exists": true, "$ne": nil},
		}, nil)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"tenantId": tenant.ID.Hex(),
			}).Warn("🔄 [STOCK_POLL] Lỗi đọc danh mục, bỏ qua tenant này")
			continue
		}
		for _, cat := range categories {
			if cat.CurrentStock == nil {
				continue
			}
			categoryID := cat.ID
			events.EmitStockChanged(ctx, events.StockChangeEvent{
				TenantID:     tenant.ID,
				CategoryID:   &categoryID,
				CurrentStock: *cat.CurrentStock,
			})
		}

		// Sản phẩm có stock riêng
		products, err := w.products.Find(ctx, bson.M{
			"tenantId": tenant.ID,
			"stock":    bson.M{"$exists": true, "$ne": nil},
		}, nil)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"tenantId": tenant.ID.Hex(),
			}).Warn("🔄 [STOCK_POLL] Lỗi đọc sản phẩm, bỏ qua tenant này")
			continue
		}
		for _, product := range products {
			if product.Stock == nil {
				continue
			}
			productID := product.ID
			events.EmitStockChanged(ctx, events.StockChangeEvent{
				TenantID:     tenant.ID,
				ProductID:    &productID,
				CurrentStock: *product.Stock,
			})
		}
	}
}
