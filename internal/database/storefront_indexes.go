package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resto_commerce/internal/global"
)

// CreateStorefrontIndexes tạo index cho các collection storefront.
// Gọi một lần khi khởi động server, sau khi registry collections đã sẵn sàng.
func CreateStorefrontIndexes(ctx context.Context, db *mongo.Database) error {
	names := global.MongoDB_ColNames

	// store_tenants: slug unique
	if err := createIndex(ctx, db, names.Tenants, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetName("tenant_slug").SetUnique(true),
	}); err != nil {
		return err
	}

	// store_categories: (tenantId, parentId) — duyệt cây; (tenantId, sortOrder) — hiển thị
	if err := createIndex(ctx, db, names.Categories, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "parentId", Value: 1}},
		Options: options.Index().SetName("category_tenant_parent"),
	}); err != nil {
		return err
	}
	if err := createIndex(ctx, db, names.Categories, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "sortOrder", Value: 1}},
		Options: options.Index().SetName("category_tenant_sort"),
	}); err != nil {
		return err
	}

	// store_products: (tenantId, categoryId)
	if err := createIndex(ctx, db, names.Products, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "categoryId", Value: 1}},
		Options: options.Index().SetName("product_tenant_category"),
	}); err != nil {
		return err
	}

	// store_extras: (tenantId, groupId)
	if err := createIndex(ctx, db, names.Extras, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "groupId", Value: 1}},
		Options: options.Index().SetName("extra_tenant_group"),
	}); err != nil {
		return err
	}

	// store_carts: (tenantId, sessionKey) unique — mỗi phiên khách đúng một giỏ
	if err := createIndex(ctx, db, names.Carts, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "sessionKey", Value: 1}},
		Options: options.Index().SetName("cart_tenant_session").SetUnique(true),
	}); err != nil {
		return err
	}
	// store_carts: multikey theo categoryId của line — reconcile theo danh mục
	if err := createIndex(ctx, db, names.Carts, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "lines.product.categoryId", Value: 1}},
		Options: options.Index().SetName("cart_tenant_line_category"),
	}); err != nil {
		return err
	}

	// store_orders: (tenantId, createdAt) — danh sách back-office
	if err := createIndex(ctx, db, names.Orders, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("order_tenant_created"),
	}); err != nil {
		return err
	}

	// store_order_counters: (tenantId, date) unique — một bộ đếm mỗi ngày
	if err := createIndex(ctx, db, names.OrderCounters, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetName("order_counter_tenant_date").SetUnique(true),
	}); err != nil {
		return err
	}

	// store_pending_payments: idempotencyKey unique; (status, createdAt) — worker quét
	if err := createIndex(ctx, db, names.PendingPayments, mongo.IndexModel{
		Keys:    bson.D{{Key: "idempotencyKey", Value: 1}},
		Options: options.Index().SetName("pending_payment_idempotency").SetUnique(true),
	}); err != nil {
		return err
	}
	if err := createIndex(ctx, db, names.PendingPayments, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("pending_payment_status_created"),
	}); err != nil {
		return err
	}

	return nil
}

func createIndex(ctx context.Context, db *mongo.Database, colName string, model mongo.IndexModel) error {
	_, err := db.Collection(colName).Indexes().CreateOne(ctx, model)
	if err != nil && !isIndexExistsError(err) {
		return err
	}
	return nil
}

// isIndexExistsError kiểm tra lỗi "index đã tồn tại" (tên khác nhưng cùng keys)
func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "IndexOptionsConflict") ||
		strings.Contains(msg, "IndexKeySpecsConflict") ||
		strings.Contains(msg, "already exists")
}
