// Package events cung cấp cơ chế event in-process của storefront.
// Hai loại event: (1) DataChangeEvent phát tự động từ BaseServiceMongoImpl sau mỗi
// CRUD thành công, (2) các domain event của chu trình giỏ hàng/đặt hàng
// (tồn kho thay đổi, giỏ bị thu hẹp, danh mục hết hàng, chạm giới hạn đơn).
// Logic phản ứng (reconcile giỏ, gửi email, ...) đăng ký qua các hàm On*.
package events

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OpInsert, OpUpdate, OpUpsert, OpDelete là các loại thao tác CRUD.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DataChangeEvent mô tả sự kiện thay đổi dữ liệu qua CRUD.
// Document là bản ghi sau khi thay đổi (nil nếu delete).
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// StockChangeEvent mô tả tồn kho của một danh mục hoặc sản phẩm vừa thay đổi.
// Đúng một trong CategoryID/ProductID khác nil.
type StockChangeEvent struct {
	TenantID     primitive.ObjectID
	CategoryID   *primitive.ObjectID
	ProductID    *primitive.ObjectID
	CurrentStock int64
}

// CartAdjustKind phân biệt "thu hẹp một phần" với "hết hàng hoàn toàn"
// vì UI phải hiển thị hai thông điệp khác nhau (partial vs irrecoverable).
type CartAdjustKind string

const (
	CartAdjustReduced CartAdjustKind = "reduced" // Giảm số lượng nhưng vẫn còn hàng
	CartAdjustEmptied CartAdjustKind = "emptied" // Danh mục về 0, line bị xóa hẳn
)

// CartAdjustedEvent phát khi reconciliation thu hẹp/xóa line trong một giỏ hàng.
// Phát đúng một lần cho mỗi transition, không phát lại khi chạy idempotent lần hai.
type CartAdjustedEvent struct {
	TenantID     primitive.ObjectID
	SessionKey   string
	CategoryID   primitive.ObjectID
	CategoryName string
	Kind         CartAdjustKind
	RemovedQty   int64 // Tổng số lượng đã bị cắt khỏi giỏ cho danh mục này
}

// OrderLimitEvent phát khi trạng thái giới hạn đơn hàng của tenant chuyển
// accepting → blocked. JustReached = true nghĩa là vừa chạm giới hạn trong phiên
// quan sát hiện tại (UI interrupt), false nghĩa là đã bị chặn từ trước.
type OrderLimitEvent struct {
	TenantID    primitive.ObjectID
	JustReached bool
}

// OrderCreatedEvent phát sau khi đơn hàng được tạo thành công (mọi phương thức thanh toán).
type OrderCreatedEvent struct {
	TenantID primitive.ObjectID
	OrderID  primitive.ObjectID
}

type (
	// DataChangeHandler xử lý sự kiện thay đổi dữ liệu.
	DataChangeHandler func(ctx context.Context, e DataChangeEvent)
	// StockChangeHandler xử lý sự kiện tồn kho thay đổi.
	StockChangeHandler func(ctx context.Context, e StockChangeEvent)
	// CartAdjustedHandler xử lý sự kiện giỏ hàng bị thu hẹp.
	CartAdjustedHandler func(ctx context.Context, e CartAdjustedEvent)
	// OrderLimitHandler xử lý sự kiện chạm giới hạn đơn hàng.
	OrderLimitHandler func(ctx context.Context, e OrderLimitEvent)
	// OrderCreatedHandler xử lý sự kiện đơn hàng được tạo.
	OrderCreatedHandler func(ctx context.Context, e OrderCreatedEvent)
)

var (
	mu                   sync.RWMutex
	dataChangeHandlers   []DataChangeHandler
	stockChangeHandlers  []StockChangeHandler
	cartAdjustedHandlers []CartAdjustedHandler
	orderLimitHandlers   []OrderLimitHandler
	orderCreatedHandlers []OrderCreatedHandler
)

// OnDataChanged đăng ký handler cho sự kiện CRUD. Gọi khi init.
func OnDataChanged(h DataChangeHandler) {
	mu.Lock()
	defer mu.Unlock()
	dataChangeHandlers = append(dataChangeHandlers, h)
}

// OnStockChanged đăng ký handler cho sự kiện tồn kho thay đổi.
func OnStockChanged(h StockChangeHandler) {
	mu.Lock()
	defer mu.Unlock()
	stockChangeHandlers = append(stockChangeHandlers, h)
}

// OnCartAdjusted đăng ký handler cho sự kiện giỏ hàng bị thu hẹp.
func OnCartAdjusted(h CartAdjustedHandler) {
	mu.Lock()
	defer mu.Unlock()
	cartAdjustedHandlers = append(cartAdjustedHandlers, h)
}

// OnOrderLimit đăng ký handler cho sự kiện giới hạn đơn hàng.
func OnOrderLimit(h OrderLimitHandler) {
	mu.Lock()
	defer mu.Unlock()
	orderLimitHandlers = append(orderLimitHandlers, h)
}

// OnOrderCreated đăng ký handler cho sự kiện đơn hàng được tạo.
func OnOrderCreated(h OrderCreatedHandler) {
	mu.Lock()
	defer mu.Unlock()
	orderCreatedHandlers = append(orderCreatedHandlers, h)
}

// dispatch chạy từng handler trong goroutine riêng, panic được recover
// để một handler lỗi không ảnh hưởng các handler khác.
func dispatch(run func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				// Logger có thể chưa init khi event chạy sớm
				_ = r
			}
		}()
		run()
	}()
}

// EmitDataChanged phát sự kiện CRUD. Gọi từ BaseServiceMongoImpl sau mỗi thao tác thành công.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	mu.RLock()
	list := make([]DataChangeHandler, len(dataChangeHandlers))
	copy(list, dataChangeHandlers)
	mu.RUnlock()
	for _, h := range list {
		h := h
		dispatch(func() { h(ctx, e) })
	}
}

// EmitStockChanged phát sự kiện tồn kho thay đổi (từ feed, webhook hoặc CRUD danh mục).
func EmitStockChanged(ctx context.Context, e StockChangeEvent) {
	mu.RLock()
	list := make([]StockChangeHandler, len(stockChangeHandlers))
	copy(list, stockChangeHandlers)
	mu.RUnlock()
	for _, h := range list {
		h := h
		dispatch(func() { h(ctx, e) })
	}
}

// EmitCartAdjusted phát sự kiện giỏ hàng bị thu hẹp sau reconciliation.
func EmitCartAdjusted(ctx context.Context, e CartAdjustedEvent) {
	mu.RLock()
	list := make([]CartAdjustedHandler, len(cartAdjustedHandlers))
	copy(list, cartAdjustedHandlers)
	mu.RUnlock()
	for _, h := range list {
		h := h
		dispatch(func() { h(ctx, e) })
	}
}

// EmitOrderLimit phát sự kiện giới hạn đơn hàng.
func EmitOrderLimit(ctx context.Context, e OrderLimitEvent) {
	mu.RLock()
	list := make([]OrderLimitHandler, len(orderLimitHandlers))
	copy(list, orderLimitHandlers)
	mu.RUnlock()
	for _, h := range list {
		h := h
		dispatch(func() { h(ctx, e) })
	}
}

// EmitOrderCreated phát sự kiện đơn hàng được tạo.
func EmitOrderCreated(ctx context.Context, e OrderCreatedEvent) {
	mu.RLock()
	list := make([]OrderCreatedHandler, len(orderCreatedHandlers))
	copy(list, orderCreatedHandlers)
	mu.RUnlock()
	for _, h := range list {
		h := h
		dispatch(func() { h(ctx, e) })
	}
}
