// Package models định nghĩa model đơn hàng, bộ đếm đơn theo ngày
// và marker thanh toán online đang chờ.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus là trạng thái vòng đời của đơn hàng.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // Chờ cửa hàng xác nhận
	OrderStatusConfirmed OrderStatus = "confirmed" // Cửa hàng đã nhận
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusDone      OrderStatus = "done"
)

// OrderExtra là topping của một item trong đơn, giá đã chốt.
type OrderExtra struct {
	Name      string  `json:"name" bson:"name"`
	SubOption string  `json:"subOption,omitempty" bson:"subOption,omitempty"`
	Price     float64 `json:"price" bson:"price"`
}

// OrderItem là một dòng trong đơn hàng, sao từ line giỏ hàng tại thời điểm đặt.
type OrderItem struct {
	ProductID  primitive.ObjectID  `json:"productId" bson:"productId"`
	Name       string              `json:"name" bson:"name"`
	Size       string              `json:"size,omitempty" bson:"size,omitempty"`
	Quantity   int64               `json:"quantity" bson:"quantity" validate:"gte=1"`
	UnitPrice  float64             `json:"unitPrice" bson:"unitPrice"`
	TotalPrice float64             `json:"totalPrice" bson:"totalPrice"`
	Extras     []OrderExtra        `json:"extras,omitempty" bson:"extras,omitempty"`
	Comment    string              `json:"comment,omitempty" bson:"comment,omitempty"`
	CategoryID *primitive.ObjectID `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
}

// GeoPoint là tọa độ khách chia sẻ khi chọn giao hàng.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Order là một đơn hàng đã đặt.
type Order struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenantId" bson:"tenantId"`

	Items             []OrderItem `json:"items" bson:"items" validate:"required,min=1,dive"`
	Subtotal          float64     `json:"subtotal" bson:"subtotal"`
	DeliverySurcharge float64     `json:"deliverySurcharge" bson:"deliverySurcharge"`
	Total             float64     `json:"total" bson:"total"`

	CustomerName  string    `json:"customerName" bson:"customerName" validate:"required,no_xss"`
	CustomerPhone string    `json:"customerPhone" bson:"customerPhone" validate:"required,phone"`
	DeliveryType  string    `json:"deliveryType" bson:"deliveryType" validate:"required"`
	Address       string    `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,no_xss"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,no_xss"`
	Geolocation   *GeoPoint `json:"geolocation,omitempty" bson:"geolocation,omitempty"`

	PaymentMethod string      `json:"paymentMethod" bson:"paymentMethod" validate:"required"`
	Status        OrderStatus `json:"status" bson:"status"`

	// DailyNumber là số thứ tự trong ngày theo bộ đếm của tenant
	DailyNumber int64 `json:"dailyNumber" bson:"dailyNumber"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (o *Order) SetTenantID(id primitive.ObjectID) { o.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (o *Order) GetTenantID() primitive.ObjectID { return o.TenantID }

// OrderCounter đếm số đơn đã nhận trong một ngày local của tenant.
// Date theo định dạng "2006-01-02" trong timezone của cửa hàng.
type OrderCounter struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenantId" bson:"tenantId"`
	Date     string             `json:"date" bson:"date"`
	Count    int64              `json:"count" bson:"count"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// PendingPaymentStatus là trạng thái của marker thanh toán online.
type PendingPaymentStatus string

const (
	PendingPaymentOpen    PendingPaymentStatus = "open"    // Đã redirect, chờ provider xác nhận
	PendingPaymentPaid    PendingPaymentStatus = "paid"    // Provider báo đã thanh toán
	PendingPaymentExpired PendingPaymentStatus = "expired" // Quá TTL, worker đóng lại
)

// PendingPayment là marker ghi trước khi redirect khách sang provider thanh toán.
// Giỏ hàng không bị xóa chừng nào marker còn open.
type PendingPayment struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenantId" bson:"tenantId"`

	SessionKey     string  `json:"sessionKey" bson:"sessionKey"`
	PreferenceID   string  `json:"preferenceId" bson:"preferenceId"`
	IdempotencyKey string  `json:"idempotencyKey" bson:"idempotencyKey"`
	Amount         float64 `json:"amount" bson:"amount"`

	Status PendingPaymentStatus `json:"status" bson:"status"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (p *PendingPayment) SetTenantID(id primitive.ObjectID) { p.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (p *PendingPayment) GetTenantID() primitive.ObjectID { return p.TenantID }
