// Package models định nghĩa model cấu hình cửa hàng (tenant).
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryType là hình thức nhận hàng cửa hàng hỗ trợ.
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"   // Khách tự đến lấy
	DeliveryShipping DeliveryType = "delivery" // Giao tận nơi
	DeliveryDineIn   DeliveryType = "dine_in"  // Dùng tại chỗ
)

// PaymentMethod là phương thức thanh toán cửa hàng chấp nhận.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCardInPerson PaymentMethod = "card_in_person"
	PaymentOnline       PaymentMethod = "online"
)

// DeliveryPricingMode quy định cách tính phụ phí giao hàng.
type DeliveryPricingMode string

const (
	DeliveryPricingFree          DeliveryPricingMode = "free"            // Không thu phí
	DeliveryPricingFixed         DeliveryPricingMode = "fixed"           // Phí cố định
	DeliveryPricingFreeThreshold DeliveryPricingMode = "free_over_total" // Miễn phí khi đơn vượt ngưỡng
)

// SubscriptionTier là gói thuê bao, quyết định giới hạn đơn hàng mỗi ngày.
type SubscriptionTier string

const (
	TierFree      SubscriptionTier = "free"
	TierBasic     SubscriptionTier = "basic"
	TierPro       SubscriptionTier = "pro"
	TierUnlimited SubscriptionTier = "unlimited"
)

// OpeningHours là khung giờ mở cửa của một ngày trong tuần (định dạng "HH:MM").
// Closed = true nghĩa là nghỉ cả ngày, bỏ qua Open/Close.
type OpeningHours struct {
	Open   string `json:"open" bson:"open,omitempty"`
	Close  string `json:"close" bson:"close,omitempty"`
	Closed bool   `json:"closed" bson:"closed"`
}

// DeliveryPricing là chính sách phụ phí giao hàng của cửa hàng.
type DeliveryPricing struct {
	Mode          DeliveryPricingMode `json:"mode" bson:"mode" validate:"omitempty,oneof=free fixed free_over_total"`
	Fee           float64             `json:"fee" bson:"fee" validate:"gte=0"`
	FreeThreshold float64             `json:"freeThreshold" bson:"freeThreshold" validate:"gte=0"`
}

// Tenant là cấu hình một cửa hàng trên nền tảng.
type Tenant struct {
	ID     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name   string             `json:"name" bson:"name" validate:"required,no_xss"`
	Slug   string             `json:"slug" bson:"slug" validate:"required,slug"`
	Paused bool               `json:"paused" bson:"paused"` // Tạm dừng nhận đơn (không phụ thuộc giờ mở cửa)

	// Giờ mở cửa theo thứ trong tuần, key là time.Weekday.String() ("Monday"...).
	// Ngày không có key coi như nghỉ.
	OpeningHours map[string]OpeningHours `json:"openingHours" bson:"openingHours,omitempty"`
	Timezone     string                  `json:"timezone" bson:"timezone"` // IANA, ví dụ "Europe/Madrid"

	DeliveryTypes   []DeliveryType  `json:"deliveryTypes" bson:"deliveryTypes" validate:"omitempty,dive,oneof=pickup delivery dine_in"`
	PaymentMethods  []PaymentMethod `json:"paymentMethods" bson:"paymentMethods" validate:"omitempty,dive,oneof=cash card_in_person online"`
	OnlinePayment   bool            `json:"onlinePayment" bson:"onlinePayment"` // Đã cấu hình cổng thanh toán online
	DeliveryPricing DeliveryPricing `json:"deliveryPricing" bson:"deliveryPricing"`

	SubscriptionTier SubscriptionTier `json:"subscriptionTier" bson:"subscriptionTier" validate:"omitempty,oneof=free basic pro unlimited"`

	ContactEmail string `json:"contactEmail" bson:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone" bson:"contactPhone,omitempty" validate:"omitempty,phone"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// Location trả về *time.Location của cửa hàng, fallback UTC khi timezone không hợp lệ.
func (t *Tenant) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DeliveryTypeEnabled kiểm tra một hình thức nhận hàng có được cửa hàng bật không.
func (t *Tenant) DeliveryTypeEnabled(dt DeliveryType) bool {
	for _, enabled := range t.DeliveryTypes {
		if enabled == dt {
			return true
		}
	}
	return false
}

// PaymentMethodEnabled kiểm tra một phương thức thanh toán có khả dụng không.
// Online chỉ khả dụng khi cửa hàng đã cấu hình cổng thanh toán.
func (t *Tenant) PaymentMethodEnabled(pm PaymentMethod) bool {
	for _, enabled := range t.PaymentMethods {
		if enabled == pm {
			if pm == PaymentOnline {
				return t.OnlinePayment
			}
			return true
		}
	}
	return false
}
