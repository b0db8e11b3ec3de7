// Package dto chứa struct request của checkout.
package dto

import (
	ordermodels "resto_commerce/internal/api/order/models"
)

// SubmitInput là body của POST /checkout/submit: toàn bộ thông tin khách
// nhập ở bước collecting. Validate chi tiết nằm trong orchestrator,
// ở đây chỉ ràng buộc format thô.
type SubmitInput struct {
	CustomerName  string                `json:"customerName" validate:"required"`
	CustomerPhone string                `json:"customerPhone" validate:"required"`
	DeliveryType  string                `json:"deliveryType" validate:"required"`
	PaymentMethod string                `json:"paymentMethod" validate:"required"`
	Address       string                `json:"address,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Geolocation   *ordermodels.GeoPoint `json:"geolocation,omitempty"`
}
