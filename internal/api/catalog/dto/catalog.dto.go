// Package dto định nghĩa cấu trúc request cho catalog.
package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/events"
	"resto_commerce/internal/common"
)

// SetStockInput là body cập nhật tồn kho còn lại của một danh mục.
type SetStockInput struct {
	CurrentStock int64 `json:"currentStock" validate:"gte=0"`
}

// StockDeltaInput là payload webhook từ collaborator bên ngoài.
// Đúng một trong CategoryID/ProductID phải có mặt.
type StockDeltaInput struct {
	CategoryID   string `json:"categoryId,omitempty"`
	ProductID    string `json:"productId,omitempty"`
	CurrentStock int64  `json:"currentStock"`
}

// ToEvent kiểm tra và chuyển payload webhook thành StockChangeEvent.
func (in *StockDeltaInput) ToEvent(tenantID primitive.ObjectID) (events.StockChangeEvent, error) {
	event := events.StockChangeEvent{TenantID: tenantID, CurrentStock: in.CurrentStock}

	if in.CurrentStock < 0 {
		return event, common.ErrInvalidInput
	}
	if (in.CategoryID == "") == (in.ProductID == "") {
		return event, common.ErrInvalidInput
	}

	if in.CategoryID != "" {
		id, err := primitive.ObjectIDFromHex(in.CategoryID)
		if err != nil {
			return event, common.ErrInvalidFormat
		}
		event.CategoryID = &id
		return event, nil
	}

	id, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return event, common.ErrInvalidFormat
	}
	event.ProductID = &id
	return event, nil
}
