// Package dto định nghĩa cấu trúc request cho giỏ hàng.
package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/cart/service"
	"resto_commerce/internal/common"
)

// AddSimpleInput là body thêm nhanh một đơn vị sản phẩm.
type AddSimpleInput struct {
	ProductID string `json:"productId" validate:"required"`
}

// ExtraSelectionInput là một topping khách chọn.
type ExtraSelectionInput struct {
	ExtraID   string `json:"extraId" validate:"required"`
	SubOption string `json:"subOption,omitempty"`
}

// AddWithSelectionInput là body thêm sản phẩm có số lượng, cỡ, topping, ghi chú.
type AddWithSelectionInput struct {
	ProductID string                `json:"productId" validate:"required"`
	Quantity  int64                 `json:"quantity" validate:"required,gte=1"`
	Size      string                `json:"size,omitempty"`
	Extras    []ExtraSelectionInput `json:"extras,omitempty" validate:"omitempty,dive"`
	Comment   string                `json:"comment,omitempty" validate:"omitempty,no_xss"`
}

// Selections chuyển danh sách topping đã chọn sang kiểu của service.
func (in *AddWithSelectionInput) Selections() ([]service.ExtraSelection, error) {
	if len(in.Extras) == 0 {
		return nil, nil
	}
	selections := make([]service.ExtraSelection, 0, len(in.Extras))
	for _, extra := range in.Extras {
		id, err := primitive.ObjectIDFromHex(extra.ExtraID)
		if err != nil {
			return nil, common.ErrInvalidFormat
		}
		selections = append(selections, service.ExtraSelection{ExtraID: id, SubOption: extra.SubOption})
	}
	return selections, nil
}

// LineInput là body các thao tác trên một line (increment/decrement/remove).
type LineInput struct {
	LineID string `json:"lineId" validate:"required"`
}
