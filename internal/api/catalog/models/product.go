package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSize là một cỡ của sản phẩm với chênh lệch giá so với giá gốc.
type ProductSize struct {
	Name       string  `json:"name" bson:"name" validate:"required,no_xss"`
	PriceDelta float64 `json:"priceDelta" bson:"priceDelta"`
}

// Product là một sản phẩm trong catalog của cửa hàng.
// LegacyCategory là tên danh mục phẳng của dữ liệu cũ, giữ song song với
// CategoryID/SubcategoryID phân cấp cho tới khi migrate xong.
type Product struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenantId" bson:"tenantId"`
	Name     string             `json:"name" bson:"name" validate:"required,no_xss"`

	Description string  `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,no_xss"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`

	// Stock nil = sản phẩm không tự giới hạn tồn kho (chỉ chịu trần danh mục nếu có).
	Stock *int64 `json:"stock,omitempty" bson:"stock,omitempty" validate:"omitempty,gte=0"`

	LegacyCategory string              `json:"legacyCategory,omitempty" bson:"legacyCategory,omitempty"`
	CategoryID     *primitive.ObjectID `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	SubcategoryID  *primitive.ObjectID `json:"subcategoryId,omitempty" bson:"subcategoryId,omitempty"`

	Sizes           []ProductSize        `json:"sizes,omitempty" bson:"sizes,omitempty" validate:"omitempty,dive"`
	ExtraGroupIDs   []primitive.ObjectID `json:"extraGroupIds,omitempty" bson:"extraGroupIds,omitempty"`
	DiscountPercent float64              `json:"discountPercent" bson:"discountPercent" validate:"gte=0,lte=100"`

	Active    bool  `json:"active" bson:"active"`
	SortOrder int64 `json:"sortOrder" bson:"sortOrder"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (p *Product) SetTenantID(id primitive.ObjectID) { p.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (p *Product) GetTenantID() primitive.ObjectID { return p.TenantID }

// EffectiveCategoryID trả về danh mục sâu nhất sản phẩm thuộc về
// (ưu tiên subcategory), nil khi sản phẩm chưa gắn danh mục phân cấp.
func (p *Product) EffectiveCategoryID() *primitive.ObjectID {
	if p.SubcategoryID != nil {
		return p.SubcategoryID
	}
	return p.CategoryID
}

// BasePrice trả về đơn giá gốc sau discount, trước size delta và extras.
func (p *Product) BasePrice() float64 {
	if p.DiscountPercent > 0 {
		return p.Price * (1 - p.DiscountPercent/100)
	}
	return p.Price
}
