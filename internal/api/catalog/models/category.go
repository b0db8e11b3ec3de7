// Package models định nghĩa model danh mục, sản phẩm và topping của catalog.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category là một nút trong cây danh mục của cửa hàng.
// MaxStock là trần tồn kho tùy chọn: khi được khai báo, CurrentStock luôn có mặt
// và ràng buộc tổng số lượng bán ra của mọi sản phẩm thuộc nhánh này.
type Category struct {
	ID       primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID  `json:"tenantId" bson:"tenantId"`
	Name     string              `json:"name" bson:"name" validate:"required,no_xss"`
	ParentID *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId,omitempty"`

	// MaxStock nil = danh mục không khai báo trần. Khi khác nil thì CurrentStock
	// là tồn kho còn lại của cả nhánh (0 ≤ CurrentStock ≤ MaxStock).
	MaxStock     *int64 `json:"maxStock,omitempty" bson:"maxStock,omitempty" validate:"omitempty,gte=0"`
	CurrentStock *int64 `json:"currentStock,omitempty" bson:"currentStock,omitempty" validate:"omitempty,gte=0"`

	Active    bool  `json:"active" bson:"active"`
	SortOrder int64 `json:"sortOrder" bson:"sortOrder"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (c *Category) SetTenantID(id primitive.ObjectID) { c.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (c *Category) GetTenantID() primitive.ObjectID { return c.TenantID }

// DeclaresCeiling kiểm tra danh mục có khai báo trần tồn kho không.
func (c *Category) DeclaresCeiling() bool { return c.MaxStock != nil }
