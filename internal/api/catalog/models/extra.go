package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExtraGroup là một nhóm topping/tùy chọn gắn vào sản phẩm,
// với ràng buộc số lượng chọn tối thiểu/tối đa.
type ExtraGroup struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenantId" bson:"tenantId"`
	Name     string             `json:"name" bson:"name" validate:"required,no_xss"`

	MinSelect int64 `json:"minSelect" bson:"minSelect" validate:"gte=0"`
	MaxSelect int64 `json:"maxSelect" bson:"maxSelect" validate:"gte=0"`
	Required  bool  `json:"required" bson:"required"`

	SortOrder int64 `json:"sortOrder" bson:"sortOrder"`
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (g *ExtraGroup) SetTenantID(id primitive.ObjectID) { g.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (g *ExtraGroup) GetTenantID() primitive.ObjectID { return g.TenantID }

// ExtraSubOption là lựa chọn con của một topping, có giá riêng.
type ExtraSubOption struct {
	Name  string  `json:"name" bson:"name" validate:"required,no_xss"`
	Price float64 `json:"price" bson:"price" validate:"gte=0"`
}

// Extra là một topping/tùy chọn thuộc một nhóm.
type Extra struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenantId" bson:"tenantId"`
	GroupID  primitive.ObjectID `json:"groupId" bson:"groupId" validate:"required"`
	Name     string             `json:"name" bson:"name" validate:"required,no_xss"`

	Price      float64          `json:"price" bson:"price" validate:"gte=0"`
	SubOptions []ExtraSubOption `json:"subOptions,omitempty" bson:"subOptions,omitempty" validate:"omitempty,dive"`

	SortOrder int64 `json:"sortOrder" bson:"sortOrder"`
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (e *Extra) SetTenantID(id primitive.ObjectID) { e.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (e *Extra) GetTenantID() primitive.ObjectID { return e.TenantID }
