// Package models định nghĩa aggregate giỏ hàng và các phép biến đổi thuần trên nó.
// Mọi mutation trả về bản sao mới của giỏ kèm feedback intent; giỏ cũ không bị sửa.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback là intent phản hồi cho UI sau một mutation giỏ hàng.
type Feedback string

const (
	FeedbackAdded   Feedback = "added"   // Đã thêm vào giỏ
	FeedbackReduced Feedback = "reduced" // Số lượng bị giảm
	FeedbackRemoved Feedback = "removed" // Line bị xóa khỏi giỏ
	FeedbackCleared Feedback = "cleared" // Giỏ bị xóa sạch
	FeedbackNone    Feedback = "none"    // Không có gì thay đổi (ví dụ chạm trần)
)

// SizeSelection là cỡ khách đã chọn, chụp lại chênh lệch giá tại thời điểm thêm.
type SizeSelection struct {
	Name       string  `json:"name" bson:"name"`
	PriceDelta float64 `json:"priceDelta" bson:"priceDelta"`
}

// CartSubOption là lựa chọn con của một topping đã chọn.
type CartSubOption struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

// CartExtra là một topping đã chọn cho line, giá chụp tại thời điểm thêm.
type CartExtra struct {
	ExtraID   primitive.ObjectID `json:"extraId" bson:"extraId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	SubOption *CartSubOption     `json:"subOption,omitempty" bson:"subOption,omitempty"`
}

// UnitPrice trả về phần giá topping này đóng góp vào đơn giá line.
// Khi có sub-option thì giá của sub-option thay thế giá topping.
func (e CartExtra) UnitPrice() float64 {
	if e.SubOption != nil {
		return e.SubOption.Price
	}
	return e.Price
}

// ProductSnapshot là bản chụp bất biến của sản phẩm tại thời điểm thêm vào giỏ.
// Giá, discount, size và tham chiếu danh mục được giữ nguyên kể cả khi
// catalog thay đổi sau đó; chỉ tồn kho là luôn tra cứu lại từ catalog sống.
type ProductSnapshot struct {
	ProductID       primitive.ObjectID  `json:"productId" bson:"productId"`
	Name            string              `json:"name" bson:"name"`
	BasePrice       float64             `json:"basePrice" bson:"basePrice"`
	DiscountPercent float64             `json:"discountPercent" bson:"discountPercent"`
	Size            *SizeSelection      `json:"size,omitempty" bson:"size,omitempty"`
	LegacyCategory  string              `json:"legacyCategory,omitempty" bson:"legacyCategory,omitempty"`
	CategoryID      *primitive.ObjectID `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	CategoryName    string              `json:"categoryName,omitempty" bson:"categoryName,omitempty"`
	SubcategoryID   *primitive.ObjectID `json:"subcategoryId,omitempty" bson:"subcategoryId,omitempty"`
}

// EffectiveCategoryID trả về danh mục sâu nhất của snapshot (ưu tiên subcategory).
func (s ProductSnapshot) EffectiveCategoryID() *primitive.ObjectID {
	if s.SubcategoryID != nil {
		return s.SubcategoryID
	}
	return s.CategoryID
}

// UnitBase trả về đơn giá sản phẩm sau discount và size delta, trước topping.
func (s ProductSnapshot) UnitBase() float64 {
	price := s.BasePrice
	if s.DiscountPercent > 0 {
		price = price * (1 - s.DiscountPercent/100)
	}
	if s.Size != nil {
		price += s.Size.PriceDelta
	}
	return price
}

// CartLine là một dòng trong giỏ hàng.
// LineID: hex của productId cho simple add (gộp line), uuid cho selection add.
// AddedAt + Seq xác định thứ tự giảm khi reconcile: line cũ nhất giảm trước,
// Seq phá hòa khi AddedAt trùng nhau.
type CartLine struct {
	LineID   string          `json:"lineId" bson:"lineId"`
	Product  ProductSnapshot `json:"product" bson:"product"`
	Quantity int64           `json:"quantity" bson:"quantity"`
	Extras   []CartExtra     `json:"extras,omitempty" bson:"extras,omitempty"`

	UnitPrice  float64 `json:"unitPrice" bson:"unitPrice"`
	TotalPrice float64 `json:"totalPrice" bson:"totalPrice"`

	Comment string `json:"comment,omitempty" bson:"comment,omitempty"`
	AddedAt int64  `json:"addedAt" bson:"addedAt"`
	Seq     int64  `json:"seq" bson:"seq"`
}

// ComputeUnitPrice tính đơn giá của line từ snapshot và topping đã chọn.
func ComputeUnitPrice(snapshot ProductSnapshot, extras []CartExtra) float64 {
	price := snapshot.UnitBase()
	for _, extra := range extras {
		price += extra.UnitPrice()
	}
	return price
}

// Cart là giỏ hàng persist theo tenant + session key.
// Lines giữ thứ tự thêm vào ổn định; NextSeq cấp số thứ tự đơn điệu cho line mới.
type Cart struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID   primitive.ObjectID `json:"tenantId" bson:"tenantId"`
	SessionKey string             `json:"sessionKey" bson:"sessionKey"`

	Lines   []CartLine `json:"lines" bson:"lines"`
	NextSeq int64      `json:"nextSeq" bson:"nextSeq"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// SetTenantID gán tenant cho document (TenantScoped).
func (c *Cart) SetTenantID(id primitive.ObjectID) { c.TenantID = id }

// GetTenantID trả về tenant của document (TenantScoped).
func (c *Cart) GetTenantID() primitive.ObjectID { return c.TenantID }

// IsEmpty kiểm tra giỏ có trống không.
func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Subtotal trả về tổng tiền hàng của giỏ (chưa gồm phụ phí giao hàng).
func (c Cart) Subtotal() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.TotalPrice
	}
	return total
}

// TotalQuantity trả về tổng số lượng mọi line trong giỏ.
func (c Cart) TotalQuantity() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// FindLine tìm line theo LineID, trả về index (-1 nếu không có).
func (c Cart) FindLine(lineID string) int {
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}
