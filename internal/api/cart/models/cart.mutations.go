package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineMatcher quyết định một line có cùng scope tồn kho với sản phẩm đang thao tác
// không (dùng để đếm "đã có trong giỏ" khi so với trần). Service dựng closure này
// từ cây danh mục; test dựng trực tiếp.
type LineMatcher func(line CartLine) bool

// MatchProduct trả về matcher đếm các line của đúng một sản phẩm.
func MatchProduct(productID primitive.ObjectID) LineMatcher {
	return func(line CartLine) bool {
		return line.Product.ProductID == productID
	}
}

// MatchAll đếm mọi line (dùng khi không có scope — trần nil).
func MatchAll(CartLine) bool { return true }

// ScopeQuantity đếm tổng số lượng các line khớp matcher.
func (c Cart) ScopeQuantity(member LineMatcher) int64 {
	var total int64
	for _, line := range c.Lines {
		if member(line) {
			total += line.Quantity
		}
	}
	return total
}

// cloneLines sao chép slice line để mutation không đụng vào giỏ cũ.
func (c Cart) cloneLines() []CartLine {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return lines
}

// recalcLine cập nhật TotalPrice của line theo bất biến totalPrice = unitPrice × quantity.
func recalcLine(line *CartLine) {
	line.TotalPrice = line.UnitPrice * float64(line.Quantity)
}

// AddSimple thêm một đơn vị sản phẩm không cần tùy chọn.
// LineID là hex của productId nên các lần thêm liên tiếp gộp vào một line.
// Vượt trần (limit nil = không trần) là no-op im lặng: trả về giỏ cũ + FeedbackNone.
func (c Cart) AddSimple(snapshot ProductSnapshot, limit *int64, member LineMatcher, now int64) (Cart, Feedback) {
	if limit != nil && c.ScopeQuantity(member)+1 > *limit {
		return c, FeedbackNone
	}

	next := c
	next.Lines = c.cloneLines()

	lineID := snapshot.ProductID.Hex()
	if i := next.FindLine(lineID); i >= 0 {
		next.Lines[i].Quantity++
		recalcLine(&next.Lines[i])
		return next, FeedbackAdded
	}

	unitPrice := ComputeUnitPrice(snapshot, nil)
	next.Lines = append(next.Lines, CartLine{
		LineID:     lineID,
		Product:    snapshot,
		Quantity:   1,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice,
		AddedAt:    now,
		Seq:        next.NextSeq,
	})
	next.NextSeq++
	return next, FeedbackAdded
}

// AddWithSelection thêm một line mới với số lượng, topping và ghi chú đã chọn.
// Kiểm tra nguyên tử cả khối: hoặc toàn bộ quantity vào giỏ, hoặc không gì cả.
// ok = false khi trần không chứa nổi cả khối; shortfall = trần − đã có trong giỏ
// là phần tối đa còn thêm được, để caller dựng thông báo thiếu hụt.
func (c Cart) AddWithSelection(lineID string, snapshot ProductSnapshot, quantity int64, extras []CartExtra, comment string, limit *int64, member LineMatcher, now int64) (next Cart, feedback Feedback, ok bool, shortfall int64) {
	if quantity < 1 {
		return c, FeedbackNone, false, 0
	}

	if limit != nil {
		inCart := c.ScopeQuantity(member)
		if inCart+quantity > *limit {
			available := *limit - inCart
			if available < 0 {
				available = 0
			}
			return c, FeedbackNone, false, available
		}
	}

	next = c
	next.Lines = c.cloneLines()

	unitPrice := ComputeUnitPrice(snapshot, extras)
	next.Lines = append(next.Lines, CartLine{
		LineID:     lineID,
		Product:    snapshot,
		Quantity:   quantity,
		Extras:     extras,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice * float64(quantity),
		Comment:    comment,
		AddedAt:    now,
		Seq:        next.NextSeq,
	})
	next.NextSeq++
	return next, FeedbackAdded, true, 0
}

// Increment tăng số lượng một line thêm 1, chịu cùng trần với AddSimple.
func (c Cart) Increment(lineID string, limit *int64, member LineMatcher) (Cart, Feedback) {
	i := c.FindLine(lineID)
	if i < 0 {
		return c, FeedbackNone
	}
	if limit != nil && c.ScopeQuantity(member)+1 > *limit {
		return c, FeedbackNone
	}

	next := c
	next.Lines = c.cloneLines()
	next.Lines[i].Quantity++
	recalcLine(&next.Lines[i])
	return next, FeedbackAdded
}

// Decrement giảm số lượng một line đi 1; về 0 thì line bị xóa khỏi giỏ.
func (c Cart) Decrement(lineID string) (Cart, Feedback) {
	i := c.FindLine(lineID)
	if i < 0 {
		return c, FeedbackNone
	}

	next := c
	next.Lines = c.cloneLines()

	if next.Lines[i].Quantity <= 1 {
		next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
		return next, FeedbackRemoved
	}

	next.Lines[i].Quantity--
	recalcLine(&next.Lines[i])
	return next, FeedbackReduced
}

// Remove xóa hẳn một line khỏi giỏ.
func (c Cart) Remove(lineID string) (Cart, Feedback) {
	i := c.FindLine(lineID)
	if i < 0 {
		return c, FeedbackNone
	}

	next := c
	next.Lines = append(c.cloneLines()[:i], c.Lines[i+1:]...)
	return next, FeedbackRemoved
}

// Clear xóa sạch giỏ hàng.
func (c Cart) Clear() (Cart, Feedback) {
	if c.IsEmpty() {
		return c, FeedbackNone
	}
	next := c
	next.Lines = []CartLine{}
	return next, FeedbackCleared
}
