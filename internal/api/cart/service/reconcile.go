// Package service chứa nghiệp vụ giỏ hàng: mutation có kiểm tra trần tồn kho,
// persist theo tenant + session và reconciliation loop khi tồn kho thay đổi.
package service

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/cart/models"
	"resto_commerce/internal/api/events"
)

// CeilingScope là tồn kho còn lại của một danh mục có khai báo trần,
// input của bước reconcile.
type CeilingScope struct {
	CategoryID   primitive.ObjectID
	Name         string
	CurrentStock int64
}

// Adjustment mô tả một lần thu hẹp giỏ cho một danh mục sau reconcile.
type Adjustment struct {
	CategoryID   primitive.ObjectID
	CategoryName string
	Kind         events.CartAdjustKind
	RemovedQty   int64
}

// AncestorFunc trả về các danh mục tổ tiên (gồm chính nó) của một danh mục.
// Service dựng từ CategoryTree; test dựng từ map.
type AncestorFunc func(categoryID primitive.ObjectID) []primitive.ObjectID

// lineInScope kiểm tra line có thuộc nhánh của scope không.
func lineInScope(line models.CartLine, scopeID primitive.ObjectID, ancestors AncestorFunc) bool {
	categoryID := line.Product.EffectiveCategoryID()
	if categoryID == nil {
		return false
	}
	for _, ancestor := range ancestors(*categoryID) {
		if ancestor == scopeID {
			return true
		}
	}
	return false
}

// Reconcile co giỏ hàng về trong trần tồn kho hiện tại của từng danh mục.
// Hàm thuần và idempotent: giỏ đã vừa vặn thì trả về nguyên trạng, không adjustment.
// Không danh mục nào khai báo trần (scopes rỗng) thì bỏ qua hoàn toàn.
//
// Với mỗi scope vượt trần: giảm line cũ nhất trước (AddedAt tăng dần, Seq phá hòa),
// line về 0 bị xóa khỏi giỏ. Kind = emptied khi tồn kho danh mục đúng 0
// (mọi line của nhánh bị xóa), ngược lại reduced.
func Reconcile(cart models.Cart, scopes []CeilingScope, ancestors AncestorFunc) (models.Cart, []Adjustment) {
	if len(scopes) == 0 || cart.IsEmpty() {
		return cart, nil
	}

	next := cart
	next.Lines = make([]models.CartLine, len(cart.Lines))
	copy(next.Lines, cart.Lines)

	var adjustments []Adjustment
	changed := false

	for _, scope := range scopes {
		var memberIdx []int
		var total int64
		for i := range next.Lines {
			if lineInScope(next.Lines[i], scope.CategoryID, ancestors) {
				memberIdx = append(memberIdx, i)
				total += next.Lines[i].Quantity
			}
		}

		if total <= scope.CurrentStock {
			continue
		}

		// Thứ tự giảm: line cũ nhất trước
		sort.SliceStable(memberIdx, func(a, b int) bool {
			la, lb := next.Lines[memberIdx[a]], next.Lines[memberIdx[b]]
			if la.AddedAt != lb.AddedAt {
				return la.AddedAt < lb.AddedAt
			}
			return la.Seq < lb.Seq
		})

		overflow := total - scope.CurrentStock
		removed := overflow
		for _, i := range memberIdx {
			if overflow <= 0 {
				break
			}
			cut := next.Lines[i].Quantity
			if cut > overflow {
				cut = overflow
			}
			next.Lines[i].Quantity -= cut
			next.Lines[i].TotalPrice = next.Lines[i].UnitPrice * float64(next.Lines[i].Quantity)
			overflow -= cut
		}
		changed = true

		kind := events.CartAdjustReduced
		if scope.CurrentStock == 0 {
			kind = events.CartAdjustEmptied
		}
		adjustments = append(adjustments, Adjustment{
			CategoryID:   scope.CategoryID,
			CategoryName: scope.Name,
			Kind:         kind,
			RemovedQty:   removed,
		})
	}

	if !changed {
		return cart, nil
	}

	// Xóa các line đã về 0, giữ nguyên thứ tự các line còn lại
	kept := next.Lines[:0:0]
	for _, line := range next.Lines {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	next.Lines = kept

	return next, adjustments
}

// ClampProduct co các line của một sản phẩm về tối đa stock đơn vị
// (delta tồn kho ở mức sản phẩm, không qua danh mục). Giảm line cũ nhất trước.
func ClampProduct(cart models.Cart, productID primitive.ObjectID, stock int64) (models.Cart, int64) {
	if stock < 0 {
		stock = 0
	}

	var total int64
	for _, line := range cart.Lines {
		if line.Product.ProductID == productID {
			total += line.Quantity
		}
	}
	if total <= stock {
		return cart, 0
	}

	next := cart
	next.Lines = make([]models.CartLine, len(cart.Lines))
	copy(next.Lines, cart.Lines)

	var memberIdx []int
	for i := range next.Lines {
		if next.Lines[i].Product.ProductID == productID {
			memberIdx = append(memberIdx, i)
		}
	}
	sort.SliceStable(memberIdx, func(a, b int) bool {
		la, lb := next.Lines[memberIdx[a]], next.Lines[memberIdx[b]]
		if la.AddedAt != lb.AddedAt {
			return la.AddedAt < lb.AddedAt
		}
		return la.Seq < lb.Seq
	})

	overflow := total - stock
	removed := overflow
	for _, i := range memberIdx {
		if overflow <= 0 {
			break
		}
		cut := next.Lines[i].Quantity
		if cut > overflow {
			cut = overflow
		}
		next.Lines[i].Quantity -= cut
		next.Lines[i].TotalPrice = next.Lines[i].UnitPrice * float64(next.Lines[i].Quantity)
		overflow -= cut
	}

	kept := next.Lines[:0:0]
	for _, line := range next.Lines {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	next.Lines = kept

	return next, removed
}
