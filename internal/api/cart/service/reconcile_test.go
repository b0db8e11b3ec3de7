package service

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/cart/models"
	"resto_commerce/internal/api/events"
)

// flatAncestors: mỗi danh mục là tổ tiên của chính nó, không có cây.
func flatAncestors(id primitive.ObjectID) []primitive.ObjectID {
	return []primitive.ObjectID{id}
}

func oidPtr(id primitive.ObjectID) *primitive.ObjectID { return &id }

func lineOf(categoryID primitive.ObjectID, qty int64, addedAt int64, seq int64, price float64) models.CartLine {
	return models.CartLine{
		LineID: primitive.NewObjectID().Hex(),
		Product: models.ProductSnapshot{
			ProductID:  primitive.NewObjectID(),
			Name:       "SP",
			BasePrice:  price,
			CategoryID: oidPtr(categoryID),
		},
		Quantity:   qty,
		UnitPrice:  price,
		TotalPrice: price * float64(qty),
		AddedAt:    addedAt,
		Seq:        seq,
	}
}

func TestReconcile_ReducesOldestFirst(t *testing.T) {
	catID := primitive.NewObjectID()
	cart := models.Cart{Lines: []models.CartLine{
		lineOf(catID, 3, 100, 0, 2.0), // cũ nhất, bị cắt trước
		lineOf(catID, 2, 200, 1, 2.0),
	}}

	// Tổng 5, tồn kho còn 2: phải cắt 3 — line đầu về 0 (xóa), line sau giữ 2
	next, adjustments := Reconcile(cart, []CeilingScope{{CategoryID: catID, Name: "Drinks", CurrentStock: 2}}, flatAncestors)

	if len(adjustments) != 1 {
		t.Fatalf("Phải có đúng 1 adjustment, nhận được %d", len(adjustments))
	}
	adj := adjustments[0]
	if adj.Kind != events.CartAdjustReduced {
		t.Errorf("Tồn kho còn 2 (>0) phải là reduced, nhận được %v", adj.Kind)
	}
	if adj.RemovedQty != 3 {
		t.Errorf("RemovedQty phải là 3, nhận được %d", adj.RemovedQty)
	}
	if adj.CategoryName != "Drinks" {
		t.Errorf("Adjustment phải mang tên danh mục ràng buộc, nhận được %q", adj.CategoryName)
	}

	if len(next.Lines) != 1 {
		t.Fatalf("Line cũ nhất về 0 phải bị xóa, còn lại %d line", len(next.Lines))
	}
	if next.Lines[0].Quantity != 2 {
		t.Errorf("Line mới hơn phải giữ nguyên 2, nhận được %d", next.Lines[0].Quantity)
	}
	if next.Lines[0].TotalPrice != 4.0 {
		t.Errorf("totalPrice phải được tính lại sau reconcile, nhận được %v", next.Lines[0].TotalPrice)
	}
}

func TestReconcile_PartialReduceKeepsLine(t *testing.T) {
	catID := primitive.NewObjectID()
	cart := models.Cart{Lines: []models.CartLine{
		lineOf(catID, 5, 100, 0, 1.0),
	}}

	next, adjustments := Reconcile(cart, []CeilingScope{{CategoryID: catID, Name: "Drinks", CurrentStock: 3}}, flatAncestors)

	if len(next.Lines) != 1 || next.Lines[0].Quantity != 3 {
		t.Fatalf("Line phải bị co về 3, nhận được %+v", next.Lines)
	}
	if adjustments[0].RemovedQty != 2 {
		t.Errorf("RemovedQty phải là 2, nhận được %d", adjustments[0].RemovedQty)
	}
}

func TestReconcile_EmptiedWhenStockZero(t *testing.T) {
	catID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	cart := models.Cart{Lines: []models.CartLine{
		lineOf(catID, 2, 100, 0, 1.0),
		lineOf(otherID, 1, 150, 1, 1.0), // danh mục khác, không bị đụng
		lineOf(catID, 1, 200, 2, 1.0),
	}}

	next, adjustments := Reconcile(cart, []CeilingScope{{CategoryID: catID, Name: "Drinks", CurrentStock: 0}}, flatAncestors)

	if len(adjustments) != 1 || adjustments[0].Kind != events.CartAdjustEmptied {
		t.Fatalf("Tồn kho 0 phải báo emptied, nhận được %+v", adjustments)
	}
	if adjustments[0].RemovedQty != 3 {
		t.Errorf("Toàn bộ 3 đơn vị của danh mục phải bị cắt, nhận được %d", adjustments[0].RemovedQty)
	}
	if len(next.Lines) != 1 {
		t.Fatalf("Chỉ line của danh mục khác được ở lại, nhận được %d line", len(next.Lines))
	}
	if *next.Lines[0].Product.CategoryID != otherID {
		t.Error("Line sống sót phải thuộc danh mục khác")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	catID := primitive.NewObjectID()
	cart := models.Cart{Lines: []models.CartLine{
		lineOf(catID, 5, 100, 0, 1.0),
	}}
	scopes := []CeilingScope{{CategoryID: catID, Name: "Drinks", CurrentStock: 3}}

	once, adjustments := Reconcile(cart, scopes, flatAncestors)
	if len(adjustments) != 1 {
		t.Fatal("Lần chạy đầu phải có adjustment")
	}

	twice, again := Reconcile(once, scopes, flatAncestors)
	if len(again) != 0 {
		t.Errorf("Chạy lại với cùng tồn kho phải là no-op, nhận được %d adjustment", len(again))
	}
	if twice.TotalQuantity() != once.TotalQuantity() {
		t.Error("Giỏ không được thay đổi ở lần chạy thứ hai")
	}
}

func TestReconcile_NoScopesIsNoOp(t *testing.T) {
	catID := primitive.NewObjectID()
	cart := models.Cart{Lines: []models.CartLine{
		lineOf(catID, 100, 100, 0, 1.0),
	}}

	next, adjustments := Reconcile(cart, nil, flatAncestors)
	if len(adjustments) != 0 || next.TotalQuantity() != 100 {
		t.Error("Không danh mục nào khai báo trần thì reconcile phải bỏ qua hoàn toàn")
	}
}

func TestReconcile_TieBreakBySeq(t *testing.T) {
	catID := primitive.NewObjectID()
	// Hai line cùng AddedAt: Seq nhỏ hơn bị cắt trước
	first := lineOf(catID, 2, 100, 0, 1.0)
	second := lineOf(catID, 2, 100, 1, 1.0)
	cart := models.Cart{Lines: []models.CartLine{first, second}}

	next, _ := Reconcile(cart, []CeilingScope{{CategoryID: catID, Name: "Drinks", CurrentStock: 2}}, flatAncestors)

	if len(next.Lines) != 1 {
		t.Fatalf("Line Seq 0 phải bị cắt hết, còn lại %d line", len(next.Lines))
	}
	if next.Lines[0].Seq != 1 {
		t.Errorf("Line sống sót phải là Seq 1, nhận được Seq %d", next.Lines[0].Seq)
	}
}

func TestReconcile_SubtreeMembership(t *testing.T) {
	parentID := primitive.NewObjectID()
	childID := primitive.NewObjectID()

	// child nằm dưới parent: trần của parent phải ràng buộc line thuộc child
	treeAncestors := func(id primitive.ObjectID) []primitive.ObjectID {
		if id == childID {
			return []primitive.ObjectID{childID, parentID}
		}
		return []primitive.ObjectID{id}
	}

	cart := models.Cart{Lines: []models.CartLine{
		lineOf(childID, 4, 100, 0, 1.0),
	}}

	next, adjustments := Reconcile(cart, []CeilingScope{{CategoryID: parentID, Name: "Drinks", CurrentStock: 1}}, treeAncestors)

	if len(adjustments) != 1 || next.TotalQuantity() != 1 {
		t.Errorf("Trần của danh mục cha phải co line của danh mục con, nhận được %+v", next.Lines)
	}
}

func TestClampProduct(t *testing.T) {
	productID := primitive.NewObjectID()
	catID := primitive.NewObjectID()

	line := lineOf(catID, 5, 100, 0, 1.0)
	line.Product.ProductID = productID
	cart := models.Cart{Lines: []models.CartLine{line}}

	next, removed := ClampProduct(cart, productID, 2)
	if removed != 3 || next.Lines[0].Quantity != 2 {
		t.Errorf("ClampProduct phải cắt 3 đơn vị còn 2, nhận được removed=%d", removed)
	}

	same, removed := ClampProduct(next, productID, 2)
	if removed != 0 || same.TotalQuantity() != 2 {
		t.Error("ClampProduct phải idempotent")
	}

	gone, removed := ClampProduct(next, productID, 0)
	if removed != 2 || len(gone.Lines) != 0 {
		t.Error("Tồn kho sản phẩm về 0 phải xóa hẳn line")
	}
}
