package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func int64Ptr(v int64) *int64 { return &v }

func testSnapshot(price float64) ProductSnapshot {
	return ProductSnapshot{
		ProductID: primitive.NewObjectID(),
		Name:      "Cola",
		BasePrice: price,
	}
}

func TestAddSimple_MergesIntoOneLine(t *testing.T) {
	snapshot := testSnapshot(2.5)
	cart := Cart{}

	cart, fb1 := cart.AddSimple(snapshot, nil, MatchAll, 100)
	cart, fb2 := cart.AddSimple(snapshot, nil, MatchAll, 200)

	if fb1 != FeedbackAdded || fb2 != FeedbackAdded {
		t.Errorf("Cả hai lần thêm phải trả về added, nhận được %v và %v", fb1, fb2)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("Simple add cùng sản phẩm phải gộp vào một line, nhận được %d line", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 2 {
		t.Errorf("Quantity phải là 2, nhận được %d", cart.Lines[0].Quantity)
	}
	if cart.Lines[0].TotalPrice != 5.0 {
		t.Errorf("totalPrice phải là unitPrice × quantity (5.0), nhận được %v", cart.Lines[0].TotalPrice)
	}
}

func TestAddSimple_SilentNoOpAtCeiling(t *testing.T) {
	snapshot := testSnapshot(2.5)
	cart := Cart{}

	cart, _ = cart.AddSimple(snapshot, int64Ptr(2), MatchAll, 100)
	cart, _ = cart.AddSimple(snapshot, int64Ptr(2), MatchAll, 200)

	before := cart
	next, feedback := cart.AddSimple(snapshot, int64Ptr(2), MatchAll, 300)

	if feedback != FeedbackNone {
		t.Errorf("Chạm trần phải là no-op im lặng (none), nhận được %v", feedback)
	}
	if next.TotalQuantity() != before.TotalQuantity() {
		t.Error("Giỏ không được thay đổi khi chạm trần")
	}
}

func TestAddSimple_DoesNotMutateOriginal(t *testing.T) {
	snapshot := testSnapshot(1.0)
	original := Cart{}
	original, _ = original.AddSimple(snapshot, nil, MatchAll, 100)

	next, _ := original.AddSimple(snapshot, nil, MatchAll, 200)

	if original.Lines[0].Quantity != 1 {
		t.Error("Mutation phải trả về bản sao, giỏ gốc không được thay đổi")
	}
	if next.Lines[0].Quantity != 2 {
		t.Errorf("Bản sao phải có quantity 2, nhận được %d", next.Lines[0].Quantity)
	}
}

func TestAddWithSelection_AtomicBlock(t *testing.T) {
	snapshot := testSnapshot(3.0)
	cart := Cart{}

	// Đã có 3 trong giỏ, trần 5: thêm khối 4 phải bị từ chối nguyên khối
	cart, _, ok, _ := cart.AddWithSelection("line-1", snapshot, 3, nil, "", int64Ptr(5), MatchAll, 100)
	if !ok {
		t.Fatal("Khối đầu (3/5) phải được chấp nhận")
	}

	next, feedback, ok, shortfall := cart.AddWithSelection("line-2", snapshot, 4, nil, "", int64Ptr(5), MatchAll, 200)
	if ok {
		t.Fatal("Khối 4 khi chỉ còn chỗ cho 2 phải bị từ chối nguyên khối")
	}
	if feedback != FeedbackNone {
		t.Errorf("Từ chối phải trả về feedback none, nhận được %v", feedback)
	}
	if shortfall != 2 {
		t.Errorf("Shortfall phải là trần − đã có trong giỏ (2), nhận được %d", shortfall)
	}
	if next.TotalQuantity() != 3 {
		t.Error("Giỏ phải giữ nguyên khi khối bị từ chối: không thêm một phần")
	}
}

func TestAddWithSelection_ExtrasAndSizeInUnitPrice(t *testing.T) {
	snapshot := testSnapshot(10.0)
	snapshot.DiscountPercent = 10 // 10.0 → 9.0
	snapshot.Size = &SizeSelection{Name: "L", PriceDelta: 2.0}

	extras := []CartExtra{
		{ExtraID: primitive.NewObjectID(), Name: "Cheese", Price: 1.5},
		{ExtraID: primitive.NewObjectID(), Name: "Sauce", Price: 1.0,
			SubOption: &CartSubOption{Name: "Spicy", Price: 0.5}}, // sub-option thay giá topping
	}

	cart, _, ok, _ := Cart{}.AddWithSelection("line-1", snapshot, 2, extras, "không hành", nil, MatchAll, 100)
	if !ok {
		t.Fatal("Không có trần thì khối phải được chấp nhận")
	}

	line := cart.Lines[0]
	wantUnit := 9.0 + 2.0 + 1.5 + 0.5
	if line.UnitPrice != wantUnit {
		t.Errorf("UnitPrice phải là %.2f (giá sau discount + size + topping), nhận được %.2f", wantUnit, line.UnitPrice)
	}
	if line.TotalPrice != wantUnit*2 {
		t.Errorf("totalPrice phải là unitPrice × quantity, nhận được %.2f", line.TotalPrice)
	}
	if line.Comment != "không hành" {
		t.Errorf("Comment phải được giữ trên line, nhận được %q", line.Comment)
	}
}

func TestIncrementDecrementRemove(t *testing.T) {
	snapshot := testSnapshot(2.0)
	cart := Cart{}
	cart, _ = cart.AddSimple(snapshot, nil, MatchAll, 100)
	lineID := cart.Lines[0].LineID

	cart, feedback := cart.Increment(lineID, nil, MatchAll)
	if feedback != FeedbackAdded || cart.Lines[0].Quantity != 2 {
		t.Errorf("Increment phải tăng quantity lên 2 với feedback added, nhận được %v / %d", feedback, cart.Lines[0].Quantity)
	}

	cart, feedback = cart.Decrement(lineID)
	if feedback != FeedbackReduced || cart.Lines[0].Quantity != 1 {
		t.Errorf("Decrement phải giảm về 1 với feedback reduced, nhận được %v", feedback)
	}

	cart, feedback = cart.Decrement(lineID)
	if feedback != FeedbackRemoved || len(cart.Lines) != 0 {
		t.Errorf("Decrement về 0 phải xóa line với feedback removed, nhận được %v / %d line", feedback, len(cart.Lines))
	}
}

func TestIncrement_BlockedAtCeiling(t *testing.T) {
	snapshot := testSnapshot(2.0)
	cart := Cart{}
	cart, _ = cart.AddSimple(snapshot, int64Ptr(1), MatchAll, 100)
	lineID := cart.Lines[0].LineID

	next, feedback := cart.Increment(lineID, int64Ptr(1), MatchAll)
	if feedback != FeedbackNone {
		t.Errorf("Increment chạm trần phải trả về none, nhận được %v", feedback)
	}
	if next.Lines[0].Quantity != 1 {
		t.Error("Quantity không được vượt trần")
	}
}

func TestClear(t *testing.T) {
	snapshot := testSnapshot(2.0)
	cart := Cart{}
	cart, _ = cart.AddSimple(snapshot, nil, MatchAll, 100)

	cart, feedback := cart.Clear()
	if feedback != FeedbackCleared || !cart.IsEmpty() {
		t.Errorf("Clear phải xóa sạch giỏ với feedback cleared, nhận được %v", feedback)
	}

	_, feedback = cart.Clear()
	if feedback != FeedbackNone {
		t.Errorf("Clear giỏ trống phải trả về none, nhận được %v", feedback)
	}
}

func TestScopeQuantity_CountsOnlyMatchingLines(t *testing.T) {
	colaID := primitive.NewObjectID()
	fantaID := primitive.NewObjectID()

	cart := Cart{}
	cart, _ = cart.AddSimple(ProductSnapshot{ProductID: colaID, Name: "Cola", BasePrice: 1}, nil, MatchAll, 100)
	cart, _ = cart.AddSimple(ProductSnapshot{ProductID: fantaID, Name: "Fanta", BasePrice: 1}, nil, MatchAll, 200)
	cart, _ = cart.AddSimple(ProductSnapshot{ProductID: colaID, Name: "Cola", BasePrice: 1}, nil, MatchAll, 300)

	if got := cart.ScopeQuantity(MatchProduct(colaID)); got != 2 {
		t.Errorf("Scope theo sản phẩm phải đếm 2, nhận được %d", got)
	}
	if got := cart.ScopeQuantity(MatchAll); got != 3 {
		t.Errorf("MatchAll phải đếm cả giỏ (3), nhận được %d", got)
	}
}
