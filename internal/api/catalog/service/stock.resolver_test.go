package service

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/catalog/models"
)

func int64Ptr(v int64) *int64 { return &v }

func oidPtr(id primitive.ObjectID) *primitive.ObjectID { return &id }

// Cây ba tầng: drinks (trần 10) > sodas (trần 4) > colas (không trần).
func buildTestTree() (*CategoryTree, primitive.ObjectID, primitive.ObjectID, primitive.ObjectID) {
	drinksID := primitive.NewObjectID()
	sodasID := primitive.NewObjectID()
	colasID := primitive.NewObjectID()

	tree := NewCategoryTree([]models.Category{
		{ID: drinksID, Name: "Drinks", MaxStock: int64Ptr(10), CurrentStock: int64Ptr(10)},
		{ID: sodasID, Name: "Sodas", ParentID: oidPtr(drinksID), MaxStock: int64Ptr(4), CurrentStock: int64Ptr(4)},
		{ID: colasID, Name: "Colas", ParentID: oidPtr(sodasID)},
	})
	return tree, drinksID, sodasID, colasID
}

func TestResolveEffectiveCeiling_MinOverAncestors(t *testing.T) {
	tree, _, sodasID, colasID := buildTestTree()

	product := models.Product{
		Name:          "Cola",
		SubcategoryID: oidPtr(colasID),
	}

	result := ResolveEffectiveCeiling(product, tree)
	if result.Ceiling == nil {
		t.Fatal("Sản phẩm thuộc nhánh có trần phải có ceiling, nhận được nil")
	}
	if *result.Ceiling != 4 {
		t.Errorf("Ceiling phải là min của chuỗi tổ tiên (4), nhận được %d", *result.Ceiling)
	}
	if result.Scope != "Sodas" {
		t.Errorf("Scope phải là danh mục đang ràng buộc (Sodas), nhận được %q", result.Scope)
	}
	if result.CategoryID == nil || *result.CategoryID != sodasID {
		t.Error("CategoryID phải trỏ tới danh mục đang ràng buộc")
	}
}

func TestResolveEffectiveCeiling_ProductStockWins(t *testing.T) {
	tree, _, _, colasID := buildTestTree()

	product := models.Product{
		Name:          "Cola hiếm",
		Stock:         int64Ptr(2),
		SubcategoryID: oidPtr(colasID),
	}

	result := ResolveEffectiveCeiling(product, tree)
	if result.Ceiling == nil || *result.Ceiling != 2 {
		t.Fatalf("Tồn kho riêng của sản phẩm (2) nhỏ hơn trần danh mục, phải thắng: %+v", result)
	}
	if result.Scope != ScopeProduct {
		t.Errorf("Scope phải là %q khi sản phẩm tự ràng buộc, nhận được %q", ScopeProduct, result.Scope)
	}
	if result.CategoryID != nil {
		t.Error("CategoryID phải nil khi ràng buộc đến từ sản phẩm")
	}
}

func TestResolveEffectiveCeiling_NoCeilingAnywhere(t *testing.T) {
	freeID := primitive.NewObjectID()
	tree := NewCategoryTree([]models.Category{
		{ID: freeID, Name: "Pizzas"},
	})

	product := models.Product{Name: "Margherita", CategoryID: oidPtr(freeID)}

	result := ResolveEffectiveCeiling(product, tree)
	if !result.Unlimited() {
		t.Errorf("Không ai khai báo trần thì ceiling phải nil, nhận được %+v", result)
	}
	if !result.Allows(1000) {
		t.Error("Ceiling nil phải cho phép mọi số lượng")
	}
}

func TestResolveEffectiveCeiling_MissingCurrentStockTreatedAsZero(t *testing.T) {
	brokenID := primitive.NewObjectID()
	tree := NewCategoryTree([]models.Category{
		{ID: brokenID, Name: "Broken", MaxStock: int64Ptr(5)}, // currentStock thiếu
	})

	product := models.Product{Name: "X", CategoryID: oidPtr(brokenID)}

	result := ResolveEffectiveCeiling(product, tree)
	if result.Ceiling == nil || *result.Ceiling != 0 {
		t.Errorf("maxStock có mà currentStock thiếu phải coi như 0, nhận được %+v", result)
	}
}

func TestAncestorChain_CycleGuard(t *testing.T) {
	aID := primitive.NewObjectID()
	bID := primitive.NewObjectID()

	// a.parent = b, b.parent = a: dữ liệu hỏng tạo vòng
	tree := NewCategoryTree([]models.Category{
		{ID: aID, Name: "A", ParentID: oidPtr(bID), MaxStock: int64Ptr(3), CurrentStock: int64Ptr(3)},
		{ID: bID, Name: "B", ParentID: oidPtr(aID)},
	})

	chain := tree.AncestorChain(aID)
	if len(chain) != 2 {
		t.Fatalf("Chuỗi tổ tiên có vòng phải dừng sau khi đi hết các nút, nhận được %d nút", len(chain))
	}

	// Resolver vẫn phải trả về kết quả hữu hạn trên cây có vòng
	product := models.Product{Name: "X", CategoryID: oidPtr(aID)}
	result := ResolveEffectiveCeiling(product, tree)
	if result.Ceiling == nil || *result.Ceiling != 3 {
		t.Errorf("Resolver trên cây có vòng phải trả về trần của A (3), nhận được %+v", result)
	}
}

func TestAncestorChain_DanglingParent(t *testing.T) {
	orphanID := primitive.NewObjectID()
	ghostID := primitive.NewObjectID() // không tồn tại trong cây

	tree := NewCategoryTree([]models.Category{
		{ID: orphanID, Name: "Orphan", ParentID: oidPtr(ghostID)},
	})

	chain := tree.AncestorChain(orphanID)
	if len(chain) != 1 {
		t.Errorf("parentId trỏ tới danh mục không tồn tại phải dừng tại chính nó, nhận được %d nút", len(chain))
	}
}

func TestResolveEffectiveCeiling_Deterministic(t *testing.T) {
	tree, _, _, colasID := buildTestTree()
	product := models.Product{Name: "Cola", SubcategoryID: oidPtr(colasID), Stock: int64Ptr(7)}

	first := ResolveEffectiveCeiling(product, tree)
	second := ResolveEffectiveCeiling(product, tree)

	if *first.Ceiling != *second.Ceiling || first.Scope != second.Scope {
		t.Error("Resolver phải thuần: cùng input cho cùng output")
	}
}
