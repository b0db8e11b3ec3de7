// Package service chứa nghiệp vụ catalog: cây danh mục, resolver trần tồn kho
// hiệu dụng và các CRUD service trên MongoDB.
package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/catalog/models"
)

// CategoryTree là ảnh chụp cây danh mục của một tenant, tra cứu theo ID.
// Bất biến sau khi dựng, an toàn dùng đồng thời.
type CategoryTree struct {
	byID map[primitive.ObjectID]models.Category
}

// NewCategoryTree dựng CategoryTree từ danh sách danh mục của tenant.
func NewCategoryTree(categories []models.Category) *CategoryTree {
	byID := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}
	return &CategoryTree{byID: byID}
}

// Get trả về danh mục theo ID.
func (t *CategoryTree) Get(id primitive.ObjectID) (models.Category, bool) {
	cat, ok := t.byID[id]
	return cat, ok
}

// AncestorChain trả về chuỗi danh mục từ id lên gốc (bao gồm chính nó).
// parentId trỏ vòng hoặc trỏ tới danh mục không tồn tại thì dừng tại đó:
// dữ liệu hỏng không được phép treo request.
func (t *CategoryTree) AncestorChain(id primitive.ObjectID) []models.Category {
	var chain []models.Category
	seen := make(map[primitive.ObjectID]bool)

	current, ok := t.byID[id]
	for ok {
		if seen[current.ID] {
			break
		}
		seen[current.ID] = true
		chain = append(chain, current)

		if current.ParentID == nil {
			break
		}
		current, ok = t.byID[*current.ParentID]
	}
	return chain
}

// Declaring trả về mọi danh mục trong cây có khai báo trần tồn kho.
func (t *CategoryTree) Declaring() []models.Category {
	var declaring []models.Category
	for _, cat := range t.byID {
		if cat.DeclaresCeiling() {
			declaring = append(declaring, cat)
		}
	}
	return declaring
}

// CeilingAncestors trả về các danh mục trong chuỗi tổ tiên của id (gồm chính nó)
// có khai báo trần tồn kho, theo thứ tự từ gần tới xa.
func (t *CategoryTree) CeilingAncestors(id primitive.ObjectID) []models.Category {
	var declaring []models.Category
	for _, cat := range t.AncestorChain(id) {
		if cat.DeclaresCeiling() {
			declaring = append(declaring, cat)
		}
	}
	return declaring
}
