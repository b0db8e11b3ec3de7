package service

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"resto_commerce/internal/api/catalog/models"
)

// ScopeProduct là scope khi trần tồn kho do chính sản phẩm ràng buộc.
const ScopeProduct = "product"

// EffectiveCeiling là kết quả của resolver: trần tồn kho hiệu dụng của một
// sản phẩm tại thời điểm truy vấn. Ceiling nil nghĩa là không có ràng buộc nào.
// Scope cho biết ai đang ràng buộc ("product" hoặc tên danh mục) để hiển thị
// thông báo; CategoryID khác nil khi ràng buộc đến từ một danh mục.
type EffectiveCeiling struct {
	Ceiling    *int64
	Scope      string
	CategoryID *primitive.ObjectID
}

// Unlimited kiểm tra sản phẩm có bị ràng buộc tồn kho không.
func (e EffectiveCeiling) Unlimited() bool { return e.Ceiling == nil }

// Allows kiểm tra số lượng qty có nằm trong trần không.
func (e EffectiveCeiling) Allows(qty int64) bool {
	return e.Ceiling == nil || qty <= *e.Ceiling
}

// ResolveEffectiveCeiling tính trần tồn kho hiệu dụng của một sản phẩm:
// min giữa tồn kho riêng của sản phẩm và currentStock của mọi danh mục
// trong chuỗi tổ tiên có khai báo maxStock. Hàm thuần, không I/O:
// cùng input luôn cho cùng output.
//
// Khi nhiều scope cùng cho giá trị min, scope gần sản phẩm nhất thắng
// (tồn kho riêng của sản phẩm xét trước, rồi đi dần lên gốc cây).
func ResolveEffectiveCeiling(product models.Product, tree *CategoryTree) EffectiveCeiling {
	result := EffectiveCeiling{}

	if product.Stock != nil {
		stock := *product.Stock
		result.Ceiling = &stock
		result.Scope = ScopeProduct
	}

	categoryID := product.EffectiveCategoryID()
	if categoryID == nil || tree == nil {
		return result
	}

	for _, cat := range tree.CeilingAncestors(*categoryID) {
		// maxStock có mà currentStock thiếu là dữ liệu hỏng — coi như 0
		stock := int64(0)
		if cat.CurrentStock != nil {
			stock = *cat.CurrentStock
		}
		if result.Ceiling == nil || stock < *result.Ceiling {
			ceiling := stock
			catID := cat.ID
			result.Ceiling = &ceiling
			result.Scope = cat.Name
			result.CategoryID = &catID
		}
	}

	return result
}
