package service

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	cartmodels "resto_commerce/internal/api/cart/models"
	cartsvc "resto_commerce/internal/api/cart/service"
	catalogsvc "resto_commerce/internal/api/catalog/service"
)

// StockCheckService recheck tồn kho tươi cho cả giỏ ngay trước khi đặt:
// dry-run reconcile trên tồn kho danh mục hiện tại cộng kiểm tra tồn kho
// riêng của từng sản phẩm. Không sửa giỏ, không sửa catalog.
type StockCheckService struct {
	categories *catalogsvc.CategoryService
	products   *catalogsvc.ProductService
}

// NewStockCheckService tạo mới StockCheckService.
func NewStockCheckService() *StockCheckService {
	return &StockCheckService{
		categories: catalogsvc.NewCategoryService(),
		products:   catalogsvc.NewProductService(),
	}
}

// Check trả về danh sách thiếu hụt tồn kho của giỏ, rỗng nếu mọi thứ còn đủ.
func (s *StockCheckService) Check(ctx context.Context, tenantID primitive.ObjectID, cart cartmodels.Cart) ([]StockIssue, error) {
	if cart.IsEmpty() {
		return nil, nil
	}

	tree, err := s.categories.TreeOf(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Dry-run reconcile trên mọi danh mục có khai báo trần
	declaring := tree.Declaring()
	scopes := make([]cartsvc.CeilingScope, 0, len(declaring))
	for _, cat := range declaring {
		current := int64(0)
		if cat.CurrentStock != nil {
			current = *cat.CurrentStock
		}
		scopes = append(scopes, cartsvc.CeilingScope{
			CategoryID:   cat.ID,
			Name:         cat.Name,
			CurrentStock: current,
		})
	}
	// Thứ tự ổn định để thông báo không nhảy lung tung giữa hai lần check
	sort.Slice(scopes, func(a, b int) bool { return scopes[a].Name < scopes[b].Name })

	var issues []StockIssue
	_, adjustments := cartsvc.Reconcile(cart, scopes, cartsvc.TreeAncestors(tree))
	for _, adj := range adjustments {
		var available int64
		for _, scope := range scopes {
			if scope.CategoryID == adj.CategoryID {
				available = scope.CurrentStock
				break
			}
		}
		issues = append(issues, StockIssue{
			CategoryName: adj.CategoryName,
			Requested:    available + adj.RemovedQty,
			Available:    available,
			Emptied:      adj.RemovedQty > 0 && available == 0,
		})
	}

	// Tồn kho riêng của sản phẩm
	productIssues, err := s.checkProductStock(ctx, tenantID, cart)
	if err != nil {
		return issues, err
	}
	return append(issues, productIssues...), nil
}

// checkProductStock so tổng số lượng mỗi sản phẩm trong giỏ với stock riêng của nó.
func (s *StockCheckService) checkProductStock(ctx context.Context, tenantID primitive.ObjectID, cart cartmodels.Cart) ([]StockIssue, error) {
	totals := make(map[primitive.ObjectID]int64)
	names := make(map[primitive.ObjectID]string)
	var order []primitive.ObjectID
	for _, line := range cart.Lines {
		if _, seen := totals[line.Product.ProductID]; !seen {
			order = append(order, line.Product.ProductID)
			names[line.Product.ProductID] = line.Product.Name
		}
		totals[line.Product.ProductID] += line.Quantity
	}

	var issues []StockIssue
	for _, productID := range order {
		product, err := s.products.FindOne(ctx, bson.M{"_id": productID, "tenantId": tenantID}, nil)
		if err != nil {
			// Sản phẩm đã biến mất khỏi catalog: coi như hết hàng
			issues = append(issues, StockIssue{
				CategoryName: names[productID],
				Requested:    totals[productID],
				Available:    0,
				Emptied:      true,
			})
			continue
		}
		if product.Stock == nil || totals[productID] <= *product.Stock {
			continue
		}
		issues = append(issues, StockIssue{
			CategoryName: product.Name,
			Requested:    totals[productID],
			Available:    *product.Stock,
			Emptied:      *product.Stock == 0,
		})
	}
	return issues, nil
}
