package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "resto_commerce/internal/api/base/service"
	"resto_commerce/internal/api/catalog/models"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
)

// CategoryService quản lý danh mục sản phẩm.
type CategoryService struct {
	*basesvc.BaseServiceMongoImpl[models.Category]
}

// NewCategoryService tạo mới CategoryService trên collection categories.
func NewCategoryService() *CategoryService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Categories)
	return &CategoryService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Category](col),
	}
}

// TreeOf dựng ảnh chụp cây danh mục hiện tại của tenant.
func (s *CategoryService) TreeOf(ctx context.Context, tenantID primitive.ObjectID) (*CategoryTree, error) {
	categories, err := s.Find(ctx, bson.M{"tenantId": tenantID}, nil)
	if err != nil {
		return nil, err
	}
	return NewCategoryTree(categories), nil
}

// SetCurrentStock gán tồn kho còn lại của một danh mục có khai báo trần
// và phát StockChangeEvent cho reconciliation loop. Giá trị âm bị chặn từ 0.
func (s *CategoryService) SetCurrentStock(ctx context.Context, tenantID, categoryID primitive.ObjectID, stock int64) (models.Category, error) {
	if stock < 0 {
		stock = 0
	}

	updated, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": categoryID, "tenantId": tenantID, "maxStock": bson.M{"$exists": true}},
		&basesvc.UpdateData{Set: map[string]interface{}{"currentStock": stock}},
		nil,
	)
	if err != nil {
		return updated, err
	}

	catID := categoryID
	events.EmitStockChanged(context.WithoutCancel(ctx), events.StockChangeEvent{
		TenantID:     tenantID,
		CategoryID:   &catID,
		CurrentStock: stock,
	})
	return updated, nil
}

// DecrementStock trừ tồn kho danh mục một cách nguyên tử với điều kiện
// currentStock ≥ qty. Trả về ErrStockInsufficient khi điều kiện không thỏa —
// đây là chốt chặn oversell cuối cùng khi tạo đơn.
func (s *CategoryService) DecrementStock(ctx context.Context, tenantID, categoryID primitive.ObjectID, qty int64) (models.Category, error) {
	updated, err := s.FindOneAndUpdate(ctx,
		bson.M{
			"_id":          categoryID,
			"tenantId":     tenantID,
			"currentStock": bson.M{"$gte": qty},
		},
		&basesvc.UpdateData{Inc: map[string]interface{}{"currentStock": -qty}},
		nil,
	)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			cat, findErr := s.FindOne(ctx, bson.M{"_id": categoryID, "tenantId": tenantID}, nil)
			available := int64(0)
			scope := "category"
			if findErr == nil {
				scope = cat.Name
				if cat.CurrentStock != nil {
					available = *cat.CurrentStock
				}
			}
			return updated, common.NewStockInsufficientError(scope, qty, available)
		}
		return updated, err
	}

	current := int64(0)
	if updated.CurrentStock != nil {
		current = *updated.CurrentStock
	}
	catID := categoryID
	events.EmitStockChanged(context.WithoutCancel(ctx), events.StockChangeEvent{
		TenantID:     tenantID,
		CategoryID:   &catID,
		CurrentStock: current,
	})
	return updated, nil
}

// IncrementStock hoàn trả tồn kho danh mục (compensation khi tạo đơn thất bại giữa chừng).
func (s *CategoryService) IncrementStock(ctx context.Context, tenantID, categoryID primitive.ObjectID, qty int64) error {
	_, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": categoryID, "tenantId": tenantID, "maxStock": bson.M{"$exists": true}},
		&basesvc.UpdateData{Inc: map[string]interface{}{"currentStock": qty}},
		nil,
	)
	return err
}

// ProductService quản lý sản phẩm.
type ProductService struct {
	*basesvc.BaseServiceMongoImpl[models.Product]
}

// NewProductService tạo mới ProductService trên collection products.
func NewProductService() *ProductService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Products)
	return &ProductService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Product](col),
	}
}

// FindActive trả về các sản phẩm đang bán của tenant theo thứ tự hiển thị.
func (s *ProductService) FindActive(ctx context.Context, tenantID primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
	return s.Find(ctx, bson.M{"tenantId": tenantID, "active": true}, opts)
}

// DecrementStock trừ tồn kho riêng của sản phẩm với điều kiện stock ≥ qty.
// Sản phẩm không khai báo stock riêng thì bỏ qua (không có gì để trừ).
func (s *ProductService) DecrementStock(ctx context.Context, tenantID, productID primitive.ObjectID, qty int64) (models.Product, error) {
	product, err := s.FindOne(ctx, bson.M{"_id": productID, "tenantId": tenantID}, nil)
	if err != nil {
		return product, err
	}
	if product.Stock == nil {
		return product, nil
	}

	updated, err := s.FindOneAndUpdate(ctx,
		bson.M{
			"_id":      productID,
			"tenantId": tenantID,
			"stock":    bson.M{"$gte": qty},
		},
		&basesvc.UpdateData{Inc: map[string]interface{}{"stock": -qty}},
		nil,
	)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			available := int64(0)
			if product.Stock != nil {
				available = *product.Stock
			}
			return updated, common.NewStockInsufficientError(ScopeProduct, qty, available)
		}
		return updated, err
	}

	current := int64(0)
	if updated.Stock != nil {
		current = *updated.Stock
	}
	prodID := productID
	events.EmitStockChanged(context.WithoutCancel(ctx), events.StockChangeEvent{
		TenantID:     tenantID,
		ProductID:    &prodID,
		CurrentStock: current,
	})
	return updated, nil
}

// IncrementStock hoàn trả tồn kho riêng của sản phẩm.
func (s *ProductService) IncrementStock(ctx context.Context, tenantID, productID primitive.ObjectID, qty int64) error {
	_, err := s.FindOneAndUpdate(ctx,
		bson.M{"_id": productID, "tenantId": tenantID, "stock": bson.M{"$exists": true}},
		&basesvc.UpdateData{Inc: map[string]interface{}{"stock": qty}},
		nil,
	)
	return err
}

// ExtraGroupService quản lý nhóm topping.
type ExtraGroupService struct {
	*basesvc.BaseServiceMongoImpl[models.ExtraGroup]
}

// NewExtraGroupService tạo mới ExtraGroupService.
func NewExtraGroupService() *ExtraGroupService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.ExtraGroups)
	return &ExtraGroupService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.ExtraGroup](col),
	}
}

// ExtraService quản lý topping.
type ExtraService struct {
	*basesvc.BaseServiceMongoImpl[models.Extra]
}

// NewExtraService tạo mới ExtraService.
func NewExtraService() *ExtraService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Extras)
	return &ExtraService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Extra](col),
	}
}

// FindByGroup trả về các topping của một nhóm theo thứ tự hiển thị.
func (s *ExtraService) FindByGroup(ctx context.Context, tenantID, groupID primitive.ObjectID) ([]models.Extra, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}})
	return s.Find(ctx, bson.M{"tenantId": tenantID, "groupId": groupID}, opts)
}
