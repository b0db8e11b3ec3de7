package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "resto_commerce/internal/api/base/service"
	"resto_commerce/internal/api/cart/models"
	catalogmodels "resto_commerce/internal/api/catalog/models"
	catalogsvc "resto_commerce/internal/api/catalog/service"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
	"resto_commerce/internal/logger"
)

// ExtraSelection là một topping khách chọn khi thêm sản phẩm có tùy chọn.
type ExtraSelection struct {
	ExtraID   primitive.ObjectID
	SubOption string // Tên sub-option, rỗng nếu topping không có sub-option
}

// CartService quản lý giỏ hàng persist và reconciliation loop.
type CartService struct {
	*basesvc.BaseServiceMongoImpl[models.Cart]
	categories *catalogsvc.CategoryService
	products   *catalogsvc.ProductService
	extras     *catalogsvc.ExtraService
}

// NewCartService tạo mới CartService trên collection carts.
func NewCartService() *CartService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Carts)
	return &CartService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Cart](col),
		categories:           catalogsvc.NewCategoryService(),
		products:             catalogsvc.NewProductService(),
		extras:               catalogsvc.NewExtraService(),
	}
}

// GetOrCreate trả về giỏ hàng của phiên, tạo giỏ trống nếu chưa có.
func (s *CartService) GetOrCreate(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) (models.Cart, error) {
	cart, err := s.FindOne(ctx, bson.M{"tenantId": tenantID, "sessionKey": sessionKey}, nil)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return cart, err
	}

	created, err := s.InsertOne(ctx, models.Cart{
		TenantID:   tenantID,
		SessionKey: sessionKey,
		Lines:      []models.CartLine{},
	})
	if err != nil {
		// Hai request cùng phiên đua nhau tạo giỏ: thua unique index thì đọc lại
		if existing, findErr := s.FindOne(ctx, bson.M{"tenantId": tenantID, "sessionKey": sessionKey}, nil); findErr == nil {
			return existing, nil
		}
		return created, err
	}
	return created, nil
}

// save persist trạng thái giỏ sau mutation (last-write-wins).
func (s *CartService) save(ctx context.Context, cart models.Cart) (models.Cart, error) {
	return s.UpdateOne(ctx, bson.M{"_id": cart.ID},
		&basesvc.UpdateData{Set: map[string]interface{}{
			"lines":   cart.Lines,
			"nextSeq": cart.NextSeq,
		}}, nil)
}

// snapshotOf chụp lại sản phẩm tại thời điểm thêm vào giỏ.
func snapshotOf(product catalogmodels.Product, size *models.SizeSelection, tree *catalogsvc.CategoryTree) models.ProductSnapshot {
	snapshot := models.ProductSnapshot{
		ProductID:       product.ID,
		Name:            product.Name,
		BasePrice:       product.Price,
		DiscountPercent: product.DiscountPercent,
		Size:            size,
		LegacyCategory:  product.LegacyCategory,
		CategoryID:      product.CategoryID,
		SubcategoryID:   product.SubcategoryID,
	}
	if effective := product.EffectiveCategoryID(); effective != nil {
		if cat, ok := tree.Get(*effective); ok {
			snapshot.CategoryName = cat.Name
		}
	}
	return snapshot
}

// matcherFor dựng LineMatcher cho scope của trần: ràng buộc danh mục đếm mọi line
// thuộc nhánh danh mục đó, ràng buộc sản phẩm chỉ đếm line của chính sản phẩm.
func matcherFor(ceiling catalogsvc.EffectiveCeiling, productID primitive.ObjectID, tree *catalogsvc.CategoryTree) models.LineMatcher {
	if ceiling.CategoryID == nil {
		return models.MatchProduct(productID)
	}
	scopeID := *ceiling.CategoryID
	return func(line models.CartLine) bool {
		return lineInScope(line, scopeID, TreeAncestors(tree))
	}
}

// TreeAncestors chuyển CategoryTree thành AncestorFunc cho reconcile.
func TreeAncestors(tree *catalogsvc.CategoryTree) AncestorFunc {
	return func(categoryID primitive.ObjectID) []primitive.ObjectID {
		chain := tree.AncestorChain(categoryID)
		ids := make([]primitive.ObjectID, len(chain))
		for i, cat := range chain {
			ids[i] = cat.ID
		}
		return ids
	}
}

// loadProductContext tải sản phẩm đang bán, cây danh mục và trần hiệu dụng.
func (s *CartService) loadProductContext(ctx context.Context, tenantID, productID primitive.ObjectID) (catalogmodels.Product, *catalogsvc.CategoryTree, catalogsvc.EffectiveCeiling, error) {
	product, err := s.products.FindOne(ctx, bson.M{"_id": productID, "tenantId": tenantID, "active": true}, nil)
	if err != nil {
		return product, nil, catalogsvc.EffectiveCeiling{}, err
	}

	tree, err := s.categories.TreeOf(ctx, tenantID)
	if err != nil {
		return product, nil, catalogsvc.EffectiveCeiling{}, err
	}

	return product, tree, catalogsvc.ResolveEffectiveCeiling(product, tree), nil
}

// AddSimple thêm một đơn vị sản phẩm vào giỏ (nút "+" trên danh sách).
// Chạm trần tồn kho là no-op im lặng, phản hồi qua feedback chứ không qua lỗi.
func (s *CartService) AddSimple(ctx context.Context, tenantID primitive.ObjectID, sessionKey string, productID primitive.ObjectID) (models.Cart, models.Feedback, error) {
	product, tree, ceiling, err := s.loadProductContext(ctx, tenantID, productID)
	if err != nil {
		return models.Cart{}, models.FeedbackNone, err
	}

	cart, err := s.GetOrCreate(ctx, tenantID, sessionKey)
	if err != nil {
		return cart, models.FeedbackNone, err
	}

	snapshot := snapshotOf(product, nil, tree)
	next, feedback := cart.AddSimple(snapshot, ceiling.Ceiling, matcherFor(ceiling, productID, tree), time.Now().UnixMilli())
	if feedback == models.FeedbackNone {
		return cart, feedback, nil
	}

	saved, err := s.save(ctx, next)
	return saved, feedback, err
}

// AddWithSelection thêm một line mới với số lượng, cỡ, topping và ghi chú.
// Kiểm tra nguyên tử cả khối: không đủ chỗ trong trần thì trả lỗi StockInsufficient
// kèm shortfall, giỏ giữ nguyên.
func (s *CartService) AddWithSelection(ctx context.Context, tenantID primitive.ObjectID, sessionKey string, productID primitive.ObjectID, quantity int64, sizeName string, selections []ExtraSelection, comment string) (models.Cart, models.Feedback, error) {
	if quantity < 1 {
		return models.Cart{}, models.FeedbackNone, common.ErrInvalidInput
	}

	product, tree, ceiling, err := s.loadProductContext(ctx, tenantID, productID)
	if err != nil {
		return models.Cart{}, models.FeedbackNone, err
	}

	size, err := resolveSize(product, sizeName)
	if err != nil {
		return models.Cart{}, models.FeedbackNone, err
	}

	cartExtras, err := s.resolveExtras(ctx, tenantID, selections)
	if err != nil {
		return models.Cart{}, models.FeedbackNone, err
	}

	cart, err := s.GetOrCreate(ctx, tenantID, sessionKey)
	if err != nil {
		return cart, models.FeedbackNone, err
	}

	snapshot := snapshotOf(product, size, tree)
	next, feedback, ok, shortfall := cart.AddWithSelection(
		uuid.NewString(), snapshot, quantity, cartExtras, comment,
		ceiling.Ceiling, matcherFor(ceiling, productID, tree), time.Now().UnixMilli(),
	)
	if !ok {
		return cart, models.FeedbackNone, common.NewStockInsufficientError(ceiling.Scope, quantity, shortfall)
	}

	saved, err := s.save(ctx, next)
	return saved, feedback, err
}

// resolveSize tìm cỡ theo tên trong danh sách cỡ của sản phẩm.
func resolveSize(product catalogmodels.Product, sizeName string) (*models.SizeSelection, error) {
	if sizeName == "" {
		return nil, nil
	}
	for _, size := range product.Sizes {
		if size.Name == sizeName {
			return &models.SizeSelection{Name: size.Name, PriceDelta: size.PriceDelta}, nil
		}
	}
	return nil, common.NewError(common.ErrCodeValidationInput, "Cỡ không tồn tại cho sản phẩm này", common.StatusBadRequest, sizeName)
}

// resolveExtras tải và chụp giá các topping khách chọn.
func (s *CartService) resolveExtras(ctx context.Context, tenantID primitive.ObjectID, selections []ExtraSelection) ([]models.CartExtra, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	cartExtras := make([]models.CartExtra, 0, len(selections))
	for _, sel := range selections {
		extra, err := s.extras.FindOne(ctx, bson.M{"_id": sel.ExtraID, "tenantId": tenantID}, nil)
		if err != nil {
			return nil, err
		}

		cartExtra := models.CartExtra{ExtraID: extra.ID, Name: extra.Name, Price: extra.Price}
		if sel.SubOption != "" {
			found := false
			for _, sub := range extra.SubOptions {
				if sub.Name == sel.SubOption {
					cartExtra.SubOption = &models.CartSubOption{Name: sub.Name, Price: sub.Price}
					found = true
					break
				}
			}
			if !found {
				return nil, common.NewError(common.ErrCodeValidationInput, "Sub-option không tồn tại cho topping này", common.StatusBadRequest, sel.SubOption)
			}
		}
		cartExtras = append(cartExtras, cartExtra)
	}
	return cartExtras, nil
}

// Increment tăng số lượng một line thêm 1, chịu trần tồn kho hiện tại.
func (s *CartService) Increment(ctx context.Context, tenantID primitive.ObjectID, sessionKey, lineID string) (models.Cart, models.Feedback, error) {
	cart, err := s.GetOrCreate(ctx, tenantID, sessionKey)
	if err != nil {
		return cart, models.FeedbackNone, err
	}

	i := cart.FindLine(lineID)
	if i < 0 {
		return cart, models.FeedbackNone, common.ErrNotFound
	}

	_, tree, ceiling, err := s.loadProductContext(ctx, tenantID, cart.Lines[i].Product.ProductID)
	if err != nil {
		return cart, models.FeedbackNone, err
	}

	next, feedback := cart.Increment(lineID, ceiling.Ceiling, matcherFor(ceiling, cart.Lines[i].Product.ProductID, tree))
	if feedback == models.FeedbackNone {
		return cart, feedback, nil
	}

	saved, err := s.save(ctx, next)
	return saved, feedback, err
}

// Decrement giảm số lượng một line đi 1; về 0 thì line bị xóa.
func (s *CartService) Decrement(ctx context.Context, tenantID primitive.ObjectID, sessionKey, lineID string) (models.Cart, models.Feedback, error) {
	return s.applyLocal(ctx, tenantID, sessionKey, func(cart models.Cart) (models.Cart, models.Feedback) {
		return cart.Decrement(lineID)
	})
}

// Remove xóa hẳn một line khỏi giỏ.
func (s *CartService) Remove(ctx context.Context, tenantID primitive.ObjectID, sessionKey, lineID string) (models.Cart, models.Feedback, error) {
	return s.applyLocal(ctx, tenantID, sessionKey, func(cart models.Cart) (models.Cart, models.Feedback) {
		return cart.Remove(lineID)
	})
}

// Clear xóa sạch giỏ hàng của phiên.
func (s *CartService) Clear(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) (models.Cart, models.Feedback, error) {
	return s.applyLocal(ctx, tenantID, sessionKey, func(cart models.Cart) (models.Cart, models.Feedback) {
		return cart.Clear()
	})
}

// applyLocal áp một mutation thuần không cần tra cứu tồn kho rồi persist.
func (s *CartService) applyLocal(ctx context.Context, tenantID primitive.ObjectID, sessionKey string, mutate func(models.Cart) (models.Cart, models.Feedback)) (models.Cart, models.Feedback, error) {
	cart, err := s.GetOrCreate(ctx, tenantID, sessionKey)
	if err != nil {
		return cart, models.FeedbackNone, err
	}

	next, feedback := mutate(cart)
	if feedback == models.FeedbackNone {
		return cart, feedback, nil
	}

	saved, err := s.save(ctx, next)
	return saved, feedback, err
}

// ApplyStockChange là đầu vào của reconciliation loop: một delta tồn kho
// (từ feed realtime, poller hoặc webhook) được áp lên mọi giỏ của tenant.
// Delta không hợp lệ được log và bỏ qua — không bao giờ nổi lỗi lên caller.
func (s *CartService) ApplyStockChange(ctx context.Context, event events.StockChangeEvent) {
	log := logger.GetWorkerLogger()

	if event.CurrentStock < 0 || (event.CategoryID == nil) == (event.ProductID == nil) {
		log.WithField("event", event).Warn("Stock delta không hợp lệ, bỏ qua")
		return
	}

	carts, err := s.Find(ctx, bson.M{"tenantId": event.TenantID}, nil)
	if err != nil {
		log.WithError(err).Error("Không tải được giỏ hàng của tenant để reconcile")
		return
	}
	if len(carts) == 0 {
		return
	}

	if event.CategoryID != nil {
		s.reconcileCategory(ctx, carts, event, log)
		return
	}
	s.clampProduct(ctx, carts, event, log)
}

func (s *CartService) reconcileCategory(ctx context.Context, carts []models.Cart, event events.StockChangeEvent, log *logrus.Logger) {
	tree, err := s.categories.TreeOf(ctx, event.TenantID)
	if err != nil {
		log.WithError(err).Error("Không tải được cây danh mục để reconcile")
		return
	}

	cat, ok := tree.Get(*event.CategoryID)
	if !ok {
		log.WithField("categoryId", event.CategoryID.Hex()).Warn("Stock delta cho danh mục không tồn tại, bỏ qua")
		return
	}

	scopes := []CeilingScope{{CategoryID: cat.ID, Name: cat.Name, CurrentStock: event.CurrentStock}}
	ancestors := TreeAncestors(tree)

	for _, cart := range carts {
		next, adjustments := Reconcile(cart, scopes, ancestors)
		if len(adjustments) == 0 {
			continue
		}

		if _, err := s.save(ctx, next); err != nil {
			log.WithError(err).WithField("cartId", cart.ID.Hex()).Error("Không persist được giỏ sau reconcile")
			continue
		}

		for _, adj := range adjustments {
			events.EmitCartAdjusted(ctx, events.CartAdjustedEvent{
				TenantID:     cart.TenantID,
				SessionKey:   cart.SessionKey,
				CategoryID:   adj.CategoryID,
				CategoryName: adj.CategoryName,
				Kind:         adj.Kind,
				RemovedQty:   adj.RemovedQty,
			})
		}
	}
}

func (s *CartService) clampProduct(ctx context.Context, carts []models.Cart, event events.StockChangeEvent, log *logrus.Logger) {
	for _, cart := range carts {
		next, removed := ClampProduct(cart, *event.ProductID, event.CurrentStock)
		if removed == 0 {
			continue
		}

		if _, err := s.save(ctx, next); err != nil {
			log.WithError(err).WithField("cartId", cart.ID.Hex()).Error("Không persist được giỏ sau khi co theo sản phẩm")
			continue
		}

		kind := events.CartAdjustReduced
		if event.CurrentStock == 0 {
			kind = events.CartAdjustEmptied
		}
		events.EmitCartAdjusted(ctx, events.CartAdjustedEvent{
			TenantID:   cart.TenantID,
			SessionKey: cart.SessionKey,
			Kind:       kind,
			RemovedQty: removed,
		})
	}
}
