package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "resto_commerce/internal/api/base/service"
	cartmodels "resto_commerce/internal/api/cart/models"
	catalogsvc "resto_commerce/internal/api/catalog/service"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/api/order/models"
	tenantmodels "resto_commerce/internal/api/tenant/models"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
	"resto_commerce/internal/logger"
)

// CreateOrderInput là dữ liệu đã validate để tạo một đơn hàng từ giỏ.
type CreateOrderInput struct {
	Tenant tenantmodels.Tenant
	Cart   cartmodels.Cart

	CustomerName  string
	CustomerPhone string
	DeliveryType  string
	Address       string
	Notes         string
	Geolocation   *models.GeoPoint

	PaymentMethod     string
	DeliverySurcharge float64
}

// OrderService tạo và quản lý đơn hàng. Đây là thẩm quyền duy nhất về oversell:
// mọi kiểm tra tồn kho phía trước (resolver, reconcile) chỉ là tiền kiểm,
// chốt chặn cuối cùng là các decrement có điều kiện tại đây.
type OrderService struct {
	*basesvc.BaseServiceMongoImpl[models.Order]
	limits     *OrderLimitService
	categories *catalogsvc.CategoryService
	products   *catalogsvc.ProductService
}

// NewOrderService tạo mới OrderService trên collection orders.
func NewOrderService() *OrderService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Orders)
	return &OrderService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Order](col),
		limits:               NewOrderLimitService(),
		categories:           catalogsvc.NewCategoryService(),
		products:             catalogsvc.NewProductService(),
	}
}

// Limits trả về OrderLimitService dùng chung.
func (s *OrderService) Limits() *OrderLimitService { return s.limits }

// categoryDecrement là một lần trừ tồn kho danh mục cần áp khi tạo đơn.
type categoryDecrement struct {
	CategoryID primitive.ObjectID
	Qty        int64
}

// productDecrement là một lần trừ tồn kho riêng của sản phẩm.
type productDecrement struct {
	ProductID primitive.ObjectID
	Qty       int64
}

// planDecrements gom các decrement cần áp: mỗi danh mục tổ tiên có khai báo trần
// bị trừ tổng số lượng bán ra trong nhánh của nó; sản phẩm có tồn kho riêng
// bị trừ số lượng của chính nó.
func planDecrements(cart cartmodels.Cart, tree *catalogsvc.CategoryTree, products map[primitive.ObjectID]bool) ([]categoryDecrement, []productDecrement) {
	catTotals := make(map[primitive.ObjectID]int64)
	prodTotals := make(map[primitive.ObjectID]int64)
	var catOrder []primitive.ObjectID
	var prodOrder []primitive.ObjectID

	for _, line := range cart.Lines {
		if categoryID := line.Product.EffectiveCategoryID(); categoryID != nil {
			for _, ancestor := range tree.CeilingAncestors(*categoryID) {
				if _, seen := catTotals[ancestor.ID]; !seen {
					catOrder = append(catOrder, ancestor.ID)
				}
				catTotals[ancestor.ID] += line.Quantity
			}
		}
		if products[line.Product.ProductID] {
			if _, seen := prodTotals[line.Product.ProductID]; !seen {
				prodOrder = append(prodOrder, line.Product.ProductID)
			}
			prodTotals[line.Product.ProductID] += line.Quantity
		}
	}

	catDecs := make([]categoryDecrement, 0, len(catOrder))
	for _, id := range catOrder {
		catDecs = append(catDecs, categoryDecrement{CategoryID: id, Qty: catTotals[id]})
	}
	prodDecs := make([]productDecrement, 0, len(prodOrder))
	for _, id := range prodOrder {
		prodDecs = append(prodDecs, productDecrement{ProductID: id, Qty: prodTotals[id]})
	}
	return catDecs, prodDecs
}

// CreateOrder tạo đơn hàng từ giỏ: tiêu quota ngày, trừ tồn kho có điều kiện,
// rồi ghi đơn. Bất kỳ bước nào thất bại thì mọi bước đã áp được hoàn trả
// (compensation) và đơn không được tạo. Giỏ KHÔNG bị đụng tới ở đây —
// caller chỉ xóa giỏ sau khi nhận được đơn thành công.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (models.Order, error) {
	var zero models.Order
	log := logger.GetAppLogger()

	if input.Cart.IsEmpty() {
		return zero, common.NewError(common.ErrCodeValidationInput, "Giỏ hàng trống, không thể tạo đơn", common.StatusBadRequest, nil)
	}

	tenantID := input.Tenant.ID

	// 1. Quota ngày — nguyên tử, thất bại là dừng ngay
	dailyNumber, err := s.limits.ConsumeQuota(ctx, input.Tenant)
	if err != nil {
		return zero, err
	}

	releaseQuota := func() {
		if rErr := s.limits.ReleaseQuota(ctx, input.Tenant); rErr != nil {
			log.WithError(rErr).Error("Không hoàn trả được quota sau khi tạo đơn thất bại")
		}
	}

	// 2. Gom kế hoạch trừ tồn kho từ catalog sống
	tree, err := s.categories.TreeOf(ctx, tenantID)
	if err != nil {
		releaseQuota()
		return zero, err
	}

	stocked := make(map[primitive.ObjectID]bool)
	for _, line := range input.Cart.Lines {
		product, pErr := s.products.FindOneById(ctx, line.Product.ProductID)
		if pErr == nil && product.Stock != nil {
			stocked[product.ID] = true
		}
	}

	catDecs, prodDecs := planDecrements(input.Cart, tree, stocked)

	// 3. Áp decrement có điều kiện; thất bại ở đâu thì hoàn trả các bước trước đó
	var appliedCats []categoryDecrement
	var appliedProds []productDecrement
	compensate := func() {
		for _, dec := range appliedCats {
			if cErr := s.categories.IncrementStock(ctx, tenantID, dec.CategoryID, dec.Qty); cErr != nil {
				log.WithError(cErr).WithField("categoryId", dec.CategoryID.Hex()).
					Error("Không hoàn trả được tồn kho danh mục")
			}
		}
		for _, dec := range appliedProds {
			if cErr := s.products.IncrementStock(ctx, tenantID, dec.ProductID, dec.Qty); cErr != nil {
				log.WithError(cErr).WithField("productId", dec.ProductID.Hex()).
					Error("Không hoàn trả được tồn kho sản phẩm")
			}
		}
		releaseQuota()
	}

	for _, dec := range catDecs {
		if _, err := s.categories.DecrementStock(ctx, tenantID, dec.CategoryID, dec.Qty); err != nil {
			compensate()
			return zero, err
		}
		appliedCats = append(appliedCats, dec)
	}
	for _, dec := range prodDecs {
		if _, err := s.products.DecrementStock(ctx, tenantID, dec.ProductID, dec.Qty); err != nil {
			compensate()
			return zero, err
		}
		appliedProds = append(appliedProds, dec)
	}

	// 4. Ghi đơn
	order := buildOrder(input, dailyNumber)
	created, err := s.InsertOne(ctx, order)
	if err != nil {
		compensate()
		return zero, common.NewError(common.ErrCodeCheckoutOrder, "Không tạo được đơn hàng", common.StatusInternalServerError, err)
	}

	events.EmitOrderCreated(context.WithoutCancel(ctx), events.OrderCreatedEvent{
		TenantID: tenantID,
		OrderID:  created.ID,
	})
	return created, nil
}

// buildOrder dựng document đơn hàng từ giỏ và thông tin khách.
// Subtotal lấy từ giỏ (đã là tổng các totalPrice line), total cộng phụ phí giao hàng.
func buildOrder(input CreateOrderInput, dailyNumber int64) models.Order {
	items := make([]models.OrderItem, 0, len(input.Cart.Lines))
	for _, line := range input.Cart.Lines {
		item := models.OrderItem{
			ProductID:  line.Product.ProductID,
			Name:       line.Product.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			Comment:    line.Comment,
			CategoryID: line.Product.EffectiveCategoryID(),
		}
		if line.Product.Size != nil {
			item.Size = line.Product.Size.Name
		}
		for _, extra := range line.Extras {
			orderExtra := models.OrderExtra{Name: extra.Name, Price: extra.UnitPrice()}
			if extra.SubOption != nil {
				orderExtra.SubOption = extra.SubOption.Name
			}
			item.Extras = append(item.Extras, orderExtra)
		}
		items = append(items, item)
	}

	subtotal := input.Cart.Subtotal()
	return models.Order{
		TenantID:          input.Tenant.ID,
		Items:             items,
		Subtotal:          subtotal,
		DeliverySurcharge: input.DeliverySurcharge,
		Total:             subtotal + input.DeliverySurcharge,
		CustomerName:      input.CustomerName,
		CustomerPhone:     input.CustomerPhone,
		DeliveryType:      input.DeliveryType,
		Address:           input.Address,
		Notes:             input.Notes,
		Geolocation:       input.Geolocation,
		PaymentMethod:     input.PaymentMethod,
		Status:            models.OrderStatusPending,
		DailyNumber:       dailyNumber,
	}
}

// UpdateStatus cập nhật trạng thái đơn (back-office).
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID, orderID primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	return s.UpdateOne(ctx,
		map[string]interface{}{"_id": orderID, "tenantId": tenantID},
		&basesvc.UpdateData{Set: map[string]interface{}{"status": status}},
		nil,
	)
}
