package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	cartmodels "resto_commerce/internal/api/cart/models"
	ordermodels "resto_commerce/internal/api/order/models"
	ordersvc "resto_commerce/internal/api/order/service"
	tenantmodels "resto_commerce/internal/api/tenant/models"
	tenantsvc "resto_commerce/internal/api/tenant/service"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
)

// State là trạng thái của checkout orchestrator.
type State string

const (
	StateCollecting State = "collecting" // Đang nhập thông tin
	StateValidating State = "validating" // Đang kiểm tra
	StateSubmitting State = "submitting" // Đang gửi đơn / tạo phiên thanh toán
	StateSucceeded  State = "succeeded"  // Hoàn tất
	StateFailed     State = "failed"     // Thất bại, quay lại collecting được
)

// Fields là thông tin khách nhập trong bước collecting.
type Fields struct {
	CustomerName  string                     `json:"customerName" validate:"required,no_xss"`
	CustomerPhone string                     `json:"customerPhone" validate:"required,phone"`
	DeliveryType  tenantmodels.DeliveryType  `json:"deliveryType" validate:"required"`
	PaymentMethod tenantmodels.PaymentMethod `json:"paymentMethod" validate:"required"`
	Address       string                     `json:"address,omitempty" validate:"omitempty,no_xss"`
	Notes         string                     `json:"notes,omitempty" validate:"omitempty,no_xss"`
	Geolocation   *ordermodels.GeoPoint      `json:"geolocation,omitempty"`
}

// ValidationIssue là một lỗi kiểm tra, giữ trong state của orchestrator
// thay vì ném ra ngoài — UI đọc và hiển thị từng field.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockIssue là một thiếu hụt tồn kho phát hiện khi recheck trước khi đặt.
type StockIssue struct {
	CategoryName string `json:"categoryName"`
	Requested    int64  `json:"requested"`
	Available    int64  `json:"available"`
	Emptied      bool   `json:"emptied"`
}

// Message dựng thông báo theo tên danh mục, phân biệt hết hẳn với thiếu một phần.
func (i StockIssue) Message() string {
	if i.Emptied {
		return fmt.Sprintf("%s đã hết hàng", i.CategoryName)
	}
	return fmt.Sprintf("%s chỉ còn %d phần", i.CategoryName, i.Available)
}

// Các collaborator của orchestrator, thu hẹp về đúng thao tác cần dùng
// để máy trạng thái test được không cần MongoDB.
type (
	// CartGateway đọc và xóa giỏ của phiên.
	CartGateway interface {
		Current(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) (cartmodels.Cart, error)
		Clear(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) error
	}

	// StockChecker recheck tồn kho tươi cho cả giỏ (dry-run, không sửa gì).
	StockChecker interface {
		Check(ctx context.Context, tenantID primitive.ObjectID, cart cartmodels.Cart) ([]StockIssue, error)
	}

	// LimitGateway đọc trạng thái giới hạn đơn hàng hiện tại.
	LimitGateway interface {
		Status(ctx context.Context, tenant tenantmodels.Tenant) (ordersvc.LimitStatus, error)
	}

	// OrderCreator tạo đơn hàng (đường thanh toán tại quầy / tiền mặt).
	OrderCreator interface {
		CreateOrder(ctx context.Context, input ordersvc.CreateOrderInput) (ordermodels.Order, error)
	}

	// PaymentGateway tạo phiên thanh toán online (đường online).
	PaymentGateway interface {
		CreatePreference(ctx context.Context, tenantID primitive.ObjectID, sessionKey string, cart cartmodels.Cart, surcharge float64) (ordersvc.PaymentPreference, error)
	}
)

// Deps gom các collaborator của orchestrator.
type Deps struct {
	Carts    CartGateway
	Stocks   StockChecker
	Limits   LimitGateway
	Orders   OrderCreator
	Payments PaymentGateway
	Now      func() time.Time // nil = time.Now
}

// Outcome là kết quả một lần Submit thành công.
type Outcome struct {
	Order      *ordermodels.Order        `json:"order,omitempty"`
	Preference *ordersvc.PaymentPreference `json:"preference,omitempty"`
}

// Orchestrator là máy trạng thái tuyến tính của một phiên checkout:
// collecting → validating → submitting → succeeded|failed.
// failed quay lại collecting được mà không mất thông tin đã nhập.
type Orchestrator struct {
	tenant     tenantmodels.Tenant
	sessionKey string

	state            State
	fields           Fields
	issues           []ValidationIssue
	corrections      []string
	failure          error
	limitJustReached bool

	gate *OrderLimitGate
	deps Deps
}

// NewOrchestrator tạo máy checkout mới ở trạng thái collecting.
func NewOrchestrator(tenant tenantmodels.Tenant, sessionKey string, deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		tenant:     tenant,
		sessionKey: sessionKey,
		state:      StateCollecting,
		gate:       NewOrderLimitGate(),
		deps:       deps,
	}
}

// State trả về trạng thái hiện tại.
func (o *Orchestrator) State() State { return o.state }

// Fields trả về thông tin khách đã nhập (giữ nguyên qua các lần thất bại).
func (o *Orchestrator) Fields() Fields { return o.fields }

// Issues trả về các lỗi kiểm tra của lần validate gần nhất.
func (o *Orchestrator) Issues() []ValidationIssue { return o.issues }

// Corrections trả về các auto-correct đã áp (ví dụ đổi hình thức nhận hàng).
func (o *Orchestrator) Corrections() []string { return o.corrections }

// Failure trả về lỗi submit gần nhất (nil nếu thất bại do validation).
func (o *Orchestrator) Failure() error { return o.failure }

// LimitJustReached cho biết giới hạn đơn vừa chạm NGAY TRONG phiên checkout này
// (interrupt UI), khác với đã bị chặn từ trước.
func (o *Orchestrator) LimitJustReached() bool { return o.limitJustReached }

// SetFields ghi thông tin khách nhập. Chỉ hợp lệ ở collecting/failed;
// gọi từ failed tự động quay về collecting.
func (o *Orchestrator) SetFields(fields Fields) error {
	if o.state != StateCollecting && o.state != StateFailed {
		return common.ErrInvalidState
	}
	o.state = StateCollecting
	o.fields = fields
	return nil
}

// Resume đưa máy từ failed về collecting, giữ nguyên mọi field đã nhập.
func (o *Orchestrator) Resume() error {
	if o.state != StateFailed {
		return common.ErrInvalidState
	}
	o.state = StateCollecting
	return nil
}

// Submit chạy validating rồi submitting trên thông tin hiện có.
// Lỗi validation không trả về qua error: máy chuyển sang failed và Issues()
// chứa chi tiết. error chỉ khác nil khi bước submit với collaborator thất bại.
func (o *Orchestrator) Submit(ctx context.Context) (Outcome, error) {
	if o.state == StateFailed {
		o.state = StateCollecting
	}
	if o.state != StateCollecting {
		return Outcome{}, common.ErrInvalidState
	}

	o.state = StateValidating
	o.issues = nil
	o.corrections = nil
	o.failure = nil

	cart, issues := o.validate(ctx)
	if len(issues) > 0 {
		o.issues = issues
		o.state = StateFailed
		return Outcome{}, nil
	}

	o.state = StateSubmitting
	surcharge := DeliverySurcharge(o.tenant.DeliveryPricing, o.fields.DeliveryType, cart.Subtotal())

	if o.fields.PaymentMethod == tenantmodels.PaymentOnline {
		// Đường online: tạo phiên thanh toán + marker chờ, KHÔNG đụng vào giỏ —
		// đơn chỉ được tạo khi provider xác nhận
		preference, err := o.deps.Payments.CreatePreference(ctx, o.tenant.ID, o.sessionKey, cart, surcharge)
		if err != nil {
			o.failure = err
			o.state = StateFailed
			return Outcome{}, err
		}
		o.state = StateSucceeded
		return Outcome{Preference: &preference}, nil
	}

	order, err := o.deps.Orders.CreateOrder(ctx, ordersvc.CreateOrderInput{
		Tenant:            o.tenant,
		Cart:              cart,
		CustomerName:      o.fields.CustomerName,
		CustomerPhone:     o.fields.CustomerPhone,
		DeliveryType:      string(o.fields.DeliveryType),
		Address:           o.fields.Address,
		Notes:             o.fields.Notes,
		Geolocation:       o.fields.Geolocation,
		PaymentMethod:     string(o.fields.PaymentMethod),
		DeliverySurcharge: surcharge,
	})
	if err != nil {
		o.failure = err
		o.state = StateFailed
		return Outcome{}, err
	}

	// Giỏ chỉ được xóa SAU khi đơn đã tạo thành công
	if clearErr := o.deps.Carts.Clear(ctx, o.tenant.ID, o.sessionKey); clearErr != nil {
		// Đơn đã tạo — không được báo thất bại chỉ vì dọn giỏ lỗi
		o.failure = nil
	}

	o.state = StateSucceeded
	return Outcome{Order: &order}, nil
}

// validate chạy toàn bộ chuỗi kiểm tra của bước validating.
// Trả về giỏ đã tải (để submit dùng lại) và danh sách issue chặn.
func (o *Orchestrator) validate(ctx context.Context) (cartmodels.Cart, []ValidationIssue) {
	var issues []ValidationIssue

	// 1. Field-level qua struct tags (tên + số điện thoại bắt buộc, địa chỉ sạch XSS)
	if err := global.Validate.Struct(&o.fields); err != nil {
		issues = append(issues, ValidationIssue{Field: "fields", Message: fmt.Sprintf("%s: %v", common.MsgValidationError, err)})
	}

	// 2. Hình thức nhận hàng: bị tắt thì auto-fallback sang hình thức đầu tiên còn bật
	if !o.tenant.DeliveryTypeEnabled(o.fields.DeliveryType) {
		if fallback, ok := tenantsvc.FallbackDeliveryType(o.tenant); ok {
			o.corrections = append(o.corrections,
				fmt.Sprintf("Hình thức nhận hàng đã đổi sang %s vì lựa chọn cũ không còn khả dụng", fallback))
			o.fields.DeliveryType = fallback
		} else {
			issues = append(issues, ValidationIssue{Field: "deliveryType", Message: "Cửa hàng không bật hình thức nhận hàng nào"})
		}
	}

	// 3. Giao tận nơi bắt buộc có địa chỉ
	if o.fields.DeliveryType == tenantmodels.DeliveryShipping && o.fields.Address == "" {
		issues = append(issues, ValidationIssue{Field: "address", Message: "Giao tận nơi cần địa chỉ nhận hàng"})
	}

	// 4. Phương thức thanh toán phải được cửa hàng chấp nhận
	if !o.tenant.PaymentMethodEnabled(o.fields.PaymentMethod) {
		issues = append(issues, ValidationIssue{Field: "paymentMethod", Message: "Phương thức thanh toán không khả dụng"})
	}

	// 5. Cửa hàng phải đang mở và không tạm dừng
	if o.tenant.Paused {
		issues = append(issues, ValidationIssue{Field: "store", Message: "Cửa hàng đang tạm dừng nhận đơn"})
	} else if !tenantsvc.IsOpenAt(o.tenant, o.deps.Now()) {
		issues = append(issues, ValidationIssue{Field: "store", Message: "Cửa hàng đang đóng cửa"})
	}

	// 6. Giỏ hàng
	cart, err := o.deps.Carts.Current(ctx, o.tenant.ID, o.sessionKey)
	if err != nil {
		issues = append(issues, ValidationIssue{Field: "cart", Message: "Không tải được giỏ hàng"})
		return cart, issues
	}
	if cart.IsEmpty() {
		issues = append(issues, ValidationIssue{Field: "cart", Message: "Giỏ hàng trống"})
		return cart, issues
	}

	// 7. Recheck tồn kho tươi ngay trước khi đặt
	stockIssues, err := o.deps.Stocks.Check(ctx, o.tenant.ID, cart)
	if err != nil {
		issues = append(issues, ValidationIssue{Field: "stock", Message: "Không kiểm tra được tồn kho"})
	}
	for _, issue := range stockIssues {
		issues = append(issues, ValidationIssue{Field: "stock", Message: issue.Message()})
	}

	// 8. Gate giới hạn đơn hàng — luôn quan sát sau cùng để bắt transition mid-checkout
	status, err := o.deps.Limits.Status(ctx, o.tenant)
	if err != nil {
		issues = append(issues, ValidationIssue{Field: "orderLimit", Message: "Không kiểm tra được giới hạn đơn hàng"})
	} else {
		if o.gate.Observe(status.CanAcceptOrders) {
			o.limitJustReached = true
		}
		if o.gate.Blocked() {
			issues = append(issues, ValidationIssue{Field: "orderLimit", Message: "Cửa hàng đã đạt giới hạn đơn hàng trong ngày"})
		}
	}

	return cart, issues
}
