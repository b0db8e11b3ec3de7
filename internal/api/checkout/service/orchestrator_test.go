package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	cartmodels "resto_commerce/internal/api/cart/models"
	ordermodels "resto_commerce/internal/api/order/models"
	ordersvc "resto_commerce/internal/api/order/service"
	tenantmodels "resto_commerce/internal/api/tenant/models"
	"resto_commerce/internal/global"
)

func TestMain(m *testing.M) {
	global.InitValidator()
	os.Exit(m.Run())
}

// --- Fake collaborators, máy trạng thái test được không cần MongoDB ---

type fakeCarts struct {
	cart       cartmodels.Cart
	currentErr error
	clearErr   error
	cleared    bool
}

func (f *fakeCarts) Current(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) (cartmodels.Cart, error) {
	return f.cart, f.currentErr
}

func (f *fakeCarts) Clear(ctx context.Context, tenantID primitive.ObjectID, sessionKey string) error {
	f.cleared = true
	return f.clearErr
}

type fakeStocks struct {
	issues []StockIssue
	err    error
}

func (f *fakeStocks) Check(ctx context.Context, tenantID primitive.ObjectID, cart cartmodels.Cart) ([]StockIssue, error) {
	return f.issues, f.err
}

// fakeLimits trả về lần lượt từng status theo số lần gọi, giữ status cuối
// khi đã cạn — mô phỏng giới hạn chạm NGAY GIỮA phiên checkout.
type fakeLimits struct {
	statuses []ordersvc.LimitStatus
	calls    int
}

func (f *fakeLimits) Status(ctx context.Context, tenant tenantmodels.Tenant) (ordersvc.LimitStatus, error) {
	idx := f.calls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.calls++
	return f.statuses[idx], nil
}

type fakeOrders struct {
	order    ordermodels.Order
	err      error
	calls    int
	lastSeen ordersvc.CreateOrderInput
}

func (f *fakeOrders) CreateOrder(ctx context.Context, input ordersvc.CreateOrderInput) (ordermodels.Order, error) {
	f.calls++
	f.lastSeen = input
	if f.err != nil {
		return ordermodels.Order{}, f.err
	}
	return f.order, nil
}

type fakePayments struct {
	pref  ordersvc.PaymentPreference
	err   error
	calls int
}

func (f *fakePayments) CreatePreference(ctx context.Context, tenantID primitive.ObjectID, sessionKey string, cart cartmodels.Cart, surcharge float64) (ordersvc.PaymentPreference, error) {
	f.calls++
	if f.err != nil {
		return ordersvc.PaymentPreference{}, f.err
	}
	return f.pref, nil
}

// --- Fixtures ---

// fixedNow rơi vào thứ Tư 12:00 UTC, trong khung giờ mở cửa của openTenant.
var fixedNow = time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)

func openTenant() tenantmodels.Tenant {
	return tenantmodels.Tenant{
		ID:   primitive.NewObjectID(),
		Name: "Quán Test",
		Slug: "quan-test",
		OpeningHours: map[string]tenantmodels.OpeningHours{
			"Wednesday": {Open: "09:00", Close: "22:00"},
		},
		DeliveryTypes:  []tenantmodels.DeliveryType{tenantmodels.DeliveryPickup, tenantmodels.DeliveryShipping},
		PaymentMethods: []tenantmodels.PaymentMethod{tenantmodels.PaymentCash, tenantmodels.PaymentOnline},
		OnlinePayment:  true,
		DeliveryPricing: tenantmodels.DeliveryPricing{
			Mode: tenantmodels.DeliveryPricingFixed,
			Fee:  2.5,
		},
		SubscriptionTier: tenantmodels.TierBasic,
	}
}

func testCart(tenantID primitive.ObjectID) cartmodels.Cart {
	return cartmodels.Cart{
		TenantID:   tenantID,
		SessionKey: "sess-1",
		Lines: []cartmodels.CartLine{
			{
				LineID:     "line-1",
				Product:    cartmodels.ProductSnapshot{ProductID: primitive.NewObjectID(), Name: "Phở bò", BasePrice: 9},
				Quantity:   2,
				UnitPrice:  9,
				TotalPrice: 18,
				AddedAt:    fixedNow.UnixMilli(),
				Seq:        1,
			},
		},
		NextSeq: 2,
	}
}

func acceptingStatus() ordersvc.LimitStatus {
	return ordersvc.LimitStatus{Limit: 50, Used: 3, Remaining: 47, CanAcceptOrders: true}
}

func blockedStatus() ordersvc.LimitStatus {
	return ordersvc.LimitStatus{Limit: 50, Used: 50, Remaining: 0, CanAcceptOrders: false}
}

func validFields() Fields {
	return Fields{
		CustomerName:  "Nguyễn Văn A",
		CustomerPhone: "+34612345678",
		DeliveryType:  tenantmodels.DeliveryPickup,
		PaymentMethod: tenantmodels.PaymentCash,
	}
}

type fixture struct {
	tenant   tenantmodels.Tenant
	carts    *fakeCarts
	stocks   *fakeStocks
	limits   *fakeLimits
	orders   *fakeOrders
	payments *fakePayments
	orch     *Orchestrator
}

func newFixture() *fixture {
	tenant := openTenant()
	f := &fixture{
		tenant:   tenant,
		carts:    &fakeCarts{cart: testCart(tenant.ID)},
		stocks:   &fakeStocks{},
		limits:   &fakeLimits{statuses: []ordersvc.LimitStatus{acceptingStatus()}},
		orders:   &fakeOrders{order: ordermodels.Order{DailyNumber: 4}},
		payments: &fakePayments{pref: ordersvc.PaymentPreference{PreferenceID: "pref-1", RedirectURL: "https://pay.example/pref-1"}},
	}
	f.orch = NewOrchestrator(tenant, "sess-1", Deps{
		Carts:    f.carts,
		Stocks:   f.stocks,
		Limits:   f.limits,
		Orders:   f.orders,
		Payments: f.payments,
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

// --- Tests ---

// Đường tiền mặt: validate xong tạo đơn, xóa giỏ, máy về succeeded.
func TestSubmitCashHappyPath(t *testing.T) {
	f := newFixture()
	if err := f.orch.SetFields(validFields()); err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	outcome, err := f.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateSucceeded {
		t.Errorf("state = %s, muốn succeeded", f.orch.State())
	}
	if outcome.Order == nil || outcome.Order.DailyNumber != 4 {
		t.Errorf("outcome.Order = %+v, muốn đơn với số thứ tự 4", outcome.Order)
	}
	if !f.carts.cleared {
		t.Error("giỏ phải được xóa sau khi tạo đơn thành công")
	}
	if f.payments.calls != 0 {
		t.Error("đường tiền mặt không được gọi payment gateway")
	}
	if f.orders.lastSeen.CustomerName != "Nguyễn Văn A" {
		t.Errorf("CreateOrderInput.CustomerName = %q", f.orders.lastSeen.CustomerName)
	}
}

// Đường online: tạo phiên thanh toán, KHÔNG đụng vào giỏ và không tạo đơn.
func TestSubmitOnlineLeavesCartUntouched(t *testing.T) {
	f := newFixture()
	fields := validFields()
	fields.PaymentMethod = tenantmodels.PaymentOnline
	if err := f.orch.SetFields(fields); err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	outcome, err := f.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateSucceeded {
		t.Errorf("state = %s, muốn succeeded", f.orch.State())
	}
	if outcome.Preference == nil || outcome.Preference.RedirectURL != "https://pay.example/pref-1" {
		t.Errorf("outcome.Preference = %+v", outcome.Preference)
	}
	if f.carts.cleared {
		t.Error("đường online không được xóa giỏ trước khi provider xác nhận")
	}
	if f.orders.calls != 0 {
		t.Error("đường online không được tạo đơn trực tiếp")
	}
}

// Lỗi validation giữ trong state, không trả về qua error.
func TestSubmitValidationIssuesAreStateNotError(t *testing.T) {
	f := newFixture()
	fields := validFields()
	fields.CustomerName = ""
	if err := f.orch.SetFields(fields); err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	_, err := f.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("lỗi validation không được trả về qua error, nhận: %v", err)
	}
	if f.orch.State() != StateFailed {
		t.Errorf("state = %s, muốn failed", f.orch.State())
	}
	if len(f.orch.Issues()) == 0 {
		t.Fatal("Issues() phải chứa lỗi validation")
	}
	if f.orders.calls != 0 {
		t.Error("không được tạo đơn khi validation thất bại")
	}

	// Field đã nhập giữ nguyên qua thất bại
	if f.orch.Fields().CustomerPhone != "+34612345678" {
		t.Error("fields phải được giữ nguyên sau khi failed")
	}
}

// Hình thức nhận hàng bị tắt thì auto-fallback và ghi nhận correction.
func TestSubmitDeliveryTypeFallback(t *testing.T) {
	f := newFixture()
	fields := validFields()
	fields.DeliveryType = tenantmodels.DeliveryDineIn // cửa hàng không bật dine_in
	if err := f.orch.SetFields(fields); err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	_, err := f.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateSucceeded {
		t.Fatalf("state = %s, issues = %v", f.orch.State(), f.orch.Issues())
	}
	if len(f.orch.Corrections()) != 1 {
		t.Fatalf("Corrections() = %v, muốn đúng một correction", f.orch.Corrections())
	}
	if f.orders.lastSeen.DeliveryType != string(tenantmodels.DeliveryPickup) {
		t.Errorf("đơn phải dùng hình thức fallback pickup, nhận %q", f.orders.lastSeen.DeliveryType)
	}
}

// Giao tận nơi bắt buộc có địa chỉ.
func TestSubmitShippingRequiresAddress(t *testing.T) {
	f := newFixture()
	fields := validFields()
	fields.DeliveryType = tenantmodels.DeliveryShipping
	if err := f.orch.SetFields(fields); err != nil {
		t.Fatalf("SetFields: %v", err)
	}

	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateFailed {
		t.Fatalf("state = %s, muốn failed vì thiếu địa chỉ", f.orch.State())
	}
	if !hasIssueField(f.orch.Issues(), "address") {
		t.Errorf("Issues() = %v, muốn issue ở field address", f.orch.Issues())
	}
}

// Cửa hàng tạm dừng hoặc ngoài giờ mở cửa đều chặn submit.
func TestSubmitStoreClosedOrPaused(t *testing.T) {
	t.Run("paused", func(t *testing.T) {
		f := newFixture()
		f.tenant.Paused = true
		f.orch = NewOrchestrator(f.tenant, "sess-1", Deps{
			Carts: f.carts, Stocks: f.stocks, Limits: f.limits,
			Orders: f.orders, Payments: f.payments,
			Now: func() time.Time { return fixedNow },
		})
		_ = f.orch.SetFields(validFields())

		if _, err := f.orch.Submit(context.Background()); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if !hasIssueField(f.orch.Issues(), "store") {
			t.Errorf("Issues() = %v, muốn issue ở field store", f.orch.Issues())
		}
	})

	t.Run("ngoài giờ mở cửa", func(t *testing.T) {
		f := newFixture()
		lateNight := time.Date(2026, 1, 14, 23, 30, 0, 0, time.UTC)
		f.orch = NewOrchestrator(f.tenant, "sess-1", Deps{
			Carts: f.carts, Stocks: f.stocks, Limits: f.limits,
			Orders: f.orders, Payments: f.payments,
			Now: func() time.Time { return lateNight },
		})
		_ = f.orch.SetFields(validFields())

		if _, err := f.orch.Submit(context.Background()); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if !hasIssueField(f.orch.Issues(), "store") {
			t.Errorf("Issues() = %v, muốn issue ở field store", f.orch.Issues())
		}
	})
}

// Giỏ trống chặn submit ngay, không gọi tiếp stock check.
func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture()
	f.carts.cart = cartmodels.Cart{TenantID: f.tenant.ID, SessionKey: "sess-1"}
	_ = f.orch.SetFields(validFields())

	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateFailed {
		t.Errorf("state = %s, muốn failed", f.orch.State())
	}
	if !hasIssueField(f.orch.Issues(), "cart") {
		t.Errorf("Issues() = %v, muốn issue ở field cart", f.orch.Issues())
	}
}

// Thiếu hụt tồn kho phát hiện khi recheck chặn submit với thông báo theo danh mục.
func TestSubmitStockIssuesBlock(t *testing.T) {
	f := newFixture()
	f.stocks.issues = []StockIssue{
		{CategoryName: "Nước ngọt", Requested: 5, Available: 2},
	}
	_ = f.orch.SetFields(validFields())

	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateFailed {
		t.Errorf("state = %s, muốn failed", f.orch.State())
	}
	found := false
	for _, issue := range f.orch.Issues() {
		if issue.Field == "stock" && issue.Message == "Nước ngọt chỉ còn 2 phần" {
			found = true
		}
	}
	if !found {
		t.Errorf("Issues() = %v, muốn thông báo thiếu hụt theo danh mục", f.orch.Issues())
	}
	if f.orders.calls != 0 {
		t.Error("không được tạo đơn khi còn thiếu hụt tồn kho")
	}
}

// Giới hạn chạm NGAY GIỮA phiên checkout: lần submit sau quan sát thấy
// accepting → blocked thì LimitJustReached bật đúng một lần.
func TestSubmitLimitJustReachedMidCheckout(t *testing.T) {
	f := newFixture()
	f.limits.statuses = []ordersvc.LimitStatus{acceptingStatus(), blockedStatus()}
	fields := validFields()
	fields.CustomerName = "" // ép lần đầu failed để máy còn submit lại được
	_ = f.orch.SetFields(fields)

	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit lần 1: %v", err)
	}
	if f.orch.LimitJustReached() {
		t.Error("lần 1 gate đang accepting, chưa được báo justReached")
	}

	// Sửa thông tin rồi submit lại — lúc này cửa hàng đã chạm giới hạn
	_ = f.orch.SetFields(validFields())
	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit lần 2: %v", err)
	}
	if !f.orch.LimitJustReached() {
		t.Error("chuyển accepting → blocked giữa phiên phải bật LimitJustReached")
	}
	if !hasIssueField(f.orch.Issues(), "orderLimit") {
		t.Errorf("Issues() = %v, muốn issue ở field orderLimit", f.orch.Issues())
	}
	if f.orders.calls != 0 {
		t.Error("không được tạo đơn khi đã chạm giới hạn")
	}
}

// Đã bị chặn từ trước khi quan sát lần đầu: chặn tĩnh, không interrupt.
func TestSubmitLimitAlreadyBlocked(t *testing.T) {
	f := newFixture()
	f.limits.statuses = []ordersvc.LimitStatus{blockedStatus()}
	_ = f.orch.SetFields(validFields())

	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.LimitJustReached() {
		t.Error("blocked từ trước không phải justReached")
	}
	if !hasIssueField(f.orch.Issues(), "orderLimit") {
		t.Errorf("Issues() = %v, muốn issue ở field orderLimit", f.orch.Issues())
	}
}

// Lỗi ở bước submit (tạo đơn thất bại) trả về qua error, máy về failed
// và submit lại được sau khi nguyên nhân hết.
func TestSubmitOrderErrorThenRetry(t *testing.T) {
	f := newFixture()
	f.orders.err = errors.New("hết hàng khi trừ kho")
	_ = f.orch.SetFields(validFields())

	_, err := f.orch.Submit(context.Background())
	if err == nil {
		t.Fatal("lỗi tạo đơn phải trả về qua error")
	}
	if f.orch.State() != StateFailed {
		t.Errorf("state = %s, muốn failed", f.orch.State())
	}
	if f.orch.Failure() == nil {
		t.Error("Failure() phải giữ lỗi submit gần nhất")
	}
	if f.carts.cleared {
		t.Error("không được xóa giỏ khi tạo đơn thất bại")
	}

	// Nguyên nhân hết: submit lại từ failed không cần SetFields
	f.orders.err = nil
	outcome, err := f.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit lần 2: %v", err)
	}
	if f.orch.State() != StateSucceeded || outcome.Order == nil {
		t.Errorf("state = %s, outcome = %+v", f.orch.State(), outcome)
	}
}

// Dọn giỏ lỗi sau khi đơn đã tạo không được làm hỏng kết quả.
func TestSubmitClearFailureTolerated(t *testing.T) {
	f := newFixture()
	f.carts.clearErr = errors.New("mongo timeout")
	_ = f.orch.SetFields(validFields())

	outcome, err := f.orch.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orch.State() != StateSucceeded || outcome.Order == nil {
		t.Errorf("state = %s, đơn đã tạo thì phải succeeded", f.orch.State())
	}
}

// SetFields chỉ hợp lệ ở collecting/failed.
func TestSetFieldsStateGuard(t *testing.T) {
	f := newFixture()
	_ = f.orch.SetFields(validFields())
	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Máy đã succeeded: không nhập lại được
	if err := f.orch.SetFields(validFields()); err == nil {
		t.Error("SetFields ở succeeded phải bị từ chối")
	}
}

// Phụ phí giao hàng được cộng vào đơn đúng một lần, theo chính sách fixed.
func TestSubmitSurchargePassedToOrder(t *testing.T) {
	f := newFixture()
	fields := validFields()
	fields.DeliveryType = tenantmodels.DeliveryShipping
	fields.Address = "Calle Mayor 1"
	_ = f.orch.SetFields(fields)

	if _, err := f.orch.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.orders.lastSeen.DeliverySurcharge != 2.5 {
		t.Errorf("DeliverySurcharge = %v, muốn 2.5", f.orders.lastSeen.DeliverySurcharge)
	}
}

func hasIssueField(issues []ValidationIssue, field string) bool {
	for _, issue := range issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}
