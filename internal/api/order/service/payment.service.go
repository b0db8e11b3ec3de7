package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "resto_commerce/internal/api/base/service"
	cartmodels "resto_commerce/internal/api/cart/models"
	catalogsvc "resto_commerce/internal/api/catalog/service"
	"resto_commerce/internal/api/order/models"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
	"resto_commerce/internal/logger"
)

// PaymentPreference là phiên thanh toán online do provider tạo.
type PaymentPreference struct {
	PreferenceID   string `json:"preferenceId"`
	RedirectURL    string `json:"redirectUrl"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// PaymentProvider là contract tối thiểu với cổng thanh toán bên ngoài:
// nhận tổng tiền đã được server tính lại và trả về phiên thanh toán.
type PaymentProvider interface {
	CreatePreference(ctx context.Context, tenantID primitive.ObjectID, amount float64, idempotencyKey string) (PaymentPreference, error)
}

// httpPaymentProvider là client JSON mặc định gọi provider qua HTTP.
type httpPaymentProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPPaymentProvider tạo provider client từ config.
func NewHTTPPaymentProvider(baseURL, token string) PaymentProvider {
	return &httpPaymentProvider{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type preferenceRequest struct {
	TenantID       string  `json:"tenantId"`
	Amount         float64 `json:"amount"`
	IdempotencyKey string  `json:"idempotencyKey"`
}

type preferenceResponse struct {
	PreferenceID string `json:"preferenceId"`
	RedirectURL  string `json:"redirectUrl"`
}

func (p *httpPaymentProvider) CreatePreference(ctx context.Context, tenantID primitive.ObjectID, amount float64, idempotencyKey string) (PaymentPreference, error) {
	var zero PaymentPreference

	body, err := json.Marshal(preferenceRequest{
		TenantID:       tenantID.Hex(),
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return zero, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/preferences", bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", idempotencyKey)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, fmt.Errorf("payment provider trả về status %d", resp.StatusCode)
	}

	var decoded preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return zero, err
	}

	return PaymentPreference{
		PreferenceID:   decoded.PreferenceID,
		RedirectURL:    decoded.RedirectURL,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// PaymentPreferenceService tạo phiên thanh toán online và ghi marker chờ.
// Tổng tiền LUÔN được tính lại từ catalog sống — không bao giờ tin số client gửi lên.
type PaymentPreferenceService struct {
	pendings *basesvc.BaseServiceMongoImpl[models.PendingPayment]
	products *catalogsvc.ProductService
	provider PaymentProvider
}

// NewPaymentPreferenceService tạo mới PaymentPreferenceService.
// provider nil sẽ dùng HTTP client mặc định theo config.
func NewPaymentPreferenceService(provider PaymentProvider) *PaymentPreferenceService {
	if provider == nil {
		provider = NewHTTPPaymentProvider(
			global.ServerConfig.PaymentProviderURL,
			global.ServerConfig.PaymentProviderToken,
		)
	}
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.PendingPayments)
	return &PaymentPreferenceService{
		pendings: basesvc.NewBaseServiceMongo[models.PendingPayment](col),
		products: catalogsvc.NewProductService(),
		provider: provider,
	}
}

// Pendings trả về base service của pending payments (worker reconciliation dùng).
func (s *PaymentPreferenceService) Pendings() *basesvc.BaseServiceMongoImpl[models.PendingPayment] {
	return s.pendings
}

// RecomputeTotal tính lại tổng tiền giỏ từ giá sống trong catalog:
// đơn giá gốc lấy từ product hiện tại, size delta và giá topping giữ theo snapshot
// (khách đã thấy và chấp nhận), discount áp theo product hiện tại.
func (s *PaymentPreferenceService) RecomputeTotal(ctx context.Context, tenantID primitive.ObjectID, cart cartmodels.Cart, surcharge float64) (float64, error) {
	var total float64
	for _, line := range cart.Lines {
		product, err := s.products.FindOne(ctx, bson.M{"_id": line.Product.ProductID, "tenantId": tenantID}, nil)
		if err != nil {
			return 0, err
		}

		unit := product.BasePrice()
		if line.Product.Size != nil {
			unit += line.Product.Size.PriceDelta
		}
		for _, extra := range line.Extras {
			unit += extra.UnitPrice()
		}
		total += unit * float64(line.Quantity)
	}

	total += surcharge
	// Làm tròn 2 chữ số để khớp với số tiền hiển thị
	return math.Round(total*100) / 100, nil
}

// CreatePreference tạo phiên thanh toán online cho giỏ hiện tại:
// tính lại tổng server-side, gọi provider với idempotency key mới,
// và persist marker PendingPayment TRƯỚC khi trả redirect cho client.
func (s *PaymentPreferenceService) CreatePreference(ctx context.Context, tenantID primitive.ObjectID, sessionKey string, cart cartmodels.Cart, surcharge float64) (PaymentPreference, error) {
	var zero PaymentPreference
	log := logger.GetAppLogger()

	amount, err := s.RecomputeTotal(ctx, tenantID, cart, surcharge)
	if err != nil {
		return zero, err
	}

	idempotencyKey := uuid.NewString()
	preference, err := s.provider.CreatePreference(ctx, tenantID, amount, idempotencyKey)
	if err != nil {
		log.WithError(err).Error("Provider thanh toán từ chối tạo preference")
		return zero, common.NewError(common.ErrCodeCheckoutPayment, "Không tạo được phiên thanh toán online", common.StatusBadGateway, err)
	}

	_, err = s.pendings.InsertOne(ctx, models.PendingPayment{
		TenantID:       tenantID,
		SessionKey:     sessionKey,
		PreferenceID:   preference.PreferenceID,
		IdempotencyKey: idempotencyKey,
		Amount:         amount,
		Status:         models.PendingPaymentOpen,
	})
	if err != nil {
		return zero, err
	}

	return preference, nil
}

// ExpireStale đóng các marker open đã quá TTL. Worker gọi định kỳ.
func (s *PaymentPreferenceService) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).UnixMilli()

	stale, err := s.pendings.Find(ctx, bson.M{
		"status":    models.PendingPaymentOpen,
		"createdAt": bson.M{"$lt": cutoff},
	}, nil)
	if err != nil {
		return 0, err
	}

	var expired int64
	for _, pending := range stale {
		_, err := s.pendings.UpdateOne(ctx,
			bson.M{"_id": pending.ID, "status": models.PendingPaymentOpen},
			&basesvc.UpdateData{Set: map[string]interface{}{"status": models.PendingPaymentExpired}},
			nil,
		)
		if err != nil {
			logger.GetWorkerLogger().WithError(err).WithField("pendingId", pending.ID.Hex()).
				Error("Không đóng được pending payment quá hạn")
			continue
		}
		expired++
	}
	return expired, nil
}
