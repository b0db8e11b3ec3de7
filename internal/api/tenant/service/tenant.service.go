// Package service chứa nghiệp vụ tenant: tra cứu theo slug, giờ mở cửa
// và hình thức nhận hàng fallback cho checkout.
package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "resto_commerce/internal/api/base/service"
	"resto_commerce/internal/api/tenant/models"
	"resto_commerce/internal/global"
)

// TenantService quản lý cấu hình cửa hàng.
type TenantService struct {
	*basesvc.BaseServiceMongoImpl[models.Tenant]
}

// NewTenantService tạo mới TenantService trên collection tenants từ registry.
func NewTenantService() *TenantService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Tenants)
	return &TenantService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Tenant](col),
	}
}

// FindBySlug tìm cửa hàng theo slug (định danh public trên storefront).
func (s *TenantService) FindBySlug(ctx context.Context, slug string) (models.Tenant, error) {
	return s.FindOne(ctx, bson.M{"slug": slug}, nil)
}

// ResolveSlug trả về ID cửa hàng theo slug. Dùng làm tenant resolver
// cho middleware (đăng ký qua middleware.SetTenantResolver tại cmd/server).
func (s *TenantService) ResolveSlug(ctx context.Context, slug string) (primitive.ObjectID, error) {
	tenant, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return tenant.ID, nil
}

// IsOpenAt kiểm tra cửa hàng có đang trong giờ mở cửa tại thời điểm at không.
// at được quy đổi về timezone của cửa hàng trước khi so khung giờ.
func IsOpenAt(tenant models.Tenant, at time.Time) bool {
	local := at.In(tenant.Location())
	hours, ok := tenant.OpeningHours[local.Weekday().String()]
	if !ok || hours.Closed {
		return false
	}

	open, errOpen := parseClock(hours.Open)
	closeAt, errClose := parseClock(hours.Close)
	if errOpen != nil || errClose != nil {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()

	// Khung giờ qua đêm (ví dụ 18:00 - 02:00)
	if closeAt <= open {
		return minutes >= open || minutes < closeAt
	}
	return minutes >= open && minutes < closeAt
}

// FallbackDeliveryType trả về hình thức nhận hàng đầu tiên được bật.
// Checkout dùng nó để auto-correct khi hình thức khách đã chọn bị cửa hàng tắt.
func FallbackDeliveryType(tenant models.Tenant) (models.DeliveryType, bool) {
	if len(tenant.DeliveryTypes) == 0 {
		return "", false
	}
	return tenant.DeliveryTypes[0], true
}

// parseClock chuyển "HH:MM" thành số phút kể từ 00:00.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
