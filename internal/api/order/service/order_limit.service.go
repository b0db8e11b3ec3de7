// Package service chứa nghiệp vụ đơn hàng: giới hạn đơn theo gói thuê bao,
// tạo đơn với chốt chặn oversell và phiên thanh toán online.
package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "resto_commerce/internal/api/base/service"
	"resto_commerce/internal/api/events"
	"resto_commerce/internal/api/order/models"
	tenantmodels "resto_commerce/internal/api/tenant/models"
	"resto_commerce/internal/common"
	"resto_commerce/internal/global"
)

// Quota đơn hàng mỗi ngày theo gói thuê bao. -1 = không giới hạn.
var tierQuotas = map[tenantmodels.SubscriptionTier]int64{
	tenantmodels.TierFree:      10,
	tenantmodels.TierBasic:     50,
	tenantmodels.TierPro:       200,
	tenantmodels.TierUnlimited: -1,
}

// QuotaFor trả về quota ngày của một gói thuê bao (gói lạ coi như free).
func QuotaFor(tier tenantmodels.SubscriptionTier) int64 {
	if quota, ok := tierQuotas[tier]; ok {
		return quota
	}
	return tierQuotas[tenantmodels.TierFree]
}

// LimitStatus là trạng thái giới hạn đơn hàng hiện tại của một cửa hàng.
// ResetDate là nửa đêm local tiếp theo trong timezone của cửa hàng (UnixMilli).
type LimitStatus struct {
	Limit           int64 `json:"limit"`
	Used            int64 `json:"used"`
	Remaining       int64 `json:"remaining"`
	IsUnlimited     bool  `json:"isUnlimited"`
	CanAcceptOrders bool  `json:"canAcceptOrders"`
	ResetDate       int64 `json:"resetDate"`
}

// OrderLimitService quản lý bộ đếm đơn theo ngày và quota theo gói.
type OrderLimitService struct {
	counters *basesvc.BaseServiceMongoImpl[models.OrderCounter]
}

// NewOrderLimitService tạo mới OrderLimitService trên collection order counters.
func NewOrderLimitService() *OrderLimitService {
	col := global.RegistryCollections.MustGet(global.MongoDB_ColNames.OrderCounters)
	return &OrderLimitService{
		counters: basesvc.NewBaseServiceMongo[models.OrderCounter](col),
	}
}

// LocalDate trả về ngày local hiện tại của cửa hàng ("2006-01-02").
// Bộ đếm reset theo ngày local, không theo UTC.
func LocalDate(tenant tenantmodels.Tenant, at time.Time) string {
	return at.In(tenant.Location()).Format("2006-01-02")
}

// NextLocalMidnight trả về nửa đêm tiếp theo trong timezone của cửa hàng.
func NextLocalMidnight(tenant tenantmodels.Tenant, at time.Time) time.Time {
	local := at.In(tenant.Location())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return midnight.AddDate(0, 0, 1)
}

// Status trả về trạng thái giới hạn đơn hàng hiện tại của cửa hàng.
func (s *OrderLimitService) Status(ctx context.Context, tenant tenantmodels.Tenant) (LimitStatus, error) {
	now := time.Now()
	quota := QuotaFor(tenant.SubscriptionTier)

	status := LimitStatus{
		Limit:       quota,
		IsUnlimited: quota < 0,
		ResetDate:   NextLocalMidnight(tenant, now).UnixMilli(),
	}

	counter, err := s.counters.FindOne(ctx, bson.M{"tenantId": tenant.ID, "date": LocalDate(tenant, now)}, nil)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return status, err
	}
	status.Used = counter.Count

	if status.IsUnlimited {
		status.Remaining = -1
		status.CanAcceptOrders = true
		return status, nil
	}

	status.Remaining = quota - status.Used
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	status.CanAcceptOrders = status.Remaining > 0
	return status, nil
}

// ConsumeQuota tiêu một suất quota ngày của cửa hàng một cách nguyên tử.
// Trả về số thứ tự đơn trong ngày. Khi counter đã chạm quota, filter không match
// và upsert thua unique index (tenantId, date) — cả hai đường đều ra ErrOrderLimitReached.
// Chạm quota đúng lúc này còn phát OrderLimitEvent{JustReached} cho gate phía client.
func (s *OrderLimitService) ConsumeQuota(ctx context.Context, tenant tenantmodels.Tenant) (int64, error) {
	now := time.Now()
	date := LocalDate(tenant, now)
	quota := QuotaFor(tenant.SubscriptionTier)

	filter := bson.M{"tenantId": tenant.ID, "date": date}
	if quota >= 0 {
		filter["count"] = bson.M{"$lt": quota}
	}

	counter, err := s.counters.Upsert(ctx, filter, &basesvc.UpdateData{
		Inc: map[string]interface{}{"count": 1},
		SetOnInsert: map[string]interface{}{
			"tenantId": tenant.ID,
			"date":     date,
		},
	})
	if err != nil {
		// Duplicate key: counter tồn tại nhưng count đã chạm quota
		var customErr *common.Error
		if errors.As(err, &customErr) && customErr.StatusCode == common.StatusConflict {
			events.EmitOrderLimit(context.WithoutCancel(ctx), events.OrderLimitEvent{
				TenantID:    tenant.ID,
				JustReached: false,
			})
			return 0, common.ErrOrderLimitReached
		}
		return 0, err
	}

	if quota >= 0 && counter.Count >= quota {
		// Đơn này vừa tiêu suất cuối cùng trong ngày
		events.EmitOrderLimit(context.WithoutCancel(ctx), events.OrderLimitEvent{
			TenantID:    tenant.ID,
			JustReached: true,
		})
	}
	return counter.Count, nil
}

// ReleaseQuota hoàn trả một suất quota (compensation khi tạo đơn thất bại sau khi
// đã tiêu quota).
func (s *OrderLimitService) ReleaseQuota(ctx context.Context, tenant tenantmodels.Tenant) error {
	_, err := s.counters.UpdateOne(ctx,
		bson.M{"tenantId": tenant.ID, "date": LocalDate(tenant, time.Now()), "count": bson.M{"$gt": 0}},
		&basesvc.UpdateData{Inc: map[string]interface{}{"count": -1}},
		nil,
	)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// FindCounters đọc bộ đếm theo khoảng ngày (báo cáo back-office).
func (s *OrderLimitService) FindCounters(ctx context.Context, tenantID primitive.ObjectID, fromDate, toDate string) ([]models.OrderCounter, error) {
	return s.counters.Find(ctx, bson.M{
		"tenantId": tenantID,
		"date":     bson.M{"$gte": fromDate, "$lte": toDate},
	}, nil)
}
