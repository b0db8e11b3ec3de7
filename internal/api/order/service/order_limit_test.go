package service

import (
	"testing"
	"time"

	tenantmodels "resto_commerce/internal/api/tenant/models"
)

func TestQuotaFor(t *testing.T) {
	cases := []struct {
		tier tenantmodels.SubscriptionTier
		want int64
	}{
		{tenantmodels.TierFree, 10},
		{tenantmodels.TierBasic, 50},
		{tenantmodels.TierPro, 200},
		{tenantmodels.TierUnlimited, -1},
		{"", 10},          // Gói rỗng coi như free
		{"mystery", 10},   // Gói lạ coi như free
	}
	for _, tc := range cases {
		if got := QuotaFor(tc.tier); got != tc.want {
			t.Errorf("QuotaFor(%q) = %d, muốn %d", tc.tier, got, tc.want)
		}
	}
}

func TestLocalDate_UsesStoreTimezone(t *testing.T) {
	tenant := tenantmodels.Tenant{Timezone: "Europe/Madrid"}

	// 23:30 UTC ngày 15/1 = 00:30 ngày 16/1 ở Madrid (UTC+1 mùa đông)
	at := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)
	if got := LocalDate(tenant, at); got != "2026-01-16" {
		t.Errorf("Ngày local phải theo timezone cửa hàng (2026-01-16), nhận được %s", got)
	}

	utcTenant := tenantmodels.Tenant{}
	if got := LocalDate(utcTenant, at); got != "2026-01-15" {
		t.Errorf("Không có timezone thì dùng UTC (2026-01-15), nhận được %s", got)
	}
}

func TestNextLocalMidnight(t *testing.T) {
	tenant := tenantmodels.Tenant{Timezone: "Europe/Madrid"}

	at := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC) // 14:00 Madrid (UTC+2 mùa hè)
	reset := NextLocalMidnight(tenant, at)

	loc, _ := time.LoadLocation("Europe/Madrid")
	want := time.Date(2026, 6, 11, 0, 0, 0, 0, loc)
	if !reset.Equal(want) {
		t.Errorf("Reset phải là nửa đêm local tiếp theo %v, nhận được %v", want, reset)
	}
	if !reset.After(at) {
		t.Error("Reset phải nằm trong tương lai")
	}
}
