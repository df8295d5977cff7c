package inmemory

import (
	"testing"
	"time"

	statisticsdomain "parish-app-go/internal/domain/statistics"
)

func TestDashboardCacheExpires(t *testing.T) {
	cache := NewDashboardCache()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.Set("k", statisticsdomain.Dashboard{TotalMasses: 3}, now.Add(time.Minute))

	got, ok := cache.Get("k", now)
	if !ok || got.TotalMasses != 3 {
		t.Fatalf("expected cached dashboard, got %+v (ok=%v)", got, ok)
	}

	if _, ok := cache.Get("k", now.Add(time.Minute)); ok {
		t.Fatalf("expected entry to expire")
	}
	if _, ok := cache.Get("k", now); ok {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestDashboardCacheReturnsCopies(t *testing.T) {
	cache := NewDashboardCache()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cache.Set("k", statisticsdomain.Dashboard{MassTypeBreakdown: map[string]int64{"SUNDAY": 2}}, now.Add(time.Hour))

	first, _ := cache.Get("k", now)
	first.MassTypeBreakdown["SUNDAY"] = 99

	second, _ := cache.Get("k", now)
	if second.MassTypeBreakdown["SUNDAY"] != 2 {
		t.Fatalf("expected cached value to stay 2, got %d", second.MassTypeBreakdown["SUNDAY"])
	}
}
