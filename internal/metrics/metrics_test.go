package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	statisticsdomain "parish-app-go/internal/domain/statistics"
)

type stubCache struct {
	hit bool
}

func (c stubCache) Get(key string, now time.Time) (statisticsdomain.Dashboard, bool) {
	return statisticsdomain.Dashboard{}, c.hit
}

func (c stubCache) Set(key string, dashboard statisticsdomain.Dashboard, expiresAt time.Time) {}

func (c stubCache) Clear() {}

func counterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestInstrumentedCacheCountsHitsAndMisses(t *testing.T) {
	m := New()

	_, ok := NewInstrumentedCache(stubCache{hit: true}, m).Get("k", time.Now())
	require.True(t, ok)
	_, ok = NewInstrumentedCache(stubCache{hit: false}, m).Get("k", time.Now())
	require.False(t, ok)

	assert.Equal(t, 1.0, counterValue(t, m, "parish_dashboard_cache_hits_total"))
	assert.Equal(t, 1.0, counterValue(t, m, "parish_dashboard_cache_misses_total"))
}
