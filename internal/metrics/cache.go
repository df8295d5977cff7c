package metrics

import (
	"time"

	statisticsdomain "parish-app-go/internal/domain/statistics"
)

// InstrumentedCache counts hits and misses of a dashboard cache.
type InstrumentedCache struct {
	next    statisticsdomain.Cache
	metrics *Metrics
}

func NewInstrumentedCache(next statisticsdomain.Cache, metrics *Metrics) *InstrumentedCache {
	return &InstrumentedCache{next: next, metrics: metrics}
}

func (c *InstrumentedCache) Get(key string, now time.Time) (statisticsdomain.Dashboard, bool) {
	dashboard, ok := c.next.Get(key, now)
	if ok {
		c.metrics.DashboardCacheHits.Inc()
	} else {
		c.metrics.DashboardCacheMiss.Inc()
	}
	return dashboard, ok
}

func (c *InstrumentedCache) Set(key string, dashboard statisticsdomain.Dashboard, expiresAt time.Time) {
	c.next.Set(key, dashboard, expiresAt)
}

func (c *InstrumentedCache) Clear() {
	c.next.Clear()
}
