package inmemory

import (
	"sync"
	"time"

	statisticsdomain "parish-app-go/internal/domain/statistics"
)

type DashboardCache struct {
	mu    sync.RWMutex
	items map[string]dashboardItem
}

type dashboardItem struct {
	value     statisticsdomain.Dashboard
	expiresAt time.Time
}

func NewDashboardCache() *DashboardCache {
	return &DashboardCache{
		items: make(map[string]dashboardItem),
	}
}

func (c *DashboardCache) Get(key string, now time.Time) (statisticsdomain.Dashboard, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return statisticsdomain.Dashboard{}, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[key]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return statisticsdomain.Dashboard{}, false
	}

	return cloneDashboard(item.value), true
}

func (c *DashboardCache) Set(key string, dashboard statisticsdomain.Dashboard, expiresAt time.Time) {
	c.mu.Lock()
	c.items[key] = dashboardItem{
		value:     cloneDashboard(dashboard),
		expiresAt: expiresAt,
	}
	c.mu.Unlock()
}

func (c *DashboardCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]dashboardItem)
	c.mu.Unlock()
}

// Callers may mutate the breakdown map, so it never leaves the cache shared.
func cloneDashboard(dashboard statisticsdomain.Dashboard) statisticsdomain.Dashboard {
	if dashboard.MassTypeBreakdown != nil {
		breakdown := make(map[string]int64, len(dashboard.MassTypeBreakdown))
		for key, value := range dashboard.MassTypeBreakdown {
			breakdown[key] = value
		}
		dashboard.MassTypeBreakdown = breakdown
	}
	return dashboard
}
