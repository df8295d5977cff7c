package statistics

import (
	"context"
	"time"
)

type Repository interface {
	CountMasses(ctx context.Context, period Period) (int64, error)
	CountMassesByPriest(ctx context.Context, priestID int64, period Period) (int64, error)
	MassCountsByType(ctx context.Context, period Period) ([]CountByKey, error)
	MassCountsByYear(ctx context.Context) ([]YearCount, error)
	MassCountsByMonth(ctx context.Context, year int) ([]MonthCount, error)
	// CelebrantCounts ranks main celebrants by mass count. A nil period covers
	// every mass.
	CelebrantCounts(ctx context.Context, period *Period) ([]CelebrantCount, error)

	CountIntentions(ctx context.Context, period Period) (int64, error)
	IntentionCountsByType(ctx context.Context, period Period) ([]CountByKey, error)
	CountDeceasedIntentions(ctx context.Context, period Period) (int64, error)
	CountUnpaidIntentions(ctx context.Context) (int64, error)
	UnpaidIntentions(ctx context.Context) ([]UnpaidIntention, error)
	MonthlyOfferings(ctx context.Context, year int) ([]MonthAmount, error)

	CountPriests(ctx context.Context) (int64, error)
	CountAssignedPriests(ctx context.Context) (int64, error)
	CountPriestsCreated(ctx context.Context, period Period) (int64, error)
	PriestCountsByType(ctx context.Context) ([]CountByKey, error)
	OrdinationYearCounts(ctx context.Context) ([]YearCount, error)

	CountEvents(ctx context.Context, period Period) (int64, error)
}

// Cache keeps computed dashboards until they expire.
type Cache interface {
	Get(key string, now time.Time) (Dashboard, bool)
	Set(key string, dashboard Dashboard, expiresAt time.Time)
	Clear()
}
