package statistics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	statisticsdomain "parish-app-go/internal/domain/statistics"
)

const (
	massCategory      = "MASS"
	deceasedIntention = "DECEASED"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CountMasses(ctx context.Context, period statisticsdomain.Period) (int64, error) {
	return r.count(ctx, r.masses(ctx, period))
}

func (r *PostgresRepository) CountMassesByPriest(ctx context.Context, priestID int64, period statisticsdomain.Period) (int64, error) {
	return r.count(ctx, r.masses(ctx, period).Where("main_celebrant_id = ?", priestID))
}

func (r *PostgresRepository) MassCountsByType(ctx context.Context, period statisticsdomain.Period) ([]statisticsdomain.CountByKey, error) {
	query := `
		SELECT mass_type AS key, COUNT(*) AS count
		FROM events
		WHERE event_category = ? AND event_date >= ? AND event_date <= ?
		GROUP BY mass_type
		ORDER BY count DESC, mass_type
	`

	var rows []statisticsdomain.CountByKey
	if err := r.db.WithContext(ctx).Raw(query, massCategory, period.Start, period.End).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) MassCountsByYear(ctx context.Context) ([]statisticsdomain.YearCount, error) {
	query := `
		SELECT EXTRACT(YEAR FROM event_date)::int AS year, COUNT(*) AS count
		FROM events
		WHERE event_category = ?
		GROUP BY 1
		ORDER BY 1 DESC
	`

	var rows []statisticsdomain.YearCount
	if err := r.db.WithContext(ctx).Raw(query, massCategory).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) MassCountsByMonth(ctx context.Context, year int) ([]statisticsdomain.MonthCount, error) {
	query := `
		SELECT EXTRACT(MONTH FROM event_date)::int AS month, COUNT(*) AS count
		FROM events
		WHERE event_category = ? AND EXTRACT(YEAR FROM event_date) = ?
		GROUP BY 1
		ORDER BY 1
	`

	var rows []statisticsdomain.MonthCount
	if err := r.db.WithContext(ctx).Raw(query, massCategory, year).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CelebrantCounts(ctx context.Context, period *statisticsdomain.Period) ([]statisticsdomain.CelebrantCount, error) {
	query := r.db.WithContext(ctx).
		Table("events e").
		Select(`
			p.id AS priest_id,
			p.names,
			p.priest_type,
			p.email,
			p.phone,
			p.is_assigned,
			COUNT(e.id) AS mass_count
		`).
		Joins("JOIN priests p ON p.id = e.main_celebrant_id").
		Where("e.event_category = ?", massCategory)
	if period != nil {
		query = query.Where("e.event_date >= ? AND e.event_date <= ?", period.Start, period.End)
	}

	var rows []statisticsdomain.CelebrantCount
	if err := query.
		Group("p.id, p.names, p.priest_type, p.email, p.phone, p.is_assigned").
		Order("mass_count DESC, p.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CountIntentions(ctx context.Context, period statisticsdomain.Period) (int64, error) {
	return r.count(ctx, r.intentions(ctx, period))
}

func (r *PostgresRepository) IntentionCountsByType(ctx context.Context, period statisticsdomain.Period) ([]statisticsdomain.CountByKey, error) {
	query := `
		SELECT intention_type AS key, COUNT(*) AS count
		FROM intentions
		WHERE requested_date >= ? AND requested_date <= ?
		GROUP BY intention_type
		ORDER BY count DESC, intention_type
	`

	var rows []statisticsdomain.CountByKey
	if err := r.db.WithContext(ctx).Raw(query, period.Start, period.End).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CountDeceasedIntentions(ctx context.Context, period statisticsdomain.Period) (int64, error) {
	return r.count(ctx, r.intentions(ctx, period).Where("intention_type = ?", deceasedIntention))
}

func (r *PostgresRepository) CountUnpaidIntentions(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.WithContext(ctx).Table("intentions").Where("is_paid = ?", false))
}

func (r *PostgresRepository) UnpaidIntentions(ctx context.Context) ([]statisticsdomain.UnpaidIntention, error) {
	query := `
		SELECT
			i.id AS intention_id,
			i.intention_type,
			i.intention_text,
			i.requested_date,
			CASE
				WHEN f.id IS NOT NULL THEN TRIM(f.firstname || ' ' || f.name)
				ELSE COALESCE(i.external_faithful_name, '')
			END AS requestor_name,
			i.mass_id,
			e.event_date AS mass_date
		FROM intentions i
		LEFT JOIN faithfuls f ON f.id = i.faithful_id
		LEFT JOIN events e ON e.id = i.mass_id
		WHERE i.is_paid = FALSE
		ORDER BY i.requested_date ASC, i.id ASC
	`

	var rows []statisticsdomain.UnpaidIntention
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) MonthlyOfferings(ctx context.Context, year int) ([]statisticsdomain.MonthAmount, error) {
	query := `
		SELECT EXTRACT(MONTH FROM requested_date)::int AS month, COALESCE(SUM(offering_amount), 0) AS total
		FROM intentions
		WHERE is_paid = TRUE AND EXTRACT(YEAR FROM requested_date) = ?
		GROUP BY 1
		ORDER BY 1
	`

	var rows []struct {
		Month int
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(query, year).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]statisticsdomain.MonthAmount, 0, len(rows))
	for _, row := range rows {
		result = append(result, statisticsdomain.MonthAmount{Month: row.Month, Total: row.Total})
	}
	return result, nil
}

func (r *PostgresRepository) CountPriests(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.WithContext(ctx).Table("priests"))
}

func (r *PostgresRepository) CountAssignedPriests(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.WithContext(ctx).Table("priests").Where("is_assigned = ?", true))
}

func (r *PostgresRepository) CountPriestsCreated(ctx context.Context, period statisticsdomain.Period) (int64, error) {
	// created_at is a timestamp, so the end bound is the next midnight.
	end := period.End.Add(24 * time.Hour)
	return r.count(ctx, r.db.WithContext(ctx).
		Table("priests").
		Where("created_at >= ? AND created_at < ?", period.Start, end))
}

func (r *PostgresRepository) PriestCountsByType(ctx context.Context) ([]statisticsdomain.CountByKey, error) {
	query := `
		SELECT priest_type AS key, COUNT(*) AS count
		FROM priests
		GROUP BY priest_type
		ORDER BY count DESC, priest_type
	`

	var rows []statisticsdomain.CountByKey
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) OrdinationYearCounts(ctx context.Context) ([]statisticsdomain.YearCount, error) {
	query := `
		SELECT EXTRACT(YEAR FROM ordination_date)::int AS year, COUNT(*) AS count
		FROM priests
		WHERE ordination_date IS NOT NULL
		GROUP BY 1
		ORDER BY 1 DESC
	`

	var rows []statisticsdomain.YearCount
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) CountEvents(ctx context.Context, period statisticsdomain.Period) (int64, error) {
	return r.count(ctx, r.db.WithContext(ctx).
		Table("events").
		Where("event_date >= ? AND event_date <= ?", period.Start, period.End))
}

func (r *PostgresRepository) masses(ctx context.Context, period statisticsdomain.Period) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("events").
		Where("event_category = ?", massCategory).
		Where("event_date >= ? AND event_date <= ?", period.Start, period.End)
}

func (r *PostgresRepository) intentions(ctx context.Context, period statisticsdomain.Period) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("intentions").
		Where("requested_date >= ? AND requested_date <= ?", period.Start, period.End)
}

func (r *PostgresRepository) count(ctx context.Context, query *gorm.DB) (int64, error) {
	var total int64
	if err := query.WithContext(ctx).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
