package intentions

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	intentionsdomain "parish-app-go/internal/domain/intentions"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(intentionsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) List(ctx context.Context, filter intentionsdomain.ListFilter) ([]intentionsdomain.Intention, error) {
	query := r.db.WithContext(ctx).Model(&intentionsdomain.Intention{})
	if filter.StartDate != nil {
		query = query.Where("requested_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("requested_date <= ?", *filter.EndDate)
	}
	if filter.IntentionType != "" {
		query = query.Where("intention_type = ?", filter.IntentionType)
	}
	if filter.MassID != 0 {
		query = query.Where("mass_id = ?", filter.MassID)
	}
	if filter.FaithfulID != 0 {
		query = query.Where("faithful_id = ?", filter.FaithfulID)
	}
	if filter.UnpaidOnly {
		query = query.Where("is_paid = ?", false)
	}

	var items []intentionsdomain.Intention
	if err := query.Order("requested_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*intentionsdomain.Intention, error) {
	var intention intentionsdomain.Intention
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&intention).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, intentionsdomain.ErrIntentionNotFound
		}
		return nil, err
	}
	return &intention, nil
}

func (r *PostgresRepository) Create(ctx context.Context, intention *intentionsdomain.Intention) error {
	return r.db.WithContext(ctx).Create(intention).Error
}

func (r *PostgresRepository) Update(ctx context.Context, intention *intentionsdomain.Intention) error {
	return r.db.WithContext(ctx).
		Model(&intentionsdomain.Intention{}).
		Where("id = ?", intention.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(intention).Error
}

func (r *PostgresRepository) SetPaid(ctx context.Context, id int64, paid bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&intentionsdomain.Intention{}).
		Where("id = ?", id).
		Update("is_paid", paid)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&intentionsdomain.Intention{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) FaithfulExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("faithfuls").Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) MassExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("events").
		Where("id = ? AND event_category = ?", id, "MASS").
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) RequestorNames(ctx context.Context, faithfulIDs []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(faithfulIDs))
	if len(faithfulIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ID   int64
		Name string
	}
	if err := r.db.WithContext(ctx).
		Table("faithfuls").
		Select("id, TRIM(firstname || ' ' || name) AS name").
		Where("id IN ?", faithfulIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Name
	}
	return result, nil
}

func (r *PostgresRepository) MassSummaries(ctx context.Context, massIDs []int64) (map[int64]intentionsdomain.MassSummary, error) {
	result := make(map[int64]intentionsdomain.MassSummary, len(massIDs))
	if len(massIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT
			e.id,
			e.event_date AS mass_date,
			COALESCE(e.mass_type, '') AS mass_type,
			COALESCE(p.names, '') AS main_celebrant_name
		FROM events e
		LEFT JOIN priests p ON p.id = e.main_celebrant_id
		WHERE e.id IN ? AND e.event_category = 'MASS'
	`

	var rows []struct {
		ID                int64
		MassDate          time.Time
		MassType          string
		MainCelebrantName string
	}
	if err := r.db.WithContext(ctx).Raw(query, massIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = intentionsdomain.MassSummary{
			ID:                row.ID,
			MassDate:          row.MassDate,
			MassType:          row.MassType,
			MainCelebrantName: row.MainCelebrantName,
		}
	}
	return result, nil
}
