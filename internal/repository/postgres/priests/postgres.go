package priests

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"parish-app-go/internal/db"
	priestsdomain "parish-app-go/internal/domain/priests"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(priestsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) List(ctx context.Context, filter priestsdomain.ListFilter) ([]priestsdomain.Priest, error) {
	query := r.db.WithContext(ctx).Model(&priestsdomain.Priest{})
	if filter.Type != "" {
		query = query.Where("priest_type = ?", filter.Type)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.AssignedOnly {
		query = query.Where("is_assigned = ?", true)
	}

	var items []priestsdomain.Priest
	if err := query.Order("names asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*priestsdomain.Priest, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*priestsdomain.Priest, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&priestsdomain.Priest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) Create(ctx context.Context, priest *priestsdomain.Priest) error {
	return translateWriteError(r.db.WithContext(ctx).Create(priest).Error)
}

func (r *PostgresRepository) Update(ctx context.Context, priest *priestsdomain.Priest) error {
	err := r.db.WithContext(ctx).
		Model(&priestsdomain.Priest{}).
		Where("id = ?", priest.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(priest).Error
	return translateWriteError(err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&priestsdomain.Priest{}, "id = ?", id)
	if result.Error != nil {
		if _, ok := db.ForeignKeyViolation(result.Error); ok {
			return false, priestsdomain.ErrPriestInUse
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) first(ctx context.Context, where string, args ...interface{}) (*priestsdomain.Priest, error) {
	var priest priestsdomain.Priest
	if err := r.db.WithContext(ctx).Where(where, args...).First(&priest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, priestsdomain.ErrPriestNotFound
		}
		return nil, err
	}
	return &priest, nil
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	constraint, ok := db.UniqueViolation(err)
	if !ok {
		return err
	}
	if constraint == "priests_email_key" {
		return priestsdomain.ErrEmailTaken
	}
	return priestsdomain.ErrPriestExists
}
