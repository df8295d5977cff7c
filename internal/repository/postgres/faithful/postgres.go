package faithful

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"parish-app-go/internal/db"
	faithfuldomain "parish-app-go/internal/domain/faithful"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(faithfuldomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) List(ctx context.Context, filter faithfuldomain.ListFilter) ([]faithfuldomain.Faithful, error) {
	query := r.db.WithContext(ctx).Model(&faithfuldomain.Faithful{})
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.NameContains != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.NameContains)) + "%"
		query = query.Where("(lower(name) LIKE ? OR lower(firstname) LIKE ?)", pattern, pattern)
	}
	if filter.Parish != "" {
		query = query.Where("parish = ?", filter.Parish)
	}
	if filter.Subparish != "" {
		query = query.Where("subparish = ?", filter.Subparish)
	}
	if filter.BEC != "" {
		query = query.Where("basic_ecclesial_community = ?", filter.BEC)
	}
	if filter.BornFrom != nil {
		query = query.Where("date_of_birth >= ?", *filter.BornFrom)
	}
	if filter.BornTo != nil {
		query = query.Where("date_of_birth <= ?", *filter.BornTo)
	}
	if filter.Relocated != nil {
		query = query.Where("has_relocated = ?", *filter.Relocated)
	}
	if filter.Deceased != nil {
		query = query.Where("is_deceased = ?", *filter.Deceased)
	}
	if filter.AllSacraments {
		query = query.Where("date_of_baptism IS NOT NULL AND date_of_first_communion IS NOT NULL AND date_of_confirmation IS NOT NULL")
	}

	var items []faithfuldomain.Faithful
	if err := query.Order("name asc, firstname asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*faithfuldomain.Faithful, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&faithfuldomain.Faithful{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) GetByBaptismID(ctx context.Context, baptismID string) (*faithfuldomain.Faithful, error) {
	return r.first(ctx, "baptism_id = ?", baptismID)
}

func (r *PostgresRepository) GetByConfirmationID(ctx context.Context, confirmationID string) (*faithfuldomain.Faithful, error) {
	return r.first(ctx, "confirmation_id = ?", confirmationID)
}

func (r *PostgresRepository) GetByMatrimonyID(ctx context.Context, matrimonyID string) (*faithfuldomain.Faithful, error) {
	return r.first(ctx, "matrimony_id = ?", matrimonyID)
}

func (r *PostgresRepository) GetBySpouseBaptismID(ctx context.Context, spouseBaptismID string) (*faithfuldomain.Faithful, error) {
	return r.first(ctx, "spouse_baptism_id = ?", spouseBaptismID)
}

func (r *PostgresRepository) Create(ctx context.Context, faithful *faithfuldomain.Faithful) error {
	return translateWriteError(r.db.WithContext(ctx).Create(faithful).Error)
}

func (r *PostgresRepository) Update(ctx context.Context, faithful *faithfuldomain.Faithful) error {
	err := r.db.WithContext(ctx).
		Model(&faithfuldomain.Faithful{}).
		Where("id = ?", faithful.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(faithful).Error
	return translateWriteError(err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&faithfuldomain.Faithful{}, "id = ?", id)
	if result.Error != nil {
		if _, ok := db.ForeignKeyViolation(result.Error); ok {
			return false, faithfuldomain.ErrFaithfulReferenced
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&faithfuldomain.Faithful{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CountByTerritory(ctx context.Context, level faithfuldomain.TerritoryLevel) ([]faithfuldomain.TerritoryCount, error) {
	column, err := territoryColumn(level)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %[1]s AS name, COUNT(*) AS count
		FROM faithfuls
		GROUP BY %[1]s
		ORDER BY count DESC, name ASC
	`, column)

	var rows []faithfuldomain.TerritoryCount
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) ListMinistries(ctx context.Context, faithfulIDs []int64) (map[int64][]faithfuldomain.Ministry, error) {
	result := make(map[int64][]faithfuldomain.Ministry, len(faithfulIDs))
	if len(faithfulIDs) == 0 {
		return result, nil
	}

	var rows []faithfuldomain.Ministry
	if err := r.db.WithContext(ctx).
		Where("faithful_id IN ?", faithfulIDs).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.FaithfulID] = append(result[row.FaithfulID], row)
	}
	return result, nil
}

func (r *PostgresRepository) ReplaceMinistries(ctx context.Context, faithfulID int64, ministryTypes []string) ([]faithfuldomain.Ministry, error) {
	if err := r.DeleteMinistries(ctx, faithfulID); err != nil {
		return nil, err
	}
	if len(ministryTypes) == 0 {
		return []faithfuldomain.Ministry{}, nil
	}

	rows := make([]faithfuldomain.Ministry, 0, len(ministryTypes))
	for _, ministryType := range ministryTypes {
		rows = append(rows, faithfuldomain.Ministry{FaithfulID: faithfulID, MinistryType: ministryType})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) DeleteMinistries(ctx context.Context, faithfulID int64) error {
	return r.db.WithContext(ctx).Where("faithful_id = ?", faithfulID).Delete(&faithfuldomain.Ministry{}).Error
}

func (r *PostgresRepository) ListLapseEvents(ctx context.Context, faithfulIDs []int64) (map[int64][]faithfuldomain.LapseEvent, error) {
	result := make(map[int64][]faithfuldomain.LapseEvent, len(faithfulIDs))
	if len(faithfulIDs) == 0 {
		return result, nil
	}

	var rows []faithfuldomain.LapseEvent
	if err := r.db.WithContext(ctx).
		Where("faithful_id IN ?", faithfulIDs).
		Order("lapse_date asc nulls last, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.FaithfulID] = append(result[row.FaithfulID], row)
	}
	return result, nil
}

func (r *PostgresRepository) ReplaceLapseEvents(ctx context.Context, faithfulID int64, events []faithfuldomain.LapseEvent) ([]faithfuldomain.LapseEvent, error) {
	if err := r.DeleteLapseEvents(ctx, faithfulID); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []faithfuldomain.LapseEvent{}, nil
	}

	rows := make([]faithfuldomain.LapseEvent, len(events))
	copy(rows, events)
	for i := range rows {
		rows[i].ID = 0
		rows[i].FaithfulID = faithfulID
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) DeleteLapseEvents(ctx context.Context, faithfulID int64) error {
	return r.db.WithContext(ctx).Where("faithful_id = ?", faithfulID).Delete(&faithfuldomain.LapseEvent{}).Error
}

func (r *PostgresRepository) first(ctx context.Context, where string, args ...interface{}) (*faithfuldomain.Faithful, error) {
	var faithful faithfuldomain.Faithful
	if err := r.db.WithContext(ctx).Where(where, args...).First(&faithful).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faithfuldomain.ErrFaithfulNotFound
		}
		return nil, err
	}
	return &faithful, nil
}

// translateWriteError turns a unique index race into the same error the
// service reports for a duplicate sacrament id.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := db.UniqueViolation(err); ok {
		return fmt.Errorf("%w: %s", faithfuldomain.ErrDuplicateIdentifier, constraintLabel(constraint))
	}
	return err
}

func constraintLabel(constraint string) string {
	switch constraint {
	case "faithfuls_baptism_id_key":
		return "baptism id already exists"
	case "faithfuls_confirmation_id_key":
		return "confirmation id already exists"
	case "faithfuls_matrimony_id_key":
		return "matrimony id already exists"
	default:
		return constraint
	}
}

func territoryColumn(level faithfuldomain.TerritoryLevel) (string, error) {
	switch level {
	case faithfuldomain.LevelParish:
		return "parish", nil
	case faithfuldomain.LevelSubparish:
		return "subparish", nil
	case faithfuldomain.LevelBEC:
		return "basic_ecclesial_community", nil
	default:
		return "", fmt.Errorf("unknown territory level %q", level)
	}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
