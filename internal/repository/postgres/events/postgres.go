package events

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	eventsdomain "parish-app-go/internal/domain/events"
)

// eventRow is the single-table layout shared by plain events and masses.
type eventRow struct {
	ID               int64  `gorm:"primaryKey"`
	EventCategory    string `gorm:"column:event_category"`
	Title            string
	Description      string
	EventDate        time.Time `gorm:"type:date"`
	Location         string
	EventType        string
	ImageURL         string `gorm:"column:image_url"`
	IsPublic         bool
	MassType         *string
	LiturgicalSeason *string
	Readings         *string
	MainCelebrantID  *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (eventRow) TableName() string {
	return "events"
}

type concelebrantRow struct {
	MassID   int64 `gorm:"primaryKey"`
	PriestID int64 `gorm:"primaryKey"`
}

func (concelebrantRow) TableName() string {
	return "mass_concelebrants"
}

type celebrantRow struct {
	ID                int64
	Names             string
	PriestType        string
	Email             *string
	Phone             string
	ProfilePictureURL string `gorm:"column:profile_picture_url"`
}

type intentionRow struct {
	ID            int64
	MassID        int64
	IntentionType string
	IntentionText string
	IsPaid        bool
	RequestorName string
}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(eventsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) List(ctx context.Context, filter eventsdomain.ListFilter) ([]eventsdomain.Event, error) {
	query := r.db.WithContext(ctx).Model(&eventRow{})
	if filter.Kind != "" {
		query = query.Where("event_category = ?", string(filter.Kind))
	}
	if filter.StartDate != nil {
		query = query.Where("event_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("event_date <= ?", *filter.EndDate)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", string(filter.EventType))
	}
	if filter.MassType != "" {
		query = query.Where("mass_type = ?", string(filter.MassType))
	}
	if filter.MainCelebrantID != 0 {
		query = query.Where("main_celebrant_id = ?", filter.MainCelebrantID)
	}
	if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filter.Year != 0 {
		query = query.Where("EXTRACT(YEAR FROM event_date) = ?", filter.Year)
	}
	if filter.Month != 0 {
		query = query.Where("EXTRACT(MONTH FROM event_date) = ?", filter.Month)
	}

	var rows []eventRow
	if err := query.Order("event_date asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.EventCategory == string(eventsdomain.KindMass) {
			ids = append(ids, row.ID)
		}
	}
	concelebrants, err := r.concelebrantIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]eventsdomain.Event, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomain(row, concelebrants[row.ID]))
	}
	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*eventsdomain.Event, error) {
	var row eventRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventsdomain.ErrEventNotFound
		}
		return nil, err
	}

	concelebrants, err := r.concelebrantIDs(ctx, []int64{row.ID})
	if err != nil {
		return nil, err
	}
	event := toDomain(row, concelebrants[row.ID])
	return &event, nil
}

func (r *PostgresRepository) Create(ctx context.Context, event *eventsdomain.Event) error {
	row := toRow(*event)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	event.ID = row.ID
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, event *eventsdomain.Event) error {
	row := toRow(*event)
	return r.db.WithContext(ctx).
		Model(&eventRow{}).
		Where("id = ?", event.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&eventRow{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) ReplaceConcelebrants(ctx context.Context, massID int64, priestIDs []int64) error {
	if err := r.DeleteConcelebrants(ctx, massID); err != nil {
		return err
	}
	if len(priestIDs) == 0 {
		return nil
	}

	rows := make([]concelebrantRow, 0, len(priestIDs))
	for _, priestID := range priestIDs {
		rows = append(rows, concelebrantRow{MassID: massID, PriestID: priestID})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) DeleteConcelebrants(ctx context.Context, massID int64) error {
	return r.db.WithContext(ctx).Where("mass_id = ?", massID).Delete(&concelebrantRow{}).Error
}

func (r *PostgresRepository) UnlinkIntentions(ctx context.Context, massID int64) error {
	return r.db.WithContext(ctx).
		Table("intentions").
		Where("mass_id = ?", massID).
		Update("mass_id", nil).Error
}

func (r *PostgresRepository) CelebrantSummaries(ctx context.Context, priestIDs []int64) (map[int64]eventsdomain.CelebrantSummary, error) {
	result := make(map[int64]eventsdomain.CelebrantSummary, len(priestIDs))
	if len(priestIDs) == 0 {
		return result, nil
	}

	var rows []celebrantRow
	if err := r.db.WithContext(ctx).
		Table("priests").
		Select("id, names, priest_type, email, phone, profile_picture_url").
		Where("id IN ?", priestIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ID] = eventsdomain.CelebrantSummary{
			ID:                row.ID,
			Names:             row.Names,
			PriestType:        row.PriestType,
			Email:             row.Email,
			Phone:             row.Phone,
			ProfilePictureURL: row.ProfilePictureURL,
		}
	}
	return result, nil
}

func (r *PostgresRepository) IntentionSummaries(ctx context.Context, massIDs []int64) (map[int64][]eventsdomain.IntentionSummary, error) {
	result := make(map[int64][]eventsdomain.IntentionSummary, len(massIDs))
	if len(massIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT
			i.id,
			i.mass_id,
			i.intention_type,
			i.intention_text,
			i.is_paid,
			CASE
				WHEN f.id IS NOT NULL THEN TRIM(f.firstname || ' ' || f.name)
				ELSE COALESCE(i.external_faithful_name, '')
			END AS requestor_name
		FROM intentions i
		LEFT JOIN faithfuls f ON f.id = i.faithful_id
		WHERE i.mass_id IN ?
		ORDER BY i.requested_date ASC, i.id ASC
	`

	var rows []intentionRow
	if err := r.db.WithContext(ctx).Raw(query, massIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.MassID] = append(result[row.MassID], eventsdomain.IntentionSummary{
			ID:            row.ID,
			MassID:        row.MassID,
			IntentionType: row.IntentionType,
			IntentionText: row.IntentionText,
			IsPaid:        row.IsPaid,
			RequestorName: row.RequestorName,
		})
	}
	return result, nil
}

func (r *PostgresRepository) concelebrantIDs(ctx context.Context, massIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(massIDs))
	if len(massIDs) == 0 {
		return result, nil
	}

	var rows []concelebrantRow
	if err := r.db.WithContext(ctx).
		Where("mass_id IN ?", massIDs).
		Order("priest_id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.MassID] = append(result[row.MassID], row.PriestID)
	}
	return result, nil
}

func toDomain(row eventRow, concelebrantIDs []int64) eventsdomain.Event {
	event := eventsdomain.Event{
		ID:          row.ID,
		Kind:        eventsdomain.Kind(row.EventCategory),
		Title:       row.Title,
		Description: row.Description,
		EventDate:   row.EventDate,
		Location:    row.Location,
		EventType:   eventsdomain.EventType(row.EventType),
		IsPublic:    row.IsPublic,
		ImageURL:    row.ImageURL,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if event.Kind != eventsdomain.KindMass {
		return event
	}

	mass := &eventsdomain.Mass{ConcelebrantIDs: concelebrantIDs}
	if mass.ConcelebrantIDs == nil {
		mass.ConcelebrantIDs = []int64{}
	}
	if row.MassType != nil {
		mass.MassType = eventsdomain.MassType(*row.MassType)
	}
	if row.LiturgicalSeason != nil {
		season := eventsdomain.LiturgicalSeason(*row.LiturgicalSeason)
		mass.LiturgicalSeason = &season
	}
	if row.Readings != nil {
		mass.Readings = *row.Readings
	}
	if row.MainCelebrantID != nil {
		mass.MainCelebrantID = *row.MainCelebrantID
	}
	event.Mass = mass
	return event
}

func toRow(event eventsdomain.Event) eventRow {
	row := eventRow{
		ID:            event.ID,
		EventCategory: string(event.Kind),
		Title:         event.Title,
		Description:   event.Description,
		EventDate:     event.EventDate,
		Location:      event.Location,
		EventType:     string(event.EventType),
		ImageURL:      event.ImageURL,
		IsPublic:      event.IsPublic,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}
	if event.Mass == nil {
		return row
	}

	massType := string(event.Mass.MassType)
	row.MassType = &massType
	if event.Mass.LiturgicalSeason != nil {
		season := string(*event.Mass.LiturgicalSeason)
		row.LiturgicalSeason = &season
	}
	readings := event.Mass.Readings
	row.Readings = &readings
	mainID := event.Mass.MainCelebrantID
	row.MainCelebrantID = &mainID
	return row
}
