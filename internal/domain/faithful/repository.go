package faithful

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	List(ctx context.Context, filter ListFilter) ([]Faithful, error)
	GetByID(ctx context.Context, id int64) (*Faithful, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetByBaptismID(ctx context.Context, baptismID string) (*Faithful, error)
	GetByConfirmationID(ctx context.Context, confirmationID string) (*Faithful, error)
	GetByMatrimonyID(ctx context.Context, matrimonyID string) (*Faithful, error)
	GetBySpouseBaptismID(ctx context.Context, spouseBaptismID string) (*Faithful, error)
	Create(ctx context.Context, faithful *Faithful) error
	Update(ctx context.Context, faithful *Faithful) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByTerritory(ctx context.Context, level TerritoryLevel) ([]TerritoryCount, error)

	ListMinistries(ctx context.Context, faithfulIDs []int64) (map[int64][]Ministry, error)
	ReplaceMinistries(ctx context.Context, faithfulID int64, ministryTypes []string) ([]Ministry, error)
	DeleteMinistries(ctx context.Context, faithfulID int64) error
	ListLapseEvents(ctx context.Context, faithfulIDs []int64) (map[int64][]LapseEvent, error)
	ReplaceLapseEvents(ctx context.Context, faithfulID int64, events []LapseEvent) ([]LapseEvent, error)
	DeleteLapseEvents(ctx context.Context, faithfulID int64) error
}
