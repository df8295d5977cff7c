package events

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	List(ctx context.Context, filter ListFilter) ([]Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) (bool, error)

	ReplaceConcelebrants(ctx context.Context, massID int64, priestIDs []int64) error
	DeleteConcelebrants(ctx context.Context, massID int64) error
	UnlinkIntentions(ctx context.Context, massID int64) error

	CelebrantSummaries(ctx context.Context, priestIDs []int64) (map[int64]CelebrantSummary, error)
	IntentionSummaries(ctx context.Context, massIDs []int64) (map[int64][]IntentionSummary, error)
}
