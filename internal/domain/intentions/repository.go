package intentions

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	List(ctx context.Context, filter ListFilter) ([]Intention, error)
	GetByID(ctx context.Context, id int64) (*Intention, error)
	Create(ctx context.Context, intention *Intention) error
	Update(ctx context.Context, intention *Intention) error
	SetPaid(ctx context.Context, id int64, paid bool) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)

	FaithfulExists(ctx context.Context, id int64) (bool, error)
	MassExists(ctx context.Context, id int64) (bool, error)
	RequestorNames(ctx context.Context, faithfulIDs []int64) (map[int64]string, error)
	MassSummaries(ctx context.Context, massIDs []int64) (map[int64]MassSummary, error)
}
