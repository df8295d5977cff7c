package priests

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	List(ctx context.Context, filter ListFilter) ([]Priest, error)
	GetByID(ctx context.Context, id int64) (*Priest, error)
	GetByEmail(ctx context.Context, email string) (*Priest, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, priest *Priest) error
	Update(ctx context.Context, priest *Priest) error
	Delete(ctx context.Context, id int64) (bool, error)
}
