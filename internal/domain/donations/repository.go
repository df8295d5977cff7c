package donations

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	List(ctx context.Context, filter ListFilter) ([]Donation, error)
	GetByID(ctx context.Context, id int64) (*Donation, error)
	Create(ctx context.Context, donation *Donation) error
	Update(ctx context.Context, donation *Donation) error
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByFaithful(ctx context.Context, faithfulID int64) (int64, error)

	FaithfulNames(ctx context.Context, faithfulIDs []int64) (map[int64]string, error)

	Sum(ctx context.Context, filter SumFilter) (decimal.Decimal, error)
	Summary(ctx context.Context, filter SumFilter) (SummaryRow, error)
	CountByFaithful(ctx context.Context, faithfulID int64) (int64, error)
	DistinctYears(ctx context.Context) ([]int, error)
	TotalsByContributionType(ctx context.Context, year int) ([]TypeTotal, error)
	MonthlyTotals(ctx context.Context, year int) ([]MonthTotal, error)
	TopDonors(ctx context.Context, year, limit int) ([]DonorTotal, error)
	TerritoryRows(ctx context.Context, year *int) ([]TerritoryRow, error)
}
