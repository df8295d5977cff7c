package donations

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	donationsdomain "parish-app-go/internal/domain/donations"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(donationsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) List(ctx context.Context, filter donationsdomain.ListFilter) ([]donationsdomain.Donation, error) {
	query := r.scoped(ctx, donationsdomain.SumFilter{
		FaithfulID: filter.FaithfulID,
		Year:       filter.Year,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	})
	if filter.ContributionType != "" {
		query = query.Where("contribution_type = ?", filter.ContributionType)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.ReferenceContains != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.ReferenceContains)) + "%"
		query = query.Where("lower(reference_number) LIKE ?", pattern)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}

	var items []donationsdomain.Donation
	if err := query.Order("date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*donationsdomain.Donation, error) {
	var donation donationsdomain.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, donationsdomain.ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *PostgresRepository) Create(ctx context.Context, donation *donationsdomain.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *PostgresRepository) Update(ctx context.Context, donation *donationsdomain.Donation) error {
	return r.db.WithContext(ctx).
		Model(&donationsdomain.Donation{}).
		Where("id = ?", donation.ID).
		Select("*").
		Omit("id", "faithful_id", "created_at").
		Updates(donation).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&donationsdomain.Donation{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) DeleteByFaithful(ctx context.Context, faithfulID int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&donationsdomain.Donation{}, "faithful_id = ?", faithfulID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *PostgresRepository) FaithfulNames(ctx context.Context, faithfulIDs []int64) (map[int64]string, error) {
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

func (r *PostgresRepository) Sum(ctx context.Context, filter donationsdomain.SumFilter) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.scoped(ctx, filter).Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *PostgresRepository) Summary(ctx context.Context, filter donationsdomain.SumFilter) (donationsdomain.SummaryRow, error) {
	var row donationsdomain.SummaryRow
	err := r.scoped(ctx, filter).
		Select(`
			COALESCE(SUM(amount), 0) AS total,
			COUNT(*) AS count,
			COALESCE(MAX(amount), 0) AS max,
			COALESCE(MIN(amount), 0) AS min
		`).
		Scan(&row).Error
	return row, err
}

func (r *PostgresRepository) CountByFaithful(ctx context.Context, faithfulID int64) (int64, error) {
	var count int64
	if err := r.scoped(ctx, donationsdomain.SumFilter{FaithfulID: faithfulID}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) DistinctYears(ctx context.Context) ([]int, error) {
	var years []int
	if err := r.db.WithContext(ctx).
		Model(&donationsdomain.Donation{}).
		Distinct("year").
		Order("year desc").
		Pluck("year", &years).Error; err != nil {
		return nil, err
	}
	return years, nil
}

func (r *PostgresRepository) TotalsByContributionType(ctx context.Context, year int) ([]donationsdomain.TypeTotal, error) {
	query := `
		SELECT contribution_type, SUM(amount) AS total
		FROM donations
		WHERE year = ?
		GROUP BY contribution_type
		ORDER BY total DESC
	`

	var rows []donationsdomain.TypeTotal
	if err := r.db.WithContext(ctx).Raw(query, year).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) MonthlyTotals(ctx context.Context, year int) ([]donationsdomain.MonthTotal, error) {
	query := `
		SELECT EXTRACT(MONTH FROM date)::int AS month, SUM(amount) AS total
		FROM donations
		WHERE year = ?
		GROUP BY month
		ORDER BY month
	`

	var rows []donationsdomain.MonthTotal
	if err := r.db.WithContext(ctx).Raw(query, year).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) TopDonors(ctx context.Context, year, limit int) ([]donationsdomain.DonorTotal, error) {
	query := `
		SELECT
			f.id AS faithful_id,
			TRIM(f.firstname || ' ' || f.name) AS faithful_name,
			SUM(d.amount) AS total_amount
		FROM donations d
		JOIN faithfuls f ON f.id = d.faithful_id
		WHERE d.year = ?
		GROUP BY f.id, f.firstname, f.name
		ORDER BY total_amount DESC, f.id ASC
		LIMIT ?
	`

	var rows []donationsdomain.DonorTotal
	if err := r.db.WithContext(ctx).Raw(query, year, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) TerritoryRows(ctx context.Context, year *int) ([]donationsdomain.TerritoryRow, error) {
	query := r.db.WithContext(ctx).
		Table("donations d").
		Select("f.subparish AS subparish, f.basic_ecclesial_community AS bec, d.amount AS amount").
		Joins("JOIN faithfuls f ON f.id = d.faithful_id")
	if year != nil {
		query = query.Where("d.year = ?", *year)
	}

	var rows []donationsdomain.TerritoryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) scoped(ctx context.Context, filter donationsdomain.SumFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&donationsdomain.Donation{})
	if filter.FaithfulID != 0 {
		query = query.Where("faithful_id = ?", filter.FaithfulID)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	return query
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
