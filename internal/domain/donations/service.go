package donations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"parish-app-go/internal/domain/faithful"
)

const (
	minYear         = 1900
	maxYear         = 2100
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Amounts carry at most ten integer digits.
var maxAmount = decimal.New(1, 10)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*View, error) {
	input = normalizeCreateInput(input)
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	donation := Donation{
		FaithfulID:       input.FaithfulID,
		Year:             input.Year,
		Amount:           input.Amount,
		Date:             input.Date,
		ContributionType: input.ContributionType,
		PaymentMethod:    input.PaymentMethod,
		ReferenceNumber:  input.ReferenceNumber,
		Notes:            input.Notes,
		RecordedBy:       input.RecordedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var view *View
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		names, err := tx.FaithfulNames(ctx, []int64{input.FaithfulID})
		if err != nil {
			return err
		}
		name, ok := names[input.FaithfulID]
		if !ok {
			return fmt.Errorf("%w: Umukristu ntabwo abonetse (ID: %d)", faithful.ErrFaithfulNotFound, input.FaithfulID)
		}
		if err := tx.Create(ctx, &donation); err != nil {
			return err
		}
		view = &View{Donation: donation, FaithfulName: name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Update applies only the fields present in input.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*View, error) {
	input = normalizeUpdateInput(input)
	if err := s.validateUpdate(input); err != nil {
		return nil, err
	}

	var view *View
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		donation, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}

		applyUpdate(donation, input)
		donation.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, donation); err != nil {
			return err
		}

		views, err := buildViews(ctx, tx, []Donation{*donation})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	donation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := buildViews(ctx, s.repo, []Donation{*donation})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]View, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidRange
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildViews(ctx, s.repo, items)
}

// Search applies the first criterion present in query: faithful, year, date
// range, contribution type, payment method, reference, minimum amount. An
// empty query lists everything.
func (s *Service) Search(ctx context.Context, query Query) ([]View, error) {
	var filter ListFilter
	switch {
	case query.FaithfulID != 0:
		filter.FaithfulID = query.FaithfulID
	case query.Year != 0:
		filter.Year = query.Year
	case query.StartDate != nil && query.EndDate != nil:
		filter.StartDate = query.StartDate
		filter.EndDate = query.EndDate
	case query.ContributionType != "":
		filter.ContributionType = strings.TrimSpace(query.ContributionType)
	case query.PaymentMethod != "":
		filter.PaymentMethod = strings.TrimSpace(query.PaymentMethod)
	case query.Reference != "":
		filter.ReferenceContains = strings.TrimSpace(query.Reference)
	case query.MinAmount != nil:
		filter.MinAmount = query.MinAmount
	}
	return s.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w (ID: %d)", ErrDonationNotFound, id)
	}
	return nil
}

func (s *Service) DeleteByFaithful(ctx context.Context, faithfulID int64) (int64, error) {
	return s.repo.DeleteByFaithful(ctx, faithfulID)
}

func (s *Service) TotalByFaithful(ctx context.Context, faithfulID int64) (decimal.Decimal, error) {
	return s.repo.Sum(ctx, SumFilter{FaithfulID: faithfulID})
}

func (s *Service) CountByFaithful(ctx context.Context, faithfulID int64) (int64, error) {
	return s.repo.CountByFaithful(ctx, faithfulID)
}

func (s *Service) TotalByYear(ctx context.Context, year int) (decimal.Decimal, error) {
	return s.repo.Sum(ctx, SumFilter{Year: year})
}

func (s *Service) Total(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.Sum(ctx, SumFilter{})
}

func (s *Service) TotalByDateRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, ErrInvalidRange
	}
	return s.repo.Sum(ctx, SumFilter{StartDate: &start, EndDate: &end})
}

// Summary reports totals for the range. The average is rounded half-up to
// two places; an empty range yields zeros with the label kept.
func (s *Service) Summary(ctx context.Context, start, end time.Time, period string) (*Summary, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	row, err := s.repo.Summary(ctx, SumFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalAmount:   decimal.Zero,
		AverageAmount: decimal.Zero,
		MaxAmount:     decimal.Zero,
		MinAmount:     decimal.Zero,
		Period:        period,
	}
	if row.Count == 0 {
		return summary, nil
	}

	summary.TotalAmount = row.Total
	summary.DonationCount = row.Count
	summary.AverageAmount = row.Total.DivRound(decimal.NewFromInt(row.Count), 2)
	summary.MaxAmount = row.Max
	summary.MinAmount = row.Min
	return summary, nil
}

func (s *Service) AvailableYears(ctx context.Context) ([]int, error) {
	years, err := s.repo.DistinctYears(ctx)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if years == nil {
		return []int{}, nil
	}
	return years, nil
}

func (s *Service) TotalsByContributionType(ctx context.Context, year int) (map[string]decimal.Decimal, error) {
	rows, err := s.repo.TotalsByContributionType(ctx, year)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		key := strings.TrimSpace(row.ContributionType)
		if key == "" {
			key = UnspecifiedType
		}
		totals[key] = totals[key].Add(row.Total)
	}
	return totals, nil
}

func (s *Service) MonthlyTotals(ctx context.Context, year int) (map[int]decimal.Decimal, error) {
	rows, err := s.repo.MonthlyTotals(ctx, year)
	if err != nil {
		return nil, err
	}

	totals := make(map[int]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Month] = row.Total
	}
	return totals, nil
}

func (s *Service) TopDonors(ctx context.Context, year, limit int) ([]DonorTotal, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	donors, err := s.repo.TopDonors(ctx, year, limit)
	if err != nil {
		return nil, err
	}
	if donors == nil {
		return []DonorTotal{}, nil
	}
	return donors, nil
}

// TotalsBySubparish groups in memory over every donation row, optionally
// limited to a year. Donors without a subparish are left out.
func (s *Service) TotalsBySubparish(ctx context.Context, year *int) (map[string]decimal.Decimal, error) {
	rows, err := s.repo.TerritoryRows(ctx, year)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if row.Subparish == "" {
			continue
		}
		totals[row.Subparish] = totals[row.Subparish].Add(row.Amount)
	}
	return totals, nil
}

func (s *Service) TotalsByBEC(ctx context.Context, subparish string, year *int) (map[string]decimal.Decimal, error) {
	subparish = strings.TrimSpace(subparish)
	if subparish == "" {
		return nil, fmt.Errorf("%w: subParish is required", ErrInvalidInput)
	}

	rows, err := s.repo.TerritoryRows(ctx, year)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if row.Subparish != subparish || row.BEC == "" {
			continue
		}
		totals[row.BEC] = totals[row.BEC].Add(row.Amount)
	}
	return totals, nil
}

func buildViews(ctx context.Context, repo Repository, items []Donation) ([]View, error) {
	views := make([]View, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.FaithfulID)
	}
	names, err := repo.FaithfulNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		views = append(views, View{Donation: item, FaithfulName: names[item.FaithfulID]})
	}
	return views, nil
}

func (s *Service) validateCreate(input CreateInput) error {
	var problems []string
	if input.FaithfulID <= 0 {
		problems = append(problems, "faithfulId must be a positive number")
	}
	problems = append(problems, checkYear(input.Year)...)
	problems = append(problems, checkAmount(input.Amount)...)
	if input.Date.IsZero() {
		problems = append(problems, "date is required")
	} else {
		problems = append(problems, s.checkDate(input.Date)...)
	}
	problems = append(problems, checkLengths(
		&input.ContributionType, &input.PaymentMethod, &input.ReferenceNumber, &input.Notes, &input.RecordedBy,
	)...)
	return joinProblems(problems)
}

func (s *Service) validateUpdate(input UpdateInput) error {
	var problems []string
	if input.Year != nil {
		problems = append(problems, checkYear(*input.Year)...)
	}
	if input.Amount != nil {
		problems = append(problems, checkAmount(*input.Amount)...)
	}
	if input.Date != nil {
		problems = append(problems, s.checkDate(*input.Date)...)
	}
	problems = append(problems, checkLengths(
		input.ContributionType, input.PaymentMethod, input.ReferenceNumber, input.Notes, input.RecordedBy,
	)...)
	return joinProblems(problems)
}

func (s *Service) checkDate(date time.Time) []string {
	if date.After(truncateDay(s.now())) {
		return []string{"date cannot be in the future"}
	}
	return nil
}

func checkYear(year int) []string {
	if year < minYear {
		return []string{"year must be 1900 or later"}
	}
	if year > maxYear {
		return []string{"year must be 2100 or earlier"}
	}
	return nil
}

func checkAmount(amount decimal.Decimal) []string {
	if !amount.IsPositive() {
		return []string{"amount must be greater than zero"}
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) || !amount.Equal(amount.Round(2)) {
		return []string{"amount must have at most 10 digits and 2 decimal places"}
	}
	return nil
}

func checkLengths(contributionType, paymentMethod, referenceNumber, notes, recordedBy *string) []string {
	limits := []struct {
		value *string
		max   int
		msg   string
	}{
		{contributionType, 50, "contribution type must not exceed 50 characters"},
		{paymentMethod, 50, "payment method must not exceed 50 characters"},
		{referenceNumber, 100, "reference number must not exceed 100 characters"},
		{notes, 500, "notes must not exceed 500 characters"},
		{recordedBy, 100, "recorder name must not exceed 100 characters"},
	}

	var problems []string
	for _, limit := range limits {
		if limit.value != nil && utf8.RuneCountInString(*limit.value) > limit.max {
			problems = append(problems, limit.msg)
		}
	}
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
}

func normalizeCreateInput(input CreateInput) CreateInput {
	input.ContributionType = strings.TrimSpace(input.ContributionType)
	input.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	input.ReferenceNumber = strings.TrimSpace(input.ReferenceNumber)
	input.Notes = strings.TrimSpace(input.Notes)
	input.RecordedBy = strings.TrimSpace(input.RecordedBy)
	if !input.Date.IsZero() {
		input.Date = truncateDay(input.Date)
	}
	return input
}

func normalizeUpdateInput(input UpdateInput) UpdateInput {
	for _, field := range []**string{
		&input.ContributionType, &input.PaymentMethod, &input.ReferenceNumber, &input.Notes, &input.RecordedBy,
	} {
		if *field != nil {
			trimmed := strings.TrimSpace(**field)
			*field = &trimmed
		}
	}
	if input.Date != nil {
		day := truncateDay(*input.Date)
		input.Date = &day
	}
	return input
}

func applyUpdate(donation *Donation, input UpdateInput) {
	if input.Year != nil {
		donation.Year = *input.Year
	}
	if input.Amount != nil {
		donation.Amount = *input.Amount
	}
	if input.Date != nil {
		donation.Date = *input.Date
	}
	if input.ContributionType != nil {
		donation.ContributionType = *input.ContributionType
	}
	if input.PaymentMethod != nil {
		donation.PaymentMethod = *input.PaymentMethod
	}
	if input.ReferenceNumber != nil {
		donation.ReferenceNumber = *input.ReferenceNumber
	}
	if input.Notes != nil {
		donation.Notes = *input.Notes
	}
	if input.RecordedBy != nil {
		donation.RecordedBy = *input.RecordedBy
	}
}

func truncateDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
