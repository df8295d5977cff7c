package statistics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTopPriests = 10
	topPeriodPriests  = 5
	minYear           = 1900
	maxYear           = 2100
	notApplicable     = "N/A"
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewService(repo Repository, now func() time.Time) *Service {
	return NewServiceWithCache(repo, nil, 0, now)
}

// NewServiceWithCache caches dashboards for ttl. A nil cache or a
// non-positive ttl disables caching.
func NewServiceWithCache(repo Repository, cache Cache, ttl time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		cache = nil
	}
	return &Service{repo: repo, cache: cache, cacheTTL: ttl, now: now}
}

// InvalidateDashboards drops every cached dashboard. Called after writes to
// masses, events, intentions or priests.
func (s *Service) InvalidateDashboards() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

func (s *Service) MassStatistics(ctx context.Context, period Period) (MassStatistics, error) {
	if err := validatePeriod(period); err != nil {
		return MassStatistics{}, err
	}

	var (
		result     MassStatistics
		byType     []CountByKey
		celebrants []CelebrantCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalMasses, err = s.repo.CountMasses(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		byType, err = s.repo.MassCountsByType(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		celebrants, err = s.repo.CelebrantCounts(gctx, &period)
		return err
	})
	if err := g.Wait(); err != nil {
		return MassStatistics{}, err
	}

	result.MassesByType = toCountMap(byType)
	result.TopCelebratingPriests = limitCelebrants(celebrants, topPeriodPriests)
	return result, nil
}

func (s *Service) MassCountByPriest(ctx context.Context, priestID int64, period Period) (int64, error) {
	if err := validatePeriod(period); err != nil {
		return 0, err
	}
	return s.repo.CountMassesByPriest(ctx, priestID, period)
}

func (s *Service) YearlyMassCounts(ctx context.Context) ([]YearCount, error) {
	rows, err := s.repo.MassCountsByYear(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(rows), nil
}

func (s *Service) MassTypeDistribution(ctx context.Context, period Period) (map[string]int64, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	rows, err := s.repo.MassCountsByType(ctx, period)
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func (s *Service) TopCelebratingPriests(ctx context.Context, limit int) ([]RankedPriest, error) {
	if limit <= 0 {
		limit = defaultTopPriests
	}
	rows, err := s.repo.CelebrantCounts(ctx, nil)
	if err != nil {
		return nil, err
	}

	rows = limitCelebrants(rows, limit)
	ranked := make([]RankedPriest, 0, len(rows))
	for i, row := range rows {
		ranked = append(ranked, RankedPriest{Rank: i + 1, CelebrantCount: row})
	}
	return ranked, nil
}

func (s *Service) AllCelebratingPriests(ctx context.Context) ([]CelebrantCount, error) {
	rows, err := s.repo.CelebrantCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return nonNilCelebrants(rows), nil
}

func (s *Service) IntentionStatistics(ctx context.Context, period Period) (IntentionStatistics, error) {
	if err := validatePeriod(period); err != nil {
		return IntentionStatistics{}, err
	}

	var (
		result IntentionStatistics
		byType []CountByKey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalIntentions, err = s.repo.CountIntentions(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		byType, err = s.repo.IntentionCountsByType(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.DeceasedIntentions, err = s.repo.CountDeceasedIntentions(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.UnpaidIntentionsCount, err = s.repo.CountUnpaidIntentions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return IntentionStatistics{}, err
	}

	result.IntentionsByType = toCountMap(byType)
	result.PaymentRate = notApplicable
	if result.TotalIntentions > 0 {
		// The unpaid count spans every period, so the rate can go negative.
		paid := result.TotalIntentions - result.UnpaidIntentionsCount
		result.PaymentRate = formatPercent(float64(paid) / float64(result.TotalIntentions) * 100)
	}
	return result, nil
}

func (s *Service) IntentionCountsByType(ctx context.Context, period Period) (map[string]int64, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	rows, err := s.repo.IntentionCountsByType(ctx, period)
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func (s *Service) UnpaidIntentions(ctx context.Context) ([]UnpaidIntention, error) {
	rows, err := s.repo.UnpaidIntentions(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return []UnpaidIntention{}, nil
	}
	return rows, nil
}

func (s *Service) PriestStatistics(ctx context.Context) (PriestStatistics, error) {
	month := s.currentMonth()

	var (
		result     PriestStatistics
		byType     []CountByKey
		celebrants []CelebrantCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalPriests, err = s.repo.CountPriests(gctx)
		return err
	})
	g.Go(func() (err error) {
		byType, err = s.repo.PriestCountsByType(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.ActivePriests, err = s.repo.CountAssignedPriests(gctx)
		return err
	})
	g.Go(func() (err error) {
		celebrants, err = s.repo.CelebrantCounts(gctx, &month)
		return err
	})
	if err := g.Wait(); err != nil {
		return PriestStatistics{}, err
	}

	result.PriestsByType = toCountMap(byType)
	result.InactivePriests = result.TotalPriests - result.ActivePriests
	result.PriestsCelebratingThisMonth = int64(len(celebrants))
	return result, nil
}

// CelebratingPriests lists the main celebrants of the period with their mass
// counts. PriestWorkload reads the same ranking.
func (s *Service) CelebratingPriests(ctx context.Context, period Period) ([]CelebrantCount, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	rows, err := s.repo.CelebrantCounts(ctx, &period)
	if err != nil {
		return nil, err
	}
	return nonNilCelebrants(rows), nil
}

func (s *Service) PriestWorkload(ctx context.Context, period Period) ([]CelebrantCount, error) {
	return s.CelebratingPriests(ctx, period)
}

func (s *Service) PriestTypeBreakdown(ctx context.Context) (PriestTypeBreakdown, error) {
	var (
		total  int64
		byType []CountByKey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.CountPriests(gctx)
		return err
	})
	g.Go(func() (err error) {
		byType, err = s.repo.PriestCountsByType(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return PriestTypeBreakdown{}, err
	}

	result := PriestTypeBreakdown{TotalPriests: total, TypeBreakdown: make([]TypeShare, 0, len(byType))}
	for _, row := range byType {
		share := TypeShare{PriestType: row.Key, Count: row.Count}
		if total > 0 {
			share.Percentage = formatPercent(float64(row.Count) / float64(total) * 100)
		}
		result.TypeBreakdown = append(result.TypeBreakdown, share)
	}
	return result, nil
}

func (s *Service) OrdinationYearCounts(ctx context.Context) ([]YearCount, error) {
	rows, err := s.repo.OrdinationYearCounts(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(rows), nil
}

func (s *Service) Dashboard(ctx context.Context, period Period) (Dashboard, error) {
	if err := validatePeriod(period); err != nil {
		return Dashboard{}, err
	}

	now := s.now()
	today := truncateDay(now)
	cacheKey := "dashboard:" + period.key() + ":" + today.Format("2006-01-02")
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey, now); ok {
			return cached, nil
		}
	}

	result := Dashboard{Period: period}
	var massTypes []CountByKey
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.TotalMasses, err = s.repo.CountMasses(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.TotalIntentions, err = s.repo.CountIntentions(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.TotalEvents, err = s.repo.CountEvents(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.TotalPriests, err = s.repo.CountPriests(gctx)
		return err
	})
	g.Go(func() (err error) {
		result.NewPriests, err = s.repo.CountPriestsCreated(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.DeceasedIntentions, err = s.repo.CountDeceasedIntentions(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.UnpaidIntentions, err = s.repo.CountUnpaidIntentions(gctx)
		return err
	})
	g.Go(func() (err error) {
		massTypes, err = s.repo.MassCountsByType(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.MassesToday, err = s.repo.CountMasses(gctx, Period{Start: today, End: today})
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	result.MassTypeBreakdown = toCountMap(massTypes)
	if s.cache != nil {
		s.cache.Set(cacheKey, result, now.Add(s.cacheTTL))
	}
	return result, nil
}

func (s *Service) CurrentMonthDashboard(ctx context.Context) (Dashboard, error) {
	return s.Dashboard(ctx, s.currentMonth())
}

// CurrentWeekDashboard covers Monday through Sunday of the current week.
func (s *Service) CurrentWeekDashboard(ctx context.Context) (Dashboard, error) {
	today := truncateDay(s.now())
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	return s.Dashboard(ctx, Period{Start: start, End: start.AddDate(0, 0, 6)})
}

func (s *Service) YearStatistics(ctx context.Context, year int) (YearStatistics, error) {
	if year < minYear || year > maxYear {
		return YearStatistics{}, fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, minYear, maxYear)
	}
	period := Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	result := YearStatistics{Year: year}
	var monthly []MonthCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		monthly, err = s.repo.MassCountsByMonth(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		result.MonthlyOfferings, err = s.repo.MonthlyOfferings(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		result.TotalMassesForYear, err = s.repo.CountMasses(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		result.TotalIntentionsForYear, err = s.repo.CountIntentions(gctx, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return YearStatistics{}, err
	}

	counts := make(map[int]int64, len(monthly))
	for _, row := range monthly {
		counts[row.Month] = row.Count
	}
	result.MonthlyMasses = make([]MonthlyMasses, 0, 12)
	for month := time.January; month <= time.December; month++ {
		result.MonthlyMasses = append(result.MonthlyMasses, MonthlyMasses{
			Month:     int(month),
			MonthName: strings.ToUpper(month.String()),
			MassCount: counts[int(month)],
		})
	}
	if result.MonthlyOfferings == nil {
		result.MonthlyOfferings = []MonthAmount{}
	}
	return result, nil
}

// Compare reports period2 relative to period1.
func (s *Service) Compare(ctx context.Context, period1, period2 Period) (Comparison, error) {
	if err := validatePeriod(period1); err != nil {
		return Comparison{}, err
	}
	if err := validatePeriod(period2); err != nil {
		return Comparison{}, err
	}

	first := PeriodTotals{StartDate: period1.Start, EndDate: period1.End}
	second := PeriodTotals{StartDate: period2.Start, EndDate: period2.End}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		first.Masses, err = s.repo.CountMasses(gctx, period1)
		return err
	})
	g.Go(func() (err error) {
		first.Intentions, err = s.repo.CountIntentions(gctx, period1)
		return err
	})
	g.Go(func() (err error) {
		second.Masses, err = s.repo.CountMasses(gctx, period2)
		return err
	})
	g.Go(func() (err error) {
		second.Intentions, err = s.repo.CountIntentions(gctx, period2)
		return err
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	changes := Changes{
		MassChange:             second.Masses - first.Masses,
		IntentionChange:        second.Intentions - first.Intentions,
		MassPercentChange:      percentChange(first.Masses, second.Masses),
		IntentionPercentChange: percentChange(first.Intentions, second.Intentions),
	}
	return Comparison{Period1: first, Period2: second, Changes: changes}, nil
}

func (s *Service) currentMonth() Period {
	today := truncateDay(s.now())
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

func validatePeriod(period Period) error {
	if period.Start.IsZero() || period.End.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if period.End.Before(period.Start) {
		return ErrInvalidRange
	}
	return nil
}

func percentChange(before, after int64) string {
	if before == 0 {
		return notApplicable
	}
	return formatPercent(float64(after-before) / float64(before) * 100)
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

func toCountMap(rows []CountByKey) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] += row.Count
	}
	return counts
}

func limitCelebrants(rows []CelebrantCount, limit int) []CelebrantCount {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return nonNilCelebrants(rows)
}

func nonNilCelebrants(rows []CelebrantCount) []CelebrantCount {
	if rows == nil {
		return []CelebrantCount{}
	}
	cloned := make([]CelebrantCount, len(rows))
	copy(cloned, rows)
	return cloned
}

func truncateDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newestFirst(rows []YearCount) []YearCount {
	if rows == nil {
		return []YearCount{}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Year > rows[j].Year })
	return rows
}
