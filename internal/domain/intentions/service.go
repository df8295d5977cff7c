package intentions

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"parish-app-go/internal/domain/events"
	"parish-app-go/internal/domain/faithful"
)

const maxTextLength = 1000

// numeric(10,2) holds at most eight integer digits.
var maxOffering = decimal.New(1, 8)

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

// Create records an intention. A missing requested date defaults to today and
// a missing paid flag defaults to true.
func (s *Service) Create(ctx context.Context, input Input) (*View, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	intention := Intention{
		RequestedDate: truncateDay(now),
		IsPaid:        true,
		CreatedAt:     now,
	}
	applyInput(&intention, input)

	var view *View
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := ensureReferences(ctx, tx, input); err != nil {
			return err
		}
		if err := tx.Create(ctx, &intention); err != nil {
			return err
		}
		views, err := buildViews(ctx, tx, []Intention{intention})
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

// Update replaces every writable field. An omitted requested date or paid
// flag falls back to the same defaults as Create.
func (s *Service) Update(ctx context.Context, id int64, input Input) (*View, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var view *View
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		intention, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureReferences(ctx, tx, input); err != nil {
			return err
		}

		intention.RequestedDate = truncateDay(s.now().UTC())
		intention.IsPaid = true
		applyInput(intention, input)
		if err := tx.Update(ctx, intention); err != nil {
			return err
		}
		views, err := buildViews(ctx, tx, []Intention{*intention})
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
	intention, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := buildViews(ctx, s.repo, []Intention{*intention})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]View, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidRange
	}
	if filter.IntentionType != "" && !filter.IntentionType.Valid() {
		return nil, fmt.Errorf("%w: unknown intention type %q", ErrInvalidInput, filter.IntentionType)
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildViews(ctx, s.repo, items)
}

func (s *Service) MarkPaid(ctx context.Context, id int64, paid bool) (*View, error) {
	updated, err := s.repo.SetPaid(ctx, id, paid)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrIntentionNotFound
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrIntentionNotFound
	}
	return nil
}

func ensureReferences(ctx context.Context, repo Repository, input Input) error {
	if input.FaithfulID != nil {
		exists, err := repo.FaithfulExists(ctx, *input.FaithfulID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %d", faithful.ErrFaithfulNotFound, *input.FaithfulID)
		}
	}
	if input.MassID != nil {
		exists, err := repo.MassExists(ctx, *input.MassID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %d", events.ErrMassNotFound, *input.MassID)
		}
	}
	return nil
}

func buildViews(ctx context.Context, repo Repository, items []Intention) ([]View, error) {
	views := make([]View, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	var faithfulIDs, massIDs []int64
	for _, item := range items {
		if item.FaithfulID != nil {
			faithfulIDs = append(faithfulIDs, *item.FaithfulID)
		}
		if item.MassID != nil {
			massIDs = append(massIDs, *item.MassID)
		}
	}

	names, err := repo.RequestorNames(ctx, faithfulIDs)
	if err != nil {
		return nil, err
	}
	masses, err := repo.MassSummaries(ctx, massIDs)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		view := View{Intention: item}
		switch {
		case item.FaithfulID != nil:
			view.RequestorName = names[*item.FaithfulID]
		case item.ExternalFaithfulName != nil:
			view.RequestorName = *item.ExternalFaithfulName
		}
		if item.MassID != nil {
			if summary, ok := masses[*item.MassID]; ok {
				view.Mass = &summary
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func validateInput(input Input) error {
	if (input.FaithfulID == nil) == (input.ExternalFaithfulName == nil) {
		return ErrInvalidRequestor
	}

	var problems []string
	if !input.IntentionType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown intention type %q", input.IntentionType))
	}
	if input.IntentionText == "" {
		problems = append(problems, "intention text is required")
	} else if utf8.RuneCountInString(input.IntentionText) > maxTextLength {
		problems = append(problems, "intention text must be at most 1000 characters")
	}
	if input.OfferingAmount != nil {
		if input.OfferingAmount.IsNegative() {
			problems = append(problems, "offering amount cannot be negative")
		} else if input.OfferingAmount.GreaterThanOrEqual(maxOffering) {
			problems = append(problems, "offering amount is too large")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func normalizeInput(input Input) Input {
	input.IntentionType = IntentionType(strings.ToUpper(strings.TrimSpace(string(input.IntentionType))))
	input.IntentionText = strings.TrimSpace(input.IntentionText)
	if input.ExternalFaithfulName != nil {
		name := strings.TrimSpace(*input.ExternalFaithfulName)
		if name == "" {
			input.ExternalFaithfulName = nil
		} else {
			input.ExternalFaithfulName = &name
		}
	}
	if input.OfferingAmount != nil {
		rounded := input.OfferingAmount.Round(2)
		input.OfferingAmount = &rounded
	}
	if input.RequestedDate != nil {
		day := truncateDay(*input.RequestedDate)
		input.RequestedDate = &day
	}
	return input
}

func applyInput(intention *Intention, input Input) {
	intention.IntentionType = input.IntentionType
	intention.IntentionText = input.IntentionText
	if input.RequestedDate != nil {
		intention.RequestedDate = *input.RequestedDate
	}
	if input.IsPaid != nil {
		intention.IsPaid = *input.IsPaid
	}
	intention.OfferingAmount = input.OfferingAmount
	intention.MassID = input.MassID
	intention.FaithfulID = input.FaithfulID
	intention.ExternalFaithfulName = input.ExternalFaithfulName
}

func truncateDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
