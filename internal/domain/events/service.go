package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"parish-app-go/internal/domain/priests"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 2000
)

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

func (s *Service) CreateMass(ctx context.Context, input MassInput) (*MassView, error) {
	input = normalizeMassInput(input)
	if err := validateMassInput(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	event := Event{
		Kind:      KindMass,
		EventType: TypeMass,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyMassInput(&event, input)

	var view *MassView
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := resolveCelebrants(ctx, tx, input.MainCelebrantID, input.ConcelebrantIDs); err != nil {
			return err
		}
		if err := tx.Create(ctx, &event); err != nil {
			return err
		}
		if err := tx.ReplaceConcelebrants(ctx, event.ID, event.Mass.ConcelebrantIDs); err != nil {
			return err
		}

		views, err := buildMassViews(ctx, tx, []Event{event})
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

// UpdateMass replaces every mass field. Validation and celebrant lookups
// happen before the first write so a rejected update changes nothing.
func (s *Service) UpdateMass(ctx context.Context, id int64, input MassInput) (*MassView, error) {
	input = normalizeMassInput(input)
	if err := validateMassInput(input); err != nil {
		return nil, err
	}

	var view *MassView
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		event, err := getMass(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := resolveCelebrants(ctx, tx, input.MainCelebrantID, input.ConcelebrantIDs); err != nil {
			return err
		}

		applyMassInput(event, input)
		event.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, event); err != nil {
			return err
		}
		if err := tx.ReplaceConcelebrants(ctx, event.ID, event.Mass.ConcelebrantIDs); err != nil {
			return err
		}

		views, err := buildMassViews(ctx, tx, []Event{*event})
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

func (s *Service) GetMass(ctx context.Context, id int64) (*MassView, error) {
	event, err := getMass(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	views, err := buildMassViews(ctx, s.repo, []Event{*event})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) ListMasses(ctx context.Context, filter MassFilter) ([]MassView, error) {
	listFilter := ListFilter{
		Kind:            KindMass,
		StartDate:       filter.StartDate,
		EndDate:         filter.EndDate,
		MassType:        filter.MassType,
		MainCelebrantID: filter.PriestID,
	}
	if filter.Date != nil {
		listFilter.StartDate = filter.Date
		listFilter.EndDate = filter.Date
	}
	if err := validateRange(listFilter.StartDate, listFilter.EndDate); err != nil {
		return nil, err
	}
	if filter.MassType != "" && !filter.MassType.Valid() {
		return nil, fmt.Errorf("%w: unknown mass type %q", ErrInvalidMass, filter.MassType)
	}
	if filter.PriestID != 0 {
		if err := ensurePriestExists(ctx, s.repo, filter.PriestID); err != nil {
			return nil, err
		}
	}

	items, err := s.repo.List(ctx, listFilter)
	if err != nil {
		return nil, err
	}
	return buildMassViews(ctx, s.repo, items)
}

func (s *Service) ListMassesByPriest(ctx context.Context, priestID int64) ([]MassView, error) {
	return s.ListMasses(ctx, MassFilter{PriestID: priestID})
}

func (s *Service) DeleteMass(ctx context.Context, id int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := getMass(ctx, tx, id); err != nil {
			return err
		}
		return deleteMassRows(ctx, tx, id)
	})
}

func (s *Service) CreateEvent(ctx context.Context, input EventInput) (*Event, error) {
	input = normalizeEventInput(input)
	if err := validateEventInput(input); err != nil {
		return nil, err
	}
	if input.EventType == TypeMass {
		return nil, fmt.Errorf("%w: masses are created through the masses endpoint", ErrInvalidEvent)
	}

	now := s.now().UTC()
	event := Event{Kind: KindEvent, CreatedAt: now, UpdatedAt: now}
	applyEventInput(&event, input)
	if err := s.repo.Create(ctx, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent changes the base fields only. For a mass the event type stays
// MASS and the celebrants are kept.
func (s *Service) UpdateEvent(ctx context.Context, id int64, input EventInput) (*Event, error) {
	input = normalizeEventInput(input)

	var updated Event
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		event, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if event.Kind == KindMass {
			input.EventType = TypeMass
		} else if input.EventType == TypeMass {
			return fmt.Errorf("%w: an event cannot be turned into a mass", ErrInvalidEvent)
		}
		if err := validateEventInput(input); err != nil {
			return err
		}

		applyEventInput(event, input)
		event.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, event); err != nil {
			return err
		}
		updated = *event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	if err := validateRange(filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}
	if filter.EventType != "" && !filter.EventType.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, filter.EventType)
	}
	if filter.Month != 0 {
		if filter.Month < 1 || filter.Month > 12 {
			return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidEvent)
		}
		if filter.Year == 0 {
			return nil, fmt.Errorf("%w: month requires a year", ErrInvalidEvent)
		}
	}

	items, err := s.repo.List(ctx, ListFilter{
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		EventType:  filter.EventType,
		PublicOnly: filter.PublicOnly,
		Year:       filter.Year,
		Month:      filter.Month,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []Event{}, nil
	}
	return items, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		event, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if event.Kind == KindMass {
			return deleteMassRows(ctx, tx, id)
		}
		deleted, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrEventNotFound
		}
		return nil
	})
}

func getMass(ctx context.Context, repo Repository, id int64) (*Event, error) {
	event, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrMassNotFound
		}
		return nil, err
	}
	if !event.IsMass() {
		return nil, ErrMassNotFound
	}
	return event, nil
}

func deleteMassRows(ctx context.Context, repo Repository, id int64) error {
	if err := repo.DeleteConcelebrants(ctx, id); err != nil {
		return err
	}
	if err := repo.UnlinkIntentions(ctx, id); err != nil {
		return err
	}
	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMassNotFound
	}
	return nil
}

func resolveCelebrants(ctx context.Context, repo Repository, mainID int64, concelebrantIDs []int64) error {
	ids := append([]int64{mainID}, concelebrantIDs...)
	found, err := repo.CelebrantSummaries(ctx, ids)
	if err != nil {
		return err
	}
	if _, ok := found[mainID]; !ok {
		return fmt.Errorf("%w: main celebrant %d", priests.ErrPriestNotFound, mainID)
	}
	for _, id := range concelebrantIDs {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: one or more concelebrants not found", priests.ErrPriestNotFound)
		}
	}
	return nil
}

func ensurePriestExists(ctx context.Context, repo Repository, priestID int64) error {
	found, err := repo.CelebrantSummaries(ctx, []int64{priestID})
	if err != nil {
		return err
	}
	if _, ok := found[priestID]; !ok {
		return fmt.Errorf("%w: %d", priests.ErrPriestNotFound, priestID)
	}
	return nil
}

func buildMassViews(ctx context.Context, repo Repository, items []Event) ([]MassView, error) {
	views := make([]MassView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	var priestIDs []int64
	massIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if !item.IsMass() {
			continue
		}
		massIDs = append(massIDs, item.ID)
		priestIDs = append(priestIDs, item.Mass.MainCelebrantID)
		priestIDs = append(priestIDs, item.Mass.ConcelebrantIDs...)
	}

	celebrants, err := repo.CelebrantSummaries(ctx, uniqueIDs(priestIDs))
	if err != nil {
		return nil, err
	}
	intentions, err := repo.IntentionSummaries(ctx, massIDs)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if !item.IsMass() {
			continue
		}
		view := MassView{
			Event:         item,
			MainCelebrant: celebrants[item.Mass.MainCelebrantID],
			Concelebrants: make([]CelebrantSummary, 0, len(item.Mass.ConcelebrantIDs)),
			Intentions:    intentions[item.ID],
		}
		for _, id := range item.Mass.ConcelebrantIDs {
			if summary, ok := celebrants[id]; ok {
				view.Concelebrants = append(view.Concelebrants, summary)
			}
		}
		if view.Intentions == nil {
			view.Intentions = []IntentionSummary{}
		}
		views = append(views, view)
	}
	return views, nil
}

func validateMassInput(input MassInput) error {
	var problems []string
	if input.MainCelebrantID <= 0 {
		problems = append(problems, "main celebrant is required")
	}
	if !input.MassType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown mass type %q", input.MassType))
	}
	if input.LiturgicalSeason != nil && !input.LiturgicalSeason.Valid() {
		problems = append(problems, fmt.Sprintf("unknown liturgical season %q", *input.LiturgicalSeason))
	}
	if input.EventDate.IsZero() {
		problems = append(problems, "mass date is required")
	}
	if input.Location == "" {
		problems = append(problems, "location is required")
	}
	if utf8.RuneCountInString(input.Title) > maxTitleLength {
		problems = append(problems, "title must be at most 100 characters")
	}

	seen := make(map[int64]struct{}, len(input.ConcelebrantIDs))
	mainListed := false
	duplicated := false
	for _, id := range input.ConcelebrantIDs {
		if id == input.MainCelebrantID {
			mainListed = true
		}
		if _, ok := seen[id]; ok {
			duplicated = true
		}
		seen[id] = struct{}{}
	}
	if mainListed {
		problems = append(problems, "main celebrant cannot also be a concelebrant")
	}
	if duplicated {
		problems = append(problems, "duplicate concelebrants are not allowed")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMass, strings.Join(problems, "; "))
	}
	return nil
}

func validateEventInput(input EventInput) error {
	var problems []string
	if input.Title == "" {
		problems = append(problems, "title is required")
	} else if utf8.RuneCountInString(input.Title) > maxTitleLength {
		problems = append(problems, "title must be at most 100 characters")
	}
	if utf8.RuneCountInString(input.Description) > maxDescriptionLength {
		problems = append(problems, "description must be at most 2000 characters")
	}
	if input.Location == "" {
		problems = append(problems, "location is required")
	}
	if input.EventDate.IsZero() {
		problems = append(problems, "event date is required")
	}
	if !input.EventType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown event type %q", input.EventType))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(problems, "; "))
	}
	return nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidRange
	}
	return nil
}

func normalizeMassInput(input MassInput) MassInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.MassType = MassType(strings.ToUpper(strings.TrimSpace(string(input.MassType))))
	if input.LiturgicalSeason != nil {
		season := LiturgicalSeason(strings.ToUpper(strings.TrimSpace(string(*input.LiturgicalSeason))))
		if season == "" {
			input.LiturgicalSeason = nil
		} else {
			input.LiturgicalSeason = &season
		}
	}
	if input.Title == "" && input.MassType != "" {
		input.Title = string(input.MassType) + " Mass"
	}
	if !input.EventDate.IsZero() {
		input.EventDate = truncateDay(input.EventDate)
	}
	return input
}

func normalizeEventInput(input EventInput) EventInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.EventType = EventType(strings.ToUpper(strings.TrimSpace(string(input.EventType))))
	if !input.EventDate.IsZero() {
		input.EventDate = truncateDay(input.EventDate)
	}
	return input
}

func applyMassInput(event *Event, input MassInput) {
	event.Title = input.Title
	event.Description = input.Description
	event.EventDate = input.EventDate
	event.Location = input.Location
	event.IsPublic = input.IsPublic
	event.ImageURL = input.ImageURL
	event.Mass = &Mass{
		MassType:         input.MassType,
		LiturgicalSeason: input.LiturgicalSeason,
		Readings:         input.Readings,
		MainCelebrantID:  input.MainCelebrantID,
		ConcelebrantIDs:  sortedIDs(input.ConcelebrantIDs),
	}
}

func applyEventInput(event *Event, input EventInput) {
	event.Title = input.Title
	event.Description = input.Description
	event.EventDate = input.EventDate
	event.Location = input.Location
	event.EventType = input.EventType
	event.IsPublic = input.IsPublic
	event.ImageURL = input.ImageURL
}

func sortedIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func truncateDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
