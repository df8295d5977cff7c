package events

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"parish-app-go/internal/domain/priests"
)

type fakeEventsRepo struct {
	nextID     int64
	items      map[int64]Event
	priests    map[int64]CelebrantSummary
	intentions map[int64][]IntentionSummary
	writes     int
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{
		nextID: 1,
		items:  make(map[int64]Event),
		priests: map[int64]CelebrantSummary{
			1: {ID: 1, Names: "Fr. Jean Bosco", PriestType: "DIOCESAN"},
			2: {ID: 2, Names: "Fr. Innocent", PriestType: "RELIGIOUS"},
			3: {ID: 3, Names: "Fr. Celestin", PriestType: "DIOCESAN"},
		},
		intentions: make(map[int64][]IntentionSummary),
	}
}

func (r *fakeEventsRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeEventsRepo) List(ctx context.Context, filter ListFilter) ([]Event, error) {
	var items []Event
	for _, item := range r.items {
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if filter.StartDate != nil && item.EventDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && item.EventDate.After(*filter.EndDate) {
			continue
		}
		if filter.MainCelebrantID != 0 && (item.Mass == nil || item.Mass.MainCelebrantID != filter.MainCelebrantID) {
			continue
		}
		if filter.PublicOnly && !item.IsPublic {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *fakeEventsRepo) GetByID(ctx context.Context, id int64) (*Event, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	copied := copyEvent(item)
	return &copied, nil
}

func (r *fakeEventsRepo) Create(ctx context.Context, event *Event) error {
	r.writes++
	event.ID = r.nextID
	r.nextID++
	r.items[event.ID] = copyEvent(*event)
	return nil
}

func (r *fakeEventsRepo) Update(ctx context.Context, event *Event) error {
	r.writes++
	r.items[event.ID] = copyEvent(*event)
	return nil
}

func (r *fakeEventsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.writes++
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

func (r *fakeEventsRepo) ReplaceConcelebrants(ctx context.Context, massID int64, priestIDs []int64) error {
	r.writes++
	item := r.items[massID]
	if item.Mass != nil {
		item.Mass.ConcelebrantIDs = append([]int64(nil), priestIDs...)
		r.items[massID] = item
	}
	return nil
}

func (r *fakeEventsRepo) DeleteConcelebrants(ctx context.Context, massID int64) error {
	return r.ReplaceConcelebrants(ctx, massID, nil)
}

func (r *fakeEventsRepo) UnlinkIntentions(ctx context.Context, massID int64) error {
	r.writes++
	delete(r.intentions, massID)
	return nil
}

func (r *fakeEventsRepo) CelebrantSummaries(ctx context.Context, priestIDs []int64) (map[int64]CelebrantSummary, error) {
	found := make(map[int64]CelebrantSummary)
	for _, id := range priestIDs {
		if summary, ok := r.priests[id]; ok {
			found[id] = summary
		}
	}
	return found, nil
}

func (r *fakeEventsRepo) IntentionSummaries(ctx context.Context, massIDs []int64) (map[int64][]IntentionSummary, error) {
	found := make(map[int64][]IntentionSummary)
	for _, id := range massIDs {
		if items, ok := r.intentions[id]; ok {
			found[id] = items
		}
	}
	return found, nil
}

func copyEvent(event Event) Event {
	if event.Mass != nil {
		mass := *event.Mass
		mass.ConcelebrantIDs = append([]int64(nil), event.Mass.ConcelebrantIDs...)
		event.Mass = &mass
	}
	return event
}

func fixedNow() time.Time {
	return time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC)
}

func massInput() MassInput {
	return MassInput{
		EventDate:       time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		Location:        "St. Michel Cathedral",
		IsPublic:        true,
		MassType:        MassSunday,
		MainCelebrantID: 1,
		ConcelebrantIDs: []int64{3, 2},
	}
}

func TestCreateMassResolvesCelebrants(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := NewService(repo, fixedNow)

	view, err := svc.CreateMass(context.Background(), massInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Title != "SUNDAY Mass" {
		t.Fatalf("expected default title, got %q", view.Title)
	}
	if view.EventType != TypeMass || view.Kind != KindMass {
		t.Fatalf("expected mass kind and type, got %s/%s", view.Kind, view.EventType)
	}
	if view.MainCelebrant.Names != "Fr. Jean Bosco" {
		t.Fatalf("expected main celebrant summary, got %+v", view.MainCelebrant)
	}
	if len(view.Concelebrants) != 2 || view.Concelebrants[0].ID != 2 {
		t.Fatalf("expected two sorted concelebrants, got %+v", view.Concelebrants)
	}
	if !view.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("expected created at from clock, got %v", view.CreatedAt)
	}
}

func TestCreateMassReportsEveryValidationFailure(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := NewService(repo, fixedNow)

	input := massInput()
	input.ConcelebrantIDs = []int64{1, 2, 2}
	_, err := svc.CreateMass(context.Background(), input)
	if !errors.Is(err, ErrInvalidMass) {
		t.Fatalf("expected ErrInvalidMass, got %v", err)
	}
	want := "mass validation failed: main celebrant cannot also be a concelebrant; duplicate concelebrants are not allowed"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if repo.writes != 0 {
		t.Fatalf("expected no writes, got %d", repo.writes)
	}
}

func TestCreateMassUnknownPriests(t *testing.T) {
	svc := NewService(newFakeEventsRepo(), fixedNow)

	input := massInput()
	input.MainCelebrantID = 99
	if _, err := svc.CreateMass(context.Background(), input); !errors.Is(err, priests.ErrPriestNotFound) {
		t.Fatalf("expected ErrPriestNotFound, got %v", err)
	}

	input = massInput()
	input.ConcelebrantIDs = []int64{2, 42}
	_, err := svc.CreateMass(context.Background(), input)
	if !errors.Is(err, priests.ErrPriestNotFound) || !strings.Contains(err.Error(), "one or more concelebrants not found") {
		t.Fatalf("expected concelebrant lookup failure, got %v", err)
	}
}

func TestUpdateMassRejectedLeavesConcelebrantsUnchanged(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := NewService(repo, fixedNow)

	created, err := svc.CreateMass(context.Background(), massInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	input := massInput()
	input.ConcelebrantIDs = []int64{1}
	if _, err := svc.UpdateMass(context.Background(), created.ID, input); !errors.Is(err, ErrInvalidMass) {
		t.Fatalf("expected ErrInvalidMass, got %v", err)
	}

	input = massInput()
	input.ConcelebrantIDs = []int64{77}
	if _, err := svc.UpdateMass(context.Background(), created.ID, input); !errors.Is(err, priests.ErrPriestNotFound) {
		t.Fatalf("expected ErrPriestNotFound, got %v", err)
	}

	stored := repo.items[created.ID]
	if !reflect.DeepEqual(stored.Mass.ConcelebrantIDs, []int64{2, 3}) {
		t.Fatalf("expected concelebrants unchanged, got %v", stored.Mass.ConcelebrantIDs)
	}
}

func TestListMassesRejectsInvertedRange(t *testing.T) {
	svc := NewService(newFakeEventsRepo(), fixedNow)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListMasses(context.Background(), MassFilter{StartDate: &start, EndDate: &end})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestListMassesByUnknownPriest(t *testing.T) {
	svc := NewService(newFakeEventsRepo(), fixedNow)

	if _, err := svc.ListMassesByPriest(context.Background(), 404); !errors.Is(err, priests.ErrPriestNotFound) {
		t.Fatalf("expected ErrPriestNotFound, got %v", err)
	}
}

func TestDeleteMassUnlinksIntentions(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := NewService(repo, fixedNow)

	created, err := svc.CreateMass(context.Background(), massInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	repo.intentions[created.ID] = []IntentionSummary{{ID: 5, MassID: created.ID, RequestorName: "Uwase"}}

	if err := svc.DeleteMass(context.Background(), created.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.items[created.ID]; ok {
		t.Fatalf("expected mass removed")
	}
	if _, ok := repo.intentions[created.ID]; ok {
		t.Fatalf("expected intentions unlinked")
	}
	if err := svc.DeleteMass(context.Background(), created.ID); !errors.Is(err, ErrMassNotFound) {
		t.Fatalf("expected ErrMassNotFound, got %v", err)
	}
}

func TestUpdateEventOnMassKeepsMassFields(t *testing.T) {
	repo := newFakeEventsRepo()
	svc := NewService(repo, fixedNow)

	created, err := svc.CreateMass(context.Background(), massInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, err := svc.UpdateEvent(context.Background(), created.ID, EventInput{
		Title:     "Easter Sunday",
		EventDate: created.EventDate,
		Location:  "Parish grounds",
		EventType: TypeFeast,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.EventType != TypeMass {
		t.Fatalf("expected event type to stay MASS, got %s", updated.EventType)
	}
	if updated.Mass == nil || updated.Mass.MainCelebrantID != 1 {
		t.Fatalf("expected mass details kept, got %+v", updated.Mass)
	}
	if updated.Title != "Easter Sunday" {
		t.Fatalf("expected title updated, got %q", updated.Title)
	}
}

func TestGetMassOnPlainEvent(t *testing.T) {
	svc := NewService(newFakeEventsRepo(), fixedNow)

	event, err := svc.CreateEvent(context.Background(), EventInput{
		Title:     "Youth retreat",
		EventDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:  "Kabgayi",
		EventType: TypeRetreat,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.GetMass(context.Background(), event.ID); !errors.Is(err, ErrMassNotFound) {
		t.Fatalf("expected ErrMassNotFound, got %v", err)
	}
}

func TestListEventsMonthNeedsYear(t *testing.T) {
	svc := NewService(newFakeEventsRepo(), fixedNow)

	if _, err := svc.ListEvents(context.Background(), EventFilter{Month: 4}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}
