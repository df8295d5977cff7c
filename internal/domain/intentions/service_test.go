package intentions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"parish-app-go/internal/domain/events"
	"parish-app-go/internal/domain/faithful"
)

type fakeIntentionsRepo struct {
	nextID   int64
	items    map[int64]Intention
	faithful map[int64]string
	masses   map[int64]MassSummary
}

func newFakeIntentionsRepo() *fakeIntentionsRepo {
	return &fakeIntentionsRepo{
		nextID:   1,
		items:    make(map[int64]Intention),
		faithful: map[int64]string{7: "Marie Uwimana"},
		masses: map[int64]MassSummary{
			11: {ID: 11, MassType: "SUNDAY", MainCelebrantName: "Fr. Jean Bosco"},
		},
	}
}

func (r *fakeIntentionsRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeIntentionsRepo) List(ctx context.Context, filter ListFilter) ([]Intention, error) {
	var items []Intention
	for _, item := range r.items {
		if filter.UnpaidOnly && item.IsPaid {
			continue
		}
		if filter.MassID != 0 && (item.MassID == nil || *item.MassID != filter.MassID) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *fakeIntentionsRepo) GetByID(ctx context.Context, id int64) (*Intention, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrIntentionNotFound
	}
	return &item, nil
}

func (r *fakeIntentionsRepo) Create(ctx context.Context, intention *Intention) error {
	intention.ID = r.nextID
	r.nextID++
	r.items[intention.ID] = *intention
	return nil
}

func (r *fakeIntentionsRepo) Update(ctx context.Context, intention *Intention) error {
	r.items[intention.ID] = *intention
	return nil
}

func (r *fakeIntentionsRepo) SetPaid(ctx context.Context, id int64, paid bool) (bool, error) {
	item, ok := r.items[id]
	if !ok {
		return false, nil
	}
	item.IsPaid = paid
	r.items[id] = item
	return true, nil
}

func (r *fakeIntentionsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

func (r *fakeIntentionsRepo) FaithfulExists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.faithful[id]
	return ok, nil
}

func (r *fakeIntentionsRepo) MassExists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.masses[id]
	return ok, nil
}

func (r *fakeIntentionsRepo) RequestorNames(ctx context.Context, faithfulIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	for _, id := range faithfulIDs {
		if name, ok := r.faithful[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func (r *fakeIntentionsRepo) MassSummaries(ctx context.Context, massIDs []int64) (map[int64]MassSummary, error) {
	found := make(map[int64]MassSummary)
	for _, id := range massIDs {
		if summary, ok := r.masses[id]; ok {
			found[id] = summary
		}
	}
	return found, nil
}

func int64Ptr(value int64) *int64 {
	return &value
}

func strPtr(value string) *string {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func fixedNow() time.Time {
	return time.Date(2025, 11, 2, 16, 30, 0, 0, time.UTC)
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(newFakeIntentionsRepo(), fixedNow)

	view, err := svc.Create(context.Background(), Input{
		IntentionType: TypeDeceased,
		IntentionText: "For the repose of the soul of Mukamana",
		FaithfulID:    int64Ptr(7),
		MassID:        int64Ptr(11),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !view.IsPaid {
		t.Fatalf("expected paid by default")
	}
	if !view.RequestedDate.Equal(time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected requested date today, got %v", view.RequestedDate)
	}
	if view.RequestorName != "Marie Uwimana" {
		t.Fatalf("expected faithful requestor name, got %q", view.RequestorName)
	}
	if view.Mass == nil || view.Mass.MainCelebrantName != "Fr. Jean Bosco" {
		t.Fatalf("expected mass summary, got %+v", view.Mass)
	}
}

func TestCreateRequiresExactlyOneRequestor(t *testing.T) {
	svc := NewService(newFakeIntentionsRepo(), fixedNow)

	_, err := svc.Create(context.Background(), Input{
		IntentionType:        TypeSick,
		IntentionText:        "For healing",
		FaithfulID:           int64Ptr(7),
		ExternalFaithfulName: strPtr("Visitor"),
	})
	if !errors.Is(err, ErrInvalidRequestor) {
		t.Fatalf("expected ErrInvalidRequestor for both, got %v", err)
	}

	_, err = svc.Create(context.Background(), Input{
		IntentionType:        TypeSick,
		IntentionText:        "For healing",
		ExternalFaithfulName: strPtr("   "),
	})
	if !errors.Is(err, ErrInvalidRequestor) {
		t.Fatalf("expected ErrInvalidRequestor for neither, got %v", err)
	}
}

func TestCreateChecksReferences(t *testing.T) {
	svc := NewService(newFakeIntentionsRepo(), fixedNow)

	_, err := svc.Create(context.Background(), Input{
		IntentionType: TypeThanksgiving,
		IntentionText: "Thanksgiving",
		FaithfulID:    int64Ptr(99),
	})
	if !errors.Is(err, faithful.ErrFaithfulNotFound) {
		t.Fatalf("expected ErrFaithfulNotFound, got %v", err)
	}

	_, err = svc.Create(context.Background(), Input{
		IntentionType:        TypeThanksgiving,
		IntentionText:        "Thanksgiving",
		ExternalFaithfulName: strPtr("Visitor"),
		MassID:               int64Ptr(12),
	})
	if !errors.Is(err, events.ErrMassNotFound) {
		t.Fatalf("expected ErrMassNotFound, got %v", err)
	}
}

func TestCreateRejectsNegativeOffering(t *testing.T) {
	svc := NewService(newFakeIntentionsRepo(), fixedNow)

	amount := decimal.RequireFromString("-5.00")
	_, err := svc.Create(context.Background(), Input{
		IntentionType:        TypeBirthday,
		IntentionText:        "Birthday blessing",
		ExternalFaithfulName: strPtr("Visitor"),
		OfferingAmount:       &amount,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarkPaidAndUnpaidListing(t *testing.T) {
	repo := newFakeIntentionsRepo()
	svc := NewService(repo, fixedNow)

	created, err := svc.Create(context.Background(), Input{
		IntentionType:        TypeOther,
		IntentionText:        "Family intention",
		ExternalFaithfulName: strPtr("Jean Habimana"),
		IsPaid:               boolPtr(false),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.RequestorName != "Jean Habimana" {
		t.Fatalf("expected external requestor name, got %q", created.RequestorName)
	}

	unpaid, err := svc.List(context.Background(), ListFilter{UnpaidOnly: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(unpaid) != 1 {
		t.Fatalf("expected 1 unpaid intention, got %d", len(unpaid))
	}

	paid, err := svc.MarkPaid(context.Background(), created.ID, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !paid.IsPaid {
		t.Fatalf("expected intention marked paid")
	}

	if _, err := svc.MarkPaid(context.Background(), 404, true); !errors.Is(err, ErrIntentionNotFound) {
		t.Fatalf("expected ErrIntentionNotFound, got %v", err)
	}
}

func TestUpdateOverwritesOmittedFieldsWithDefaults(t *testing.T) {
	repo := newFakeIntentionsRepo()
	svc := NewService(repo, fixedNow)

	requested := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	unpaid := false
	created, err := svc.Create(context.Background(), Input{
		IntentionType:        TypeAnniversary,
		IntentionText:        "Wedding anniversary",
		ExternalFaithfulName: strPtr("Visitor"),
		RequestedDate:        &requested,
		IsPaid:               &unpaid,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.IsPaid {
		t.Fatalf("expected unpaid intention before update")
	}

	updated, err := svc.Update(context.Background(), created.ID, Input{
		IntentionType: TypeAnniversary,
		IntentionText: "Silver wedding anniversary",
		FaithfulID:    int64Ptr(7),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	today := truncateDay(fixedNow())
	if !updated.RequestedDate.Equal(today) {
		t.Fatalf("expected requested date reset to %v, got %v", today, updated.RequestedDate)
	}
	if !updated.IsPaid {
		t.Fatalf("expected omitted paid flag to default to true")
	}
	if updated.ExternalFaithfulName != nil || updated.RequestorName != "Marie Uwimana" {
		t.Fatalf("expected requestor switched to faithful, got %+v", updated)
	}

	stored := repo.items[created.ID]
	if !stored.IsPaid || !stored.RequestedDate.Equal(today) {
		t.Fatalf("expected stored row overwritten, got %+v", stored)
	}
}
