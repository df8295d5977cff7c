package priests

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePriestsRepo struct {
	items map[int64]*Priest
	inUse map[int64]bool
}

func newFakePriestsRepo() *fakePriestsRepo {
	return &fakePriestsRepo{items: make(map[int64]*Priest), inUse: make(map[int64]bool)}
}

func (r *fakePriestsRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakePriestsRepo) List(ctx context.Context, filter ListFilter) ([]Priest, error) {
	var items []Priest
	for _, item := range r.items {
		if filter.Type != "" && item.PriestType != filter.Type {
			continue
		}
		if filter.ActiveOnly && !item.IsActive {
			continue
		}
		if filter.AssignedOnly && !item.IsAssigned {
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *fakePriestsRepo) GetByID(ctx context.Context, id int64) (*Priest, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrPriestNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakePriestsRepo) GetByEmail(ctx context.Context, email string) (*Priest, error) {
	for _, item := range r.items {
		if item.Email != nil && *item.Email == email {
			copied := *item
			return &copied, nil
		}
	}
	return nil, ErrPriestNotFound
}

func (r *fakePriestsRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakePriestsRepo) Create(ctx context.Context, priest *Priest) error {
	copied := *priest
	r.items[priest.ID] = &copied
	return nil
}

func (r *fakePriestsRepo) Update(ctx context.Context, priest *Priest) error {
	copied := *priest
	r.items[priest.ID] = &copied
	return nil
}

func (r *fakePriestsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if r.inUse[id] {
		return false, ErrPriestInUse
	}
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

func strPtr(value string) *string {
	return &value
}

func validInput() Input {
	return Input{
		Names:      "Fr. Emmanuel Nkusi",
		PriestType: TypeDiocesan,
		Email:      strPtr("Nkusi@Parish.rw"),
		Phone:      "+250 788 123 456",
		IsActive:   true,
	}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) })
}

func TestCreateUsesExternalID(t *testing.T) {
	repo := newFakePriestsRepo()
	svc := newTestService(repo)

	priest, err := svc.Create(context.Background(), 42, validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if priest.ID != 42 {
		t.Fatalf("expected id 42, got %d", priest.ID)
	}
	if priest.Email == nil || *priest.Email != "nkusi@parish.rw" {
		t.Fatalf("expected normalized email, got %v", priest.Email)
	}

	_, err = svc.Create(context.Background(), 42, validInput())
	if !errors.Is(err, ErrPriestExists) {
		t.Fatalf("expected ErrPriestExists, got %v", err)
	}
}

func TestCreateRejectsTakenEmail(t *testing.T) {
	repo := newFakePriestsRepo()
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), 1, validInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.Create(context.Background(), 2, validInput())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := svc.Update(context.Background(), 1, validInput()); err != nil {
		t.Fatalf("expected update with own email to succeed, got %v", err)
	}
}

func TestCreateValidatesPhoneAndType(t *testing.T) {
	svc := newTestService(newFakePriestsRepo())

	input := validInput()
	input.Phone = "12-34"
	if _, err := svc.Create(context.Background(), 3, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for phone, got %v", err)
	}

	input = validInput()
	input.PriestType = "CARDINAL"
	if _, err := svc.Create(context.Background(), 3, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for type, got %v", err)
	}

	if _, err := svc.Create(context.Background(), 0, validInput()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for id, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newFakePriestsRepo()
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), 9); !errors.Is(err, ErrPriestNotFound) {
		t.Fatalf("expected ErrPriestNotFound, got %v", err)
	}

	if _, err := svc.Create(context.Background(), 9, validInput()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	repo.inUse[9] = true
	if err := svc.Delete(context.Background(), 9); !errors.Is(err, ErrPriestInUse) {
		t.Fatalf("expected ErrPriestInUse, got %v", err)
	}
}
