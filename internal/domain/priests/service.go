package priests

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)

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

// Create registers a priest under the externally assigned id.
func (s *Service) Create(ctx context.Context, id int64, input Input) (*Priest, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	priest := Priest{ID: id, CreatedAt: now, UpdatedAt: now}
	applyInput(&priest, input)

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.Exists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %d", ErrPriestExists, id)
		}
		if err := ensureEmailFree(ctx, tx, id, input.Email); err != nil {
			return err
		}
		return tx.Create(ctx, &priest)
	})
	if err != nil {
		return nil, err
	}
	return &priest, nil
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (*Priest, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated Priest
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		priest, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureEmailFree(ctx, tx, id, input.Email); err != nil {
			return err
		}

		applyInput(priest, input)
		priest.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, priest); err != nil {
			return err
		}
		updated = *priest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Priest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Priest, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown priest type %q", ErrInvalidInput, filter.Type)
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return []Priest{}, nil
	}
	return items, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPriestNotFound
	}
	return nil
}

func ensureEmailFree(ctx context.Context, repo Repository, selfID int64, email *string) error {
	if email == nil {
		return nil
	}
	existing, err := repo.GetByEmail(ctx, *email)
	if err != nil {
		if errors.Is(err, ErrPriestNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}

func validateInput(input Input) error {
	var problems []string
	if input.Names == "" {
		problems = append(problems, "names is required")
	}
	if !input.PriestType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown priest type %q", input.PriestType))
	}
	if input.Phone != "" && !phonePattern.MatchString(input.Phone) {
		problems = append(problems, "phone has an invalid format")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func normalizeInput(input Input) Input {
	input.Names = strings.TrimSpace(input.Names)
	input.PriestType = PriestType(strings.ToUpper(strings.TrimSpace(string(input.PriestType))))
	input.ParishOfOrigin = strings.TrimSpace(input.ParishOfOrigin)
	input.Phone = strings.TrimSpace(input.Phone)
	input.ProfilePictureURL = strings.TrimSpace(input.ProfilePictureURL)
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			input.Email = nil
		} else {
			input.Email = &email
		}
	}
	return input
}

func applyInput(priest *Priest, input Input) {
	priest.Names = input.Names
	priest.PriestType = input.PriestType
	priest.OrdinationDate = input.OrdinationDate
	priest.BirthDate = input.BirthDate
	priest.ParishOfOrigin = input.ParishOfOrigin
	priest.Email = input.Email
	priest.Phone = input.Phone
	priest.ProfilePictureURL = input.ProfilePictureURL
	priest.IsActive = input.IsActive
	priest.IsAssigned = input.IsAssigned
}
