package faithful

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
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

func (s *Service) Create(ctx context.Context, input Input) (*Record, error) {
	input = normalizeInput(input)
	if err := s.validate(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	faithful := Faithful{CreatedAt: now, UpdatedAt: now}
	applyInput(&faithful, input)

	var record Record
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := ensureUniqueIdentifiers(ctx, tx, 0, input); err != nil {
			return err
		}
		if err := tx.Create(ctx, &faithful); err != nil {
			return err
		}
		saved, err := replaceChildren(ctx, tx, faithful, input)
		if err != nil {
			return err
		}
		record = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Update overwrites every writable field. Nil values and nil lists clear the
// stored data.
func (s *Service) Update(ctx context.Context, id int64, input Input) (*Record, error) {
	input = normalizeInput(input)
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var record Record
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		faithful, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureUniqueIdentifiers(ctx, tx, id, input); err != nil {
			return err
		}

		applyInput(faithful, input)
		faithful.UpdatedAt = s.now().UTC()

		if err := tx.Update(ctx, faithful); err != nil {
			return err
		}
		saved, err := replaceChildren(ctx, tx, *faithful, input)
		if err != nil {
			return err
		}
		record = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	faithful, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withChildren(ctx, *faithful)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Record{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	ministries, err := s.repo.ListMinistries(ctx, ids)
	if err != nil {
		return nil, err
	}
	lapses, err := s.repo.ListLapseEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		records = append(records, Record{
			Faithful:    item,
			Ministries:  ministries[item.ID],
			LapseEvents: lapses[item.ID],
		})
	}
	return records, nil
}

func (s *Service) SearchByName(ctx context.Context, name string) ([]Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.List(ctx, ListFilter{NameContains: name})
}

func (s *Service) ListWithAllSacraments(ctx context.Context) ([]Record, error) {
	return s.List(ctx, ListFilter{AllSacraments: true})
}

func (s *Service) ListBornBetween(ctx context.Context, from, to time.Time) ([]Record, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}
	return s.List(ctx, ListFilter{BornFrom: &from, BornTo: &to})
}

func (s *Service) GetByBaptismID(ctx context.Context, baptismID string) (*Record, error) {
	return s.getByIdentifier(ctx, baptismID, s.repo.GetByBaptismID)
}

func (s *Service) GetByConfirmationID(ctx context.Context, confirmationID string) (*Record, error) {
	return s.getByIdentifier(ctx, confirmationID, s.repo.GetByConfirmationID)
}

func (s *Service) GetByMatrimonyID(ctx context.Context, matrimonyID string) (*Record, error) {
	return s.getByIdentifier(ctx, matrimonyID, s.repo.GetByMatrimonyID)
}

func (s *Service) GetBySpouseBaptismID(ctx context.Context, spouseBaptismID string) (*Record, error) {
	return s.getByIdentifier(ctx, spouseBaptismID, s.repo.GetBySpouseBaptismID)
}

// Delete removes the faithful and, explicitly, every ministry and lapse event
// it owns.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrFaithfulNotFound
		}

		if err := tx.DeleteMinistries(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteLapseEvents(ctx, id); err != nil {
			return err
		}

		deleted, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrFaithfulNotFound
		}
		return nil
	})
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) CountByTerritory(ctx context.Context, level TerritoryLevel) ([]TerritoryCount, error) {
	switch level {
	case LevelParish, LevelSubparish, LevelBEC:
	default:
		return nil, fmt.Errorf("%w: unknown territory level %q", ErrInvalidInput, level)
	}
	return s.repo.CountByTerritory(ctx, level)
}

func (s *Service) SacramentInfo(ctx context.Context, id int64) (*SacramentInfo, error) {
	faithful, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := toSacramentInfo(*faithful)
	return &info, nil
}

func (s *Service) SearchSacramentInfo(ctx context.Context, name string) ([]SacramentInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	items, err := s.repo.List(ctx, ListFilter{NameContains: name})
	if err != nil {
		return nil, err
	}
	result := make([]SacramentInfo, 0, len(items))
	for _, item := range items {
		result = append(result, toSacramentInfo(item))
	}
	return result, nil
}

func (s *Service) getByIdentifier(ctx context.Context, value string, lookup func(context.Context, string) (*Faithful, error)) (*Record, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrInvalidInput)
	}
	faithful, err := lookup(ctx, value)
	if err != nil {
		return nil, err
	}
	return s.withChildren(ctx, *faithful)
}

func (s *Service) withChildren(ctx context.Context, faithful Faithful) (*Record, error) {
	ids := []int64{faithful.ID}
	ministries, err := s.repo.ListMinistries(ctx, ids)
	if err != nil {
		return nil, err
	}
	lapses, err := s.repo.ListLapseEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &Record{
		Faithful:    faithful,
		Ministries:  ministries[faithful.ID],
		LapseEvents: lapses[faithful.ID],
	}, nil
}

func (s *Service) validate(input Input) error {
	var problems []string
	if input.FirstName == "" {
		problems = append(problems, "firstname is required")
	}
	if input.Name == "" {
		problems = append(problems, "name is required")
	}

	today := truncateDay(s.now())
	if input.DateOfBirth != nil && !truncateDay(*input.DateOfBirth).Before(today) {
		problems = append(problems, "dateOfBirth must be in the past")
	}
	if input.DateOfBaptism != nil && truncateDay(*input.DateOfBaptism).After(today) {
		problems = append(problems, "dateOfBaptism must not be in the future")
	}
	if input.IsDeceased && input.DateOfDeath != nil && truncateDay(*input.DateOfDeath).After(today) {
		problems = append(problems, "dateOfDeath must not be in the future")
	}

	for i, lapse := range input.LapseHistory {
		if lapse.LapseType == "" {
			problems = append(problems, fmt.Sprintf("lapseHistory[%d].lapseType is required", i))
		}
		if lapse.LapseDate != nil && lapse.ReturnDate != nil && lapse.ReturnDate.Before(*lapse.LapseDate) {
			problems = append(problems, fmt.Sprintf("lapseHistory[%d].returnDate must not be before lapseDate", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func ensureUniqueIdentifiers(ctx context.Context, repo Repository, selfID int64, input Input) error {
	checks := []struct {
		label  string
		value  *string
		lookup func(context.Context, string) (*Faithful, error)
	}{
		{label: "baptism id", value: input.BaptismID, lookup: repo.GetByBaptismID},
		{label: "confirmation id", value: input.ConfirmationID, lookup: repo.GetByConfirmationID},
		{label: "matrimony id", value: input.MatrimonyID, lookup: repo.GetByMatrimonyID},
	}

	for _, check := range checks {
		if check.value == nil {
			continue
		}
		existing, err := check.lookup(ctx, *check.value)
		if err != nil {
			if errors.Is(err, ErrFaithfulNotFound) {
				continue
			}
			return err
		}
		if existing.ID != selfID {
			return fmt.Errorf("%w: %s already exists: %s", ErrDuplicateIdentifier, check.label, *check.value)
		}
	}
	return nil
}

func replaceChildren(ctx context.Context, repo Repository, faithful Faithful, input Input) (Record, error) {
	ministries, err := repo.ReplaceMinistries(ctx, faithful.ID, input.Ministries)
	if err != nil {
		return Record{}, err
	}

	events := make([]LapseEvent, 0, len(input.LapseHistory))
	for _, lapse := range input.LapseHistory {
		events = append(events, LapseEvent{
			FaithfulID:  faithful.ID,
			LapseType:   lapse.LapseType,
			LapseDate:   lapse.LapseDate,
			LapseReason: lapse.LapseReason,
			ReturnDate:  lapse.ReturnDate,
		})
	}
	lapses, err := repo.ReplaceLapseEvents(ctx, faithful.ID, events)
	if err != nil {
		return Record{}, err
	}

	return Record{Faithful: faithful, Ministries: ministries, LapseEvents: lapses}, nil
}

func applyInput(f *Faithful, in Input) {
	f.FirstName = in.FirstName
	f.Name = in.Name
	f.FatherName = in.FatherName
	f.MotherName = in.MotherName
	f.GodparentName = in.GodparentName

	f.DateOfBirth = in.DateOfBirth
	f.DateOfBaptism = in.DateOfBaptism
	f.BaptismID = in.BaptismID
	f.BaptismMinister = in.BaptismMinister

	f.DateOfFirstCommunion = in.DateOfFirstCommunion

	f.DateOfConfirmation = in.DateOfConfirmation
	f.ConfirmationID = in.ConfirmationID

	f.DateOfMatrimony = in.DateOfMatrimony
	f.MatrimonyID = in.MatrimonyID
	f.SpouseName = in.SpouseName
	f.SpouseBaptismID = in.SpouseBaptismID

	f.HasDiaconate = in.HasDiaconate
	f.DateOfDiaconate = in.DateOfDiaconate
	f.HasPriesthood = in.HasPriesthood
	f.DateOfPriesthood = in.DateOfPriesthood
	f.HasEpiscopate = in.HasEpiscopate
	f.DateOfEpiscopate = in.DateOfEpiscopate

	f.CongregationName = in.CongregationName
	f.HasTemporalProfession = in.HasTemporalProfession
	f.DateTemporalProfession = in.DateTemporalProfession
	f.HasPermanentProfession = in.HasPermanentProfession
	f.DatePermanentProfession = in.DatePermanentProfession

	f.OtherMinistryDetails = in.OtherMinistryDetails

	f.HasRelocated = in.HasRelocated
	f.NewParishName = in.NewParishName
	f.IsDeceased = in.IsDeceased
	f.DateOfDeath = in.DateOfDeath

	f.Diocese = in.Diocese
	f.Parish = in.Parish
	f.Subparish = in.Subparish
	f.BasicEcclesialCommunity = in.BasicEcclesialCommunity
}

func normalizeInput(in Input) Input {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Name = strings.TrimSpace(in.Name)
	in.FatherName = strings.TrimSpace(in.FatherName)
	in.MotherName = strings.TrimSpace(in.MotherName)
	in.GodparentName = strings.TrimSpace(in.GodparentName)
	in.BaptismMinister = strings.TrimSpace(in.BaptismMinister)
	in.SpouseName = strings.TrimSpace(in.SpouseName)
	in.CongregationName = strings.TrimSpace(in.CongregationName)
	in.NewParishName = strings.TrimSpace(in.NewParishName)
	in.Diocese = strings.TrimSpace(in.Diocese)
	in.Parish = strings.TrimSpace(in.Parish)
	in.Subparish = strings.TrimSpace(in.Subparish)
	in.BasicEcclesialCommunity = strings.TrimSpace(in.BasicEcclesialCommunity)

	in.BaptismID = optionalIdentifier(in.BaptismID)
	in.ConfirmationID = optionalIdentifier(in.ConfirmationID)
	in.MatrimonyID = optionalIdentifier(in.MatrimonyID)
	in.SpouseBaptismID = optionalIdentifier(in.SpouseBaptismID)

	ministries := make([]string, 0, len(in.Ministries))
	for _, ministry := range in.Ministries {
		if ministry = strings.TrimSpace(ministry); ministry != "" {
			ministries = append(ministries, ministry)
		}
	}
	in.Ministries = ministries

	lapses := make([]LapseInput, 0, len(in.LapseHistory))
	for _, lapse := range in.LapseHistory {
		lapse.LapseType = strings.TrimSpace(lapse.LapseType)
		lapse.LapseReason = strings.TrimSpace(lapse.LapseReason)
		lapses = append(lapses, lapse)
	}
	in.LapseHistory = lapses

	return in
}

// optionalIdentifier folds blank identifiers into "absent".
func optionalIdentifier(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toSacramentInfo(f Faithful) SacramentInfo {
	return SacramentInfo{
		ID:                      f.ID,
		FirstName:               f.FirstName,
		Name:                    f.Name,
		FatherName:              f.FatherName,
		MotherName:              f.MotherName,
		GodparentName:           f.GodparentName,
		DateOfBirth:             f.DateOfBirth,
		Diocese:                 f.Diocese,
		Parish:                  f.Parish,
		Subparish:               f.Subparish,
		BasicEcclesialCommunity: f.BasicEcclesialCommunity,
		DateOfBaptism:           f.DateOfBaptism,
		BaptismID:               f.BaptismID,
		BaptismMinister:         f.BaptismMinister,
		DateOfFirstCommunion:    f.DateOfFirstCommunion,
		DateOfConfirmation:      f.DateOfConfirmation,
		ConfirmationID:          f.ConfirmationID,
		DateOfMatrimony:         f.DateOfMatrimony,
		MatrimonyID:             f.MatrimonyID,
		SpouseName:              f.SpouseName,
		HasAllSacraments:        f.HasAllSacraments(),
	}
}
