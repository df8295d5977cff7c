package handler

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type requestValidationSuite struct {
	suite.Suite
}

func TestRequestValidation(t *testing.T) {
	suite.Run(t, new(requestValidationSuite))
}

func (s *requestValidationSuite) TestFaithfulNeedsNames() {
	fields := validateRequest(&faithfulRequest{})
	s.Equal("is required", fields["firstname"])
	s.Equal("is required", fields["name"])
}

func (s *requestValidationSuite) TestFaithfulMinistriesAreCheckedPerEntry() {
	fields := validateRequest(&faithfulRequest{
		FirstName:  "Marie",
		Name:       "Uwase",
		Ministries: []string{"CHOIR", ""},
	})
	s.Equal(map[string]string{"ministries[1]": "is required"}, fields)
}

func (s *requestValidationSuite) TestMassRequiresCelebrantAndKnownType() {
	fields := validateRequest(&massRequest{
		Location: "Main church",
		MassType: "BRUNCH",
	})
	s.Equal("is required", fields["eventDate"])
	s.Equal("is required", fields["mainCelebrantId"])
	s.Contains(fields["massType"], "must be one of")
}

func (s *requestValidationSuite) TestEnumFieldsIgnoreCase() {
	season := "lent"
	fields := validateRequest(&massRequest{
		Location:         "Main church",
		MassType:         "sunday",
		LiturgicalSeason: &season,
	})
	s.NotContains(fields, "massType")
	s.NotContains(fields, "liturgicalSeason")

	fields = validateRequest(&priestRequest{ID: 1, Names: "Fr. Jean", PriestType: " Religious "})
	s.Nil(fields)

	fields = validateRequest(&intentionRequest{IntentionType: "thanksgiving", IntentionText: "For the harvest"})
	s.Nil(fields)
}

func (s *requestValidationSuite) TestMassConcelebrantsMustBePositive() {
	season := "LENT"
	fields := validateRequest(&massRequest{
		EventDate:        &date{},
		Location:         "Main church",
		MassType:         "WEEKDAY",
		LiturgicalSeason: &season,
		MainCelebrantID:  4,
		ConcelebrantIDs:  []int64{5, 0},
	})
	s.Equal(map[string]string{"concelebrantIds[1]": "must be greater than 0"}, fields)
}

func (s *requestValidationSuite) TestIntentionTypeIsChecked() {
	fields := validateRequest(&intentionRequest{
		IntentionType: "WISH",
		IntentionText: "For peace",
	})
	s.Contains(fields["intentionType"], "must be one of")
	s.Len(fields, 1)
}

func (s *requestValidationSuite) TestPaymentNeedsFlag() {
	s.Equal(map[string]string{"isPaid": "is required"}, validateRequest(&paymentRequest{}))

	paid := false
	s.Nil(validateRequest(&paymentRequest{IsPaid: &paid}))
}

func (s *requestValidationSuite) TestDonationYearBounds() {
	fields := validateRequest(&createDonationRequest{
		FaithfulID: 3,
		Year:       1850,
		Date:       &date{},
	})
	s.Equal(map[string]string{"year": "must be at least 1900"}, fields)
}

func (s *requestValidationSuite) TestPriestEmailFormat() {
	email := "nope"
	fields := validateRequest(&priestRequest{
		Names:      "Fr. Paul",
		PriestType: "DEACON",
		Email:      &email,
	})
	s.Equal(map[string]string{"email": "must be a valid email"}, fields)
}
