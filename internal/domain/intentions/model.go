package intentions

import (
	"time"

	"github.com/shopspring/decimal"
)

type IntentionType string

const (
	TypeDeceased     IntentionType = "DECEASED"
	TypeSick         IntentionType = "SICK"
	TypeThanksgiving IntentionType = "THANKSGIVING"
	TypeSpecialNeed  IntentionType = "SPECIAL_NEED"
	TypeAnniversary  IntentionType = "ANNIVERSARY"
	TypeBirthday     IntentionType = "BIRTHDAY"
	TypePatronSaint  IntentionType = "PATRON_SAINT"
	TypeOther        IntentionType = "OTHER"
)

var IntentionTypes = []IntentionType{
	TypeDeceased, TypeSick, TypeThanksgiving, TypeSpecialNeed,
	TypeAnniversary, TypeBirthday, TypePatronSaint, TypeOther,
}

func (t IntentionType) Valid() bool {
	for _, known := range IntentionTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Intention struct {
	ID                   int64            `gorm:"primaryKey"`
	IntentionType        IntentionType    `gorm:"size:20;not null"`
	IntentionText        string           `gorm:"size:1000;not null"`
	RequestedDate        time.Time        `gorm:"type:date;not null"`
	IsPaid               bool             `gorm:"not null"`
	OfferingAmount       *decimal.Decimal `gorm:"type:numeric(10,2)"`
	MassID               *int64
	FaithfulID           *int64
	ExternalFaithfulName *string `gorm:"size:150"`
	CreatedAt            time.Time
}

func (Intention) TableName() string {
	return "intentions"
}

type MassSummary struct {
	ID                int64
	MassDate          time.Time
	MassType          string
	MainCelebrantName string
}

// View is an intention with its requestor and mass resolved for display.
type View struct {
	Intention
	RequestorName string
	Mass          *MassSummary
}

type ListFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	IntentionType IntentionType
	MassID        int64
	FaithfulID    int64
	UnpaidOnly    bool
}

type Input struct {
	IntentionType        IntentionType
	IntentionText        string
	RequestedDate        *time.Time
	IsPaid               *bool
	OfferingAmount       *decimal.Decimal
	MassID               *int64
	FaithfulID           *int64
	ExternalFaithfulName *string
}
