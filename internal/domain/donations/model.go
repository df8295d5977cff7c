package donations

import (
	"time"

	"github.com/shopspring/decimal"
)

const UnspecifiedType = "Unspecified"

type Donation struct {
	ID               int64           `gorm:"primaryKey"`
	FaithfulID       int64           `gorm:"not null"`
	Year             int             `gorm:"not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Date             time.Time       `gorm:"type:date;not null"`
	ContributionType string          `gorm:"size:50"`
	PaymentMethod    string          `gorm:"size:50"`
	ReferenceNumber  string          `gorm:"size:100"`
	Notes            string          `gorm:"size:500"`
	RecordedBy       string          `gorm:"size:100"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Donation) TableName() string {
	return "donations"
}

// View is a donation with the donor's display name.
type View struct {
	Donation
	FaithfulName string
}

// ListFilter combines freely at the repository level.
type ListFilter struct {
	FaithfulID        int64
	Year              int
	StartDate         *time.Time
	EndDate           *time.Time
	ContributionType  string
	PaymentMethod     string
	ReferenceContains string
	MinAmount         *decimal.Decimal
}

// Query is the listing request where only the first present criterion is
// applied, in field order.
type Query struct {
	FaithfulID       int64
	Year             int
	StartDate        *time.Time
	EndDate          *time.Time
	ContributionType string
	PaymentMethod    string
	Reference        string
	MinAmount        *decimal.Decimal
}

type SumFilter struct {
	FaithfulID int64
	Year       int
	StartDate  *time.Time
	EndDate    *time.Time
}

type Summary struct {
	TotalAmount   decimal.Decimal
	DonationCount int64
	AverageAmount decimal.Decimal
	MaxAmount     decimal.Decimal
	MinAmount     decimal.Decimal
	Period        string
}

type SummaryRow struct {
	Total decimal.Decimal
	Count int64
	Max   decimal.Decimal
	Min   decimal.Decimal
}

type TypeTotal struct {
	ContributionType string
	Total            decimal.Decimal
}

type MonthTotal struct {
	Month int
	Total decimal.Decimal
}

type DonorTotal struct {
	FaithfulID   int64
	FaithfulName string
	TotalAmount  decimal.Decimal
}

type TerritoryRow struct {
	Subparish string
	BEC       string
	Amount    decimal.Decimal
}

type CreateInput struct {
	FaithfulID       int64
	Year             int
	Amount           decimal.Decimal
	Date             time.Time
	ContributionType string
	PaymentMethod    string
	ReferenceNumber  string
	Notes            string
	RecordedBy       string
}

// UpdateInput applies only the non-nil fields.
type UpdateInput struct {
	Year             *int
	Amount           *decimal.Decimal
	Date             *time.Time
	ContributionType *string
	PaymentMethod    *string
	ReferenceNumber  *string
	Notes            *string
	RecordedBy       *string
}
