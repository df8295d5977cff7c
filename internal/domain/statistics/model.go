package statistics

import (
	"time"

	"github.com/shopspring/decimal"
)

type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) key() string {
	return p.Start.Format("2006-01-02") + "_" + p.End.Format("2006-01-02")
}

type CountByKey struct {
	Key   string
	Count int64
}

type YearCount struct {
	Year  int
	Count int64
}

type MonthCount struct {
	Month int
	Count int64
}

type MonthAmount struct {
	Month int
	Total decimal.Decimal
}

type CelebrantCount struct {
	PriestID   int64
	Names      string
	PriestType string
	Email      *string
	Phone      string
	IsAssigned bool
	MassCount  int64
}

type RankedPriest struct {
	Rank int
	CelebrantCount
}

type UnpaidIntention struct {
	IntentionID   int64
	IntentionType string
	IntentionText string
	RequestedDate time.Time
	RequestorName string
	MassID        *int64
	MassDate      *time.Time
}

type MassStatistics struct {
	TotalMasses           int64
	MassesByType          map[string]int64
	TopCelebratingPriests []CelebrantCount
}

type IntentionStatistics struct {
	TotalIntentions       int64
	IntentionsByType      map[string]int64
	DeceasedIntentions    int64
	UnpaidIntentionsCount int64
	PaymentRate           string
}

type PriestStatistics struct {
	TotalPriests                int64
	PriestsByType               map[string]int64
	ActivePriests               int64
	InactivePriests             int64
	PriestsCelebratingThisMonth int64
}

type TypeShare struct {
	PriestType string
	Count      int64
	Percentage string
}

type PriestTypeBreakdown struct {
	TotalPriests  int64
	TypeBreakdown []TypeShare
}

type Dashboard struct {
	Period             Period
	TotalMasses        int64
	TotalIntentions    int64
	TotalEvents        int64
	TotalPriests       int64
	NewPriests         int64
	DeceasedIntentions int64
	UnpaidIntentions   int64
	MassTypeBreakdown  map[string]int64
	MassesToday        int64
}

type MonthlyMasses struct {
	Month     int
	MonthName string
	MassCount int64
}

type YearStatistics struct {
	Year                   int
	MonthlyMasses          []MonthlyMasses
	MonthlyOfferings       []MonthAmount
	TotalMassesForYear     int64
	TotalIntentionsForYear int64
}

type PeriodTotals struct {
	StartDate  time.Time
	EndDate    time.Time
	Masses     int64
	Intentions int64
}

type Changes struct {
	MassChange             int64
	IntentionChange        int64
	MassPercentChange      string
	IntentionPercentChange string
}

type Comparison struct {
	Period1 PeriodTotals
	Period2 PeriodTotals
	Changes Changes
}
