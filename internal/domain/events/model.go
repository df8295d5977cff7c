package events

import "time"

type Kind string

const (
	KindEvent Kind = "EVENT"
	KindMass  Kind = "MASS"
)

type EventType string

const (
	TypeMass           EventType = "MASS"
	TypeWedding        EventType = "WEDDING"
	TypeBaptism        EventType = "BAPTISM"
	TypeFuneral        EventType = "FUNERAL"
	TypeConfirmation   EventType = "CONFIRMATION"
	TypeFirstCommunion EventType = "FIRST_COMMUNION"
	TypeRetreat        EventType = "RETREAT"
	TypeMeeting        EventType = "MEETING"
	TypeFeast          EventType = "FEAST"
	TypeOther          EventType = "OTHER"
)

var EventTypes = []EventType{
	TypeMass, TypeWedding, TypeBaptism, TypeFuneral, TypeConfirmation,
	TypeFirstCommunion, TypeRetreat, TypeMeeting, TypeFeast, TypeOther,
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

type MassType string

const (
	MassSunday    MassType = "SUNDAY"
	MassWeekday   MassType = "WEEKDAY"
	MassSolemnity MassType = "SOLEMNITY"
	MassFeast     MassType = "FEAST"
	MassMemorial  MassType = "MEMORIAL"
	MassFuneral   MassType = "FUNERAL"
	MassWedding   MassType = "WEDDING"
	MassRequiem   MassType = "REQUIEM"
	MassSpecial   MassType = "SPECIAL"
)

var MassTypes = []MassType{
	MassSunday, MassWeekday, MassSolemnity, MassFeast, MassMemorial,
	MassFuneral, MassWedding, MassRequiem, MassSpecial,
}

func (t MassType) Valid() bool {
	for _, known := range MassTypes {
		if t == known {
			return true
		}
	}
	return false
}

type LiturgicalSeason string

const (
	SeasonAdvent        LiturgicalSeason = "ADVENT"
	SeasonChristmas     LiturgicalSeason = "CHRISTMAS"
	SeasonOrdinaryTime  LiturgicalSeason = "ORDINARY_TIME"
	SeasonLent          LiturgicalSeason = "LENT"
	SeasonEasterTriduum LiturgicalSeason = "EASTER_TRIDUUM"
	SeasonEaster        LiturgicalSeason = "EASTER"
)

var LiturgicalSeasons = []LiturgicalSeason{
	SeasonAdvent, SeasonChristmas, SeasonOrdinaryTime, SeasonLent, SeasonEasterTriduum, SeasonEaster,
}

func (s LiturgicalSeason) Valid() bool {
	for _, known := range LiturgicalSeasons {
		if s == known {
			return true
		}
	}
	return false
}

// Event is a parish calendar entry. Mass is set only when Kind is KindMass.
type Event struct {
	ID          int64
	Kind        Kind
	Title       string
	Description string
	EventDate   time.Time
	Location    string
	EventType   EventType
	IsPublic    bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Mass        *Mass
}

func (e Event) IsMass() bool {
	return e.Kind == KindMass && e.Mass != nil
}

type Mass struct {
	MassType         MassType
	LiturgicalSeason *LiturgicalSeason
	Readings         string
	MainCelebrantID  int64
	ConcelebrantIDs  []int64
}

type CelebrantSummary struct {
	ID                int64
	Names             string
	PriestType        string
	Email             *string
	Phone             string
	ProfilePictureURL string
}

type IntentionSummary struct {
	ID            int64
	MassID        int64
	IntentionType string
	IntentionText string
	IsPaid        bool
	RequestorName string
}

// MassView is a mass with its celebrants and intentions resolved.
type MassView struct {
	Event
	MainCelebrant CelebrantSummary
	Concelebrants []CelebrantSummary
	Intentions    []IntentionSummary
}

type ListFilter struct {
	Kind            Kind
	StartDate       *time.Time
	EndDate         *time.Time
	EventType       EventType
	MassType        MassType
	MainCelebrantID int64
	PublicOnly      bool
	Year            int
	Month           int
}

type MassFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Date      *time.Time
	MassType  MassType
	PriestID  int64
}

type EventFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	EventType  EventType
	Year       int
	Month      int
	PublicOnly bool
}

type MassInput struct {
	Title            string
	Description      string
	EventDate        time.Time
	Location         string
	IsPublic         bool
	ImageURL         string
	MassType         MassType
	LiturgicalSeason *LiturgicalSeason
	Readings         string
	MainCelebrantID  int64
	ConcelebrantIDs  []int64
}

type EventInput struct {
	Title       string
	Description string
	EventDate   time.Time
	Location    string
	EventType   EventType
	IsPublic    bool
	ImageURL    string
}
