package priests

import "time"

type PriestType string

const (
	TypeDiocesan   PriestType = "DIOCESAN"
	TypeReligious  PriestType = "RELIGIOUS"
	TypeExtern     PriestType = "EXTERN"
	TypeRetired    PriestType = "RETIRED"
	TypeBishop     PriestType = "BISHOP"
	TypeDeacon     PriestType = "DEACON"
	TypeSeminarian PriestType = "SEMINARIAN"
)

var PriestTypes = []PriestType{
	TypeDiocesan,
	TypeReligious,
	TypeExtern,
	TypeRetired,
	TypeBishop,
	TypeDeacon,
	TypeSeminarian,
}

func (t PriestType) Valid() bool {
	for _, known := range PriestTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Priest struct {
	ID                int64      `gorm:"primaryKey;autoIncrement:false"`
	Names             string     `gorm:"size:150;not null"`
	PriestType        PriestType `gorm:"size:20;not null"`
	OrdinationDate    *time.Time `gorm:"type:date"`
	BirthDate         *time.Time `gorm:"type:date"`
	ParishOfOrigin    string     `gorm:"size:150"`
	Email             *string    `gorm:"size:150"`
	Phone             string     `gorm:"size:30"`
	ProfilePictureURL string     `gorm:"column:profile_picture_url"`
	IsActive          bool
	IsAssigned        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ListFilter struct {
	Type         PriestType
	ActiveOnly   bool
	AssignedOnly bool
}

type Input struct {
	Names             string
	PriestType        PriestType
	OrdinationDate    *time.Time
	BirthDate         *time.Time
	ParishOfOrigin    string
	Email             *string
	Phone             string
	ProfilePictureURL string
	IsActive          bool
	IsAssigned        bool
}
