package faithful

import "time"

type Faithful struct {
	ID            int64  `gorm:"primaryKey"`
	FirstName     string `gorm:"column:firstname;size:100;not null"`
	Name          string `gorm:"size:100;not null"`
	FatherName    string `gorm:"size:100"`
	MotherName    string `gorm:"size:100"`
	GodparentName string `gorm:"size:100"`

	DateOfBirth     *time.Time `gorm:"type:date"`
	DateOfBaptism   *time.Time `gorm:"type:date"`
	BaptismID       *string    `gorm:"size:50"`
	BaptismMinister string     `gorm:"size:100"`

	DateOfFirstCommunion *time.Time `gorm:"type:date"`

	DateOfConfirmation *time.Time `gorm:"type:date"`
	ConfirmationID     *string    `gorm:"size:50"`

	DateOfMatrimony *time.Time `gorm:"type:date"`
	MatrimonyID     *string    `gorm:"size:50"`
	SpouseName      string     `gorm:"size:100"`
	SpouseBaptismID *string    `gorm:"size:50"`

	HasDiaconate     bool
	DateOfDiaconate  *time.Time `gorm:"type:date"`
	HasPriesthood    bool
	DateOfPriesthood *time.Time `gorm:"type:date"`
	HasEpiscopate    bool
	DateOfEpiscopate *time.Time `gorm:"type:date"`

	CongregationName        string     `gorm:"size:150"`
	HasTemporalProfession   bool
	DateTemporalProfession  *time.Time `gorm:"type:date"`
	HasPermanentProfession  bool
	DatePermanentProfession *time.Time `gorm:"type:date"`

	OtherMinistryDetails string

	HasRelocated  bool
	NewParishName string `gorm:"size:150"`
	IsDeceased    bool
	DateOfDeath   *time.Time `gorm:"type:date"`

	Diocese                 string `gorm:"size:100"`
	Parish                  string `gorm:"size:100;index"`
	Subparish               string `gorm:"size:100;index"`
	BasicEcclesialCommunity string `gorm:"size:100"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Faithful) TableName() string {
	return "faithfuls"
}

// HasAllSacraments reports whether baptism, first communion and confirmation
// are all recorded.
func (f Faithful) HasAllSacraments() bool {
	return f.DateOfBaptism != nil && f.DateOfFirstCommunion != nil && f.DateOfConfirmation != nil
}

func (f Faithful) FullName() string {
	if f.FirstName == "" {
		return f.Name
	}
	return f.FirstName + " " + f.Name
}

type Ministry struct {
	ID           int64  `gorm:"primaryKey"`
	FaithfulID   int64  `gorm:"index;not null"`
	MinistryType string `gorm:"size:50;not null"`
}

type LapseEvent struct {
	ID          int64      `gorm:"primaryKey"`
	FaithfulID  int64      `gorm:"index;not null"`
	LapseType   string     `gorm:"size:100;not null"`
	LapseDate   *time.Time `gorm:"type:date"`
	LapseReason string     `gorm:"size:500"`
	ReturnDate  *time.Time `gorm:"type:date"`
}

// Record is a faithful together with the child rows it owns.
type Record struct {
	Faithful
	Ministries  []Ministry
	LapseEvents []LapseEvent
}

type TerritoryLevel string

const (
	LevelParish    TerritoryLevel = "parish"
	LevelSubparish TerritoryLevel = "subparish"
	LevelBEC       TerritoryLevel = "basic_ecclesial_community"
)

type TerritoryCount struct {
	Name  string `gorm:"column:name"`
	Count int64  `gorm:"column:count"`
}

// ListFilter combines the registry filters. Zero values are ignored.
type ListFilter struct {
	Name          string
	NameContains  string
	Parish        string
	Subparish     string
	BEC           string
	BornFrom      *time.Time
	BornTo        *time.Time
	Relocated     *bool
	Deceased      *bool
	AllSacraments bool
}

type LapseInput struct {
	LapseType   string
	LapseDate   *time.Time
	LapseReason string
	ReturnDate  *time.Time
}

// Input carries every writable field. It is used for create and for the
// full-record update.
type Input struct {
	FirstName     string
	Name          string
	FatherName    string
	MotherName    string
	GodparentName string

	DateOfBirth     *time.Time
	DateOfBaptism   *time.Time
	BaptismID       *string
	BaptismMinister string

	DateOfFirstCommunion *time.Time

	DateOfConfirmation *time.Time
	ConfirmationID     *string

	DateOfMatrimony *time.Time
	MatrimonyID     *string
	SpouseName      string
	SpouseBaptismID *string

	HasDiaconate     bool
	DateOfDiaconate  *time.Time
	HasPriesthood    bool
	DateOfPriesthood *time.Time
	HasEpiscopate    bool
	DateOfEpiscopate *time.Time

	CongregationName        string
	HasTemporalProfession   bool
	DateTemporalProfession  *time.Time
	HasPermanentProfession  bool
	DatePermanentProfession *time.Time

	Ministries           []string
	OtherMinistryDetails string
	LapseHistory         []LapseInput

	HasRelocated  bool
	NewParishName string
	IsDeceased    bool
	DateOfDeath   *time.Time

	Diocese                 string
	Parish                  string
	Subparish               string
	BasicEcclesialCommunity string
}

// SacramentInfo is the sacrament-focused view of a faithful.
type SacramentInfo struct {
	ID                      int64
	FirstName               string
	Name                    string
	FatherName              string
	MotherName              string
	GodparentName           string
	DateOfBirth             *time.Time
	Diocese                 string
	Parish                  string
	Subparish               string
	BasicEcclesialCommunity string

	DateOfBaptism        *time.Time
	BaptismID            *string
	BaptismMinister      string
	DateOfFirstCommunion *time.Time
	DateOfConfirmation   *time.Time
	ConfirmationID       *string
	DateOfMatrimony      *time.Time
	MatrimonyID          *string
	SpouseName           string
	HasAllSacraments     bool
}
