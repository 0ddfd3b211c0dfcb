package membership

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordStatus marks whether a record is active. It is distinct from soft deletion.
type RecordStatus string

const (
	// StatusActive flags a live record.
	StatusActive RecordStatus = "active"
	// StatusInactive flags a record taken out of circulation.
	StatusInactive RecordStatus = "inactive"
)

// Active reports whether the status is explicitly active. An empty status
// is not active.
func (s RecordStatus) Active() bool {
	return s == StatusActive
}

// Gender enumerates the genders tracked on a person.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// MaritalStatus enumerates civil states.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalWidowed  MaritalStatus = "widowed"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalOther    MaritalStatus = "other"
)

// Church is either a main congregation or an anexe (branch).
type Church struct {
	ID                    uuid.UUID
	ChurchName            string
	AbbreviatedChurchName string
	IsAnexe               bool
	District              string
	UrbanSector           string
	RecordStatus          RecordStatus
}

// Leader is the lightweight reference a record keeps to a person above it.
type Leader struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
}

// FullName joins first and last names. A nil leader yields an empty string.
func (l *Leader) FullName() string {
	if l == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(l.FirstName) + " " + strings.TrimSpace(l.LastName))
}

// Zone groups copastor/supervisor leadership with their family groups.
type Zone struct {
	ID           uuid.UUID
	ZoneName     string
	Department   string
	Province     string
	District     string
	RecordStatus RecordStatus
	Copastor     *Leader
	Supervisor   *Leader
	Church       *Church
}

// FamilyGroup is a home cell led by a preacher.
type FamilyGroup struct {
	ID              uuid.UUID
	FamilyGroupName string
	FamilyGroupCode string
	ServiceTime     string
	District        string
	UrbanSector     string
	Address         string
	RecordStatus    RecordStatus
	CreatedAt       time.Time
	InactivatedAt   *time.Time
	Disciples       []Member
	Preacher        *Leader
	Supervisor      *Leader
	Copastor        *Leader
	Zone            *Zone
	Church          *Church
}

// Person is the personal data carried by every member record.
type Person struct {
	FirstNames     string
	LastNames      string
	Gender         Gender
	BirthDate      time.Time
	Age            *int
	MaritalStatus  MaritalStatus
	Country        string
	Department     string
	Province       string
	District       string
	UrbanSector    string
	Address        string
	ConversionDate *time.Time
}

// FullName returns "first last" trimmed.
func (p Person) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstNames) + " " + strings.TrimSpace(p.LastNames))
}

// Member is a person holding one or more ministry roles.
type Member struct {
	ID            uuid.UUID
	Person        Person
	Roles         RoleSet
	RecordStatus  RecordStatus
	CreatedAt     time.Time
	InactivatedAt *time.Time
	Church        *Church
	Zone          *Zone
	FamilyGroup   *FamilyGroup
	Pastor        *Leader
	Copastor      *Leader
	Supervisor    *Leader
	Preacher      *Leader
}

// Active reports whether the member record status is active.
func (m Member) Active() bool {
	return m.RecordStatus.Active()
}
