package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type BusinessStatus string

const (
	StatusNew        BusinessStatus = "new"
	StatusContacted  BusinessStatus = "contacted"
	StatusInterested BusinessStatus = "interested"
	StatusQualified  BusinessStatus = "qualified"
	StatusClosed     BusinessStatus = "closed"
	StatusRejected   BusinessStatus = "rejected"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s BusinessStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusInterested, StatusQualified, StatusClosed, StatusRejected:
		return true
	}
	return false
}

type InteractionAction string

const (
	ActionNoteAdded InteractionAction = "note_added"
	ActionCallMade  InteractionAction = "call_made"
	ActionEmailSent InteractionAction = "email_sent"
)

func (a InteractionAction) Valid() bool {
	return a == ActionNoteAdded || a == ActionCallMade || a == ActionEmailSent
}

// Country is a top-level geographic scope for scraping
type Country struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	ISOCode         string    `gorm:"type:varchar(8)" json:"iso_code,omitempty"`
	CitiesCount     int       `gorm:"default:0" json:"cities_count"`
	CitiesPopulated bool      `gorm:"default:false" json:"cities_populated"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Country) TableName() string {
	return "countries"
}

// City belongs to a country. Country is only filled when listed with its parent.
type City struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	CountryID      int64     `gorm:"index;not null" json:"country_id"`
	AreasCount     int       `gorm:"default:0" json:"areas_count"`
	AreasPopulated bool      `gorm:"default:false" json:"areas_populated"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Country        *Country  `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE;" json:"countries,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

// Area is a neighborhood within a city. LastScrapedAt is nil until the
// first scrape finishes.
type Area struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	CityID        int64      `gorm:"index;not null" json:"city_id"`
	LastScrapedAt *time.Time `json:"last_scraped_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	City          *City      `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE;" json:"cities,omitempty"`
}

func (Area) TableName() string {
	return "areas"
}

// ScrapeJob is one scraping run for an area and keyword. Status is owned by
// the external worker.
type ScrapeJob struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	AreaID                int64      `gorm:"index" json:"area_id"`
	Keyword               string     `gorm:"type:varchar(255)" json:"keyword"`
	Status                JobStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	BusinessesFound       int        `gorm:"default:0" json:"businesses_found"`
	ProcessingTimeSeconds *float64   `json:"processing_time_seconds"`
	ErrorMessage          string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	Area                  *Area      `gorm:"foreignKey:AreaID" json:"areas,omitempty"`
}

func (ScrapeJob) TableName() string {
	return "scrape_jobs"
}

// Business is a scraped lead
type Business struct {
	ID              int64          `gorm:"primaryKey" json:"id"`
	AreaID          int64          `gorm:"index" json:"area_id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone           string         `gorm:"type:varchar(50)" json:"phone"`
	Email           *string        `gorm:"type:varchar(255)" json:"email"`
	Website         string         `gorm:"type:text" json:"website"`
	Address         string         `gorm:"type:text" json:"address"`
	Category        string         `gorm:"type:varchar(255);index" json:"category"`
	Status          BusinessStatus `gorm:"type:varchar(20);default:'new';index" json:"status"`
	ContactStatus   string         `gorm:"type:varchar(50)" json:"contact_status"`
	Rating          *float64       `json:"rating"`
	ReviewCount     int            `gorm:"default:0" json:"review_count"`
	Notes           string         `gorm:"type:text" json:"notes"`
	LastContactedAt *time.Time     `json:"last_contacted_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Area            *Area          `gorm:"foreignKey:AreaID" json:"areas,omitempty"`
}

func (Business) TableName() string {
	return "businesses"
}

// CityName returns the name of the city the business was found in, if loaded.
func (b Business) CityName() string {
	if b.Area == nil || b.Area.City == nil {
		return ""
	}
	return b.Area.City.Name
}

func (b Business) AreaName() string {
	if b.Area == nil {
		return ""
	}
	return b.Area.Name
}

// BusinessInteraction is an append-only CRM log entry
type BusinessInteraction struct {
	ID         int64             `gorm:"primaryKey" json:"id"`
	BusinessID int64             `gorm:"index;not null" json:"business_id"`
	Action     InteractionAction `gorm:"type:varchar(20);not null" json:"action"`
	Details    JSONMap           `gorm:"type:text" json:"details"`
	Timestamp  time.Time         `gorm:"autoCreateTime" json:"timestamp"`
	Business   *Business         `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE;" json:"businesses,omitempty"`
}

func (BusinessInteraction) TableName() string {
	return "business_interactions"
}

// Admin is an operator allowed to use the dashboard. The id comes from the
// identity provider.
type Admin struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Role      string    `gorm:"type:varchar(50);default:'admin'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}

// JSONMap stores a JSON object in a text column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// AllModels lists every table in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&Admin{},
		&Country{},
		&City{},
		&Area{},
		&ScrapeJob{},
		&Business{},
		&BusinessInteraction{},
	}
}
