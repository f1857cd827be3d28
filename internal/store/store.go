// Package store defines the data access contract shared by the hosted REST
// backend and the direct database backend.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"leadgen-dashboard/internal/models"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// BusinessFilter narrows a business listing. Zero values mean "no constraint";
// all set constraints must hold.
type BusinessFilter struct {
	AreaID       int64
	Status       string
	Category     string
	Search       string // case-insensitive substring of name, email or phone
	CreatedSince *time.Time
	CreatedUntil *time.Time
	HasEmail     bool
	Limit        int
}

type InteractionFilter struct {
	BusinessID int64
	Action     string
	Since      *time.Time
	Until      *time.Time
	Limit      int
}

type JobFilter struct {
	AreaID int64
	Status string
	Limit  int
}

// Patch is a partial update keyed by column name.
type Patch map[string]interface{}

type Repository interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	CreateCountry(ctx context.Context, c *models.Country) error
	UpdateCountry(ctx context.Context, id int64, patch Patch) error
	DeleteCountry(ctx context.Context, id int64) error

	// ListCities returns cities of one country, or all cities when countryID is 0.
	ListCities(ctx context.Context, countryID int64) ([]models.City, error)
	CreateCity(ctx context.Context, c *models.City) error
	UpdateCity(ctx context.Context, id int64, patch Patch) error
	DeleteCity(ctx context.Context, id int64) error

	// ListAreas returns areas of one city, or all areas when cityID is 0.
	ListAreas(ctx context.Context, cityID int64) ([]models.Area, error)
	CreateArea(ctx context.Context, a *models.Area) error
	UpdateArea(ctx context.Context, id int64, patch Patch) error
	DeleteArea(ctx context.Context, id int64) error

	ListBusinesses(ctx context.Context, f BusinessFilter) ([]models.Business, error)
	UpdateBusiness(ctx context.Context, id int64, patch Patch) error

	ListInteractions(ctx context.Context, f InteractionFilter) ([]models.BusinessInteraction, error)
	CreateInteraction(ctx context.Context, i *models.BusinessInteraction) error

	ListJobs(ctx context.Context, f JobFilter) ([]models.ScrapeJob, error)

	GetAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error)
}
