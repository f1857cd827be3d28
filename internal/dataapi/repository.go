package dataapi

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/store"
)

const (
	tableCountries    = "countries"
	tableCities       = "cities"
	tableAreas        = "areas"
	tableBusinesses   = "businesses"
	tableInteractions = "business_interactions"
	tableJobs         = "scrape_jobs"
	tableAdmins       = "admins"
)

// Repository implements store.Repository over the hosted REST API.
type Repository struct {
	client *Client
}

var _ store.Repository = (*Repository)(nil)

func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) ListCountries(ctx context.Context) ([]models.Country, error) {
	var out []models.Country
	err := r.client.List(ctx, From(tableCountries).Select("*").Order("name", false), &out)
	return out, err
}

func (r *Repository) CreateCountry(ctx context.Context, c *models.Country) error {
	row := map[string]interface{}{"name": c.Name, "iso_code": c.ISOCode}
	var created []models.Country
	if err := r.client.Insert(ctx, tableCountries, row, &created); err != nil {
		return err
	}
	if len(created) == 0 {
		return fmt.Errorf("create country: empty representation")
	}
	*c = created[0]
	return nil
}

func (r *Repository) UpdateCountry(ctx context.Context, id int64, patch store.Patch) error {
	return r.client.Update(ctx, tableCountries, id, patch)
}

func (r *Repository) DeleteCountry(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, tableCountries, id)
}

func (r *Repository) ListCities(ctx context.Context, countryID int64) ([]models.City, error) {
	q := From(tableCities).Select("*,countries(name)").Order("name", false)
	if countryID > 0 {
		q.Eq("country_id", countryID)
	}
	var out []models.City
	err := r.client.List(ctx, q, &out)
	return out, err
}

func (r *Repository) CreateCity(ctx context.Context, c *models.City) error {
	row := map[string]interface{}{"name": c.Name, "country_id": c.CountryID}
	var created []models.City
	if err := r.client.Insert(ctx, tableCities, row, &created); err != nil {
		return err
	}
	if len(created) == 0 {
		return fmt.Errorf("create city: empty representation")
	}
	*c = created[0]
	return nil
}

func (r *Repository) UpdateCity(ctx context.Context, id int64, patch store.Patch) error {
	return r.client.Update(ctx, tableCities, id, patch)
}

func (r *Repository) DeleteCity(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, tableCities, id)
}

func (r *Repository) ListAreas(ctx context.Context, cityID int64) ([]models.Area, error) {
	q := From(tableAreas).Select("*,cities(name,countries(name))").Order("name", false)
	if cityID > 0 {
		q.Eq("city_id", cityID)
	}
	var out []models.Area
	err := r.client.List(ctx, q, &out)
	return out, err
}

func (r *Repository) CreateArea(ctx context.Context, a *models.Area) error {
	row := map[string]interface{}{"name": a.Name, "city_id": a.CityID}
	var created []models.Area
	if err := r.client.Insert(ctx, tableAreas, row, &created); err != nil {
		return err
	}
	if len(created) == 0 {
		return fmt.Errorf("create area: empty representation")
	}
	*a = created[0]
	return nil
}

func (r *Repository) UpdateArea(ctx context.Context, id int64, patch store.Patch) error {
	return r.client.Update(ctx, tableAreas, id, patch)
}

func (r *Repository) DeleteArea(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, tableAreas, id)
}

func (r *Repository) ListBusinesses(ctx context.Context, f store.BusinessFilter) ([]models.Business, error) {
	q := From(tableBusinesses).Select("*,areas(name,cities(name))")
	if f.AreaID > 0 {
		q.Eq("area_id", f.AreaID)
	}
	if f.Status != "" {
		q.Eq("status", f.Status)
	}
	if f.Category != "" {
		q.Eq("category", f.Category)
	}
	if f.Search != "" {
		q.Or(ILikeCond("name", f.Search), ILikeCond("email", f.Search), ILikeCond("phone", f.Search))
	}
	if f.CreatedSince != nil {
		q.Gte("created_at", *f.CreatedSince)
	}
	if f.CreatedUntil != nil {
		q.Lte("created_at", *f.CreatedUntil)
	}
	if f.HasEmail {
		q.NotNull("email")
	}
	q.Order("created_at", true).Limit(f.Limit)

	var out []models.Business
	err := r.client.List(ctx, q, &out)
	return out, err
}

func (r *Repository) UpdateBusiness(ctx context.Context, id int64, patch store.Patch) error {
	return r.client.Update(ctx, tableBusinesses, id, patch)
}

func (r *Repository) ListInteractions(ctx context.Context, f store.InteractionFilter) ([]models.BusinessInteraction, error) {
	q := From(tableInteractions).Select("*,businesses(name)")
	if f.BusinessID > 0 {
		q.Eq("business_id", f.BusinessID)
	}
	if f.Action != "" {
		q.Eq("action", f.Action)
	}
	if f.Since != nil {
		q.Gte("timestamp", *f.Since)
	}
	if f.Until != nil {
		q.Lte("timestamp", *f.Until)
	}
	q.Order("timestamp", true).Limit(f.Limit)

	var out []models.BusinessInteraction
	err := r.client.List(ctx, q, &out)
	return out, err
}

func (r *Repository) CreateInteraction(ctx context.Context, i *models.BusinessInteraction) error {
	details := i.Details
	if details == nil {
		details = models.JSONMap{}
	}
	row := map[string]interface{}{
		"business_id": i.BusinessID,
		"action":      i.Action,
		"details":     details,
	}
	var created []models.BusinessInteraction
	if err := r.client.Insert(ctx, tableInteractions, row, &created); err != nil {
		return err
	}
	if len(created) == 0 {
		return fmt.Errorf("create interaction: empty representation")
	}
	*i = created[0]
	return nil
}

func (r *Repository) ListJobs(ctx context.Context, f store.JobFilter) ([]models.ScrapeJob, error) {
	q := From(tableJobs).Select("*,areas(name,cities(name))")
	if f.AreaID > 0 {
		q.Eq("area_id", f.AreaID)
	}
	if f.Status != "" {
		q.Eq("status", f.Status)
	}
	q.Order("created_at", true).Limit(f.Limit)

	var out []models.ScrapeJob
	err := r.client.List(ctx, q, &out)
	return out, err
}

func (r *Repository) GetAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var out []models.Admin
	if err := r.client.List(ctx, From(tableAdmins).Select("*").Eq("id", id.String()).Limit(1), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("admin %s: %w", id, store.ErrNotFound)
	}
	return &out[0], nil
}
