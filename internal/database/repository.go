package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/store"
)

// GormRepository implements store.Repository directly against PostgreSQL or SQLite.
type GormRepository struct {
	db *gorm.DB
}

var _ store.Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	var out []models.Country
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *GormRepository) CreateCountry(ctx context.Context, c *models.Country) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormRepository) UpdateCountry(ctx context.Context, id int64, patch store.Patch) error {
	return r.update(ctx, &models.Country{}, id, patch)
}

func (r *GormRepository) DeleteCountry(ctx context.Context, id int64) error {
	return r.delete(ctx, &models.Country{}, id)
}

func (r *GormRepository) ListCities(ctx context.Context, countryID int64) ([]models.City, error) {
	q := r.db.WithContext(ctx).Preload("Country")
	if countryID > 0 {
		q = q.Where("country_id = ?", countryID)
	}
	var out []models.City
	err := q.Order("name").Find(&out).Error
	return out, err
}

func (r *GormRepository) CreateCity(ctx context.Context, c *models.City) error {
	return r.db.WithContext(ctx).Omit("Country").Create(c).Error
}

func (r *GormRepository) UpdateCity(ctx context.Context, id int64, patch store.Patch) error {
	return r.update(ctx, &models.City{}, id, patch)
}

func (r *GormRepository) DeleteCity(ctx context.Context, id int64) error {
	return r.delete(ctx, &models.City{}, id)
}

func (r *GormRepository) ListAreas(ctx context.Context, cityID int64) ([]models.Area, error) {
	q := r.db.WithContext(ctx).Preload("City.Country")
	if cityID > 0 {
		q = q.Where("city_id = ?", cityID)
	}
	var out []models.Area
	err := q.Order("name").Find(&out).Error
	return out, err
}

func (r *GormRepository) CreateArea(ctx context.Context, a *models.Area) error {
	return r.db.WithContext(ctx).Omit("City").Create(a).Error
}

func (r *GormRepository) UpdateArea(ctx context.Context, id int64, patch store.Patch) error {
	return r.update(ctx, &models.Area{}, id, patch)
}

func (r *GormRepository) DeleteArea(ctx context.Context, id int64) error {
	return r.delete(ctx, &models.Area{}, id)
}

func (r *GormRepository) ListBusinesses(ctx context.Context, f store.BusinessFilter) ([]models.Business, error) {
	q := r.db.WithContext(ctx).Preload("Area.City")
	if f.AreaID > 0 {
		q = q.Where("area_id = ?", f.AreaID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?", like, like, like)
	}
	if f.CreatedSince != nil {
		q = q.Where("created_at >= ?", *f.CreatedSince)
	}
	if f.CreatedUntil != nil {
		q = q.Where("created_at <= ?", *f.CreatedUntil)
	}
	if f.HasEmail {
		q = q.Where("email IS NOT NULL")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.Business
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormRepository) UpdateBusiness(ctx context.Context, id int64, patch store.Patch) error {
	return r.update(ctx, &models.Business{}, id, patch)
}

func (r *GormRepository) ListInteractions(ctx context.Context, f store.InteractionFilter) ([]models.BusinessInteraction, error) {
	q := r.db.WithContext(ctx).Preload("Business")
	if f.BusinessID > 0 {
		q = q.Where("business_id = ?", f.BusinessID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Since != nil {
		q = q.Where("timestamp >= ?", *f.Since)
	}
	if f.Until != nil {
		q = q.Where("timestamp <= ?", *f.Until)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.BusinessInteraction
	err := q.Order("timestamp DESC").Find(&out).Error
	return out, err
}

func (r *GormRepository) CreateInteraction(ctx context.Context, i *models.BusinessInteraction) error {
	if i.Details == nil {
		i.Details = models.JSONMap{}
	}
	return r.db.WithContext(ctx).Omit("Business").Create(i).Error
}

func (r *GormRepository) ListJobs(ctx context.Context, f store.JobFilter) ([]models.ScrapeJob, error) {
	q := r.db.WithContext(ctx).Preload("Area.City")
	if f.AreaID > 0 {
		q = q.Where("area_id = ?", f.AreaID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.ScrapeJob
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormRepository) GetAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("admin %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormRepository) update(ctx context.Context, model interface{}, id int64, patch store.Patch) error {
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]interface{}(patch))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *GormRepository) delete(ctx context.Context, model interface{}, id int64) error {
	res := r.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %d: %w", id, store.ErrNotFound)
	}
	return nil
}
