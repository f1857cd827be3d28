package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/store"
	wire "leadgen-dashboard/pkg/models"
)

// LocationHandler manages the country, city and area hierarchy.
type LocationHandler struct {
	repo store.Repository
	log  logger.Logger
}

func NewLocationHandler(repo store.Repository, log logger.Logger) *LocationHandler {
	return &LocationHandler{repo: repo, log: log}
}

type RenameRequest struct {
	Name    *string `json:"name"`
	ISOCode *string `json:"iso_code"`
}

func (r RenameRequest) patch(withISO bool) (store.Patch, error) {
	patch := store.Patch{}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return nil, apperrors.Validation("update location", "name must not be empty")
		}
		patch["name"] = name
	}
	if withISO && r.ISOCode != nil {
		patch["iso_code"] = strings.ToUpper(strings.TrimSpace(*r.ISOCode))
	}
	if len(patch) == 0 {
		return nil, apperrors.Validation("update location", "nothing to update")
	}
	return patch, nil
}

func (h *LocationHandler) ListCountries(c *gin.Context) {
	countries, err := h.repo.ListCountries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if countries == nil {
		countries = []models.Country{}
	}
	c.JSON(http.StatusOK, countries)
}

func (h *LocationHandler) CreateCountry(c *gin.Context) {
	var req wire.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	country := models.Country{
		Name:    strings.TrimSpace(req.Name),
		ISOCode: strings.ToUpper(strings.TrimSpace(req.ISOCode)),
	}
	if err := h.repo.CreateCountry(c.Request.Context(), &country); err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("country created", map[string]interface{}{"country_id": country.ID, "name": country.Name})
	c.JSON(http.StatusCreated, country)
}

func (h *LocationHandler) UpdateCountry(c *gin.Context) {
	h.update(c, true, h.repo.UpdateCountry)
}

func (h *LocationHandler) DeleteCountry(c *gin.Context) {
	h.delete(c, h.repo.DeleteCountry)
}

func (h *LocationHandler) ListCities(c *gin.Context) {
	countryID, ok := queryInt64(c, "country_id")
	if !ok {
		return
	}
	cities, err := h.repo.ListCities(c.Request.Context(), countryID)
	if err != nil {
		respondError(c, err)
		return
	}
	if cities == nil {
		cities = []models.City{}
	}
	c.JSON(http.StatusOK, cities)
}

func (h *LocationHandler) CreateCity(c *gin.Context) {
	var req wire.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.CountryID <= 0 {
		badRequest(c, apperrors.Validation("create city", "country_id is required"))
		return
	}

	city := models.City{Name: strings.TrimSpace(req.Name), CountryID: req.CountryID}
	if err := h.repo.CreateCity(c.Request.Context(), &city); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

func (h *LocationHandler) UpdateCity(c *gin.Context) {
	h.update(c, false, h.repo.UpdateCity)
}

func (h *LocationHandler) DeleteCity(c *gin.Context) {
	h.delete(c, h.repo.DeleteCity)
}

func (h *LocationHandler) ListAreas(c *gin.Context) {
	cityID, ok := queryInt64(c, "city_id")
	if !ok {
		return
	}
	areas, err := h.repo.ListAreas(c.Request.Context(), cityID)
	if err != nil {
		respondError(c, err)
		return
	}
	if areas == nil {
		areas = []models.Area{}
	}
	c.JSON(http.StatusOK, areas)
}

func (h *LocationHandler) CreateArea(c *gin.Context) {
	var req wire.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.CityID <= 0 {
		badRequest(c, apperrors.Validation("create area", "city_id is required"))
		return
	}

	area := models.Area{Name: strings.TrimSpace(req.Name), CityID: req.CityID}
	if err := h.repo.CreateArea(c.Request.Context(), &area); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

func (h *LocationHandler) UpdateArea(c *gin.Context) {
	h.update(c, false, h.repo.UpdateArea)
}

func (h *LocationHandler) DeleteArea(c *gin.Context) {
	h.delete(c, h.repo.DeleteArea)
}

func (h *LocationHandler) update(c *gin.Context, withISO bool, apply func(ctx context.Context, id int64, patch store.Patch) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch, err := req.patch(withISO)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := apply(c.Request.Context(), id, patch); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *LocationHandler) delete(c *gin.Context, remove func(ctx context.Context, id int64) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
