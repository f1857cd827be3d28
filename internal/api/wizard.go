package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/session"
	"leadgen-dashboard/internal/store"
	"leadgen-dashboard/internal/wizard"
)

// WizardHandler drives the calling admin's provisioning wizard. Every
// workflow outcome is also shown as a notification.
type WizardHandler struct {
	repo       store.Repository
	workspaces *Workspaces
	log        logger.Logger
}

func NewWizardHandler(repo store.Repository, workspaces *Workspaces, log logger.Logger) *WizardHandler {
	return &WizardHandler{repo: repo, workspaces: workspaces, log: log}
}

type SelectCountryRequest struct {
	CountryID int64 `json:"country_id" binding:"required"`
}

// InitializeCitiesRequest may be omitted entirely.
type InitializeCitiesRequest struct {
	ForceRefresh   bool     `json:"force_refresh"`
	TargetKeywords []string `json:"target_keywords"`
}

type SelectCityRequest struct {
	CityID int64 `json:"city_id" binding:"required"`
}

type ContextAreasRequest struct {
	Keywords []string `json:"keywords"`
}

func (h *WizardHandler) workspace(c *gin.Context) *Workspace {
	sess := session.FromContext(c.Request.Context())
	return h.workspaces.Get(sess.AdminID.String())
}

func (h *WizardHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace(c).Wizard.Snapshot())
}

func (h *WizardHandler) SelectCountry(c *gin.Context) {
	var req SelectCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	countries, err := h.repo.ListCountries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	for _, country := range countries {
		if country.ID != req.CountryID {
			continue
		}
		state, err := h.workspace(c).Wizard.SelectCountry(country)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
		return
	}
	respondError(c, fmt.Errorf("country %d: %w", req.CountryID, store.ErrNotFound))
}

func (h *WizardHandler) InitializeCities(c *gin.Context) {
	var req InitializeCitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	space := h.workspace(c)
	state, err := space.Wizard.InitializeCities(c.Request.Context(), wizard.CityOptions{
		ForceRefresh:   req.ForceRefresh,
		TargetKeywords: req.TargetKeywords,
	})
	h.finish(c, space, state, err, func(s wizard.State) string {
		return fmt.Sprintf("Loaded %d cities for %s", len(s.Cities), countryName(s))
	})
}

func (h *WizardHandler) SelectCity(c *gin.Context) {
	var req SelectCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	state, err := h.workspace(c).Wizard.SelectCity(req.CityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *WizardHandler) InitializeAreas(c *gin.Context) {
	space := h.workspace(c)
	state, err := space.Wizard.InitializeAreas(c.Request.Context())
	h.finish(c, space, state, err, func(s wizard.State) string {
		return fmt.Sprintf("Loaded %d areas for %s", len(s.Areas), s.SelectedCityName)
	})
}

func (h *WizardHandler) CreateContextAreas(c *gin.Context) {
	var req ContextAreasRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	space := h.workspace(c)
	state, err := space.Wizard.CreateContextAreas(c.Request.Context(), req.Keywords)
	h.finish(c, space, state, err, func(s wizard.State) string {
		return fmt.Sprintf("Generated %d areas for %s", len(s.Areas), s.SelectedCityName)
	})
}

func (h *WizardHandler) BackToCities(c *gin.Context) {
	state, err := h.workspace(c).Wizard.BackToCities()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *WizardHandler) Reset(c *gin.Context) {
	space := h.workspace(c)
	state := space.Wizard.Reset()
	space.Notifier.Dismiss()
	c.JSON(http.StatusOK, state)
}

func (h *WizardHandler) GetNotification(c *gin.Context) {
	n, ok := h.workspace(c).Notifier.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"notification": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// finish reports a workflow transition from the state that transition
// produced. Duplicate submissions and results discarded by a reset leave the
// notification alone.
func (h *WizardHandler) finish(c *gin.Context, space *Workspace, state wizard.State, err error, success func(wizard.State) string) {
	if err != nil {
		if !errors.Is(err, wizard.ErrBusy) && !errors.Is(err, wizard.ErrSuperseded) {
			space.Notifier.Error(err.Error())
			h.log.Warn("workflow transition failed", map[string]interface{}{
				"admin_id": space.AdminID,
				"error":    err.Error(),
			})
		}
		respondError(c, err)
		return
	}

	space.Notifier.Success(success(state))
	c.JSON(http.StatusOK, state)
}

func countryName(s wizard.State) string {
	if s.SelectedCountry == nil {
		return "the selected country"
	}
	return s.SelectedCountry.Name
}
