package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/store"
	wire "leadgen-dashboard/pkg/models"
)

// BusinessHandler serves the lead list and its CRM log.
type BusinessHandler struct {
	repo  store.Repository
	cache *analytics.Cache
	log   logger.Logger
	now   func() time.Time
}

func NewBusinessHandler(repo store.Repository, cache *analytics.Cache, log logger.Logger) *BusinessHandler {
	return &BusinessHandler{repo: repo, cache: cache, log: log, now: time.Now}
}

func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	f, err := parseBusinessFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	businesses, err := h.repo.ListBusinesses(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	if businesses == nil {
		businesses = []models.Business{}
	}
	c.JSON(http.StatusOK, businesses)
}

func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req wire.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	patch := store.Patch{}
	if req.Status != nil {
		status := models.BusinessStatus(*req.Status)
		if !status.Valid() {
			respondError(c, apperrors.Validation("update business", "unknown status %q", *req.Status))
			return
		}
		patch["status"] = string(status)
	}
	if req.ContactStatus != nil {
		patch["contact_status"] = *req.ContactStatus
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}
	if len(patch) == 0 {
		respondError(c, apperrors.Validation("update business", "nothing to update"))
		return
	}

	if err := h.repo.UpdateBusiness(c.Request.Context(), id, patch); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *BusinessHandler) ListBusinessInteractions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	interactions, err := h.repo.ListInteractions(c.Request.Context(), store.InteractionFilter{BusinessID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	if interactions == nil {
		interactions = []models.BusinessInteraction{}
	}
	c.JSON(http.StatusOK, interactions)
}

// CreateInteraction appends to the business's CRM log. Calls and emails also
// stamp last_contacted_at.
func (h *BusinessHandler) CreateInteraction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req wire.CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	action := models.InteractionAction(req.Action)
	details, err := normalizeDetails(action, req.Details)
	if err != nil {
		respondError(c, err)
		return
	}

	interaction := models.BusinessInteraction{
		BusinessID: id,
		Action:     action,
		Details:    details,
	}
	if err := h.repo.CreateInteraction(c.Request.Context(), &interaction); err != nil {
		respondError(c, err)
		return
	}

	if action == models.ActionCallMade || action == models.ActionEmailSent {
		patch := store.Patch{"last_contacted_at": h.now()}
		if err := h.repo.UpdateBusiness(c.Request.Context(), id, patch); err != nil {
			h.log.Warn("failed to stamp last contact", map[string]interface{}{"business_id": id, "error": err.Error()})
		}
	}
	h.cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, interaction)
}

// ListInteractions filters the whole CRM log by action, time window and a
// free-text search.
func (h *BusinessHandler) ListInteractions(c *gin.Context) {
	window, err := analytics.ParseWindow(c.Query("window"))
	if err != nil {
		badRequest(c, err)
		return
	}
	action := c.Query("action")
	if action != "" && !models.InteractionAction(action).Valid() {
		respondError(c, apperrors.Validation("list interactions", "unknown action %q", action))
		return
	}

	now := h.now()
	interactions, err := h.repo.ListInteractions(c.Request.Context(), store.InteractionFilter{
		Action: action,
		Since:  window.Start(now),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	out := analytics.FilterInteractions(interactions, analytics.InteractionFilter{
		Action: action,
		Window: window,
		Search: c.Query("search"),
	}, now)
	if out == nil {
		out = []models.BusinessInteraction{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *BusinessHandler) InteractionSummary(c *gin.Context) {
	interactions, err := h.repo.ListInteractions(c.Request.Context(), store.InteractionFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.ComputeInteractionSummary(interactions))
}

func parseBusinessFilter(c *gin.Context) (store.BusinessFilter, error) {
	const op = "list businesses"
	var f store.BusinessFilter

	if raw := c.Query("area_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, apperrors.Validation(op, "area_id must be an integer")
		}
		f.AreaID = id
	}
	if raw := c.Query("status"); raw != "" {
		if !models.BusinessStatus(raw).Valid() {
			return f, apperrors.Validation(op, "unknown status %q", raw)
		}
		f.Status = raw
	}
	f.Category = c.Query("category")
	f.Search = strings.TrimSpace(c.Query("search"))

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"since", &f.CreatedSince}, {"until", &f.CreatedUntil}} {
		raw := c.Query(bound.name)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			return f, apperrors.Validation(op, "%s must be RFC3339 or YYYY-MM-DD", bound.name)
		}
		*bound.dst = &t
	}

	if raw := c.Query("has_email"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperrors.Validation(op, "has_email must be a boolean")
		}
		f.HasEmail = v
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apperrors.Validation(op, "limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
