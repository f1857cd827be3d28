package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/store"
)

type AnalyticsHandler struct {
	repo  store.Repository
	cache *analytics.Cache
	log   logger.Logger
	now   func() time.Time
}

func NewAnalyticsHandler(repo store.Repository, cache *analytics.Cache, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, cache: cache, log: log, now: time.Now}
}

// Overview serves the cached overview, rebuilding it from the data store on
// a miss.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	if o, ok := h.cache.Get(ctx); ok {
		c.Header("X-Cache", "hit")
		c.JSON(http.StatusOK, o)
		return
	}

	businesses, err := h.repo.ListBusinesses(ctx, store.BusinessFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	interactions, err := h.repo.ListInteractions(ctx, store.InteractionFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	jobs, err := h.repo.ListJobs(ctx, store.JobFilter{})
	if err != nil {
		respondError(c, err)
		return
	}

	o := analytics.BuildOverview(businesses, interactions, jobs, h.now())
	h.cache.Set(ctx, o)
	h.log.Debug("analytics overview rebuilt", map[string]interface{}{
		"businesses":   len(businesses),
		"interactions": len(interactions),
		"jobs":         len(jobs),
	})
	c.Header("X-Cache", "miss")
	c.JSON(http.StatusOK, o)
}
