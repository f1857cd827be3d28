package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/store"
)

// JobHandler exposes scrape jobs read-only; the automation owns their rows.
type JobHandler struct {
	repo store.Repository
}

func NewJobHandler(repo store.Repository) *JobHandler {
	return &JobHandler{repo: repo}
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	var f store.JobFilter

	areaID, ok := queryInt64(c, "area_id")
	if !ok {
		return
	}
	f.AreaID = areaID

	if raw := c.Query("status"); raw != "" {
		switch models.JobStatus(raw) {
		case models.JobPending, models.JobRunning, models.JobCompleted, models.JobFailed:
			f.Status = raw
		default:
			respondError(c, apperrors.Validation("list jobs", "unknown status %q", raw))
			return
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, apperrors.Validation("list jobs", "limit must be a non-negative integer"))
			return
		}
		f.Limit = n
	}

	jobs, err := h.repo.ListJobs(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.ScrapeJob{}
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) JobSummary(c *gin.Context) {
	jobs, err := h.repo.ListJobs(c.Request.Context(), store.JobFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.ComputeJobSummary(jobs))
}
