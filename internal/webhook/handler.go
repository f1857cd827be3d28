package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/ws"
	wire "leadgen-dashboard/pkg/models"
)

// TokenHeader carries the shared secret on job callbacks.
const TokenHeader = "X-Webhook-Token"

type Broadcaster interface {
	BroadcastEvent(eventType string, data interface{})
}

type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Handler receives job status callbacks from the scraping automation. Job
// rows are written by the automation itself; callbacks only fan out.
type Handler struct {
	verifyToken string
	hub         Broadcaster
	cache       Invalidator
	log         logger.Logger
}

func NewHandler(verifyToken string, hub Broadcaster, cache Invalidator, log logger.Logger) *Handler {
	return &Handler{verifyToken: verifyToken, hub: hub, cache: cache, log: log}
}

// JobUpdate is broadcast to dashboards for each accepted callback.
type JobUpdate struct {
	Event string           `json:"event"`
	Job   models.ScrapeJob `json:"job"`
}

// VerifyWebhook answers the subscription handshake.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	if mode == "subscribe" && h.tokenMatches(token) {
		h.log.Info("webhook verified", nil)
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

// HandleJobEvent accepts one job status change.
func (h *Handler) HandleJobEvent(c *gin.Context) {
	if !h.tokenMatches(c.GetHeader(TokenHeader)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook token", "kind": "unauthenticated"})
		return
	}

	var payload wire.JobEvent
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}
	switch payload.Event {
	case wire.JobEventCreated, wire.JobEventStarted, wire.JobEventCompleted, wire.JobEventFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event " + payload.Event, "kind": "validation"})
		return
	}

	var job models.ScrapeJob
	if err := json.Unmarshal(payload.Job, &job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job: " + err.Error(), "kind": "validation"})
		return
	}

	h.log.Info("job event received", map[string]interface{}{
		"event":  payload.Event,
		"job_id": job.ID,
		"status": job.Status,
	})
	h.hub.BroadcastEvent(ws.EventJobUpdate, JobUpdate{Event: payload.Event, Job: job})
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context())
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *Handler) tokenMatches(token string) bool {
	if h.verifyToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) == 1
}
