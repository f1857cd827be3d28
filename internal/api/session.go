package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/session"
	"leadgen-dashboard/internal/store"
)

type SessionHandler struct {
	repo       store.Repository
	sessions   *session.Store
	workspaces *Workspaces
	log        logger.Logger
}

func NewSessionHandler(repo store.Repository, sessions *session.Store, workspaces *Workspaces, log logger.Logger) *SessionHandler {
	return &SessionHandler{repo: repo, sessions: sessions, workspaces: workspaces, log: log}
}

type CreateSessionRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
}

// Create signs in a known admin and returns the bearer token.
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id, err := uuid.Parse(req.AdminID)
	if err != nil {
		badRequest(c, err)
		return
	}

	admin, err := h.repo.GetAdmin(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown admin", "kind": "unauthenticated"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), *admin)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("admin signed in", map[string]interface{}{"admin_id": admin.ID.String(), "email": admin.Email})
	c.JSON(http.StatusCreated, sess)
}

func (h *SessionHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, session.FromContext(c.Request.Context()))
}

// Delete logs out and discards the admin's wizard progress.
func (h *SessionHandler) Delete(c *gin.Context) {
	sess := session.FromContext(c.Request.Context())
	if err := h.sessions.Delete(c.Request.Context(), sess.Token); err != nil {
		respondError(c, err)
		return
	}
	h.workspaces.Drop(sess.AdminID.String())
	c.Status(http.StatusNoContent)
}
