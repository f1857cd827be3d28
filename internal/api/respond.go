package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/session"
	"leadgen-dashboard/internal/store"
	"leadgen-dashboard/internal/wizard"
)

var wizardGuards = []error{
	wizard.ErrNoCountrySelected,
	wizard.ErrNoCitySelected,
	wizard.ErrUnknownCity,
	wizard.ErrWrongStep,
	wizard.ErrBusy,
	wizard.ErrSuperseded,
}

// classify maps err to the HTTP status and error kind reported to the client.
func classify(err error) (int, string) {
	for _, guard := range wizardGuards {
		if errors.Is(err, guard) {
			return http.StatusConflict, "conflict"
		}
	}
	switch {
	case errors.Is(err, wizard.ErrNoKeywords):
		return http.StatusBadRequest, string(apperrors.KindValidation)
	case errors.Is(err, wizard.ErrNoDataReceived):
		return http.StatusBadGateway, "no_data"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, string(apperrors.KindNotFound)
	case errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized, "unauthenticated"
	}
	return apperrors.HTTPStatus(err), string(apperrors.KindOf(err))
}

func respondError(c *gin.Context, err error) {
	status, kind := classify(err)
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": string(apperrors.KindValidation)})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, apperrors.Validation("parse id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional integer query parameter; zero means unset.
func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		badRequest(c, apperrors.Validation("parse query", "%s must be a non-negative integer", name))
		return 0, false
	}
	return v, true
}
