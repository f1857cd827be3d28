package api

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/session"
)

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.doAs(t, "", http.MethodGet, "/api/countries", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.doAs(t, "", http.MethodPost, "/api/session", gin.H{"admin_id": uuid.NewString()})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.doAs(t, "", http.MethodPost, "/api/session", gin.H{"admin_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doAs(t, "", http.MethodPost, "/api/session", gin.H{"admin_id": env.admin.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess session.Session
	decode(t, w, &sess)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, env.admin.ID, sess.AdminID)

	w = env.doAs(t, sess.Token, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current session.Session
	decode(t, w, &current)
	assert.Equal(t, "ops@example.com", current.Email)

	w = env.doAs(t, sess.Token, http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.doAs(t, sess.Token, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLocationCRUD(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/countries", gin.H{"name": "Pakistan", "iso_code": "pk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var country models.Country
	decode(t, w, &country)
	assert.Equal(t, "PK", country.ISOCode)

	w = env.do(t, http.MethodPost, "/api/cities", gin.H{"name": "Lahore"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/cities", gin.H{"name": "Lahore", "country_id": country.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var city models.City
	decode(t, w, &city)

	w = env.do(t, http.MethodPost, "/api/areas", gin.H{"name": "Gulberg", "city_id": city.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/cities?country_id="+itoa(country.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cities []models.City
	decode(t, w, &cities)
	require.Len(t, cities, 1)
	require.NotNil(t, cities[0].Country)
	assert.Equal(t, "Pakistan", cities[0].Country.Name)

	w = env.do(t, http.MethodGet, "/api/cities?country_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/areas?city_id="+itoa(city.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var areas []models.Area
	decode(t, w, &areas)
	require.Len(t, areas, 1)
	assert.Equal(t, "Gulberg", areas[0].Name)

	w = env.do(t, http.MethodPatch, "/api/cities/"+itoa(city.ID), gin.H{"name": "Lahore District"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPatch, "/api/cities/"+itoa(city.ID), gin.H{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, "/api/cities/"+itoa(city.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/cities", nil)
	decode(t, w, &cities)
	require.Len(t, cities, 1)
	assert.Equal(t, "Lahore District", cities[0].Name)

	w = env.do(t, http.MethodDelete, "/api/areas/"+itoa(areas[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, "/api/areas/"+itoa(areas[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, "not_found", body.Kind)

	w = env.do(t, http.MethodDelete, "/api/areas/zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func seedBusinesses(t *testing.T, env *testEnv, areaID int64) []models.Business {
	t.Helper()
	email := "info@pizza.pk"
	businesses := []models.Business{
		{AreaID: areaID, Name: "Pizza Point", Category: "Restaurant", Status: models.StatusNew, Email: &email},
		{AreaID: areaID, Name: "Gulberg Dental", Category: "Dentist", Status: models.StatusContacted},
		{AreaID: areaID, Name: "Cafe Aylanto", Category: "Restaurant", Status: models.StatusQualified},
	}
	require.NoError(t, env.db.Create(&businesses).Error)
	return businesses
}

func TestBusinessesAndInteractions(t *testing.T) {
	env := newTestEnv(t, nil)
	_, _, area := env.seedLocations(t)
	businesses := seedBusinesses(t, env, area.ID)
	pizza := businesses[0]

	w := env.do(t, http.MethodGet, "/api/businesses?category=Restaurant", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Business
	decode(t, w, &list)
	assert.Len(t, list, 2)

	w = env.do(t, http.MethodGet, "/api/businesses?has_email=true", nil)
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Pizza Point", list[0].Name)
	assert.Equal(t, "Lahore", list[0].CityName())

	for _, query := range []string{"status=lost", "since=yesterday", "has_email=maybe", "limit=-1", "area_id=x"} {
		w = env.do(t, http.MethodGet, "/api/businesses?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}

	w = env.do(t, http.MethodPatch, "/api/businesses/"+itoa(pizza.ID), gin.H{"status": "interested", "notes": "call back monday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPatch, "/api/businesses/"+itoa(pizza.ID), gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, "/api/businesses/9999", gin.H{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	path := "/api/businesses/" + itoa(pizza.ID) + "/interactions"
	w = env.do(t, http.MethodPost, path, gin.H{"action": "note_added", "details": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPost, path, gin.H{"action": "fax_sent", "details": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, path, gin.H{"action": "note_added", "details": gin.H{"note": "Owner prefers WhatsApp"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, path, gin.H{"action": "call_made", "details": gin.H{"outcome": "interested", "duration_minutes": 4}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/businesses?search=pizza", nil)
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusInterested, list[0].Status)
	assert.Equal(t, "call back monday", list[0].Notes)
	assert.NotNil(t, list[0].LastContactedAt)

	w = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var interactions []models.BusinessInteraction
	decode(t, w, &interactions)
	assert.Len(t, interactions, 2)

	w = env.do(t, http.MethodGet, "/api/interactions?window=today&search=whatsapp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &interactions)
	require.Len(t, interactions, 1)
	assert.Equal(t, models.ActionNoteAdded, interactions[0].Action)

	w = env.do(t, http.MethodGet, "/api/interactions?action=call_made", nil)
	decode(t, w, &interactions)
	require.Len(t, interactions, 1)

	w = env.do(t, http.MethodGet, "/api/interactions?window=decade", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/api/interactions?action=fax_sent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/interactions/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary analytics.InteractionSummary
	decode(t, w, &summary)
	assert.Equal(t, analytics.InteractionSummary{Total: 2, Notes: 1, Calls: 1}, summary)
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t, nil)
	_, _, area := env.seedLocations(t)

	secs := func(v float64) *float64 { return &v }
	jobs := []models.ScrapeJob{
		{AreaID: area.ID, Keyword: "restaurants", Status: models.JobCompleted, BusinessesFound: 12, ProcessingTimeSeconds: secs(30)},
		{AreaID: area.ID, Keyword: "dentists", Status: models.JobFailed, ErrorMessage: "captcha"},
		{AreaID: area.ID, Keyword: "gyms", Status: models.JobRunning},
	}
	require.NoError(t, env.db.Create(&jobs).Error)

	w := env.do(t, http.MethodGet, "/api/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.ScrapeJob
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "restaurants", list[0].Keyword)
	require.NotNil(t, list[0].Area)
	assert.Equal(t, "Gulberg", list[0].Area.Name)

	w = env.do(t, http.MethodGet, "/api/jobs?status=stuck", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/jobs/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary analytics.JobSummary
	decode(t, w, &summary)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Running)
	assert.Equal(t, 10, summary.AvgProcessingSeconds)
	assert.Equal(t, 12, summary.TotalBusinessesFound)
}

func TestAnalyticsOverviewIsCached(t *testing.T) {
	env := newTestEnv(t, nil)
	_, _, area := env.seedLocations(t)
	businesses := seedBusinesses(t, env, area.ID)

	w := env.do(t, http.MethodGet, "/api/analytics/overview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	var overview analytics.Overview
	decode(t, w, &overview)
	assert.Equal(t, 3, overview.Businesses.Total)
	assert.Equal(t, 67, overview.ContactRate)
	assert.Equal(t, 33, overview.QualifiedRate)
	require.NotEmpty(t, overview.TopCategories)
	assert.Equal(t, "Restaurant", overview.TopCategories[0].Category)

	w = env.do(t, http.MethodGet, "/api/analytics/overview", nil)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))

	w = env.do(t, http.MethodPatch, "/api/businesses/"+itoa(businesses[0].ID), gin.H{"status": "qualified"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/analytics/overview", nil)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	decode(t, w, &overview)
	assert.Equal(t, 67, overview.QualifiedRate)
	assert.WithinDuration(t, time.Now(), overview.GeneratedAt, time.Minute)
}

func TestHealthAndCORS(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.doAs(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = env.doAs(t, "", http.MethodOptions, "/api/countries", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.doAs(t, "", http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
