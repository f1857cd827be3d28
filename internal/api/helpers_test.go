package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/config"
	"leadgen-dashboard/internal/database"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/models"
	"leadgen-dashboard/internal/session"
	"leadgen-dashboard/internal/wizard"
)

type recordedEvent struct {
	Type string
	Data interface{}
}

type recordingHub struct {
	mu     sync.Mutex
	events []recordedEvent
	// onEvent, when set, runs after each event is recorded.
	onEvent func(recordedEvent)
}

func (h *recordingHub) BroadcastEvent(eventType string, data interface{}) {
	h.mu.Lock()
	e := recordedEvent{Type: eventType, Data: data}
	h.events = append(h.events, e)
	hook := h.onEvent
	h.mu.Unlock()

	if hook != nil {
		hook(e)
	}
}

func (h *recordingHub) count(eventType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	repo   *database.GormRepository
	hub    *recordingHub
	spaces *Workspaces
	admin  models.Admin
	token  string
}

func newTestEnv(t *testing.T, trigger wizard.Trigger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Backend: config.BackendSQLite,
		Path:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.NewTestLogger(t)
	repo := database.NewGormRepository(db)
	sessions := session.NewStore(rdb, time.Hour)
	hub := &recordingHub{}
	spaces := NewWorkspaces(trigger, hub, time.Minute)
	t.Cleanup(spaces.Close)

	admin := models.Admin{ID: uuid.New(), Email: "ops@example.com", Name: "Ops", Role: "admin"}
	require.NoError(t, db.Create(&admin).Error)
	sess, err := sessions.Create(context.Background(), admin)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		Repo:       repo,
		Sessions:   sessions,
		Workspaces: spaces,
		Cache:      analytics.NewCache(rdb, time.Minute, log),
		Log:        log,
	})

	return &testEnv{
		router: router,
		db:     db,
		repo:   repo,
		hub:    hub,
		spaces: spaces,
		admin:  admin,
		token:  sess.Token,
	}
}

// do sends an authenticated request. body is JSON encoded unless nil.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, e.token, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// seedLocations creates Pakistan > Lahore > Gulberg.
func (e *testEnv) seedLocations(t *testing.T) (models.Country, models.City, models.Area) {
	t.Helper()
	ctx := context.Background()
	country := models.Country{Name: "Pakistan", ISOCode: "PK"}
	require.NoError(t, e.repo.CreateCountry(ctx, &country))
	city := models.City{Name: "Lahore", CountryID: country.ID}
	require.NoError(t, e.repo.CreateCity(ctx, &city))
	area := models.Area{Name: "Gulberg", CityID: city.ID}
	require.NoError(t, e.repo.CreateArea(ctx, &area))
	return country, city, area
}
