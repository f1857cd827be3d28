package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadgen-dashboard/internal/analytics"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/session"
	"leadgen-dashboard/internal/store"
	"leadgen-dashboard/internal/webhook"
	"leadgen-dashboard/internal/ws"
)

// Dependencies are the collaborators shared by every handler. Cache may be
// nil, which disables overview caching.
type Dependencies struct {
	Repo       store.Repository
	Sessions   *session.Store
	Workspaces *Workspaces
	Cache      *analytics.Cache
	Hub        *ws.Hub
	Webhook    *webhook.Handler
	Log        logger.Logger
}

// CORS allows the dashboard frontend to call the API from another origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Webhook-Token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(d.Log), CORS())

	wizardHandler := NewWizardHandler(d.Repo, d.Workspaces, d.Log)
	sessionHandler := NewSessionHandler(d.Repo, d.Sessions, d.Workspaces, d.Log)
	locationHandler := NewLocationHandler(d.Repo, d.Log)
	businessHandler := NewBusinessHandler(d.Repo, d.Cache, d.Log)
	jobHandler := NewJobHandler(d.Repo)
	analyticsHandler := NewAnalyticsHandler(d.Repo, d.Cache, d.Log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			d.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	// Webhook Routes
	if d.Webhook != nil {
		r.GET("/webhook", d.Webhook.VerifyWebhook)
		r.POST("/webhook/jobs", d.Webhook.HandleJobEvent)
	}

	r.POST("/api/session", sessionHandler.Create)

	apiGroup := r.Group("/api", session.Middleware(d.Sessions))
	{
		apiGroup.GET("/session", sessionHandler.Current)
		apiGroup.DELETE("/session", sessionHandler.Delete)

		// Wizard Routes
		wizardGroup := apiGroup.Group("/wizard")
		{
			wizardGroup.GET("", wizardHandler.GetState)
			wizardGroup.POST("/country", wizardHandler.SelectCountry)
			wizardGroup.POST("/cities", wizardHandler.InitializeCities)
			wizardGroup.POST("/city", wizardHandler.SelectCity)
			wizardGroup.POST("/areas", wizardHandler.InitializeAreas)
			wizardGroup.POST("/context-areas", wizardHandler.CreateContextAreas)
			wizardGroup.POST("/back", wizardHandler.BackToCities)
			wizardGroup.POST("/reset", wizardHandler.Reset)
		}
		apiGroup.GET("/notification", wizardHandler.GetNotification)

		// Location Routes
		apiGroup.GET("/countries", locationHandler.ListCountries)
		apiGroup.POST("/countries", locationHandler.CreateCountry)
		apiGroup.PATCH("/countries/:id", locationHandler.UpdateCountry)
		apiGroup.DELETE("/countries/:id", locationHandler.DeleteCountry)
		apiGroup.GET("/cities", locationHandler.ListCities)
		apiGroup.POST("/cities", locationHandler.CreateCity)
		apiGroup.PATCH("/cities/:id", locationHandler.UpdateCity)
		apiGroup.DELETE("/cities/:id", locationHandler.DeleteCity)
		apiGroup.GET("/areas", locationHandler.ListAreas)
		apiGroup.POST("/areas", locationHandler.CreateArea)
		apiGroup.PATCH("/areas/:id", locationHandler.UpdateArea)
		apiGroup.DELETE("/areas/:id", locationHandler.DeleteArea)

		// CRM Routes
		apiGroup.GET("/businesses", businessHandler.ListBusinesses)
		apiGroup.PATCH("/businesses/:id", businessHandler.UpdateBusiness)
		apiGroup.GET("/businesses/:id/interactions", businessHandler.ListBusinessInteractions)
		apiGroup.POST("/businesses/:id/interactions", businessHandler.CreateInteraction)
		apiGroup.GET("/interactions", businessHandler.ListInteractions)
		apiGroup.GET("/interactions/summary", businessHandler.InteractionSummary)

		// Insights Routes
		apiGroup.GET("/jobs", jobHandler.ListJobs)
		apiGroup.GET("/jobs/summary", jobHandler.JobSummary)
		apiGroup.GET("/analytics/overview", analyticsHandler.Overview)
	}

	return r
}
