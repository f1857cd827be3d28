package analytics

import (
	"time"

	"leadgen-dashboard/internal/models"
)

// Overview is everything the analytics page shows.
type Overview struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	Businesses     BusinessStats      `json:"businesses"`
	TopCategories  []CategoryCount    `json:"top_categories"`
	TopLocations   []LocationCount    `json:"top_locations"`
	Interactions   InteractionSummary `json:"interactions"`
	Jobs           JobSummary         `json:"jobs"`
	ContactRate    int                `json:"contact_rate"`
	QualifiedRate  int                `json:"qualified_rate"`
	JobSuccessRate int                `json:"job_success_rate"`
}

func BuildOverview(businesses []models.Business, interactions []models.BusinessInteraction, jobs []models.ScrapeJob, now time.Time) Overview {
	stats := ComputeBusinessStats(businesses, now)
	jobSummary := ComputeJobSummary(jobs)

	contacted := stats.Total - stats.ByStatus[string(models.StatusNew)]
	qualified := stats.ByStatus[string(models.StatusQualified)] + stats.ByStatus[string(models.StatusClosed)]

	return Overview{
		GeneratedAt:    now,
		Businesses:     stats,
		TopCategories:  ComputeTopCategories(businesses, DefaultTopLimit),
		TopLocations:   ComputeTopLocations(businesses, DefaultTopLimit),
		Interactions:   ComputeInteractionSummary(interactions),
		Jobs:           jobSummary,
		ContactRate:    Percent(contacted, stats.Total),
		QualifiedRate:  Percent(qualified, stats.Total),
		JobSuccessRate: Percent(jobSummary.Completed, jobSummary.Total),
	}
}
