package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leadgen-dashboard/internal/models"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func biz(status models.BusinessStatus, contact, category string, created time.Time) models.Business {
	return models.Business{Status: status, ContactStatus: contact, Category: category, CreatedAt: created}
}

func located(city, area string) models.Business {
	b := models.Business{}
	if city != "" || area != "" {
		b.Area = &models.Area{Name: area}
		if city != "" {
			b.Area.City = &models.City{Name: city}
		}
	}
	return b
}

func TestComputeBusinessStats(t *testing.T) {
	businesses := []models.Business{
		biz(models.StatusNew, "not_contacted", "Cafe", now.Add(-1*time.Hour)),
		biz(models.StatusNew, "not_contacted", "Cafe", now.Add(-7*24*time.Hour)),
		biz(models.StatusContacted, "", "Gym", now.Add(-8*24*time.Hour)),
		biz("", "called", "", time.Time{}),
	}

	stats := ComputeBusinessStats(businesses, now)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[string]int{"new": 2, "contacted": 1, "": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int{"not_contacted": 2, "": 1, "called": 1}, stats.ByContactStatus)
	assert.Equal(t, 2, stats.RecentCount)
}

func TestComputeBusinessStatsEmpty(t *testing.T) {
	stats := ComputeBusinessStats(nil, now)
	assert.Equal(t, 0, stats.Total)
	assert.Empty(t, stats.ByStatus)
	assert.NotNil(t, stats.ByStatus)
	assert.Equal(t, 0, stats.RecentCount)
}

func TestComputeTopCategories(t *testing.T) {
	var businesses []models.Business
	for _, c := range []string{"Gym", "Cafe", "Cafe", "", "Salon", "Gym", "Bakery"} {
		businesses = append(businesses, models.Business{Category: c})
	}

	top := ComputeTopCategories(businesses, 0)
	assert.Equal(t, []CategoryCount{
		{Category: "Gym", Count: 2},
		{Category: "Cafe", Count: 2},
		{Category: "Salon", Count: 1},
		{Category: "Bakery", Count: 1},
	}, top)

	assert.Len(t, ComputeTopCategories(businesses, 2), 2)
	assert.Empty(t, ComputeTopCategories(nil, 8))
}

func TestComputeTopCategoriesDefaultLimit(t *testing.T) {
	var businesses []models.Business
	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		businesses = append(businesses, models.Business{Category: c})
	}
	assert.Len(t, ComputeTopCategories(businesses, 0), DefaultTopLimit)
}

func TestComputeTopLocations(t *testing.T) {
	businesses := []models.Business{
		located("Lahore", "Gulberg"),
		located("Lahore", "Gulberg"),
		located("Lahore", ""),
		located("", "Orphan Area"),
		{},
		located("Karachi", "Clifton"),
	}

	top := ComputeTopLocations(businesses, 8)
	assert.Equal(t, []LocationCount{
		{Location: "Lahore • Gulberg", Count: 2},
		{Location: "Lahore", Count: 1},
		{Location: "Karachi • Clifton", Count: 1},
	}, top)
}

func TestComputeInteractionSummary(t *testing.T) {
	interactions := []models.BusinessInteraction{
		{Action: models.ActionNoteAdded},
		{Action: models.ActionCallMade},
		{Action: models.ActionCallMade},
		{Action: models.ActionEmailSent},
		{Action: "meeting_booked"},
	}
	assert.Equal(t, InteractionSummary{Total: 5, Notes: 1, Calls: 2, Emails: 1}, ComputeInteractionSummary(interactions))
	assert.Equal(t, InteractionSummary{}, ComputeInteractionSummary(nil))
}

func TestComputeJobSummary(t *testing.T) {
	secs := func(v float64) *float64 { return &v }
	jobs := []models.ScrapeJob{
		{Status: models.JobCompleted, BusinessesFound: 10, ProcessingTimeSeconds: secs(30)},
		{Status: models.JobCompleted, BusinessesFound: 5, ProcessingTimeSeconds: secs(31)},
		{Status: models.JobFailed},
		{Status: models.JobPending},
		{Status: models.JobRunning},
	}

	s := ComputeJobSummary(jobs)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Running)
	assert.Equal(t, 15, s.TotalBusinessesFound)
	// 61 seconds over all five jobs.
	assert.Equal(t, 12, s.AvgProcessingSeconds)

	assert.Equal(t, JobSummary{}, ComputeJobSummary(nil))
}

func TestPercent(t *testing.T) {
	tests := []struct {
		n, d, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
		{7, 3, 100},
		{-1, 3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.n, tt.d), "%d/%d", tt.n, tt.d)
	}
}

func TestInputsAreNotModified(t *testing.T) {
	businesses := []models.Business{
		{Category: "Gym", Status: models.StatusNew},
		{Category: "Cafe", Status: models.StatusQualified},
		{Category: "Cafe", Status: models.StatusQualified},
	}
	before := append([]models.Business{}, businesses...)

	ComputeTopCategories(businesses, 8)
	ComputeBusinessStats(businesses, now)
	BuildOverview(businesses, nil, nil, now)

	assert.Equal(t, before, businesses)
}

func TestBuildOverview(t *testing.T) {
	secs := 20.0
	businesses := []models.Business{
		{Status: models.StatusNew, Category: "Cafe", CreatedAt: now},
		{Status: models.StatusContacted, Category: "Cafe", CreatedAt: now},
		{Status: models.StatusQualified, Category: "Gym", CreatedAt: now},
		{Status: models.StatusClosed, Category: "Gym", CreatedAt: now},
	}
	jobs := []models.ScrapeJob{
		{Status: models.JobCompleted, ProcessingTimeSeconds: &secs},
		{Status: models.JobFailed},
		{Status: models.JobCompleted},
	}
	interactions := []models.BusinessInteraction{{Action: models.ActionCallMade}}

	o := BuildOverview(businesses, interactions, jobs, now)
	assert.Equal(t, now, o.GeneratedAt)
	assert.Equal(t, 4, o.Businesses.Total)
	assert.Equal(t, 75, o.ContactRate)
	assert.Equal(t, 50, o.QualifiedRate)
	assert.Equal(t, 67, o.JobSuccessRate)
	assert.Equal(t, 1, o.Interactions.Calls)
	assert.Equal(t, 7, o.Jobs.AvgProcessingSeconds)
	assert.Len(t, o.TopCategories, 2)

	empty := BuildOverview(nil, nil, nil, now)
	assert.Equal(t, 0, empty.ContactRate)
	assert.Equal(t, 0, empty.JobSuccessRate)
}
