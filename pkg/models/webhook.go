package models

import "encoding/json"

// Workflow actions sent to the automation webhooks.
const (
	ActionPopulateCities = "populate_cities"
	ActionPopulateAreas  = "populate_areas"
)

// PopulateCitiesRequest is posted to the cities webhook
type PopulateCitiesRequest struct {
	CountryID      int64    `json:"country_id"`
	Action         string   `json:"action"`
	ForceRefresh   bool     `json:"force_refresh"`
	TargetKeywords []string `json:"target_keywords"`
}

// PopulateAreasRequest is posted to the areas webhook
type PopulateAreasRequest struct {
	CityID int64  `json:"city_id"`
	Action string `json:"action"`
}

// ContextAreasRequest asks the automation for areas matching keywords.
// The mixed-case country_ID key is what the workflow expects.
type ContextAreasRequest struct {
	CountryName string   `json:"country_name"`
	CountryID   int64    `json:"country_ID"`
	CityName    string   `json:"city_name"`
	Keywords    []string `json:"keywords"`
}

// Job events announced by the scraping automation.
const (
	JobEventCreated   = "job.created"
	JobEventStarted   = "job.started"
	JobEventCompleted = "job.completed"
	JobEventFailed    = "job.failed"
)

// JobEvent is the payload of the inbound job status webhook. Job is kept raw
// and decoded by the receiver.
type JobEvent struct {
	Event string          `json:"event" binding:"required"`
	Job   json.RawMessage `json:"job" binding:"required"`
}
