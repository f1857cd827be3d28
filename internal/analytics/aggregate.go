// Package analytics computes dashboard statistics from flat record lists.
// Every function is pure: inputs are never modified and malformed records are
// counted under their literal values instead of failing.
package analytics

import (
	"math"
	"sort"
	"time"

	"leadgen-dashboard/internal/models"
)

// DefaultTopLimit is the number of entries in top-N rankings.
const DefaultTopLimit = 8

// RecentWindow is the trailing window counted as recent.
const RecentWindow = 7 * 24 * time.Hour

type BusinessStats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"by_status"`
	ByContactStatus map[string]int `json:"by_contact_status"`
	RecentCount     int            `json:"recent_count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type InteractionSummary struct {
	Total  int `json:"total"`
	Notes  int `json:"notes"`
	Calls  int `json:"calls"`
	Emails int `json:"emails"`
}

type JobSummary struct {
	Total                int `json:"total"`
	Pending              int `json:"pending"`
	Running              int `json:"running"`
	Completed            int `json:"completed"`
	Failed               int `json:"failed"`
	AvgProcessingSeconds int `json:"avg_processing_seconds"`
	TotalBusinessesFound int `json:"total_businesses_found"`
}

// ComputeBusinessStats counts businesses by status and contact status and
// how many were created within RecentWindow before now.
func ComputeBusinessStats(businesses []models.Business, now time.Time) BusinessStats {
	stats := BusinessStats{
		Total:           len(businesses),
		ByStatus:        map[string]int{},
		ByContactStatus: map[string]int{},
	}
	cutoff := now.Add(-RecentWindow)
	for _, b := range businesses {
		stats.ByStatus[string(b.Status)]++
		stats.ByContactStatus[b.ContactStatus]++
		if !b.CreatedAt.IsZero() && !b.CreatedAt.Before(cutoff) {
			stats.RecentCount++
		}
	}
	return stats
}

// ComputeTopCategories ranks non-empty categories by count. Ties keep the
// order in which categories first appear.
func ComputeTopCategories(businesses []models.Business, limit int) []CategoryCount {
	keys := make([]string, 0, len(businesses))
	for _, b := range businesses {
		keys = append(keys, b.Category)
	}
	ranked := rank(keys, limit)

	out := make([]CategoryCount, len(ranked))
	for i, r := range ranked {
		out[i] = CategoryCount{Category: r.key, Count: r.count}
	}
	return out
}

// ComputeTopLocations ranks "{city} • {area}" labels. Businesses without a
// city name are skipped; the area part is omitted when the area has no name.
func ComputeTopLocations(businesses []models.Business, limit int) []LocationCount {
	keys := make([]string, 0, len(businesses))
	for _, b := range businesses {
		keys = append(keys, LocationLabel(b))
	}
	ranked := rank(keys, limit)

	out := make([]LocationCount, len(ranked))
	for i, r := range ranked {
		out[i] = LocationCount{Location: r.key, Count: r.count}
	}
	return out
}

// LocationLabel formats a business location, or "" when the city is unknown.
func LocationLabel(b models.Business) string {
	city := b.CityName()
	if city == "" {
		return ""
	}
	if area := b.AreaName(); area != "" {
		return city + " • " + area
	}
	return city
}

func ComputeInteractionSummary(interactions []models.BusinessInteraction) InteractionSummary {
	s := InteractionSummary{Total: len(interactions)}
	for _, i := range interactions {
		switch i.Action {
		case models.ActionNoteAdded:
			s.Notes++
		case models.ActionCallMade:
			s.Calls++
		case models.ActionEmailSent:
			s.Emails++
		}
	}
	return s
}

// ComputeJobSummary counts jobs by status. The average processing time is
// the rounded sum of known processing times divided by the number of all
// jobs, so jobs without a time pull the average down.
func ComputeJobSummary(jobs []models.ScrapeJob) JobSummary {
	s := JobSummary{Total: len(jobs)}
	var totalSeconds float64
	for _, j := range jobs {
		switch j.Status {
		case models.JobPending:
			s.Pending++
		case models.JobRunning:
			s.Running++
		case models.JobCompleted:
			s.Completed++
		case models.JobFailed:
			s.Failed++
		}
		if j.ProcessingTimeSeconds != nil {
			totalSeconds += *j.ProcessingTimeSeconds
		}
		s.TotalBusinessesFound += j.BusinessesFound
	}
	if s.Total > 0 {
		s.AvgProcessingSeconds = int(math.Round(totalSeconds / float64(s.Total)))
	}
	return s
}

// Percent returns numerator/denominator as a rounded percentage in [0, 100].
// A zero denominator yields 0.
func Percent(numerator, denominator int) int {
	if denominator <= 0 || numerator <= 0 {
		return 0
	}
	p := int(math.Round(float64(numerator) * 100 / float64(denominator)))
	if p > 100 {
		return 100
	}
	return p
}

type ranked struct {
	key   string
	count int
}

// rank counts non-empty keys and returns the top limit by count, ties broken
// by first appearance.
func rank(keys []string, limit int) []ranked {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	index := map[string]int{}
	var out []ranked
	for _, k := range keys {
		if k == "" {
			continue
		}
		if pos, ok := index[k]; ok {
			out[pos].count++
			continue
		}
		index[k] = len(out)
		out = append(out, ranked{key: k, count: 1})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].count > out[b].count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
