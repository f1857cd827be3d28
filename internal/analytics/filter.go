package analytics

import (
	"fmt"
	"strings"
	"time"

	"leadgen-dashboard/internal/models"
)

// Window is a named time range ending now.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow accepts the window names; an empty string means all.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowAll, nil
	case WindowToday, WindowWeek, WindowMonth, WindowAll:
		return w, nil
	}
	return "", fmt.Errorf("unknown time window %q", s)
}

// Start returns the inclusive lower bound of w, or nil for WindowAll.
// Today starts at midnight in now's location.
func (w Window) Start(now time.Time) *time.Time {
	var t time.Time
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		t = now.Add(-7 * 24 * time.Hour)
	case WindowMonth:
		t = now.Add(-30 * 24 * time.Hour)
	default:
		return nil
	}
	return &t
}

type InteractionFilter struct {
	Action string
	Window Window
	Search string
}

// FilterInteractions keeps the interactions matching every set field of f.
// Search matches the business name and the string values of details,
// ignoring case.
func FilterInteractions(interactions []models.BusinessInteraction, f InteractionFilter, now time.Time) []models.BusinessInteraction {
	start := f.Window.Start(now)
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.BusinessInteraction, 0, len(interactions))
	for _, i := range interactions {
		if f.Action != "" && string(i.Action) != f.Action {
			continue
		}
		if start != nil && i.Timestamp.Before(*start) {
			continue
		}
		if needle != "" && !interactionMatches(i, needle) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func interactionMatches(i models.BusinessInteraction, needle string) bool {
	if i.Business != nil && strings.Contains(strings.ToLower(i.Business.Name), needle) {
		return true
	}
	for _, v := range i.Details {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
