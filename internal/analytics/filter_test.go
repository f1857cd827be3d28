package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-dashboard/internal/models"
)

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]Window{"": WindowAll, "today": WindowToday, " Week ": WindowWeek, "month": WindowMonth, "all": WindowAll} {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseWindow("year")
	assert.Error(t, err)
}

func TestWindowStart(t *testing.T) {
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), *WindowToday.Start(now))
	assert.Equal(t, now.Add(-7*24*time.Hour), *WindowWeek.Start(now))
	assert.Equal(t, now.Add(-30*24*time.Hour), *WindowMonth.Start(now))
	assert.Nil(t, WindowAll.Start(now))
}

func TestFilterInteractions(t *testing.T) {
	aylanto := &models.Business{Name: "Cafe Aylanto"}
	interactions := []models.BusinessInteraction{
		{ID: 1, Action: models.ActionNoteAdded, Timestamp: now.Add(-time.Hour), Business: aylanto, Details: models.JSONMap{"note": "Wants a demo"}},
		{ID: 2, Action: models.ActionCallMade, Timestamp: now.Add(-2 * 24 * time.Hour), Details: models.JSONMap{"outcome": "voicemail", "duration_minutes": 1.0}},
		{ID: 3, Action: models.ActionEmailSent, Timestamp: now.Add(-20 * 24 * time.Hour), Details: models.JSONMap{"subject": "Pricing"}},
		{ID: 4, Action: models.ActionCallMade, Timestamp: now.Add(-60 * 24 * time.Hour)},
	}

	ids := func(in []models.BusinessInteraction) []int64 {
		out := []int64{}
		for _, i := range in {
			out = append(out, i.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter InteractionFilter
		want   []int64
	}{
		{"no filter", InteractionFilter{}, []int64{1, 2, 3, 4}},
		{"today", InteractionFilter{Window: WindowToday}, []int64{1}},
		{"week", InteractionFilter{Window: WindowWeek}, []int64{1, 2}},
		{"month", InteractionFilter{Window: WindowMonth}, []int64{1, 2, 3}},
		{"action", InteractionFilter{Action: "call_made"}, []int64{2, 4}},
		{"action and window", InteractionFilter{Action: "call_made", Window: WindowMonth}, []int64{2}},
		{"search business name", InteractionFilter{Search: "aylanto"}, []int64{1}},
		{"search details", InteractionFilter{Search: "PRICING"}, []int64{3}},
		{"search no match", InteractionFilter{Search: "zzz"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterInteractions(interactions, tt.filter, now)))
		})
	}
}
