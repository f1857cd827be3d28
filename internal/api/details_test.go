package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/models"
)

func TestNormalizeDetails(t *testing.T) {
	tests := []struct {
		name    string
		action  models.InteractionAction
		details map[string]interface{}
		want    models.JSONMap
		wantErr string
	}{
		{
			name:    "note keeps only known fields",
			action:  models.ActionNoteAdded,
			details: map[string]interface{}{"note": "left voicemail", "color": "red"},
			want:    models.JSONMap{"note": "left voicemail"},
		},
		{
			name:    "blank note",
			action:  models.ActionNoteAdded,
			details: map[string]interface{}{"note": "   "},
			wantErr: "invalid note_added details",
		},
		{
			name:    "call with duration",
			action:  models.ActionCallMade,
			details: map[string]interface{}{"outcome": "no answer", "duration_minutes": 2},
			want:    models.JSONMap{"outcome": "no answer", "duration_minutes": float64(2)},
		},
		{
			name:    "negative duration",
			action:  models.ActionCallMade,
			details: map[string]interface{}{"outcome": "no answer", "duration_minutes": -1},
			wantErr: "duration_minutes",
		},
		{
			name:    "email needs subject",
			action:  models.ActionEmailSent,
			details: map[string]interface{}{"to": "owner@example.com"},
			wantErr: "subject",
		},
		{
			name:    "missing details",
			action:  models.ActionEmailSent,
			details: nil,
			wantErr: "invalid email_sent details",
		},
		{
			name:    "unknown action",
			action:  "fax_sent",
			details: map[string]interface{}{},
			wantErr: "unknown action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDetails(tt.action, tt.details)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
