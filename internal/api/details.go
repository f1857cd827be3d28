package api

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/models"
	wire "leadgen-dashboard/pkg/models"
)

var detailSchemas = map[models.InteractionAction]*gojsonschema.Schema{
	models.ActionNoteAdded: mustSchema(`{
		"type": "object",
		"required": ["note"],
		"properties": {
			"note": {"type": "string", "pattern": "\\S"}
		}
	}`),
	models.ActionCallMade: mustSchema(`{
		"type": "object",
		"required": ["outcome"],
		"properties": {
			"outcome": {"type": "string", "pattern": "\\S"},
			"duration_minutes": {"type": "integer", "minimum": 0},
			"notes": {"type": "string"}
		}
	}`),
	models.ActionEmailSent: mustSchema(`{
		"type": "object",
		"required": ["subject"],
		"properties": {
			"to": {"type": "string"},
			"subject": {"type": "string", "pattern": "\\S"},
			"body": {"type": "string"}
		}
	}`),
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

// normalizeDetails validates details against the action's schema and returns
// them with only the fields the action defines.
func normalizeDetails(action models.InteractionAction, details map[string]interface{}) (models.JSONMap, error) {
	const op = "create interaction"

	schema, ok := detailSchemas[action]
	if !ok {
		return nil, apperrors.Validation(op, "unknown action %q", action)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(details))
	if err != nil {
		return nil, apperrors.Validation(op, "details: %v", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperrors.Validation(op, "invalid %s details: %s", action, strings.Join(errs, "; "))
	}

	var typed interface{}
	switch action {
	case models.ActionNoteAdded:
		typed = &wire.NoteDetails{}
	case models.ActionCallMade:
		typed = &wire.CallDetails{}
	default:
		typed = &wire.EmailDetails{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Validation(op, "details: %v", err)
	}
	if err := json.Unmarshal(raw, typed); err != nil {
		return nil, apperrors.Validation(op, "details: %v", err)
	}
	canonical, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	out := models.JSONMap{}
	if err := json.Unmarshal(canonical, &out); err != nil {
		return nil, err
	}
	return out, nil
}
