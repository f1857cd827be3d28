package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/models"
)

// areasShape names the response layouts the automation is known to produce.
type areasShape int

const (
	shapeFlat       areasShape = iota // [area, ...]
	shapeWrapped                      // {"areas": [area, ...]}
	shapeFirstWraps                   // [{"areas": [area, ...]}, ...]
	shapeNested                       // [[area, ...], ...]
)

// NormalizeAreas flattens any known areas response into a list. Areas missing
// an id get a negative placeholder id, a missing name becomes "Area n" and a
// missing created_at becomes now. cityID fills a missing city_id.
func NormalizeAreas(op string, raw []byte, cityID int64, now time.Time) ([]models.Area, error) {
	items, err := areaItems(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]models.Area, 0, len(items))
	for i, item := range items {
		area, err := decodeArea(op, item, i, cityID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, area)
	}
	return out, nil
}

func areaItems(op string, raw []byte) ([]json.RawMessage, error) {
	shape, items, err := detectAreasShape(op, raw)
	if err != nil {
		return nil, err
	}

	switch shape {
	case shapeFlat:
		return items, nil
	case shapeWrapped:
		return items, nil
	case shapeFirstWraps:
		var first struct {
			Areas []json.RawMessage `json:"areas"`
		}
		if err := json.Unmarshal(items[0], &first); err != nil {
			return nil, apperrors.Shape(op, "areas field is not an array: %v", err)
		}
		return first.Areas, nil
	case shapeNested:
		var flat []json.RawMessage
		for i, inner := range items {
			var group []json.RawMessage
			if err := json.Unmarshal(inner, &group); err != nil {
				return nil, apperrors.Shape(op, "element %d of nested areas is not an array", i)
			}
			flat = append(flat, group...)
		}
		return flat, nil
	}
	return nil, apperrors.Shape(op, "unrecognized areas response")
}

func detectAreasShape(op string, raw []byte) (areasShape, []json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, nil, apperrors.Shape(op, "empty response body")
	}

	switch raw[0] {
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return 0, nil, apperrors.Shape(op, "invalid JSON object: %v", err)
		}
		areas, ok := wrapped["areas"]
		if !ok {
			return 0, nil, apperrors.Shape(op, "object response has no areas field")
		}
		var items []json.RawMessage
		if err := json.Unmarshal(areas, &items); err != nil {
			return 0, nil, apperrors.Shape(op, "areas field is not an array")
		}
		return shapeWrapped, items, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0, nil, apperrors.Shape(op, "invalid JSON array: %v", err)
		}
		if len(items) == 0 {
			return shapeFlat, items, nil
		}
		first := bytes.TrimSpace(items[0])
		if len(first) > 0 && first[0] == '[' {
			return shapeNested, items, nil
		}
		if len(first) > 0 && first[0] == '{' {
			var probe map[string]json.RawMessage
			if err := json.Unmarshal(first, &probe); err == nil {
				if _, ok := probe["areas"]; ok {
					return shapeFirstWraps, items, nil
				}
			}
		}
		return shapeFlat, items, nil
	}

	return 0, nil, apperrors.Shape(op, "response is neither an array nor an object")
}

type rawArea struct {
	ID            interface{} `json:"id"`
	Name          *string     `json:"name"`
	CityID        interface{} `json:"city_id"`
	CreatedAt     *string     `json:"created_at"`
	LastScrapedAt *string     `json:"last_scraped_at"`
}

func decodeArea(op string, item json.RawMessage, index int, cityID int64, now time.Time) (models.Area, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Area{}, apperrors.Shape(op, "area %d is not an object", index)
	}
	var ra rawArea
	if err := json.Unmarshal(trimmed, &ra); err != nil {
		return models.Area{}, apperrors.Shape(op, "area %d is not an object: %v", index, err)
	}

	area := models.Area{CityID: cityID}
	if id, ok := parseID(ra.ID); ok {
		area.ID = id
	} else {
		area.ID = -int64(index + 1)
	}
	if ra.Name != nil && *ra.Name != "" {
		area.Name = *ra.Name
	} else {
		area.Name = fmt.Sprintf("Area %d", index+1)
	}
	if id, ok := parseID(ra.CityID); ok {
		area.CityID = id
	}
	area.CreatedAt = now
	if ra.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *ra.CreatedAt); err == nil {
			area.CreatedAt = t
		}
	}
	if ra.LastScrapedAt != nil {
		if t, err := time.Parse(time.RFC3339, *ra.LastScrapedAt); err == nil {
			area.LastScrapedAt = &t
		}
	}
	return area, nil
}

func parseID(v interface{}) (int64, bool) {
	switch id := v.(type) {
	case float64:
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// NormalizeCities accepts a JSON array of cities or {"cities": [...]}.
func NormalizeCities(op string, raw []byte) ([]models.City, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var wrapped struct {
			Cities *[]models.City `json:"cities"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, apperrors.Shape(op, "invalid cities object: %v", err)
		}
		if wrapped.Cities == nil {
			return nil, apperrors.Shape(op, "object response has no cities field")
		}
		return *wrapped.Cities, nil
	}

	var cities []models.City
	if err := json.Unmarshal(raw, &cities); err != nil {
		return nil, apperrors.Shape(op, "expected an array of cities: %v", err)
	}
	return cities, nil
}
