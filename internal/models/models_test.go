package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMapValueScan(t *testing.T) {
	v, err := JSONMap{"note": "called back"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"note":"called back"}`, v)

	var m JSONMap
	require.NoError(t, m.Scan([]byte(`{"outcome":"no answer","duration_minutes":3}`)))
	assert.Equal(t, "no answer", m["outcome"])
	assert.EqualValues(t, 3, m["duration_minutes"])

	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	assert.Error(t, m.Scan(42))
	assert.Error(t, m.Scan("not json"))
}

func TestBusinessLocationNames(t *testing.T) {
	b := Business{Area: &Area{Name: "Gulberg", City: &City{Name: "Lahore"}}}
	assert.Equal(t, "Lahore", b.CityName())
	assert.Equal(t, "Gulberg", b.AreaName())

	assert.Empty(t, Business{}.CityName())
	assert.Empty(t, Business{Area: &Area{Name: "Gulberg"}}.CityName())
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, StatusQualified.Valid())
	assert.False(t, BusinessStatus("lost").Valid())
	assert.True(t, ActionCallMade.Valid())
	assert.False(t, InteractionAction("sms_sent").Valid())
}
