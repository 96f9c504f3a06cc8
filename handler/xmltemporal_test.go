package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLTemporalHandlerNonLenientDate(t *testing.T) {
	h := &XMLTemporalHandler{Kind: XMLDate}
	v, err := h.Parse("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, v.Time().Year())
	assert.Equal(t, 15, v.Time().Day())
}

func TestXMLTemporalHandlerNonLenientTimeWithZone(t *testing.T) {
	h := &XMLTemporalHandler{Kind: XMLTime, TimeZoneAllowed: true}
	v, err := h.Parse("10:30:00+02:00")
	require.NoError(t, err)
	_, offset := v.Time().Zone()
	assert.Equal(t, 2*60*60, offset)
}

func TestXMLTemporalHandlerRejectsNonZeroOffsetWhenDisallowed(t *testing.T) {
	h := &XMLTemporalHandler{Kind: XMLTime, TimeZoneAllowed: false}
	_, err := h.Parse("10:30:00+02:00")
	assert.Error(t, err)
}

func TestXMLTemporalHandlerLenientRequiresOptIn(t *testing.T) {
	h := &XMLTemporalHandler{Kind: XMLDateTime}
	_, err := h.Parse("10:30")
	assert.Error(t, err)

	hLenient := &XMLTemporalHandler{Kind: XMLDateTime, Lenient: true}
	v, err := hLenient.Parse("10:30")
	require.NoError(t, err)
	assert.Equal(t, 1970, v.Time().Year())
	assert.Equal(t, 1, int(v.Time().Month()))
	assert.Equal(t, 1, v.Time().Day())
}

func TestXMLTemporalHandlerConfigure(t *testing.T) {
	h := &XMLTemporalHandler{}
	require.NoError(t, h.Configure(map[string]string{"lenient": "true", "timeZoneAllowed": "true"}))
	assert.True(t, h.Lenient)
	assert.True(t, h.TimeZoneAllowed)
}

func TestXMLTemporalHandlerEmptyTextIsNull(t *testing.T) {
	h := &XMLTemporalHandler{Kind: XMLDate}
	v, err := h.Parse("")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
