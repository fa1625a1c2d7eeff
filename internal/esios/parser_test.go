package esios

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "PVPC": [
    {"Dia": "21/10/2016", "Hora": "00-01", "GEN": "10,00", "NOC": "5,50", "VHC": "4,25"},
    {"Dia": "21/10/2016", "Hora": "01-02", "GEN": "20,00", "NOC": "6,00", "VHC": "4,75"}
  ]
}`

func TestParsePayload(t *testing.T) {
	entries, err := ParsePayload([]byte(samplePayload))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Source order is preserved; it defines the averaging batch.
	assert.Equal(t, "00-01", entries[0].Hour)
	assert.Equal(t, "01-02", entries[1].Hour)
	assert.Equal(t, "10,00", entries[0].General)
	assert.Equal(t, "5,50", entries[0].Night)
	assert.Equal(t, "4,25", entries[0].Vehicle)
}

func TestParsePayloadEmptyArray(t *testing.T) {
	entries, err := ParsePayload([]byte(`{"PVPC": []}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParsePayloadNotAnObject(t *testing.T) {
	_, err := ParsePayload([]byte(`[1, 2, 3]`))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestParsePayloadMissingKey(t *testing.T) {
	_, err := ParsePayload([]byte(`{"prices": []}`))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestParsePayloadKeyNotArray(t *testing.T) {
	_, err := ParsePayload([]byte(`{"PVPC": {"Dia": "21/10/2016"}}`))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestParsePayloadWrongTypedField(t *testing.T) {
	_, err := ParsePayload([]byte(`{"PVPC": [{"Dia": "21/10/2016", "Hora": "00-01", "GEN": 10.0, "NOC": "5,50", "VHC": "4,25"}]}`))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestParsePayloadMissingField(t *testing.T) {
	_, err := ParsePayload([]byte(`{"PVPC": [{"Dia": "21/10/2016", "Hora": "00-01", "GEN": "10,00"}]}`))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}
