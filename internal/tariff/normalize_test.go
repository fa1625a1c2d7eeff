package tariff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvpcwatch/internal/dateutil"
	"pvpcwatch/internal/esios"
)

func sampleEntries() []esios.RawPriceEntry {
	return []esios.RawPriceEntry{
		{Day: "21/10/2016", Hour: "00-01", General: "10,00", Night: "5,00", Vehicle: "4,00"},
		{Day: "21/10/2016", Hour: "01-02", General: "20,00", Night: "7,00", Vehicle: "6,00"},
	}
}

func TestNormalize(t *testing.T) {
	records, err := Normalize(sampleEntries())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 21/10/2016 is CEST: local midnight is 22:00 UTC the day before.
	assert.Equal(t, "2016-10-20T22:00Z", records[0].DateUTC)
	assert.Equal(t, "2016-10-20T23:00Z", records[1].DateUTC)

	first := records[0].Fares[FareGeneral]
	second := records[1].Fares[FareGeneral]

	assert.InDelta(t, 10.0, first.Price.InexactFloat64(), 1e-9)
	assert.InDelta(t, 20.0, second.Price.InexactFloat64(), 1e-9)

	// The batch mean is shared by every record in the batch.
	assert.InDelta(t, 15.0, first.Avg.InexactFloat64(), 1e-9)
	assert.True(t, first.Avg.Equal(second.Avg))

	assert.InDelta(t, 66.67, first.Increase.InexactFloat64(), 0.01)
	assert.InDelta(t, 133.33, second.Increase.InexactFloat64(), 0.01)
}

func TestNormalizeAllFares(t *testing.T) {
	records, err := Normalize(sampleEntries())
	require.NoError(t, err)

	for _, fare := range AllFares {
		var sum float64
		for _, record := range records {
			sum += record.Fares[fare].Price.InexactFloat64()
		}
		mean := sum / float64(len(records))

		for _, record := range records {
			values := record.Fares[fare]
			assert.InDelta(t, mean, values.Avg.InexactFloat64(), 1e-9)
			assert.True(t, values.Increase.Equal(values.Price.Div(values.Avg).Mul(hundred)),
				"increase must be derived from price and avg")
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	records, err := Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, records)

	records, err = Normalize([]esios.RawPriceEntry{})
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestNormalizeMalformedPriceAbortsBatch(t *testing.T) {
	entries := sampleEntries()
	entries[1].Night = "abc"

	records, err := Normalize(entries)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Nil(t, records)
}

func TestNormalizeMalformedDateAbortsBatch(t *testing.T) {
	entries := sampleEntries()
	entries[0].Day = "2016-10-21"

	records, err := Normalize(entries)
	var parseErr *dateutil.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Nil(t, records)
}

func TestParseFare(t *testing.T) {
	fare, err := ParseFare(" Night ")
	require.NoError(t, err)
	assert.Equal(t, FareNight, fare)

	_, err = ParseFare("weekend")
	require.Error(t, err)
}
