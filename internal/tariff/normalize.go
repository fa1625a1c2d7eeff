package tariff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pvpcwatch/internal/dateutil"
	"pvpcwatch/internal/esios"
)

var hundred = decimal.NewFromInt(100)

// ParseError reports a provider price string that is not a comma-decimal
// number.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tariff: cannot parse price %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Normalize converts one fetched batch of raw entries into fully populated
// canonical records, preserving input order. Avg is the arithmetic mean of
// each fare's price over exactly this batch, and Increase is the price as a
// percentage of that mean. A single malformed date or price aborts the whole
// batch; a half-normalized batch is never returned.
func Normalize(entries []esios.RawPriceEntry) ([]PriceRecord, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	records := make([]PriceRecord, 0, len(entries))
	sums := make(map[Fare]decimal.Decimal, len(AllFares))
	for _, entry := range entries {
		date, err := dateutil.ProviderDateToUTCISO(entry.Day, entry.Hour)
		if err != nil {
			return nil, err
		}

		record := PriceRecord{DateUTC: date, Fares: make(map[Fare]FareValues, len(AllFares))}
		for _, fare := range AllFares {
			price, err := parsePrice(rawPrice(entry, fare))
			if err != nil {
				return nil, err
			}
			record.Fares[fare] = FareValues{Price: price}
			sums[fare] = sums[fare].Add(price)
		}
		records = append(records, record)
	}

	count := decimal.NewFromInt(int64(len(records)))
	avgs := make(map[Fare]decimal.Decimal, len(AllFares))
	for _, fare := range AllFares {
		avgs[fare] = sums[fare].Div(count)
	}

	for i := range records {
		for _, fare := range AllFares {
			values := records[i].Fares[fare]
			values.Avg = avgs[fare]
			// A zero mean only happens when every price in the batch is
			// zero; the slot is then exactly at the mean.
			if avgs[fare].IsZero() {
				values.Increase = hundred
			} else {
				values.Increase = values.Price.Div(avgs[fare]).Mul(hundred)
			}
			records[i].Fares[fare] = values
		}
	}

	return records, nil
}

func rawPrice(entry esios.RawPriceEntry, fare Fare) string {
	switch fare {
	case FareGeneral:
		return entry.General
	case FareNight:
		return entry.Night
	default:
		return entry.Vehicle
	}
}

// parsePrice converts a provider comma-decimal string to a decimal value.
// The provider locale uses a comma separator; substitution is the only
// locale handling needed.
func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, &ParseError{Value: raw, Err: err}
	}
	return price, nil
}
