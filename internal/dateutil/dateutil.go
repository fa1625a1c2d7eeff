package dateutil

import (
	"fmt"
	"strconv"
	"time"
)

// ISOLayout is the fixed representation every persisted date uses:
// yyyy-MM-ddTHH:mm plus zone, with UTC rendered as a literal Z. The layout
// sorts lexicographically within a single zone, which the store relies on
// for range queries.
const ISOLayout = "2006-01-02T15:04Z0700"

// providerDayLayout is the day format the provider publishes (dd/MM/yyyy).
const providerDayLayout = "02/01/2006"

// TruncateUnit selects how much of a timestamp Truncate zeroes.
type TruncateUnit int

const (
	// UnitDay zeroes hour, minute, second and sub-second fields.
	UnitDay TruncateUnit = iota
	// UnitHour zeroes minute, second and sub-second fields.
	UnitHour
)

// Field identifies a calendar field extracted by FieldFromISO.
type Field int

const (
	FieldHour Field = iota
	FieldDay
)

// ParseError reports input that does not match the expected date pattern.
// The caller decides whether to skip the offending record or abort.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dateutil: cannot parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// providerZone is the zone the provider's day/hour pairs are expressed in.
var providerZone *time.Location

func init() {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		panic("dateutil: load provider zone: " + err.Error())
	}
	providerZone = loc
}

// Truncate zeroes every field finer than unit.
func Truncate(t time.Time, unit TruncateUnit) time.Time {
	switch unit {
	case UnitDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case UnitHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
	panic(fmt.Sprintf("dateutil: %d is not a valid truncate unit", unit))
}

// NowISO returns the current UTC instant truncated at unit, in ISO form.
func NowISO(unit TruncateUnit) string {
	return Truncate(time.Now().UTC(), unit).Format(ISOLayout)
}

// TomorrowISO returns the instant 24 hours from now, truncated at unit, in
// ISO form.
func TomorrowISO(unit TruncateUnit) string {
	return Truncate(time.Now().UTC().AddDate(0, 0, 1), unit).Format(ISOLayout)
}

// FieldFromISO parses a fixed-ISO date string and extracts one of its
// calendar fields.
func FieldFromISO(dateStr string, field Field) (int, error) {
	t, err := time.Parse(ISOLayout, dateStr)
	if err != nil {
		return 0, &ParseError{Input: dateStr, Err: err}
	}
	switch field {
	case FieldHour:
		return t.Hour(), nil
	case FieldDay:
		return t.Day(), nil
	}
	panic(fmt.Sprintf("dateutil: %d is not a valid field", field))
}

// ProviderDateToUTCISO converts a provider-local day string plus an hour
// token into the fixed UTC ISO form. The first two characters of the hour
// token are the hour of day ("00-01" is the slot from midnight to one). This
// is the only place the provider timezone is consulted; everything
// downstream sees UTC ISO strings.
func ProviderDateToUTCISO(day, hour string) (string, error) {
	midnight, err := time.ParseInLocation(providerDayLayout, day, providerZone)
	if err != nil {
		return "", &ParseError{Input: day, Err: err}
	}

	if len(hour) < 2 {
		return "", &ParseError{Input: hour, Err: fmt.Errorf("hour token shorter than two characters")}
	}
	h, err := strconv.Atoi(hour[:2])
	if err != nil {
		return "", &ParseError{Input: hour, Err: err}
	}

	return midnight.Add(time.Duration(h) * time.Hour).UTC().Format(ISOLayout), nil
}
