package tariff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Fare identifies one of the three PVPC pricing tiers under which the same
// hour slot is priced differently.
type Fare string

const (
	FareGeneral Fare = "general"
	FareNight   Fare = "night"
	FareVehicle Fare = "vehicle"
)

// AllFares lists every fare class in a fixed order.
var AllFares = []Fare{FareGeneral, FareNight, FareVehicle}

// ParseFare maps a user-supplied name to a Fare.
func ParseFare(s string) (Fare, error) {
	switch fare := Fare(strings.ToLower(strings.TrimSpace(s))); fare {
	case FareGeneral, FareNight, FareVehicle:
		return fare, nil
	}
	return "", fmt.Errorf("tariff: unknown fare %q", s)
}

// FareValues is the per-fare view of one hour slot: the hourly price, the
// mean price over the ingestion batch the slot arrived with, and the price
// expressed as a percentage of that mean.
type FareValues struct {
	Price    decimal.Decimal
	Avg      decimal.Decimal
	Increase decimal.Decimal
}

// PriceRecord is the canonical, persisted form of one hour slot. DateUTC is
// the unique key in the fixed UTC ISO form; ID is assigned by the store and
// is not meaningful across replace-upserts.
type PriceRecord struct {
	ID      int64
	DateUTC string
	Fares   map[Fare]FareValues
}
