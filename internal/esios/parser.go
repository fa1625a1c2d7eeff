package esios

import (
	"encoding/json"
	"fmt"
)

// payloadArrayKey names the per-hour record array inside a PVPC payload.
const payloadArrayKey = "PVPC"

// RawPriceEntry is one hour slot exactly as the provider publishes it: day
// as dd/MM/yyyy, hour as a two-digit slot token, and one comma-decimal price
// string per fare class. It exists only between parsing and normalization.
type RawPriceEntry struct {
	Day     string `json:"Dia"`
	Hour    string `json:"Hora"`
	General string `json:"GEN"`
	Night   string `json:"NOC"`
	Vehicle string `json:"VHC"`
}

// FormatError reports a payload that is not shaped as a PVPC archive.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("esios: %s: %v", e.Reason, e.Err)
	}
	return "esios: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParsePayload validates a raw provider payload and deserializes it into an
// ordered sequence of entries, one per array element. Source order is
// preserved; it becomes the ingestion batch used for averaging.
func ParsePayload(body []byte) ([]RawPriceEntry, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FormatError{Reason: "payload is not a JSON object", Err: err}
	}

	rawArray, ok := payload[payloadArrayKey]
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("payload has no %q key", payloadArrayKey)}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(rawArray, &elements); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("%q is not an array", payloadArrayKey), Err: err}
	}

	entries := make([]RawPriceEntry, 0, len(elements))
	for i, element := range elements {
		var entry RawPriceEntry
		if err := json.Unmarshal(element, &entry); err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("element %d is malformed", i), Err: err}
		}
		if entry.Day == "" || entry.Hour == "" || entry.General == "" || entry.Night == "" || entry.Vehicle == "" {
			return nil, &FormatError{Reason: fmt.Sprintf("element %d is missing a required field", i)}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
