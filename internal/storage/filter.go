package storage

import (
	"errors"
)

// ErrConflictingFilter reports an exact-date filter combined with a range
// bound. The combination is a caller usage error and is rejected rather
// than resolved by precedence.
var ErrConflictingFilter = errors.New("storage: exact date filter is mutually exclusive with start/end date")

// Filter narrows a price query to an exact date, an inclusive date range, or
// an open-ended range. The zero Filter matches every row. Dates use the
// fixed UTC ISO form, which orders lexicographically.
type Filter struct {
	date  string
	start string
	end   string
}

// FilterAll matches every stored row.
func FilterAll() Filter { return Filter{} }

// FilterExact matches the single row with the given date.
func FilterExact(date string) Filter { return Filter{date: date} }

// FilterRange matches rows with start <= date <= end. An empty bound leaves
// that side of the range open.
func FilterRange(start, end string) Filter { return Filter{start: start, end: end} }

// NewFilter builds a filter from raw query parameters, rejecting the
// contradictory exact-plus-range combination at the boundary.
func NewFilter(date, start, end string) (Filter, error) {
	if date != "" && (start != "" || end != "") {
		return Filter{}, ErrConflictingFilter
	}
	return Filter{date: date, start: start, end: end}, nil
}

// whereClause renders the filter as a SQL fragment with bind arguments.
func (f Filter) whereClause() (string, []any, error) {
	if f.date != "" && (f.start != "" || f.end != "") {
		return "", nil, ErrConflictingFilter
	}
	switch {
	case f.date != "":
		return " WHERE date = ?", []any{f.date}, nil
	case f.start != "" && f.end != "":
		return " WHERE date >= ? AND date <= ?", []any{f.start, f.end}, nil
	case f.start != "":
		return " WHERE date >= ?", []any{f.start}, nil
	case f.end != "":
		return " WHERE date <= ?", []any{f.end}, nil
	}
	return "", nil, nil
}
