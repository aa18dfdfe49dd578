package models

import (
	"strings"
	"time"
)

// Board view modes
const (
	BoardDepartures = "departures"
	BoardArrivals   = "arrivals"
	BoardAll        = "all"
)

// Activity filter values
const (
	StatusFilterActive   = "active"
	StatusFilterInactive = "inactive"
)

// BoardFilter carries every optional predicate the board query engine
// understands. All predicates are AND-combined; the search term is matched
// OR-wise against flight number, origin, destination and airline name/code.
type BoardFilter struct {
	Board        string     `json:"board" form:"board"`
	Status       string     `json:"status" form:"status"`
	Search       string     `json:"search" form:"search"`
	AirlineID    *int64     `json:"airline_id,omitempty" form:"airline_id"`
	GateID       *int64     `json:"gate_id,omitempty" form:"gate_id"`
	Terminal     string     `json:"terminal" form:"terminal"`
	FlightStatus string     `json:"flight_status" form:"flight_status"`
	DelayedOnly  bool       `json:"delayed_only" form:"delayed_only"`
	Date         *time.Time `json:"date,omitempty" form:"date" time_format:"2006-01-02"`
}

// DefaultBoardFilter returns the filter used when a caller has no saved state
func DefaultBoardFilter() BoardFilter {
	return BoardFilter{
		Board:  BoardDepartures,
		Status: StatusFilterActive,
	}
}

// Normalize lowercases and defaults the board and status fields, and trims
// free-text fields. Unknown values fall back to the defaults.
func (f *BoardFilter) Normalize() {
	b := strings.ToLower(strings.TrimSpace(f.Board))
	if b != BoardArrivals && b != BoardDepartures && b != BoardAll {
		b = BoardDepartures
	}
	f.Board = b

	s := strings.ToLower(strings.TrimSpace(f.Status))
	if s != StatusFilterActive && s != StatusFilterInactive {
		s = StatusFilterActive
	}
	f.Status = s

	f.Search = strings.TrimSpace(f.Search)
	f.Terminal = strings.TrimSpace(f.Terminal)
	f.FlightStatus = strings.TrimSpace(f.FlightStatus)
}

// IsZero reports whether the caller supplied no filter values at all, which
// is the trigger for restoring the session-remembered filter.
func (f *BoardFilter) IsZero() bool {
	return f.Board == "" &&
		f.Status == "" &&
		f.Search == "" &&
		f.AirlineID == nil &&
		f.GateID == nil &&
		f.Terminal == "" &&
		f.FlightStatus == "" &&
		!f.DelayedOnly &&
		f.Date == nil
}
