package services

import (
	"fmt"
	"time"

	"github.com/prnairport/flight-ops-backend/internal/database"
	"github.com/prnairport/flight-ops-backend/internal/models"
)

// OverlapFinder is the slice of the flight store the validator needs
type OverlapFinder interface {
	FindGateOverlap(gateID int64, start, end time.Time, excludeID *int64) (*database.GateOverlap, error)
	FindDeskOverlap(deskID int64, start, end time.Time, excludeID *int64) (*database.DeskOverlap, error)
}

// ConflictValidator decides whether committing a candidate flight would
// double-book its gate or check-in desk. It is a pure read-only decision
// function; callers are responsible for holding the resource locks if they
// intend to write afterwards.
type ConflictValidator struct {
	flights OverlapFinder
}

// NewConflictValidator creates a new ConflictValidator
func NewConflictValidator(flights OverlapFinder) *ConflictValidator {
	return &ConflictValidator{flights: flights}
}

// ValidateNoConflict checks the candidate's gate, then (only if the gate is
// clear and a desk is assigned) its check-in desk, against all active flights.
// excludeID skips the flight being edited so it never conflicts with itself.
// The candidate window must already satisfy arrival > departure.
//
// Two windows [s1,e1) and [s2,e2) overlap iff s1 < e2 && e1 > s2; the open
// end means back-to-back occupancy of the same resource is allowed. Gate
// conflicts take precedence over desk conflicts, and the earliest-departing
// overlapping flight is the one reported.
func (v *ConflictValidator) ValidateNoConflict(candidate models.ConflictCandidate, excludeID *int64) (*ConflictError, error) {
	start := candidate.DepartureTime
	end := candidate.ArrivalTime

	gateOverlap, err := v.flights.FindGateOverlap(candidate.GateID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if gateOverlap != nil {
		return &ConflictError{
			Kind: ConflictKindGate,
			Message: fmt.Sprintf(
				"Gate conflict: another flight already uses gate %s-%s during that time.",
				gateOverlap.Terminal, gateOverlap.Code),
			ConflictingFlightID: gateOverlap.FlightID,
		}, nil
	}

	if candidate.CheckInDeskID == nil {
		return nil, nil
	}

	deskOverlap, err := v.flights.FindDeskOverlap(*candidate.CheckInDeskID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if deskOverlap != nil {
		return &ConflictError{
			Kind: ConflictKindDesk,
			Message: fmt.Sprintf(
				"Check-in desk conflict: desk %s - %d is already used during that time.",
				deskOverlap.Terminal, deskOverlap.DeskNumber),
			ConflictingFlightID: deskOverlap.FlightID,
		}, nil
	}

	return nil, nil
}
