package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prnairport/flight-ops-backend/internal/config"
	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// FlightStore is the slice of the flight repository the lifecycle manager
// needs
type FlightStore interface {
	Create(flight *models.Flight) error
	GetByID(flightID int64) (*models.Flight, error)
	Update(flight *models.Flight) error
	SoftDelete(flightID int64) error
}

// ConflictChecker decides whether a candidate assignment double-books a
// resource
type ConflictChecker interface {
	ValidateNoConflict(candidate models.ConflictCandidate, excludeID *int64) (*ConflictError, error)
}

// ResourceLocker serializes validate-then-write sequences per gate/desk
type ResourceLocker interface {
	AcquireResourceLock(ctx context.Context, kind string, resourceID int64, ttl time.Duration) (bool, error)
	ReleaseResourceLock(ctx context.Context, kind string, resourceID int64) error
}

// GateGetter resolves gate references
type GateGetter interface {
	GetByID(gateID int64) (*models.Gate, error)
}

// DeskGetter resolves check-in desk references
type DeskGetter interface {
	GetByID(deskID int64) (*models.CheckInDesk, error)
}

// AirlineGetter resolves airline references
type AirlineGetter interface {
	GetByID(airlineID int64) (*models.Airline, error)
}

// FlightService orchestrates flight create/update/retire. It owns the
// guarantee that no persisted write happens when validation or conflict
// detection fails, and it holds the per-resource locks across the whole
// check-then-act sequence.
type FlightService struct {
	flights   FlightStore
	gates     GateGetter
	desks     DeskGetter
	airlines  AirlineGetter
	validator ConflictChecker
	locks     ResourceLocker
	logger    *logrus.Logger
	airport   config.AirportConfig
	lockCfg   config.SessionConfig
}

// NewFlightService creates a new FlightService
func NewFlightService(
	flights FlightStore,
	gates GateGetter,
	desks DeskGetter,
	airlines AirlineGetter,
	validator ConflictChecker,
	locks ResourceLocker,
	logger *logrus.Logger,
	airport config.AirportConfig,
	lockCfg config.SessionConfig,
) *FlightService {
	return &FlightService{
		flights:   flights,
		gates:     gates,
		desks:     desks,
		airlines:  airlines,
		validator: validator,
		locks:     locks,
		logger:    logger,
		airport:   airport,
		lockCfg:   lockCfg,
	}
}

// Create validates and persists a new flight. The caller identity is stamped
// as created_by and is immutable afterwards.
func (s *FlightService) Create(ctx context.Context, input models.FlightInput, createdBy uuid.UUID) (*models.Flight, error) {
	flight, err := s.buildFlight(input)
	if err != nil {
		return nil, err
	}
	flight.CreatedBy = createdBy
	flight.IsActive = true

	if err := s.verifyReferences(flight); err != nil {
		return nil, err
	}

	release, err := s.lockResources(ctx, flight.GateID, flight.CheckInDeskID)
	if err != nil {
		return nil, err
	}
	defer release()

	conflict, err := s.validator.ValidateNoConflict(candidateOf(flight), nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}

	if err := s.flights.Create(flight); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id":     flight.ID,
		"flight_number": flight.FlightNumber,
		"gate_id":       flight.GateID,
	}).Info("Flight created")

	return flight, nil
}

// Update re-validates and persists changes to an existing active flight.
// The flight being edited is excluded from the conflict check so an
// unchanged window never conflicts with itself. The input is a full
// replacement: a body that omits status resets the flight to scheduled.
func (s *FlightService) Update(ctx context.Context, flightID int64, input models.FlightInput) (*models.Flight, error) {
	existing, err := s.flights.GetByID(flightID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "flight", ID: flightID}
		}
		return nil, err
	}

	flight, err := s.buildFlight(input)
	if err != nil {
		return nil, err
	}
	flight.ID = existing.ID
	flight.CreatedBy = existing.CreatedBy
	flight.IsActive = existing.IsActive
	flight.CreatedAt = existing.CreatedAt

	if err := s.verifyReferences(flight); err != nil {
		return nil, err
	}

	release, err := s.lockResources(ctx, flight.GateID, flight.CheckInDeskID)
	if err != nil {
		return nil, err
	}
	defer release()

	conflict, err := s.validator.ValidateNoConflict(candidateOf(flight), &flightID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}

	if err := s.flights.Update(flight); err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "flight", ID: flightID}
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id":     flight.ID,
		"flight_number": flight.FlightNumber,
	}).Info("Flight updated")

	return flight, nil
}

// Retire soft-deletes a flight. Retiring cannot create a conflict, so no
// validation runs. There is no undelete.
func (s *FlightService) Retire(ctx context.Context, flightID int64) error {
	if err := s.flights.SoftDelete(flightID); err != nil {
		if err == sql.ErrNoRows {
			return &NotFoundError{Resource: "flight", ID: flightID}
		}
		return err
	}

	s.logger.WithField("flight_id", flightID).Info("Flight retired")
	return nil
}

// PreCheck runs conflict validation without writing, so UIs can warn before
// submit. It takes no locks; the result is advisory.
func (s *FlightService) PreCheck(candidate models.ConflictCandidate, excludeID *int64) (*ConflictError, error) {
	if !candidate.ArrivalTime.After(candidate.DepartureTime) {
		return nil, NewValidationError("arrival time must be after departure time")
	}
	return s.validator.ValidateNoConflict(candidate, excludeID)
}

// buildFlight normalizes and validates the input, applies the home-airport
// substitution, and assembles the flight record
func (s *FlightService) buildFlight(input models.FlightInput) (*models.Flight, error) {
	input.Normalize()

	if err := input.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, NewValidationError("arrival time must be after departure time")
	}

	flightType, _ := models.ParseFlightType(input.Type)

	origin := input.OriginAirport
	destination := input.DestinationAirport

	// One end of every route is this airport. Whatever the client sent for
	// that side is discarded.
	switch flightType {
	case models.FlightTypeDeparture:
		origin = s.airport.HomeCode
	case models.FlightTypeArrival:
		destination = s.airport.HomeCode
	}

	status := models.FlightStatusScheduled
	if input.Status != nil {
		parsed, ok := models.ParseFlightStatus(*input.Status)
		if !ok {
			return nil, NewValidationError("invalid flight status")
		}
		status = parsed
	}

	return &models.Flight{
		FlightNumber:       input.FlightNumber,
		AirlineID:          input.AirlineID,
		GateID:             input.GateID,
		CheckInDeskID:      input.CheckInDeskID,
		Type:               flightType,
		OriginAirport:      origin,
		DestinationAirport: destination,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		Status:             status,
		DelayMinutes:       input.DelayMinutes,
	}, nil
}

// verifyReferences resolves the airline, gate and optional desk the flight
// points at. Missing records surface as NotFoundError; a gate that exists but
// is closed or retired, or a retired desk, is a ValidationError since picking
// another resource fixes it.
func (s *FlightService) verifyReferences(flight *models.Flight) error {
	if _, err := s.airlines.GetByID(flight.AirlineID); err != nil {
		if err == sql.ErrNoRows {
			return &NotFoundError{Resource: "airline", ID: flight.AirlineID}
		}
		return err
	}

	gate, err := s.gates.GetByID(flight.GateID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &NotFoundError{Resource: "gate", ID: flight.GateID}
		}
		return err
	}
	if !gate.IsAssignable() {
		return NewValidationError(fmt.Sprintf("gate %s is not open for assignment", gate.Label()))
	}

	if flight.CheckInDeskID != nil {
		desk, err := s.desks.GetByID(*flight.CheckInDeskID)
		if err != nil {
			if err == sql.ErrNoRows {
				return &NotFoundError{Resource: "check-in desk", ID: *flight.CheckInDeskID}
			}
			return err
		}
		if !desk.IsActive {
			return NewValidationError(fmt.Sprintf("check-in desk %s is retired", desk.Label()))
		}
	}

	return nil
}

// lockResources takes the gate lock and, when a desk is assigned, the desk
// lock, always in that order so two writers cannot deadlock. The returned
// release function is safe to defer.
func (s *FlightService) lockResources(ctx context.Context, gateID int64, deskID *int64) (func(), error) {
	if err := s.acquireWithRetry(ctx, "gate", gateID); err != nil {
		return nil, err
	}

	if deskID == nil {
		return func() {
			s.releaseLock(ctx, "gate", gateID)
		}, nil
	}

	if err := s.acquireWithRetry(ctx, "desk", *deskID); err != nil {
		s.releaseLock(ctx, "gate", gateID)
		return nil, err
	}

	desk := *deskID
	return func() {
		s.releaseLock(ctx, "desk", desk)
		s.releaseLock(ctx, "gate", gateID)
	}, nil
}

func (s *FlightService) acquireWithRetry(ctx context.Context, kind string, resourceID int64) error {
	for attempt := 0; attempt < s.lockCfg.LockAttempts; attempt++ {
		acquired, err := s.locks.AcquireResourceLock(ctx, kind, resourceID, s.lockCfg.LockTTL)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.lockCfg.LockRetry):
		}
	}

	s.logger.WithFields(logrus.Fields{
		"kind":        kind,
		"resource_id": resourceID,
	}).Warn("Resource lock busy, giving up")

	return ErrResourceBusy
}

func (s *FlightService) releaseLock(ctx context.Context, kind string, resourceID int64) {
	if err := s.locks.ReleaseResourceLock(ctx, kind, resourceID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"kind":        kind,
			"resource_id": resourceID,
		}).Warn("Failed to release resource lock")
	}
}

func candidateOf(flight *models.Flight) models.ConflictCandidate {
	return models.ConflictCandidate{
		GateID:        flight.GateID,
		CheckInDeskID: flight.CheckInDeskID,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
	}
}
