package services

import (
	"time"

	"github.com/prnairport/flight-ops-backend/internal/models"
)

// FlightCounter is the slice of the flight repository the stats service needs
type FlightCounter interface {
	CountByTypeInWindow(flightType models.FlightType, start, end time.Time) (int, error)
	CountDelayedInWindow(start, end time.Time) (int, error)
	CountMovementsBetween(start, end time.Time) (int, error)
}

// GateCounter counts assignable gates
type GateCounter interface {
	CountActiveOpen() (int, error)
}

// OpsStats is the operations snapshot shown on the public dashboard
type OpsStats struct {
	Date            time.Time `json:"date"`
	ArrivalsToday   int       `json:"arrivals_today"`
	DeparturesToday int       `json:"departures_today"`
	DelayedToday    int       `json:"delayed_today"`
	Next60Count     int       `json:"next_60_count"`
	ActiveGates     int       `json:"active_gates"`
}

// StatsService computes daily operations statistics
type StatsService struct {
	flights FlightCounter
	gates   GateCounter
}

// NewStatsService creates a new StatsService
func NewStatsService(flights FlightCounter, gates GateCounter) *StatsService {
	return &StatsService{flights: flights, gates: gates}
}

// ForDate builds the stats snapshot for the given date. now anchors the
// next-60-minutes window.
func (s *StatsService) ForDate(date time.Time, now time.Time) (*OpsStats, error) {
	dayStart := date.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	arrivals, err := s.flights.CountByTypeInWindow(models.FlightTypeArrival, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	departures, err := s.flights.CountByTypeInWindow(models.FlightTypeDeparture, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	delayed, err := s.flights.CountDelayedInWindow(dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	next60, err := s.flights.CountMovementsBetween(now, now.Add(60*time.Minute))
	if err != nil {
		return nil, err
	}

	activeGates, err := s.gates.CountActiveOpen()
	if err != nil {
		return nil, err
	}

	return &OpsStats{
		Date:            dayStart,
		ArrivalsToday:   arrivals,
		DeparturesToday: departures,
		DelayedToday:    delayed,
		Next60Count:     next60,
		ActiveGates:     activeGates,
	}, nil
}
