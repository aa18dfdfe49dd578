package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FlightType represents the direction of a flight relative to the home airport
type FlightType string

const (
	FlightTypeDeparture FlightType = "departure"
	FlightTypeArrival   FlightType = "arrival"
)

// FlightStatus represents the operational status of a flight
type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusBoarding  FlightStatus = "boarding"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
	FlightStatusArrived   FlightStatus = "arrived"
)

// ParseFlightStatus parses a status string case-insensitively
func ParseFlightStatus(s string) (FlightStatus, bool) {
	switch FlightStatus(strings.ToLower(strings.TrimSpace(s))) {
	case FlightStatusScheduled:
		return FlightStatusScheduled, true
	case FlightStatusBoarding:
		return FlightStatusBoarding, true
	case FlightStatusDeparted:
		return FlightStatusDeparted, true
	case FlightStatusDelayed:
		return FlightStatusDelayed, true
	case FlightStatusCancelled:
		return FlightStatusCancelled, true
	case FlightStatusArrived:
		return FlightStatusArrived, true
	}
	return "", false
}

// ParseFlightType parses a flight type string case-insensitively
func ParseFlightType(s string) (FlightType, bool) {
	switch FlightType(strings.ToLower(strings.TrimSpace(s))) {
	case FlightTypeDeparture:
		return FlightTypeDeparture, true
	case FlightTypeArrival:
		return FlightTypeArrival, true
	}
	return "", false
}

// Flight represents a scheduled flight occupying a gate and optionally a
// check-in desk for the half-open window [DepartureTime, ArrivalTime)
type Flight struct {
	ID                 int64        `json:"id" db:"id"`
	FlightNumber       string       `json:"flight_number" db:"flight_number"`
	AirlineID          int64        `json:"airline_id" db:"airline_id"`
	GateID             int64        `json:"gate_id" db:"gate_id"`
	CheckInDeskID      *int64       `json:"check_in_desk_id,omitempty" db:"check_in_desk_id"`
	Type               FlightType   `json:"type" db:"type"`
	OriginAirport      string       `json:"origin_airport" db:"origin_airport"`
	DestinationAirport string       `json:"destination_airport" db:"destination_airport"`
	DepartureTime      time.Time    `json:"departure_time" db:"departure_time"`
	ArrivalTime        time.Time    `json:"arrival_time" db:"arrival_time"`
	Status             FlightStatus `json:"status" db:"status"`
	DelayMinutes       int          `json:"delay_minutes" db:"delay_minutes"`
	IsActive           bool         `json:"is_active" db:"is_active"`
	CreatedBy          uuid.UUID    `json:"created_by" db:"created_by"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// FlightInput carries the client-supplied fields for creating or fully
// replacing a flight. The home-airport side of the route is forced
// server-side regardless of what the client sends.
type FlightInput struct {
	FlightNumber       string    `json:"flight_number" binding:"required"`
	AirlineID          int64     `json:"airline_id" binding:"required"`
	GateID             int64     `json:"gate_id" binding:"required"`
	CheckInDeskID      *int64    `json:"check_in_desk_id,omitempty"`
	Type               string    `json:"type" binding:"required"`
	OriginAirport      string    `json:"origin_airport"`
	DestinationAirport string    `json:"destination_airport"`
	DepartureTime      time.Time `json:"departure_time" binding:"required"`
	ArrivalTime        time.Time `json:"arrival_time" binding:"required"`
	Status             *string   `json:"status,omitempty"`
	DelayMinutes       int       `json:"delay_minutes"`
}

// Normalize trims all string fields in place
func (r *FlightInput) Normalize() {
	r.FlightNumber = strings.TrimSpace(r.FlightNumber)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.OriginAirport = strings.TrimSpace(r.OriginAirport)
	r.DestinationAirport = strings.TrimSpace(r.DestinationAirport)
	if r.Status != nil {
		s := strings.TrimSpace(*r.Status)
		r.Status = &s
	}
}

// Validate validates the input after normalization
func (r *FlightInput) Validate() error {
	if _, ok := ParseFlightType(r.Type); !ok {
		return errors.New("type must be 'departure' or 'arrival'")
	}

	if r.Type == string(FlightTypeDeparture) && r.DestinationAirport == "" {
		return errors.New("destination_airport is required for departures")
	}
	if r.Type == string(FlightTypeArrival) && r.OriginAirport == "" {
		return errors.New("origin_airport is required for arrivals")
	}

	if r.Status != nil {
		if _, ok := ParseFlightStatus(*r.Status); !ok {
			return errors.New("invalid flight status")
		}
	}

	if r.DelayMinutes < 0 {
		return errors.New("delay_minutes cannot be negative")
	}

	return nil
}

// ConflictCandidate is the resource/time slice of a flight that the conflict
// validator inspects. The caller guarantees ArrivalTime > DepartureTime.
type ConflictCandidate struct {
	GateID        int64     `json:"gate_id" binding:"required"`
	CheckInDeskID *int64    `json:"check_in_desk_id,omitempty"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
}

// FlightSummary is the board row returned to the admin UI and the public API
type FlightSummary struct {
	ID                 int64        `json:"id" db:"id"`
	FlightNumber       string       `json:"flight_number" db:"flight_number"`
	Type               FlightType   `json:"type" db:"type"`
	OriginAirport      string       `json:"origin_airport" db:"origin_airport"`
	DestinationAirport string       `json:"destination_airport" db:"destination_airport"`
	DepartureTime      time.Time    `json:"departure_time" db:"departure_time"`
	ArrivalTime        time.Time    `json:"arrival_time" db:"arrival_time"`
	Status             FlightStatus `json:"status" db:"status"`
	DelayMinutes       int          `json:"delay_minutes" db:"delay_minutes"`
	AirlineName        string       `json:"airline_name" db:"airline_name"`
	AirlineCode        string       `json:"airline_code" db:"airline_code"`
	GateTerminal       string       `json:"gate_terminal" db:"gate_terminal"`
	GateCode           string       `json:"gate_code" db:"gate_code"`
	DeskTerminal       *string      `json:"desk_terminal,omitempty" db:"desk_terminal"`
	DeskNumber         *int         `json:"desk_number,omitempty" db:"desk_number"`
}
