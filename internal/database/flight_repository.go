package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prnairport/flight-ops-backend/internal/models"
)

// FlightRepository handles database operations for flights
type FlightRepository struct {
	db DB
}

// NewFlightRepository creates a new FlightRepository
func NewFlightRepository(db DB) *FlightRepository {
	return &FlightRepository{db: db}
}

const flightColumns = `
	id, flight_number, airline_id, gate_id, check_in_desk_id, type,
	origin_airport, destination_airport, departure_time, arrival_time,
	status, delay_minutes, is_active, created_by, created_at, updated_at`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFlight(row rowScanner) (*models.Flight, error) {
	flight := &models.Flight{}
	var checkInDeskID sql.NullInt64

	err := row.Scan(
		&flight.ID, &flight.FlightNumber, &flight.AirlineID, &flight.GateID,
		&checkInDeskID, &flight.Type, &flight.OriginAirport,
		&flight.DestinationAirport, &flight.DepartureTime, &flight.ArrivalTime,
		&flight.Status, &flight.DelayMinutes, &flight.IsActive,
		&flight.CreatedBy, &flight.CreatedAt, &flight.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if checkInDeskID.Valid {
		id := checkInDeskID.Int64
		flight.CheckInDeskID = &id
	}

	return flight, nil
}

// Create inserts a new flight and fills in the generated fields
func (r *FlightRepository) Create(flight *models.Flight) error {
	query := `
		INSERT INTO flights (
			flight_number, airline_id, gate_id, check_in_desk_id, type,
			origin_airport, destination_airport, departure_time, arrival_time,
			status, delay_minutes, is_active, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		flight.FlightNumber, flight.AirlineID, flight.GateID, flight.CheckInDeskID,
		flight.Type, flight.OriginAirport, flight.DestinationAirport,
		flight.DepartureTime, flight.ArrivalTime, flight.Status,
		flight.DelayMinutes, flight.IsActive, flight.CreatedBy,
	).Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}

	return nil
}

// GetByID retrieves an active flight by ID. Returns sql.ErrNoRows if the
// flight does not exist or is retired.
func (r *FlightRepository) GetByID(flightID int64) (*models.Flight, error) {
	query := `SELECT` + flightColumns + `
		FROM flights
		WHERE id = $1 AND is_active = TRUE`

	return scanFlight(r.db.QueryRow(query, flightID))
}

// GetByIDIncludingRetired retrieves a flight by ID regardless of its
// activity state
func (r *FlightRepository) GetByIDIncludingRetired(flightID int64) (*models.Flight, error) {
	query := `SELECT` + flightColumns + `
		FROM flights
		WHERE id = $1`

	return scanFlight(r.db.QueryRow(query, flightID))
}

// Update replaces all mutable fields of an active flight. created_by and
// is_active are never touched here. Returns sql.ErrNoRows if the flight is
// missing or retired.
func (r *FlightRepository) Update(flight *models.Flight) error {
	query := `
		UPDATE flights
		SET flight_number = $1, airline_id = $2, gate_id = $3,
			check_in_desk_id = $4, type = $5, origin_airport = $6,
			destination_airport = $7, departure_time = $8, arrival_time = $9,
			status = $10, delay_minutes = $11, updated_at = NOW()
		WHERE id = $12 AND is_active = TRUE
	`

	result, err := r.db.Exec(
		query,
		flight.FlightNumber, flight.AirlineID, flight.GateID, flight.CheckInDeskID,
		flight.Type, flight.OriginAirport, flight.DestinationAirport,
		flight.DepartureTime, flight.ArrivalTime, flight.Status,
		flight.DelayMinutes, flight.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update flight: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SoftDelete retires a flight. Retired flights stay queryable for history
// but never participate in conflict checks or default listings.
func (r *FlightRepository) SoftDelete(flightID int64) error {
	query := `UPDATE flights SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`

	result, err := r.db.Exec(query, flightID)
	if err != nil {
		return fmt.Errorf("failed to retire flight: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// GateOverlap describes an active flight already occupying a gate
type GateOverlap struct {
	FlightID int64  `db:"flight_id"`
	Terminal string `db:"terminal"`
	Code     string `db:"code"`
}

// DeskOverlap describes an active flight already occupying a check-in desk
type DeskOverlap struct {
	FlightID   int64  `db:"flight_id"`
	Terminal   string `db:"terminal"`
	DeskNumber int    `db:"desk_number"`
}

// FindGateOverlap returns the earliest-departing active flight on the gate
// whose window overlaps [start, end), excluding excludeID when set. The
// inequalities are strict on both sides so a flight ending exactly at the
// candidate's start is not a conflict. Returns nil when the gate is free.
func (r *FlightRepository) FindGateOverlap(gateID int64, start, end time.Time, excludeID *int64) (*GateOverlap, error) {
	query := `
		SELECT f.id, g.terminal, g.code
		FROM flights f
		JOIN gates g ON g.id = f.gate_id
		WHERE f.is_active = TRUE
			AND f.gate_id = $1
			AND $2 < f.arrival_time
			AND $3 > f.departure_time
			AND ($4::BIGINT IS NULL OR f.id <> $4)
		ORDER BY f.departure_time
		LIMIT 1
	`

	overlap := &GateOverlap{}
	err := r.db.QueryRow(query, gateID, start, end, excludeID).
		Scan(&overlap.FlightID, &overlap.Terminal, &overlap.Code)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check gate overlap: %w", err)
	}

	return overlap, nil
}

// FindDeskOverlap is the check-in desk counterpart of FindGateOverlap
func (r *FlightRepository) FindDeskOverlap(deskID int64, start, end time.Time, excludeID *int64) (*DeskOverlap, error) {
	query := `
		SELECT f.id, d.terminal, d.desk_number
		FROM flights f
		JOIN check_in_desks d ON d.id = f.check_in_desk_id
		WHERE f.is_active = TRUE
			AND f.check_in_desk_id = $1
			AND $2 < f.arrival_time
			AND $3 > f.departure_time
			AND ($4::BIGINT IS NULL OR f.id <> $4)
		ORDER BY f.departure_time
		LIMIT 1
	`

	overlap := &DeskOverlap{}
	err := r.db.QueryRow(query, deskID, start, end, excludeID).
		Scan(&overlap.FlightID, &overlap.Terminal, &overlap.DeskNumber)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check desk overlap: %w", err)
	}

	return overlap, nil
}

// QueryBoard runs the board query with the given filter
func (r *FlightRepository) QueryBoard(filter models.BoardFilter) ([]models.FlightSummary, error) {
	query, args := buildBoardQuery(filter)

	summaries := []models.FlightSummary{}
	if err := r.db.Select(&summaries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query flight board: %w", err)
	}

	return summaries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern escapes LIKE metacharacters so a search term like "100%"
// matches the literal text instead of acting as a wildcard
func escapeLikePattern(s string) string {
	return likeEscaper.Replace(s)
}

// buildBoardQuery assembles the AND-combined predicate list for the board.
// The filter must already be normalized.
func buildBoardQuery(filter models.BoardFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	// inactive is only reachable through the privileged path; the service
	// forces "active" for everyone else
	if filter.Status == models.StatusFilterInactive {
		conditions = append(conditions, "f.is_active = FALSE")
	} else {
		conditions = append(conditions, "f.is_active = TRUE")
	}

	switch filter.Board {
	case models.BoardDepartures:
		conditions = append(conditions, fmt.Sprintf("f.type = $%d", argCount))
		args = append(args, models.FlightTypeDeparture)
		argCount++
	case models.BoardArrivals:
		conditions = append(conditions, fmt.Sprintf("f.type = $%d", argCount))
		args = append(args, models.FlightTypeArrival)
		argCount++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(f.flight_number ILIKE $%d OR f.origin_airport ILIKE $%d OR f.destination_airport ILIKE $%d OR a.name ILIKE $%d OR a.code ILIKE $%d)",
			argCount, argCount, argCount, argCount, argCount))
		args = append(args, "%"+escapeLikePattern(filter.Search)+"%")
		argCount++
	}

	if filter.AirlineID != nil {
		conditions = append(conditions, fmt.Sprintf("f.airline_id = $%d", argCount))
		args = append(args, *filter.AirlineID)
		argCount++
	}

	if filter.GateID != nil {
		conditions = append(conditions, fmt.Sprintf("f.gate_id = $%d", argCount))
		args = append(args, *filter.GateID)
		argCount++
	}

	if filter.Terminal != "" {
		conditions = append(conditions, fmt.Sprintf("(g.terminal = $%d OR d.terminal = $%d)", argCount, argCount))
		args = append(args, filter.Terminal)
		argCount++
	}

	if filter.FlightStatus != "" {
		if status, ok := models.ParseFlightStatus(filter.FlightStatus); ok {
			conditions = append(conditions, fmt.Sprintf("f.status = $%d", argCount))
			args = append(args, status)
			argCount++
		}
	}

	if filter.DelayedOnly {
		conditions = append(conditions, "(f.delay_minutes > 0 OR f.status = 'delayed')")
	}

	if filter.Date != nil {
		dayStart := filter.Date.Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)

		switch filter.Board {
		case models.BoardArrivals:
			conditions = append(conditions, fmt.Sprintf("f.arrival_time >= $%d AND f.arrival_time < $%d", argCount, argCount+1))
		case models.BoardDepartures:
			conditions = append(conditions, fmt.Sprintf("f.departure_time >= $%d AND f.departure_time < $%d", argCount, argCount+1))
		default:
			conditions = append(conditions, fmt.Sprintf(
				"((f.departure_time >= $%d AND f.departure_time < $%d) OR (f.arrival_time >= $%d AND f.arrival_time < $%d))",
				argCount, argCount+1, argCount, argCount+1))
		}
		args = append(args, dayStart, dayEnd)
		argCount += 2
	}

	orderBy := "f.departure_time"
	if filter.Board == models.BoardArrivals {
		orderBy = "f.arrival_time"
	}

	query := fmt.Sprintf(`
		SELECT
			f.id, f.flight_number, f.type, f.origin_airport, f.destination_airport,
			f.departure_time, f.arrival_time, f.status, f.delay_minutes,
			a.name AS airline_name, a.code AS airline_code,
			g.terminal AS gate_terminal, g.code AS gate_code,
			d.terminal AS desk_terminal, d.desk_number AS desk_number
		FROM flights f
		JOIN airlines a ON a.id = f.airline_id
		JOIN gates g ON g.id = f.gate_id
		LEFT JOIN check_in_desks d ON d.id = f.check_in_desk_id
		WHERE %s
		ORDER BY %s
	`, strings.Join(conditions, " AND "), orderBy)

	return query, args
}

// CountByTypeInWindow counts active flights of the given type whose relevant
// time (departure for departures, arrival for arrivals) falls in [start, end)
func (r *FlightRepository) CountByTypeInWindow(flightType models.FlightType, start, end time.Time) (int, error) {
	column := "departure_time"
	if flightType == models.FlightTypeArrival {
		column = "arrival_time"
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM flights
		WHERE is_active = TRUE AND type = $1 AND %s >= $2 AND %s < $3
	`, column, column)

	var count int
	if err := r.db.Get(&count, query, flightType, start, end); err != nil {
		return 0, fmt.Errorf("failed to count flights: %w", err)
	}

	return count, nil
}

// CountDelayedInWindow counts active flights with either time in [start, end)
// that are delayed (delay minutes set or status delayed)
func (r *FlightRepository) CountDelayedInWindow(start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM flights
		WHERE is_active = TRUE
			AND ((departure_time >= $1 AND departure_time < $2) OR (arrival_time >= $1 AND arrival_time < $2))
			AND (delay_minutes > 0 OR status = 'delayed')
	`

	var count int
	if err := r.db.Get(&count, query, start, end); err != nil {
		return 0, fmt.Errorf("failed to count delayed flights: %w", err)
	}

	return count, nil
}

// CountMovementsBetween counts active flights departing or arriving within
// [start, end]: departures by departure time, arrivals by arrival time
func (r *FlightRepository) CountMovementsBetween(start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM flights
		WHERE is_active = TRUE
			AND (
				(type = 'departure' AND departure_time >= $1 AND departure_time <= $2)
				OR (type = 'arrival' AND arrival_time >= $1 AND arrival_time <= $2)
			)
	`

	var count int
	if err := r.db.Get(&count, query, start, end); err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}

	return count, nil
}
