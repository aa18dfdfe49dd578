package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/prnairport/flight-ops-backend/internal/models"
)

// FlightFavoriteRepository handles database operations for flight favorites
type FlightFavoriteRepository struct {
	db DB
}

// NewFlightFavoriteRepository creates a new FlightFavoriteRepository
func NewFlightFavoriteRepository(db DB) *FlightFavoriteRepository {
	return &FlightFavoriteRepository{db: db}
}

// Add records a favorite. Adding the same flight twice is a no-op.
func (r *FlightFavoriteRepository) Add(flightID int64, userID uuid.UUID) error {
	query := `
		INSERT INTO flight_favorites (flight_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (flight_id, user_id) DO NOTHING
	`

	if _, err := r.db.Exec(query, flightID, userID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

// Remove deletes a favorite. Returns sql.ErrNoRows when it did not exist.
func (r *FlightFavoriteRepository) Remove(flightID int64, userID uuid.UUID) error {
	query := `DELETE FROM flight_favorites WHERE flight_id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, flightID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
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

// ListForUser returns board rows for the user's favorited active flights,
// ordered by departure time
func (r *FlightFavoriteRepository) ListForUser(userID uuid.UUID) ([]models.FlightSummary, error) {
	query := `
		SELECT
			f.id, f.flight_number, f.type, f.origin_airport, f.destination_airport,
			f.departure_time, f.arrival_time, f.status, f.delay_minutes,
			a.name AS airline_name, a.code AS airline_code,
			g.terminal AS gate_terminal, g.code AS gate_code,
			d.terminal AS desk_terminal, d.desk_number AS desk_number
		FROM flight_favorites ff
		JOIN flights f ON f.id = ff.flight_id AND f.is_active = TRUE
		JOIN airlines a ON a.id = f.airline_id
		JOIN gates g ON g.id = f.gate_id
		LEFT JOIN check_in_desks d ON d.id = f.check_in_desk_id
		WHERE ff.user_id = $1
		ORDER BY f.departure_time
	`

	summaries := []models.FlightSummary{}
	if err := r.db.Select(&summaries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return summaries, nil
}
