package database

import (
	"fmt"

	"github.com/prnairport/flight-ops-backend/internal/models"
)

// AirlineRepository handles database operations for airlines
type AirlineRepository struct {
	db DB
}

// NewAirlineRepository creates a new AirlineRepository
func NewAirlineRepository(db DB) *AirlineRepository {
	return &AirlineRepository{db: db}
}

// GetByID retrieves an airline by ID
func (r *AirlineRepository) GetByID(airlineID int64) (*models.Airline, error) {
	query := `
		SELECT id, name, code, is_active, created_at, updated_at
		FROM airlines
		WHERE id = $1
	`

	airline := &models.Airline{}
	err := r.db.QueryRow(query, airlineID).Scan(
		&airline.ID, &airline.Name, &airline.Code,
		&airline.IsActive, &airline.CreatedAt, &airline.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return airline, nil
}

// GetActive retrieves all active airlines ordered by name
func (r *AirlineRepository) GetActive() ([]models.Airline, error) {
	query := `
		SELECT id, name, code, is_active, created_at, updated_at
		FROM airlines
		WHERE is_active = TRUE
		ORDER BY name
	`

	airlines := []models.Airline{}
	if err := r.db.Select(&airlines, query); err != nil {
		return nil, fmt.Errorf("failed to fetch airlines: %w", err)
	}

	return airlines, nil
}
