package database

import (
	"fmt"

	"github.com/prnairport/flight-ops-backend/internal/models"
)

// CheckInDeskRepository handles database operations for check-in desks
type CheckInDeskRepository struct {
	db DB
}

// NewCheckInDeskRepository creates a new CheckInDeskRepository
func NewCheckInDeskRepository(db DB) *CheckInDeskRepository {
	return &CheckInDeskRepository{db: db}
}

// GetByID retrieves a check-in desk by ID
func (r *CheckInDeskRepository) GetByID(deskID int64) (*models.CheckInDesk, error) {
	query := `
		SELECT id, terminal, desk_number, is_active, created_at, updated_at
		FROM check_in_desks
		WHERE id = $1
	`

	desk := &models.CheckInDesk{}
	err := r.db.QueryRow(query, deskID).Scan(
		&desk.ID, &desk.Terminal, &desk.DeskNumber,
		&desk.IsActive, &desk.CreatedAt, &desk.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return desk, nil
}

// GetActive retrieves all active desks ordered by terminal and desk number
func (r *CheckInDeskRepository) GetActive() ([]models.CheckInDesk, error) {
	query := `
		SELECT id, terminal, desk_number, is_active, created_at, updated_at
		FROM check_in_desks
		WHERE is_active = TRUE
		ORDER BY terminal, desk_number
	`

	desks := []models.CheckInDesk{}
	if err := r.db.Select(&desks, query); err != nil {
		return nil, fmt.Errorf("failed to fetch check-in desks: %w", err)
	}

	return desks, nil
}
