package database

import (
	"fmt"

	"github.com/prnairport/flight-ops-backend/internal/models"
)

// GateRepository handles database operations for gates
type GateRepository struct {
	db DB
}

// NewGateRepository creates a new GateRepository
func NewGateRepository(db DB) *GateRepository {
	return &GateRepository{db: db}
}

// GetByID retrieves a gate by ID
func (r *GateRepository) GetByID(gateID int64) (*models.Gate, error) {
	query := `
		SELECT id, code, terminal, status, is_active, created_at, updated_at
		FROM gates
		WHERE id = $1
	`

	gate := &models.Gate{}
	err := r.db.QueryRow(query, gateID).Scan(
		&gate.ID, &gate.Code, &gate.Terminal, &gate.Status,
		&gate.IsActive, &gate.CreatedAt, &gate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return gate, nil
}

// GetAssignable retrieves all active open gates ordered by terminal and code,
// the set offered for flight assignment
func (r *GateRepository) GetAssignable() ([]models.Gate, error) {
	query := `
		SELECT id, code, terminal, status, is_active, created_at, updated_at
		FROM gates
		WHERE is_active = TRUE AND status = 'open'
		ORDER BY terminal, code
	`

	gates := []models.Gate{}
	if err := r.db.Select(&gates, query); err != nil {
		return nil, fmt.Errorf("failed to fetch gates: %w", err)
	}

	return gates, nil
}

// CountActiveOpen counts gates that are active and open
func (r *GateRepository) CountActiveOpen() (int, error) {
	query := `SELECT COUNT(*) FROM gates WHERE is_active = TRUE AND status = 'open'`

	var count int
	if err := r.db.Get(&count, query); err != nil {
		return 0, fmt.Errorf("failed to count gates: %w", err)
	}

	return count, nil
}
