package models

import (
	"fmt"
	"time"
)

// CheckInDesk represents a check-in desk. The (terminal, desk_number) pair is
// unique among non-deleted desks.
type CheckInDesk struct {
	ID         int64     `json:"id" db:"id"`
	Terminal   string    `json:"terminal" db:"terminal"`
	DeskNumber int       `json:"desk_number" db:"desk_number"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Label returns the display name used in conflict messages and dropdowns
func (d *CheckInDesk) Label() string {
	return fmt.Sprintf("%s - Desk %d", d.Terminal, d.DeskNumber)
}
