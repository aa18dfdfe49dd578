package models

import (
	"time"
)

// GateStatus represents the operational state of a gate
type GateStatus string

const (
	GateStatusOpen        GateStatus = "open"
	GateStatusClosed      GateStatus = "closed"
	GateStatusMaintenance GateStatus = "maintenance"
)

// Gate represents a boarding gate
type Gate struct {
	ID        int64      `json:"id" db:"id"`
	Code      string     `json:"code" db:"code"`
	Terminal  string     `json:"terminal" db:"terminal"`
	Status    GateStatus `json:"status" db:"status"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAssignable reports whether flights may be scheduled at this gate
func (g *Gate) IsAssignable() bool {
	return g.IsActive && g.Status == GateStatusOpen
}

// Label returns the display name used in conflict messages and dropdowns
func (g *Gate) Label() string {
	return g.Terminal + "-" + g.Code
}
