package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/prnairport/flight-ops-backend/internal/database"
	"github.com/prnairport/flight-ops-backend/internal/utils"
)

// AuditService records who changed what on the flight schedule
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEvent represents an action to be logged
type AuditEvent struct {
	UserID     uuid.UUID
	Action     string // "flight_created", "flight_updated", "flight_retired", "conflict_rejected"
	EntityType string
	EntityID   *int64
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogFlightCreated records a successful flight creation
func (s *AuditService) LogFlightCreated(userID uuid.UUID, flightID int64, flightNumber, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     "flight_created",
		EntityType: "flight",
		EntityID:   &flightID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"flight_number": flightNumber,
			"device_info":   utils.ParseUserAgent(userAgent),
		},
	})
}

// LogFlightUpdated records a successful flight edit
func (s *AuditService) LogFlightUpdated(userID uuid.UUID, flightID int64, flightNumber, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     "flight_updated",
		EntityType: "flight",
		EntityID:   &flightID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"flight_number": flightNumber,
			"device_info":   utils.ParseUserAgent(userAgent),
		},
	})
}

// LogFlightRetired records a soft delete
func (s *AuditService) LogFlightRetired(userID uuid.UUID, flightID int64, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     "flight_retired",
		EntityType: "flight",
		EntityID:   &flightID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogConflictRejected records a write blocked by the conflict validator
func (s *AuditService) LogConflictRejected(userID uuid.UUID, conflict *ConflictError, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     "conflict_rejected",
		EntityType: "flight",
		EntityID:   nil,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"kind":                  string(conflict.Kind),
			"message":               conflict.Message,
			"conflicting_flight_id": conflict.ConflictingFlightID,
		},
	})
}

// logEvent writes to the action_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO action_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
