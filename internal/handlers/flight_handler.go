package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prnairport/flight-ops-backend/internal/database"
	"github.com/prnairport/flight-ops-backend/internal/middleware"
	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/prnairport/flight-ops-backend/internal/services"
)

// FlightHandler handles flight write and lookup HTTP requests
type FlightHandler struct {
	flightService *services.FlightService
	flightRepo    *database.FlightRepository
	auditService  *services.AuditService
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(
	flightService *services.FlightService,
	flightRepo *database.FlightRepository,
	auditService *services.AuditService,
) *FlightHandler {
	return &FlightHandler{
		flightService: flightService,
		flightRepo:    flightRepo,
		auditService:  auditService,
	}
}

// CreateFlight handles POST /api/v1/flights
func (h *FlightHandler) CreateFlight(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	var input models.FlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("ERROR: Failed to bind flight create request for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	flight, err := h.flightService.Create(c.Request.Context(), input, userCtx.UserID)
	if err != nil {
		var conflictErr *services.ConflictError
		if errors.As(err, &conflictErr) {
			h.safeLogConflictRejected(userCtx, conflictErr, c)
		}
		respondServiceError(c, err)
		return
	}

	h.safeLogFlightCreated(userCtx, flight, c)

	c.JSON(http.StatusCreated, flight)
}

// UpdateFlight handles PUT /api/v1/flights/:id
func (h *FlightHandler) UpdateFlight(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	flightID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input models.FlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	flight, err := h.flightService.Update(c.Request.Context(), flightID, input)
	if err != nil {
		var conflictErr *services.ConflictError
		if errors.As(err, &conflictErr) {
			h.safeLogConflictRejected(userCtx, conflictErr, c)
		}
		respondServiceError(c, err)
		return
	}

	h.safeLogFlightUpdated(userCtx, flight, c)

	c.JSON(http.StatusOK, flight)
}

// RetireFlight handles DELETE /api/v1/flights/:id
func (h *FlightHandler) RetireFlight(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	flightID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.flightService.Retire(c.Request.Context(), flightID); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.auditService.LogFlightRetired(userCtx.UserID, flightID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		logAuditError("LogFlightRetired", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flight retired"})
}

// GetFlight handles GET /api/v1/flights/:id. Privileged callers may also
// fetch retired flights.
func (h *FlightHandler) GetFlight(c *gin.Context) {
	flightID, ok := parseIDParam(c)
	if !ok {
		return
	}

	userCtx, _ := middleware.GetUserContext(c)

	var flight *models.Flight
	var err error
	if userCtx.IsPrivileged() {
		flight, err = h.flightRepo.GetByIDIncludingRetired(flightID)
	} else {
		flight, err = h.flightRepo.GetByID(flightID)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Flight not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get flight %d: %v", flightID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve flight",
		})
		return
	}

	c.JSON(http.StatusOK, flight)
}

// ValidateFlight handles POST /api/v1/flights/validate. It runs conflict
// detection without writing anything, so the UI can warn before submit.
// Pass ?exclude_id=<id> when validating an edit.
func (h *FlightHandler) ValidateFlight(c *gin.Context) {
	var candidate models.ConflictCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	var excludeID *int64
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := parseInt64(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid exclude_id parameter",
			})
			return
		}
		excludeID = &id
	}

	conflict, err := h.flightService.PreCheck(candidate, excludeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if conflict != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":                 false,
			"kind":                  conflict.Kind,
			"message":               conflict.Message,
			"conflicting_flight_id": conflict.ConflictingFlightID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *FlightHandler) safeLogFlightCreated(userCtx middleware.UserContext, flight *models.Flight, c *gin.Context) {
	if err := h.auditService.LogFlightCreated(userCtx.UserID, flight.ID, flight.FlightNumber, c.ClientIP(), c.Request.UserAgent()); err != nil {
		logAuditError("LogFlightCreated", err)
	}
}

func (h *FlightHandler) safeLogFlightUpdated(userCtx middleware.UserContext, flight *models.Flight, c *gin.Context) {
	if err := h.auditService.LogFlightUpdated(userCtx.UserID, flight.ID, flight.FlightNumber, c.ClientIP(), c.Request.UserAgent()); err != nil {
		logAuditError("LogFlightUpdated", err)
	}
}

func (h *FlightHandler) safeLogConflictRejected(userCtx middleware.UserContext, conflict *services.ConflictError, c *gin.Context) {
	if err := h.auditService.LogConflictRejected(userCtx.UserID, conflict, c.ClientIP(), c.Request.UserAgent()); err != nil {
		logAuditError("LogConflictRejected", err)
	}
}
