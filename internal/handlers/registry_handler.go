package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prnairport/flight-ops-backend/internal/database"
)

// RegistryHandler serves the airline, gate and check-in desk reference lists
// that the admin UI populates its dropdowns from
type RegistryHandler struct {
	airlineRepo *database.AirlineRepository
	gateRepo    *database.GateRepository
	deskRepo    *database.CheckInDeskRepository
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(
	airlineRepo *database.AirlineRepository,
	gateRepo *database.GateRepository,
	deskRepo *database.CheckInDeskRepository,
) *RegistryHandler {
	return &RegistryHandler{
		airlineRepo: airlineRepo,
		gateRepo:    gateRepo,
		deskRepo:    deskRepo,
	}
}

// ListAirlines handles GET /api/v1/airlines
func (h *RegistryHandler) ListAirlines(c *gin.Context) {
	airlines, err := h.airlineRepo.GetActive()
	if err != nil {
		log.Printf("ERROR: Failed to list airlines: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve airlines",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"airlines": airlines})
}

// ListGates handles GET /api/v1/gates. Only gates that can take a new
// assignment are returned.
func (h *RegistryHandler) ListGates(c *gin.Context) {
	gates, err := h.gateRepo.GetAssignable()
	if err != nil {
		log.Printf("ERROR: Failed to list gates: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve gates",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gates": gates})
}

// GetGate handles GET /api/v1/gates/:id
func (h *RegistryHandler) GetGate(c *gin.Context) {
	gateID, ok := parseIDParam(c)
	if !ok {
		return
	}

	gate, err := h.gateRepo.GetByID(gateID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Gate not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get gate %d: %v", gateID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve gate",
		})
		return
	}

	c.JSON(http.StatusOK, gate)
}

// ListCheckInDesks handles GET /api/v1/check-in-desks
func (h *RegistryHandler) ListCheckInDesks(c *gin.Context) {
	desks, err := h.deskRepo.GetActive()
	if err != nil {
		log.Printf("ERROR: Failed to list check-in desks: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve check-in desks",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"check_in_desks": desks})
}
