package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prnairport/flight-ops-backend/internal/services"
)

// ErrorResponse is the shared error envelope
type ErrorResponse struct {
	Error               string `json:"error"`
	Message             string `json:"message"`
	Code                string `json:"code,omitempty"`
	ConflictingFlightID *int64 `json:"conflicting_flight_id,omitempty"`
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid id parameter",
		})
		return 0, false
	}
	return id, true
}

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// respondServiceError maps service layer errors onto HTTP responses
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
		})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:               "schedule_conflict",
			Message:             conflictErr.Message,
			Code:                string(conflictErr.Kind),
			ConflictingFlightID: &conflictErr.ConflictingFlightID,
		})
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
		return
	}

	if errors.Is(err, services.ErrResourceBusy) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "resource_busy",
			Message: "The gate or desk is being scheduled by another request. Please retry.",
			Code:    "RESOURCE_BUSY",
		})
		return
	}

	log.Printf("ERROR: Unhandled service error: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Something went wrong. Please try again later.",
	})
}

// logAuditError logs audit service failures without failing the request
func logAuditError(operation string, err error) {
	if err != nil {
		log.Printf("AUDIT ERROR [%s]: %v", operation, err)
	}
}
