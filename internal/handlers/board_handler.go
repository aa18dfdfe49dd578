package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prnairport/flight-ops-backend/internal/middleware"
	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/prnairport/flight-ops-backend/internal/services"
)

// BoardHandler handles the public flight board HTTP requests
type BoardHandler struct {
	boardService *services.BoardService
	statsService *services.StatsService
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boardService *services.BoardService, statsService *services.StatsService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		statsService: statsService,
	}
}

// GetBoard handles GET /api/v1/board. Anonymous callers get the default
// board; identified callers with no query parameters get their last-used
// filter back.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	var filter models.BoardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid query parameters: " + err.Error(),
		})
		return
	}

	callerID := ""
	privileged := false
	if userCtx, exists := middleware.GetUserContext(c); exists {
		callerID = userCtx.UserID.String()
		privileged = userCtx.IsPrivileged()
	}

	flights, effective, err := h.boardService.QueryFlights(c.Request.Context(), callerID, privileged, filter)
	if err != nil {
		log.Printf("ERROR: Board query failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to query the flight board",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flights": flights,
		"filter":  effective,
		"count":   len(flights),
	})
}

// ResetBoardFilters handles POST /api/v1/board/reset. The next parameterless
// board query returns to the defaults.
func (h *BoardHandler) ResetBoardFilters(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	if err := h.boardService.ResetFilters(c.Request.Context(), userCtx.UserID.String()); err != nil {
		log.Printf("ERROR: Failed to reset board filters for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to reset board filters",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board filters reset"})
}

// GetStats handles GET /api/v1/board/stats. Defaults to today when no
// ?date=YYYY-MM-DD is given.
func (h *BoardHandler) GetStats(c *gin.Context) {
	now := time.Now().UTC()
	date := now

	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid date parameter, expected YYYY-MM-DD",
			})
			return
		}
		date = parsed
	}

	stats, err := h.statsService.ForDate(date, now)
	if err != nil {
		log.Printf("ERROR: Stats query failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to compute operations statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
