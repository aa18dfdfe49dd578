package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prnairport/flight-ops-backend/internal/database"
	"github.com/prnairport/flight-ops-backend/internal/middleware"
)

// FavoriteHandler lets identified callers pin flights they want to track
type FavoriteHandler struct {
	favoriteRepo *database.FlightFavoriteRepository
	flightRepo   *database.FlightRepository
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(
	favoriteRepo *database.FlightFavoriteRepository,
	flightRepo *database.FlightRepository,
) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteRepo: favoriteRepo,
		flightRepo:   flightRepo,
	}
}

// AddFavorite handles POST /api/v1/favorites/:id
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
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

	// Only active flights can be favorited
	if _, err := h.flightRepo.GetByID(flightID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Flight not found",
			})
			return
		}
		log.Printf("ERROR: Failed to check flight %d before favoriting: %v", flightID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to add favorite",
		})
		return
	}

	if err := h.favoriteRepo.Add(flightID, userCtx.UserID); err != nil {
		log.Printf("ERROR: Failed to add favorite for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to add favorite",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flight added to favorites"})
}

// RemoveFavorite handles DELETE /api/v1/favorites/:id
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
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

	if err := h.favoriteRepo.Remove(flightID, userCtx.UserID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Favorite not found",
			})
			return
		}
		log.Printf("ERROR: Failed to remove favorite for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to remove favorite",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flight removed from favorites"})
}

// ListFavorites handles GET /api/v1/favorites
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
		return
	}

	flights, err := h.favoriteRepo.ListForUser(userCtx.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to list favorites for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve favorites",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flights": flights,
		"count":   len(flights),
	})
}
