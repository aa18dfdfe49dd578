package services

import (
	"context"

	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BoardQuerier is the slice of the flight repository the board engine needs
type BoardQuerier interface {
	QueryBoard(filter models.BoardFilter) ([]models.FlightSummary, error)
}

// FilterStore remembers a caller's last-used board filter between requests
type FilterStore interface {
	GetBoardFilter(ctx context.Context, callerID string) (*models.BoardFilter, error)
	SaveBoardFilter(ctx context.Context, callerID string, filter models.BoardFilter) error
	ClearBoardFilter(ctx context.Context, callerID string) error
}

// BoardService builds the filtered, sorted flight board view. Filter state
// is an explicit value passed in by the caller; the session store only
// remembers it between requests, it is never consulted implicitly once the
// caller supplies any filter value.
type BoardService struct {
	flights BoardQuerier
	filters FilterStore
	logger  *logrus.Logger
}

// NewBoardService creates a new BoardService
func NewBoardService(flights BoardQuerier, filters FilterStore, logger *logrus.Logger) *BoardService {
	return &BoardService{
		flights: flights,
		filters: filters,
		logger:  logger,
	}
}

// QueryFlights runs the board query. When the caller supplies no filter
// values at all and is identified, their last saved filter is restored.
// Retired flights are only visible to privileged callers; for everyone else
// the status filter is forced back to active. Returns the rows together
// with the effective filter so the UI can echo it.
func (s *BoardService) QueryFlights(ctx context.Context, callerID string, privileged bool, filter models.BoardFilter) ([]models.FlightSummary, models.BoardFilter, error) {
	if filter.IsZero() && callerID != "" {
		saved, err := s.filters.GetBoardFilter(ctx, callerID)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to restore saved board filter")
		} else if saved != nil {
			filter = *saved
		}
	}

	filter.Normalize()

	if filter.Status == models.StatusFilterInactive && !privileged {
		filter.Status = models.StatusFilterActive
	}

	summaries, err := s.flights.QueryBoard(filter)
	if err != nil {
		return nil, filter, err
	}

	if callerID != "" {
		if err := s.filters.SaveBoardFilter(ctx, callerID, filter); err != nil {
			// the board result is still good; filter memory is best effort
			s.logger.WithError(err).Warn("Failed to save board filter")
		}
	}

	return summaries, filter, nil
}

// ResetFilters clears the caller's saved filter state, returning the board
// to its defaults (departures, active) on the next parameterless query
func (s *BoardService) ResetFilters(ctx context.Context, callerID string) error {
	return s.filters.ClearBoardFilter(ctx, callerID)
}
