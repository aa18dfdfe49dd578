package services

import (
	"context"
	"testing"
	"time"

	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoardQuerier struct {
	rows       []models.FlightSummary
	err        error
	lastFilter models.BoardFilter
	calls      int
}

func (f *fakeBoardQuerier) QueryBoard(filter models.BoardFilter) ([]models.FlightSummary, error) {
	f.calls++
	f.lastFilter = filter
	return f.rows, f.err
}

type fakeFilterStore struct {
	saved    map[string]models.BoardFilter
	getErr   error
	saveErr  error
	clearErr error
}

func newFakeFilterStore() *fakeFilterStore {
	return &fakeFilterStore{saved: map[string]models.BoardFilter{}}
}

func (f *fakeFilterStore) GetBoardFilter(ctx context.Context, callerID string) (*models.BoardFilter, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	filter, ok := f.saved[callerID]
	if !ok {
		return nil, nil
	}
	return &filter, nil
}

func (f *fakeFilterStore) SaveBoardFilter(ctx context.Context, callerID string, filter models.BoardFilter) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[callerID] = filter
	return nil
}

func (f *fakeFilterStore) ClearBoardFilter(ctx context.Context, callerID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.saved, callerID)
	return nil
}

func newTestBoardService(querier *fakeBoardQuerier, filters *fakeFilterStore) *BoardService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewBoardService(querier, filters, logger)
}

func TestBoardQueryFlights(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty filter restores saved filter for identified caller", func(t *testing.T) {
		querier := &fakeBoardQuerier{}
		filters := newFakeFilterStore()
		filters.saved["user-1"] = models.BoardFilter{Board: models.BoardArrivals, Status: models.StatusFilterActive, Terminal: "B"}
		svc := newTestBoardService(querier, filters)

		_, effective, err := svc.QueryFlights(ctx, "user-1", false, models.BoardFilter{})
		require.NoError(t, err)

		assert.Equal(t, models.BoardArrivals, effective.Board)
		assert.Equal(t, "B", effective.Terminal)
		assert.Equal(t, models.BoardArrivals, querier.lastFilter.Board)
	})

	t.Run("Supplied filter wins over saved filter", func(t *testing.T) {
		querier := &fakeBoardQuerier{}
		filters := newFakeFilterStore()
		filters.saved["user-1"] = models.BoardFilter{Board: models.BoardArrivals, Status: models.StatusFilterActive}
		svc := newTestBoardService(querier, filters)

		_, effective, err := svc.QueryFlights(ctx, "user-1", false, models.BoardFilter{Board: models.BoardDepartures})
		require.NoError(t, err)

		assert.Equal(t, models.BoardDepartures, effective.Board)
	})

	t.Run("Anonymous caller gets defaults, nothing saved", func(t *testing.T) {
		querier := &fakeBoardQuerier{}
		filters := newFakeFilterStore()
		svc := newTestBoardService(querier, filters)

		_, effective, err := svc.QueryFlights(ctx, "", false, models.BoardFilter{})
		require.NoError(t, err)

		assert.Equal(t, models.BoardDepartures, effective.Board)
		assert.Equal(t, models.StatusFilterActive, effective.Status)
		assert.Empty(t, filters.saved)
	})

	t.Run("Unprivileged caller cannot see retired flights", func(t *testing.T) {
		querier := &fakeBoardQuerier{}
		svc := newTestBoardService(querier, newFakeFilterStore())

		_, effective, err := svc.QueryFlights(ctx, "user-1", false, models.BoardFilter{Status: models.StatusFilterInactive})
		require.NoError(t, err)

		assert.Equal(t, models.StatusFilterActive, effective.Status)
		assert.Equal(t, models.StatusFilterActive, querier.lastFilter.Status)
	})

	t.Run("Privileged caller may see retired flights", func(t *testing.T) {
		querier := &fakeBoardQuerier{}
		svc := newTestBoardService(querier, newFakeFilterStore())

		_, effective, err := svc.QueryFlights(ctx, "admin-1", true, models.BoardFilter{Status: models.StatusFilterInactive})
		require.NoError(t, err)

		assert.Equal(t, models.StatusFilterInactive, effective.Status)
	})

	t.Run("Effective filter is remembered for the next call", func(t *testing.T) {
		querier := &fakeBoardQuerier{}
		filters := newFakeFilterStore()
		svc := newTestBoardService(querier, filters)

		date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
		_, _, err := svc.QueryFlights(ctx, "user-1", false, models.BoardFilter{Board: models.BoardAll, Search: "PR1", Date: &date})
		require.NoError(t, err)

		saved := filters.saved["user-1"]
		assert.Equal(t, models.BoardAll, saved.Board)
		assert.Equal(t, "PR1", saved.Search)
		require.NotNil(t, saved.Date)
		assert.True(t, saved.Date.Equal(date))
	})

	t.Run("Filter store failures do not fail the board", func(t *testing.T) {
		querier := &fakeBoardQuerier{rows: []models.FlightSummary{{ID: 1}}}
		filters := newFakeFilterStore()
		filters.getErr = assert.AnError
		filters.saveErr = assert.AnError
		svc := newTestBoardService(querier, filters)

		rows, _, err := svc.QueryFlights(ctx, "user-1", false, models.BoardFilter{})
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Query error propagates", func(t *testing.T) {
		querier := &fakeBoardQuerier{err: assert.AnError}
		svc := newTestBoardService(querier, newFakeFilterStore())

		_, _, err := svc.QueryFlights(ctx, "", false, models.BoardFilter{})
		assert.Error(t, err)
	})
}

func TestBoardResetFilters(t *testing.T) {
	querier := &fakeBoardQuerier{}
	filters := newFakeFilterStore()
	filters.saved["user-1"] = models.BoardFilter{Board: models.BoardArrivals}
	svc := newTestBoardService(querier, filters)

	require.NoError(t, svc.ResetFilters(context.Background(), "user-1"))
	assert.Empty(t, filters.saved)

	// next parameterless query falls back to the defaults
	_, effective, err := svc.QueryFlights(context.Background(), "user-1", false, models.BoardFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.BoardDepartures, effective.Board)
}
