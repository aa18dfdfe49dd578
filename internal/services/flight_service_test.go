package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prnairport/flight-ops-backend/internal/config"
	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlightStore struct {
	flights   map[int64]*models.Flight
	nextID    int64
	created   []*models.Flight
	updated   []*models.Flight
	deleted   []int64
	createErr error
}

func newFakeFlightStore() *fakeFlightStore {
	return &fakeFlightStore{flights: map[int64]*models.Flight{}, nextID: 1}
}

func (f *fakeFlightStore) Create(flight *models.Flight) error {
	if f.createErr != nil {
		return f.createErr
	}
	flight.ID = f.nextID
	f.nextID++
	flight.CreatedAt = time.Now()
	flight.UpdatedAt = flight.CreatedAt
	copied := *flight
	f.flights[flight.ID] = &copied
	f.created = append(f.created, &copied)
	return nil
}

func (f *fakeFlightStore) GetByID(flightID int64) (*models.Flight, error) {
	flight, ok := f.flights[flightID]
	if !ok || !flight.IsActive {
		return nil, sql.ErrNoRows
	}
	copied := *flight
	return &copied, nil
}

func (f *fakeFlightStore) Update(flight *models.Flight) error {
	existing, ok := f.flights[flight.ID]
	if !ok || !existing.IsActive {
		return sql.ErrNoRows
	}
	copied := *flight
	f.flights[flight.ID] = &copied
	f.updated = append(f.updated, &copied)
	return nil
}

func (f *fakeFlightStore) SoftDelete(flightID int64) error {
	existing, ok := f.flights[flightID]
	if !ok || !existing.IsActive {
		return sql.ErrNoRows
	}
	existing.IsActive = false
	f.deleted = append(f.deleted, flightID)
	return nil
}

type fakeConflictChecker struct {
	conflict      *ConflictError
	err           error
	calls         int
	lastCandidate models.ConflictCandidate
	lastExcludeID *int64
}

func (f *fakeConflictChecker) ValidateNoConflict(candidate models.ConflictCandidate, excludeID *int64) (*ConflictError, error) {
	f.calls++
	f.lastCandidate = candidate
	f.lastExcludeID = excludeID
	return f.conflict, f.err
}

type lockEvent struct {
	op   string
	kind string
	id   int64
}

type fakeResourceLocker struct {
	busy   map[string]bool
	events []lockEvent
}

func newFakeResourceLocker() *fakeResourceLocker {
	return &fakeResourceLocker{busy: map[string]bool{}}
}

func (f *fakeResourceLocker) key(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func (f *fakeResourceLocker) AcquireResourceLock(ctx context.Context, kind string, resourceID int64, ttl time.Duration) (bool, error) {
	f.events = append(f.events, lockEvent{op: "acquire", kind: kind, id: resourceID})
	return !f.busy[f.key(kind, resourceID)], nil
}

func (f *fakeResourceLocker) ReleaseResourceLock(ctx context.Context, kind string, resourceID int64) error {
	f.events = append(f.events, lockEvent{op: "release", kind: kind, id: resourceID})
	return nil
}

type fakeGateGetter struct {
	gates map[int64]*models.Gate
}

func (f *fakeGateGetter) GetByID(gateID int64) (*models.Gate, error) {
	gate, ok := f.gates[gateID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return gate, nil
}

type fakeDeskGetter struct {
	desks map[int64]*models.CheckInDesk
}

func (f *fakeDeskGetter) GetByID(deskID int64) (*models.CheckInDesk, error) {
	desk, ok := f.desks[deskID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return desk, nil
}

type fakeAirlineGetter struct {
	airlines map[int64]*models.Airline
}

func (f *fakeAirlineGetter) GetByID(airlineID int64) (*models.Airline, error) {
	airline, ok := f.airlines[airlineID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return airline, nil
}

// registryFakes covers the reference data every happy-path test needs:
// airline 1, open gates 2 and 3, active desk 7
func registryFakes() (*fakeGateGetter, *fakeDeskGetter, *fakeAirlineGetter) {
	gates := &fakeGateGetter{gates: map[int64]*models.Gate{
		2: {ID: 2, Code: "2", Terminal: "A", Status: models.GateStatusOpen, IsActive: true},
		3: {ID: 3, Code: "3", Terminal: "A", Status: models.GateStatusOpen, IsActive: true},
	}}
	desks := &fakeDeskGetter{desks: map[int64]*models.CheckInDesk{
		7: {ID: 7, Terminal: "A", DeskNumber: 7, IsActive: true},
	}}
	airlines := &fakeAirlineGetter{airlines: map[int64]*models.Airline{
		1: {ID: 1, Name: "Prishtina Air", Code: "PA", IsActive: true},
	}}
	return gates, desks, airlines
}

func testLockCfg() config.SessionConfig {
	return config.SessionConfig{
		FilterTTL:    30 * time.Minute,
		LockTTL:      10 * time.Second,
		LockAttempts: 2,
		LockRetry:    time.Millisecond,
	}
}

func newTestFlightService(store *fakeFlightStore, checker *fakeConflictChecker, locker *fakeResourceLocker) *FlightService {
	gates, desks, airlines := registryFakes()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewFlightService(
		store,
		gates,
		desks,
		airlines,
		checker,
		locker,
		logger,
		config.AirportConfig{HomeCity: "PRISHTINA", HomeCode: "PRN"},
		testLockCfg(),
	)
}

func validDepartureInput() models.FlightInput {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	return models.FlightInput{
		FlightNumber:       "PR123",
		AirlineID:          1,
		GateID:             3,
		Type:               "departure",
		DestinationAirport: "VIE",
		DepartureTime:      start,
		ArrivalTime:        start.Add(2 * time.Hour),
	}
}

func TestFlightServiceCreate(t *testing.T) {
	t.Run("Success with home airport substitution", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		locker := newFakeResourceLocker()
		svc := newTestFlightService(store, checker, locker)

		input := validDepartureInput()
		input.OriginAirport = "JFK" // client-supplied origin must be discarded
		createdBy := uuid.New()

		flight, err := svc.Create(context.Background(), input, createdBy)
		require.NoError(t, err)
		require.NotNil(t, flight)

		assert.Equal(t, "PRN", flight.OriginAirport)
		assert.Equal(t, "VIE", flight.DestinationAirport)
		assert.Equal(t, models.FlightStatusScheduled, flight.Status)
		assert.Equal(t, createdBy, flight.CreatedBy)
		assert.True(t, flight.IsActive)
		assert.Len(t, store.created, 1)
	})

	t.Run("Arrival forces destination", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		input := validDepartureInput()
		input.Type = "arrival"
		input.OriginAirport = "ZRH"
		input.DestinationAirport = "anything"

		flight, err := svc.Create(context.Background(), input, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "ZRH", flight.OriginAirport)
		assert.Equal(t, "PRN", flight.DestinationAirport)
	})

	t.Run("Arrival before departure rejected", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		input := validDepartureInput()
		input.ArrivalTime = input.DepartureTime

		_, err := svc.Create(context.Background(), input, uuid.New())
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, checker.calls, "validation failures must not reach conflict detection")
		assert.Empty(t, store.created)
	})

	t.Run("Conflict blocks persist", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{
			conflict: &ConflictError{Kind: ConflictKindGate, Message: "taken", ConflictingFlightID: 5},
		}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		_, err := svc.Create(context.Background(), validDepartureInput(), uuid.New())
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, int64(5), conflictErr.ConflictingFlightID)
		assert.Empty(t, store.created, "no write may happen on conflict")
	})

	t.Run("Locks taken gate first then desk, released in reverse", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		locker := newFakeResourceLocker()
		svc := newTestFlightService(store, checker, locker)

		deskID := int64(7)
		input := validDepartureInput()
		input.CheckInDeskID = &deskID

		_, err := svc.Create(context.Background(), input, uuid.New())
		require.NoError(t, err)

		require.Len(t, locker.events, 4)
		assert.Equal(t, lockEvent{"acquire", "gate", 3}, locker.events[0])
		assert.Equal(t, lockEvent{"acquire", "desk", 7}, locker.events[1])
		assert.Equal(t, lockEvent{"release", "desk", 7}, locker.events[2])
		assert.Equal(t, lockEvent{"release", "gate", 3}, locker.events[3])
	})

	t.Run("Unknown gate returns NotFoundError", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		input := validDepartureInput()
		input.GateID = 999

		_, err := svc.Create(context.Background(), input, uuid.New())
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "gate", notFoundErr.Resource)
		assert.Equal(t, 0, checker.calls)
	})

	t.Run("Closed gate rejected", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		locker := newFakeResourceLocker()
		gates, desks, airlines := registryFakes()
		gates.gates[4] = &models.Gate{ID: 4, Code: "4", Terminal: "A", Status: models.GateStatusMaintenance, IsActive: true}
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		svc := NewFlightService(store, gates, desks, airlines, checker, locker, logger,
			config.AirportConfig{HomeCode: "PRN"}, testLockCfg())

		input := validDepartureInput()
		input.GateID = 4

		_, err := svc.Create(context.Background(), input, uuid.New())
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Message, "not open for assignment")
		assert.Empty(t, store.created)
	})

	t.Run("Unknown desk returns NotFoundError", func(t *testing.T) {
		store := newFakeFlightStore()
		svc := newTestFlightService(store, &fakeConflictChecker{}, newFakeResourceLocker())

		deskID := int64(999)
		input := validDepartureInput()
		input.CheckInDeskID = &deskID

		_, err := svc.Create(context.Background(), input, uuid.New())
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "check-in desk", notFoundErr.Resource)
	})

	t.Run("Busy gate lock gives up after retries", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		locker := newFakeResourceLocker()
		locker.busy[locker.key("gate", 3)] = true
		svc := newTestFlightService(store, checker, locker)

		_, err := svc.Create(context.Background(), validDepartureInput(), uuid.New())
		assert.ErrorIs(t, err, ErrResourceBusy)
		assert.Equal(t, 0, checker.calls)
		assert.Empty(t, store.created)
	})
}

func TestFlightServiceUpdate(t *testing.T) {
	seed := func(store *fakeFlightStore) *models.Flight {
		flight := &models.Flight{
			FlightNumber:  "PR100",
			AirlineID:     1,
			GateID:        2,
			Type:          models.FlightTypeDeparture,
			OriginAirport: "PRN",
			IsActive:      true,
			CreatedBy:     uuid.New(),
			DepartureTime: time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		}
		_ = store.Create(flight)
		return flight
	}

	t.Run("Excludes itself from conflict check and preserves identity", func(t *testing.T) {
		store := newFakeFlightStore()
		existing := seed(store)
		checker := &fakeConflictChecker{}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		updated, err := svc.Update(context.Background(), existing.ID, validDepartureInput())
		require.NoError(t, err)

		require.NotNil(t, checker.lastExcludeID)
		assert.Equal(t, existing.ID, *checker.lastExcludeID)
		assert.Equal(t, existing.CreatedBy, updated.CreatedBy, "created_by is immutable")
		assert.Equal(t, existing.ID, updated.ID)
	})

	t.Run("Omitted status resets to scheduled", func(t *testing.T) {
		store := newFakeFlightStore()
		flight := &models.Flight{
			FlightNumber:  "PR100",
			AirlineID:     1,
			GateID:        2,
			Type:          models.FlightTypeDeparture,
			Status:        models.FlightStatusDelayed,
			DelayMinutes:  30,
			IsActive:      true,
			CreatedBy:     uuid.New(),
			DepartureTime: time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		}
		_ = store.Create(flight)
		svc := newTestFlightService(store, &fakeConflictChecker{}, newFakeResourceLocker())

		updated, err := svc.Update(context.Background(), flight.ID, validDepartureInput())
		require.NoError(t, err)
		assert.Equal(t, models.FlightStatusScheduled, updated.Status)
		assert.Equal(t, 0, updated.DelayMinutes)
	})

	t.Run("Missing flight returns NotFoundError", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		_, err := svc.Update(context.Background(), 404, validDepartureInput())
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, int64(404), notFoundErr.ID)
		assert.Equal(t, 0, checker.calls)
	})

	t.Run("Conflict leaves stored flight untouched", func(t *testing.T) {
		store := newFakeFlightStore()
		existing := seed(store)
		checker := &fakeConflictChecker{
			conflict: &ConflictError{Kind: ConflictKindDesk, Message: "taken", ConflictingFlightID: 9},
		}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		_, err := svc.Update(context.Background(), existing.ID, validDepartureInput())
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Empty(t, store.updated)
	})
}

func TestFlightServiceRetire(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store := newFakeFlightStore()
		flight := &models.Flight{IsActive: true}
		_ = store.Create(flight)
		svc := newTestFlightService(store, &fakeConflictChecker{}, newFakeResourceLocker())

		err := svc.Retire(context.Background(), flight.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{flight.ID}, store.deleted)
	})

	t.Run("Already retired returns NotFoundError", func(t *testing.T) {
		store := newFakeFlightStore()
		flight := &models.Flight{IsActive: true}
		_ = store.Create(flight)
		svc := newTestFlightService(store, &fakeConflictChecker{}, newFakeResourceLocker())

		require.NoError(t, svc.Retire(context.Background(), flight.ID))

		err := svc.Retire(context.Background(), flight.ID)
		var notFoundErr *NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestFlightServicePreCheck(t *testing.T) {
	t.Run("Rejects inverted window before touching the validator", func(t *testing.T) {
		checker := &fakeConflictChecker{}
		svc := newTestFlightService(newFakeFlightStore(), checker, newFakeResourceLocker())

		start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
		_, err := svc.PreCheck(models.ConflictCandidate{
			GateID:        1,
			DepartureTime: start,
			ArrivalTime:   start,
		}, nil)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, checker.calls)
	})

	t.Run("Reports conflict without writing", func(t *testing.T) {
		store := newFakeFlightStore()
		checker := &fakeConflictChecker{
			conflict: &ConflictError{Kind: ConflictKindGate, Message: "taken", ConflictingFlightID: 3},
		}
		svc := newTestFlightService(store, checker, newFakeResourceLocker())

		start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
		conflict, err := svc.PreCheck(models.ConflictCandidate{
			GateID:        1,
			DepartureTime: start,
			ArrivalTime:   start.Add(time.Hour),
		}, nil)

		require.NoError(t, err)
		require.NotNil(t, conflict)
		assert.Equal(t, int64(3), conflict.ConflictingFlightID)
		assert.Empty(t, store.created)
	})
}
