package command

import (
	"context"
	"sync"
	"time"

	fleetRepo "transitops/database/repository/fleet"
	networkRepo "transitops/database/repository/network"
	tripRepo "transitops/database/repository/trip"
	"transitops/models"
)

// fakeTripRepo is an in-memory TripRepository.
type fakeTripRepo struct {
	trips    map[int64]*models.Trip
	renames  []string
	cancels  []int64
	failNext error
}

func newFakeTripRepo(trips ...*models.Trip) *fakeTripRepo {
	r := &fakeTripRepo{trips: map[int64]*models.Trip{}}
	for _, t := range trips {
		r.trips[t.ID] = t
	}
	return r
}

func (r *fakeTripRepo) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return nil, err
	}
	t, ok := r.trips[id]
	if !ok {
		return nil, tripRepo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTripRepo) FindByDeparture(ctx context.Context, departureTime string) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range r.trips {
		if t.DepartureTime == departureTime && t.Status != models.TripCompleted && t.Status != models.TripCancelled {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) ListUpcoming(ctx context.Context) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range r.trips {
		if t.Status == models.TripScheduled || t.Status == models.TripInProgress {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) ListByDate(ctx context.Context, serviceDate string) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range r.trips {
		if t.ServiceDate == serviceDate {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTripRepo) Create(ctx context.Context, trip *models.Trip, audit models.AuditRecord) (int64, error) {
	id := int64(len(r.trips) + 1000)
	trip.ID = id
	trip.Status = models.TripScheduled
	r.trips[id] = trip
	return id, nil
}

func (r *fakeTripRepo) Rename(ctx context.Context, id int64, name string, audit models.AuditRecord) error {
	t, ok := r.trips[id]
	if !ok {
		return tripRepo.ErrNotFound
	}
	t.Name = name
	r.renames = append(r.renames, name)
	return nil
}

func (r *fakeTripRepo) ChangeDeparture(ctx context.Context, id int64, departureTime string, audit models.AuditRecord) error {
	t, ok := r.trips[id]
	if !ok {
		return tripRepo.ErrNotFound
	}
	t.DepartureTime = departureTime
	return nil
}

func (r *fakeTripRepo) AssignVehicle(ctx context.Context, id, vehicleID int64, audit models.AuditRecord) error {
	t, ok := r.trips[id]
	if !ok {
		return tripRepo.ErrNotFound
	}
	t.VehicleID = vehicleID
	return nil
}

func (r *fakeTripRepo) AssignDriver(ctx context.Context, id, driverID int64, audit models.AuditRecord) error {
	t, ok := r.trips[id]
	if !ok {
		return tripRepo.ErrNotFound
	}
	t.DriverID = driverID
	return nil
}

func (r *fakeTripRepo) RemoveDriver(ctx context.Context, id int64, audit models.AuditRecord) error {
	t, ok := r.trips[id]
	if !ok {
		return tripRepo.ErrNotFound
	}
	t.DriverID = 0
	return nil
}

func (r *fakeTripRepo) CancelCascade(ctx context.Context, id int64, audit models.AuditRecord) (int64, error) {
	t, ok := r.trips[id]
	if !ok {
		return 0, tripRepo.ErrNotFound
	}
	t.Status = models.TripCancelled
	r.cancels = append(r.cancels, id)
	return 3, nil
}

func (r *fakeTripRepo) RemoveVehicleCascade(ctx context.Context, id int64, audit models.AuditRecord) (int64, error) {
	t, ok := r.trips[id]
	if !ok {
		return 0, tripRepo.ErrNotFound
	}
	t.VehicleID = 0
	return 2, nil
}

// fakeNetworkRepo is an in-memory NetworkRepository.
type fakeNetworkRepo struct {
	routes map[int64]*models.Route
	paths  map[int64]*models.Path
	stops  map[int64]*models.Stop
}

func newFakeNetworkRepo() *fakeNetworkRepo {
	return &fakeNetworkRepo{
		routes: map[int64]*models.Route{},
		paths:  map[int64]*models.Path{},
		stops:  map[int64]*models.Stop{},
	}
}

func (r *fakeNetworkRepo) GetRouteByID(ctx context.Context, id int64) (*models.Route, error) {
	rt, ok := r.routes[id]
	if !ok {
		return nil, networkRepo.ErrNotFound
	}
	return rt, nil
}

func (r *fakeNetworkRepo) GetPathByID(ctx context.Context, id int64) (*models.Path, error) {
	p, ok := r.paths[id]
	if !ok {
		return nil, networkRepo.ErrNotFound
	}
	return p, nil
}

func (r *fakeNetworkRepo) GetStopByID(ctx context.Context, id int64) (*models.Stop, error) {
	s, ok := r.stops[id]
	if !ok {
		return nil, networkRepo.ErrNotFound
	}
	return s, nil
}

func (r *fakeNetworkRepo) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var out []models.Route
	for _, rt := range r.routes {
		out = append(out, *rt)
	}
	return out, nil
}

func (r *fakeNetworkRepo) ListPaths(ctx context.Context) ([]models.Path, error) {
	var out []models.Path
	for _, p := range r.paths {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeNetworkRepo) ListStops(ctx context.Context) ([]models.Stop, error) {
	var out []models.Stop
	for _, s := range r.stops {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeNetworkRepo) CreateRoute(ctx context.Context, route *models.Route, audit models.AuditRecord) (int64, error) {
	id := int64(len(r.routes) + 100)
	route.ID = id
	r.routes[id] = route
	return id, nil
}

func (r *fakeNetworkRepo) CreatePath(ctx context.Context, path *models.Path, audit models.AuditRecord) (int64, error) {
	id := int64(len(r.paths) + 200)
	path.ID = id
	r.paths[id] = path
	return id, nil
}

func (r *fakeNetworkRepo) CreateStop(ctx context.Context, stop *models.Stop, audit models.AuditRecord) (int64, error) {
	id := int64(len(r.stops) + 300)
	stop.ID = id
	r.stops[id] = stop
	return id, nil
}

func (r *fakeNetworkRepo) RenameRoute(ctx context.Context, id int64, name string, audit models.AuditRecord) error {
	rt, ok := r.routes[id]
	if !ok {
		return networkRepo.ErrNotFound
	}
	rt.Name = name
	return nil
}

// fakeFleetRepo is an in-memory FleetRepository.
type fakeFleetRepo struct {
	vehicles map[int64]*models.Vehicle
	drivers  map[int64]*models.Driver
}

func newFakeFleetRepo() *fakeFleetRepo {
	return &fakeFleetRepo{vehicles: map[int64]*models.Vehicle{}, drivers: map[int64]*models.Driver{}}
}

func (r *fakeFleetRepo) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, fleetRepo.ErrNotFound
	}
	return v, nil
}

func (r *fakeFleetRepo) GetDriverByID(ctx context.Context, id int64) (*models.Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, fleetRepo.ErrNotFound
	}
	return d, nil
}

func (r *fakeFleetRepo) ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range r.vehicles {
		if v.Active {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeFleetRepo) ListActiveDrivers(ctx context.Context) ([]models.Driver, error) {
	var out []models.Driver
	for _, d := range r.drivers {
		if d.Active {
			out = append(out, *d)
		}
	}
	return out, nil
}

// fakeBookingRepo returns fixed counts per trip.
type fakeBookingRepo struct {
	counts map[int64]int64
	seats  map[int64]int64
}

func (r *fakeBookingRepo) CountConfirmedByTrip(ctx context.Context, tripID int64) (int64, error) {
	return r.counts[tripID], nil
}

func (r *fakeBookingRepo) SeatsConfirmedByTrip(ctx context.Context, tripID int64) (int64, error) {
	return r.seats[tripID], nil
}

func (r *fakeBookingRepo) ListByTrip(ctx context.Context, tripID int64) ([]models.Booking, error) {
	var out []models.Booking
	for i := int64(0); i < r.counts[tripID]; i++ {
		out = append(out, models.Booking{ID: i + 1, TripID: tripID, Status: models.BookingConfirmed})
	}
	return out, nil
}

// memSessionStore is an in-memory SessionStore with the same atomicity
// contract as the Redis implementation.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.ConfirmationSession
	owners   map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{
		sessions: map[string]*models.ConfirmationSession{},
		owners:   map[string]string{},
	}
}

func (s *memSessionStore) Get(ctx context.Context, sessionID string) (*models.ConfirmationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNothingToConfirm
	}
	cp := *sess
	return &cp, nil
}

func (s *memSessionStore) Set(ctx context.Context, session *models.ConfirmationSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.SessionID] = &cp
	return nil
}

func (s *memSessionStore) CompareAndSwapStatus(ctx context.Context, sessionID, from, to string) (*models.ConfirmationSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false, ErrNothingToConfirm
	}
	if sess.Status != from {
		cp := *sess
		return &cp, false, nil
	}
	sess.Status = to
	cp := *sess
	return &cp, true, nil
}

func (s *memSessionStore) SetOwnerIndex(ctx context.Context, operatorID, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[operatorID] = sessionID
	return nil
}

func (s *memSessionStore) GetOwnerIndex(ctx context.Context, operatorID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[operatorID], nil
}

func (s *memSessionStore) DelOwnerIndex(ctx context.Context, operatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, operatorID)
	return nil
}
