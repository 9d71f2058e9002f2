package command

import (
	"context"
	"testing"

	"transitops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executorFixture() (*DefaultActionExecutor, *fakeTripRepo, *fakeNetworkRepo, *fakeFleetRepo) {
	trips := newFakeTripRepo(
		&models.Trip{ID: 1, Name: "Morning Express", RouteID: 10, ServiceDate: "2026-09-01", DepartureTime: "09:30", Status: models.TripScheduled, Capacity: 40, VehicleID: 7, DriverID: 3},
		&models.Trip{ID: 2, Name: "Yesterday Run", Status: models.TripCompleted},
	)
	network := newFakeNetworkRepo()
	network.routes[10] = &models.Route{ID: 10, Name: "Downtown Line", PathID: 20}
	network.paths[20] = &models.Path{ID: 20, Name: "Main Corridor", StopIDs: []int64{30, 31}}
	network.stops[30] = &models.Stop{ID: 30, Name: "Central"}
	network.stops[31] = &models.Stop{ID: 31, Name: "Harbor"}
	fleet := newFakeFleetRepo()
	fleet.vehicles[7] = &models.Vehicle{ID: 7, Registration: "KDA 001A", Capacity: 40, Active: true}
	fleet.vehicles[8] = &models.Vehicle{ID: 8, Registration: "KDA 002B", Capacity: 30, Active: false}
	fleet.drivers[3] = &models.Driver{ID: 3, Name: "Asha Mwangi", Active: true}
	bookings := &fakeBookingRepo{
		counts: map[int64]int64{1: 2},
		seats:  map[int64]int64{1: 4},
	}
	return &DefaultActionExecutor{
		TripRepo:    trips,
		NetworkRepo: network,
		FleetRepo:   fleet,
		BookingRepo: bookings,
	}, trips, network, fleet
}

func tripTarget(id int64, label string) *models.ResolvedTarget {
	return &models.ResolvedTarget{Kind: models.KindTrip, ID: id, Label: label}
}

func TestExecuteShowTrip(t *testing.T) {
	e, _, _, _ := executorFixture()
	res, err := e.Execute(context.Background(), "op-1", models.ActionShowTrip, tripTarget(1, "Morning Express"), nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Contains(t, res.Message, "Morning Express")
}

func TestExecuteListTripsByDate(t *testing.T) {
	e, _, _, _ := executorFixture()
	res, err := e.Execute(context.Background(), "op-1", models.ActionListTrips, nil, map[string]string{"date": "2026-09-01"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	trips := res.Detail["trips"].([]models.Trip)
	assert.Len(t, trips, 1)
}

func TestExecuteCancelTripCascades(t *testing.T) {
	e, trips, _, _ := executorFixture()
	res, err := e.Execute(context.Background(), "op-1", models.ActionCancelTrip, tripTarget(1, "Morning Express"), nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, models.TripCancelled, trips.trips[1].Status)
	assert.Equal(t, int64(3), res.Detail["cancelledBookings"])
}

func TestExecuteCompletedTripRejected(t *testing.T) {
	e, _, _, _ := executorFixture()
	for _, action := range []models.Action{
		models.ActionCancelTrip,
		models.ActionChangeTripTime,
		models.ActionRenameTrip,
		models.ActionRemoveDriver,
	} {
		params := map[string]string{"new_time": "10:00", "new_name": "x"}
		_, err := e.Execute(context.Background(), "op-1", action, tripTarget(2, "Yesterday Run"), params)
		assert.ErrorIs(t, err, ErrCompletedTarget, string(action))
	}
}

func TestExecuteChangeTripTimeValidatesFormat(t *testing.T) {
	e, trips, _, _ := executorFixture()
	_, err := e.Execute(context.Background(), "op-1", models.ActionChangeTripTime, tripTarget(1, "Morning Express"), map[string]string{"new_time": "25:99"})
	assert.ErrorIs(t, err, ErrMissingParam)

	res, err := e.Execute(context.Background(), "op-1", models.ActionChangeTripTime, tripTarget(1, "Morning Express"), map[string]string{"new_time": "10:15"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "10:15", trips.trips[1].DepartureTime)
}

func TestExecuteAssignVehicleVerifiesExistenceAndActivity(t *testing.T) {
	e, trips, _, _ := executorFixture()

	_, err := e.Execute(context.Background(), "op-1", models.ActionAssignVehicle, tripTarget(1, "Morning Express"), map[string]string{"vehicle_id": "99"})
	assert.Error(t, err)

	_, err = e.Execute(context.Background(), "op-1", models.ActionAssignVehicle, tripTarget(1, "Morning Express"), map[string]string{"vehicle_id": "8"})
	assert.Error(t, err) // inactive

	res, err := e.Execute(context.Background(), "op-1", models.ActionAssignVehicle, tripTarget(1, "Morning Express"), map[string]string{"vehicle_id": "7"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int64(7), trips.trips[1].VehicleID)
}

func TestExecuteRemoveDriverNoop(t *testing.T) {
	e, trips, _, _ := executorFixture()
	trips.trips[1].DriverID = 0
	res, err := e.Execute(context.Background(), "op-1", models.ActionRemoveDriver, tripTarget(1, "Morning Express"), nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Contains(t, res.Message, "no driver")
}

func TestExecuteRenameRoute(t *testing.T) {
	e, _, network, _ := executorFixture()
	target := &models.ResolvedTarget{Kind: models.KindRoute, ID: 10, Label: "Downtown Line"}
	res, err := e.Execute(context.Background(), "op-1", models.ActionRenameRoute, target, map[string]string{"new_name": "City Line"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "City Line", network.routes[10].Name)
}

func TestExecuteCreateTrip(t *testing.T) {
	e, trips, _, _ := executorFixture()
	params := map[string]string{
		"name":     "Evening Express",
		"date":     "2026-09-02",
		"time":     "18:00",
		"route_id": "10",
		"capacity": "35",
	}
	res, err := e.Execute(context.Background(), "op-1", models.ActionCreateTrip, nil, params)
	require.NoError(t, err)
	assert.True(t, res.OK)

	id := res.Detail["tripId"].(int64)
	created := trips.trips[id]
	require.NotNil(t, created)
	assert.Equal(t, "Evening Express", created.Name)
	assert.Equal(t, 35, created.Capacity)
	assert.Equal(t, models.TripScheduled, created.Status)
}

func TestExecuteCreateTripUnknownRouteRejected(t *testing.T) {
	e, _, _, _ := executorFixture()
	params := map[string]string{"name": "X", "date": "2026-09-02", "time": "18:00", "route_id": "404"}
	_, err := e.Execute(context.Background(), "op-1", models.ActionCreateTrip, nil, params)
	assert.Error(t, err)
}

func TestExecuteCreatePathNeedsTwoKnownStops(t *testing.T) {
	e, _, network, _ := executorFixture()

	_, err := e.Execute(context.Background(), "op-1", models.ActionCreatePath, nil, map[string]string{"name": "Short", "stop_ids": "30"})
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = e.Execute(context.Background(), "op-1", models.ActionCreatePath, nil, map[string]string{"name": "Ghost", "stop_ids": "30,404"})
	assert.Error(t, err)

	res, err := e.Execute(context.Background(), "op-1", models.ActionCreatePath, nil, map[string]string{"name": "Loop", "stop_ids": "30, 31"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	id := res.Detail["pathId"].(int64)
	assert.Equal(t, []int64{30, 31}, network.paths[id].StopIDs)
}

func TestExecuteUnknownActionRejected(t *testing.T) {
	e, _, _, _ := executorFixture()
	_, err := e.Execute(context.Background(), "op-1", models.Action("fly_to_moon"), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestExecuteMissingParam(t *testing.T) {
	e, _, _, _ := executorFixture()
	_, err := e.Execute(context.Background(), "op-1", models.ActionRenameTrip, tripTarget(1, "Morning Express"), nil)
	assert.ErrorIs(t, err, ErrMissingParam)
}
