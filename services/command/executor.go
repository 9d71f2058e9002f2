// File: services/command/executor.go
package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	bookingRepo "transitops/database/repository/booking"
	fleetRepo "transitops/database/repository/fleet"
	networkRepo "transitops/database/repository/network"
	tripRepo "transitops/database/repository/trip"
	"transitops/models"

	"github.com/google/uuid"
)

// ActionExecutor performs a fully resolved action against storage and
// returns an operator-facing result. It is the only pipeline stage allowed
// to mutate.
type ActionExecutor interface {
	Execute(ctx context.Context, operatorID string, action models.Action, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error)
}

// DefaultActionExecutor dispatches over the closed action set.
type DefaultActionExecutor struct {
	TripRepo    tripRepo.TripRepository
	NetworkRepo networkRepo.NetworkRepository
	FleetRepo   fleetRepo.FleetRepository
	BookingRepo bookingRepo.BookingRepository
}

var (
	hhmmRe   = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	idListRe = regexp.MustCompile(`[,\s]+`)
)

func (e *DefaultActionExecutor) Execute(ctx context.Context, operatorID string, action models.Action, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error) {
	if params == nil {
		params = map[string]string{}
	}
	switch action {
	case models.ActionShowTrip:
		return e.showTrip(ctx, target)
	case models.ActionListTrips:
		return e.listTrips(ctx, params)
	case models.ActionListRoutes:
		return e.listRoutes(ctx)
	case models.ActionListVehicles:
		return e.listVehicles(ctx)
	case models.ActionListDrivers:
		return e.listDrivers(ctx)
	case models.ActionShowBookings:
		return e.showBookings(ctx, target)
	case models.ActionRenameRoute:
		return e.renameRoute(ctx, operatorID, target, params)
	case models.ActionRenameTrip:
		return e.renameTrip(ctx, operatorID, target, params)
	case models.ActionCancelTrip:
		return e.cancelTrip(ctx, operatorID, target)
	case models.ActionChangeTripTime:
		return e.changeTripTime(ctx, operatorID, target, params)
	case models.ActionAssignVehicle:
		return e.assignVehicle(ctx, operatorID, target, params)
	case models.ActionRemoveVehicle:
		return e.removeVehicle(ctx, operatorID, target)
	case models.ActionAssignDriver:
		return e.assignDriver(ctx, operatorID, target, params)
	case models.ActionRemoveDriver:
		return e.removeDriver(ctx, operatorID, target)
	case models.ActionCreateTrip:
		return e.createTrip(ctx, operatorID, params)
	case models.ActionCreateRoute:
		return e.createRoute(ctx, operatorID, params)
	case models.ActionCreatePath:
		return e.createPath(ctx, operatorID, params)
	case models.ActionCreateStop:
		return e.createStop(ctx, operatorID, params)
	default:
		return nil, ErrUnknownAction
	}
}

func newAudit(operatorID string, action models.Action, kind string, entityID int64, detail map[string]any) models.AuditRecord {
	return models.AuditRecord{
		ID:         uuid.New().String(),
		Action:     string(action),
		OperatorID: operatorID,
		EntityKind: kind,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
}

func requireParam(params map[string]string, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

func requireIntParam(params map[string]string, key string) (int64, error) {
	raw, err := requireParam(params, key)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric", ErrMissingParam, key)
	}
	return id, nil
}

// mutableTrip fetches the trip and enforces the terminal-state rule: once a
// trip is completed, no action may touch it.
func (e *DefaultActionExecutor) mutableTrip(ctx context.Context, id int64) (*models.Trip, error) {
	trip, err := e.TripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status == models.TripCompleted {
		return nil, ErrCompletedTarget
	}
	return trip, nil
}

// Safe reads.

func (e *DefaultActionExecutor) showTrip(ctx context.Context, target *models.ResolvedTarget) (*models.CommandResult, error) {
	trip, err := e.TripRepo.GetByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("%s departs %s at %s (%s).", trip.Name, trip.ServiceDate, trip.DepartureTime, trip.Status),
		Detail:  map[string]any{"trip": trip},
	}, nil
}

func (e *DefaultActionExecutor) listTrips(ctx context.Context, params map[string]string) (*models.CommandResult, error) {
	var (
		trips []models.Trip
		err   error
	)
	if date := params["date"]; date != "" {
		trips, err = e.TripRepo.ListByDate(ctx, date)
	} else {
		trips, err = e.TripRepo.ListUpcoming(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Found %d trips.", len(trips)),
		Detail:  map[string]any{"trips": trips},
	}, nil
}

func (e *DefaultActionExecutor) listRoutes(ctx context.Context) (*models.CommandResult, error) {
	routes, err := e.NetworkRepo.ListRoutes(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Found %d routes.", len(routes)),
		Detail:  map[string]any{"routes": routes},
	}, nil
}

func (e *DefaultActionExecutor) listVehicles(ctx context.Context) (*models.CommandResult, error) {
	vehicles, err := e.FleetRepo.ListActiveVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Found %d active vehicles.", len(vehicles)),
		Detail:  map[string]any{"vehicles": vehicles},
	}, nil
}

func (e *DefaultActionExecutor) listDrivers(ctx context.Context) (*models.CommandResult, error) {
	drivers, err := e.FleetRepo.ListActiveDrivers(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Found %d active drivers.", len(drivers)),
		Detail:  map[string]any{"drivers": drivers},
	}, nil
}

func (e *DefaultActionExecutor) showBookings(ctx context.Context, target *models.ResolvedTarget) (*models.CommandResult, error) {
	bookings, err := e.BookingRepo.ListByTrip(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("%s has %d bookings.", target.Label, len(bookings)),
		Detail:  map[string]any{"bookings": bookings},
	}, nil
}

// Safe mutations.

func (e *DefaultActionExecutor) renameRoute(ctx context.Context, operatorID string, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error) {
	name, err := requireParam(params, "new_name")
	if err != nil {
		return nil, err
	}
	audit := newAudit(operatorID, models.ActionRenameRoute, models.KindRoute, target.ID, map[string]any{"from": target.Label, "to": name})
	if err := e.NetworkRepo.RenameRoute(ctx, target.ID, name, audit); err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Renamed route %s to %s.", target.Label, name),
	}, nil
}

func (e *DefaultActionExecutor) renameTrip(ctx context.Context, operatorID string, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error) {
	name, err := requireParam(params, "new_name")
	if err != nil {
		return nil, err
	}
	if _, err := e.mutableTrip(ctx, target.ID); err != nil {
		return nil, err
	}
	audit := newAudit(operatorID, models.ActionRenameTrip, models.KindTrip, target.ID, map[string]any{"from": target.Label, "to": name})
	if err := e.TripRepo.Rename(ctx, target.ID, name, audit); err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Renamed trip %s to %s.", target.Label, name),
	}, nil
}

// Risky mutations.

func (e *DefaultActionExecutor) cancelTrip(ctx context.Context, operatorID string, target *models.ResolvedTarget) (*models.CommandResult, error) {
	if _, err := e.mutableTrip(ctx, target.ID); err != nil {
		return nil, err
	}
	audit := newAudit(operatorID, models.ActionCancelTrip, models.KindTrip, target.ID, nil)
	cancelled, err := e.TripRepo.CancelCascade(ctx, target.ID, audit)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Cancelled %s and its %d bookings.", target.Label, cancelled),
		Detail:  map[string]any{"cancelledBookings": cancelled},
	}, nil
}

func (e *DefaultActionExecutor) changeTripTime(ctx context.Context, operatorID string, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error) {
	newTime, err := requireParam(params, "new_time")
	if err != nil {
		return nil, err
	}
	if !hhmmRe.MatchString(newTime) {
		return nil, fmt.Errorf("%w: new_time must be HH:MM", ErrMissingParam)
	}
	trip, err := e.mutableTrip(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	audit := newAudit(operatorID, models.ActionChangeTripTime, models.KindTrip, target.ID, map[string]any{"from": trip.DepartureTime, "to": newTime})
	if err := e.TripRepo.ChangeDeparture(ctx, target.ID, newTime, audit); err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Moved %s from %s to %s.", target.Label, trip.DepartureTime, newTime),
	}, nil
}

func (e *DefaultActionExecutor) assignVehicle(ctx context.Context, operatorID string, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error) {
	vehicleID, err := requireIntParam(params, "vehicle_id")
	if err != nil {
		return nil, err
	}
	vehicle, err := e.FleetRepo.GetVehicleByID(ctx, vehicleID)
	if errors.Is(err, fleetRepo.ErrNotFound) {
		return nil, fmt.Errorf("vehicle %d does not exist", vehicleID)
	}
	if err != nil {
		return nil, err
	}
	if !vehicle.Active {
		return nil, fmt.Errorf("vehicle %s is not in service", vehicle.Registration)
	}
	if _, err := e.mutableTrip(ctx, target.ID); err != nil {
		return nil, err
	}
	audit := newAudit(operatorID, models.ActionAssignVehicle, models.KindTrip, target.ID, map[string]any{"vehicleId": vehicleID})
	if err := e.TripRepo.AssignVehicle(ctx, target.ID, vehicleID, audit); err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Assigned vehicle %s to %s.", vehicle.Registration, target.Label),
	}, nil
}

func (e *DefaultActionExecutor) removeVehicle(ctx context.Context, operatorID string, target *models.ResolvedTarget) (*models.CommandResult, error) {
	trip, err := e.mutableTrip(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if trip.VehicleID == 0 {
		return &models.CommandResult{OK: true, Message: fmt.Sprintf("%s has no vehicle assigned.", target.Label)}, nil
	}
	audit := newAudit(operatorID, models.ActionRemoveVehicle, models.KindTrip, target.ID, map[string]any{"vehicleId": trip.VehicleID})
	cancelled, err := e.TripRepo.RemoveVehicleCascade(ctx, target.ID, audit)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Removed the vehicle from %s and cancelled %d bookings.", target.Label, cancelled),
		Detail:  map[string]any{"cancelledBookings": cancelled},
	}, nil
}

func (e *DefaultActionExecutor) assignDriver(ctx context.Context, operatorID string, target *models.ResolvedTarget, params map[string]string) (*models.CommandResult, error) {
	driverID, err := requireIntParam(params, "driver_id")
	if err != nil {
		return nil, err
	}
	driver, err := e.FleetRepo.GetDriverByID(ctx, driverID)
	if errors.Is(err, fleetRepo.ErrNotFound) {
		return nil, fmt.Errorf("driver %d does not exist", driverID)
	}
	if err != nil {
		return nil, err
	}
	if !driver.Active {
		return nil, fmt.Errorf("driver %s is not on duty", driver.Name)
	}
	if _, err := e.mutableTrip(ctx, target.ID); err != nil {
		return nil, err
	}
	audit := newAudit(operatorID, models.ActionAssignDriver, models.KindTrip, target.ID, map[string]any{"driverId": driverID})
	if err := e.TripRepo.AssignDriver(ctx, target.ID, driverID, audit); err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Assigned %s to %s.", driver.Name, target.Label),
	}, nil
}

func (e *DefaultActionExecutor) removeDriver(ctx context.Context, operatorID string, target *models.ResolvedTarget) (*models.CommandResult, error) {
	trip, err := e.mutableTrip(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID == 0 {
		return &models.CommandResult{OK: true, Message: fmt.Sprintf("%s has no driver assigned.", target.Label)}, nil
	}
	audit := newAudit(operatorID, models.ActionRemoveDriver, models.KindTrip, target.ID, map[string]any{"driverId": trip.DriverID})
	if err := e.TripRepo.RemoveDriver(ctx, target.ID, audit); err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Removed the driver from %s.", target.Label),
	}, nil
}

// Creations: invoked by the wizard once every slot is filled and validated.

func (e *DefaultActionExecutor) createTrip(ctx context.Context, operatorID string, params map[string]string) (*models.CommandResult, error) {
	name, err := requireParam(params, "name")
	if err != nil {
		return nil, err
	}
	date, err := requireParam(params, "date")
	if err != nil {
		return nil, err
	}
	departure, err := requireParam(params, "time")
	if err != nil {
		return nil, err
	}
	routeID, err := requireIntParam(params, "route_id")
	if err != nil {
		return nil, err
	}
	if _, err := e.NetworkRepo.GetRouteByID(ctx, routeID); err != nil {
		if errors.Is(err, networkRepo.ErrNotFound) {
			return nil, fmt.Errorf("route %d does not exist", routeID)
		}
		return nil, err
	}

	trip := &models.Trip{
		Name:          name,
		RouteID:       routeID,
		ServiceDate:   date,
		DepartureTime: departure,
	}
	if raw := params["capacity"]; raw != "" {
		capVal, err := strconv.Atoi(raw)
		if err != nil || capVal < 0 {
			return nil, fmt.Errorf("%w: capacity must be a non-negative number", ErrMissingParam)
		}
		trip.Capacity = capVal
	}
	if raw := params["vehicle_id"]; raw != "" {
		vehicleID, err := requireIntParam(params, "vehicle_id")
		if err != nil {
			return nil, err
		}
		if _, err := e.FleetRepo.GetVehicleByID(ctx, vehicleID); err != nil {
			if errors.Is(err, fleetRepo.ErrNotFound) {
				return nil, fmt.Errorf("vehicle %d does not exist", vehicleID)
			}
			return nil, err
		}
		trip.VehicleID = vehicleID
	}
	if raw := params["driver_id"]; raw != "" {
		driverID, err := requireIntParam(params, "driver_id")
		if err != nil {
			return nil, err
		}
		if _, err := e.FleetRepo.GetDriverByID(ctx, driverID); err != nil {
			if errors.Is(err, fleetRepo.ErrNotFound) {
				return nil, fmt.Errorf("driver %d does not exist", driverID)
			}
			return nil, err
		}
		trip.DriverID = driverID
	}

	audit := newAudit(operatorID, models.ActionCreateTrip, models.KindTrip, 0, map[string]any{"name": name, "date": date, "time": departure})
	id, err := e.TripRepo.Create(ctx, trip, audit)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Created trip %s (#%d) on %s at %s.", name, id, date, departure),
		Detail:  map[string]any{"tripId": id},
	}, nil
}

func (e *DefaultActionExecutor) createRoute(ctx context.Context, operatorID string, params map[string]string) (*models.CommandResult, error) {
	name, err := requireParam(params, "name")
	if err != nil {
		return nil, err
	}
	pathID, err := requireIntParam(params, "path_id")
	if err != nil {
		return nil, err
	}
	if _, err := e.NetworkRepo.GetPathByID(ctx, pathID); err != nil {
		if errors.Is(err, networkRepo.ErrNotFound) {
			return nil, fmt.Errorf("path %d does not exist", pathID)
		}
		return nil, err
	}

	route := &models.Route{
		Name:           name,
		PathID:         pathID,
		FirstDeparture: params["first_departure"],
	}
	if raw := params["headway_minutes"]; raw != "" {
		headway, err := strconv.Atoi(raw)
		if err != nil || headway <= 0 {
			return nil, fmt.Errorf("%w: headway_minutes must be a positive number", ErrMissingParam)
		}
		route.HeadwayMinutes = headway
	}

	audit := newAudit(operatorID, models.ActionCreateRoute, models.KindRoute, 0, map[string]any{"name": name, "pathId": pathID})
	id, err := e.NetworkRepo.CreateRoute(ctx, route, audit)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Created route %s (#%d).", name, id),
		Detail:  map[string]any{"routeId": id},
	}, nil
}

func (e *DefaultActionExecutor) createPath(ctx context.Context, operatorID string, params map[string]string) (*models.CommandResult, error) {
	name, err := requireParam(params, "name")
	if err != nil {
		return nil, err
	}
	raw, err := requireParam(params, "stop_ids")
	if err != nil {
		return nil, err
	}
	stopIDs, err := parseIDList(raw)
	if err != nil || len(stopIDs) < 2 {
		return nil, fmt.Errorf("%w: stop_ids must list at least two stop ids", ErrMissingParam)
	}
	for _, stopID := range stopIDs {
		if _, err := e.NetworkRepo.GetStopByID(ctx, stopID); err != nil {
			if errors.Is(err, networkRepo.ErrNotFound) {
				return nil, fmt.Errorf("stop %d does not exist", stopID)
			}
			return nil, err
		}
	}

	path := &models.Path{Name: name, StopIDs: stopIDs}
	audit := newAudit(operatorID, models.ActionCreatePath, models.KindPath, 0, map[string]any{"name": name, "stops": len(stopIDs)})
	id, err := e.NetworkRepo.CreatePath(ctx, path, audit)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Created path %s (#%d) with %d stops.", name, id, len(stopIDs)),
		Detail:  map[string]any{"pathId": id},
	}, nil
}

func (e *DefaultActionExecutor) createStop(ctx context.Context, operatorID string, params map[string]string) (*models.CommandResult, error) {
	name, err := requireParam(params, "name")
	if err != nil {
		return nil, err
	}
	stop := &models.Stop{Name: name, Code: params["code"]}
	audit := newAudit(operatorID, models.ActionCreateStop, models.KindStop, 0, map[string]any{"name": name})
	id, err := e.NetworkRepo.CreateStop(ctx, stop, audit)
	if err != nil {
		return nil, err
	}
	return &models.CommandResult{
		OK:      true,
		Message: fmt.Sprintf("Created stop %s (#%d).", name, id),
		Detail:  map[string]any{"stopId": id},
	}, nil
}

// parseIDList parses a comma-separated id list like "3,7,12".
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range idListRe.Split(raw, -1) {
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
