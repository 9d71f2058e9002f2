package models

import "time"

// Trip live states.
const (
	TripScheduled  = "scheduled"
	TripInProgress = "in_progress"
	TripCompleted  = "completed"
	TripCancelled  = "cancelled"
)

// Stop is a named boarding point.
type Stop struct {
	ID        int64     `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Code      string    `bson:"code,omitempty" json:"code,omitempty"`
	Latitude  float64   `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude float64   `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Path is an ordered sequence of stops a route travels over.
type Path struct {
	ID        int64     `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	StopIDs   []int64   `bson:"stopIds" json:"stopIds"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Route is a scheduled service pattern over a path.
type Route struct {
	ID             int64     `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	PathID         int64     `bson:"pathId" json:"pathId"`
	FirstDeparture string    `bson:"firstDeparture,omitempty" json:"firstDeparture,omitempty"` // HH:MM
	LastDeparture  string    `bson:"lastDeparture,omitempty" json:"lastDeparture,omitempty"`   // HH:MM
	HeadwayMinutes int       `bson:"headwayMinutes,omitempty" json:"headwayMinutes,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// Trip is a single dated departure of a route.
type Trip struct {
	ID            int64     `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	RouteID       int64     `bson:"routeId" json:"routeId"`
	ServiceDate   string    `bson:"serviceDate" json:"serviceDate"`     // YYYY-MM-DD
	DepartureTime string    `bson:"departureTime" json:"departureTime"` // HH:MM
	Status        string    `bson:"status" json:"status"`
	Capacity      int       `bson:"capacity" json:"capacity"`
	VehicleID     int64     `bson:"vehicleId,omitempty" json:"vehicleId,omitempty"`
	DriverID      int64     `bson:"driverId,omitempty" json:"driverId,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasDeployment reports whether a vehicle or driver is currently assigned.
func (t *Trip) HasDeployment() bool {
	return t.VehicleID != 0 || t.DriverID != 0
}
