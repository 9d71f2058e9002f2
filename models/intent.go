package models

// Action tags the interpreter may propose. The set is closed: anything outside
// it is normalized to ActionUnknown before entering the pipeline.
type Action string

const (
	// Safe actions: reads and mutations without externally visible impact.
	ActionShowTrip     Action = "show_trip"
	ActionListTrips    Action = "list_trips"
	ActionListRoutes   Action = "list_routes"
	ActionListVehicles Action = "list_vehicles"
	ActionListDrivers  Action = "list_drivers"
	ActionShowBookings Action = "show_bookings"
	ActionRenameRoute  Action = "rename_route"
	ActionRenameTrip   Action = "rename_trip"

	// Risky actions: can strand passengers, vehicles or drivers.
	ActionCancelTrip     Action = "cancel_trip"
	ActionChangeTripTime Action = "change_trip_time"
	ActionAssignVehicle  Action = "assign_vehicle"
	ActionRemoveVehicle  Action = "remove_vehicle"
	ActionAssignDriver   Action = "assign_driver"
	ActionRemoveDriver   Action = "remove_driver"

	// Creation actions hand over to the slot-filling wizard.
	ActionCreateTrip  Action = "create_trip"
	ActionCreateRoute Action = "create_route"
	ActionCreatePath  Action = "create_path"
	ActionCreateStop  Action = "create_stop"

	ActionUnknown Action = "unknown"
)

var knownActions = map[Action]bool{
	ActionShowTrip: true, ActionListTrips: true, ActionListRoutes: true,
	ActionListVehicles: true, ActionListDrivers: true, ActionShowBookings: true,
	ActionRenameRoute: true, ActionRenameTrip: true,
	ActionCancelTrip: true, ActionChangeTripTime: true,
	ActionAssignVehicle: true, ActionRemoveVehicle: true,
	ActionAssignDriver: true, ActionRemoveDriver: true,
	ActionCreateTrip: true, ActionCreateRoute: true,
	ActionCreatePath: true, ActionCreateStop: true,
	ActionUnknown: true,
}

// KnownAction reports whether the tag belongs to the closed action set.
func KnownAction(a Action) bool {
	return knownActions[a]
}

// IsCreation reports whether the action starts a creation wizard.
func (a Action) IsCreation() bool {
	switch a {
	case ActionCreateTrip, ActionCreateRoute, ActionCreatePath, ActionCreateStop:
		return true
	}
	return false
}

// Intent is the schema-validated structured guess returned by the interpreter.
// It is a guess: nothing in it may be acted on before independent verification.
type Intent struct {
	Action               Action            `json:"action"`
	TargetLabel          string            `json:"target_label,omitempty"`
	TargetTime           string            `json:"target_time,omitempty"` // HH:MM
	TargetID             int64             `json:"target_id,omitempty"`
	Parameters           map[string]string `json:"parameters,omitempty"`
	Confidence           float64           `json:"confidence"`
	Ambiguous            bool              `json:"ambiguous"`
	ClarificationOptions []string          `json:"clarification_options,omitempty"`
	Rationale            string            `json:"rationale,omitempty"`
}

// UnknownIntent is the adapter's hard fallback: never an error, always this.
func UnknownIntent(rationale string) *Intent {
	return &Intent{
		Action:     ActionUnknown,
		Confidence: 0,
		Ambiguous:  true,
		Rationale:  rationale,
		Parameters: map[string]string{},
	}
}
