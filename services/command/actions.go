package command

import "transitops/models"

// Risk classes. SAFE mutations (renames, static-data creation) have no
// externally visible impact; RISKY ones can strand a passenger, vehicle or
// driver, or discard a booking.
const (
	riskSafe   = "safe"
	riskRisky  = "risky"
	riskCreate = "create"
)

// actionSpec statically describes one action tag. The table is closed and
// checked exhaustively; there is no dynamic fallthrough.
type actionSpec struct {
	Risk        string
	TargetKind  string // "" when the action takes no target
	NeedsTarget bool
	Verb        string // used in warnings and audit messages
}

var actionTable = map[models.Action]actionSpec{
	models.ActionShowTrip:     {Risk: riskSafe, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "show"},
	models.ActionListTrips:    {Risk: riskSafe, Verb: "list trips"},
	models.ActionListRoutes:   {Risk: riskSafe, Verb: "list routes"},
	models.ActionListVehicles: {Risk: riskSafe, Verb: "list vehicles"},
	models.ActionListDrivers:  {Risk: riskSafe, Verb: "list drivers"},
	models.ActionShowBookings: {Risk: riskSafe, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "show bookings for"},
	models.ActionRenameRoute:  {Risk: riskSafe, TargetKind: models.KindRoute, NeedsTarget: true, Verb: "rename"},
	models.ActionRenameTrip:   {Risk: riskSafe, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "rename"},

	models.ActionCancelTrip:     {Risk: riskRisky, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "cancel"},
	models.ActionChangeTripTime: {Risk: riskRisky, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "reschedule"},
	models.ActionAssignVehicle:  {Risk: riskRisky, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "assign a vehicle to"},
	models.ActionRemoveVehicle:  {Risk: riskRisky, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "remove the vehicle from"},
	models.ActionAssignDriver:   {Risk: riskRisky, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "assign a driver to"},
	models.ActionRemoveDriver:   {Risk: riskRisky, TargetKind: models.KindTrip, NeedsTarget: true, Verb: "remove the driver from"},

	models.ActionCreateTrip:  {Risk: riskCreate, TargetKind: models.KindTrip, Verb: "create"},
	models.ActionCreateRoute: {Risk: riskCreate, TargetKind: models.KindRoute, Verb: "create"},
	models.ActionCreatePath:  {Risk: riskCreate, TargetKind: models.KindPath, Verb: "create"},
	models.ActionCreateStop:  {Risk: riskCreate, TargetKind: models.KindStop, Verb: "create"},

	models.ActionUnknown: {Risk: riskSafe, Verb: "ignore"},
}

// specFor returns the static spec for an action, normalizing anything
// outside the closed set to unknown.
func specFor(a models.Action) actionSpec {
	if spec, ok := actionTable[a]; ok {
		return spec
	}
	return actionTable[models.ActionUnknown]
}

// isRisky reports whether an action needs consequence analysis.
func isRisky(a models.Action) bool {
	return specFor(a).Risk == riskRisky
}

// confidenceFloor is the minimum interpreter confidence before resolution is
// allowed to proceed without clarification. Risky actions demand more.
func confidenceFloor(a models.Action) float64 {
	if isRisky(a) {
		return 0.7
	}
	return 0.5
}
