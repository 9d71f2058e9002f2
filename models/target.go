package models

// Entity kinds a command can act on.
const (
	KindTrip  = "trip"
	KindPath  = "path"
	KindRoute = "route"
	KindStop  = "stop"
)

// ResolvedTarget is a database-verified reference to the entity a command
// acts on. It is only ever constructed after a repository lookup re-confirmed
// existence; interpreter output alone never produces one.
type ResolvedTarget struct {
	Kind  string `json:"kind"`
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
