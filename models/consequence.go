package models

// Consequence quantifies the real-world impact of performing an action on the
// resolved target. Always recomputed from current storage state, never cached.
type Consequence struct {
	BookingCount         int     `json:"bookingCount"`
	BookingFillPercent   float64 `json:"bookingFillPercent"`
	HasActiveDeployment  bool    `json:"hasActiveDeployment"`
	LiveState            string  `json:"liveState"`
	Risky                bool    `json:"risky"`
	HeightenedDisruption bool    `json:"heightenedDisruption"`
}
