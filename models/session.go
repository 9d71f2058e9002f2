package models

import "time"

// Confirmation session statuses. Transitions are forward-only:
// PENDING -> CONFIRMED (+DONE) | CANCELLED | EXPIRED.
const (
	SessionPending   = "PENDING"
	SessionConfirmed = "CONFIRMED"
	SessionCancelled = "CANCELLED"
	SessionDone      = "DONE"
	SessionExpired   = "EXPIRED"
)

// PendingAction is everything needed to re-hydrate and execute a command on
// the follow-up confirm turn.
type PendingAction struct {
	Command     Command        `json:"command"`
	Target      ResolvedTarget `json:"target"`
	Consequence Consequence    `json:"consequence"`
}

// ConfirmationSession is a durable, expiring, single-use record of a risky
// action awaiting operator confirmation.
type ConfirmationSession struct {
	SessionID  string        `json:"sessionId"`
	OperatorID string        `json:"operatorId"`
	Status     string        `json:"status"`
	Pending    PendingAction `json:"pending"`
	CreatedAt  time.Time     `json:"createdAt"`
	ExpiresAt  time.Time     `json:"expiresAt"`
}

// Expired reports whether the session's TTL has elapsed at the given instant.
func (s *ConfirmationSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
