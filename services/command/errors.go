package command

import "errors"

// Session failures: surfaced as "nothing to confirm", distinct from
// execution failures.
var (
	ErrNothingToConfirm = errors.New("no confirmation session found")
	ErrAlreadyConsumed  = errors.New("confirmation session already consumed")
	ErrSessionExpired   = errors.New("confirmation session expired")
	ErrForeignSession   = errors.New("confirmation session belongs to another operator")
)

// Business-rule violations: rejected outright, no mutation attempted.
var (
	ErrCompletedTarget = errors.New("completed trips cannot be modified")
	ErrUnknownAction   = errors.New("unknown action")
	ErrMissingParam    = errors.New("required parameter missing")
)
