// File: services/command/session.go
package command

import (
	"context"
	"fmt"
	"time"

	"transitops/config"
	"transitops/models"
	"transitops/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager owns the confirmation session lifecycle: creation with
// supersede semantics, single-use consumption, cancellation and expiry.
type SessionManager struct {
	Store SessionStore
	Now   func() time.Time
}

func NewSessionManager(store SessionStore) *SessionManager {
	return &SessionManager{Store: store, Now: time.Now}
}

// Create opens a PENDING session for the operator. Any prior pending session
// for the same operator is rewritten as CANCELLED first: a new risky command
// always supersedes, never stacks.
func (m *SessionManager) Create(ctx context.Context, operatorID string, pending models.PendingAction) (*models.ConfirmationSession, error) {
	logger := utils.GetLogger()

	prevID, err := m.Store.GetOwnerIndex(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("owner lookup failed: %w", err)
	}
	if prevID != "" {
		if _, swapped, err := m.Store.CompareAndSwapStatus(ctx, prevID, models.SessionPending, models.SessionCancelled); err == nil && swapped {
			logger.Info("superseded pending confirmation",
				zap.String("operatorId", operatorID),
				zap.String("sessionId", prevID))
		}
	}

	now := m.Now()
	ttl := config.ConfirmationTTL()
	session := &models.ConfirmationSession{
		SessionID:  uuid.New().String(),
		OperatorID: operatorID,
		Status:     models.SessionPending,
		Pending:    pending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := m.Store.Set(ctx, session, ttl); err != nil {
		return nil, err
	}
	if err := m.Store.SetOwnerIndex(ctx, operatorID, session.SessionID, ttl); err != nil {
		return nil, err
	}
	return session, nil
}

// Consume transitions a session PENDING -> CONFIRMED exactly once and hands
// the pending action back for execution. All other outcomes map to a typed
// error the handler translates into a precise reply.
func (m *SessionManager) Consume(ctx context.Context, operatorID, sessionID string) (*models.ConfirmationSession, error) {
	session, err := m.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OperatorID != operatorID {
		return nil, ErrForeignSession
	}
	if session.Expired(m.Now()) {
		if _, _, err := m.Store.CompareAndSwapStatus(ctx, sessionID, models.SessionPending, models.SessionExpired); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	session, swapped, err := m.Store.CompareAndSwapStatus(ctx, sessionID, models.SessionPending, models.SessionConfirmed)
	if err != nil {
		return nil, err
	}
	if !swapped {
		switch session.Status {
		case models.SessionExpired:
			return nil, ErrSessionExpired
		case models.SessionCancelled:
			return nil, ErrNothingToConfirm
		default:
			return nil, ErrAlreadyConsumed
		}
	}
	return session, nil
}

// MarkDone records successful execution of a consumed session. Failure here
// is logged, not surfaced: the mutation already happened.
func (m *SessionManager) MarkDone(ctx context.Context, session *models.ConfirmationSession) {
	if _, _, err := m.Store.CompareAndSwapStatus(ctx, session.SessionID, models.SessionConfirmed, models.SessionDone); err != nil {
		utils.GetLogger().Error("failed to mark session done",
			zap.String("sessionId", session.SessionID), zap.Error(err))
	}
	if err := m.Store.DelOwnerIndex(ctx, session.OperatorID); err != nil {
		utils.GetLogger().Warn("failed to clear owner index",
			zap.String("operatorId", session.OperatorID), zap.Error(err))
	}
}

// Cancel declines a pending session. Cancelling an already-settled session
// is a no-op, not an error.
func (m *SessionManager) Cancel(ctx context.Context, operatorID, sessionID string) error {
	session, err := m.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.OperatorID != operatorID {
		return ErrForeignSession
	}
	if _, _, err := m.Store.CompareAndSwapStatus(ctx, sessionID, models.SessionPending, models.SessionCancelled); err != nil {
		return err
	}
	if err := m.Store.DelOwnerIndex(ctx, operatorID); err != nil {
		return err
	}
	return nil
}

// GetPending returns the operator's current pending session, or nil when
// there is nothing awaiting confirmation.
func (m *SessionManager) GetPending(ctx context.Context, operatorID string) (*models.ConfirmationSession, error) {
	sessionID, err := m.Store.GetOwnerIndex(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, nil
	}
	session, err := m.Store.Get(ctx, sessionID)
	if err == ErrNothingToConfirm {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionPending || session.Expired(m.Now()) {
		return nil, nil
	}
	return session, nil
}

// ExpireIfPending is invoked by the background expiry worker once a
// session's logical TTL has elapsed.
func (m *SessionManager) ExpireIfPending(ctx context.Context, sessionID string) error {
	session, swapped, err := m.Store.CompareAndSwapStatus(ctx, sessionID, models.SessionPending, models.SessionExpired)
	if err == ErrNothingToConfirm {
		return nil
	}
	if err != nil {
		return err
	}
	if swapped {
		utils.GetLogger().Info("expired confirmation session",
			zap.String("sessionId", sessionID),
			zap.String("operatorId", session.OperatorID))
	}
	return nil
}
