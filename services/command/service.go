// File: services/command/service.go
package command

import (
	"context"
	"errors"
	"fmt"

	"transitops/models"
	"transitops/services/intelligence"
	"transitops/services/wizard"
	"transitops/utils"

	"go.uber.org/zap"
)

// CommandService is the pipeline entry point the handlers talk to.
type CommandService interface {
	Submit(ctx context.Context, cmd *models.Command) (*models.CommandResponse, error)
	Confirm(ctx context.Context, operatorID, sessionID string, confirmed bool) (*models.CommandResponse, error)
	Pending(ctx context.Context, operatorID string) (*models.ConfirmationSession, error)
}

// DefaultCommandService wires the stages together: adapter, resolver,
// analyzer, confirmation sessions, wizard and executor.
type DefaultCommandService struct {
	Adapter  intelligence.IntentAdapter
	Resolver EntityResolver
	Analyzer ConsequenceAnalyzer
	Sessions *SessionManager
	Executor ActionExecutor
	Wizard   wizard.WizardService
	Enqueue  func(ctx context.Context, sessionID string) // schedules expiry; optional
}

// Submit runs one utterance through the pipeline and returns exactly one
// response branch: result, clarification, wizard turn, or confirmation
// request.
func (s *DefaultCommandService) Submit(ctx context.Context, cmd *models.Command) (*models.CommandResponse, error) {
	logger := utils.GetLogger()

	// A wizard in progress captures every turn until it finishes or the
	// operator abandons it.
	active, err := s.Wizard.Active(ctx, cmd.OperatorID)
	if err != nil {
		return nil, err
	}
	if active {
		return s.Wizard.HandleTurn(ctx, cmd.OperatorID, cmd.RawText)
	}

	// A pre-selected trip from an image submission skips interpretation:
	// the operator pointed at a concrete row, no guessing needed.
	if cmd.Origin == models.OriginImage && cmd.Hints.SelectedKind == models.KindTrip && cmd.Hints.SelectedEntityID != 0 {
		cmd.Intent = &models.Intent{
			Action:     models.ActionShowTrip,
			TargetID:   cmd.Hints.SelectedEntityID,
			Confidence: 1,
		}
	} else {
		cmd.Intent = s.Adapter.Parse(ctx, cmd.RawText, cmd.Hints)
	}

	logger.Info("command interpreted",
		zap.String("operatorId", cmd.OperatorID),
		zap.String("origin", cmd.Origin),
		zap.String("action", string(cmd.Intent.Action)),
		zap.Float64("confidence", cmd.Intent.Confidence))

	if cmd.Intent.Action == models.ActionUnknown {
		return &models.CommandResponse{
			Result: &models.CommandResult{
				OK:      false,
				Message: "I didn't understand that. Try something like \"cancel the 9:30 trip\" or \"list routes\".",
			},
		}, nil
	}

	if cmd.Intent.Ambiguous && len(cmd.Intent.ClarificationOptions) > 0 {
		return &models.CommandResponse{
			NeedsClarification: true,
			Clarification:      "I need a bit more detail. Did you mean one of these?",
			Options:            freehandOptions(cmd.Intent.ClarificationOptions),
		}, nil
	}

	if cmd.Intent.Action.IsCreation() {
		return s.Wizard.Start(ctx, cmd.OperatorID, cmd.Intent)
	}

	spec := specFor(cmd.Intent.Action)

	// Targetless safe reads run immediately.
	if !spec.NeedsTarget {
		result, err := s.Executor.Execute(ctx, cmd.OperatorID, cmd.Intent.Action, nil, cmd.Intent.Parameters)
		if err != nil {
			return nil, err
		}
		return &models.CommandResponse{Result: result}, nil
	}

	resolution, err := s.Resolver.Resolve(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if resolution.NeedsClarification {
		return &models.CommandResponse{
			NeedsClarification: true,
			Clarification:      resolution.Prompt,
			Options:            resolution.Options,
		}, nil
	}
	cmd.Target = resolution.Target

	consequence, err := s.Analyzer.Analyze(ctx, cmd.Intent.Action, cmd.Target)
	if errors.Is(err, ErrCompletedTarget) {
		return &models.CommandResponse{
			Result: &models.CommandResult{
				OK:      false,
				Message: fmt.Sprintf("%s has already run. Completed trips can't be changed.", cmd.Target.Label),
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	cmd.Consequence = consequence

	if !consequence.Risky || !isRisky(cmd.Intent.Action) {
		result, err := s.Executor.Execute(ctx, cmd.OperatorID, cmd.Intent.Action, cmd.Target, cmd.Intent.Parameters)
		if errors.Is(err, ErrCompletedTarget) {
			return &models.CommandResponse{
				Result: &models.CommandResult{
					OK:      false,
					Message: fmt.Sprintf("%s has already run. Completed trips can't be changed.", cmd.Target.Label),
				},
			}, nil
		}
		if err != nil {
			return nil, err
		}
		return &models.CommandResponse{Result: result}, nil
	}

	session, err := s.Sessions.Create(ctx, cmd.OperatorID, models.PendingAction{
		Command:     *cmd,
		Target:      *cmd.Target,
		Consequence: *consequence,
	})
	if err != nil {
		return nil, err
	}
	if s.Enqueue != nil {
		s.Enqueue(ctx, session.SessionID)
	}

	return &models.CommandResponse{
		AwaitingConfirmation: true,
		SessionID:            session.SessionID,
		Warning:              warningCopy(cmd.Intent.Action, cmd.Target, consequence),
		Consequence:          consequence,
	}, nil
}

// Confirm settles a pending session: executes on yes, cancels on no.
func (s *DefaultCommandService) Confirm(ctx context.Context, operatorID, sessionID string, confirmed bool) (*models.CommandResponse, error) {
	if !confirmed {
		if err := s.Sessions.Cancel(ctx, operatorID, sessionID); err != nil {
			return sessionErrorResponse(err)
		}
		return &models.CommandResponse{
			Result: &models.CommandResult{OK: true, Message: "Okay, nothing was changed."},
		}, nil
	}

	session, err := s.Sessions.Consume(ctx, operatorID, sessionID)
	if err != nil {
		return sessionErrorResponse(err)
	}

	pending := session.Pending
	result, err := s.Executor.Execute(ctx, operatorID, pending.Command.Intent.Action, &pending.Target, pending.Command.Intent.Parameters)
	if err != nil {
		// The session is consumed; the mutation did not happen. Surface the
		// failure rather than silently retrying a risky action.
		utils.GetLogger().Error("confirmed action failed",
			zap.String("sessionId", sessionID),
			zap.String("action", string(pending.Command.Intent.Action)),
			zap.Error(err))
		return &models.CommandResponse{
			Result: &models.CommandResult{
				OK:      false,
				Message: fmt.Sprintf("The action could not be completed: %v. Please issue the command again.", err),
			},
		}, nil
	}
	s.Sessions.MarkDone(ctx, session)
	return &models.CommandResponse{Result: result}, nil
}

// Pending returns the operator's current pending session, if any.
func (s *DefaultCommandService) Pending(ctx context.Context, operatorID string) (*models.ConfirmationSession, error) {
	return s.Sessions.GetPending(ctx, operatorID)
}

// sessionErrorResponse translates the typed session errors into precise
// operator-facing replies.
func sessionErrorResponse(err error) (*models.CommandResponse, error) {
	var msg string
	switch {
	case errors.Is(err, ErrNothingToConfirm):
		msg = "There's nothing waiting for confirmation."
	case errors.Is(err, ErrAlreadyConsumed):
		msg = "That action was already confirmed. It will not run twice."
	case errors.Is(err, ErrSessionExpired):
		msg = "That confirmation has expired. Please issue the command again."
	case errors.Is(err, ErrForeignSession):
		msg = "That confirmation belongs to another operator."
	default:
		return nil, err
	}
	return &models.CommandResponse{
		Result: &models.CommandResult{OK: false, Message: msg},
	}, nil
}

// warningCopy builds the confirmation warning, escalating the wording when
// the trip is already underway.
func warningCopy(action models.Action, target *models.ResolvedTarget, c *models.Consequence) string {
	spec := specFor(action)
	base := fmt.Sprintf("You are about to %s %s.", spec.Verb, target.Label)
	if c.HeightenedDisruption {
		base = fmt.Sprintf("%s is in progress right now. %s", target.Label, base)
	}
	if c.BookingCount > 0 {
		base += fmt.Sprintf(" %d confirmed bookings (%.0f%% full) will be affected.", c.BookingCount, c.BookingFillPercent)
	}
	if c.HasActiveDeployment {
		base += " A vehicle or driver is currently assigned."
	}
	return base + " Confirm?"
}

// freehandOptions wraps free-text interpreter suggestions as options without
// inventing ids for them.
func freehandOptions(labels []string) []models.ClarificationOption {
	out := make([]models.ClarificationOption, 0, len(labels))
	for _, l := range labels {
		out = append(out, models.ClarificationOption{Label: l})
	}
	return out
}
