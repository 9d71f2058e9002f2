package command

import (
	"context"
	"testing"

	"transitops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter returns a scripted intent regardless of the text.
type fakeAdapter struct {
	intent *models.Intent
}

func (a *fakeAdapter) Parse(ctx context.Context, text string, hints models.ContextHints) *models.Intent {
	return a.intent
}

// fakeWizard records whether it was started.
type fakeWizard struct {
	active  bool
	started bool
	turns   []string
}

func (w *fakeWizard) Active(ctx context.Context, operatorID string) (bool, error) {
	return w.active, nil
}

func (w *fakeWizard) Start(ctx context.Context, operatorID string, intent *models.Intent) (*models.CommandResponse, error) {
	w.started = true
	return &models.CommandResponse{WizardActive: true, WizardPrompt: "What should it be called?"}, nil
}

func (w *fakeWizard) HandleTurn(ctx context.Context, operatorID, text string) (*models.CommandResponse, error) {
	w.turns = append(w.turns, text)
	return &models.CommandResponse{WizardActive: true, WizardPrompt: "next"}, nil
}

func serviceFixture(intent *models.Intent) (*DefaultCommandService, *fakeTripRepo, *fakeWizard) {
	exec, trips, _, _ := executorFixture()
	wiz := &fakeWizard{}
	sessions, _ := sessionFixture()
	svc := &DefaultCommandService{
		Adapter: &fakeAdapter{intent: intent},
		Resolver: &DefaultEntityResolver{
			TripRepo:    exec.TripRepo,
			NetworkRepo: exec.NetworkRepo,
		},
		Analyzer: &DefaultConsequenceAnalyzer{
			TripRepo:    exec.TripRepo,
			BookingRepo: exec.BookingRepo,
		},
		Sessions: sessions,
		Executor: exec,
		Wizard:   wiz,
	}
	return svc, trips, wiz
}

func submit(svc *DefaultCommandService, text string) (*models.CommandResponse, error) {
	return svc.Submit(context.Background(), &models.Command{
		OperatorID: "op-1",
		RawText:    text,
		Origin:     models.OriginTyped,
	})
}

func TestSubmitUnknownIntentRefusesPolitely(t *testing.T) {
	svc, _, _ := serviceFixture(models.UnknownIntent("gibberish"))
	resp, err := submit(svc, "flibber the wug")
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.OK)
}

func TestSubmitSafeActionExecutesImmediately(t *testing.T) {
	svc, _, _ := serviceFixture(&models.Intent{Action: models.ActionListRoutes, Confidence: 0.9})
	resp, err := submit(svc, "list routes")
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.OK)
	assert.False(t, resp.AwaitingConfirmation)
}

func TestSubmitRiskyActionRequiresConfirmation(t *testing.T) {
	svc, trips, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetID: 1, Confidence: 0.9})
	resp, err := submit(svc, "cancel the morning express")
	require.NoError(t, err)

	assert.True(t, resp.AwaitingConfirmation)
	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Warning, "Morning Express")
	assert.Contains(t, resp.Warning, "2 confirmed bookings")

	// Nothing mutated yet.
	assert.Equal(t, models.TripScheduled, trips.trips[1].Status)
}

func TestSubmitRiskyActionWithoutImpactExecutesImmediately(t *testing.T) {
	// Cancelling a scheduled trip with no bookings disrupts nobody, so no
	// confirmation session is opened.
	svc, trips, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetID: 3, Confidence: 0.9})
	trips.trips[3] = &models.Trip{ID: 3, Name: "Empty Run", Status: models.TripScheduled, Capacity: 40}

	resp, err := submit(svc, "cancel the empty run")
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.OK)
	assert.False(t, resp.AwaitingConfirmation)
	assert.Equal(t, models.TripCancelled, trips.trips[3].Status)
}

func TestConfirmExecutesExactlyOnce(t *testing.T) {
	svc, trips, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetID: 1, Confidence: 0.9})
	resp, err := submit(svc, "cancel the morning express")
	require.NoError(t, err)
	require.True(t, resp.AwaitingConfirmation)

	first, err := svc.Confirm(context.Background(), "op-1", resp.SessionID, true)
	require.NoError(t, err)
	assert.True(t, first.Result.OK)
	assert.Equal(t, models.TripCancelled, trips.trips[1].Status)
	assert.Len(t, trips.cancels, 1)

	second, err := svc.Confirm(context.Background(), "op-1", resp.SessionID, true)
	require.NoError(t, err)
	assert.False(t, second.Result.OK)
	assert.Len(t, trips.cancels, 1)
}

func TestConfirmDeclineLeavesStateAlone(t *testing.T) {
	svc, trips, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetID: 1, Confidence: 0.9})
	resp, err := submit(svc, "cancel the morning express")
	require.NoError(t, err)

	declined, err := svc.Confirm(context.Background(), "op-1", resp.SessionID, false)
	require.NoError(t, err)
	assert.True(t, declined.Result.OK)
	assert.Equal(t, models.TripScheduled, trips.trips[1].Status)

	// A later yes on the declined session does nothing.
	late, err := svc.Confirm(context.Background(), "op-1", resp.SessionID, true)
	require.NoError(t, err)
	assert.False(t, late.Result.OK)
	assert.Equal(t, models.TripScheduled, trips.trips[1].Status)
}

func TestSubmitCreationStartsWizard(t *testing.T) {
	svc, _, wiz := serviceFixture(&models.Intent{Action: models.ActionCreateTrip, Confidence: 0.9})
	resp, err := submit(svc, "create a new trip")
	require.NoError(t, err)
	assert.True(t, wiz.started)
	assert.True(t, resp.WizardActive)
}

func TestSubmitWhileWizardActiveRoutesToWizard(t *testing.T) {
	svc, _, wiz := serviceFixture(&models.Intent{Action: models.ActionListRoutes, Confidence: 0.9})
	wiz.active = true

	_, err := submit(svc, "Evening Express")
	require.NoError(t, err)
	assert.Equal(t, []string{"Evening Express"}, wiz.turns)
}

func TestSubmitCompletedTripMutationRejected(t *testing.T) {
	svc, _, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetID: 2, Confidence: 0.9})
	resp, err := submit(svc, "cancel yesterday run")
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.False(t, resp.Result.OK)
	assert.Contains(t, resp.Result.Message, "already run")
}

func TestSubmitClarificationPassesOptionsThrough(t *testing.T) {
	svc, _, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetLabel: "nonexistent thing", Confidence: 0.9})
	resp, err := submit(svc, "cancel the nonexistent thing")
	require.NoError(t, err)
	assert.True(t, resp.NeedsClarification)
	assert.Nil(t, resp.Result)
}

func TestSubmitImageWithSelectionBypassesInterpreter(t *testing.T) {
	// The adapter would return cancel_trip; the pre-selected row must win
	// and produce a harmless show instead.
	svc, _, _ := serviceFixture(&models.Intent{Action: models.ActionCancelTrip, TargetID: 1, Confidence: 0.9})
	resp, err := svc.Submit(context.Background(), &models.Command{
		OperatorID: "op-1",
		RawText:    "blurry photo text",
		Origin:     models.OriginImage,
		Hints:      models.ContextHints{SelectedKind: models.KindTrip, SelectedEntityID: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.OK)
	assert.Contains(t, resp.Result.Message, "Morning Express")
}
