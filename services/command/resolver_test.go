package command

import (
	"context"
	"testing"

	"transitops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFixture() (*DefaultEntityResolver, *fakeTripRepo, *fakeNetworkRepo) {
	trips := newFakeTripRepo(
		&models.Trip{ID: 1, Name: "Morning Express", RouteID: 10, ServiceDate: "2026-09-01", DepartureTime: "09:30", Status: models.TripScheduled},
		&models.Trip{ID: 2, Name: "Harbor Shuttle", RouteID: 10, ServiceDate: "2026-09-01", DepartureTime: "14:00", Status: models.TripScheduled},
		&models.Trip{ID: 3, Name: "Night Owl", RouteID: 11, ServiceDate: "2026-09-01", DepartureTime: "23:15", Status: models.TripScheduled},
	)
	network := newFakeNetworkRepo()
	network.routes[10] = &models.Route{ID: 10, Name: "Downtown Line"}
	network.routes[11] = &models.Route{ID: 11, Name: "Coastal Line"}
	return &DefaultEntityResolver{TripRepo: trips, NetworkRepo: network}, trips, network
}

func typedCommand(intent *models.Intent) *models.Command {
	return &models.Command{
		OperatorID: "op-1",
		Origin:     models.OriginTyped,
		RawText:    "whatever",
		Intent:     intent,
	}
}

func TestResolvePreSelectedHintWinsOverEverything(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{Action: models.ActionCancelTrip, TargetID: 1, Confidence: 0.9})
	cmd.Hints = models.ContextHints{SelectedKind: models.KindTrip, SelectedEntityID: 3}

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, int64(3), res.Target.ID)
	assert.Equal(t, "Night Owl", res.Target.Label)
}

func TestResolveInterpreterIDVerified(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{Action: models.ActionShowTrip, TargetID: 2, Confidence: 0.9})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, int64(2), res.Target.ID)
}

func TestResolveHallucinatedIDFallsThroughToLabel(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{
		Action:      models.ActionCancelTrip,
		TargetID:    999, // does not exist
		TargetLabel: "morning express",
		Confidence:  0.9,
	})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, int64(1), res.Target.ID)
}

func TestResolveByTimeToken(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{Action: models.ActionCancelTrip, TargetTime: "9:30", Confidence: 0.9})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, int64(1), res.Target.ID)
}

func TestResolveTimeTokenMultipleDeparturesClarifies(t *testing.T) {
	r, trips, _ := resolverFixture()
	trips.trips[4] = &models.Trip{ID: 4, Name: "Second Morning", DepartureTime: "09:30", Status: models.TripScheduled}
	cmd := typedCommand(&models.Intent{Action: models.ActionCancelTrip, TargetTime: "09:30", Confidence: 0.9})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	assert.Len(t, res.Options, 2)
}

func TestResolveLowConfidenceRiskyAsksFirst(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{Action: models.ActionCancelTrip, TargetID: 1, Confidence: 0.55})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	require.Len(t, res.Options, 1)
	assert.Equal(t, int64(1), res.Options[0].ID)
}

func TestResolveLowConfidenceSafeStillResolves(t *testing.T) {
	r, _, _ := resolverFixture()
	// 0.55 clears the safe floor but not the risky one.
	cmd := typedCommand(&models.Intent{Action: models.ActionShowTrip, TargetID: 1, Confidence: 0.55})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, int64(1), res.Target.ID)
}

func TestResolveNothingToGoOnClarifies(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{Action: models.ActionCancelTrip, Confidence: 0.9})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, res.NeedsClarification)
	assert.Empty(t, res.Options)
}

func TestResolveImageOriginMatchesBuriedLabel(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := &models.Command{
		OperatorID: "op-1",
		Origin:     models.OriginImage,
		RawText:    "ROSTER SHEET Morning Express platform 4 delayed",
		OCRConf:    0.91,
		Intent:     &models.Intent{Action: models.ActionCancelTrip, Confidence: 0.9},
	}

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, int64(1), res.Target.ID)
}

func TestResolveImageOriginLowConfidenceStillAsks(t *testing.T) {
	r, _, _ := resolverFixture()
	// A clean label match does not excuse a weak interpretation: a risky
	// action at 0.2 must be confirmed as a clarification, not resolved.
	cmd := &models.Command{
		OperatorID: "op-1",
		Origin:     models.OriginImage,
		RawText:    "ROSTER SHEET Morning Express platform 4 delayed",
		OCRConf:    0.91,
		Intent:     &models.Intent{Action: models.ActionCancelTrip, Confidence: 0.2},
	}

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	require.Len(t, res.Options, 1)
	assert.Equal(t, int64(1), res.Options[0].ID)
}

func TestResolveNoisyExtractionLowersConfidence(t *testing.T) {
	r, _, _ := resolverFixture()
	// The interpreter is sure, but the OCR engine is not: the weaker of the
	// two decides whether the risky floor is cleared.
	cmd := &models.Command{
		OperatorID: "op-1",
		Origin:     models.OriginImage,
		RawText:    "ROSTER SHEET Morning Express platform 4 delayed",
		OCRConf:    0.4,
		Intent:     &models.Intent{Action: models.ActionCancelTrip, Confidence: 0.95},
	}

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, res.NeedsClarification)
	require.Len(t, res.Options, 1)
	assert.Equal(t, int64(1), res.Options[0].ID)
}

func TestResolveRouteTarget(t *testing.T) {
	r, _, _ := resolverFixture()
	cmd := typedCommand(&models.Intent{Action: models.ActionRenameRoute, TargetLabel: "downtown line", Confidence: 0.8})

	res, err := r.Resolve(context.Background(), cmd)
	require.NoError(t, err)
	require.False(t, res.NeedsClarification)
	assert.Equal(t, models.KindRoute, res.Target.Kind)
	assert.Equal(t, int64(10), res.Target.ID)
}
