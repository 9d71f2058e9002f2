package command

import (
	"context"
	"testing"

	"transitops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzerFixture(trip *models.Trip, bookings, seats int64) *DefaultConsequenceAnalyzer {
	return &DefaultConsequenceAnalyzer{
		TripRepo: newFakeTripRepo(trip),
		BookingRepo: &fakeBookingRepo{
			counts: map[int64]int64{trip.ID: bookings},
			seats:  map[int64]int64{trip.ID: seats},
		},
	}
}

func TestAnalyzeSafeActionIsNeverRisky(t *testing.T) {
	a := analyzerFixture(&models.Trip{ID: 1, Status: models.TripScheduled}, 50, 50)
	c, err := a.Analyze(context.Background(), models.ActionShowTrip, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	require.NoError(t, err)
	assert.False(t, c.Risky)
}

func TestAnalyzeRiskyComputesFacts(t *testing.T) {
	trip := &models.Trip{ID: 1, Status: models.TripScheduled, Capacity: 40, VehicleID: 7}
	a := analyzerFixture(trip, 12, 20)

	c, err := a.Analyze(context.Background(), models.ActionCancelTrip, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	require.NoError(t, err)
	assert.True(t, c.Risky)
	assert.Equal(t, 12, c.BookingCount)
	assert.InDelta(t, 50.0, c.BookingFillPercent, 0.001)
	assert.True(t, c.HasActiveDeployment)
	assert.Equal(t, models.TripScheduled, c.LiveState)
	assert.False(t, c.HeightenedDisruption)
}

func TestAnalyzeNoImpactIsNotRisky(t *testing.T) {
	// Cancelling a scheduled trip nobody booked disrupts nothing; the facts
	// are still reported, but no confirmation is warranted.
	trip := &models.Trip{ID: 1, Status: models.TripScheduled, Capacity: 40}
	a := analyzerFixture(trip, 0, 0)

	c, err := a.Analyze(context.Background(), models.ActionCancelTrip, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	require.NoError(t, err)
	assert.False(t, c.Risky)
	assert.Equal(t, 0, c.BookingCount)
	assert.Equal(t, models.TripScheduled, c.LiveState)
}

func TestAnalyzeInProgressAloneIsRisky(t *testing.T) {
	// An in-progress trip is risky even with zero bookings.
	trip := &models.Trip{ID: 1, Status: models.TripInProgress, Capacity: 40}
	a := analyzerFixture(trip, 0, 0)

	c, err := a.Analyze(context.Background(), models.ActionCancelTrip, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	require.NoError(t, err)
	assert.True(t, c.Risky)
	assert.True(t, c.HeightenedDisruption)
}

func TestAnalyzeInProgressHeightensDisruption(t *testing.T) {
	trip := &models.Trip{ID: 1, Status: models.TripInProgress, Capacity: 40}
	a := analyzerFixture(trip, 5, 5)

	c, err := a.Analyze(context.Background(), models.ActionChangeTripTime, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	require.NoError(t, err)
	assert.True(t, c.HeightenedDisruption)
}

func TestAnalyzeCompletedTripRejected(t *testing.T) {
	trip := &models.Trip{ID: 1, Status: models.TripCompleted}
	a := analyzerFixture(trip, 0, 0)

	_, err := a.Analyze(context.Background(), models.ActionCancelTrip, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	assert.ErrorIs(t, err, ErrCompletedTarget)
}

func TestAnalyzeZeroCapacityAvoidsDivision(t *testing.T) {
	trip := &models.Trip{ID: 1, Status: models.TripScheduled, Capacity: 0}
	a := analyzerFixture(trip, 2, 2)

	c, err := a.Analyze(context.Background(), models.ActionCancelTrip, &models.ResolvedTarget{Kind: models.KindTrip, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.BookingFillPercent)
}
