// File: services/command/consequence.go
package command

import (
	"context"
	"fmt"

	bookingRepo "transitops/database/repository/booking"
	tripRepo "transitops/database/repository/trip"
	"transitops/models"

	"golang.org/x/sync/errgroup"
)

// ConsequenceAnalyzer computes what an action would disrupt before any
// confirmation is requested.
type ConsequenceAnalyzer interface {
	Analyze(ctx context.Context, action models.Action, target *models.ResolvedTarget) (*models.Consequence, error)
}

// DefaultConsequenceAnalyzer implements ConsequenceAnalyzer over the trip
// and booking repositories.
type DefaultConsequenceAnalyzer struct {
	TripRepo    tripRepo.TripRepository
	BookingRepo bookingRepo.BookingRepository
}

// Analyze returns the consequence facts for the proposed action. Actions on
// completed trips are rejected outright with ErrCompletedTarget.
func (a *DefaultConsequenceAnalyzer) Analyze(ctx context.Context, action models.Action, target *models.ResolvedTarget) (*models.Consequence, error) {
	spec := specFor(action)
	if spec.Risk != riskRisky {
		return &models.Consequence{Risky: false}, nil
	}

	if target.Kind != models.KindTrip {
		return nil, fmt.Errorf("consequence analysis for %s targets is not supported", target.Kind)
	}

	var (
		trip  *models.Trip
		count int64
		seats int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := a.TripRepo.GetByID(gctx, target.ID)
		if err != nil {
			return err
		}
		trip = t
		return nil
	})
	g.Go(func() error {
		n, err := a.BookingRepo.CountConfirmedByTrip(gctx, target.ID)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	g.Go(func() error {
		n, err := a.BookingRepo.SeatsConfirmedByTrip(gctx, target.ID)
		if err != nil {
			return err
		}
		seats = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if trip.Status == models.TripCompleted {
		return nil, ErrCompletedTarget
	}

	inProgress := trip.Status == models.TripInProgress
	fill := 0.0
	if trip.Capacity > 0 {
		fill = float64(seats) / float64(trip.Capacity) * 100
	}

	return &models.Consequence{
		BookingCount:         int(count),
		BookingFillPercent:   fill,
		HasActiveDeployment:  trip.HasDeployment(),
		LiveState:            trip.Status,
		Risky:                count > 0 || inProgress,
		HeightenedDisruption: inProgress,
	}, nil
}
