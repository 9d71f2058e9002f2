package tripRepo

import (
	"context"
	"fmt"
	"time"

	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindByDeparture returns non-terminal trips departing at the given HH:MM.
// More than one result means the caller must ask for clarification.
func (r *MongoTripRepo) FindByDeparture(ctx context.Context, departureTime string) ([]models.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"departureTime": departureTime,
		"status":        bson.M{"$in": []string{models.TripScheduled, models.TripInProgress}},
	}
	cursor, err := r.tripColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("departure time query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}
	return trips, nil
}

// ListUpcoming returns the trips a free-text label can currently refer to:
// everything not yet completed or cancelled, soonest first.
func (r *MongoTripRepo) ListUpcoming(ctx context.Context) ([]models.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status": bson.M{"$in": []string{models.TripScheduled, models.TripInProgress}},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "serviceDate", Value: 1},
		{Key: "departureTime", Value: 1},
	})
	cursor, err := r.tripColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("upcoming trips query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}
	return trips, nil
}

func (r *MongoTripRepo) ListByDate(ctx context.Context, serviceDate string) ([]models.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "departureTime", Value: 1}})
	cursor, err := r.tripColl.Find(ctx, bson.M{"serviceDate": serviceDate}, opts)
	if err != nil {
		return nil, fmt.Errorf("trips by date query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}
	return trips, nil
}
