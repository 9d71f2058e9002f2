package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"transitops/database"
	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository provides the read-only booking facts the consequence
// analyzer needs. Booking mutations happen only inside trip transactions.
type BookingRepository interface {
	CountConfirmedByTrip(ctx context.Context, tripID int64) (int64, error)
	SeatsConfirmedByTrip(ctx context.Context, tripID int64) (int64, error)
	ListByTrip(ctx context.Context, tripID int64) ([]models.Booking, error)
}

// MongoBookingRepo implements BookingRepository on MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.MongoClient.Database("transitops")
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

func (r *MongoBookingRepo) CountConfirmedByTrip(ctx context.Context, tripID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"tripId": tripID, "status": models.BookingConfirmed})
	if err != nil {
		return 0, fmt.Errorf("booking count failed: %w", err)
	}
	return count, nil
}

// SeatsConfirmedByTrip sums confirmed seats so fill percentage reflects
// group bookings, not just booking documents.
func (r *MongoBookingRepo) SeatsConfirmedByTrip(ctx context.Context, tripID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"tripId": tripID, "status": models.BookingConfirmed}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "seats": bson.M{"$sum": "$seats"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("seat aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var out []struct {
		Seats int64 `bson:"seats"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("failed to decode seat aggregation: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Seats, nil
}

func (r *MongoBookingRepo) ListByTrip(ctx context.Context, tripID int64) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"tripId": tripID})
	if err != nil {
		return nil, fmt.Errorf("booking listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
