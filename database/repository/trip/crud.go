package tripRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoTripRepo) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var trip models.Trip
	err := r.tripColl.FindOne(ctx, bson.M{"id": id}).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip %d: %w", id, err)
	}
	return &trip, nil
}

// Create inserts the trip and its audit record in one transaction and
// returns the assigned numeric id.
func (r *MongoTripRepo) Create(ctx context.Context, trip *models.Trip, audit models.AuditRecord) (int64, error) {
	id, err := r.sequences.NextID(ctx, "trip")
	if err != nil {
		return 0, err
	}
	trip.ID = id
	trip.Status = models.TripScheduled
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	audit.EntityID = id

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.tripColl.InsertOne(sc, trip); err != nil {
			return fmt.Errorf("insert trip failed: %w", err)
		}
		if _, err := r.auditColl.InsertOne(sc, audit); err != nil {
			return fmt.Errorf("insert audit record failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Rename updates the display name. Renaming has no externally visible
// impact, but it is still audited like every other mutation.
func (r *MongoTripRepo) Rename(ctx context.Context, id int64, name string, audit models.AuditRecord) error {
	return r.updateWithAudit(ctx, id, bson.M{"name": name}, audit)
}

func (r *MongoTripRepo) ChangeDeparture(ctx context.Context, id int64, departureTime string, audit models.AuditRecord) error {
	return r.updateWithAudit(ctx, id, bson.M{"departureTime": departureTime}, audit)
}

func (r *MongoTripRepo) AssignVehicle(ctx context.Context, id, vehicleID int64, audit models.AuditRecord) error {
	return r.updateWithAudit(ctx, id, bson.M{"vehicleId": vehicleID}, audit)
}

func (r *MongoTripRepo) AssignDriver(ctx context.Context, id, driverID int64, audit models.AuditRecord) error {
	return r.updateWithAudit(ctx, id, bson.M{"driverId": driverID}, audit)
}

func (r *MongoTripRepo) RemoveDriver(ctx context.Context, id int64, audit models.AuditRecord) error {
	return r.updateWithAudit(ctx, id, bson.M{"driverId": int64(0)}, audit)
}
