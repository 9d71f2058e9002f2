package tripRepo

import (
	"context"
	"fmt"
	"time"

	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside a single ACID transaction. The commit is
// all-or-nothing: on any failure the whole transaction is aborted and no
// partial mutation (and no audit record) is observable.
func (r *MongoTripRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.tripColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("trip transaction failed: %w", err)
	}
	return nil
}

// updateWithAudit applies a field update and writes the audit record in one
// transaction. MatchedCount == 0 means the target vanished between
// resolution and execution.
func (r *MongoTripRepo) updateWithAudit(ctx context.Context, id int64, set bson.M, audit models.AuditRecord) error {
	set["updatedAt"] = time.Now()
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.tripColl.UpdateOne(sc, bson.M{"id": id}, bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("update trip failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		if _, err := r.auditColl.InsertOne(sc, audit); err != nil {
			return fmt.Errorf("insert audit record failed: %w", err)
		}
		return nil
	})
}

// CancelCascade cancels the trip and every confirmed booking on it as one
// atomic unit, returning how many bookings were cancelled.
func (r *MongoTripRepo) CancelCascade(ctx context.Context, id int64, audit models.AuditRecord) (int64, error) {
	var cancelled int64
	now := time.Now()
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.tripColl.UpdateOne(sc,
			bson.M{"id": id, "status": bson.M{"$ne": models.TripCancelled}},
			bson.M{"$set": bson.M{"status": models.TripCancelled, "updatedAt": now}},
		)
		if err != nil {
			return fmt.Errorf("cancel trip failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}

		bres, err := r.bookingColl.UpdateMany(sc,
			bson.M{"tripId": id, "status": models.BookingConfirmed},
			bson.M{"$set": bson.M{"status": models.BookingCancelled, "cancelledAt": now}},
		)
		if err != nil {
			return fmt.Errorf("cancel dependent bookings failed: %w", err)
		}
		cancelled = bres.ModifiedCount

		if _, err := r.auditColl.InsertOne(sc, audit); err != nil {
			return fmt.Errorf("insert audit record failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cancelled, nil
}

// RemoveVehicleCascade unassigns the vehicle and cancels the trip's
// confirmed bookings in the same transaction: a trip without a vehicle
// cannot carry its passengers.
func (r *MongoTripRepo) RemoveVehicleCascade(ctx context.Context, id int64, audit models.AuditRecord) (int64, error) {
	var cancelled int64
	now := time.Now()
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.tripColl.UpdateOne(sc,
			bson.M{"id": id},
			bson.M{"$set": bson.M{"vehicleId": int64(0), "updatedAt": now}},
		)
		if err != nil {
			return fmt.Errorf("remove vehicle failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}

		bres, err := r.bookingColl.UpdateMany(sc,
			bson.M{"tripId": id, "status": models.BookingConfirmed},
			bson.M{"$set": bson.M{"status": models.BookingCancelled, "cancelledAt": now}},
		)
		if err != nil {
			return fmt.Errorf("cancel dependent bookings failed: %w", err)
		}
		cancelled = bres.ModifiedCount

		if _, err := r.auditColl.InsertOne(sc, audit); err != nil {
			return fmt.Errorf("insert audit record failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cancelled, nil
}
