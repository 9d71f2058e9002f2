package tripRepo

import (
	"context"
	"errors"

	"transitops/models"

	"go.mongodb.org/mongo-driver/mongo"

	"transitops/database"
	sequencesRepo "transitops/database/repository/sequences"
)

// ErrNotFound is returned when a trip id does not exist.
var ErrNotFound = errors.New("trip not found")

// TripRepository provides verified trip lookups and the transactional
// mutations the action executor runs. Every mutation writes its audit record
// inside the same transaction.
type TripRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Trip, error)
	FindByDeparture(ctx context.Context, departureTime string) ([]models.Trip, error)
	ListUpcoming(ctx context.Context) ([]models.Trip, error)
	ListByDate(ctx context.Context, serviceDate string) ([]models.Trip, error)

	Create(ctx context.Context, trip *models.Trip, audit models.AuditRecord) (int64, error)
	Rename(ctx context.Context, id int64, name string, audit models.AuditRecord) error
	ChangeDeparture(ctx context.Context, id int64, departureTime string, audit models.AuditRecord) error
	AssignVehicle(ctx context.Context, id, vehicleID int64, audit models.AuditRecord) error
	AssignDriver(ctx context.Context, id, driverID int64, audit models.AuditRecord) error
	RemoveDriver(ctx context.Context, id int64, audit models.AuditRecord) error
	CancelCascade(ctx context.Context, id int64, audit models.AuditRecord) (int64, error)
	RemoveVehicleCascade(ctx context.Context, id int64, audit models.AuditRecord) (int64, error)
}

// MongoTripRepo implements TripRepository on MongoDB.
type MongoTripRepo struct {
	tripColl    *mongo.Collection
	bookingColl *mongo.Collection
	auditColl   *mongo.Collection
	sequences   *sequencesRepo.Sequences
}

func NewMongoTripRepo(sequences *sequencesRepo.Sequences) *MongoTripRepo {
	db := database.MongoClient.Database("transitops")
	return &MongoTripRepo{
		tripColl:    db.Collection("trips"),
		bookingColl: db.Collection("bookings"),
		auditColl:   db.Collection("audit_records"),
		sequences:   sequences,
	}
}
