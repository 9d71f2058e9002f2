package fleetRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transitops/database"
	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned for a vehicle or driver id that does not exist.
var ErrNotFound = errors.New("fleet entity not found")

// FleetRepository provides read-only access to vehicles and drivers. The
// resolver uses the lookups to verify interpreter-proposed assignment
// parameters; the wizard uses the listings to offer valid selections.
type FleetRepository interface {
	GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetDriverByID(ctx context.Context, id int64) (*models.Driver, error)
	ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error)
	ListActiveDrivers(ctx context.Context) ([]models.Driver, error)
}

// MongoFleetRepo implements FleetRepository on MongoDB.
type MongoFleetRepo struct {
	vehicleColl *mongo.Collection
	driverColl  *mongo.Collection
}

func NewMongoFleetRepo() *MongoFleetRepo {
	db := database.MongoClient.Database("transitops")
	return &MongoFleetRepo{
		vehicleColl: db.Collection("vehicles"),
		driverColl:  db.Collection("drivers"),
	}
}

func (r *MongoFleetRepo) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var vehicle models.Vehicle
	err := r.vehicleColl.FindOne(ctx, bson.M{"id": id}).Decode(&vehicle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vehicle %d: %w", id, err)
	}
	return &vehicle, nil
}

func (r *MongoFleetRepo) GetDriverByID(ctx context.Context, id int64) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var driver models.Driver
	err := r.driverColl.FindOne(ctx, bson.M{"id": id}).Decode(&driver)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch driver %d: %w", id, err)
	}
	return &driver, nil
}

func (r *MongoFleetRepo) ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.vehicleColl.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("vehicle listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *MongoFleetRepo) ListActiveDrivers(ctx context.Context) ([]models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.driverColl.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("driver listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}
	return drivers, nil
}
