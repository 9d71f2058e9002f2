package networkRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoNetworkRepo) GetRouteByID(ctx context.Context, id int64) (*models.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var route models.Route
	err := r.routeColl.FindOne(ctx, bson.M{"id": id}).Decode(&route)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route %d: %w", id, err)
	}
	return &route, nil
}

func (r *MongoNetworkRepo) GetPathByID(ctx context.Context, id int64) (*models.Path, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var path models.Path
	err := r.pathColl.FindOne(ctx, bson.M{"id": id}).Decode(&path)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch path %d: %w", id, err)
	}
	return &path, nil
}

func (r *MongoNetworkRepo) GetStopByID(ctx context.Context, id int64) (*models.Stop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var stop models.Stop
	err := r.stopColl.FindOne(ctx, bson.M{"id": id}).Decode(&stop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stop %d: %w", id, err)
	}
	return &stop, nil
}

func (r *MongoNetworkRepo) ListRoutes(ctx context.Context) ([]models.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.routeColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("route listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var routes []models.Route
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, fmt.Errorf("failed to decode routes: %w", err)
	}
	return routes, nil
}

func (r *MongoNetworkRepo) ListPaths(ctx context.Context) ([]models.Path, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.pathColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("path listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var paths []models.Path
	if err := cursor.All(ctx, &paths); err != nil {
		return nil, fmt.Errorf("failed to decode paths: %w", err)
	}
	return paths, nil
}

func (r *MongoNetworkRepo) ListStops(ctx context.Context) ([]models.Stop, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.stopColl.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("stop listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var stops []models.Stop
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, fmt.Errorf("failed to decode stops: %w", err)
	}
	return stops, nil
}
