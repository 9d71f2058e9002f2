package networkRepo

import (
	"context"
	"errors"

	"transitops/models"

	"go.mongodb.org/mongo-driver/mongo"

	"transitops/database"
	sequencesRepo "transitops/database/repository/sequences"
)

// ErrNotFound is returned for a route, path or stop id that does not exist.
var ErrNotFound = errors.New("network entity not found")

// NetworkRepository covers the static transit network: routes, the paths
// they run over, and the stops along those paths.
type NetworkRepository interface {
	GetRouteByID(ctx context.Context, id int64) (*models.Route, error)
	GetPathByID(ctx context.Context, id int64) (*models.Path, error)
	GetStopByID(ctx context.Context, id int64) (*models.Stop, error)
	ListRoutes(ctx context.Context) ([]models.Route, error)
	ListPaths(ctx context.Context) ([]models.Path, error)
	ListStops(ctx context.Context) ([]models.Stop, error)

	CreateRoute(ctx context.Context, route *models.Route, audit models.AuditRecord) (int64, error)
	CreatePath(ctx context.Context, path *models.Path, audit models.AuditRecord) (int64, error)
	CreateStop(ctx context.Context, stop *models.Stop, audit models.AuditRecord) (int64, error)
	RenameRoute(ctx context.Context, id int64, name string, audit models.AuditRecord) error
}

// MongoNetworkRepo implements NetworkRepository on MongoDB.
type MongoNetworkRepo struct {
	routeColl *mongo.Collection
	pathColl  *mongo.Collection
	stopColl  *mongo.Collection
	auditColl *mongo.Collection
	sequences *sequencesRepo.Sequences
}

func NewMongoNetworkRepo(sequences *sequencesRepo.Sequences) *MongoNetworkRepo {
	db := database.MongoClient.Database("transitops")
	return &MongoNetworkRepo{
		routeColl: db.Collection("routes"),
		pathColl:  db.Collection("paths"),
		stopColl:  db.Collection("stops"),
		auditColl: db.Collection("audit_records"),
		sequences: sequences,
	}
}
