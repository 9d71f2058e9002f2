package auditRepo

import (
	"context"
	"fmt"
	"time"

	"transitops/database"
	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditRepository reads the append-only audit trail. Writes happen inside
// the entity repositories' transactions, never through this interface.
type AuditRepository interface {
	ListRecent(ctx context.Context, limit int64) ([]models.AuditRecord, error)
	ListByEntity(ctx context.Context, kind string, id int64) ([]models.AuditRecord, error)
}

// MongoAuditRepo implements AuditRepository on MongoDB.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

func NewMongoAuditRepo() *MongoAuditRepo {
	db := database.MongoClient.Database("transitops")
	return &MongoAuditRepo{coll: db.Collection("audit_records")}
}

func (r *MongoAuditRepo) ListRecent(ctx context.Context, limit int64) ([]models.AuditRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("audit listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}
	return records, nil
}

func (r *MongoAuditRepo) ListByEntity(ctx context.Context, kind string, id int64) ([]models.AuditRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"entityKind": kind, "entityId": id}, opts)
	if err != nil {
		return nil, fmt.Errorf("audit listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}
	return records, nil
}
