package operatorRepo

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

// ErrNotFound is returned when no operator matches the lookup.
var ErrNotFound = errors.New("operator not found")

// OperatorRepository persists dispatcher accounts.
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByID(ctx context.Context, id string) (*models.Operator, error)
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	UpdateTokenHash(ctx context.Context, id, tokenHash string) error
}

// MongoOperatorRepo implements OperatorRepository on MongoDB.
type MongoOperatorRepo struct {
	coll *mongo.Collection
}

func NewMongoOperatorRepo() *MongoOperatorRepo {
	db := database.MongoClient.Database("transitops")
	return &MongoOperatorRepo{coll: db.Collection("operators")}
}

func (r *MongoOperatorRepo) Create(ctx context.Context, op *models.Operator) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, op); err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *MongoOperatorRepo) GetByID(ctx context.Context, id string) (*models.Operator, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var op models.Operator
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&op)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operator: %w", err)
	}
	return &op, nil
}

func (r *MongoOperatorRepo) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var op models.Operator
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&op)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operator: %w", err)
	}
	return &op, nil
}

func (r *MongoOperatorRepo) UpdateTokenHash(ctx context.Context, id, tokenHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"tokenHash": tokenHash}})
	if err != nil {
		return fmt.Errorf("failed to update token hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
