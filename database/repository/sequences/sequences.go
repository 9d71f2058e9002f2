package sequencesRepo

import (
	"context"
	"fmt"

	"transitops/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequences hands out monotonically increasing numeric entity ids, one
// counter document per entity kind.
type Sequences struct {
	coll *mongo.Collection
}

func NewMongoSequences() *Sequences {
	db := database.MongoClient.Database("transitops")
	return &Sequences{coll: db.Collection("sequences")}
}

// NextID atomically increments and returns the counter for the given kind.
func (s *Sequences) NextID(ctx context.Context, kind string) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": kind},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", kind, err)
	}
	return doc.Value, nil
}
