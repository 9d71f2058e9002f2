package networkRepo

import (
	"context"
	"fmt"
	"time"

	"transitops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoNetworkRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.routeColl.Database().Client()
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
		return fmt.Errorf("network transaction failed: %w", err)
	}
	return nil
}

func (r *MongoNetworkRepo) CreateRoute(ctx context.Context, route *models.Route, audit models.AuditRecord) (int64, error) {
	id, err := r.sequences.NextID(ctx, "route")
	if err != nil {
		return 0, err
	}
	route.ID = id
	route.CreatedAt = time.Now()
	audit.EntityID = id

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.routeColl.InsertOne(sc, route); err != nil {
			return fmt.Errorf("insert route failed: %w", err)
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

func (r *MongoNetworkRepo) CreatePath(ctx context.Context, path *models.Path, audit models.AuditRecord) (int64, error) {
	id, err := r.sequences.NextID(ctx, "path")
	if err != nil {
		return 0, err
	}
	path.ID = id
	path.CreatedAt = time.Now()
	audit.EntityID = id

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.pathColl.InsertOne(sc, path); err != nil {
			return fmt.Errorf("insert path failed: %w", err)
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

func (r *MongoNetworkRepo) CreateStop(ctx context.Context, stop *models.Stop, audit models.AuditRecord) (int64, error) {
	id, err := r.sequences.NextID(ctx, "stop")
	if err != nil {
		return 0, err
	}
	stop.ID = id
	stop.CreatedAt = time.Now()
	audit.EntityID = id

	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.stopColl.InsertOne(sc, stop); err != nil {
			return fmt.Errorf("insert stop failed: %w", err)
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

func (r *MongoNetworkRepo) RenameRoute(ctx context.Context, id int64, name string, audit models.AuditRecord) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.routeColl.UpdateOne(sc, bson.M{"id": id}, bson.M{"$set": bson.M{"name": name}})
		if err != nil {
			return fmt.Errorf("rename route failed: %w", err)
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
