package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/emotisense/emotisense/backend/internal/errs"
	"github.com/emotisense/emotisense/backend/internal/models"
)

// MongoStore handles image record CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("images")}
}

func (s *MongoStore) Insert(ctx context.Context, rec *models.ImageRecord) (string, error) {
	rec.CreatedAt = time.Now()
	res, err := s.col.InsertOne(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("%w: mongo insert: %w", errs.ErrPersistence, err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	rec.ID = oid
	return oid.Hex(), nil
}

// List returns image records in insertion order. An empty userID returns
// every record (shared gallery); otherwise only the owner's records.
func (s *MongoStore) List(ctx context.Context, userID string) ([]models.ImageRecord, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: mongo find: %w", errs.ErrPersistence, err)
	}
	defer cur.Close(ctx)

	var recs []models.ImageRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("%w: mongo decode: %w", errs.ErrPersistence, err)
	}
	return recs, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.ImageRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	var rec models.ImageRecord
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("%w: mongo find one: %w", errs.ErrPersistence, err)
	}
	return &rec, nil
}

// SetEmotion writes the detected emotion and confidence back to a record.
func (s *MongoStore) SetEmotion(ctx context.Context, id string, emotion string, confidence float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.ErrNotFound
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"emotion": emotion, "confidence": confidence},
	})
	if err != nil {
		return fmt.Errorf("%w: mongo update: %w", errs.ErrPersistence, err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: mongo delete: %w", errs.ErrPersistence, err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
