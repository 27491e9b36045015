// internal/app/store/messagelog/messagelogstore.go
package messagelogstore

import (
	"context"
	"time"

	"github.com/Anaastro/landing-demo/internal/app/store/storeutil"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the whatsapp_messages collection.
// The collection is append-only: one document per delivery attempt,
// never updated after insert.
type Store struct {
	c *mongo.Collection
}

// New creates a new message log store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("whatsapp_messages")}
}

// Insert records one delivery attempt.
func (s *Store) Insert(ctx context.Context, entry models.MessageLog) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// List returns a page of log entries, newest first, plus the total count.
func (s *Store) List(ctx context.Context, limit, page int64) ([]models.MessageLog, int64, error) {
	total, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var entries []models.MessageLog
	if err := cur.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListByBatch returns every entry for one dispatch batch, in send order.
func (s *Store) ListByBatch(ctx context.Context, batchID string) ([]models.MessageLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.MessageLog
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AveragePerDay returns the mean number of messages sent per day over the
// last days days, counting from midnight days-1 days ago. Days with no
// traffic still count toward the divisor.
func (s *Store) AveragePerDay(ctx context.Context, days int) (float64, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(days - 1))

	count, err := s.c.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, err
	}
	return float64(count) / float64(days), nil
}

// CountByStatus groups entries by delivery outcome.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var result struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&result); err != nil {
			continue
		}
		counts[result.Status] = result.Count
	}
	return counts, cur.Err()
}

// Count returns the total number of logged attempts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
