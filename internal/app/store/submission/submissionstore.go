// internal/app/store/submission/submissionstore.go
package submissionstore

import (
	"context"
	"time"

	"github.com/Anaastro/landing-demo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the contact_submissions collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new submission store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contact_submissions")}
}

// Insert records a new submission. New submissions always start unread.
func (s *Store) Insert(ctx context.Context, formData map[string]string) (primitive.ObjectID, error) {
	sub := models.ContactSubmission{
		ID:          primitive.NewObjectID(),
		FormData:    formData,
		SubmittedAt: time.Now().UTC(),
		Read:        false,
	}
	_, err := s.c.InsertOne(ctx, sub)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return sub.ID, nil
}

// GetAll returns every submission, newest first.
func (s *Store) GetAll(ctx context.Context) ([]models.ContactSubmission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.ContactSubmission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// MarkRead flips a submission to read. The flag only ever moves from
// unread to read; marking an already read submission is a no-op, so the
// call is safe to repeat.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// Delete removes a submission permanently.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// CountUnread returns the number of unread submissions.
func (s *Store) CountUnread(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"read": false})
}

// Count returns the total number of submissions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
