// internal/app/store/content/contentstore.go
package contentstore

import (
	"context"
	"time"

	"github.com/Anaastro/landing-demo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the landing collection.
// The landing page is a singleton document keyed by a fixed id.
type Store struct {
	c *mongo.Collection
}

// New creates a new content store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("landing")}
}

// Get returns the landing content document, or nil if none has been
// saved yet. Callers that want defaults should use Load.
func (s *Store) Get(ctx context.Context) (*models.LandingContent, error) {
	var content models.LandingContent
	err := s.c.FindOne(ctx, bson.M{"_id": models.LandingDocID}).Decode(&content)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Load returns the landing content, seeding the default document on
// first access. After Load returns, the document exists in the
// collection and subsequent reads see the same content.
func (s *Store) Load(ctx context.Context) (*models.LandingContent, error) {
	content, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if content != nil {
		return content, nil
	}
	def := models.DefaultLandingContent()
	if err := s.Save(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Save writes the whole document. The admin panel always saves the
// complete content, so this is a replace with upsert (last writer wins).
func (s *Store) Save(ctx context.Context, content *models.LandingContent) error {
	content.ID = models.LandingDocID
	content.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": models.LandingDocID}, content, opts)
	return err
}

// Exists checks if the landing document has been created.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"_id": models.LandingDocID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
