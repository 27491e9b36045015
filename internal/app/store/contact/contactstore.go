// internal/app/store/contact/contactstore.go
package contactstore

import (
	"context"
	"regexp"
	"time"

	"github.com/Anaastro/landing-demo/internal/app/store/storeutil"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the contacts collection.
// Phones are stored normalized (digits only); callers normalize before
// calling Insert or PhoneExists.
type Store struct {
	c *mongo.Collection
}

// New creates a new contact store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contacts")}
}

// Insert adds a contact and returns its id.
func (s *Store) Insert(ctx context.Context, contact models.Contact) (primitive.ObjectID, error) {
	contact.ID = primitive.NewObjectID()
	contact.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, contact)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return contact.ID, nil
}

// GetByID returns a single contact.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error) {
	var contact models.Contact
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&contact)
	if err != nil {
		return models.Contact{}, err
	}
	return contact, nil
}

// GetAll returns every contact, newest first.
func (s *Store) GetAll(ctx context.Context) ([]models.Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var contacts []models.Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// searchFilter matches the query against name fields and phone,
// case-insensitively. An empty query matches everything.
func searchFilter(query string) bson.M {
	if query == "" {
		return bson.M{}
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": []bson.M{
		{"first_name": rx},
		{"last_name": rx},
		{"phone": rx},
	}}
}

// List returns a page of contacts matching query, newest first,
// plus the total match count for pagination.
func (s *Store) List(ctx context.Context, query string, limit, page int64) ([]models.Contact, int64, error) {
	filter := searchFilter(query)

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := storeutil.Paginate(limit, page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var contacts []models.Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// GetByIDs returns the contacts whose ids appear in ids. Unknown ids are
// silently skipped, so the result can be shorter than the input.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var contacts []models.Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// PhoneExists checks if a contact with the normalized phone already exists.
func (s *Store) PhoneExists(ctx context.Context, phone string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"phone": phone})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AllPhones returns the set of every stored phone number. Used by the
// importer to dedupe an incoming file against the database in one read.
func (s *Store) AllPhones(ctx context.Context) (map[string]bool, error) {
	opts := options.Find().SetProjection(bson.M{"phone": 1})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	phones := make(map[string]bool)
	for cur.Next(ctx) {
		var doc struct {
			Phone string `bson:"phone"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		phones[doc.Phone] = true
	}
	return phones, cur.Err()
}

// Delete removes a contact.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Count returns the number of stored contacts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
