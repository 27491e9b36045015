package contactstore

import (
	"testing"

	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/Anaastro/landing-demo/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedContacts(t *testing.T, store *Store) []primitive.ObjectID {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	contacts := []models.Contact{
		{FirstName: "Ana", LastName: "López", Phone: "5215511122233"},
		{FirstName: "Luis", LastName: "Mora", Phone: "5215544455666"},
		{FirstName: "Eva", LastName: "Cruz", Phone: "5215599988777"},
	}
	ids := make([]primitive.ObjectID, 0, len(contacts))
	for _, c := range contacts {
		id, err := store.Insert(ctx, c)
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestStore_Insert_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Insert(ctx, models.Contact{FirstName: "Ana", Phone: "5215511122233"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	contact, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if contact.FirstName != "Ana" || contact.Phone != "5215511122233" {
		t.Errorf("contact = %+v", contact)
	}
	if contact.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestStore_PhoneExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	seedContacts(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exists, err := store.PhoneExists(ctx, "5215511122233")
	if err != nil {
		t.Fatalf("PhoneExists() error = %v", err)
	}
	if !exists {
		t.Error("PhoneExists() = false for stored phone")
	}

	exists, err = store.PhoneExists(ctx, "5210000000000")
	if err != nil {
		t.Fatalf("PhoneExists() error = %v", err)
	}
	if exists {
		t.Error("PhoneExists() = true for unknown phone")
	}
}

func TestStore_AllPhones(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	seedContacts(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	phones, err := store.AllPhones(ctx)
	if err != nil {
		t.Fatalf("AllPhones() error = %v", err)
	}
	if len(phones) != 3 {
		t.Errorf("AllPhones() returned %d phones, want 3", len(phones))
	}
	if !phones["5215544455666"] {
		t.Error("AllPhones() missing a stored phone")
	}
}

func TestStore_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	seedContacts(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantTotal int64
	}{
		{"empty query matches all", "", 3, 3},
		{"by first name", "ana", 1, 1},
		{"by last name", "mora", 1, 1},
		{"by phone fragment", "55999", 1, 1},
		{"no match", "zzz", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts, total, err := store.List(ctx, tt.query, 10, 1)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(contacts) != tt.wantCount {
				t.Errorf("List() returned %d contacts, want %d", len(contacts), tt.wantCount)
			}
			if total != tt.wantTotal {
				t.Errorf("List() total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}

func TestStore_List_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	seedContacts(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page1, total, err := store.List(ctx, "", 2, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page1) != 2 || total != 3 {
		t.Errorf("page 1: %d contacts, total %d, want 2/3", len(page1), total)
	}

	page2, _, err := store.List(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page2) != 1 {
		t.Errorf("page 2: %d contacts, want 1", len(page2))
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ids := seedContacts(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Unknown ids are skipped, not errors.
	contacts, err := store.GetByIDs(ctx, []primitive.ObjectID{ids[0], ids[2], primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(contacts) != 2 {
		t.Errorf("GetByIDs() returned %d contacts, want 2", len(contacts))
	}

	contacts, err = store.GetByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil) error = %v", err)
	}
	if contacts != nil {
		t.Errorf("GetByIDs(nil) = %v, want nil", contacts)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ids := seedContacts(t, store)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d after delete, want 2", count)
	}
}
