package messagelogstore

import (
	"testing"

	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/Anaastro/landing-demo/internal/testutil"
)

func insertEntries(t *testing.T, store *Store, batchID string, statuses []string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i, status := range statuses {
		entry := models.MessageLog{
			BatchID:     batchID,
			ToNumber:    "521555000000" + string(rune('0'+i)),
			Phone:       "521555000000" + string(rune('0'+i)),
			FirstName:   "Contacto",
			MessageType: models.MessageTypeText,
			Content:     models.MessageContent{Text: "hola"},
			Status:      status,
		}
		if err := store.Insert(ctx, entry); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
}

func TestStore_Insert_SetsFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	insertEntries(t, store, "batch-1", []string{models.MessageStatusSuccessful})

	entries, err := store.ListByBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("ListByBatch() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ID.IsZero() {
		t.Error("Insert() did not assign an id")
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("Insert() did not set CreatedAt")
	}
}

func TestStore_ListByBatch_FiltersByBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	insertEntries(t, store, "batch-a", []string{models.MessageStatusSuccessful, models.MessageStatusError})
	insertEntries(t, store, "batch-b", []string{models.MessageStatusSuccessful})

	entries, err := store.ListByBatch(ctx, "batch-a")
	if err != nil {
		t.Fatalf("ListByBatch() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries for batch-a, want 2", len(entries))
	}
	for _, e := range entries {
		if e.BatchID != "batch-a" {
			t.Errorf("entry BatchID = %q, want batch-a", e.BatchID)
		}
	}
}

func TestStore_List_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	statuses := make([]string, 5)
	for i := range statuses {
		statuses[i] = models.MessageStatusSuccessful
	}
	insertEntries(t, store, "batch-1", statuses)

	page1, total, err := store.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page1) != 2 {
		t.Errorf("page 1 has %d entries, want 2", len(page1))
	}

	page3, _, err := store.List(ctx, 2, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("page 3 has %d entries, want 1", len(page3))
	}
}

func TestStore_CountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	insertEntries(t, store, "batch-1", []string{
		models.MessageStatusSuccessful,
		models.MessageStatusSuccessful,
		models.MessageStatusError,
		models.MessageStatusCancelled,
	})

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[models.MessageStatusSuccessful] != 2 {
		t.Errorf("successful = %d, want 2", counts[models.MessageStatusSuccessful])
	}
	if counts[models.MessageStatusError] != 1 {
		t.Errorf("error = %d, want 1", counts[models.MessageStatusError])
	}
	if counts[models.MessageStatusCancelled] != 1 {
		t.Errorf("cancelled = %d, want 1", counts[models.MessageStatusCancelled])
	}
}

func TestStore_AveragePerDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	insertEntries(t, store, "batch-1", []string{
		models.MessageStatusSuccessful,
		models.MessageStatusSuccessful,
		models.MessageStatusError,
	})

	// All three entries were inserted just now, so they fall inside any
	// window; days with no traffic still count toward the divisor.
	avg, err := store.AveragePerDay(ctx, 3)
	if err != nil {
		t.Fatalf("AveragePerDay() error = %v", err)
	}
	if avg != 1.0 {
		t.Errorf("AveragePerDay(3) = %v, want 1.0", avg)
	}

	// Zero or negative days falls back to a week.
	avg, err = store.AveragePerDay(ctx, 0)
	if err != nil {
		t.Fatalf("AveragePerDay() error = %v", err)
	}
	if want := 3.0 / 7.0; avg != want {
		t.Errorf("AveragePerDay(0) = %v, want %v", avg, want)
	}
}

func TestStore_Count(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d on empty collection, want 0", count)
	}

	insertEntries(t, store, "batch-1", []string{models.MessageStatusSuccessful, models.MessageStatusError})

	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}
