package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
)

type testDoc struct {
	ID       string `json:"Id"`
	Value    string `json:"Value"`
	NumValue int    `json:"NumValue"`
}

// testStore opens an in-memory database with a fresh test_table.
// A single connection keeps the in-memory database alive across calls.
func testStore(t *testing.T) (*Store, string) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)

	store := NewStore(db, documents.DefaultConfig())
	t.Cleanup(func() { _ = store.Close() })

	if err := store.EnsureTable(context.Background(), "test_table"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return store, "test_table"
}

func seedDocs(t *testing.T, store *Store, table string) {
	t.Helper()
	ctx := context.Background()
	docs := []testDoc{
		{ID: "one", NumValue: 0},
		{ID: "two", NumValue: 10},
		{ID: "three", NumValue: 4},
		{ID: "four", NumValue: 17},
		{ID: "five", NumValue: 18},
	}
	for _, doc := range docs {
		if err := store.Insert(ctx, table, doc); err != nil {
			t.Fatalf("failed to insert %s: %v", doc.ID, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	original := testDoc{ID: "one", Value: "first", NumValue: 5}
	if err := store.Insert(ctx, table, original); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	doc, ok, err := FindByID[testDoc](ctx, store, table, "one")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !ok {
		t.Fatal("expected document to be found")
	}
	if doc != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", doc, original)
	}
}

func TestFindByIDMissing(t *testing.T) {
	store, table := testStore(t)

	_, ok, err := FindByID[testDoc](context.Background(), store, table, "nope")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if ok {
		t.Error("expected no document")
	}
}

func TestStoreScenario(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()
	seedDocs(t, store, table)

	count, err := store.CountAll(ctx, table)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 documents, got %d", count)
	}

	matches, err := FindByField[testDoc](ctx, store, table, documents.Greater("NumValue", 15))
	if err != nil {
		t.Fatalf("FindByField failed: %v", err)
	}
	found := map[string]bool{}
	for _, doc := range matches {
		found[doc.ID] = true
	}
	if len(found) != 2 || !found["four"] || !found["five"] {
		t.Errorf("expected documents four and five, got %v", found)
	}

	if err := store.DeleteByID(ctx, table, "four"); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	count, err = store.CountAll(ctx, table)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 documents after delete, got %d", count)
	}

	exists, err := store.ExistsByID(ctx, table, "seven")
	if err != nil {
		t.Fatalf("ExistsByID failed: %v", err)
	}
	if exists {
		t.Error("document seven should not exist")
	}
}

func TestInsertDuplicateID(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, table, testDoc{ID: "dup"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.Insert(ctx, table, testDoc{ID: "dup"})
	if err == nil {
		t.Fatal("expected constraint violation on duplicate id")
	}
	if !strings.Contains(err.Error(), "UNIQUE") {
		t.Errorf("expected the driver's unique-constraint error, got %v", err)
	}
}

func TestSaveUpsert(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, table, testDoc{ID: "x", Value: "a"}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.Save(ctx, table, testDoc{ID: "x", Value: "b"}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	count, err := store.CountAll(ctx, table)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one row after upsert, got %d", count)
	}

	doc, ok, err := FindByID[testDoc](ctx, store, table, "x")
	if err != nil || !ok {
		t.Fatalf("FindByID failed: ok=%v err=%v", ok, err)
	}
	if doc.Value != "b" {
		t.Errorf("expected updated value \"b\", got %q", doc.Value)
	}
}

func TestSaveIdempotent(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	doc := testDoc{ID: "same", Value: "v", NumValue: 9}
	if err := store.Save(ctx, table, doc); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.Save(ctx, table, doc); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	count, err := store.CountAll(ctx, table)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one row, got %d", count)
	}

	back, ok, err := FindByID[testDoc](ctx, store, table, "same")
	if err != nil || !ok {
		t.Fatalf("FindByID failed: ok=%v err=%v", ok, err)
	}
	if back != doc {
		t.Errorf("content changed across identical saves: %+v", back)
	}
}

func TestPatchPreservesSiblings(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, table, testDoc{ID: "p", Value: "keep", NumValue: 1}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.PatchByID(ctx, table, "p", map[string]any{"NumValue": 77}); err != nil {
		t.Fatalf("PatchByID failed: %v", err)
	}

	doc, ok, err := FindByID[testDoc](ctx, store, table, "p")
	if err != nil || !ok {
		t.Fatalf("FindByID failed: ok=%v err=%v", ok, err)
	}
	if doc.NumValue != 77 {
		t.Errorf("expected patched NumValue 77, got %d", doc.NumValue)
	}
	if doc.Value != "keep" {
		t.Errorf("patch must preserve sibling keys, got Value=%q", doc.Value)
	}
}

func TestPatchZeroMatchesIsNoOp(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()
	seedDocs(t, store, table)

	err := store.PatchByField(ctx, table, documents.Equal("Value", "no-such"), map[string]any{"NumValue": 1})
	if err != nil {
		t.Fatalf("patch matching zero rows must succeed, got %v", err)
	}

	// Nothing changed
	matches, err := FindByField[testDoc](ctx, store, table, documents.Equal("NumValue", 1))
	if err != nil {
		t.Fatalf("FindByField failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no patched rows, got %d", len(matches))
	}
}

func TestFindFirstByField(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()
	seedDocs(t, store, table)

	_, ok, err := FindFirstByField[testDoc](ctx, store, table, documents.Greater("NumValue", 15))
	if err != nil {
		t.Fatalf("FindFirstByField failed: %v", err)
	}
	if !ok {
		t.Error("expected a match")
	}

	_, ok, err = FindFirstByField[testDoc](ctx, store, table, documents.Greater("NumValue", 100))
	if err != nil {
		t.Fatalf("FindFirstByField failed: %v", err)
	}
	if ok {
		t.Error("expected no match, not an error")
	}
}

func TestFieldExistsQueries(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, table, map[string]any{"Id": "a", "Extra": "yes"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Insert(ctx, table, map[string]any{"Id": "b"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	count, err := store.CountByField(ctx, table, documents.FieldExists("Extra"))
	if err != nil {
		t.Fatalf("CountByField failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one document with Extra, got %d", count)
	}

	count, err = store.CountByField(ctx, table, documents.FieldNotExists("Extra"))
	if err != nil {
		t.Fatalf("CountByField failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one document without Extra, got %d", count)
	}
}

func TestRemoveFields(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, table, testDoc{ID: "r", Value: "v", NumValue: 3}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.RemoveFieldsByID(ctx, table, "r", []string{"Value", "NumValue"}); err != nil {
		t.Fatalf("RemoveFieldsByID failed: %v", err)
	}

	// Inspect the raw JSON: the keys must be gone, not merely zeroed
	raw, err := CustomScalar[string](ctx, store, "SELECT data FROM test_table WHERE data ->> 'Id' = @id",
		[]documents.Parameter{{Name: documents.ParamID, Value: "r"}})
	if err != nil {
		t.Fatalf("failed to read raw document: %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("invalid JSON after removal: %v", err)
	}
	if _, present := parsed["Value"]; present {
		t.Error("Value should have been removed")
	}
	if _, present := parsed["NumValue"]; present {
		t.Error("NumValue should have been removed")
	}
	if parsed["Id"] != "r" {
		t.Errorf("Id must survive removal, got %v", parsed["Id"])
	}

	// Absent fields and zero matches are both no-ops
	if err := store.RemoveFieldsByID(ctx, table, "r", []string{"Nope"}); err != nil {
		t.Errorf("removing an absent field must succeed, got %v", err)
	}
	if err := store.RemoveFieldsByID(ctx, table, "missing", []string{"Value"}); err != nil {
		t.Errorf("removing from a missing document must succeed, got %v", err)
	}
}

func TestUpdateByID(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, table, testDoc{ID: "u", Value: "old"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.UpdateByID(ctx, table, "u", testDoc{ID: "u", Value: "new", NumValue: 2}); err != nil {
		t.Fatalf("UpdateByID failed: %v", err)
	}

	doc, ok, err := FindByID[testDoc](ctx, store, table, "u")
	if err != nil || !ok {
		t.Fatalf("FindByID failed: ok=%v err=%v", ok, err)
	}
	if doc.Value != "new" || doc.NumValue != 2 {
		t.Errorf("unexpected document after update: %+v", doc)
	}

	// Zero matches is a successful no-op
	if err := store.UpdateByID(ctx, table, "missing", testDoc{ID: "missing"}); err != nil {
		t.Errorf("update matching zero rows must succeed, got %v", err)
	}
}

func TestUpdateByFunc(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, table, testDoc{ID: "f", Value: "old"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	err := UpdateByFunc(ctx, store, table, func(d testDoc) string { return d.ID }, testDoc{ID: "f", Value: "new"})
	if err != nil {
		t.Fatalf("UpdateByFunc failed: %v", err)
	}

	doc, ok, err := FindByID[testDoc](ctx, store, table, "f")
	if err != nil || !ok {
		t.Fatalf("FindByID failed: ok=%v err=%v", ok, err)
	}
	if doc.Value != "new" {
		t.Errorf("expected updated value, got %q", doc.Value)
	}
}

func TestCustomFunctions(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()
	seedDocs(t, store, table)

	docs, err := CustomList[testDoc](ctx, store,
		"SELECT data FROM test_table WHERE data ->> 'NumValue' > @field ORDER BY data ->> 'NumValue'",
		[]documents.Parameter{{Name: documents.ParamField, Value: 9}})
	if err != nil {
		t.Fatalf("CustomList failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected three documents, got %d", len(docs))
	}
	if docs[0].ID != "two" {
		t.Errorf("expected ordered results starting with two, got %s", docs[0].ID)
	}

	doc, ok, err := CustomSingle[testDoc](ctx, store,
		"SELECT data FROM test_table WHERE data ->> 'Id' = @id",
		[]documents.Parameter{{Name: documents.ParamID, Value: "three"}})
	if err != nil || !ok {
		t.Fatalf("CustomSingle failed: ok=%v err=%v", ok, err)
	}
	if doc.NumValue != 4 {
		t.Errorf("unexpected document: %+v", doc)
	}

	if err := store.CustomNonQuery(ctx, "DELETE FROM test_table", nil); err != nil {
		t.Fatalf("CustomNonQuery failed: %v", err)
	}
	count, err := store.CountAll(ctx, table)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d rows", count)
	}
}

func TestNotConfigured(t *testing.T) {
	store := NewStore(nil, documents.DefaultConfig())
	if _, err := store.CountAll(context.Background(), "t"); err != documents.ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if err := store.Insert(context.Background(), "t", testDoc{ID: "x"}); err != documents.ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestUseDataSourceReplacesHandle(t *testing.T) {
	store, table := testStore(t)
	ctx := context.Background()
	seedDocs(t, store, table)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	store.UseDataSource(db)

	if err := store.EnsureTable(ctx, table); err != nil {
		t.Fatalf("EnsureTable on new data source failed: %v", err)
	}
	count, err := store.CountAll(ctx, table)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 0 {
		t.Errorf("new data source should be empty, got %d rows", count)
	}
}
