package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
	"github.com/bit-badger/BitBadger.Documents-sub001/query"
)

// Store executes document operations against a SQLite database. Every
// operation is a single round trip with no retry and no caching;
// transactional behavior is whatever the caller arranges on the database
// handle.
type Store struct {
	db      *sql.DB
	cfg     *documents.Config
	dialect Dialect
}

// NewStore wraps an existing database handle
func NewStore(db *sql.DB, cfg *documents.Config) *Store {
	return &Store{db: db, cfg: cfg}
}

// Connect opens the SQLite database at the given path and wraps it
func Connect(ctx context.Context, path string, cfg *documents.Config) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStore(db, cfg), nil
}

// UseDataSource replaces the store's database handle, closing the previous
// one
func (s *Store) UseDataSource(db *sql.DB) {
	if s.db != nil {
		_ = s.db.Close()
	}
	s.db = db
}

// Close closes the underlying database handle
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping tests the connection
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return documents.ErrNotConfigured
	}
	return s.db.PingContext(ctx)
}

// Config returns the store's configuration
func (s *Store) Config() *documents.Config {
	return s.cfg
}

// namedArgs converts ordered parameters to database/sql named-argument form
func namedArgs(params []documents.Parameter) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = sql.Named(p.Name[1:], p.Value)
	}
	return args
}

// exec runs a statement, discarding the affected-row count. Zero matching
// rows is not an error.
func (s *Store) exec(ctx context.Context, sqlText string, params []documents.Parameter) error {
	if s.db == nil {
		return documents.ErrNotConfigured
	}
	if _, err := s.db.ExecContext(ctx, sqlText, namedArgs(params)...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// queryJSON runs a document query and returns the data column of every row
func (s *Store) queryJSON(ctx context.Context, sqlText string, params []documents.Parameter) ([]string, error) {
	if s.db == nil {
		return nil, documents.ErrNotConfigured
	}
	rows, err := s.db.QueryContext(ctx, sqlText, namedArgs(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// scalar runs a query returning a single value
func scalar[T any](ctx context.Context, s *Store, sqlText string, params []documents.Parameter) (T, error) {
	var it T
	if s.db == nil {
		return it, documents.ErrNotConfigured
	}
	if err := s.db.QueryRowContext(ctx, sqlText, namedArgs(params)...).Scan(&it); err != nil {
		return it, fmt.Errorf("failed to execute scalar query: %w", err)
	}
	return it, nil
}

// EnsureTable creates the document table and its unique key index if they
// do not exist
func (s *Store) EnsureTable(ctx context.Context, table string) error {
	if err := s.exec(ctx, query.Definition(table, s.dialect), nil); err != nil {
		return err
	}
	return s.exec(ctx, query.KeyIndex(table, s.cfg.IDFieldOrDefault()), nil)
}

// EnsureFieldIndex creates an expression index over the given JSON fields
func (s *Store) EnsureFieldIndex(ctx context.Context, table, indexName string, fields []string) error {
	return s.exec(ctx, query.FieldIndex(table, indexName, fields), nil)
}

// Insert adds a document. A duplicate id violates the key index and the
// driver's constraint error propagates untouched.
func (s *Store) Insert(ctx context.Context, table string, doc any) error {
	data, err := query.JSONParameter(documents.ParamData, doc, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	return s.exec(ctx, query.Insert(table), []documents.Parameter{data})
}

// Save upserts a document: insert it, or replace the row sharing its id.
// Idempotent for identical content.
func (s *Store) Save(ctx context.Context, table string, doc any) error {
	data, err := query.JSONParameter(documents.ParamData, doc, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	return s.exec(ctx, query.Save(table, s.cfg.IDFieldOrDefault(), s.dialect), []documents.Parameter{data})
}

// CountAll counts the documents in a table
func (s *Store) CountAll(ctx context.Context, table string) (int64, error) {
	return scalar[int64](ctx, s, query.CountAll(table), nil)
}

// CountByField counts documents matching a field comparison
func (s *Store) CountByField(ctx context.Context, table string, field documents.Field) (int64, error) {
	where := query.WhereByField(field, documents.ParamField)
	return scalar[int64](ctx, s, query.CountWhere(table, where), query.AddFieldParameter(nil, field))
}

// ExistsByID reports whether a document with the given id exists
func (s *Store) ExistsByID(ctx context.Context, table string, id any) (bool, error) {
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return scalar[bool](ctx, s, query.ExistsWhere(table, where), []documents.Parameter{query.IDParameter(id)})
}

// ExistsByField reports whether any document matches a field comparison
func (s *Store) ExistsByField(ctx context.Context, table string, field documents.Field) (bool, error) {
	where := query.WhereByField(field, documents.ParamField)
	return scalar[bool](ctx, s, query.ExistsWhere(table, where), query.AddFieldParameter(nil, field))
}

// deserializeAll materializes every JSON row into the domain type
func deserializeAll[T any](s *Store, docs []string) ([]T, error) {
	results := make([]T, 0, len(docs))
	for _, doc := range docs {
		value, err := documents.Deserialize[T](s.cfg.SerializerOrDefault(), doc)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize document: %w", err)
		}
		results = append(results, value)
	}
	return results, nil
}

// findFirst materializes the first matching document, reporting ok=false
// when nothing matches
func findFirst[T any](ctx context.Context, s *Store, sqlText string, params []documents.Parameter) (T, bool, error) {
	var zero T
	docs, err := s.queryJSON(ctx, sqlText, params)
	if err != nil || len(docs) == 0 {
		return zero, false, err
	}
	value, err := documents.Deserialize[T](s.cfg.SerializerOrDefault(), docs[0])
	if err != nil {
		return zero, false, fmt.Errorf("failed to deserialize document: %w", err)
	}
	return value, true, nil
}

// FindAll retrieves every document in a table
func FindAll[T any](ctx context.Context, s *Store, table string) ([]T, error) {
	docs, err := s.queryJSON(ctx, query.SelectFromTable(table), nil)
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// FindByID retrieves the document with the given id; ok is false when no
// such document exists
func FindByID[T any](ctx context.Context, s *Store, table string, id any) (T, bool, error) {
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return findFirst[T](ctx, s, query.SelectWhere(table, where), []documents.Parameter{query.IDParameter(id)})
}

// FindByField retrieves all documents matching a field comparison
func FindByField[T any](ctx context.Context, s *Store, table string, field documents.Field) ([]T, error) {
	where := query.WhereByField(field, documents.ParamField)
	docs, err := s.queryJSON(ctx, query.SelectWhere(table, where), query.AddFieldParameter(nil, field))
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// FindFirstByField retrieves the first document matching a field
// comparison; ok is false when nothing matches
func FindFirstByField[T any](ctx context.Context, s *Store, table string, field documents.Field) (T, bool, error) {
	where := query.WhereByField(field, documents.ParamField)
	sqlText := query.SelectWhere(table, where) + " LIMIT 1"
	return findFirst[T](ctx, s, sqlText, query.AddFieldParameter(nil, field))
}

// UpdateByID replaces the document with the given id. No matching row is a
// successful no-op.
func (s *Store) UpdateByID(ctx context.Context, table string, id any, doc any) error {
	data, err := query.JSONParameter(documents.ParamData, doc, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return s.exec(ctx, query.Update(table, where), []documents.Parameter{data, query.IDParameter(id)})
}

// UpdateByFunc replaces a document keyed by a caller-supplied id extractor
func UpdateByFunc[T any](ctx context.Context, s *Store, table string, idFunc func(T) string, doc T) error {
	return s.UpdateByID(ctx, table, idFunc(doc), doc)
}

// PatchByID merges the patch's top-level keys into the document with the
// given id. No matching row is a successful no-op.
func (s *Store) PatchByID(ctx context.Context, table string, id any, patch any) error {
	data, err := query.JSONParameter(documents.ParamData, patch, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return s.exec(ctx, query.Patch(table, where, s.dialect), []documents.Parameter{data, query.IDParameter(id)})
}

// PatchByField merges the patch into every document matching a field
// comparison
func (s *Store) PatchByField(ctx context.Context, table string, field documents.Field, patch any) error {
	data, err := query.JSONParameter(documents.ParamData, patch, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	where := query.WhereByField(field, documents.ParamField)
	params := query.AddFieldParameter([]documents.Parameter{data}, field)
	return s.exec(ctx, query.Patch(table, where, s.dialect), params)
}

// RemoveFieldsByID strips fields from the document with the given id.
// Absent fields, or no matching document, are no-ops. Removing a field the
// target type requires is the caller's responsibility; a later find may
// fail to deserialize.
func (s *Store) RemoveFieldsByID(ctx context.Context, table string, id any, fieldNames []string) error {
	nameParams, placeholders := fieldNameParams(fieldNames)
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	sqlText := query.RemoveFields(table, where, s.dialect, placeholders)
	return s.exec(ctx, sqlText, append(nameParams, query.IDParameter(id)))
}

// RemoveFieldsByField strips fields from documents matching a field
// comparison
func (s *Store) RemoveFieldsByField(ctx context.Context, table string, field documents.Field, fieldNames []string) error {
	nameParams, placeholders := fieldNameParams(fieldNames)
	where := query.WhereByField(field, documents.ParamField)
	sqlText := query.RemoveFields(table, where, s.dialect, placeholders)
	return s.exec(ctx, sqlText, query.AddFieldParameter(nameParams, field))
}

// DeleteByID removes the document with the given id. No matching row is a
// successful no-op.
func (s *Store) DeleteByID(ctx context.Context, table string, id any) error {
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return s.exec(ctx, query.Delete(table, where), []documents.Parameter{query.IDParameter(id)})
}

// DeleteByField removes documents matching a field comparison
func (s *Store) DeleteByField(ctx context.Context, table string, field documents.Field) error {
	where := query.WhereByField(field, documents.ParamField)
	return s.exec(ctx, query.Delete(table, where), query.AddFieldParameter(nil, field))
}

// CustomList runs caller-supplied SQL whose first column is a document and
// materializes every row
func CustomList[T any](ctx context.Context, s *Store, sqlText string, params []documents.Parameter) ([]T, error) {
	docs, err := s.queryJSON(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// CustomSingle runs caller-supplied SQL and materializes the first row;
// ok is false when no row is returned
func CustomSingle[T any](ctx context.Context, s *Store, sqlText string, params []documents.Parameter) (T, bool, error) {
	return findFirst[T](ctx, s, sqlText, params)
}

// CustomScalar runs caller-supplied SQL returning a single value
func CustomScalar[T any](ctx context.Context, s *Store, sqlText string, params []documents.Parameter) (T, error) {
	return scalar[T](ctx, s, sqlText, params)
}

// CustomNonQuery runs caller-supplied SQL that returns no rows
func (s *Store) CustomNonQuery(ctx context.Context, sqlText string, params []documents.Parameter) error {
	return s.exec(ctx, sqlText, params)
}
