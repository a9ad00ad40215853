package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
	"github.com/bit-badger/BitBadger.Documents-sub001/query"
)

// Store executes document operations against a PostgreSQL connection pool.
// Concurrency control and transactional isolation are the pool's concern;
// every operation here is a single round trip with no retry and no caching.
type Store struct {
	pool    *pgxpool.Pool
	cfg     *documents.Config
	dialect Dialect
}

// NewStore wraps an existing pool
func NewStore(pool *pgxpool.Pool, cfg *documents.Config) *Store {
	return &Store{pool: pool, cfg: cfg}
}

// Connect creates a pool for the given connection string and wraps it
func Connect(ctx context.Context, connString string, cfg *documents.Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStore(pool, cfg), nil
}

// UseDataSource replaces the store's pool, closing the previous one
func (s *Store) UseDataSource(pool *pgxpool.Pool) {
	if s.pool != nil {
		s.pool.Close()
	}
	s.pool = pool
}

// Close closes the underlying pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

// Ping tests the connection
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return documents.ErrNotConfigured
	}
	return s.pool.Ping(ctx)
}

// Config returns the store's configuration
func (s *Store) Config() *documents.Config {
	return s.cfg
}

// namedArgs converts ordered parameters to pgx named-argument form
func namedArgs(params []documents.Parameter) pgx.NamedArgs {
	args := make(pgx.NamedArgs, len(params))
	for _, p := range params {
		args[p.Name[1:]] = p.Value
	}
	return args
}

// exec runs a statement, discarding the affected-row count. Zero matching
// rows is not an error.
func (s *Store) exec(ctx context.Context, sql string, params []documents.Parameter) error {
	if s.pool == nil {
		return documents.ErrNotConfigured
	}
	if _, err := s.pool.Exec(ctx, sql, namedArgs(params)); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// queryJSON runs a document query and returns the data column of every row
func (s *Store) queryJSON(ctx context.Context, sql string, params []documents.Parameter) ([]string, error) {
	if s.pool == nil {
		return nil, documents.ErrNotConfigured
	}
	rows, err := s.pool.Query(ctx, sql, namedArgs(params))
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

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

// EnsureTable creates the document table and its unique key index if they
// do not exist
func (s *Store) EnsureTable(ctx context.Context, table string) error {
	if err := s.exec(ctx, query.Definition(table, s.dialect), nil); err != nil {
		return err
	}
	return s.exec(ctx, query.KeyIndex(table, s.cfg.IDFieldOrDefault()), nil)
}

// EnsureDocumentIndex creates a GIN index over the whole data column
func (s *Store) EnsureDocumentIndex(ctx context.Context, table string, kind DocumentIndexKind) error {
	return s.exec(ctx, DocumentIndex(table, kind), nil)
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

// scalar runs a query returning a single value
func scalar[T any](ctx context.Context, s *Store, sql string, params []documents.Parameter) (T, error) {
	var it T
	if s.pool == nil {
		return it, documents.ErrNotConfigured
	}
	if err := s.pool.QueryRow(ctx, sql, namedArgs(params)).Scan(&it); err != nil {
		return it, fmt.Errorf("failed to execute scalar query: %w", err)
	}
	return it, nil
}

// CountAll counts the documents in a table
func (s *Store) CountAll(ctx context.Context, table string) (int64, error) {
	return scalar[int64](ctx, s, query.CountAll(table), nil)
}

// CountByField counts documents matching a field comparison
func (s *Store) CountByField(ctx context.Context, table string, field documents.Field) (int64, error) {
	where := whereByField(field)
	return scalar[int64](ctx, s, query.CountWhere(table, where), query.AddFieldParameter(nil, field))
}

// CountByContains counts documents containing the criteria's key/value pairs
func (s *Store) CountByContains(ctx context.Context, table string, criteria any) (int64, error) {
	param, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return 0, err
	}
	return scalar[int64](ctx, s, query.CountWhere(table, WhereDataContains()), []documents.Parameter{param})
}

// CountByJSONPath counts documents matching a jsonpath expression
func (s *Store) CountByJSONPath(ctx context.Context, table, path string) (int64, error) {
	params := []documents.Parameter{{Name: documents.ParamPath, Value: path}}
	return scalar[int64](ctx, s, query.CountWhere(table, WhereJSONPathMatches()), params)
}

// ExistsByID reports whether a document with the given id exists
func (s *Store) ExistsByID(ctx context.Context, table string, id any) (bool, error) {
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return scalar[bool](ctx, s, query.ExistsWhere(table, where), []documents.Parameter{query.IDParameter(id)})
}

// ExistsByField reports whether any document matches a field comparison
func (s *Store) ExistsByField(ctx context.Context, table string, field documents.Field) (bool, error) {
	where := whereByField(field)
	return scalar[bool](ctx, s, query.ExistsWhere(table, where), query.AddFieldParameter(nil, field))
}

// ExistsByContains reports whether any document contains the criteria
func (s *Store) ExistsByContains(ctx context.Context, table string, criteria any) (bool, error) {
	param, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return false, err
	}
	return scalar[bool](ctx, s, query.ExistsWhere(table, WhereDataContains()), []documents.Parameter{param})
}

// ExistsByJSONPath reports whether any document matches a jsonpath expression
func (s *Store) ExistsByJSONPath(ctx context.Context, table, path string) (bool, error) {
	params := []documents.Parameter{{Name: documents.ParamPath, Value: path}}
	return scalar[bool](ctx, s, query.ExistsWhere(table, WhereJSONPathMatches()), params)
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
func findFirst[T any](ctx context.Context, s *Store, sql string, params []documents.Parameter) (T, bool, error) {
	var zero T
	docs, err := s.queryJSON(ctx, sql, params)
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
	where := whereByField(field)
	docs, err := s.queryJSON(ctx, query.SelectWhere(table, where), query.AddFieldParameter(nil, field))
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// FindFirstByField retrieves the first document matching a field
// comparison; ok is false when nothing matches
func FindFirstByField[T any](ctx context.Context, s *Store, table string, field documents.Field) (T, bool, error) {
	where := whereByField(field)
	sql := query.SelectWhere(table, where) + " LIMIT 1"
	return findFirst[T](ctx, s, sql, query.AddFieldParameter(nil, field))
}

// FindByContains retrieves all documents containing the criteria's
// key/value pairs
func FindByContains[T any](ctx context.Context, s *Store, table string, criteria any) ([]T, error) {
	param, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return nil, err
	}
	docs, err := s.queryJSON(ctx, query.SelectWhere(table, WhereDataContains()), []documents.Parameter{param})
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// FindFirstByContains retrieves the first document containing the criteria;
// ok is false when nothing matches
func FindFirstByContains[T any](ctx context.Context, s *Store, table string, criteria any) (T, bool, error) {
	var zero T
	param, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return zero, false, err
	}
	sql := query.SelectWhere(table, WhereDataContains()) + " LIMIT 1"
	return findFirst[T](ctx, s, sql, []documents.Parameter{param})
}

// FindByJSONPath retrieves all documents matching a jsonpath expression
func FindByJSONPath[T any](ctx context.Context, s *Store, table, path string) ([]T, error) {
	params := []documents.Parameter{{Name: documents.ParamPath, Value: path}}
	docs, err := s.queryJSON(ctx, query.SelectWhere(table, WhereJSONPathMatches()), params)
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// FindFirstByJSONPath retrieves the first document matching a jsonpath
// expression; ok is false when nothing matches
func FindFirstByJSONPath[T any](ctx context.Context, s *Store, table, path string) (T, bool, error) {
	params := []documents.Parameter{{Name: documents.ParamPath, Value: path}}
	sql := query.SelectWhere(table, WhereJSONPathMatches()) + " LIMIT 1"
	return findFirst[T](ctx, s, sql, params)
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
	where := whereByField(field)
	params := query.AddFieldParameter([]documents.Parameter{data}, field)
	return s.exec(ctx, query.Patch(table, where, s.dialect), params)
}

// PatchByContains merges the patch into every document containing the
// criteria
func (s *Store) PatchByContains(ctx context.Context, table string, criteria any, patch any) error {
	data, err := query.JSONParameter(documents.ParamData, patch, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	criteriaParam, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	return s.exec(ctx, query.Patch(table, WhereDataContains(), s.dialect),
		[]documents.Parameter{data, criteriaParam})
}

// PatchByJSONPath merges the patch into every document matching a jsonpath
// expression
func (s *Store) PatchByJSONPath(ctx context.Context, table, path string, patch any) error {
	data, err := query.JSONParameter(documents.ParamData, patch, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	params := []documents.Parameter{data, {Name: documents.ParamPath, Value: path}}
	return s.exec(ctx, query.Patch(table, WhereJSONPathMatches(), s.dialect), params)
}

// removeFields runs a field-removal statement with the shared name binding
func (s *Store) removeFields(ctx context.Context, table, where string, fieldNames []string, params []documents.Parameter) error {
	sql := query.RemoveFields(table, where, s.dialect, []string{documents.ParamName})
	return s.exec(ctx, sql, append([]documents.Parameter{fieldNameParams(fieldNames)}, params...))
}

// RemoveFieldsByID strips fields from the document with the given id.
// Absent fields, or no matching document, are no-ops. Removing a field the
// target type requires is the caller's responsibility; a later find may
// fail to deserialize.
func (s *Store) RemoveFieldsByID(ctx context.Context, table string, id any, fieldNames []string) error {
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return s.removeFields(ctx, table, where, fieldNames, []documents.Parameter{query.IDParameter(id)})
}

// RemoveFieldsByField strips fields from documents matching a field
// comparison
func (s *Store) RemoveFieldsByField(ctx context.Context, table string, field documents.Field, fieldNames []string) error {
	where := whereByField(field)
	return s.removeFields(ctx, table, where, fieldNames, query.AddFieldParameter(nil, field))
}

// RemoveFieldsByContains strips fields from documents containing the
// criteria
func (s *Store) RemoveFieldsByContains(ctx context.Context, table string, criteria any, fieldNames []string) error {
	param, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	return s.removeFields(ctx, table, WhereDataContains(), fieldNames, []documents.Parameter{param})
}

// RemoveFieldsByJSONPath strips fields from documents matching a jsonpath
// expression
func (s *Store) RemoveFieldsByJSONPath(ctx context.Context, table, path string, fieldNames []string) error {
	params := []documents.Parameter{{Name: documents.ParamPath, Value: path}}
	return s.removeFields(ctx, table, WhereJSONPathMatches(), fieldNames, params)
}

// DeleteByID removes the document with the given id. No matching row is a
// successful no-op.
func (s *Store) DeleteByID(ctx context.Context, table string, id any) error {
	where := query.WhereByID(s.cfg.IDFieldOrDefault())
	return s.exec(ctx, query.Delete(table, where), []documents.Parameter{query.IDParameter(id)})
}

// DeleteByField removes documents matching a field comparison
func (s *Store) DeleteByField(ctx context.Context, table string, field documents.Field) error {
	where := whereByField(field)
	return s.exec(ctx, query.Delete(table, where), query.AddFieldParameter(nil, field))
}

// DeleteByContains removes documents containing the criteria
func (s *Store) DeleteByContains(ctx context.Context, table string, criteria any) error {
	param, err := query.JSONParameter(documents.ParamCriteria, criteria, s.cfg.SerializerOrDefault())
	if err != nil {
		return err
	}
	return s.exec(ctx, query.Delete(table, WhereDataContains()), []documents.Parameter{param})
}

// DeleteByJSONPath removes documents matching a jsonpath expression
func (s *Store) DeleteByJSONPath(ctx context.Context, table, path string) error {
	params := []documents.Parameter{{Name: documents.ParamPath, Value: path}}
	return s.exec(ctx, query.Delete(table, WhereJSONPathMatches()), params)
}

// CustomList runs caller-supplied SQL whose first column is a document and
// materializes every row
func CustomList[T any](ctx context.Context, s *Store, sql string, params []documents.Parameter) ([]T, error) {
	docs, err := s.queryJSON(ctx, sql, params)
	if err != nil {
		return nil, err
	}
	return deserializeAll[T](s, docs)
}

// CustomSingle runs caller-supplied SQL and materializes the first row;
// ok is false when no row is returned
func CustomSingle[T any](ctx context.Context, s *Store, sql string, params []documents.Parameter) (T, bool, error) {
	return findFirst[T](ctx, s, sql, params)
}

// CustomScalar runs caller-supplied SQL returning a single value
func CustomScalar[T any](ctx context.Context, s *Store, sql string, params []documents.Parameter) (T, error) {
	return scalar[T](ctx, s, sql, params)
}

// CustomNonQuery runs caller-supplied SQL that returns no rows
func (s *Store) CustomNonQuery(ctx context.Context, sql string, params []documents.Parameter) error {
	return s.exec(ctx, sql, params)
}
