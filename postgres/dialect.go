// Package postgres implements the document store on PostgreSQL using
// jackc/pgx. Documents live in a single JSONB column; containment and
// JSONPath queries are delegated to the database's @> and @? operators.
package postgres

import (
	"fmt"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
	"github.com/bit-badger/BitBadger.Documents-sub001/query"
)

// Dialect is the PostgreSQL syntax capability consumed by the query package
type Dialect struct{}

// Name identifies the dialect
func (Dialect) Name() string {
	return "postgresql"
}

// JSONColumnType is JSONB
func (Dialect) JSONColumnType() string {
	return "JSONB"
}

// MergeExpr merges a patch with the || operator. Keys present in the patch
// replace existing keys wholesale, including nested objects and arrays.
func (Dialect) MergeExpr(dataExpr, patchExpr string) string {
	return fmt.Sprintf("%s || %s", dataExpr, patchExpr)
}

// RemoveFieldsExpr strips fields with the - operator; the single @name
// parameter carries either one field name or a text[] of names
func (Dialect) RemoveFieldsExpr(dataExpr string, nameParams []string) string {
	return fmt.Sprintf("%s - %s", dataExpr, nameParams[0])
}

// UpsertClause targets the unique expression index on the id field
func (Dialect) UpsertClause(idField string) string {
	return fmt.Sprintf("ON CONFLICT ((data ->> '%s')) DO UPDATE SET data = EXCLUDED.data", idField)
}

// WhereDataContains is the predicate testing that @criteria's key/value
// pairs are a subset of the document's
func WhereDataContains() string {
	return fmt.Sprintf("data @> %s", documents.ParamCriteria)
}

// WhereJSONPathMatches is the predicate evaluating a jsonpath expression
// against the document
func WhereJSONPathMatches() string {
	return fmt.Sprintf("data @? %s::jsonpath", documents.ParamPath)
}

// DocumentIndexKind selects the GIN operator class for a whole-document
// index
type DocumentIndexKind int

const (
	// Full indexes every key and value (jsonb_ops); supports the widest
	// operator set
	Full DocumentIndexKind = iota

	// Optimized indexes path/value pairs only (jsonb_path_ops); smaller
	// and faster for containment queries
	Optimized
)

// DocumentIndex builds the GIN index DDL over the whole data column
func DocumentIndex(table string, kind DocumentIndexKind) string {
	target := "data"
	if kind == Optimized {
		target = "data jsonb_path_ops"
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (%s)",
		query.IndexName(table, "document"), table, target)
}

// whereByField adapts the shared field fragment for PostgreSQL, where ->>
// always yields text: numeric comparison values take a ::numeric cast so
// that 17 sorts above 5
func whereByField(field documents.Field) string {
	if field.Op.HasValue() && isNumeric(field.Value) {
		return fmt.Sprintf("(data ->> '%s')::numeric %s %s", field.Name, field.Op, documents.ParamField)
	}
	return query.WhereByField(field, documents.ParamField)
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// fieldNameParams binds field names for removal: one name binds as a
// scalar, several as a text[]
func fieldNameParams(names []string) documents.Parameter {
	if len(names) == 1 {
		return documents.Parameter{Name: documents.ParamName, Value: names[0]}
	}
	return documents.Parameter{Name: documents.ParamName, Value: names}
}
