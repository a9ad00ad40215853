// Package sqlite implements the document store on SQLite using
// mattn/go-sqlite3 through database/sql. Documents live in a single TEXT
// column holding JSON; merge and removal delegate to the json1 functions.
package sqlite

import (
	"fmt"
	"strings"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
)

// Dialect is the SQLite syntax capability consumed by the query package
type Dialect struct{}

// Name identifies the dialect
func (Dialect) Name() string {
	return "sqlite"
}

// JSONColumnType is TEXT; SQLite stores JSON as ordinary text
func (Dialect) JSONColumnType() string {
	return "TEXT"
}

// MergeExpr merges a patch with json_patch (RFC 7386 semantics): null
// values in the patch remove keys, unlike the PostgreSQL || operator.
// The divergence is deliberate; each backend keeps its native behavior.
func (Dialect) MergeExpr(dataExpr, patchExpr string) string {
	return fmt.Sprintf("json_patch(%s, json(%s))", dataExpr, patchExpr)
}

// RemoveFieldsExpr strips fields with json_remove, one bound parameter per
// field name
func (Dialect) RemoveFieldsExpr(dataExpr string, nameParams []string) string {
	return fmt.Sprintf("json_remove(%s, %s)", dataExpr, strings.Join(nameParams, ", "))
}

// UpsertClause targets the unique expression index on the id field
func (Dialect) UpsertClause(idField string) string {
	return fmt.Sprintf("ON CONFLICT ((data ->> '%s')) DO UPDATE SET data = EXCLUDED.data", idField)
}

// fieldNameParams binds field names for removal as numbered parameters,
// since json_remove is variadic and SQLite has no array parameter type.
// Each name becomes a '$.name' path argument.
func fieldNameParams(names []string) ([]documents.Parameter, []string) {
	params := make([]documents.Parameter, len(names))
	placeholders := make([]string, len(names))
	for i, name := range names {
		placeholder := fmt.Sprintf("%s%d", documents.ParamName, i)
		params[i] = documents.Parameter{Name: placeholder, Value: "$." + name}
		placeholders[i] = placeholder
	}
	return params, placeholders
}
