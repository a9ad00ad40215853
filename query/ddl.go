package query

import (
	"fmt"
	"strings"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
)

// Definition builds the CREATE TABLE statement for a document table:
// a single data column of the dialect's JSON type
func Definition(table string, d documents.Dialect) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (data %s NOT NULL)", table, d.JSONColumnType())
}

// IndexName derives the name for a generated index from a possibly
// schema-qualified table reference. The schema prefix is stripped so that
// "schema.tbl" and "tbl" produce the same name.
func IndexName(table, suffix string) string {
	return fmt.Sprintf("idx_%s_%s", unqualify(table), suffix)
}

// KeyIndex builds the unique expression index enforcing document id
// uniqueness
func KeyIndex(table, idField string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ((data ->> '%s'))",
		IndexName(table, "key"), table, idField)
}

// FieldIndex builds an expression index over one or more top-level JSON
// fields. Each entry is a field name optionally followed by a direction,
// e.g. "numValue DESC".
func FieldIndex(table, indexName string, fields []string) string {
	exprs := make([]string, len(fields))
	for i, field := range fields {
		name, direction, hasDirection := strings.Cut(field, " ")
		expr := fmt.Sprintf("(data ->> '%s')", name)
		if hasDirection {
			expr += " " + direction
		}
		exprs[i] = expr
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		IndexName(table, indexName), table, strings.Join(exprs, ", "))
}
