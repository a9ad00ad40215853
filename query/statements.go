// Package query builds the SQL text and parameter lists for document store
// operations. Builders are pure functions parameterized over the
// documents.Dialect capability; their output format is a committed contract
// pinned by exact-string tests.
//
// Table and field names are interpolated into the statement text verbatim.
// Callers are trusted to pass well-formed identifiers; a name that breaks
// the generated SQL surfaces as a syntax error from the driver.
package query

import (
	"fmt"
	"strings"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
)

// SelectFromTable starts a document retrieval query
func SelectFromTable(table string) string {
	return fmt.Sprintf("SELECT data FROM %s", table)
}

// WhereByField builds the WHERE fragment comparing a top-level JSON field
// against the given placeholder. Existence operators render as a complete
// null check and reference no placeholder.
func WhereByField(field documents.Field, paramName string) string {
	if !field.Op.HasValue() {
		return fmt.Sprintf("data ->> '%s' %s", field.Name, field.Op)
	}
	return fmt.Sprintf("data ->> '%s' %s %s", field.Name, field.Op, paramName)
}

// WhereByID builds the WHERE fragment matching the document id.
// Ids are always compared as text.
func WhereByID(idField string) string {
	return WhereByField(documents.Equal(idField, ""), documents.ParamID)
}

// SelectWhere builds a document retrieval query with the given predicate
func SelectWhere(table, where string) string {
	return fmt.Sprintf("%s WHERE %s", SelectFromTable(table), where)
}

// Insert builds the single-column document INSERT statement
func Insert(table string) string {
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, documents.ParamData)
}

// Save builds the upsert statement: insert the document, or replace the
// existing row sharing its id
func Save(table, idField string, d documents.Dialect) string {
	return fmt.Sprintf("%s %s", Insert(table), d.UpsertClause(idField))
}

// CountAll builds the query counting every document in a table
func CountAll(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) AS it FROM %s", table)
}

// CountWhere builds the query counting documents matching a predicate
func CountWhere(table, where string) string {
	return fmt.Sprintf("%s WHERE %s", CountAll(table), where)
}

// ExistsWhere builds the query testing whether any document matches a
// predicate
func ExistsWhere(table, where string) string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s) AS it", table, where)
}

// Update builds the full document replacement statement
func Update(table, where string) string {
	return fmt.Sprintf("UPDATE %s SET data = %s WHERE %s", table, documents.ParamData, where)
}

// Patch builds the partial update statement merging @data into matching
// documents with the dialect's native JSON merge
func Patch(table, where string, d documents.Dialect) string {
	return fmt.Sprintf("UPDATE %s SET data = %s WHERE %s",
		table, d.MergeExpr("data", documents.ParamData), where)
}

// RemoveFields builds the statement stripping the fields bound by the given
// placeholder names from matching documents
func RemoveFields(table, where string, d documents.Dialect, nameParams []string) string {
	return fmt.Sprintf("UPDATE %s SET data = %s WHERE %s",
		table, d.RemoveFieldsExpr("data", nameParams), where)
}

// Delete builds the statement removing documents matching a predicate
func Delete(table, where string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
}

// unqualify strips any schema qualifier from a table reference
func unqualify(table string) string {
	if idx := strings.LastIndex(table, "."); idx >= 0 {
		return table[idx+1:]
	}
	return table
}
