package documents

// Fixed parameter placeholder names shared by the query text and the
// parameter builders. Generated SQL references these literally.
const (
	ParamID       = "@id"
	ParamData     = "@data"
	ParamField    = "@field"
	ParamCriteria = "@criteria"
	ParamPath     = "@path"
	ParamName     = "@name"
)

// Dialect captures the syntactic differences between the supported
// backends. Statement builders in the query package are parameterized over
// this capability; the postgres and sqlite packages each supply one.
type Dialect interface {
	// Name identifies the dialect ("postgresql" or "sqlite")
	Name() string

	// JSONColumnType is the column type for the data column
	JSONColumnType() string

	// MergeExpr renders the expression merging a JSON patch into an
	// existing document. The two backends diverge here on purpose: the
	// PostgreSQL || operator and SQLite json_patch have different
	// null and array merge semantics, and callers rely on each backend's
	// native behavior.
	MergeExpr(dataExpr, patchExpr string) string

	// RemoveFieldsExpr renders the expression removing the fields bound
	// by the given parameter names from a document
	RemoveFieldsExpr(dataExpr string, nameParams []string) string

	// UpsertClause renders the ON CONFLICT clause for save, keyed on the
	// given id field
	UpsertClause(idField string) string
}

// Parameter is a named value bound to a query. Parameters are assembled in
// the order the statement text references them, so dialects with strictly
// positional binding would still bind correctly.
type Parameter struct {
	Name  string
	Value any
}
