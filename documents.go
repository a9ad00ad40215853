// Package documents implements a JSON document store on top of relational
// databases. Domain objects are serialized as JSON into a single data column;
// queries are built from field comparisons, containment checks, or JSONPath
// expressions and executed through the postgres or sqlite subpackages.
package documents

// Op is a comparison operator used in field-based queries
type Op string

const (
	OpEqual          Op = "="
	OpGreaterThan    Op = ">"
	OpGreaterOrEqual Op = ">="
	OpLessThan       Op = "<"
	OpLessOrEqual    Op = "<="
	OpNotEqual       Op = "<>"
	OpExists         Op = "IS NOT NULL"
	OpNotExists      Op = "IS NULL"
)

// HasValue reports whether the operator compares against a bound value.
// Existence operators render as complete null-check fragments and take none.
func (o Op) HasValue() bool {
	return o != OpExists && o != OpNotExists
}

// Field is a single comparison against a top-level JSON field.
// Value is nil exactly when Op is OpExists or OpNotExists; use the
// constructors below to keep that invariant.
type Field struct {
	Name  string
	Op    Op
	Value any
}

// Equal matches documents where the named field equals the given value
func Equal(name string, value any) Field {
	return Field{Name: name, Op: OpEqual, Value: value}
}

// Greater matches documents where the named field is greater than the given value
func Greater(name string, value any) Field {
	return Field{Name: name, Op: OpGreaterThan, Value: value}
}

// GreaterOrEqual matches documents where the named field is greater than or equal to the given value
func GreaterOrEqual(name string, value any) Field {
	return Field{Name: name, Op: OpGreaterOrEqual, Value: value}
}

// Less matches documents where the named field is less than the given value
func Less(name string, value any) Field {
	return Field{Name: name, Op: OpLessThan, Value: value}
}

// LessOrEqual matches documents where the named field is less than or equal to the given value
func LessOrEqual(name string, value any) Field {
	return Field{Name: name, Op: OpLessOrEqual, Value: value}
}

// NotEqual matches documents where the named field differs from the given value
func NotEqual(name string, value any) Field {
	return Field{Name: name, Op: OpNotEqual, Value: value}
}

// FieldExists matches documents where the named field is present
func FieldExists(name string) Field {
	return Field{Name: name, Op: OpExists}
}

// FieldNotExists matches documents where the named field is absent
func FieldNotExists(name string) Field {
	return Field{Name: name, Op: OpNotExists}
}
