package sqlite

import (
	"testing"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
)

func TestDialect(t *testing.T) {
	d := Dialect{}

	if d.Name() != "sqlite" {
		t.Errorf("unexpected name: %s", d.Name())
	}
	if d.JSONColumnType() != "TEXT" {
		t.Errorf("unexpected column type: %s", d.JSONColumnType())
	}
	if got := d.MergeExpr("data", "@data"); got != "json_patch(data, json(@data))" {
		t.Errorf("unexpected merge expression: %s", got)
	}
	if got := d.RemoveFieldsExpr("data", []string{"@name0", "@name1"}); got != "json_remove(data, @name0, @name1)" {
		t.Errorf("unexpected remove expression: %s", got)
	}
	want := "ON CONFLICT ((data ->> 'Id')) DO UPDATE SET data = EXCLUDED.data"
	if got := d.UpsertClause("Id"); got != want {
		t.Errorf("unexpected upsert clause: %s", got)
	}
}

func TestFieldNameParams(t *testing.T) {
	params, placeholders := fieldNameParams([]string{"Sub", "Value"})

	if len(params) != 2 || len(placeholders) != 2 {
		t.Fatalf("expected two parameters and placeholders, got %d/%d", len(params), len(placeholders))
	}
	if placeholders[0] != "@name0" || placeholders[1] != "@name1" {
		t.Errorf("unexpected placeholders: %v", placeholders)
	}
	if params[0] != (documents.Parameter{Name: "@name0", Value: "$.Sub"}) {
		t.Errorf("unexpected first parameter: %+v", params[0])
	}
	if params[1] != (documents.Parameter{Name: "@name1", Value: "$.Value"}) {
		t.Errorf("unexpected second parameter: %+v", params[1])
	}
}
