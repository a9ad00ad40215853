package query

import (
	"fmt"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
)

// IDParameter binds a document id as @id. Ids are always bound as text
// regardless of the document's native id type.
func IDParameter(key any) documents.Parameter {
	return documents.Parameter{Name: documents.ParamID, Value: fmt.Sprintf("%v", key)}
}

// JSONParameter serializes a value and binds it under the given name as a
// JSON blob
func JSONParameter(name string, value any, s documents.Serializer) (documents.Parameter, error) {
	data, err := s.Serialize(value)
	if err != nil {
		return documents.Parameter{}, fmt.Errorf("failed to serialize parameter %s: %w", name, err)
	}
	return documents.Parameter{Name: name, Value: data}, nil
}

// AddFieldParameter appends the @field comparison parameter for a field
// query. Existence operators reference no placeholder, so the parameter
// list is returned unchanged for them.
func AddFieldParameter(params []documents.Parameter, field documents.Field) []documents.Parameter {
	if !field.Op.HasValue() {
		return params
	}
	return append(params, documents.Parameter{Name: documents.ParamField, Value: field.Value})
}
