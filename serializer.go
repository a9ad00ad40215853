package documents

import "encoding/json"

// Serializer converts domain objects to and from their JSON representation.
// The store never inspects document shape; everything round-trips through
// this capability.
type Serializer interface {
	Serialize(value any) (string, error)
	Deserialize(data string, target any) error
}

// JSONSerializer is the default Serializer backed by encoding/json
type JSONSerializer struct{}

// Serialize renders a value as compact JSON
func (JSONSerializer) Serialize(value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize parses JSON into the given target
func (JSONSerializer) Deserialize(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// Deserialize materializes a JSON string into a domain type using the
// given serializer
func Deserialize[T any](s Serializer, data string) (T, error) {
	var value T
	if err := s.Deserialize(data, &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
