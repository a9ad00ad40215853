package documents

import "errors"

// DefaultIDField is the JSON field used as the document identifier unless
// a Config overrides it
const DefaultIDField = "Id"

// ErrNotConfigured is returned by store operations attempted before a data
// source has been supplied
var ErrNotConfigured = errors.New("documents: no data source configured")

// Config carries the store-wide settings read by every query build.
// Construct one at startup and pass it to the store constructors; there is
// no package-level mutable state.
type Config struct {
	// IDField is the JSON field holding the document identifier
	IDField string

	// Serializer converts documents to and from JSON
	Serializer Serializer
}

// DefaultConfig returns a Config with the "Id" field and JSON serialization
func DefaultConfig() *Config {
	return &Config{
		IDField:    DefaultIDField,
		Serializer: JSONSerializer{},
	}
}

// IDFieldOrDefault returns the configured id field, falling back to "Id".
// Query builders read this at build time, so changing the config changes
// subsequent query text.
func (c *Config) IDFieldOrDefault() string {
	if c == nil || c.IDField == "" {
		return DefaultIDField
	}
	return c.IDField
}

// SerializerOrDefault returns the configured serializer, falling back to
// the JSON codec
func (c *Config) SerializerOrDefault() Serializer {
	if c == nil || c.Serializer == nil {
		return JSONSerializer{}
	}
	return c.Serializer
}
