// Package config models the workspace configuration this server accepts
// through workspace/didChangeConfiguration, under the "json" settings
// namespace.
package config

import "github.com/kaptinlin/jsonls/internal/schemastore"

// SchemaAssociation is the wire shape of one entry in the client's
// "json.schemas" array: a glob-matched file association to a URI schema,
// optionally with an inline schema object that is cached under that URI.
type SchemaAssociation struct {
	URL       string                 `json:"url"`
	URI       string                 `json:"uri"`
	FileMatch []string               `json:"fileMatch"`
	Schema    map[string]interface{} `json:"schema"`
}

// Config is the parsed "json" settings namespace.
type Config struct {
	ValidateEnable bool                `json:"-"`
	Schemas        []SchemaAssociation `json:"schemas"`
}

// DefaultConfig returns the configuration in effect before the client ever
// sends workspace/didChangeConfiguration.
func DefaultConfig() Config {
	return Config{ValidateEnable: true}
}

// ToAssociations converts the wire-level schema associations into the
// schemastore package's internal Association type.
func (c Config) ToAssociations() []schemastore.Association {
	out := make([]schemastore.Association, 0, len(c.Schemas))
	for _, s := range c.Schemas {
		uri := s.URI
		if uri == "" {
			uri = s.URL
		}
		out = append(out, schemastore.Association{
			FileMatch: s.FileMatch,
			URI:       uri,
			Inline:    s.Schema,
		})
	}
	return out
}
