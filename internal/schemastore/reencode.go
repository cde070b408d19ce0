package schemastore

import (
	json "github.com/goccy/go-json"
)

// reencode round-trips a decoded configuration value back to bytes so it
// can go through jsonschema.Parse's ordered decoder. Inline schema
// associations arrive already-decoded from the LSP client, so the
// patternProperties/properties order guarantee doesn't apply to them the
// way it does for schemas loaded from disk or over HTTP - editors rarely
// rely on association ordering behavior for inline schemas.
func reencode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
