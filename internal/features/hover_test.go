package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

func TestHover_ShowsDescriptionAndType(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "The item's name."}
		}
	}`))
	require.NoError(t, err)

	text := `{"name": "widget"}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	offset := uint32(len(`{"name": "wid`))
	hover := Hover(doc, schema, offset)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.Value, "The item's name.")
	assert.Contains(t, hover.Contents.Value, "string")
}

func TestHover_NilWhenNoSchemaAndNoValue(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{"type": "object"}`))
	require.NoError(t, err)

	text := `{"a": {}}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	offset := uint32(len(`{"a": {`))
	hover := Hover(doc, schema, offset)
	assert.Nil(t, hover)
}

func TestHover_ShowsEnumValues(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"level": {"type": "string", "enum": ["low", "high"]}
		}
	}`))
	require.NoError(t, err)

	text := `{"level": "low"}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	offset := uint32(len(`{"level": "l`))
	hover := Hover(doc, schema, offset)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents.Value, "low")
	assert.Contains(t, hover.Contents.Value, "high")
}
