package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

func TestCompletion_PropertyNames_RequiredSortsFirst(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "number"}
		},
		"required": ["age"]
	}`))
	require.NoError(t, err)

	text := `{}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	items := Completion(doc, schema, 1)
	require.Len(t, items, 2)
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.ElementsMatch(t, []string{"name", "age"}, labels)
	for _, it := range items {
		if it.Label == "age" {
			assert.Equal(t, "0_age", it.SortText)
		} else {
			assert.Equal(t, "1_name", it.SortText)
		}
	}
}

func TestCompletion_PropertyNames_SkipsExisting(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "number"}
		}
	}`))
	require.NoError(t, err)

	text := `{"name": "x"}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	items := Completion(doc, schema, 1)
	require.Len(t, items, 1)
	assert.Equal(t, "age", items[0].Label)
}

func TestCompletion_EnumValues(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"color": {"type": "string", "enum": ["red", "green", "blue"]}
		}
	}`))
	require.NoError(t, err)

	text := `{"color": ""}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	offset := uint32(len(`{"color": "`))
	items := Completion(doc, schema, offset)
	require.Len(t, items, 3)
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.ElementsMatch(t, []string{"red", "green", "blue"}, labels)
}

func TestFindKeyAtColon(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"name": `)
	defer doc.Close()
	root := cst.RootValue(doc.Tree())
	key, ok := findKeyAtColon(root, doc.Text, uint32(len(`{"name": `)))
	require.True(t, ok)
	assert.Equal(t, "name", key)
}
