package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
)

func TestDocumentLinks_FindsRefAndHTTPURL(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"$ref": "#/definitions/Foo", "site": "https://example.com"}`)
	defer doc.Close()

	links := DocumentLinks(doc)
	require.Len(t, links, 2)
	assert.Equal(t, "Go to definition", links[0].Tooltip)
	assert.Empty(t, links[0].Target)
	assert.Contains(t, string(links[1].Target), "example.com")
}

func TestDocumentLinks_IgnoresPlainStrings(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"name": "not a link"}`)
	defer doc.Close()

	links := DocumentLinks(doc)
	assert.Empty(t, links)
}

func TestDefinition_ResolvesInternalRef(t *testing.T) {
	text := `{"definitions": {"Foo": {"type": "string"}}, "$ref": "#/definitions/Foo"}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	offset := uint32(len(`{"definitions": {"Foo": {"type": "string"}}, "$ref": "#/defin`))
	loc := Definition(doc, offset)
	require.NotNil(t, loc)
	assert.Equal(t, doc.URI, loc.URI)
}

func TestDefinition_NilForExternalRef(t *testing.T) {
	text := `{"$ref": "other.json#/Foo"}`
	doc := document.New(uri.New("file:///test.json"), 1, text)
	defer doc.Close()

	offset := uint32(len(`{"$ref": "oth`))
	loc := Definition(doc, offset)
	assert.Nil(t, loc)
}
