package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
)

func TestDocumentSymbols_FlatObject(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"name": "widget", "count": 3}`)
	defer doc.Close()

	symbols := DocumentSymbols(doc)
	require.Len(t, symbols, 2)
	assert.Equal(t, "name", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindString, symbols[0].Kind)
	assert.Equal(t, "count", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindNumber, symbols[1].Kind)
}

func TestDocumentSymbols_NestedObjectHasChildren(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"a": {"b": 1}}`)
	defer doc.Close()

	symbols := DocumentSymbols(doc)
	require.Len(t, symbols, 1)
	assert.Equal(t, "a", symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, "b", symbols[0].Children[0].Name)
}

func TestDocumentSymbols_ArrayItemsNamedByIndex(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"items": [1, 2, 3]}`)
	defer doc.Close()

	symbols := DocumentSymbols(doc)
	require.Len(t, symbols, 1)
	require.Len(t, symbols[0].Children, 3)
	assert.Equal(t, "[0]", symbols[0].Children[0].Name)
	assert.Equal(t, "[2]", symbols[0].Children[2].Name)
}
