package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
)

func TestFormatDocument_ReindentsWithSpaces(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"a":1,"b":[1,2]}`)
	defer doc.Close()

	edits := FormatDocument(doc, protocol.FormattingOptions{TabSize: 2, InsertSpaces: true}, true)
	require.Len(t, edits, 1)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    1,\n    2\n  ]\n}\n", edits[0].NewText)
}

func TestFormatDocument_NoopOnSyntaxError(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"a":`)
	defer doc.Close()

	edits := FormatDocument(doc, protocol.FormattingOptions{TabSize: 2, InsertSpaces: true}, true)
	assert.Nil(t, edits)
}

func TestFormatDocument_NoopWhenAlreadyFormatted(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, "{\n  \"a\": 1\n}\n")
	defer doc.Close()

	edits := FormatDocument(doc, protocol.FormattingOptions{TabSize: 2, InsertSpaces: true}, true)
	assert.Nil(t, edits)
}

func TestSortDocument_SortsKeysAlphabetically(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, "{\n  \"b\": 1,\n  \"a\": 2\n}\n")
	defer doc.Close()

	edits := SortDocument(doc)
	require.Len(t, edits, 1)
	assert.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}\n", edits[0].NewText)
}

func TestSortDocument_NoopWhenAlreadySorted(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, "{\n  \"a\": 1,\n  \"b\": 2\n}\n")
	defer doc.Close()

	edits := SortDocument(doc)
	assert.Nil(t, edits)
}
