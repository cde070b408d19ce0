package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
)

func TestSelectionRanges_BuildsNestedChain(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"a": {"b": 1}}`)
	defer doc.Close()

	offset := uint32(len(`{"a": {"b": `))
	_, char := doc.LineIndex().PositionOf(doc.Text, offset)
	ranges := SelectionRanges(doc, []protocol.Position{{Line: 0, Character: uint32(char)}})
	require.Len(t, ranges, 1)

	chain := ranges[0]
	require.NotNil(t, chain)
	depth := 0
	for r := chain; r != nil; r = r.Parent {
		depth++
	}
	assert.GreaterOrEqual(t, depth, 3)
}
