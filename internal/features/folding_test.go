package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
)

func TestFoldingRanges_MultiLineObjectFolds(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, "{\n  \"a\": 1\n}")
	defer doc.Close()

	ranges := FoldingRanges(doc)
	require.Len(t, ranges, 1)
	assert.Equal(t, uint32(0), ranges[0].StartLine)
	assert.Equal(t, uint32(2), ranges[0].EndLine)
}

func TestFoldingRanges_SingleLineObjectDoesNotFold(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"a": 1}`)
	defer doc.Close()

	ranges := FoldingRanges(doc)
	assert.Empty(t, ranges)
}

func TestFoldingRanges_NestedArrayFoldsIndependently(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, "{\n  \"a\": [\n    1,\n    2\n  ]\n}")
	defer doc.Close()

	ranges := FoldingRanges(doc)
	require.Len(t, ranges, 2)
}
