package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/document"
)

func TestDocumentColors_FindsHexLiteral(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"color": "#ff0000"}`)
	defer doc.Close()

	colors := DocumentColors(doc)
	require.Len(t, colors, 1)
	assert.InDelta(t, 1.0, colors[0].Color.Red, 1e-9)
	assert.InDelta(t, 0.0, colors[0].Color.Green, 1e-9)
	assert.InDelta(t, 0.0, colors[0].Color.Blue, 1e-9)
	assert.InDelta(t, 1.0, colors[0].Color.Alpha, 1e-9)
}

func TestDocumentColors_IgnoresNonColorStrings(t *testing.T) {
	doc := document.New(uri.New("file:///test.json"), 1, `{"name": "not a color"}`)
	defer doc.Close()

	colors := DocumentColors(doc)
	assert.Empty(t, colors)
}

func TestColorPresentations_OpaqueColorHasNoAlphaSuffix(t *testing.T) {
	presentations := ColorPresentations(protocol.Color{Red: 1, Green: 0, Blue: 0, Alpha: 1})
	require.Len(t, presentations, 3)
	assert.Equal(t, "#ff0000", presentations[0].Label)
	assert.Equal(t, "rgb(255, 0, 0)", presentations[1].Label)
}
