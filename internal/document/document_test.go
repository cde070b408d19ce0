package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func TestDocument_ApplyEdit_UpdatesTextAndTree(t *testing.T) {
	u := uri.New("file:///test.json")
	doc := New(u, 1, `{"count": 1}`)
	defer doc.Close()

	doc.ApplyEdit(2, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 10},
		End:   protocol.Position{Line: 0, Character: 11},
	}, "42")

	assert.Equal(t, `{"count": 42}`, string(doc.Text))
	assert.Equal(t, int32(2), doc.Version)
	require.NotNil(t, doc.Tree())
	assert.False(t, doc.Tree().RootNode().HasError())
}

func TestDocument_ApplyEdit_AcrossLines(t *testing.T) {
	u := uri.New("file:///test.json")
	doc := New(u, 1, "{\n  \"a\": 1\n}")
	defer doc.Close()

	doc.ApplyEdit(2, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 5},
	}, "\"b\"")

	assert.Equal(t, "{\n  \"b\": 1\n}", string(doc.Text))
}

func TestDocument_ReplaceFull(t *testing.T) {
	u := uri.New("file:///test.json")
	doc := New(u, 1, `{"a": 1}`)
	defer doc.Close()

	doc.ReplaceFull(5, `{"a": 1, "b": 2}`)

	assert.Equal(t, int32(5), doc.Version)
	assert.Equal(t, `{"a": 1, "b": 2}`, string(doc.Text))
}

func TestStore_OpenGetClose(t *testing.T) {
	store := NewStore()
	u := uri.New("file:///test.json")
	store.Open(u, 1, `{}`)

	doc, ok := store.Get(u)
	require.True(t, ok)
	assert.Equal(t, u, doc.URI)

	store.Close(u)
	_, ok = store.Get(u)
	assert.False(t, ok)
}
