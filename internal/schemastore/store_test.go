package schemastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoneWhenNoAssociationOrInline(t *testing.T) {
	s := NewStore()
	lookup := s.Resolve("/tmp/foo.json", "")
	assert.Equal(t, LookupNone, lookup.State)
}

func TestResolve_InlineWinsOverAssociation(t *testing.T) {
	s := NewStore()
	s.SetAssociations([]Association{
		{FileMatch: []string{"**/*.json"}, URI: "https://example.com/associated.json",
			Inline: map[string]interface{}{"type": "object"}},
	})
	lookup := s.Resolve("/tmp/foo.json", "https://example.com/inline.json")
	assert.Equal(t, LookupNeedsFetch, lookup.State)
	assert.Equal(t, "https://example.com/inline.json", lookup.FetchURI)
}

func TestResolve_AssociationResolvedFromInlineCache(t *testing.T) {
	s := NewStore()
	s.SetAssociations([]Association{
		{FileMatch: []string{"**/*.json"}, URI: "builtin://object",
			Inline: map[string]interface{}{"type": "object"}},
	})
	lookup := s.Resolve("/tmp/foo.json", "")
	require.Equal(t, LookupResolved, lookup.State)
	require.NotNil(t, lookup.Schema)
	assert.Equal(t, []string{"object"}, lookup.Schema.Types)
}

func TestPutCompiled_FirstWriteWins(t *testing.T) {
	s := NewStore()
	first, _ := compileInline(map[string]interface{}{"type": "string"})
	second, _ := compileInline(map[string]interface{}{"type": "number"})
	s.PutCompiled("uri://x", first)
	s.PutCompiled("uri://x", second)
	lookup := s.Resolve("/whatever", "uri://x")
	require.Equal(t, LookupResolved, lookup.State)
	assert.Equal(t, []string{"string"}, lookup.Schema.Types)
}
