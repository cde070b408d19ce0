package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicObjectSchema(t *testing.T) {
	data := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer", "minimum": 0}
		},
		"required": ["name"],
		"patternProperties": {
			"^x-": {"type": "string"},
			"^y-": {"type": "number"}
		}
	}`)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"object"}, s.Types)
	assert.Contains(t, s.Required, "name")
	require.NotNil(t, s.Properties["age"])
	assert.Equal(t, float64(0), *s.Properties["age"].Minimum)

	// patternProperties must preserve declaration order.
	require.Len(t, s.PatternProperties, 2)
	assert.Equal(t, "^x-", s.PatternProperties[0].Pattern)
	assert.Equal(t, "^y-", s.PatternProperties[1].Pattern)
}

func TestParse_BooleanSchema(t *testing.T) {
	s, err := Parse([]byte(`true`))
	require.NoError(t, err)
	assert.True(t, s.IsBoolean)
	assert.True(t, s.BooleanValue)
}

func TestParse_LocalDefsRef(t *testing.T) {
	data := []byte(`{
		"$defs": {
			"name": {"type": "string", "minLength": 1}
		},
		"properties": {
			"first": {"$ref": "#/$defs/name"}
		}
	}`)
	s, err := Parse(data)
	require.NoError(t, err)
	ref := s.Properties["first"]
	require.NotNil(t, ref.ResolvedRef)
	assert.Equal(t, []string{"string"}, ref.ResolvedRef.Types)
}

func TestResolvePathSegment_PropertiesAndArray(t *testing.T) {
	data := []byte(`{
		"type": "object",
		"properties": {
			"items": {
				"type": "array",
				"prefixItems": [{"type": "string"}],
				"items": {"type": "number"}
			}
		}
	}`)
	s, err := Parse(data)
	require.NoError(t, err)

	itemsSchema := s.ResolvePathSegment("items", 0, false)
	require.NotNil(t, itemsSchema)

	first := itemsSchema.ResolvePathSegment("", 0, true)
	require.NotNil(t, first)
	assert.Equal(t, []string{"string"}, first.Types)

	second := itemsSchema.ResolvePathSegment("", 1, true)
	require.NotNil(t, second)
	assert.Equal(t, []string{"number"}, second.Types)
}

func TestResolvePathSegment_AllOfDescends(t *testing.T) {
	data := []byte(`{
		"allOf": [
			{"properties": {"a": {"type": "string"}}}
		]
	}`)
	s, err := Parse(data)
	require.NoError(t, err)
	a := s.ResolvePathSegment("a", 0, false)
	require.NotNil(t, a)
	assert.Equal(t, []string{"string"}, a.Types)
}
