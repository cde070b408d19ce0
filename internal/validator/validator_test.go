package validator

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	sitterjson "github.com/smacker/go-tree-sitter/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

func parse(t *testing.T, text string) *sitter.Tree {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(sitterjson.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(text))
	require.NoError(t, err)
	return tree
}

func codesOf(errs []*ValidationError) []string {
	var codes []string
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestValidate_TypeMismatch(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{"type": "string"}`))
	require.NoError(t, err)
	tree := parse(t, `42`)
	v := New(nil)
	errs := v.Validate(schema, tree, []byte(`42`))
	require.Len(t, errs, 1)
	assert.Equal(t, "type_mismatch", errs[0].Code)
}

func TestValidate_RequiredProperty(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"required": ["name"]
	}`))
	require.NoError(t, err)
	src := []byte(`{"age": 5}`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "missing_required_property", errs[0].Code)
}

func TestValidate_PatternMismatch(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{"type": "string", "pattern": "^[a-z]+$"}`))
	require.NoError(t, err)
	src := []byte(`"ABC"`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "pattern_mismatch", errs[0].Code)
}

func TestValidate_NestedObjectRange(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"type": "object",
		"properties": {"n": {"type": "number", "minimum": 10}}
	}`))
	require.NoError(t, err)
	src := []byte(`{"n": 1}`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "value_below_minimum", errs[0].Code)
	assert.True(t, errs[0].StartByte < errs[0].EndByte)
	assert.Equal(t, "1", string(src[errs[0].StartByte:errs[0].EndByte]))
}

func TestValidate_AllOfAccumulates(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"allOf": [
			{"type": "string"},
			{"minLength": 5}
		]
	}`))
	require.NoError(t, err)
	src := []byte(`"hi"`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "string_too_short", errs[0].Code)
}

func TestValidate_UniqueItems(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{"type": "array", "uniqueItems": true}`))
	require.NoError(t, err)
	src := []byte(`[1, 2, 1]`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "duplicate_item", errs[0].Code)
}

func TestValidate_TypeMismatchSuppressesOtherKeywordErrors(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{"type": "string", "enum": ["a", "b"]}`))
	require.NoError(t, err)
	src := []byte(`42`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "type_mismatch", errs[0].Code)
}

func TestValidate_RefSiblingsIgnoredPreDraft2019(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"$defs": {"Foo": {"type": "string"}},
		"$ref": "#/$defs/Foo",
		"type": "number"
	}`))
	require.NoError(t, err)
	src := []byte(`"hello"`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	assert.Empty(t, errs)
}

func TestValidate_RefSiblingsMergedIn2019_09(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$defs": {"Foo": {"type": "string"}},
		"$ref": "#/$defs/Foo",
		"minLength": 10
	}`))
	require.NoError(t, err)
	src := []byte(`"hi"`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	require.Len(t, errs, 1)
	assert.Equal(t, "string_too_short", errs[0].Code)
}

func TestValidate_InvalidPatternSkipsKeywordWithoutDiagnostic(t *testing.T) {
	schema, err := jsonschema.Parse([]byte(`{"type": "string", "pattern": "("}`))
	require.NoError(t, err)
	src := []byte(`"anything"`)
	tree := parse(t, string(src))
	v := New(nil)
	errs := v.Validate(schema, tree, src)
	assert.Empty(t, errs)
}
