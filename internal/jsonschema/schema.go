// Package jsonschema is the compiled, draft-agnostic in-memory model of a
// JSON Schema document. It mirrors the shape of the original Rust
// implementation's schema/types.rs, adapted to Go: sub-schemas are shared
// via ordinary pointers (Go's GC plays the role the Rust Arc<JsonSchema>
// reference counting did) and parsed field-by-field from a decoded
// interface{} tree produced by DecodeOrdered.
package jsonschema

// Draft identifies which JSON Schema draft a document declares, which the
// validator consults for a handful of behavioral differences (exclusive
// bounds shape, $ref sibling handling).
type Draft int

const (
	DraftUnknown Draft = iota
	Draft4
	Draft6
	Draft7
	Draft2019_09
	Draft2020_12
)

// DraftFromSchemaURI classifies a $schema URI by substring match, following
// the same tolerant approach as the reference implementation (an exact
// draft requires this to be forgiving of http vs https, trailing slashes,
// and fragment variants real-world schemas use).
func DraftFromSchemaURI(uriStr string) Draft {
	switch {
	case contains(uriStr, "draft-04") || contains(uriStr, "draft4"):
		return Draft4
	case contains(uriStr, "draft-06") || contains(uriStr, "draft6"):
		return Draft6
	case contains(uriStr, "draft-07") || contains(uriStr, "draft7"):
		return Draft7
	case contains(uriStr, "2019-09"):
		return Draft2019_09
	case contains(uriStr, "2020-12"):
		return Draft2020_12
	default:
		return Draft7
	}
}

func contains(s, sub string) bool {
	return indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// ExclusiveLimit represents the two shapes "exclusiveMinimum"/"exclusiveMaximum"
// take across drafts: a boolean modifier on minimum/maximum (draft-04) or a
// standalone number (draft-06 and later).
type ExclusiveLimit struct {
	IsBool  bool
	Bool    bool
	IsNum   bool
	Number  float64
}

// Dependency is one entry of the legacy (pre-2019-09) "dependencies" keyword,
// which is either a property-name list or a schema.
type Dependency struct {
	Properties []string
	Schema     *Schema
}

// DefaultSnippet mirrors the VS Code "defaultSnippets" extension used
// throughout schemastore.org schemas for richer completion suggestions.
// The parser does not read "defaultSnippets", so Schema.DefaultSnippets is
// always empty for parsed schemas.
type DefaultSnippet struct {
	Label       string
	Description string
	Body        interface{}
}

// PatternPropertyEntry preserves declaration order for patternProperties,
// since regex-keyed maps have no natural order and first-match-wins or
// display order both depend on it.
type PatternPropertyEntry struct {
	Pattern string
	Schema  *Schema
}

// SchemaOrBool represents a schema slot that may legally be a literal
// true/false instead of an object (e.g. additionalProperties: false).
type SchemaOrBool struct {
	// IsBool is set when the slot held a JSON boolean rather than a schema.
	IsBool bool
	Bool   bool
	Schema *Schema
}

// Schema is the compiled form of one JSON Schema node (root or nested).
// Sub-schemas referenced from multiple places (through $ref or simple
// reuse) share the same *Schema pointer; there is no copying.
type Schema struct {
	// Metadata
	ID                      string
	SchemaURI               string
	Draft                   Draft
	Title                   string
	Description             string
	MarkdownDescription     string
	Default                 interface{}
	HasDefault              bool
	Examples                []interface{}
	Deprecated              bool
	DeprecationMessage      string
	ErrorMessage            map[string]string
	PatternErrorMessage     map[string]string
	DoNotSuggest            bool
	EnumDescriptions        []string
	MarkdownEnumDescriptions []string

	// Type
	Types []string

	// Generic
	Enum      []interface{}
	HasEnum   bool
	Const     interface{}
	HasConst  bool

	// Numeric
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *ExclusiveLimit
	ExclusiveMaximum *ExclusiveLimit
	MultipleOf       *float64

	// String
	MinLength *int
	MaxLength *int
	Pattern   *string
	Format    *string

	compiledPattern interface{} // never set; the validator's RegexCache keys compiled patterns by pattern string

	// Array
	Items            *SchemaOrBool
	PrefixItems      []*Schema
	AdditionalItems  *SchemaOrBool
	MinItems         *int
	MaxItems         *int
	UniqueItems      bool
	Contains         *Schema
	MinContains      *int
	MaxContains      *int

	// Object
	Properties           map[string]*Schema
	PropertyOrder        []string
	Required             []string
	AdditionalProperties *SchemaOrBool
	PatternProperties    []PatternPropertyEntry
	PropertyNames        *Schema
	MinProperties        *int
	MaxProperties        *int
	Dependencies         map[string]Dependency
	DependentRequired    map[string][]string
	DependentSchemas     map[string]*Schema

	// Composition
	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema

	// Conditional
	If   *Schema
	Then *Schema
	Else *Schema

	// Reference
	Ref         string
	ResolvedRef *Schema

	Defs        map[string]*Schema
	Definitions map[string]*Schema

	DefaultSnippets []DefaultSnippet

	// Boolean schema: `true`/`false` used directly as a schema.
	IsBoolean    bool
	BooleanValue bool
}

// ResolvePathSegment follows one step of a JSON path (a property key or an
// array index) from s to the schema that applies at that position,
// descending through composition and conditional keywords the same way the
// original implementation's resolve_path_segment does. Returns nil if no
// schema constrains that position.
func (s *Schema) ResolvePathSegment(key string, index int, isIndex bool) *Schema {
	if s == nil {
		return nil
	}
	if s.ResolvedRef != nil {
		if found := s.ResolvedRef.ResolvePathSegment(key, index, isIndex); found != nil {
			return found
		}
	}

	if !isIndex {
		if sub, ok := s.Properties[key]; ok {
			return sub
		}
	} else {
		if index < len(s.PrefixItems) {
			return s.PrefixItems[index]
		}
		if s.Items != nil && !s.Items.IsBool {
			return s.Items.Schema
		}
	}

	for _, group := range [][]*Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for _, sub := range group {
			if found := sub.ResolvePathSegment(key, index, isIndex); found != nil {
				return found
			}
		}
	}
	if s.Then != nil {
		if found := s.Then.ResolvePathSegment(key, index, isIndex); found != nil {
			return found
		}
	}
	if s.Else != nil {
		if found := s.Else.ResolvePathSegment(key, index, isIndex); found != nil {
			return found
		}
	}
	if !isIndex && s.AdditionalProperties != nil && !s.AdditionalProperties.IsBool {
		return s.AdditionalProperties.Schema
	}
	return nil
}
