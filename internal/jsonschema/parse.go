package jsonschema

// ParseValue compiles a decoded JSON value (as produced by DecodeOrdered)
// into a Schema tree. It mirrors parse_schema_object/from_value
// field-by-field, resolving $ref against defs/definitions already seen in
// the same document (forward refs within a single file resolve via a
// second pass, same as the compiler's unresolved-reference tracking).
func ParseValue(v interface{}) (*Schema, error) {
	root, forward := parseNode(v, nil, Draft7)
	resolveForwardRefs(root, forward)
	return root, nil
}

// Parse decodes raw schema bytes and compiles them, preserving object key
// order throughout (needed for patternProperties first-match-wins order and
// for completion ordering).
func Parse(data []byte) (*Schema, error) {
	v, err := DecodeOrdered(data)
	if err != nil {
		return nil, err
	}
	return ParseValue(v)
}

type forwardRef struct {
	holder *Schema
	path   string
}

func parseNode(v interface{}, defsScope map[string]*Schema, inheritedDraft Draft) (*Schema, []forwardRef) {
	switch t := v.(type) {
	case bool:
		return &Schema{IsBoolean: true, BooleanValue: t}, nil
	case *OMap:
		return parseSchemaObject(t, defsScope, inheritedDraft)
	case nil:
		return &Schema{IsBoolean: true, BooleanValue: true}, nil
	default:
		return &Schema{IsBoolean: true, BooleanValue: true}, nil
	}
}

func parseSchemaObject(m *OMap, parentDefs map[string]*Schema, inheritedDraft Draft) (*Schema, []forwardRef) {
	s := &Schema{Properties: map[string]*Schema{}}
	var forwards []forwardRef

	s.ID = strField(m, "$id", "id")
	s.SchemaURI = strField(m, "$schema")
	if s.SchemaURI != "" {
		s.Draft = DraftFromSchemaURI(s.SchemaURI)
	} else {
		s.Draft = inheritedDraft
	}
	draft := s.Draft
	s.Title = strField(m, "title")
	s.Description = strField(m, "description")
	s.MarkdownDescription = strField(m, "markdownDescription")
	if def, ok := m.Get("default"); ok {
		s.Default = def
		s.HasDefault = true
	}
	s.Examples = anyArrayField(m, "examples")
	s.Deprecated = boolField(m, "deprecated")
	s.DeprecationMessage = strField(m, "deprecationMessage")
	s.DoNotSuggest = boolField(m, "doNotSuggest")
	s.EnumDescriptions = strArrayField(m, "enumDescriptions")
	s.MarkdownEnumDescriptions = strArrayField(m, "markdownEnumDescriptions")

	typeVal, _ := m.Get("type")
	s.Types = parseSchemaType(typeVal)

	if enumVal, ok := m.Get("enum"); ok {
		if arr, ok := enumVal.([]interface{}); ok {
			s.Enum = arr
			s.HasEnum = true
		}
	}
	if c, ok := m.Get("const"); ok {
		s.Const = c
		s.HasConst = true
	}

	s.Minimum = numField(m, "minimum")
	s.Maximum = numField(m, "maximum")
	s.MultipleOf = numField(m, "multipleOf")
	exMin, _ := m.Get("exclusiveMinimum")
	exMax, _ := m.Get("exclusiveMaximum")
	s.ExclusiveMinimum = parseExclusiveLimit(exMin)
	s.ExclusiveMaximum = parseExclusiveLimit(exMax)

	s.MinLength = intField(m, "minLength")
	s.MaxLength = intField(m, "maxLength")
	if p, ok := m.Get("pattern"); ok {
		if ps, ok := p.(string); ok {
			s.Pattern = &ps
		}
	}
	if f, ok := m.Get("format"); ok {
		if fs, ok := f.(string); ok {
			s.Format = &fs
		}
	}

	s.MinItems = intField(m, "minItems")
	s.MaxItems = intField(m, "maxItems")
	s.UniqueItems = boolField(m, "uniqueItems")
	s.MinContains = intField(m, "minContains")
	s.MaxContains = intField(m, "maxContains")

	if items, ok := m.Get("items"); ok {
		if arr, ok := items.([]interface{}); ok {
			// Draft-04/06/07 tuple-typed "items" array maps onto prefixItems semantics.
			for _, it := range arr {
				sub, fw := parseNode(it, parentDefs, draft)
				s.PrefixItems = append(s.PrefixItems, sub)
				forwards = append(forwards, fw...)
			}
		} else {
			sb, fw := parseSchemaOrBool(items, parentDefs, draft)
			s.Items = sb
			forwards = append(forwards, fw...)
		}
	}
	if pfxVal, ok := m.Get("prefixItems"); ok {
		if pfx, ok := pfxVal.([]interface{}); ok {
			for _, it := range pfx {
				sub, fw := parseNode(it, parentDefs, draft)
				s.PrefixItems = append(s.PrefixItems, sub)
				forwards = append(forwards, fw...)
			}
		}
	}
	if ai, ok := m.Get("additionalItems"); ok {
		sb, fw := parseSchemaOrBool(ai, parentDefs, draft)
		s.AdditionalItems = sb
		forwards = append(forwards, fw...)
	}
	if c, ok := m.Get("contains"); ok {
		sub, fw := parseNode(c, parentDefs, draft)
		s.Contains = sub
		forwards = append(forwards, fw...)
	}

	s.MinProperties = intField(m, "minProperties")
	s.MaxProperties = intField(m, "maxProperties")
	s.Required = strArrayField(m, "required")

	if propsVal, ok := m.Get("properties"); ok {
		if props, ok := propsVal.(*OMap); ok {
			for _, key := range props.Keys() {
				val, _ := props.Get(key)
				sub, fw := parseNode(val, parentDefs, draft)
				s.Properties[key] = sub
				s.PropertyOrder = append(s.PropertyOrder, key)
				forwards = append(forwards, fw...)
			}
		}
	}
	if ppVal, ok := m.Get("patternProperties"); ok {
		if pp, ok := ppVal.(*OMap); ok {
			for _, pattern := range pp.Keys() {
				val, _ := pp.Get(pattern)
				sub, fw := parseNode(val, parentDefs, draft)
				s.PatternProperties = append(s.PatternProperties, PatternPropertyEntry{Pattern: pattern, Schema: sub})
				forwards = append(forwards, fw...)
			}
		}
	}
	if ap, ok := m.Get("additionalProperties"); ok {
		sb, fw := parseSchemaOrBool(ap, parentDefs, draft)
		s.AdditionalProperties = sb
		forwards = append(forwards, fw...)
	}
	if pn, ok := m.Get("propertyNames"); ok {
		sub, fw := parseNode(pn, parentDefs, draft)
		s.PropertyNames = sub
		forwards = append(forwards, fw...)
	}
	if depsVal, ok := m.Get("dependencies"); ok {
		if deps, ok := depsVal.(*OMap); ok {
			s.Dependencies = map[string]Dependency{}
			for _, key := range deps.Keys() {
				val, _ := deps.Get(key)
				switch dv := val.(type) {
				case []interface{}:
					var props []string
					for _, p := range dv {
						if ps, ok := p.(string); ok {
							props = append(props, ps)
						}
					}
					s.Dependencies[key] = Dependency{Properties: props}
				default:
					sub, fw := parseNode(val, parentDefs, draft)
					s.Dependencies[key] = Dependency{Schema: sub}
					forwards = append(forwards, fw...)
				}
			}
		}
	}
	if drVal, ok := m.Get("dependentRequired"); ok {
		if dr, ok := drVal.(*OMap); ok {
			s.DependentRequired = map[string][]string{}
			for _, key := range dr.Keys() {
				val, _ := dr.Get(key)
				if arr, ok := val.([]interface{}); ok {
					var props []string
					for _, p := range arr {
						if ps, ok := p.(string); ok {
							props = append(props, ps)
						}
					}
					s.DependentRequired[key] = props
				}
			}
		}
	}
	if dsVal, ok := m.Get("dependentSchemas"); ok {
		if ds, ok := dsVal.(*OMap); ok {
			s.DependentSchemas = map[string]*Schema{}
			for _, key := range ds.Keys() {
				val, _ := ds.Get(key)
				sub, fw := parseNode(val, parentDefs, draft)
				s.DependentSchemas[key] = sub
				forwards = append(forwards, fw...)
			}
		}
	}

	for _, kw := range []struct {
		name string
		dst  *[]*Schema
	}{
		{"allOf", &s.AllOf}, {"anyOf", &s.AnyOf}, {"oneOf", &s.OneOf},
	} {
		if arrVal, ok := m.Get(kw.name); ok {
			if arr, ok := arrVal.([]interface{}); ok {
				for _, it := range arr {
					sub, fw := parseNode(it, parentDefs, draft)
					*kw.dst = append(*kw.dst, sub)
					forwards = append(forwards, fw...)
				}
			}
		}
	}
	if not, ok := m.Get("not"); ok {
		sub, fw := parseNode(not, parentDefs, draft)
		s.Not = sub
		forwards = append(forwards, fw...)
	}
	if ifv, ok := m.Get("if"); ok {
		sub, fw := parseNode(ifv, parentDefs, draft)
		s.If = sub
		forwards = append(forwards, fw...)
	}
	if thenv, ok := m.Get("then"); ok {
		sub, fw := parseNode(thenv, parentDefs, draft)
		s.Then = sub
		forwards = append(forwards, fw...)
	}
	if elsev, ok := m.Get("else"); ok {
		sub, fw := parseNode(elsev, parentDefs, draft)
		s.Else = sub
		forwards = append(forwards, fw...)
	}

	defsScope := map[string]*Schema{}
	for k, v := range parentDefs {
		defsScope[k] = v
	}
	for _, defsKey := range []string{"$defs", "definitions"} {
		if defsVal, ok := m.Get(defsKey); ok {
			if defs, ok := defsVal.(*OMap); ok {
				target := map[string]*Schema{}
				for _, key := range defs.Keys() {
					val, _ := defs.Get(key)
					sub, fw := parseNode(val, nil, draft)
					target[key] = sub
					defsScope[key] = sub
					forwards = append(forwards, fw...)
				}
				if defsKey == "$defs" {
					s.Defs = target
				} else {
					s.Definitions = target
				}
			}
		}
	}

	if refVal, ok := m.Get("$ref"); ok {
		if ref, ok := refVal.(string); ok {
			s.Ref = ref
			if local, ok := resolveLocalDefRef(ref, defsScope); ok {
				s.ResolvedRef = local
			} else {
				forwards = append(forwards, forwardRef{holder: s, path: ref})
			}
		}
	}

	return s, forwards
}

func parseExclusiveLimit(v interface{}) *ExclusiveLimit {
	switch t := v.(type) {
	case bool:
		return &ExclusiveLimit{IsBool: true, Bool: t}
	case float64:
		return &ExclusiveLimit{IsNum: true, Number: t}
	default:
		return nil
	}
}

func parseSchemaOrBool(v interface{}, defsScope map[string]*Schema, inheritedDraft Draft) (*SchemaOrBool, []forwardRef) {
	if b, ok := v.(bool); ok {
		return &SchemaOrBool{IsBool: true, Bool: b}, nil
	}
	sub, fw := parseNode(v, defsScope, inheritedDraft)
	return &SchemaOrBool{Schema: sub}, fw
}

func parseSchemaType(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		var out []string
		for _, it := range t {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// resolveLocalDefRef resolves a "#/$defs/Name" or "#/definitions/Name"
// style pointer against defs already parsed earlier in the same document.
// Anything else is recorded as a forward reference for resolveForwardRefs,
// which resolves "#" and simple defs pointers against the root's defs once
// the whole tree is built; external URIs and deeper pointers stay
// unresolved.
func resolveLocalDefRef(ref string, defsScope map[string]*Schema) (*Schema, bool) {
	name, ok := simpleDefsPointer(ref)
	if !ok {
		return nil, false
	}
	sub, ok := defsScope[name]
	return sub, ok
}

func simpleDefsPointer(ref string) (string, bool) {
	const defsPrefix = "#/$defs/"
	const definitionsPrefix = "#/definitions/"
	if len(ref) > len(defsPrefix) && ref[:len(defsPrefix)] == defsPrefix {
		return ref[len(defsPrefix):], true
	}
	if len(ref) > len(definitionsPrefix) && ref[:len(definitionsPrefix)] == definitionsPrefix {
		return ref[len(definitionsPrefix):], true
	}
	return "", false
}

func resolveForwardRefs(root *Schema, forwards []forwardRef) {
	// A second pass lets $ref pointers that referenced defs appearing
	// later in the document (or the document itself, "#") resolve once the
	// full tree is built.
	index := map[string]*Schema{}
	indexDefs(root, index)
	for _, f := range forwards {
		if f.path == "#" {
			f.holder.ResolvedRef = root
			continue
		}
		if name, ok := simpleDefsPointer(f.path); ok {
			if sub, ok := index[name]; ok {
				f.holder.ResolvedRef = sub
			}
		}
	}
}

func indexDefs(s *Schema, index map[string]*Schema) {
	if s == nil {
		return
	}
	for name, sub := range s.Defs {
		index[name] = sub
	}
	for name, sub := range s.Definitions {
		index[name] = sub
	}
}

func strField(m *OMap, names ...string) string {
	for _, name := range names {
		if v, ok := m.Get(name); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func boolField(m *OMap, name string) bool {
	v, _ := m.Get(name)
	b, _ := v.(bool)
	return b
}

func numField(m *OMap, name string) *float64 {
	v, ok := m.Get(name)
	if !ok {
		return nil
	}
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func intField(m *OMap, name string) *int {
	v, ok := m.Get(name)
	if !ok {
		return nil
	}
	if f, ok := v.(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func strArrayField(m *OMap, name string) []string {
	v, ok := m.Get(name)
	if !ok {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func anyArrayField(m *OMap, name string) []interface{} {
	v, ok := m.Get(name)
	if !ok {
		return nil
	}
	arr, _ := v.([]interface{})
	return arr
}
