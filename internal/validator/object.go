package validator

import (
	"fmt"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

func (v *Validator) evaluateObject(schema *jsonschema.Schema, node *cst.Node, src []byte) []*ValidationError {
	var errs []*ValidationError
	pairs := cst.ObjectPairs(node)

	present := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		if key, ok := cst.PairKey(pair, src); ok {
			present[key] = true
		}
	}

	if schema.MinProperties != nil && len(pairs) < *schema.MinProperties {
		errs = append(errs, newError(node, "minProperties", "too_few_properties",
			fmt.Sprintf("Object should have at least %d properties", *schema.MinProperties), nil))
	}
	if schema.MaxProperties != nil && len(pairs) > *schema.MaxProperties {
		errs = append(errs, newError(node, "maxProperties", "too_many_properties",
			fmt.Sprintf("Object should have at most %d properties", *schema.MaxProperties), nil))
	}
	for _, req := range schema.Required {
		if !present[req] {
			errs = append(errs, newError(node, "required", "missing_required_property",
				fmt.Sprintf("Missing required property %q", req),
				map[string]interface{}{"property": req}))
		}
	}

	for _, pair := range pairs {
		key, ok := cst.PairKey(pair, src)
		if !ok {
			continue
		}
		valueNode := cst.PairValue(pair)
		if valueNode == nil {
			continue
		}

		if schema.PropertyNames != nil {
			errs = append(errs, v.evaluatePropertyName(schema.PropertyNames, pair, key, src)...)
		}

		matched := false
		if propSchema, ok := schema.Properties[key]; ok {
			matched = true
			errs = append(errs, v.evaluate(propSchema, valueNode, src)...)
		}
		for _, entry := range schema.PatternProperties {
			if ok, _ := v.Regex.Matches(entry.Pattern, key); ok {
				matched = true
				errs = append(errs, v.evaluate(entry.Schema, valueNode, src)...)
			}
		}
		if !matched && schema.AdditionalProperties != nil {
			if schema.AdditionalProperties.IsBool {
				if !schema.AdditionalProperties.Bool {
					errs = append(errs, newError(pair, "additionalProperties", "additional_property_not_allowed",
						fmt.Sprintf("Property %q is not allowed", key),
						map[string]interface{}{"property": key}))
				}
			} else {
				errs = append(errs, v.evaluate(schema.AdditionalProperties.Schema, valueNode, src)...)
			}
		}

		if requiredBy, ok := schema.DependentRequired[key]; ok {
			for _, dep := range requiredBy {
				if !present[dep] {
					errs = append(errs, newError(node, "dependentRequired", "missing_dependent_property",
						fmt.Sprintf("Property %q requires property %q", key, dep), nil))
				}
			}
		}
		if depSchema, ok := schema.DependentSchemas[key]; ok {
			errs = append(errs, v.evaluate(depSchema, node, src)...)
		}
		if dep, ok := schema.Dependencies[key]; ok {
			if dep.Schema != nil {
				errs = append(errs, v.evaluate(dep.Schema, node, src)...)
			}
			for _, p := range dep.Properties {
				if !present[p] {
					errs = append(errs, newError(node, "dependencies", "missing_dependent_property",
						fmt.Sprintf("Property %q requires property %q", key, p), nil))
				}
			}
		}
	}

	return errs
}

// evaluatePropertyName validates a property's key string against
// propertyNames. The pair's key is itself a string CST node, so it is run
// through evaluate directly and any error lands on the key node.
func (v *Validator) evaluatePropertyName(nameSchema *jsonschema.Schema, pair *cst.Node, key string, src []byte) []*ValidationError {
	keyNode := pair.ChildByFieldName("key")
	if keyNode == nil {
		return nil
	}
	return v.evaluate(nameSchema, keyNode, src)
}
