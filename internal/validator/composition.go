package validator

import (
	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

func (v *Validator) evaluateComposition(schema *jsonschema.Schema, node *cst.Node, src []byte) []*ValidationError {
	var errs []*ValidationError

	for _, sub := range schema.AllOf {
		errs = append(errs, v.evaluate(sub, node, src)...)
	}

	if len(schema.AnyOf) > 0 {
		anyValid := false
		for _, sub := range schema.AnyOf {
			if len(v.evaluate(sub, node, src)) == 0 {
				anyValid = true
				break
			}
		}
		if !anyValid {
			errs = append(errs, newError(node, "anyOf", "no_schema_matched",
				"Value does not match any schema in anyOf", nil))
		}
	}

	if len(schema.OneOf) > 0 {
		matches := 0
		for _, sub := range schema.OneOf {
			if len(v.evaluate(sub, node, src)) == 0 {
				matches++
			}
		}
		switch {
		case matches == 0:
			errs = append(errs, newError(node, "oneOf", "no_schema_matched",
				"Value does not match any schema in oneOf", nil))
		case matches > 1:
			errs = append(errs, newError(node, "oneOf", "multiple_schemas_matched",
				"Value matches more than one schema in oneOf", nil))
		}
	}

	if schema.Not != nil {
		if len(v.evaluate(schema.Not, node, src)) == 0 {
			errs = append(errs, newError(node, "not", "must_not_match",
				"Value should not match the schema in not", nil))
		}
	}

	return errs
}

func (v *Validator) evaluateConditional(schema *jsonschema.Schema, node *cst.Node, src []byte) []*ValidationError {
	if schema.If == nil {
		return nil
	}
	if len(v.evaluate(schema.If, node, src)) == 0 {
		if schema.Then != nil {
			return v.evaluate(schema.Then, node, src)
		}
	} else if schema.Else != nil {
		return v.evaluate(schema.Else, node, src)
	}
	return nil
}
