package validator

import (
	"fmt"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

func (v *Validator) evaluateArray(schema *jsonschema.Schema, node *cst.Node, src []byte) []*ValidationError {
	var errs []*ValidationError
	items := cst.ArrayItems(node)

	if schema.MinItems != nil && len(items) < *schema.MinItems {
		errs = append(errs, newError(node, "minItems", "too_few_items",
			fmt.Sprintf("Array should have at least %d items", *schema.MinItems), nil))
	}
	if schema.MaxItems != nil && len(items) > *schema.MaxItems {
		errs = append(errs, newError(node, "maxItems", "too_many_items",
			fmt.Sprintf("Array should have at most %d items", *schema.MaxItems), nil))
	}

	for i, item := range items {
		var itemSchema *jsonschema.Schema
		if i < len(schema.PrefixItems) {
			itemSchema = schema.PrefixItems[i]
		} else if schema.Items != nil {
			if schema.Items.IsBool {
				if !schema.Items.Bool {
					errs = append(errs, newError(item, "items", "additional_item_not_allowed",
						"No additional items are allowed", nil))
				}
				continue
			}
			itemSchema = schema.Items.Schema
		} else if i >= len(schema.PrefixItems) && schema.AdditionalItems != nil {
			if schema.AdditionalItems.IsBool {
				if !schema.AdditionalItems.Bool {
					errs = append(errs, newError(item, "additionalItems", "additional_item_not_allowed",
						"No additional items are allowed", nil))
				}
				continue
			}
			itemSchema = schema.AdditionalItems.Schema
		}
		if itemSchema != nil {
			errs = append(errs, v.evaluate(itemSchema, item, src)...)
		}
	}

	if schema.UniqueItems {
		seen := make([]interface{}, 0, len(items))
		for i, item := range items {
			val := nodeValue(item, src)
			for j := 0; j < i; j++ {
				if structuralEqual(val, seen[j]) {
					errs = append(errs, newError(item, "uniqueItems", "duplicate_item",
						"Array items should be unique", nil))
					break
				}
			}
			seen = append(seen, val)
		}
	}

	if schema.Contains != nil {
		count := 0
		for _, item := range items {
			if len(v.evaluate(schema.Contains, item, src)) == 0 {
				count++
			}
		}
		min := 1
		if schema.MinContains != nil {
			min = *schema.MinContains
		}
		if count < min {
			errs = append(errs, newError(node, "contains", "contains_too_few",
				fmt.Sprintf("Array should contain at least %d matching items", min), nil))
		}
		if schema.MaxContains != nil && count > *schema.MaxContains {
			errs = append(errs, newError(node, "contains", "contains_too_many",
				"Array contains too many matching items", nil))
		}
	}

	return errs
}
