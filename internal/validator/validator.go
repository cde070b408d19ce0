package validator

import (
	"fmt"
	"math"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

// Validator walks a CST alongside a compiled schema and collects
// ValidationErrors. It owns the process-wide regex cache; one Validator is
// shared across every validation call the server makes.
type Validator struct {
	Regex *RegexCache
	log   *zap.Logger
}

func New(log *zap.Logger) *Validator {
	return &Validator{Regex: NewRegexCache(), log: log}
}

// Validate validates the document's root value against schema, returning
// every violation found. A boolean-false schema at the root rejects
// everything, while a nil schema yields no errors; a nil document root (empty/whitespace-only document) yields
// no errors, since diagnostics.go already reports syntax errors for that
// case separately.
func (v *Validator) Validate(schema *jsonschema.Schema, tree *sitter.Tree, src []byte) []*ValidationError {
	root := cst.RootValue(tree)
	if root == nil {
		return nil
	}
	return v.evaluate(schema, root, src)
}

func (v *Validator) evaluate(schema *jsonschema.Schema, node *cst.Node, src []byte) []*ValidationError {
	if schema == nil {
		return nil
	}
	if schema.IsBoolean {
		if schema.BooleanValue {
			return nil
		}
		return []*ValidationError{newError(node, "false_schema", "schema_false", "No value is allowed here", nil)}
	}

	var errs []*ValidationError

	if schema.ResolvedRef != nil {
		errs = append(errs, v.evaluate(schema.ResolvedRef, node, src)...)
		// Drafts <= 7 ignore any keyword sibling to $ref; only 2019-09+
		// merge the two. evaluate's own draft (inherited from the nearest
		// enclosing $schema) decides which applies at this node.
		if schema.Draft < jsonschema.Draft2019_09 {
			return errs
		}
	}

	if e := v.evaluateType(schema, node, src); e != nil {
		return append(errs, e)
	}
	if e := v.evaluateEnum(schema, node, src); e != nil {
		errs = append(errs, e)
	}
	if e := v.evaluateConst(schema, node, src); e != nil {
		errs = append(errs, e)
	}

	if cst.Kind(node) == cst.KindNumber {
		if num, ok := parseNumber(node, src); ok {
			errs = append(errs, v.evaluateNumeric(schema, node, num)...)
		}
	}
	if cst.Kind(node) == cst.KindString {
		if s, ok := cst.StringContent(node, src); ok {
			errs = append(errs, v.evaluateString(schema, node, s)...)
		}
	}
	if cst.Kind(node) == cst.KindArray {
		errs = append(errs, v.evaluateArray(schema, node, src)...)
	}
	if cst.Kind(node) == cst.KindObject {
		errs = append(errs, v.evaluateObject(schema, node, src)...)
	}

	errs = append(errs, v.evaluateComposition(schema, node, src)...)
	errs = append(errs, v.evaluateConditional(schema, node, src)...)

	return errs
}

func parseNumber(node *cst.Node, src []byte) (float64, bool) {
	text := cst.Text(node, src)
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isInteger(f float64) bool {
	return f == math.Trunc(f)
}

// kindMatchesType reports whether a CST node's kind satisfies a JSON
// Schema "type" name.
func kindMatchesType(node *cst.Node, src []byte, typeName string) bool {
	switch typeName {
	case "object":
		return cst.Kind(node) == cst.KindObject
	case "array":
		return cst.Kind(node) == cst.KindArray
	case "string":
		return cst.Kind(node) == cst.KindString
	case "boolean":
		return cst.Kind(node) == cst.KindTrue || cst.Kind(node) == cst.KindFalse
	case "null":
		return cst.Kind(node) == cst.KindNull
	case "number":
		return cst.Kind(node) == cst.KindNumber
	case "integer":
		if cst.Kind(node) != cst.KindNumber {
			return false
		}
		f, ok := parseNumber(node, src)
		return ok && isInteger(f)
	default:
		return false
	}
}

func (v *Validator) evaluateType(schema *jsonschema.Schema, node *cst.Node, src []byte) *ValidationError {
	if len(schema.Types) == 0 {
		return nil
	}
	for _, t := range schema.Types {
		if kindMatchesType(node, src, t) {
			return nil
		}
	}
	return newError(node, "type", "type_mismatch",
		fmt.Sprintf("Value should be %s", joinTypes(schema.Types)),
		map[string]interface{}{"expected": schema.Types})
}

func joinTypes(types []string) string {
	if len(types) == 1 {
		return types[0]
	}
	out := "one of "
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

func (v *Validator) evaluateEnum(schema *jsonschema.Schema, node *cst.Node, src []byte) *ValidationError {
	if !schema.HasEnum {
		return nil
	}
	val := nodeValue(node, src)
	for _, candidate := range schema.Enum {
		if structuralEqual(val, candidate) {
			return nil
		}
	}
	return newError(node, "enum", "enum_mismatch", "Value does not match any allowed value in enum",
		map[string]interface{}{"allowed": schema.Enum})
}

func (v *Validator) evaluateConst(schema *jsonschema.Schema, node *cst.Node, src []byte) *ValidationError {
	if !schema.HasConst {
		return nil
	}
	val := nodeValue(node, src)
	if structuralEqual(val, schema.Const) {
		return nil
	}
	return newError(node, "const", "const_mismatch", "Value does not match the required constant",
		map[string]interface{}{"expected": schema.Const})
}

func (v *Validator) evaluateNumeric(schema *jsonschema.Schema, node *cst.Node, value float64) []*ValidationError {
	var errs []*ValidationError

	if schema.Minimum != nil && value < *schema.Minimum {
		errs = append(errs, newError(node, "minimum", "value_below_minimum",
			fmt.Sprintf("%v should be at least %v", value, *schema.Minimum),
			map[string]interface{}{"value": value, "minimum": *schema.Minimum}))
	}
	if schema.Maximum != nil && value > *schema.Maximum {
		errs = append(errs, newError(node, "maximum", "value_above_maximum",
			fmt.Sprintf("%v should be at most %v", value, *schema.Maximum),
			map[string]interface{}{"value": value, "maximum": *schema.Maximum}))
	}
	if el := schema.ExclusiveMinimum; el != nil {
		if el.IsBool && el.Bool && schema.Minimum != nil && value <= *schema.Minimum {
			errs = append(errs, newError(node, "exclusiveMinimum", "value_not_above_minimum",
				fmt.Sprintf("%v should be greater than %v", value, *schema.Minimum), nil))
		}
		if el.IsNum && value <= el.Number {
			errs = append(errs, newError(node, "exclusiveMinimum", "value_not_above_minimum",
				fmt.Sprintf("%v should be greater than %v", value, el.Number), nil))
		}
	}
	if el := schema.ExclusiveMaximum; el != nil {
		if el.IsBool && el.Bool && schema.Maximum != nil && value >= *schema.Maximum {
			errs = append(errs, newError(node, "exclusiveMaximum", "value_not_below_maximum",
				fmt.Sprintf("%v should be less than %v", value, *schema.Maximum), nil))
		}
		if el.IsNum && value >= el.Number {
			errs = append(errs, newError(node, "exclusiveMaximum", "value_not_below_maximum",
				fmt.Sprintf("%v should be less than %v", value, el.Number), nil))
		}
	}
	if schema.MultipleOf != nil && *schema.MultipleOf != 0 {
		ratio := value / *schema.MultipleOf
		if math.Abs(ratio-math.Round(ratio)) > 1e-9 {
			errs = append(errs, newError(node, "multipleOf", "value_not_multiple",
				fmt.Sprintf("%v should be a multiple of %v", value, *schema.MultipleOf), nil))
		}
	}
	return errs
}

func (v *Validator) evaluateString(schema *jsonschema.Schema, node *cst.Node, s string) []*ValidationError {
	var errs []*ValidationError
	length := codePointLen(s)
	if schema.MinLength != nil && length < *schema.MinLength {
		errs = append(errs, newError(node, "minLength", "string_too_short",
			fmt.Sprintf("String should be at least %d characters", *schema.MinLength), nil))
	}
	if schema.MaxLength != nil && length > *schema.MaxLength {
		errs = append(errs, newError(node, "maxLength", "string_too_long",
			fmt.Sprintf("String should be at most %d characters", *schema.MaxLength), nil))
	}
	if schema.Pattern != nil {
		ok, err := v.Regex.Matches(*schema.Pattern, s)
		if err != nil {
			// Regex compile failure: skip the keyword for this node rather
			// than surface a diagnostic against the document.
			if v.log != nil {
				v.log.Warn("skipping pattern keyword: invalid regular expression",
					zap.String("pattern", *schema.Pattern), zap.Error(err))
			}
		} else if !ok {
			msg := fmt.Sprintf("String does not match the pattern %s", *schema.Pattern)
			if schema.PatternErrorMessage != nil {
				if custom, ok := schema.PatternErrorMessage["pattern"]; ok {
					msg = custom
				}
			}
			errs = append(errs, newError(node, "pattern", "pattern_mismatch", msg, nil))
		}
	}
	// format is advisory unless the schema explicitly opts into assertion;
	// this server never asserts format by default, following spec.md §4.4.
	return errs
}

// codePointLen counts Unicode code points, the unit minLength/maxLength are
// defined against in JSON Schema, even though this server's position
// handling elsewhere is UTF-16 based for LSP.
func codePointLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
