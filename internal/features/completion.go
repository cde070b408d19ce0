package features

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

// completionContext classifies what's being completed at a cursor offset,
// mirroring completion.rs's Context enum.
type completionContext struct {
	kind      string // "propertyName", "propertyValue", "arrayItem", "none"
	object    *cst.Node
	array     *cst.Node
	key       string
	index     int
}

// Completion builds completion items for a cursor offset.
func Completion(doc *document.Document, root *jsonschema.Schema, offset uint32) []protocol.CompletionItem {
	node := cst.NodeAtOffset(doc.Tree(), offset)
	if node == nil {
		return nil
	}
	ctx := determineContext(node, doc.Text, offset)
	switch ctx.kind {
	case "propertyName":
		objPath := cst.JSONPath(ctx.object, doc.Text)
		objSchema := resolveSchemaForPath(root, objPath)
		return completePropertyNames(objSchema, ctx.object, doc.Text)
	case "propertyValue":
		objPath := cst.JSONPath(ctx.object, doc.Text)
		objSchema := resolveSchemaForPath(root, objPath)
		if objSchema == nil {
			return nil
		}
		valueSchema := objSchema.ResolvePathSegment(ctx.key, 0, false)
		return completeValue(valueSchema)
	case "arrayItem":
		arrPath := cst.JSONPath(ctx.array, doc.Text)
		arrSchema := resolveSchemaForPath(root, arrPath)
		if arrSchema == nil {
			return nil
		}
		itemSchema := arraySlotSchema(arrSchema, ctx.index)
		return completeValue(itemSchema)
	default:
		return nil
	}
}

func arraySlotSchema(arr *jsonschema.Schema, index int) *jsonschema.Schema {
	if index < len(arr.PrefixItems) {
		return arr.PrefixItems[index]
	}
	if arr.Items != nil && !arr.Items.IsBool {
		return arr.Items.Schema
	}
	return nil
}

func determineContext(node *cst.Node, src []byte, offset uint32) completionContext {
	// NodeAtOffset can land on punctuation or string_content; climb to the
	// nearest value or pair node, which is what carries the context.
	for node != nil && !cst.IsValueNode(node) && cst.Kind(node) != cst.KindPair {
		node = node.Parent()
	}
	switch cst.Kind(node) {
	case cst.KindObject:
		if key, ok := findKeyAtColon(node, src, offset); ok {
			return completionContext{kind: "propertyValue", object: node, key: key}
		}
		return completionContext{kind: "propertyName", object: node}
	case cst.KindArray:
		return completionContext{kind: "arrayItem", array: node, index: len(cst.ArrayItems(node))}
	case cst.KindPair:
		keyNode := node.ChildByFieldName("key")
		valNode := node.ChildByFieldName("value")
		if valNode != nil && offset >= valNode.StartByte() {
			key, _ := cst.StringContent(keyNode, src)
			return completionContext{kind: "propertyValue", object: node.Parent(), key: key}
		}
		return completionContext{kind: "propertyName", object: node.Parent()}
	case cst.KindString, cst.KindNumber, cst.KindTrue, cst.KindFalse, cst.KindNull:
		parent := node.Parent()
		if cst.Kind(parent) == cst.KindPair {
			if cst.PairValue(parent) == node {
				key, _ := cst.PairKey(parent, src)
				return completionContext{kind: "propertyValue", object: parent.Parent(), key: key}
			}
			return completionContext{kind: "propertyName", object: parent.Parent()}
		}
		if cst.Kind(parent) == cst.KindArray {
			idx := 0
			for _, item := range cst.ArrayItems(parent) {
				if item == node {
					break
				}
				idx++
			}
			return completionContext{kind: "arrayItem", array: parent, index: idx}
		}
		return completionContext{kind: "none"}
	default:
		return completionContext{kind: "none"}
	}
}

// findKeyAtColon handles the cursor-sits-right-after-a-colon heuristic:
// scan pairs for one whose colon lies before offset and whose value (if
// present) starts after it, i.e. the cursor is between ':' and the value.
func findKeyAtColon(obj *cst.Node, src []byte, offset uint32) (string, bool) {
	for _, pair := range cst.ObjectPairs(obj) {
		valNode := cst.PairValue(pair)
		keyNode := pair.ChildByFieldName("key")
		if keyNode == nil {
			continue
		}
		colonAfterKey := keyNode.EndByte()
		valueStart := pair.EndByte()
		if valNode != nil {
			valueStart = valNode.StartByte()
		}
		if offset >= colonAfterKey && offset <= valueStart {
			key, _ := cst.StringContent(keyNode, src)
			return key, true
		}
	}
	return "", false
}

func completePropertyNames(schema *jsonschema.Schema, obj *cst.Node, src []byte) []protocol.CompletionItem {
	if schema == nil {
		return nil
	}
	existing := map[string]bool{}
	for _, pair := range cst.ObjectPairs(obj) {
		if key, ok := cst.PairKey(pair, src); ok {
			existing[key] = true
		}
	}

	var items []protocol.CompletionItem
	required := map[string]bool{}
	for _, r := range schema.Required {
		required[r] = true
	}
	for _, key := range schema.PropertyOrder {
		if existing[key] {
			continue
		}
		propSchema := schema.Properties[key]
		if propSchema != nil && propSchema.DoNotSuggest {
			continue
		}
		sortPrefix := "1_"
		if required[key] {
			sortPrefix = "0_"
		}
		snippet := fmt.Sprintf("\"%s\": %s", key, defaultValueSnippet(propSchema))
		item := protocol.CompletionItem{
			Label:            key,
			Kind:             protocol.CompletionItemKindProperty,
			InsertText:       snippet,
			InsertTextFormat: protocol.InsertTextFormatSnippet,
			SortText:         sortPrefix + key,
		}
		if propSchema != nil {
			item.Detail = strings.Join(propSchema.Types, "|")
			if propSchema.Description != "" {
				item.Documentation = propSchema.Description
			}
			if propSchema.Deprecated {
				item.Tags = []protocol.CompletionItemTag{protocol.CompletionItemTagDeprecated}
			}
		}
		items = append(items, item)
	}

	for _, group := range [][]*jsonschema.Schema{schema.AllOf, schema.AnyOf, schema.OneOf} {
		for _, sub := range group {
			items = append(items, completePropertyNames(sub, obj, src)...)
		}
	}
	if schema.Then != nil {
		items = append(items, completePropertyNames(schema.Then, obj, src)...)
	}
	if schema.Else != nil {
		items = append(items, completePropertyNames(schema.Else, obj, src)...)
	}
	for _, snip := range schema.DefaultSnippets {
		items = append(items, protocol.CompletionItem{
			Label:            snip.Label,
			Kind:             protocol.CompletionItemKindSnippet,
			Documentation:    snip.Description,
			InsertText:       fmt.Sprintf("%v", snip.Body),
			InsertTextFormat: protocol.InsertTextFormatSnippet,
		})
	}
	return items
}

func completeValue(schema *jsonschema.Schema) []protocol.CompletionItem {
	if schema == nil {
		return nil
	}
	var items []protocol.CompletionItem
	if schema.HasEnum {
		for i, v := range schema.Enum {
			item := protocol.CompletionItem{
				Label:      fmt.Sprintf("%v", v),
				Kind:       protocol.CompletionItemKindValue,
				InsertText: formatJSONValue(v),
			}
			if i < len(schema.EnumDescriptions) {
				item.Documentation = schema.EnumDescriptions[i]
			}
			items = append(items, item)
		}
	} else if schema.HasConst {
		items = append(items, protocol.CompletionItem{
			Label:      fmt.Sprintf("%v", schema.Const),
			Kind:       protocol.CompletionItemKindValue,
			InsertText: formatJSONValue(schema.Const),
		})
	} else {
		for _, t := range schema.Types {
			switch t {
			case "boolean":
				items = append(items,
					protocol.CompletionItem{Label: "true", Kind: protocol.CompletionItemKindValue, InsertText: "true"},
					protocol.CompletionItem{Label: "false", Kind: protocol.CompletionItemKindValue, InsertText: "false"})
			case "null":
				items = append(items, protocol.CompletionItem{Label: "null", Kind: protocol.CompletionItemKindValue, InsertText: "null"})
			}
		}
	}
	if schema.HasDefault {
		items = append(items, protocol.CompletionItem{
			Label:      fmt.Sprintf("%v", schema.Default),
			Kind:       protocol.CompletionItemKindValue,
			InsertText: formatJSONValue(schema.Default),
			Preselect:  true,
		})
	}
	for _, snip := range schema.DefaultSnippets {
		items = append(items, protocol.CompletionItem{
			Label:            snip.Label,
			Kind:             protocol.CompletionItemKindSnippet,
			Documentation:    snip.Description,
			InsertText:       fmt.Sprintf("%v", snip.Body),
			InsertTextFormat: protocol.InsertTextFormatSnippet,
		})
	}
	return items
}

func defaultValueSnippet(schema *jsonschema.Schema) string {
	if schema == nil {
		return "$1"
	}
	if schema.HasConst {
		return formatJSONValue(schema.Const)
	}
	if schema.HasEnum && len(schema.Enum) == 1 {
		return formatJSONValue(schema.Enum[0])
	}
	if schema.HasDefault {
		return formatJSONValue(schema.Default)
	}
	if len(schema.Types) == 0 {
		return "$1"
	}
	switch schema.Types[0] {
	case "string":
		return "\"$1\""
	case "number", "integer":
		return "${1:0}"
	case "boolean":
		return "${1:false}"
	case "null":
		return "null"
	case "array":
		return "[$1]"
	case "object":
		return "{$1}"
	default:
		return "$1"
	}
}

func formatJSONValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}
