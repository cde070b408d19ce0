// Package features implements the document-centric LSP feature providers:
// hover, completion, symbols, colors, folding, selection ranges, links,
// and formatting. Each is a close adaptation of the corresponding module in
// the reference implementation (hover.rs, completion.rs, symbols.rs,
// colors.rs, folding.rs, selection.rs, links.rs, formatting.rs), rewritten
// against this server's CST/schema/document types.
package features

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
)

const maxEnumValuesShown = 20

// Hover builds hover content for the node at offset, resolving the schema
// that applies to that position by walking the node's JSON path.
func Hover(doc *document.Document, root *jsonschema.Schema, offset uint32) *protocol.Hover {
	node := cst.NodeAtOffset(doc.Tree(), offset)
	if node == nil {
		return nil
	}
	path := cst.JSONPath(node, doc.Text)
	schema := resolveSchemaForPath(root, path)

	var sections []string
	if schema != nil {
		if schema.MarkdownDescription != "" {
			sections = append(sections, schema.MarkdownDescription)
		} else if schema.Description != "" {
			sections = append(sections, schema.Description)
		}
		if len(schema.Types) > 0 {
			sections = append(sections, fmt.Sprintf("Type: `%s`", strings.Join(schema.Types, " | ")))
		}
		if schema.HasDefault {
			sections = append(sections, fmt.Sprintf("Default: `%v`", schema.Default))
		}
		if schema.HasEnum {
			sections = append(sections, enumSection(schema))
		}
		if schema.Deprecated {
			msg := "This value is deprecated."
			if schema.DeprecationMessage != "" {
				msg = schema.DeprecationMessage
			}
			sections = append(sections, "**Deprecated**: "+msg)
		}
	}

	if valueSection := currentValueSection(node, doc.Text); valueSection != "" {
		sections = append(sections, valueSection)
	}

	if len(sections) == 0 {
		return nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: strings.Join(sections, "\n\n")},
		Range:    byteRangeToRange(doc, node.StartByte(), node.EndByte()),
	}
}

func enumSection(schema *jsonschema.Schema) string {
	n := len(schema.Enum)
	shown := n
	if shown > maxEnumValuesShown {
		shown = maxEnumValuesShown
	}
	var b strings.Builder
	b.WriteString("Allowed values:\n")
	for i := 0; i < shown; i++ {
		b.WriteString(fmt.Sprintf("- `%v`", schema.Enum[i]))
		if i < len(schema.EnumDescriptions) {
			b.WriteString(" — " + schema.EnumDescriptions[i])
		}
		b.WriteString("\n")
	}
	if n > shown {
		b.WriteString(fmt.Sprintf("- _(%d more)_\n", n-shown))
	}
	return strings.TrimRight(b.String(), "\n")
}

func currentValueSection(node *cst.Node, src []byte) string {
	switch cst.Kind(node) {
	case cst.KindString:
		s, _ := cst.StringContent(node, src)
		return fmt.Sprintf("Current value: `%q`", s)
	case cst.KindNumber, cst.KindTrue, cst.KindFalse, cst.KindNull:
		return fmt.Sprintf("Current value: `%s`", cst.Text(node, src))
	default:
		return ""
	}
}

// resolveSchemaForPath walks path segments from the root schema, exactly
// as hover.rs's resolve_schema_for_hover does.
func resolveSchemaForPath(root *jsonschema.Schema, path []cst.PathSegment) *jsonschema.Schema {
	cur := root
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		cur = cur.ResolvePathSegment(seg.Key, seg.Index, seg.IsIndex)
	}
	return cur
}

func byteRangeToRange(doc *document.Document, start, end uint32) protocol.Range {
	sLine, sChar := doc.LineIndex().PositionOf(doc.Text, start)
	eLine, eChar := doc.LineIndex().PositionOf(doc.Text, end)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(sLine), Character: uint32(sChar)},
		End:   protocol.Position{Line: uint32(eLine), Character: uint32(eChar)},
	}
}
