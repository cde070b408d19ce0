package features

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
)

// indentUnit is derived from protocol.FormattingOptions.
type indentUnit struct {
	text string
}

func indentFromOptions(opts protocol.FormattingOptions) indentUnit {
	if opts.InsertSpaces {
		n := int(opts.TabSize)
		if n <= 0 {
			n = 2
		}
		return indentUnit{text: strings.Repeat(" ", n)}
	}
	return indentUnit{text: "\t"}
}

// FormatDocument reformats the whole document, returning a single TextEdit
// replacing the full text, or nil if the document has syntax errors (no-op,
// matching format_document's guard) or is already formatted.
func FormatDocument(doc *document.Document, opts protocol.FormattingOptions, insertFinalNewline bool) []protocol.TextEdit {
	if cst.HasError(doc.Tree()) {
		return nil
	}
	root := cst.RootValue(doc.Tree())
	if root == nil {
		return nil
	}
	unit := indentFromOptions(opts)
	var b strings.Builder
	formatNode(&b, root, doc.Text, unit, 0)
	out := b.String()
	if insertFinalNewline && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if out == string(doc.Text) {
		return nil
	}
	return []protocol.TextEdit{{
		Range:   fullDocumentRange(doc),
		NewText: out,
	}}
}

// FormatRange currently formats the whole document, same as the reference
// implementation: reformatting a sub-range of JSON independent of its
// surrounding structure produces invalid documents far too easily, and most
// editors apply a full-document edit for range formatting requests anyway.
func FormatRange(doc *document.Document, opts protocol.FormattingOptions, insertFinalNewline bool) []protocol.TextEdit {
	return FormatDocument(doc, opts, insertFinalNewline)
}

func formatNode(b *strings.Builder, n *cst.Node, src []byte, unit indentUnit, depth int) {
	switch cst.Kind(n) {
	case cst.KindObject:
		pairs := cst.ObjectPairs(n)
		if len(pairs) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, pair := range pairs {
			writeIndent(b, unit, depth+1)
			key, _ := cst.PairKey(pair, src)
			fmt.Fprintf(b, "%q: ", key)
			formatNode(b, cst.PairValue(pair), src, unit, depth+1)
			if i < len(pairs)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		writeIndent(b, unit, depth)
		b.WriteString("}")
	case cst.KindArray:
		items := cst.ArrayItems(n)
		if len(items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range items {
			writeIndent(b, unit, depth+1)
			formatNode(b, item, src, unit, depth+1)
			if i < len(items)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		writeIndent(b, unit, depth)
		b.WriteString("]")
	default:
		b.WriteString(cst.Text(n, src))
	}
}

func writeIndent(b *strings.Builder, unit indentUnit, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(unit.text)
	}
}

func fullDocumentRange(doc *document.Document) protocol.Range {
	lastLine := doc.LineIndex().LineCount() - 1
	endLine, endChar := doc.LineIndex().PositionOf(doc.Text, uint32(len(doc.Text)))
	if endLine < lastLine {
		endLine = lastLine
	}
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(endChar)},
	}
}

// SortDocument recursively sorts every object's keys alphabetically,
// round-tripping through a decoded value since the CST can't provide
// reordered iteration directly (same approach as formatting.rs's
// sort_document). The detected indent matches the document's current
// style. Returns nil if the document has syntax errors or is already
// sorted.
func SortDocument(doc *document.Document) []protocol.TextEdit {
	if cst.HasError(doc.Tree()) {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(doc.Text, &v); err != nil {
		return nil
	}
	sorted := sortValue(v)
	indent := detectIndent(doc.Text)
	out, err := marshalIndent(sorted, indent)
	if err != nil {
		return nil
	}
	out += "\n"
	if out == string(doc.Text) {
		return nil
	}
	return []protocol.TextEdit{{Range: fullDocumentRange(doc), NewText: out}}
}

func sortValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(t))
		for _, k := range keys {
			out[k] = sortValue(t[k])
		}
		return sortedMap{keys: keys, values: out}
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = sortValue(e)
		}
		return out
	default:
		return v
	}
}

// sortedMap remembers the alphabetical key order produced by sortValue so
// marshalIndent doesn't have to re-sort (and re-randomize) on output.
type sortedMap struct {
	keys   []string
	values map[string]interface{}
}

func marshalIndent(v interface{}, indent string) (string, error) {
	var b strings.Builder
	if err := marshalValue(&b, v, indent, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func marshalValue(b *strings.Builder, v interface{}, indent string, depth int) error {
	switch t := v.(type) {
	case sortedMap:
		if len(t.keys) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, k := range t.keys {
			writeRawIndent(b, indent, depth+1)
			fmt.Fprintf(b, "%q: ", k)
			if err := marshalValue(b, t.values[k], indent, depth+1); err != nil {
				return err
			}
			if i < len(t.keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		writeRawIndent(b, indent, depth)
		b.WriteString("}")
	case []interface{}:
		if len(t) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, e := range t {
			writeRawIndent(b, indent, depth+1)
			if err := marshalValue(b, e, indent, depth+1); err != nil {
				return err
			}
			if i < len(t)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		writeRawIndent(b, indent, depth)
		b.WriteString("]")
	case string:
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		b.Write(data)
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case nil:
		b.WriteString("null")
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return nil
}

func writeRawIndent(b *strings.Builder, indent string, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

// detectIndent sniffs the document's own indentation style from the leading
// whitespace of the first line after line one that has any, defaulting to
// two spaces (matches
// formatting.rs's detect_indent).
func detectIndent(text []byte) string {
	lines := strings.Split(string(text), "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		leading := line[:len(line)-len(trimmed)]
		if leading == "" {
			continue
		}
		return leading
	}
	return "  "
}
