package features

import (
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
)

// DocumentLinks emits a link for every "$ref" value (internal or external)
// and every other string value that looks like an http(s) URL, matching
// links.rs's two cases: $ref gets a "Go to definition" tooltip, bare URLs
// just get a target.
func DocumentLinks(doc *document.Document) []protocol.DocumentLink {
	root := cst.RootValue(doc.Tree())
	var out []protocol.DocumentLink
	var walk func(n *cst.Node)
	walk = func(n *cst.Node) {
		switch cst.Kind(n) {
		case cst.KindPair:
			key, _ := cst.PairKey(n, doc.Text)
			valNode := cst.PairValue(n)
			if s, ok := cst.StringContent(valNode, doc.Text); ok {
				if key == "$ref" {
					link := protocol.DocumentLink{Range: nodeRange(valNode, doc.Text, doc.LineIndex())}
					if isHTTPURL(s) {
						u := uri.New(s)
						link.Target = string(u)
					}
					link.Tooltip = "Go to definition"
					out = append(out, link)
				} else if isHTTPURL(s) {
					u := uri.New(s)
					out = append(out, protocol.DocumentLink{
						Range:  nodeRange(valNode, doc.Text, doc.LineIndex()),
						Target: string(u),
					})
				}
			}
			walk(valNode)
		case cst.KindObject:
			for _, pair := range cst.ObjectPairs(n) {
				walk(pair)
			}
		case cst.KindArray:
			for _, item := range cst.ArrayItems(n) {
				walk(item)
			}
		}
	}
	walk(root)
	return out
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Definition resolves an internal "$ref" ("#/..."-style) value at offset to
// a Location in the same document, walking the CST via the JSON-Pointer
// segments exactly as links.rs's resolve_pointer does. External refs (no
// leading '#') return nil, matching the Non-goal of following external
// refs for go-to-definition.
func Definition(doc *document.Document, offset uint32) *protocol.Location {
	node := cst.NodeAtOffset(doc.Tree(), offset)
	strNode := ascendToString(node)
	if strNode == nil {
		return nil
	}
	pair := strNode.Parent()
	if cst.Kind(pair) != cst.KindPair {
		return nil
	}
	key, _ := cst.PairKey(pair, doc.Text)
	if key != "$ref" {
		return nil
	}
	value, ok := cst.StringContent(strNode, doc.Text)
	if !ok || !strings.HasPrefix(value, "#") {
		return nil
	}
	fragment := strings.TrimPrefix(value, "#")
	target := resolvePointer(doc, fragment)
	if target == nil {
		return nil
	}
	return &protocol.Location{
		URI:   doc.URI,
		Range: nodeRange(target, doc.Text, doc.LineIndex()),
	}
}

func ascendToString(n *cst.Node) *cst.Node {
	for n != nil {
		if cst.Kind(n) == cst.KindString {
			return n
		}
		if cst.Kind(n) == cst.KindStringContent || cst.Kind(n) == cst.KindEscapeSeq {
			n = n.Parent()
			continue
		}
		return nil
	}
	return nil
}

// resolvePointer walks a "/"-delimited JSON Pointer fragment through the
// document's CST, unescaping ~1 -> "/" and ~0 -> "~" in each segment.
func resolvePointer(doc *document.Document, fragment string) *cst.Node {
	cur := cst.RootValue(doc.Tree())
	if fragment == "" {
		return cur
	}
	segments := strings.Split(strings.TrimPrefix(fragment, "/"), "/")
	for _, seg := range segments {
		seg = unescapePointerSegment(seg)
		if cur == nil {
			return nil
		}
		switch cst.Kind(cur) {
		case cst.KindObject:
			found := false
			for _, pair := range cst.ObjectPairs(cur) {
				if key, ok := cst.PairKey(pair, doc.Text); ok && key == seg {
					cur = cst.PairValue(pair)
					found = true
					break
				}
			}
			if !found {
				return nil
			}
		case cst.KindArray:
			idx, ok := parseArrayIndex(seg)
			items := cst.ArrayItems(cur)
			if !ok || idx < 0 || idx >= len(items) {
				return nil
			}
			cur = items[idx]
		default:
			return nil
		}
	}
	return cur
}

func unescapePointerSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "~1", "/")
	seg = strings.ReplaceAll(seg, "~0", "~")
	return seg
}

func parseArrayIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	n := 0
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
