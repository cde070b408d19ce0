// Package cst wraps the tree-sitter concrete syntax tree for JSON/JSONC
// documents, giving the rest of the server a small, stable surface instead of
// spreading sitter.Node calls throughout every feature provider.
package cst

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	sitterjson "github.com/smacker/go-tree-sitter/json"
)

// Node kinds produced by the tree-sitter JSON grammar. The grammar is an
// external collaborator (see spec); these are the kinds the rest of the
// server is written against.
const (
	KindObject        = "object"
	KindArray         = "array"
	KindPair          = "pair"
	KindString        = "string"
	KindNumber        = "number"
	KindTrue          = "true"
	KindFalse         = "false"
	KindNull          = "null"
	KindComment       = "comment"
	KindStringContent = "string_content"
	KindEscapeSeq     = "escape_sequence"
	KindDocument      = "document"
	KindERROR         = "ERROR"
)

// Node is an alias so callers outside this package never import sitter directly.
type Node = sitter.Node

// Point is a zero-based (row, column-in-UTF8-bytes) position, mirroring
// tree-sitter's own point type.
type Point = sitter.Point

// Edit describes an incremental text change in tree-sitter's coordinate
// system: byte offsets plus row/column points for the pre- and post-edit
// text, exactly the shape document.Document.ApplyEdit needs to hand to the
// tree.
type Edit struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32
	StartPoint Point
	OldEndPoint Point
	NewEndPoint Point
}

func NewLanguage() *sitter.Language {
	return sitterjson.GetLanguage()
}

// Parser is a thin, per-document wrapper around *sitter.Parser set up for
// the JSON grammar.
type Parser struct {
	raw *sitter.Parser
}

func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(NewLanguage())
	return &Parser{raw: p}
}

func (p *Parser) Close() {
	p.raw.Close()
}

// Parse performs a full or incremental parse. Pass the previous tree (after
// ApplyEdit has been called on it) to reparse incrementally; pass nil for a
// fresh parse.
func (p *Parser) Parse(ctx context.Context, old *sitter.Tree, content []byte) (*sitter.Tree, error) {
	return p.raw.ParseCtx(ctx, old, content)
}

// ApplyEdit informs a tree of a text change so the next Parse call can reuse
// unaffected subtrees. Must be called with the tree's own pre-edit node
// coordinates before the new content is parsed.
func ApplyEdit(tree *sitter.Tree, e Edit) {
	tree.Edit(sitter.EditInput{
		StartIndex:  e.StartByte,
		OldEndIndex: e.OldEndByte,
		NewEndIndex: e.NewEndByte,
		StartPoint:  e.StartPoint,
		OldEndPoint: e.OldEndPoint,
		NewEndPoint: e.NewEndPoint,
	})
}

// Kind returns a node's grammar kind, or "" for a nil node.
func Kind(n *Node) string {
	if n == nil {
		return ""
	}
	return n.Type()
}

// RootValue returns the single JSON value at the top of the document,
// skipping the synthetic "document" wrapper node tree-sitter-json emits.
func RootValue(tree *sitter.Tree) *Node {
	if tree == nil {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if Kind(child) != KindComment {
			return child
		}
	}
	return nil
}

// IsValueNode reports whether n represents a JSON value (as opposed to
// structural punctuation, a pair, or a comment).
func IsValueNode(n *Node) bool {
	switch Kind(n) {
	case KindObject, KindArray, KindString, KindNumber, KindTrue, KindFalse, KindNull:
		return true
	default:
		return false
	}
}

// NamedChildren returns a node's named children as a slice.
func NamedChildren(n *Node) []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// ObjectPairs returns the "pair" children of an object node, in document order.
func ObjectPairs(obj *Node) []*Node {
	var pairs []*Node
	for _, c := range NamedChildren(obj) {
		if Kind(c) == KindPair {
			pairs = append(pairs, c)
		}
	}
	return pairs
}

// ArrayItems returns an array node's element value nodes, in document order.
func ArrayItems(arr *Node) []*Node {
	var items []*Node
	for _, c := range NamedChildren(arr) {
		if IsValueNode(c) {
			items = append(items, c)
		}
	}
	return items
}

// PairKey returns the unescaped key string of a pair node.
func PairKey(pair *Node, src []byte) (string, bool) {
	if Kind(pair) != KindPair {
		return "", false
	}
	keyNode := pair.ChildByFieldName("key")
	if keyNode == nil {
		return "", false
	}
	return StringContent(keyNode, src)
}

// PairValue returns the value node of a pair, or nil if absent (e.g. the
// user is mid-edit and hasn't typed a value yet).
func PairValue(pair *Node) *Node {
	if Kind(pair) != KindPair {
		return nil
	}
	return pair.ChildByFieldName("value")
}

// StringContent decodes a "string" node's contents, resolving JSON escape
// sequences. Reports false if n is not a string node.
func StringContent(n *Node, src []byte) (string, bool) {
	if Kind(n) != KindString {
		return "", false
	}
	var out []byte
	for _, c := range NamedChildren(n) {
		switch Kind(c) {
		case KindStringContent:
			out = append(out, c.Content(src)...)
		case KindEscapeSeq:
			out = append(out, decodeEscape(c.Content(src))...)
		}
	}
	return string(out), true
}

func decodeEscape(raw string) []byte {
	if len(raw) < 2 {
		return []byte(raw)
	}
	switch raw[1] {
	case '"':
		return []byte{'"'}
	case '\\':
		return []byte{'\\'}
	case '/':
		return []byte{'/'}
	case 'b':
		return []byte{'\b'}
	case 'f':
		return []byte{'\f'}
	case 'n':
		return []byte{'\n'}
	case 'r':
		return []byte{'\r'}
	case 't':
		return []byte{'\t'}
	case 'u':
		if len(raw) >= 6 {
			if r, ok := decodeHex4(raw[2:6]); ok {
				return []byte(string(rune(r)))
			}
		}
		return []byte(raw)
	default:
		return []byte(raw)
	}
}

func decodeHex4(s string) (int, bool) {
	n := 0
	for _, c := range s {
		n <<= 4
		switch {
		case c >= '0' && c <= '9':
			n |= int(c - '0')
		case c >= 'a' && c <= 'f':
			n |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			n |= int(c-'A') + 10
		default:
			return 0, false
		}
	}
	return n, true
}

// Text returns a node's raw source text.
func Text(n *Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// NodeAtOffset finds the deepest node spanning a byte offset.
func NodeAtOffset(tree *sitter.Tree, offset uint32) *Node {
	if tree == nil {
		return nil
	}
	n := tree.RootNode()
	for n != nil {
		next := descend(n, offset)
		if next == nil {
			return n
		}
		n = next
	}
	return n
}

func descend(n *Node, offset uint32) *Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if offset >= c.StartByte() && offset <= c.EndByte() {
			return c
		}
	}
	return nil
}

// PathSegment is one step of a JSON path: either a property name (Key) or
// an array index (Index, with IsIndex set).
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// JSONPath walks a node's ancestors and builds the path of keys/indices
// from the document root down to n, used to resolve the matching schema
// location for hover/completion.
func JSONPath(n *Node, src []byte) []PathSegment {
	var segs []PathSegment
	cur := n
	for cur != nil {
		parent := cur.Parent()
		if parent == nil {
			break
		}
		switch Kind(parent) {
		case KindPair:
			if key, ok := PairKey(parent, src); ok && PairValue(parent) == cur {
				segs = append([]PathSegment{{Key: key}}, segs...)
			}
		case KindArray:
			idx := 0
			for _, item := range ArrayItems(parent) {
				if item == cur {
					segs = append([]PathSegment{{Index: idx, IsIndex: true}}, segs...)
					break
				}
				idx++
			}
		}
		cur = parent
	}
	return segs
}

// HasError reports whether a tree contains any ERROR nodes or MISSING
// tokens, mirroring the original implementation's "no reformat/sort on
// broken syntax" gate.
func HasError(tree *sitter.Tree) bool {
	if tree == nil {
		return true
	}
	return tree.RootNode().HasError()
}

// MakePoint builds a tree-sitter Point from a row and a column-within-line
// in bytes; callers compute both from the document's line index.
func MakePoint(row, col uint32) Point {
	return Point{Row: row, Column: col}
}
