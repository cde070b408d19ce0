// Package document owns the live text, line index, and concrete syntax tree
// for every open JSON/JSONC file, and keeps all three in sync as edits
// arrive over didChange notifications.
package document

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/kaptinlin/jsonls/internal/cst"
)

// Document is one open text document: its current text, version, line
// index, and parsed tree, plus the parser instance that produced the tree
// (kept alive so incremental reparses can reuse it).
type Document struct {
	URI     uri.URI
	Version int32
	Text    []byte

	lineIndex *LineIndex
	tree      *sitter.Tree
	parser    *cst.Parser
}

// New creates a Document from its full initial text.
func New(u uri.URI, version int32, text string) *Document {
	d := &Document{
		URI:     u,
		Version: version,
		Text:    []byte(text),
		parser:  cst.NewParser(),
	}
	d.lineIndex = NewLineIndex(d.Text)
	tree, _ := d.parser.Parse(context.Background(), nil, d.Text)
	d.tree = tree
	return d
}

// Close releases the tree-sitter parser resources held by the document.
func (d *Document) Close() {
	if d.tree != nil {
		d.tree.Close()
	}
	if d.parser != nil {
		d.parser.Close()
	}
}

// Tree returns the document's current concrete syntax tree.
func (d *Document) Tree() *sitter.Tree { return d.tree }

// LineIndex returns the document's current line index.
func (d *Document) LineIndex() *LineIndex { return d.lineIndex }

// ReplaceFull replaces the entire document text (used for full-sync
// didChange events; didOpen creates the document through New instead).
func (d *Document) ReplaceFull(version int32, text string) {
	d.Version = version
	d.Text = []byte(text)
	d.lineIndex = NewLineIndex(d.Text)
	tree, _ := d.parser.Parse(context.Background(), nil, d.Text)
	if d.tree != nil {
		d.tree.Close()
	}
	d.tree = tree
}

// ApplyEdit applies one incremental edit: rng is expressed in LSP's UTF-16
// line/character coordinates against the PRE-edit text, and newText is the
// replacement. The ordering here matters and mirrors the reference
// implementation precisely: compute the byte range and points against the
// OLD text and OLD line index, splice the text, inform the tree of the
// edit using both old and new end points, reparse incrementally, and only
// then update the line index incrementally against the new text.
func (d *Document) ApplyEdit(version int32, rng protocol.Range, newText string) {
	oldText := d.Text
	startByte := d.lineIndex.OffsetOf(oldText, int(rng.Start.Line), int(rng.Start.Character))
	oldEndByte := d.lineIndex.OffsetOf(oldText, int(rng.End.Line), int(rng.End.Character))
	startRow, startCol := lineCol(d.lineIndex, oldText, startByte)
	oldEndRow, oldEndCol := lineCol(d.lineIndex, oldText, oldEndByte)

	spliced := make([]byte, 0, len(oldText)-int(oldEndByte-startByte)+len(newText))
	spliced = append(spliced, oldText[:startByte]...)
	spliced = append(spliced, []byte(newText)...)
	spliced = append(spliced, oldText[oldEndByte:]...)

	newEndByte := startByte + uint32(len(newText))

	d.Version = version
	d.Text = spliced

	newEndRow, newEndCol := byteToLineCol(spliced, newEndByte)

	if d.tree != nil {
		cst.ApplyEdit(d.tree, cst.Edit{
			StartByte:   startByte,
			OldEndByte:  oldEndByte,
			NewEndByte:  newEndByte,
			StartPoint:  cst.MakePoint(uint32(startRow), uint32(startCol)),
			OldEndPoint: cst.MakePoint(uint32(oldEndRow), uint32(oldEndCol)),
			NewEndPoint: cst.MakePoint(uint32(newEndRow), uint32(newEndCol)),
		})
	}

	newTree, _ := d.parser.Parse(context.Background(), d.tree, spliced)
	if d.tree != nil {
		d.tree.Close()
	}
	d.tree = newTree

	d.lineIndex.Update(spliced, startByte, oldEndByte, []byte(newText))
}

func lineCol(li *LineIndex, text []byte, offset uint32) (row, col int) {
	line := li.lineOf(offset)
	if line < 0 {
		line = 0
	}
	start := li.LineStart(line)
	return line, int(offset - start)
}

func byteToLineCol(text []byte, offset uint32) (row, col int) {
	li := NewLineIndex(text)
	return lineCol(li, text, offset)
}

// Store holds all currently-open documents, guarded by its own mutex so
// read-only feature queries (hover, completion, ...) and edit handlers can
// be serialized independently of schema-store state when the caller wants
// finer-grained locking than the single exclusive server lock.
type Store struct {
	mu   sync.Mutex
	docs map[uri.URI]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[uri.URI]*Document)}
}

func (s *Store) Open(u uri.URI, version int32, text string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := New(u, version, text)
	s.docs[u] = d
	return d
}

func (s *Store) Close(u uri.URI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[u]; ok {
		d.Close()
		delete(s.docs, u)
	}
}

func (s *Store) Get(u uri.URI) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[u]
	return d, ok
}
