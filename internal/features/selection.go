package features

import (
	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
)

// SelectionRanges builds one nested selection-range chain per requested
// position, walking a node's ancestors from innermost to outermost exactly
// as selection.rs's build_chain does.
func SelectionRanges(doc *document.Document, positions []protocol.Position) []*protocol.SelectionRange {
	out := make([]*protocol.SelectionRange, 0, len(positions))
	for _, pos := range positions {
		offset := doc.LineIndex().OffsetOf(doc.Text, int(pos.Line), int(pos.Character))
		node := cst.NodeAtOffset(doc.Tree(), offset)
		out = append(out, buildChain(node, doc))
	}
	return out
}

func buildChain(node *cst.Node, doc *document.Document) *protocol.SelectionRange {
	if node == nil {
		return nil
	}
	var parent *protocol.SelectionRange
	if p := node.Parent(); p != nil {
		parent = buildChain(p, doc)
	}
	return &protocol.SelectionRange{
		Range:  nodeRange(node, doc.Text, doc.LineIndex()),
		Parent: parent,
	}
}
