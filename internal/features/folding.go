package features

import (
	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
)

// FoldingRanges collects folding ranges for every multi-line object, array,
// and block comment, matching folding.rs exactly: single-line constructs
// never fold, and comments don't recurse into (non-existent) children.
func FoldingRanges(doc *document.Document) []protocol.FoldingRange {
	var out []protocol.FoldingRange
	var walk func(n *cst.Node)
	walk = func(n *cst.Node) {
		if n == nil {
			return
		}
		switch cst.Kind(n) {
		case cst.KindObject, cst.KindArray:
			startLine, _ := doc.LineIndex().PositionOf(doc.Text, n.StartByte())
			endLine, _ := doc.LineIndex().PositionOf(doc.Text, n.EndByte())
			if endLine > startLine {
				out = append(out, protocol.FoldingRange{
					StartLine: uint32(startLine),
					EndLine:   uint32(endLine),
					Kind:      protocol.FoldingRangeKindRegion,
				})
			}
			for _, c := range cst.NamedChildren(n) {
				walk(c)
			}
		case cst.KindPair:
			walk(cst.PairValue(n))
		case cst.KindComment:
			startLine, _ := doc.LineIndex().PositionOf(doc.Text, n.StartByte())
			endLine, _ := doc.LineIndex().PositionOf(doc.Text, n.EndByte())
			if endLine > startLine {
				out = append(out, protocol.FoldingRange{
					StartLine: uint32(startLine),
					EndLine:   uint32(endLine),
					Kind:      protocol.FoldingRangeKindComment,
				})
			}
		}
	}
	if tree := doc.Tree(); tree != nil {
		for _, c := range cst.NamedChildren(tree.RootNode()) {
			walk(c)
		}
	}
	return out
}
