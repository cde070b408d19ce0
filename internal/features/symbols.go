package features

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
)

// DocumentSymbols builds the hierarchical outline for a document.
func DocumentSymbols(doc *document.Document) []protocol.DocumentSymbol {
	root := cst.RootValue(doc.Tree())
	if root == nil {
		return nil
	}
	return childrenSymbols(root, doc.Text, doc.LineIndex())
}

func childrenSymbols(node *cst.Node, src []byte, li *document.LineIndex) []protocol.DocumentSymbol {
	switch cst.Kind(node) {
	case cst.KindObject:
		return objectSymbols(node, src, li)
	case cst.KindArray:
		return arraySymbols(node, src, li)
	default:
		return nil
	}
}

func objectSymbols(obj *cst.Node, src []byte, li *document.LineIndex) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, pair := range cst.ObjectPairs(obj) {
		key, ok := cst.PairKey(pair, src)
		if !ok {
			continue
		}
		keyNode := pair.ChildByFieldName("key")
		valNode := cst.PairValue(pair)
		sym := protocol.DocumentSymbol{
			Name:           key,
			Detail:         valueDetail(valNode, src),
			Kind:           nodeSymbolKind(valNode),
			Range:          nodeRange(pair, src, li),
			SelectionRange: nodeRange(keyNode, src, li),
		}
		if valNode != nil {
			sym.Children = childrenSymbols(valNode, src, li)
		}
		out = append(out, sym)
	}
	return out
}

func arraySymbols(arr *cst.Node, src []byte, li *document.LineIndex) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for i, item := range cst.ArrayItems(arr) {
		sym := protocol.DocumentSymbol{
			Name:           fmt.Sprintf("[%d]", i),
			Detail:         valueDetail(item, src),
			Kind:           nodeSymbolKind(item),
			Range:          nodeRange(item, src, li),
			SelectionRange: nodeRange(item, src, li),
		}
		sym.Children = childrenSymbols(item, src, li)
		out = append(out, sym)
	}
	return out
}

func nodeSymbolKind(n *cst.Node) protocol.SymbolKind {
	switch cst.Kind(n) {
	case cst.KindObject:
		return protocol.SymbolKindObject
	case cst.KindArray:
		return protocol.SymbolKindArray
	case cst.KindString:
		return protocol.SymbolKindString
	case cst.KindNumber:
		return protocol.SymbolKindNumber
	case cst.KindTrue, cst.KindFalse:
		return protocol.SymbolKindBoolean
	case cst.KindNull:
		return protocol.SymbolKindNull
	default:
		return protocol.SymbolKindKey
	}
}

func valueDetail(n *cst.Node, src []byte) string {
	switch cst.Kind(n) {
	case cst.KindString:
		s, _ := cst.StringContent(n, src)
		if len(s) > 60 {
			return s[:60] + "..."
		}
		return s
	case cst.KindNumber, cst.KindTrue, cst.KindFalse, cst.KindNull:
		return cst.Text(n, src)
	case cst.KindObject:
		return fmt.Sprintf("{%d properties}", len(cst.ObjectPairs(n)))
	case cst.KindArray:
		return fmt.Sprintf("[%d items]", len(cst.ArrayItems(n)))
	default:
		return ""
	}
}

func nodeRange(n *cst.Node, src []byte, li *document.LineIndex) protocol.Range {
	if n == nil {
		return protocol.Range{}
	}
	sLine, sChar := li.PositionOf(src, n.StartByte())
	eLine, eChar := li.PositionOf(src, n.EndByte())
	return protocol.Range{
		Start: protocol.Position{Line: uint32(sLine), Character: uint32(sChar)},
		End:   protocol.Position{Line: uint32(eLine), Character: uint32(eChar)},
	}
}
