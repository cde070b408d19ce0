package schemastore

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kaptinlin/jsonls/internal/cst"
)

// InlineSchemaURI extracts the value of a top-level "$schema" key from a
// document's root object, if present. An inline $schema always wins over a
// file-match association (spec.md §4.3).
func InlineSchemaURI(tree *sitter.Tree, src []byte) string {
	root := cst.RootValue(tree)
	if cst.Kind(root) != cst.KindObject {
		return ""
	}
	for _, pair := range cst.ObjectPairs(root) {
		key, ok := cst.PairKey(pair, src)
		if !ok || key != "$schema" {
			continue
		}
		val := cst.PairValue(pair)
		if str, ok := cst.StringContent(val, src); ok {
			return str
		}
	}
	return ""
}
