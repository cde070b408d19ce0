// Package diagnostics combines CST syntax errors and validator findings
// into the LSP Diagnostic list published for a document, mirroring
// validate_and_publish's two-stage approach in the reference server:
// syntax errors first (schema validation is meaningless on broken JSON),
// then schema diagnostics when the document parses cleanly.
package diagnostics

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/document"
	"github.com/kaptinlin/jsonls/internal/jsonschema"
	"github.com/kaptinlin/jsonls/internal/validator"
)

const source = "jsonls"

// SyntaxDiagnostics walks a tree for ERROR nodes and MISSING tokens,
// reporting each as an error-severity diagnostic.
func SyntaxDiagnostics(doc *document.Document) []protocol.Diagnostic {
	tree := doc.Tree()
	if tree == nil {
		return nil
	}
	var diags []protocol.Diagnostic
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			diags = append(diags, protocol.Diagnostic{
				Range:    byteRangeToLSPRange(doc, n.StartByte(), n.EndByte()),
				Severity: protocol.DiagnosticSeverityError,
				Source:   source,
				Message:  "Syntax error",
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return diags
}

// Validate runs the schema validator and converts its findings to LSP
// Diagnostics with ranges translated through the document's line index.
func Validate(doc *document.Document, v *validator.Validator, schema *jsonschema.Schema) []protocol.Diagnostic {
	if schema == nil {
		return nil
	}
	errs := v.Validate(schema, doc.Tree(), doc.Text)
	diags := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		diags = append(diags, protocol.Diagnostic{
			Range:    byteRangeToLSPRange(doc, e.StartByte, e.EndByte),
			Severity: severityToLSP(e.Severity),
			Source:   source,
			Code:     e.Code,
			Message:  e.Message,
		})
	}
	return diags
}

func severityToLSP(s validator.Severity) protocol.DiagnosticSeverity {
	if s == validator.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func byteRangeToLSPRange(doc *document.Document, start, end uint32) protocol.Range {
	sLine, sChar := doc.LineIndex().PositionOf(doc.Text, start)
	eLine, eChar := doc.LineIndex().PositionOf(doc.Text, end)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(sLine), Character: uint32(sChar)},
		End:   protocol.Position{Line: uint32(eLine), Character: uint32(eChar)},
	}
}
