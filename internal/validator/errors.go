// Package validator walks a document's concrete syntax tree alongside a
// compiled schema, producing ranged diagnostics the same way the document's
// own tree-sitter parser reports syntax errors - every validation failure
// is tied to the exact CST node that violated the schema, not just "the
// document".
package validator

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Severity mirrors the handful of diagnostic severities LSP defines that
// this server actually emits.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

// ValidationError is one schema violation, tied to the CST node that
// failed, in the style of the teacher library's EvaluationError but
// carrying a byte range instead of an instance-location JSON pointer
// string, since diagnostics need LSP ranges rather than pointer paths.
type ValidationError struct {
	Keyword    string
	Code       string
	Message    string
	Params     map[string]interface{}
	Severity   Severity
	StartByte  uint32
	EndByte    uint32
}

func newError(node *sitter.Node, keyword, code, message string, params map[string]interface{}) *ValidationError {
	e := &ValidationError{
		Keyword:  keyword,
		Code:     code,
		Message:  message,
		Params:   params,
		Severity: SeverityError,
	}
	if node != nil {
		e.StartByte = node.StartByte()
		e.EndByte = node.EndByte()
	}
	return e
}
