package lsp

import (
	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"verity/internal/errors"
)

// ConvertParseError transforms a parser error into LSP diagnostics for IDE
// display.
func ConvertParseError(err error) []protocol.Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return []protocol.Diagnostic{{
			Range:    protocol.Range{},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("verity-parser"),
			Message:  err.Error(),
		}}
	}

	pos := pe.Position()
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      lineIndex(pos.Line),
				Character: columnIndex(pos.Column),
			},
			End: protocol.Position{
				Line:      lineIndex(pos.Line),
				Character: columnIndex(pos.Column) + 5, // Rough span for visibility
			},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("verity-parser"),
		Message:  pe.Message(),
	}}
}

// ConvertSemanticErrors transforms analyzer diagnostics into LSP diagnostics
// for IDE display.
func ConvertSemanticErrors(errs []errors.CompilerError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, err := range errs {
		length := err.Length
		if length <= 0 {
			length = 1
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      lineIndex(err.Position.Line),
					Character: columnIndex(err.Position.Column),
				},
				End: protocol.Position{
					Line:      lineIndex(err.Position.Line),
					Character: columnIndex(err.Position.Column) + uint32(length),
				},
			},
			Severity: ptrSeverity(severityOf(err.Level)),
			Source:   ptrString("verity"),
			Code:     ptrCode(err.Code),
			Message:  err.Message,
		})
	}
	return diagnostics
}

func severityOf(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	}
	return protocol.DiagnosticSeverityError
}

// lineIndex converts a 1-based source line to the protocol's 0-based index.
func lineIndex(line int) uint32 {
	if line <= 0 {
		return 0
	}
	return uint32(line - 1)
}

func columnIndex(column int) uint32 {
	if column <= 0 {
		return 0
	}
	return uint32(column - 1)
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}

func ptrCode(code string) *protocol.IntegerOrString {
	if code == "" {
		return nil
	}
	return &protocol.IntegerOrString{Value: code}
}
