package lsp

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verity/internal/errors"
	"verity/internal/parser"
	"verity/internal/semantic"
)

func TestConvertSemanticErrors(t *testing.T) {
	diags := ConvertSemanticErrors([]errors.CompilerError{
		{
			Level:    errors.Error,
			Code:     errors.ErrorUndeclaredVariable,
			Message:  "undeclared variable 'y'",
			Position: lexer.Position{Line: 3, Column: 5},
			Length:   1,
		},
	})
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, uint32(2), d.Range.Start.Line)
	assert.Equal(t, uint32(4), d.Range.Start.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, "verity", *d.Source)
	assert.Equal(t, "undeclared variable 'y'", d.Message)
	require.NotNil(t, d.Code)
	assert.Equal(t, errors.ErrorUndeclaredVariable, d.Code.Value)
}

func TestConvertParseError(t *testing.T) {
	_, err := parser.ParseSource("broken.vt", "fun (")
	require.Error(t, err)

	diags := ConvertParseError(err)
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
	assert.NotEmpty(t, diags[0].Message)
}

func TestDiagnosticsPipeline(t *testing.T) {
	// The handler's per-change pipeline: parse, then analyze.
	source := `
fun f(count: int)
{
    assert counter > 0;
}
`
	program, err := parser.ParseSource("test.vt", source)
	require.NoError(t, err)
	semanticErrors := semantic.NewAnalyzer().Analyze(program)
	require.NotEmpty(t, semanticErrors)

	diags := ConvertSemanticErrors(semanticErrors)
	require.Len(t, diags, len(semanticErrors))
	assert.Contains(t, diags[0].Message, "counter")
}

func TestURIConversion(t *testing.T) {
	path, err := uriToPath("file:///tmp/example.vt")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/example.vt", path)
}

func TestNewHandlerInitializesDocumentMaps(t *testing.T) {
	h := NewVerityHandler()
	assert.NotNil(t, h.content)
	assert.NotNil(t, h.programs)
}
