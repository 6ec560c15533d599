package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	program, err := ParseSource("test.vt", `
fun id(x: int): (r: int)
    ensures r == x
{
    r = x;
}
`)
	require.NoError(t, err)
	require.Len(t, program.Items, 1)
	assert.Equal(t, "id", program.Items[0].Function.Name.Value)
}

func TestParseSourceReportsSyntaxErrors(t *testing.T) {
	_, err := ParseSource("test.vt", "fun broken(")
	assert.Error(t, err)
}

func TestParseFormula(t *testing.T) {
	expr, err := ParseFormula("repl", "x + 1 > 0 ==> x >= 0")
	require.NoError(t, err)
	require.NotNil(t, expr.Implies.Right)
}

func TestParseFormulaRejectsStatements(t *testing.T) {
	_, err := ParseFormula("repl", "x = 1;")
	assert.Error(t, err)
}
