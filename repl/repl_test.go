package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verity/internal/ir"
	"verity/internal/solver"
)

type fixedOracle struct {
	outcome solver.Outcome
	queries []string
}

func (o *fixedOracle) DefinePredicate(pred *ir.Predicate) error { return nil }

func (o *fixedOracle) CheckValid(formula ir.Expr) (solver.Outcome, error) {
	o.queries = append(o.queries, formula.String())
	return o.outcome, nil
}

func TestReplChecksDeclaredFormula(t *testing.T) {
	oracle := &fixedOracle{outcome: solver.Outcome{Verdict: solver.VerdictValid}}
	in := strings.NewReader("var x: int;\nx >= 0 ==> x + 1 > 0\n")
	var out strings.Builder

	Start(in, &out, oracle)

	require.Len(t, oracle.queries, 1)
	assert.Contains(t, oracle.queries[0], "==>")
	assert.Contains(t, out.String(), "valid")
}

func TestReplReportsModelOnInvalid(t *testing.T) {
	oracle := &fixedOracle{outcome: solver.Outcome{
		Verdict: solver.VerdictInvalid,
		Model:   "(define-fun x () Int 0)",
	}}
	in := strings.NewReader("var x: int;\nx > 0\n")
	var out strings.Builder

	Start(in, &out, oracle)

	assert.Contains(t, out.String(), "invalid")
	assert.Contains(t, out.String(), "define-fun x")
}

func TestReplRejectsUndeclaredVariables(t *testing.T) {
	oracle := &fixedOracle{}
	in := strings.NewReader("y > 0\n")
	var out strings.Builder

	Start(in, &out, oracle)

	assert.Empty(t, oracle.queries)
	assert.Contains(t, out.String(), "undeclared variable y")
}

func TestReplRejectsNonBoolFormula(t *testing.T) {
	oracle := &fixedOracle{}
	in := strings.NewReader("var x: int;\nx + 1\n")
	var out strings.Builder

	Start(in, &out, oracle)

	assert.Empty(t, oracle.queries)
	assert.Contains(t, out.String(), "formula must be bool")
}

func TestReplDeclarationErrors(t *testing.T) {
	oracle := &fixedOracle{}
	in := strings.NewReader("var x float;\nvar y: float;\n")
	var out strings.Builder

	Start(in, &out, oracle)

	assert.Contains(t, out.String(), "expected 'var name: type;'")
	assert.Contains(t, out.String(), `unsupported type "float"`)
}
