package verifier

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verity/internal/ir"
	"verity/internal/solver"
)

// scriptedOracle answers queries from a fixed script and records the
// predicates it was asked to define.
type scriptedOracle struct {
	answers []solver.Outcome
	next    int
	defined []string
	queries []string
}

func (o *scriptedOracle) DefinePredicate(pred *ir.Predicate) error {
	o.defined = append(o.defined, pred.Name)
	return nil
}

func (o *scriptedOracle) CheckValid(formula ir.Expr) (solver.Outcome, error) {
	o.queries = append(o.queries, formula.String())
	if o.next < len(o.answers) {
		outcome := o.answers[o.next]
		o.next++
		return outcome, nil
	}
	return solver.Outcome{Verdict: solver.VerdictValid}, nil
}

func allValid() *scriptedOracle {
	return &scriptedOracle{}
}

func TestApplyAllValidIsOK(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}

	report, err := Apply(program, allValid(), Options{})
	require.NoError(t, err)
	assert.Equal(t, ResultOK, report.Result)
	assert.Empty(t, report.Failures)
	assert.Greater(t, int(report.Result), 0)
}

func TestApplyInvalidVCIsFail(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}

	oracle := &scriptedOracle{answers: []solver.Outcome{
		{Verdict: solver.VerdictValid},
		{Verdict: solver.VerdictInvalid, Model: "(model)"},
	}}
	report, err := Apply(program, oracle, Options{})
	require.NoError(t, err)
	assert.Equal(t, ResultFail, report.Result)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "(model)", report.Failures[0].Outcome.Model)
	assert.Less(t, int(report.Result), 0)
}

func TestApplyUnknownSurfacesAsUnknown(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}

	oracle := &scriptedOracle{answers: []solver.Outcome{
		{Verdict: solver.VerdictUnknown},
	}}
	report, err := Apply(program, oracle, Options{})
	require.NoError(t, err)
	assert.Equal(t, ResultUnknown, report.Result)
	assert.Equal(t, 0, int(report.Result))
}

func TestApplyInvalidDominatesUnknown(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}

	oracle := &scriptedOracle{answers: []solver.Outcome{
		{Verdict: solver.VerdictUnknown},
		{Verdict: solver.VerdictInvalid},
	}}
	report, err := Apply(program, oracle, Options{})
	require.NoError(t, err)
	assert.Equal(t, ResultFail, report.Result)
}

func TestApplyDefinesPredicatesOnce(t *testing.T) {
	x := intVar("x")
	fn := linearFunction("set", nil, nil, nil)
	program := &ir.Program{
		Functions: []*ir.Function{fn},
		Predicates: []*ir.Predicate{
			{Name: "positive", Params: []*ir.Variable{x}, Body: ir.NewGt(ref(x), lit(0))},
			{Name: "negative", Params: []*ir.Variable{x}, Body: lt(ref(x), lit(0))},
		},
	}

	oracle := allValid()
	_, err := Apply(program, oracle, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"positive", "negative"}, oracle.defined)
}

func TestApplyIsIdempotent(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}

	first, err := Apply(program, allValid(), Options{})
	require.NoError(t, err)
	second, err := Apply(program, allValid(), Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Result, second.Result)
}

func TestApplyRejectsMalformedIR(t *testing.T) {
	fn := linearFunction("bad", nil, nil, nil)
	fn.Pre.Conditions = []ir.Expr{lit(1)}
	_, err := Apply(&ir.Program{Functions: []*ir.Function{fn}}, allValid(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed IR")
}

func TestApplyVerboseWritesTrace(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}

	var trace bytes.Buffer
	_, err := Apply(program, allValid(), Options{Trace: &trace, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "partial correctness")
	assert.Contains(t, trace.String(), "lexicographic decrease")
}

func TestWritePathRendersAnnotations(t *testing.T) {
	fn, _, _ := countingLoop()
	program := &ir.Program{Functions: []*ir.Function{fn}}
	paths, err := EnumeratePaths(program, fn)
	require.NoError(t, err)

	var sb strings.Builder
	WritePath(&sb, paths[1])
	out := sb.String()
	assert.Contains(t, out, "path loop -> loop")
	assert.Contains(t, out, "head# (n - i)")
	assert.Contains(t, out, "assume (i < n)")
}
