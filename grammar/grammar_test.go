package grammar

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countSource = `// the canonical counting loop
predicate bounded(i: int, n: int) = 0 <= i && i <= n;

fun count(n: int): (i: int)
    requires n >= 0
    ensures i == n
{
    i = 0;
    while (i < n)
        invariant bounded(i, n)
        decreases n - i
    {
        i = i + 1;
    }
}
`

func parseSource(t *testing.T, source string) *Program {
	t.Helper()
	parser, err := BuildParser()
	require.NoError(t, err)
	program, err := parser.ParseString("test.vt", source)
	require.NoError(t, err)
	return program
}

func TestParseCountingLoop(t *testing.T) {
	program := parseSource(t, countSource)

	var fn *Function
	var pred *PredicateDef
	for _, item := range program.Items {
		if item.Function != nil {
			fn = item.Function
		}
		if item.Predicate != nil {
			pred = item.Predicate
		}
	}
	require.NotNil(t, fn)
	require.NotNil(t, pred)

	assert.Equal(t, "count", fn.Name.Value)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0].Name.Value)
	require.Len(t, fn.Returns, 1)
	assert.Equal(t, "i", fn.Returns[0].Name.Value)
	assert.Len(t, fn.Requires, 1)
	assert.Len(t, fn.Ensures, 1)

	require.Len(t, fn.Body.Statements, 2)
	require.NotNil(t, fn.Body.Statements[1].While)
	loop := fn.Body.Statements[1].While
	assert.Len(t, loop.Invariants, 1)
	assert.Len(t, loop.Decreases, 1)

	assert.Equal(t, "bounded", pred.Name.Value)
	assert.Len(t, pred.Params, 2)
}

func TestParseArrayTypeAndSubscript(t *testing.T) {
	program := parseSource(t, `
fun store7(a: int[])
    requires length(a) > 0
    ensures a[0] == 7
{
    a[0] = 7;
}
`)
	fn := program.Items[0].Function
	require.NotNil(t, fn)
	assert.True(t, fn.Params[0].Type.Array)
	require.Len(t, fn.Body.Statements, 1)
	assign := fn.Body.Statements[0].Assign
	require.NotNil(t, assign)
	assert.NotNil(t, assign.Index)
}

func TestParseCallStatementVersusAssignment(t *testing.T) {
	program := parseSource(t, `
fun caller(): (y: int, ok: bool)
{
    let t: int = 3;
    y = f(t);
    ok = true;
}
`)
	fn := program.Items[0].Function
	require.Len(t, fn.Body.Statements, 3)
	assert.NotNil(t, fn.Body.Statements[0].Let)
	assert.NotNil(t, fn.Body.Statements[1].Call, "y = f(t); is a call statement")
	assert.NotNil(t, fn.Body.Statements[2].Assign, "ok = true; is a plain assignment")
}

func TestParseMultipleResults(t *testing.T) {
	program := parseSource(t, `
fun pair(): (a: int, b: int)
{
    a = 1;
    b = 2;
}

fun caller(): (x: int, y: int)
{
    x, y = pair();
}
`)
	caller := program.Items[1].Function
	call := caller.Body.Statements[0].Call
	require.NotNil(t, call)
	assert.Len(t, call.Lhs, 2)
}

func TestParseImplicationIsRightAssociative(t *testing.T) {
	program := parseSource(t, `
fun f(a: bool, b: bool, c: bool)
    requires a ==> b ==> c
{
}
`)
	req := program.Items[0].Function.Requires[0]
	require.NotNil(t, req.Implies.Right)
	assert.NotNil(t, req.Implies.Right.Right, "a ==> (b ==> c)")
}

func TestParseIfElse(t *testing.T) {
	program := parseSource(t, `
fun abs(x: int): (r: int)
    ensures r >= 0
{
    if (x < 0) {
        r = -x;
    } else {
        r = x;
    }
}
`)
	stmt := program.Items[0].Function.Body.Statements[0]
	require.NotNil(t, stmt.If)
	assert.NotNil(t, stmt.If.Else)
}

func TestParseReturnAndAssume(t *testing.T) {
	program := parseSource(t, `
fun early(x: int)
{
    assume x > 0;
    if (x == 1) {
        return;
    }
    assert x > 1;
}
`)
	stmts := program.Items[0].Function.Body.Statements
	require.Len(t, stmts, 3)
	assert.NotNil(t, stmts[0].Assume)
	require.NotNil(t, stmts[1].If)
	assert.NotNil(t, stmts[1].If.Then.Statements[0].Return)
	assert.NotNil(t, stmts[2].Assert)
}

func TestParseErrorHasPosition(t *testing.T) {
	parser, err := BuildParser()
	require.NoError(t, err)
	_, err = parser.ParseString("bad.vt", "fun ( {")
	require.Error(t, err)

	var perr participle.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Position().Line)
}

func TestPrinterRoundTrip(t *testing.T) {
	program := parseSource(t, countSource)
	regenerated := program.String()

	// The normalized output must parse back to the same normalized output.
	again := parseSource(t, regenerated)
	assert.Equal(t, regenerated, again.String())
}
