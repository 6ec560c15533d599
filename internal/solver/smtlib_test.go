package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verity/internal/ir"
)

func intVar(name string) *ir.Variable {
	return &ir.Variable{Name: name, Type: &ir.IntType{}}
}

func arrayVar(name string) *ir.Variable {
	return &ir.Variable{Name: name, Type: &ir.ArrayType{Elem: &ir.IntType{}}}
}

func TestEmitArithmetic(t *testing.T) {
	x := &ir.VarRef{Var: intVar("x")}
	e := ir.NewGe(&ir.Binary{Op: ir.OpAdd, Left: x, Right: &ir.IntLit{Value: 1}}, &ir.IntLit{Value: 0})

	got, err := emitExpr(e)
	require.NoError(t, err)
	assert.Equal(t, "(>= (+ x 1) 0)", got)
}

func TestEmitConnectives(t *testing.T) {
	p := &ir.BoolLit{Value: true}
	q := &ir.BoolLit{Value: false}

	var ne ir.Expr = &ir.Binary{Op: ir.OpNe, Left: p, Right: q}
	cases := map[string]ir.Expr{
		"(=> true false)":       ir.NewImplies(p, q),
		"(and true false)":      ir.NewAnd(p, q),
		"(or true false)":       ir.NewOr(p, q),
		"(not true)":            ir.NewNot(p),
		"(distinct true false)": ne,
	}
	for want, e := range cases {
		got, err := emitExpr(e)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEmitDivMod(t *testing.T) {
	x := &ir.VarRef{Var: intVar("x")}
	div := &ir.Binary{Op: ir.OpDiv, Left: x, Right: &ir.IntLit{Value: 2}}
	mod := &ir.Binary{Op: ir.OpMod, Left: x, Right: &ir.IntLit{Value: 2}}

	gotDiv, err := emitExpr(div)
	require.NoError(t, err)
	assert.Equal(t, "(div x 2)", gotDiv)

	gotMod, err := emitExpr(mod)
	require.NoError(t, err)
	assert.Equal(t, "(mod x 2)", gotMod)
}

func TestEmitNegativeLiteral(t *testing.T) {
	got, err := emitExpr(&ir.IntLit{Value: -5})
	require.NoError(t, err)
	assert.Equal(t, "(- 5)", got)
}

func TestEmitArrayTheory(t *testing.T) {
	a := &ir.VarRef{Var: arrayVar("a")}
	store := &ir.Store{
		Array:  a,
		Index:  &ir.IntLit{Value: 0},
		Value:  &ir.IntLit{Value: 7},
		Length: &ir.Length{Array: a},
	}
	sel := &ir.Select{Array: store, Index: &ir.IntLit{Value: 0}}

	got, err := emitExpr(sel)
	require.NoError(t, err)
	assert.Equal(t, "(select (arr-elems (mk-arr (store (arr-elems a) 0 7) (arr-len a))) 0)", got)

	length, err := emitExpr(&ir.Length{Array: store})
	require.NoError(t, err)
	assert.Equal(t, "(arr-len (mk-arr (store (arr-elems a) 0 7) (arr-len a)))", length)
}

func TestEmitPredicateDefinition(t *testing.T) {
	x := intVar("x")
	a := arrayVar("a")
	pred := &ir.Predicate{
		Name:   "inBounds",
		Params: []*ir.Variable{x, a},
		Body: ir.NewAnd(
			ir.NewGe(&ir.VarRef{Var: x}, &ir.IntLit{Value: 0}),
			&ir.Binary{Op: ir.OpLt, Left: &ir.VarRef{Var: x}, Right: &ir.Length{Array: &ir.VarRef{Var: a}}},
		),
	}

	got, err := emitPredicate(pred)
	require.NoError(t, err)
	assert.Equal(t, "(define-fun inBounds ((x Int) (a IntArr)) Bool (and (>= x 0) (< x (arr-len a))))", got)
}

func TestBuildScriptShape(t *testing.T) {
	x := intVar("x")
	b := &ir.Variable{Name: "b", Type: &ir.BoolType{}}
	formula := ir.NewImplies(&ir.VarRef{Var: b}, ir.NewGe(&ir.VarRef{Var: x}, &ir.IntLit{Value: 0}))

	script, err := BuildScript([]string{"(define-fun p ((y Int)) Bool (> y 0))"}, formula)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(script), "\n")
	assert.Equal(t, "(set-option :produce-models true)", lines[0])
	assert.Contains(t, script, "(declare-datatypes ((IntArr 0))")
	assert.Contains(t, script, "(define-fun p ((y Int)) Bool (> y 0))")

	// Free variables are declared sorted by name.
	bIdx := strings.Index(script, "(declare-const b Bool)")
	xIdx := strings.Index(script, "(declare-const x Int)")
	require.GreaterOrEqual(t, bIdx, 0)
	require.GreaterOrEqual(t, xIdx, 0)
	assert.Less(t, bIdx, xIdx)

	assert.Contains(t, script, "(assert (not (=> b (>= x 0))))")
	assert.Contains(t, script, "(check-sat)")
}

func TestSortOfRejectsUnknownType(t *testing.T) {
	_, err := sortOf(nil)
	assert.Error(t, err)
}
