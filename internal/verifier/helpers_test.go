package verifier

import (
	"verity/internal/ir"
)

func intVar(name string) *ir.Variable {
	return &ir.Variable{Name: name, Type: &ir.IntType{}}
}

func ref(v *ir.Variable) ir.Expr {
	return &ir.VarRef{Var: v}
}

func lit(n int64) ir.Expr {
	return &ir.IntLit{Value: n}
}

func sub(a, b ir.Expr) ir.Expr {
	return &ir.Binary{Op: ir.OpSub, Left: a, Right: b}
}

func lt(a, b ir.Expr) ir.Expr {
	return &ir.Binary{Op: ir.OpLt, Left: a, Right: b}
}

func le(a, b ir.Expr) ir.Expr {
	return &ir.Binary{Op: ir.OpLe, Left: a, Right: b}
}

func add(a, b ir.Expr) ir.Expr {
	return &ir.Binary{Op: ir.OpAdd, Left: a, Right: b}
}

// linearFunction builds pre -> b1 -> post around the given body statements.
func linearFunction(name string, preConds, postConds []ir.Expr, body []ir.Stmt) *ir.Function {
	pre := &ir.PreconditionBlock{Name: "pre", Conditions: preConds}
	post := &ir.PostconditionBlock{Name: "post", Conditions: postConds}
	b := &ir.BasicBlock{Name: "b1", Stmts: body, Succs: []ir.Block{post}}
	pre.Succs = []ir.Block{b}
	return &ir.Function{Name: name, Pre: pre, Post: post, Blocks: []ir.Block{b}}
}

// countingLoop builds the canonical counting loop:
//
//	pre: n >= 0
//	b1:  i = 0
//	loop: invariant 0 <= i && i <= n, decreases n - i
//	b2:  assume i < n; i = i + 1  -> loop
//	b3:  assume !(i < n)          -> post
//	post: i == n
func countingLoop() (*ir.Function, *ir.Variable, *ir.Variable) {
	n := intVar("n")
	i := intVar("i")

	pre := &ir.PreconditionBlock{Name: "pre", Conditions: []ir.Expr{ir.NewGe(ref(n), lit(0))}}
	post := &ir.PostconditionBlock{Name: "post", Conditions: []ir.Expr{ir.NewEq(ref(i), ref(n))}}

	head := &ir.LoopHeadBlock{
		Name:       "loop",
		Invariants: []ir.Expr{ir.NewAnd(le(lit(0), ref(i)), le(ref(i), ref(n)))},
		Rankings:   []ir.Expr{sub(ref(n), ref(i))},
	}

	b1 := &ir.BasicBlock{Name: "b1", Stmts: []ir.Stmt{
		&ir.AssignStmt{Target: i, Value: lit(0)},
	}}
	b2 := &ir.BasicBlock{Name: "b2", Stmts: []ir.Stmt{
		&ir.AssumeStmt{Cond: lt(ref(i), ref(n))},
		&ir.AssignStmt{Target: i, Value: add(ref(i), lit(1))},
	}}
	b3 := &ir.BasicBlock{Name: "b3", Stmts: []ir.Stmt{
		&ir.AssumeStmt{Cond: ir.NewNot(lt(ref(i), ref(n)))},
	}}

	pre.Succs = []ir.Block{b1}
	b1.Succs = []ir.Block{head}
	head.Succs = []ir.Block{b2, b3}
	b2.Succs = []ir.Block{head}
	b3.Succs = []ir.Block{post}

	fn := &ir.Function{
		Name:   "count",
		Params: []*ir.Variable{n},
		Pre:    pre,
		Post:   post,
		Blocks: []ir.Block{b1, head, b2, b3},
	}
	return fn, n, i
}
