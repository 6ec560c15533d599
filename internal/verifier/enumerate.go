package verifier

import (
	"fmt"

	"verity/internal/ir"
)

// enumerator walks one function's CFG collecting basic paths. The working
// statement list is the only mutable state; each block appends while it is
// being visited and truncates back on return, so sibling successors see the
// same prefix.
type enumerator struct {
	program *ir.Program
	fn      *ir.Function

	headBlock ir.Block
	headConds []ir.Expr
	headRank  []ir.Expr

	stmts []ir.Stmt
	paths []*BasicPath
}

// EnumeratePaths emits every basic path of fn: one DFS starts at the
// precondition block and one at each loop head, and each stops at the next
// cut-point or at an assert or call statement. Cut-points break paths, so a
// well-formed CFG (every cycle passes through a loop head) yields a finite
// enumeration.
func EnumeratePaths(program *ir.Program, fn *ir.Function) ([]*BasicPath, error) {
	e := &enumerator{program: program, fn: fn, paths: make([]*BasicPath, 0)}

	e.headBlock = fn.Pre
	e.headConds = fn.Pre.Conditions
	e.headRank = fn.Pre.Rankings
	if err := e.walk(fn.Pre, 0); err != nil {
		return nil, err
	}

	for _, b := range fn.Blocks {
		head, ok := b.(*ir.LoopHeadBlock)
		if !ok {
			continue
		}
		e.headBlock = head
		e.headConds = head.Invariants
		e.headRank = head.Rankings
		if err := e.walk(head, 0); err != nil {
			return nil, err
		}
	}

	return e.paths, nil
}

func (e *enumerator) walk(b ir.Block, step int) error {
	if step > 0 {
		switch block := b.(type) {
		case *ir.PostconditionBlock:
			e.emit(b, block.Conditions, nil)
			return nil
		case *ir.LoopHeadBlock:
			e.emit(b, block.Invariants, block.Rankings)
			return nil
		case *ir.PreconditionBlock:
			return fmt.Errorf("function %s: precondition block %s reached mid-path", e.fn.Name, block.Name)
		}
	}

	mark := len(e.stmts)
	for _, s := range b.Statements() {
		switch stmt := s.(type) {
		case *ir.AssumeStmt, *ir.AssignStmt, *ir.SubscriptAssignStmt:
			e.stmts = append(e.stmts, s)

		case *ir.AssertStmt:
			// The assert ends a path but imposes no termination obligation,
			// and it is a pure check: scanning continues without assuming the
			// just-asserted predicate.
			e.emit(b, []ir.Expr{stmt.Pred}, nil)

		case *ir.CallStmt:
			if err := e.call(b, stmt); err != nil {
				return err
			}

		default:
			return fmt.Errorf("function %s: block %s: unknown statement kind %T", e.fn.Name, b.Label(), s)
		}
	}

	for _, succ := range b.Successors() {
		if err := e.walk(succ, step+1); err != nil {
			return err
		}
	}

	e.stmts = e.stmts[:mark]
	return nil
}

// call emits the path ending at a call site — the obligation that the
// callee's precondition holds and that its entry measure has decreased —
// then continues the scan under the callee's postcondition.
func (e *enumerator) call(b ir.Block, stmt *ir.CallStmt) error {
	callee := e.program.Function(stmt.Callee)
	if callee == nil {
		return fmt.Errorf("function %s: block %s: call to undefined function %s", e.fn.Name, b.Label(), stmt.Callee)
	}
	if len(stmt.Args) != len(callee.Params) {
		return fmt.Errorf("function %s: block %s: call to %s passes %d arguments, callee takes %d",
			e.fn.Name, b.Label(), stmt.Callee, len(stmt.Args), len(callee.Params))
	}
	if len(stmt.Results) != len(callee.Returns) {
		return fmt.Errorf("function %s: block %s: call to %s binds %d results, callee returns %d",
			e.fn.Name, b.Label(), stmt.Callee, len(stmt.Results), len(callee.Returns))
	}

	actuals := make([]ir.Expr, len(stmt.Args))
	for i, arg := range stmt.Args {
		actuals[i] = &ir.VarRef{Var: arg}
	}
	sub := ir.SubstVars(callee.Params, actuals)

	e.emit(b, substAll(callee.Pre.Conditions, sub), substAll(callee.Pre.Rankings, sub))

	// The callee's contract stands in for its body: assume the conjoined
	// postcondition with formals replaced by actuals and return variables
	// replaced by the call's left-hand sides.
	for i, ret := range callee.Returns {
		sub[ret.Name] = &ir.VarRef{Var: stmt.Results[i]}
	}
	post := ir.BigAnd(callee.Post.Conditions).Subst(sub)
	e.stmts = append(e.stmts, &ir.AssumeStmt{Cond: post})
	return nil
}

func (e *enumerator) emit(tail ir.Block, tailConds, tailRank []ir.Expr) {
	e.paths = append(e.paths, newBasicPath(
		e.headBlock, tail, e.headConds, tailConds, e.headRank, tailRank, e.stmts))
}

func substAll(exprs []ir.Expr, sub map[string]ir.Expr) []ir.Expr {
	out := make([]ir.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = e.Subst(sub)
	}
	return out
}
