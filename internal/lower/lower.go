package lower

import (
	"fmt"

	"verity/grammar"
	"verity/internal/ir"
	"verity/internal/semantic"
)

// Lowering translates a checked surface program into the verification IR,
// inserting cut-points: every function gets precondition and postcondition
// blocks, and every while loop a loop-head block carrying its invariants and
// measure. Lowering assumes the analyzer accepted the program; anything it
// still cannot express is a fatal error, not a diagnostic.

// LowerProgram lowers every predicate and function.
func LowerProgram(program *grammar.Program) (*ir.Program, error) {
	out := &ir.Program{}
	for _, item := range program.Items {
		switch {
		case item.Predicate != nil:
			pred, err := lowerPredicate(item.Predicate)
			if err != nil {
				return nil, err
			}
			out.Predicates = append(out.Predicates, pred)
		case item.Function != nil:
			fn, err := lowerFunction(item.Function, program)
			if err != nil {
				return nil, err
			}
			out.Functions = append(out.Functions, fn)
		}
	}
	return out, nil
}

func lowerPredicate(pred *grammar.PredicateDef) (*ir.Predicate, error) {
	scope := make(map[string]*ir.Variable)
	params, err := lowerParams(pred.Params, scope)
	if err != nil {
		return nil, fmt.Errorf("predicate %s: %w", pred.Name.Value, err)
	}
	body, err := LowerExpr(pred.Body, scope)
	if err != nil {
		return nil, fmt.Errorf("predicate %s: %w", pred.Name.Value, err)
	}
	return &ir.Predicate{Name: pred.Name.Value, Params: params, Body: body}, nil
}

// lowerer builds one function's CFG. current is the open basic block, nil
// while the active branch has returned.
type lowerer struct {
	program *grammar.Program
	fn      *ir.Function
	post    *ir.PostconditionBlock
	scope   map[string]*ir.Variable
	current *ir.BasicBlock
	nblocks int
	ntemps  int
}

func lowerFunction(fn *grammar.Function, program *grammar.Program) (*ir.Function, error) {
	l := &lowerer{program: program, scope: make(map[string]*ir.Variable)}

	params, err := lowerParams(fn.Params, l.scope)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name.Value, err)
	}
	returns, err := lowerParams(fn.Returns, l.scope)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name.Value, err)
	}

	requires, err := l.lowerExprs(fn.Requires)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name.Value, err)
	}
	ensures, err := l.lowerExprs(fn.Ensures)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name.Value, err)
	}
	decreases, err := l.lowerExprs(fn.Decreases)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name.Value, err)
	}

	pre := &ir.PreconditionBlock{Name: "pre", Conditions: requires, Rankings: decreases}
	l.post = &ir.PostconditionBlock{Name: "post", Conditions: ensures}
	l.fn = &ir.Function{
		Name:    fn.Name.Value,
		Params:  params,
		Returns: returns,
		Pre:     pre,
		Post:    l.post,
	}

	entry := l.newBlock()
	pre.Succs = []ir.Block{entry}
	l.current = entry

	if err := l.lowerBlock(fn.Body); err != nil {
		return nil, fmt.Errorf("function %s: %w", fn.Name.Value, err)
	}
	if l.current != nil {
		l.current.Succs = append(l.current.Succs, l.post)
	}
	return l.fn, nil
}

func (l *lowerer) newBlock() *ir.BasicBlock {
	l.nblocks++
	b := &ir.BasicBlock{Name: fmt.Sprintf("b%d", l.nblocks)}
	l.fn.Blocks = append(l.fn.Blocks, b)
	return b
}

func (l *lowerer) newLoopHead(invariants, rankings []ir.Expr) *ir.LoopHeadBlock {
	l.nblocks++
	b := &ir.LoopHeadBlock{
		Name:       fmt.Sprintf("loop%d", l.nblocks),
		Invariants: invariants,
		Rankings:   rankings,
	}
	l.fn.Blocks = append(l.fn.Blocks, b)
	return b
}

func (l *lowerer) emit(s ir.Stmt) {
	l.current.Stmts = append(l.current.Stmts, s)
}

func (l *lowerer) lowerBlock(block *grammar.BlockStmt) error {
	for _, s := range block.Statements {
		if s.Comment != nil {
			continue
		}
		if l.current == nil {
			return fmt.Errorf("statement after return")
		}
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) lowerStmt(s *grammar.Stmt) error {
	switch {
	case s.Let != nil:
		v := &ir.Variable{Name: s.Let.Name.Value, Type: lowerType(s.Let.Type)}
		value, err := LowerExpr(s.Let.Value, l.scope)
		if err != nil {
			return err
		}
		l.scope[v.Name] = v
		l.emit(&ir.AssignStmt{Target: v, Value: value})

	case s.Assert != nil:
		cond, err := LowerExpr(s.Assert.Cond, l.scope)
		if err != nil {
			return err
		}
		l.emit(&ir.AssertStmt{Pred: cond})

	case s.Assume != nil:
		cond, err := LowerExpr(s.Assume.Cond, l.scope)
		if err != nil {
			return err
		}
		l.emit(&ir.AssumeStmt{Cond: cond})

	case s.If != nil:
		return l.lowerIf(s.If)

	case s.While != nil:
		return l.lowerWhile(s.While)

	case s.Return != nil:
		l.current.Succs = append(l.current.Succs, l.post)
		l.current = nil

	case s.Call != nil:
		return l.lowerCall(s.Call)

	case s.Assign != nil:
		return l.lowerAssign(s.Assign)
	}
	return nil
}

func (l *lowerer) lowerIf(s *grammar.IfStmt) error {
	cond, err := LowerExpr(s.Cond, l.scope)
	if err != nil {
		return err
	}

	thenEntry := l.newBlock()
	thenEntry.Stmts = append(thenEntry.Stmts, &ir.AssumeStmt{Cond: cond})
	elseEntry := l.newBlock()
	elseEntry.Stmts = append(elseEntry.Stmts, &ir.AssumeStmt{Cond: ir.NewNot(cond)})
	l.current.Succs = append(l.current.Succs, thenEntry, elseEntry)

	l.current = thenEntry
	if err := l.lowerBlock(s.Then); err != nil {
		return err
	}
	thenEnd := l.current

	l.current = elseEntry
	if s.Else != nil {
		if err := l.lowerBlock(s.Else); err != nil {
			return err
		}
	}
	elseEnd := l.current

	if thenEnd == nil && elseEnd == nil {
		l.current = nil
		return nil
	}
	join := l.newBlock()
	if thenEnd != nil {
		thenEnd.Succs = append(thenEnd.Succs, join)
	}
	if elseEnd != nil {
		elseEnd.Succs = append(elseEnd.Succs, join)
	}
	l.current = join
	return nil
}

func (l *lowerer) lowerWhile(s *grammar.WhileStmt) error {
	cond, err := LowerExpr(s.Cond, l.scope)
	if err != nil {
		return err
	}
	invariants, err := l.lowerExprs(s.Invariants)
	if err != nil {
		return err
	}
	rankings, err := l.lowerExprs(s.Decreases)
	if err != nil {
		return err
	}

	head := l.newLoopHead(invariants, rankings)
	l.current.Succs = append(l.current.Succs, head)

	bodyEntry := l.newBlock()
	bodyEntry.Stmts = append(bodyEntry.Stmts, &ir.AssumeStmt{Cond: cond})
	exit := l.newBlock()
	exit.Stmts = append(exit.Stmts, &ir.AssumeStmt{Cond: ir.NewNot(cond)})
	head.Succs = []ir.Block{bodyEntry, exit}

	l.current = bodyEntry
	if err := l.lowerBlock(s.Body); err != nil {
		return err
	}
	if l.current != nil {
		l.current.Succs = append(l.current.Succs, head)
	}
	l.current = exit
	return nil
}

func (l *lowerer) lowerAssign(s *grammar.AssignStmt) error {
	target, ok := l.scope[s.Target.Value]
	if !ok {
		return fmt.Errorf("undeclared variable %s", s.Target.Value)
	}
	value, err := LowerExpr(s.Value, l.scope)
	if err != nil {
		return err
	}
	if s.Index != nil {
		index, err := LowerExpr(s.Index, l.scope)
		if err != nil {
			return err
		}
		l.emit(&ir.SubscriptAssignStmt{Array: target, Index: index, Value: value})
		return nil
	}
	l.emit(&ir.AssignStmt{Target: target, Value: value})
	return nil
}

// lowerCall resolves the unified call statement. A function callee becomes
// an IR call whose arguments are variables, binding compiler temporaries for
// expression arguments; a predicate callee is an ordinary assignment of the
// applied predicate.
func (l *lowerer) lowerCall(s *grammar.CallStmt) error {
	if fn := findFunction(l.program, s.Callee.Value); fn != nil {
		args := make([]*ir.Variable, len(s.Args))
		for i, argExpr := range s.Args {
			arg, err := LowerExpr(argExpr, l.scope)
			if err != nil {
				return err
			}
			if ref, ok := arg.(*ir.VarRef); ok {
				args[i] = ref.Var
				continue
			}
			tmp := l.newTemp(arg.Type())
			l.emit(&ir.AssignStmt{Target: tmp, Value: arg})
			args[i] = tmp
		}
		results := make([]*ir.Variable, len(s.Lhs))
		for i, lhs := range s.Lhs {
			v, ok := l.scope[lhs.Value]
			if !ok {
				return fmt.Errorf("undeclared variable %s", lhs.Value)
			}
			results[i] = v
		}
		l.emit(&ir.CallStmt{Results: results, Callee: s.Callee.Value, Args: args})
		return nil
	}

	if findPredicate(l.program, s.Callee.Value) != nil {
		if len(s.Lhs) != 1 {
			return fmt.Errorf("predicate %s produces one result", s.Callee.Value)
		}
		target, ok := l.scope[s.Lhs[0].Value]
		if !ok {
			return fmt.Errorf("undeclared variable %s", s.Lhs[0].Value)
		}
		args := make([]ir.Expr, len(s.Args))
		for i, argExpr := range s.Args {
			arg, err := LowerExpr(argExpr, l.scope)
			if err != nil {
				return err
			}
			args[i] = arg
		}
		l.emit(&ir.AssignStmt{Target: target, Value: &ir.PredCall{Name: s.Callee.Value, Args: args}})
		return nil
	}

	return fmt.Errorf("call to undefined function %s", s.Callee.Value)
}

func (l *lowerer) newTemp(t ir.Type) *ir.Variable {
	l.ntemps++
	// The "!" keeps temporaries out of the surface namespace.
	v := &ir.Variable{Name: fmt.Sprintf("tmp!%d", l.ntemps), Type: t}
	l.scope[v.Name] = v
	return v
}

func (l *lowerer) lowerExprs(exprs []*grammar.Expr) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(exprs))
	for i, e := range exprs {
		lowered, err := LowerExpr(e, l.scope)
		if err != nil {
			return nil, err
		}
		out[i] = lowered
	}
	return out, nil
}

func lowerParams(params []*grammar.Param, scope map[string]*ir.Variable) ([]*ir.Variable, error) {
	out := make([]*ir.Variable, len(params))
	for i, p := range params {
		t := lowerType(p.Type)
		if t == nil {
			return nil, fmt.Errorf("parameter %s has unsupported type %s", p.Name.Value, p.Type)
		}
		v := &ir.Variable{Name: p.Name.Value, Type: t}
		scope[v.Name] = v
		out[i] = v
	}
	return out, nil
}

func lowerType(ref *grammar.TypeRef) ir.Type {
	switch semantic.TypeOf(ref) {
	case semantic.TypeInt:
		return &ir.IntType{}
	case semantic.TypeBool:
		return &ir.BoolType{}
	case semantic.TypeIntArray:
		return &ir.ArrayType{Elem: &ir.IntType{}}
	}
	return nil
}

func findFunction(program *grammar.Program, name string) *grammar.Function {
	for _, item := range program.Items {
		if item.Function != nil && item.Function.Name.Value == name {
			return item.Function
		}
	}
	return nil
}

func findPredicate(program *grammar.Program, name string) *grammar.PredicateDef {
	for _, item := range program.Items {
		if item.Predicate != nil && item.Predicate.Name.Value == name {
			return item.Predicate
		}
	}
	return nil
}
