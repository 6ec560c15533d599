package verifier

import (
	"fmt"
	"sort"

	"verity/internal/ir"
)

// VCKind distinguishes the proof obligations a basic path produces.
type VCKind int

const (
	// VCPartial asserts the tail conditions under the head conditions and the
	// path's weakest precondition.
	VCPartial VCKind = iota
	// VCWellFounded asserts every component of the head measure is
	// non-negative under the head conditions.
	VCWellFounded
	// VCDecrease asserts the tail measure is lexicographically below the head
	// measure after executing the path.
	VCDecrease
)

func (k VCKind) String() string {
	switch k {
	case VCPartial:
		return "partial correctness"
	case VCWellFounded:
		return "well-foundedness"
	case VCDecrease:
		return "lexicographic decrease"
	}
	return "unknown"
}

// VC is one first-order proof obligation. Validity of the formula implies
// that the originating basic path respects the surrounding contracts.
type VC struct {
	Kind     VCKind
	Function string
	Path     *BasicPath
	Formula  ir.Expr
}

func (vc *VC) String() string {
	return fmt.Sprintf("%s: %s (%s)", vc.Function, vc.Path, vc.Kind)
}

// BuildVCs turns a basic path into up to three verification conditions:
// partial correctness always, well-foundedness when the head carries a
// ranking measure, and lexicographic decrease when both ends do. A path
// ending at an assert or at a tail without rankings closes no loop cycle, so
// its decrease obligation is vacuous and omitted.
func BuildVCs(fnName string, p *BasicPath) ([]*VC, error) {
	vcs := make([]*VC, 0, 3)

	partial, err := wp(p.Statements, ir.BigAnd(p.TailConditions))
	if err != nil {
		return nil, err
	}
	head := ir.BigAnd(p.HeadConditions)
	vcs = append(vcs, &VC{
		Kind:     VCPartial,
		Function: fnName,
		Path:     p,
		Formula:  ir.NewImplies(head, partial),
	})

	if len(p.HeadRankings) > 0 {
		nonNeg := make([]ir.Expr, len(p.HeadRankings))
		for i, r := range p.HeadRankings {
			nonNeg[i] = ir.NewGe(r, &ir.IntLit{Value: 0})
		}
		vcs = append(vcs, &VC{
			Kind:     VCWellFounded,
			Function: fnName,
			Path:     p,
			Formula:  ir.NewImplies(head, ir.BigAnd(nonNeg)),
		})
	}

	if len(p.HeadRankings) > 0 && len(p.TailRankings) > 0 {
		decrease, err := buildDecrease(p)
		if err != nil {
			return nil, err
		}
		vcs = append(vcs, &VC{
			Kind:     VCDecrease,
			Function: fnName,
			Path:     p,
			Formula:  decrease,
		})
	}

	return vcs, nil
}

// buildDecrease freezes the head measure in fresh pre-state variables,
// rewrites the tail measure into pre-state terms with the path's weakest
// precondition, and demands the frozen head measure exceed it
// lexicographically.
func buildDecrease(p *BasicPath) (ir.Expr, error) {
	if len(p.HeadRankings) != len(p.TailRankings) {
		return nil, fmt.Errorf("ranking tuple arity mismatch: head %d, tail %d",
			len(p.HeadRankings), len(p.TailRankings))
	}

	free := make(map[string]*ir.Variable)
	for _, r := range p.HeadRankings {
		r.FreeVars(free)
	}
	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)

	// One rename map for the whole tuple, so shared variables freeze to the
	// same snapshot.
	fresh := make(map[string]ir.Expr, len(free))
	equalities := make([]ir.Expr, 0, len(free))
	for _, name := range names {
		v := free[name]
		snap := &ir.Variable{Name: name + "!pre", Type: v.Type}
		fresh[name] = &ir.VarRef{Var: snap}
		equalities = append(equalities, ir.NewEq(&ir.VarRef{Var: v}, &ir.VarRef{Var: snap}))
	}

	frozen := make([]ir.Expr, len(p.HeadRankings))
	for i, r := range p.HeadRankings {
		frozen[i] = r.Subst(fresh)
	}

	goal, err := wp(p.Statements, lexGT(frozen, p.TailRankings))
	if err != nil {
		return nil, err
	}
	premise := ir.NewAnd(ir.BigAnd(equalities), ir.BigAnd(p.HeadConditions))
	return ir.NewImplies(premise, goal), nil
}

// lexGT builds the strict lexicographic comparison a > b over equal-length
// tuples: the first component is greater, or equal and the remainder greater.
func lexGT(a, b []ir.Expr) ir.Expr {
	if len(a) == 1 {
		return ir.NewGt(a[0], b[0])
	}
	return ir.NewOr(
		ir.NewGt(a[0], b[0]),
		ir.NewAnd(ir.NewEq(a[0], b[0]), lexGT(a[1:], b[1:])),
	)
}

// wp propagates a postcondition backward through a path's statements:
// assume(c) weakens to an implication, assignments substitute, and element
// assignments substitute a functional array update that preserves the
// array's declared length.
func wp(stmts []ir.Stmt, post ir.Expr) (ir.Expr, error) {
	q := post
	for i := len(stmts) - 1; i >= 0; i-- {
		switch s := stmts[i].(type) {
		case *ir.AssumeStmt:
			q = ir.NewImplies(s.Cond, q)
		case *ir.AssignStmt:
			q = q.Subst(map[string]ir.Expr{s.Target.Name: s.Value})
		case *ir.SubscriptAssignStmt:
			arr := &ir.VarRef{Var: s.Array}
			update := &ir.Store{
				Array:  arr,
				Index:  s.Index,
				Value:  s.Value,
				Length: &ir.Length{Array: arr},
			}
			q = q.Subst(map[string]ir.Expr{s.Array.Name: update})
		default:
			return nil, fmt.Errorf("statement %q cannot appear inside a basic path", s)
		}
	}
	return q, nil
}
