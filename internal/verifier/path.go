package verifier

import (
	"fmt"
	"strings"

	"verity/internal/ir"
)

// BasicPath is one cut-free program fragment: the annotations at the
// cut-point it starts from, the obligation at the point it stops (the next
// cut-point, an assert, or a call), and the linear statement sequence in
// between. Paths are immutable once emitted; every slice is a defensive copy
// so later rewriting never mutates the IR.
type BasicPath struct {
	HeadBlock ir.Block
	TailBlock ir.Block

	HeadConditions []ir.Expr
	TailConditions []ir.Expr

	HeadRankings []ir.Expr
	TailRankings []ir.Expr

	// Statements contains only assume and assignment statements; asserts and
	// calls are tail events, never interior.
	Statements []ir.Stmt
}

func newBasicPath(head, tail ir.Block, headConds, tailConds, headRank, tailRank []ir.Expr, stmts []ir.Stmt) *BasicPath {
	return &BasicPath{
		HeadBlock:      head,
		TailBlock:      tail,
		HeadConditions: copyExprs(headConds),
		TailConditions: copyExprs(tailConds),
		HeadRankings:   copyExprs(headRank),
		TailRankings:   copyExprs(tailRank),
		Statements:     copyStmts(stmts),
	}
}

func (p *BasicPath) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> %s", p.HeadBlock.Label(), p.TailBlock.Label())
	if len(p.Statements) > 0 {
		parts := make([]string, len(p.Statements))
		for i, s := range p.Statements {
			parts[i] = s.String()
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(parts, "; "))
	}
	return sb.String()
}

func copyExprs(exprs []ir.Expr) []ir.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]ir.Expr, len(exprs))
	copy(out, exprs)
	return out
}

func copyStmts(stmts []ir.Stmt) []ir.Stmt {
	out := make([]ir.Stmt, len(stmts))
	copy(out, stmts)
	return out
}
