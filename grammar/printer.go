package grammar

import (
	"fmt"
	"strings"
)

// Source regeneration, used by diagnostics and round-trip tests. Output is
// normalized: one statement per line, canonical spacing, no comments.

func (p *Program) String() string {
	var sb strings.Builder
	first := true
	for _, item := range p.Items {
		if item.Comment != nil {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		if item.Predicate != nil {
			sb.WriteString(item.Predicate.String())
		}
		if item.Function != nil {
			sb.WriteString(item.Function.String())
		}
	}
	return sb.String()
}

func (p *PredicateDef) String() string {
	return fmt.Sprintf("predicate %s(%s) = %s;\n", p.Name.Value, formatParams(p.Params), p.Body)
}

func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fun %s(%s)", f.Name.Value, formatParams(f.Params))
	if len(f.Returns) > 0 {
		fmt.Fprintf(&sb, ": (%s)", formatParams(f.Returns))
	}
	for _, e := range f.Requires {
		fmt.Fprintf(&sb, "\n    requires %s", e)
	}
	for _, e := range f.Ensures {
		fmt.Fprintf(&sb, "\n    ensures %s", e)
	}
	if len(f.Decreases) > 0 {
		fmt.Fprintf(&sb, "\n    decreases %s", formatExprs(f.Decreases))
	}
	sb.WriteString("\n")
	f.Body.write(&sb, "")
	return sb.String()
}

func (b *BlockStmt) write(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "{\n")
	inner := indent + "    "
	for _, s := range b.Statements {
		s.write(sb, inner)
	}
	sb.WriteString(indent + "}\n")
}

func (s *Stmt) write(sb *strings.Builder, indent string) {
	switch {
	case s.Comment != nil:
		// Dropped in normalized output.
	case s.Let != nil:
		fmt.Fprintf(sb, "%slet %s: %s = %s;\n", indent, s.Let.Name.Value, s.Let.Type, s.Let.Value)
	case s.Assert != nil:
		fmt.Fprintf(sb, "%sassert %s;\n", indent, s.Assert.Cond)
	case s.Assume != nil:
		fmt.Fprintf(sb, "%sassume %s;\n", indent, s.Assume.Cond)
	case s.If != nil:
		fmt.Fprintf(sb, "%sif (%s)\n", indent, s.If.Cond)
		s.If.Then.write(sb, indent)
		if s.If.Else != nil {
			fmt.Fprintf(sb, "%selse\n", indent)
			s.If.Else.write(sb, indent)
		}
	case s.While != nil:
		fmt.Fprintf(sb, "%swhile (%s)\n", indent, s.While.Cond)
		for _, inv := range s.While.Invariants {
			fmt.Fprintf(sb, "%s    invariant %s\n", indent, inv)
		}
		if len(s.While.Decreases) > 0 {
			fmt.Fprintf(sb, "%s    decreases %s\n", indent, formatExprs(s.While.Decreases))
		}
		s.While.Body.write(sb, indent)
	case s.Return != nil:
		fmt.Fprintf(sb, "%sreturn;\n", indent)
	case s.Call != nil:
		lhs := make([]string, len(s.Call.Lhs))
		for i, id := range s.Call.Lhs {
			lhs[i] = id.Value
		}
		fmt.Fprintf(sb, "%s%s = %s(%s);\n", indent, strings.Join(lhs, ", "), s.Call.Callee.Value, formatExprs(s.Call.Args))
	case s.Assign != nil:
		if s.Assign.Index != nil {
			fmt.Fprintf(sb, "%s%s[%s] = %s;\n", indent, s.Assign.Target.Value, s.Assign.Index, s.Assign.Value)
		} else {
			fmt.Fprintf(sb, "%s%s = %s;\n", indent, s.Assign.Target.Value, s.Assign.Value)
		}
	}
}

func (t *TypeRef) String() string {
	if t.Array {
		return t.Name + "[]"
	}
	return t.Name
}

func (e *Expr) String() string { return e.Implies.String() }

func (e *ImpliesExpr) String() string {
	if e.Right == nil {
		return e.Left.String()
	}
	return fmt.Sprintf("%s ==> %s", e.Left, e.Right)
}

func (e *OrExpr) String() string {
	parts := []string{e.Left.String()}
	for _, r := range e.Rest {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " || ")
}

func (e *AndExpr) String() string {
	parts := []string{e.Left.String()}
	for _, r := range e.Rest {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " && ")
}

func (e *CmpExpr) String() string {
	if e.Cmp == nil {
		return e.Left.String()
	}
	return fmt.Sprintf("%s %s %s", e.Left, e.Cmp.Op, e.Cmp.Right)
}

func (e *AddExpr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Left.String())
	for _, op := range e.Ops {
		fmt.Fprintf(&sb, " %s %s", op.Op, op.Right)
	}
	return sb.String()
}

func (e *MulExpr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Left.String())
	for _, op := range e.Ops {
		fmt.Fprintf(&sb, " %s %s", op.Op, op.Right)
	}
	return sb.String()
}

func (e *UnaryExpr) String() string {
	return e.Op + e.Value.String()
}

func (e *PostfixExpr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Primary.String())
	for _, idx := range e.Indexes {
		fmt.Fprintf(&sb, "[%s]", idx)
	}
	return sb.String()
}

func (e *PrimaryExpr) String() string {
	switch {
	case e.Call != nil:
		return fmt.Sprintf("%s(%s)", e.Call.Name.Value, formatExprs(e.Call.Args))
	case e.Number != nil:
		return *e.Number
	case e.True:
		return "true"
	case e.False:
		return "false"
	case e.Ident != nil:
		return e.Ident.Value
	case e.Parens != nil:
		return fmt.Sprintf("(%s)", e.Parens)
	}
	return ""
}

func formatParams(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name.Value, p.Type)
	}
	return strings.Join(parts, ", ")
}

func formatExprs(exprs []*Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
