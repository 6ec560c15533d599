package solver

import (
	"fmt"
	"sort"
	"strings"

	"verity/internal/ir"
)

// SMT-LIB 2 emission for the verification term algebra.
//
// Arrays are encoded as a declared datatype pairing an unbounded Int->Int
// map with an explicit length field. Functional update rebuilds the pair with
// the stored length, which makes length invariance under element assignment
// a structural fact rather than an axiom the solver has to be told about.

const arraySort = "IntArr"

// preludeLines is the theory setup shared by every query.
var preludeLines = []string{
	"(set-option :produce-models true)",
	fmt.Sprintf("(declare-datatypes ((%s 0)) (((mk-arr (arr-elems (Array Int Int)) (arr-len Int)))))", arraySort),
}

// sortOf maps an IR type to its SMT-LIB sort.
func sortOf(t ir.Type) (string, error) {
	switch t.(type) {
	case *ir.IntType:
		return "Int", nil
	case *ir.BoolType:
		return "Bool", nil
	case *ir.ArrayType:
		return arraySort, nil
	}
	return "", fmt.Errorf("type %s has no SMT sort", t)
}

// emitExpr renders a term as an SMT-LIB s-expression.
func emitExpr(e ir.Expr) (string, error) {
	switch expr := e.(type) {
	case *ir.IntLit:
		if expr.Value < 0 {
			return fmt.Sprintf("(- %d)", -expr.Value), nil
		}
		return fmt.Sprintf("%d", expr.Value), nil

	case *ir.BoolLit:
		if expr.Value {
			return "true", nil
		}
		return "false", nil

	case *ir.VarRef:
		return expr.Var.Name, nil

	case *ir.Binary:
		op, err := smtOp(expr.Op)
		if err != nil {
			return "", err
		}
		left, err := emitExpr(expr.Left)
		if err != nil {
			return "", err
		}
		right, err := emitExpr(expr.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", op, left, right), nil

	case *ir.Unary:
		operand, err := emitExpr(expr.Operand)
		if err != nil {
			return "", err
		}
		switch expr.Op {
		case ir.OpNot:
			return fmt.Sprintf("(not %s)", operand), nil
		case ir.OpNeg:
			return fmt.Sprintf("(- %s)", operand), nil
		}
		return "", fmt.Errorf("unknown unary operator %q", expr.Op)

	case *ir.Select:
		arr, err := emitExpr(expr.Array)
		if err != nil {
			return "", err
		}
		idx, err := emitExpr(expr.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(select (arr-elems %s) %s)", arr, idx), nil

	case *ir.Store:
		arr, err := emitExpr(expr.Array)
		if err != nil {
			return "", err
		}
		idx, err := emitExpr(expr.Index)
		if err != nil {
			return "", err
		}
		val, err := emitExpr(expr.Value)
		if err != nil {
			return "", err
		}
		length, err := emitExpr(expr.Length)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(mk-arr (store (arr-elems %s) %s %s) %s)", arr, idx, val, length), nil

	case *ir.Length:
		arr, err := emitExpr(expr.Array)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(arr-len %s)", arr), nil

	case *ir.PredCall:
		parts := make([]string, 0, len(expr.Args)+1)
		parts = append(parts, expr.Name)
		for _, arg := range expr.Args {
			s, err := emitExpr(arg)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " ") + ")", nil
	}
	return "", fmt.Errorf("expression %s has no SMT form", e)
}

func smtOp(op string) (string, error) {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		return op, nil
	case ir.OpDiv:
		return "div", nil
	case ir.OpMod:
		return "mod", nil
	case ir.OpEq:
		return "=", nil
	case ir.OpNe:
		return "distinct", nil
	case ir.OpAnd:
		return "and", nil
	case ir.OpOr:
		return "or", nil
	case ir.OpImp:
		return "=>", nil
	}
	return "", fmt.Errorf("unknown binary operator %q", op)
}

// emitPredicate renders a predicate definition as a define-fun.
func emitPredicate(pred *ir.Predicate) (string, error) {
	params := make([]string, len(pred.Params))
	for i, p := range pred.Params {
		paramSort, err := sortOf(p.Type)
		if err != nil {
			return "", fmt.Errorf("predicate %s: parameter %s: %w", pred.Name, p.Name, err)
		}
		params[i] = fmt.Sprintf("(%s %s)", p.Name, paramSort)
	}
	body, err := emitExpr(pred.Body)
	if err != nil {
		return "", fmt.Errorf("predicate %s: %w", pred.Name, err)
	}
	return fmt.Sprintf("(define-fun %s (%s) Bool %s)", pred.Name, strings.Join(params, " "), body), nil
}

// BuildScript assembles the one-shot script for a validity query: theory
// prelude, predicate definitions in registration order, declarations for the
// formula's free variables, and the satisfiability check of the negation.
func BuildScript(predicates []string, formula ir.Expr) (string, error) {
	var sb strings.Builder
	for _, line := range preludeLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	for _, def := range predicates {
		sb.WriteString(def)
		sb.WriteString("\n")
	}

	free := make(map[string]*ir.Variable)
	formula.FreeVars(free)
	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s, err := sortOf(free[name].Type)
		if err != nil {
			return "", fmt.Errorf("variable %s: %w", name, err)
		}
		fmt.Fprintf(&sb, "(declare-const %s %s)\n", name, s)
	}

	body, err := emitExpr(formula)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&sb, "(assert (not %s))\n", body)
	sb.WriteString("(check-sat)\n")
	sb.WriteString("(get-model)\n")
	return sb.String(), nil
}
