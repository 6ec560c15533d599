package lower

import (
	"fmt"
	"strconv"

	"verity/grammar"
	"verity/internal/ir"
)

// LowerExpr translates one surface expression into an IR term. The scope
// maps surface names to their IR variables; unresolved names are fatal, the
// analyzer having already reported them as diagnostics.
func LowerExpr(e *grammar.Expr, scope map[string]*ir.Variable) (ir.Expr, error) {
	return lowerImplies(e.Implies, scope)
}

func lowerImplies(e *grammar.ImpliesExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	left, err := lowerOr(e.Left, scope)
	if err != nil {
		return nil, err
	}
	if e.Right == nil {
		return left, nil
	}
	right, err := lowerImplies(e.Right, scope)
	if err != nil {
		return nil, err
	}
	return ir.NewImplies(left, right), nil
}

func lowerOr(e *grammar.OrExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	result, err := lowerAnd(e.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		right, err := lowerAnd(r, scope)
		if err != nil {
			return nil, err
		}
		result = ir.NewOr(result, right)
	}
	return result, nil
}

func lowerAnd(e *grammar.AndExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	result, err := lowerCmp(e.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		right, err := lowerCmp(r, scope)
		if err != nil {
			return nil, err
		}
		result = ir.NewAnd(result, right)
	}
	return result, nil
}

func lowerCmp(e *grammar.CmpExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	left, err := lowerAdd(e.Left, scope)
	if err != nil {
		return nil, err
	}
	if e.Cmp == nil {
		return left, nil
	}
	right, err := lowerAdd(e.Cmp.Right, scope)
	if err != nil {
		return nil, err
	}
	return &ir.Binary{Op: e.Cmp.Op, Left: left, Right: right}, nil
}

func lowerAdd(e *grammar.AddExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	result, err := lowerMul(e.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		right, err := lowerMul(op.Right, scope)
		if err != nil {
			return nil, err
		}
		result = &ir.Binary{Op: op.Op, Left: result, Right: right}
	}
	return result, nil
}

func lowerMul(e *grammar.MulExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	result, err := lowerUnary(e.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		right, err := lowerUnary(op.Right, scope)
		if err != nil {
			return nil, err
		}
		result = &ir.Binary{Op: op.Op, Left: result, Right: right}
	}
	return result, nil
}

func lowerUnary(e *grammar.UnaryExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	inner, err := lowerPostfix(e.Value, scope)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "":
		return inner, nil
	case "!":
		return ir.NewNot(inner), nil
	case "-":
		return &ir.Unary{Op: ir.OpNeg, Operand: inner}, nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", e.Op)
}

func lowerPostfix(e *grammar.PostfixExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	result, err := lowerPrimary(e.Primary, scope)
	if err != nil {
		return nil, err
	}
	for _, idx := range e.Indexes {
		index, err := LowerExpr(idx, scope)
		if err != nil {
			return nil, err
		}
		result = &ir.Select{Array: result, Index: index}
	}
	return result, nil
}

func lowerPrimary(e *grammar.PrimaryExpr, scope map[string]*ir.Variable) (ir.Expr, error) {
	switch {
	case e.Call != nil:
		if e.Call.Name.Value == "length" {
			if len(e.Call.Args) != 1 {
				return nil, fmt.Errorf("length takes one argument")
			}
			arr, err := LowerExpr(e.Call.Args[0], scope)
			if err != nil {
				return nil, err
			}
			return &ir.Length{Array: arr}, nil
		}
		args := make([]ir.Expr, len(e.Call.Args))
		for i, argExpr := range e.Call.Args {
			arg, err := LowerExpr(argExpr, scope)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &ir.PredCall{Name: e.Call.Name.Value, Args: args}, nil

	case e.Number != nil:
		value, err := strconv.ParseInt(*e.Number, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer literal %s out of range", *e.Number)
		}
		return &ir.IntLit{Value: value}, nil

	case e.True:
		return &ir.BoolLit{Value: true}, nil

	case e.False:
		return &ir.BoolLit{Value: false}, nil

	case e.Ident != nil:
		v, ok := scope[e.Ident.Value]
		if !ok {
			return nil, fmt.Errorf("undeclared variable %s", e.Ident.Value)
		}
		return &ir.VarRef{Var: v}, nil

	case e.Parens != nil:
		return LowerExpr(e.Parens, scope)
	}
	return nil, fmt.Errorf("empty expression")
}
