package ir

import (
	"fmt"
	"strings"
)

// Expr is a quantifier-free logical term over integers, booleans, and
// arrays. Terms carry no binders, so substitution never needs to rename
// under a scope; fresh logic variables are kept collision-free by naming
// convention (see Variable).
type Expr interface {
	// Type returns the sort of the term.
	Type() Type
	// FreeVars adds every variable occurring in the term to vars, keyed by name.
	FreeVars(vars map[string]*Variable)
	// Subst returns the term with every variable named in sub replaced by its
	// image, applied simultaneously across the whole term.
	Subst(sub map[string]Expr) Expr
	String() string
}

// Binary operators.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpDiv = "/"
	OpMod = "%"
	OpEq  = "=="
	OpNe  = "!="
	OpLt  = "<"
	OpLe  = "<="
	OpGt  = ">"
	OpGe  = ">="
	OpAnd = "&&"
	OpOr  = "||"
	OpImp = "==>"
)

// Unary operators.
const (
	OpNot = "!"
	OpNeg = "-"
)

type IntLit struct {
	Value int64
}

type BoolLit struct {
	Value bool
}

type VarRef struct {
	Var *Variable
}

type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

type Unary struct {
	Op      string
	Operand Expr
}

// Select is an array read: Array[Index].
type Select struct {
	Array Expr
	Index Expr
}

// Store is a functional array update carrying the array's declared length.
// The length is semantic content: the solver encoding preserves
// length(store(a, i, v, len)) = len, so array length is invariant under
// element assignment.
type Store struct {
	Array  Expr
	Index  Expr
	Value  Expr
	Length Expr
}

// Length is the declared length of an array term.
type Length struct {
	Array Expr
}

// PredCall applies a user-defined predicate to argument terms.
type PredCall struct {
	Name string
	Args []Expr
}

func (e *IntLit) Type() Type  { return &IntType{} }
func (e *BoolLit) Type() Type { return &BoolType{} }
func (e *VarRef) Type() Type  { return e.Var.Type }

func (e *Binary) Type() Type {
	switch e.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return &IntType{}
	default:
		return &BoolType{}
	}
}

func (e *Unary) Type() Type {
	if e.Op == OpNeg {
		return &IntType{}
	}
	return &BoolType{}
}

func (e *Select) Type() Type {
	if at, ok := e.Array.Type().(*ArrayType); ok {
		return at.Elem
	}
	return &IntType{}
}

func (e *Store) Type() Type    { return e.Array.Type() }
func (e *Length) Type() Type   { return &IntType{} }
func (e *PredCall) Type() Type { return &BoolType{} }

func (e *IntLit) FreeVars(vars map[string]*Variable)  {}
func (e *BoolLit) FreeVars(vars map[string]*Variable) {}

func (e *VarRef) FreeVars(vars map[string]*Variable) {
	vars[e.Var.Name] = e.Var
}

func (e *Binary) FreeVars(vars map[string]*Variable) {
	e.Left.FreeVars(vars)
	e.Right.FreeVars(vars)
}

func (e *Unary) FreeVars(vars map[string]*Variable) {
	e.Operand.FreeVars(vars)
}

func (e *Select) FreeVars(vars map[string]*Variable) {
	e.Array.FreeVars(vars)
	e.Index.FreeVars(vars)
}

func (e *Store) FreeVars(vars map[string]*Variable) {
	e.Array.FreeVars(vars)
	e.Index.FreeVars(vars)
	e.Value.FreeVars(vars)
	e.Length.FreeVars(vars)
}

func (e *Length) FreeVars(vars map[string]*Variable) {
	e.Array.FreeVars(vars)
}

func (e *PredCall) FreeVars(vars map[string]*Variable) {
	for _, arg := range e.Args {
		arg.FreeVars(vars)
	}
}

func (e *IntLit) Subst(sub map[string]Expr) Expr  { return e }
func (e *BoolLit) Subst(sub map[string]Expr) Expr { return e }

func (e *VarRef) Subst(sub map[string]Expr) Expr {
	if repl, ok := sub[e.Var.Name]; ok {
		return repl
	}
	return e
}

func (e *Binary) Subst(sub map[string]Expr) Expr {
	return &Binary{Op: e.Op, Left: e.Left.Subst(sub), Right: e.Right.Subst(sub)}
}

func (e *Unary) Subst(sub map[string]Expr) Expr {
	return &Unary{Op: e.Op, Operand: e.Operand.Subst(sub)}
}

func (e *Select) Subst(sub map[string]Expr) Expr {
	return &Select{Array: e.Array.Subst(sub), Index: e.Index.Subst(sub)}
}

func (e *Store) Subst(sub map[string]Expr) Expr {
	return &Store{
		Array:  e.Array.Subst(sub),
		Index:  e.Index.Subst(sub),
		Value:  e.Value.Subst(sub),
		Length: e.Length.Subst(sub),
	}
}

func (e *Length) Subst(sub map[string]Expr) Expr {
	return &Length{Array: e.Array.Subst(sub)}
}

func (e *PredCall) Subst(sub map[string]Expr) Expr {
	args := make([]Expr, len(e.Args))
	for i, arg := range e.Args {
		args[i] = arg.Subst(sub)
	}
	return &PredCall{Name: e.Name, Args: args}
}

func (e *IntLit) String() string { return fmt.Sprintf("%d", e.Value) }

func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}

func (e *VarRef) String() string { return e.Var.Name }

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *Unary) String() string {
	return fmt.Sprintf("%s%s", e.Op, e.Operand)
}

func (e *Select) String() string {
	return fmt.Sprintf("%s[%s]", e.Array, e.Index)
}

func (e *Store) String() string {
	return fmt.Sprintf("store(%s, %s, %s, %s)", e.Array, e.Index, e.Value, e.Length)
}

func (e *Length) String() string {
	return fmt.Sprintf("length(%s)", e.Array)
}

func (e *PredCall) String() string {
	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

// Constructors for the connectives the verifier builds constantly.

func NewAnd(left, right Expr) Expr     { return &Binary{Op: OpAnd, Left: left, Right: right} }
func NewOr(left, right Expr) Expr      { return &Binary{Op: OpOr, Left: left, Right: right} }
func NewImplies(left, right Expr) Expr { return &Binary{Op: OpImp, Left: left, Right: right} }
func NewNot(operand Expr) Expr         { return &Unary{Op: OpNot, Operand: operand} }
func NewEq(left, right Expr) Expr      { return &Binary{Op: OpEq, Left: left, Right: right} }
func NewGt(left, right Expr) Expr      { return &Binary{Op: OpGt, Left: left, Right: right} }
func NewGe(left, right Expr) Expr      { return &Binary{Op: OpGe, Left: left, Right: right} }

// BigAnd folds a condition list into one boolean term, seeding the fold with
// true so the result is well-typed even for an empty list. The solver is left
// to simplify the redundant conjunct.
func BigAnd(conds []Expr) Expr {
	var result Expr = &BoolLit{Value: true}
	for _, c := range conds {
		result = NewAnd(result, c)
	}
	return result
}

// SubstVars builds a simultaneous substitution mapping each variable in from
// to the corresponding replacement term. The two slices must have equal
// length; pairing is positional.
func SubstVars(from []*Variable, to []Expr) map[string]Expr {
	sub := make(map[string]Expr, len(from))
	for i, v := range from {
		sub[v.Name] = to[i]
	}
	return sub
}
