package semantic

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"verity/grammar"
	"verity/internal/errors"
)

// Analyzer checks a parsed program before lowering: name resolution,
// typing of statements and expressions, and the typing discipline the
// verifier depends on — every annotation boolean, every ranking measure
// component an integer.
type Analyzer struct {
	errors     []errors.CompilerError
	predicates map[string]*grammar.PredicateDef
	functions  map[string]*grammar.Function
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		errors:     make([]errors.CompilerError, 0),
		predicates: make(map[string]*grammar.PredicateDef),
		functions:  make(map[string]*grammar.Function),
	}
}

// Analyze checks a whole program and returns its diagnostics.
func (a *Analyzer) Analyze(program *grammar.Program) []errors.CompilerError {
	a.errors = make([]errors.CompilerError, 0)
	a.predicates = make(map[string]*grammar.PredicateDef)
	a.functions = make(map[string]*grammar.Function)

	// Declarations first, so bodies can reference functions and predicates
	// defined later in the file.
	for _, item := range program.Items {
		switch {
		case item.Predicate != nil:
			pred := item.Predicate
			if _, dup := a.predicates[pred.Name.Value]; dup {
				a.addError(errors.DuplicateDeclaration(pred.Name.Value, pred.Name.Pos))
				continue
			}
			if _, dup := a.functions[pred.Name.Value]; dup {
				a.addError(errors.DuplicateDeclaration(pred.Name.Value, pred.Name.Pos))
				continue
			}
			a.predicates[pred.Name.Value] = pred
		case item.Function != nil:
			fn := item.Function
			if _, dup := a.functions[fn.Name.Value]; dup {
				a.addError(errors.DuplicateDeclaration(fn.Name.Value, fn.Name.Pos))
				continue
			}
			if _, dup := a.predicates[fn.Name.Value]; dup {
				a.addError(errors.DuplicateDeclaration(fn.Name.Value, fn.Name.Pos))
				continue
			}
			a.functions[fn.Name.Value] = fn
		}
	}

	for _, item := range program.Items {
		switch {
		case item.Predicate != nil:
			a.analyzePredicate(item.Predicate)
		case item.Function != nil:
			a.analyzeFunction(item.Function)
		}
	}

	return a.errors
}

func (a *Analyzer) analyzePredicate(pred *grammar.PredicateDef) {
	scope := NewScope()
	a.declareParams(scope, pred.Params)
	a.requireType(pred.Body, scope, TypeBool, errors.ErrorAnnotationNotBool,
		fmt.Sprintf("body of predicate '%s' must be bool", pred.Name.Value))
}

func (a *Analyzer) analyzeFunction(fn *grammar.Function) {
	scope := NewScope()
	a.declareParams(scope, fn.Params)
	a.declareParams(scope, fn.Returns)

	for _, e := range fn.Requires {
		a.requireType(e, scope, TypeBool, errors.ErrorAnnotationNotBool, "requires clause must be bool")
	}
	for _, e := range fn.Ensures {
		a.requireType(e, scope, TypeBool, errors.ErrorAnnotationNotBool, "ensures clause must be bool")
	}
	for _, e := range fn.Decreases {
		a.requireType(e, scope, TypeInt, errors.ErrorRankingNotInt, "decreases component must be int")
	}

	a.analyzeBlock(fn.Body, scope)
}

func (a *Analyzer) declareParams(scope *Scope, params []*grammar.Param) {
	for _, p := range params {
		t := TypeOf(p.Type)
		if t == TypeInvalid {
			a.addError(errors.New(errors.ErrorTypeMismatch,
				fmt.Sprintf("unsupported type '%s'", p.Type), p.Type.Pos, 1))
		}
		if !scope.Define(p.Name.Value, t) {
			a.addError(errors.DuplicateDeclaration(p.Name.Value, p.Name.Pos))
		}
	}
}

func (a *Analyzer) analyzeBlock(block *grammar.BlockStmt, scope *Scope) {
	returned := false
	for _, s := range block.Statements {
		if s.Comment != nil {
			continue
		}
		if returned {
			a.addError(errors.New(errors.ErrorUnreachableCode,
				"statement is unreachable: the enclosing branch already returned", stmtPos(s), 1))
			return
		}
		if s.Return != nil {
			returned = true
			continue
		}
		a.analyzeStmt(s, scope)
	}
}

func (a *Analyzer) analyzeStmt(s *grammar.Stmt, scope *Scope) {
	switch {
	case s.Let != nil:
		t := TypeOf(s.Let.Type)
		if t == TypeInvalid {
			a.addError(errors.New(errors.ErrorTypeMismatch,
				fmt.Sprintf("unsupported type '%s'", s.Let.Type), s.Let.Type.Pos, 1))
		}
		a.requireType(s.Let.Value, scope, t, errors.ErrorTypeMismatch,
			fmt.Sprintf("initializer of '%s' must be %s", s.Let.Name.Value, t))
		if !scope.Define(s.Let.Name.Value, t) {
			a.addError(errors.DuplicateDeclaration(s.Let.Name.Value, s.Let.Name.Pos))
		}

	case s.Assert != nil:
		a.requireType(s.Assert.Cond, scope, TypeBool, errors.ErrorAnnotationNotBool, "asserted condition must be bool")

	case s.Assume != nil:
		a.requireType(s.Assume.Cond, scope, TypeBool, errors.ErrorAnnotationNotBool, "assumed condition must be bool")

	case s.If != nil:
		a.requireType(s.If.Cond, scope, TypeBool, errors.ErrorTypeMismatch, "if condition must be bool")
		a.analyzeBlock(s.If.Then, scope)
		if s.If.Else != nil {
			a.analyzeBlock(s.If.Else, scope)
		}

	case s.While != nil:
		a.requireType(s.While.Cond, scope, TypeBool, errors.ErrorTypeMismatch, "while condition must be bool")
		for _, inv := range s.While.Invariants {
			a.requireType(inv, scope, TypeBool, errors.ErrorAnnotationNotBool, "loop invariant must be bool")
		}
		for _, d := range s.While.Decreases {
			a.requireType(d, scope, TypeInt, errors.ErrorRankingNotInt, "decreases component must be int")
		}
		a.analyzeBlock(s.While.Body, scope)

	case s.Call != nil:
		a.analyzeCall(s.Call, scope)

	case s.Assign != nil:
		a.analyzeAssign(s.Assign, scope)
	}
}

func (a *Analyzer) analyzeAssign(s *grammar.AssignStmt, scope *Scope) {
	t, ok := scope.Lookup(s.Target.Value)
	if !ok {
		a.addError(errors.UndeclaredVariable(s.Target.Value, scope.Closest(s.Target.Value), s.Target.Pos))
		return
	}
	if s.Index != nil {
		if t != TypeIntArray {
			a.addError(errors.New(errors.ErrorNotAnArray,
				fmt.Sprintf("'%s' is not an array", s.Target.Value), s.Target.Pos, len(s.Target.Value)))
			return
		}
		a.requireType(s.Index, scope, TypeInt, errors.ErrorTypeMismatch, "array index must be int")
		a.requireType(s.Value, scope, TypeInt, errors.ErrorTypeMismatch, "array element must be int")
		return
	}
	a.requireType(s.Value, scope, t, errors.ErrorTypeMismatch,
		fmt.Sprintf("cannot assign to '%s' of type %s", s.Target.Value, t))
}

// analyzeCall handles the unified `lhs = name(args);` statement. The callee
// may be a function (a contract call) or, with a single boolean left-hand
// side, a predicate application used as an assignment.
func (a *Analyzer) analyzeCall(call *grammar.CallStmt, scope *Scope) {
	if fn, ok := a.functions[call.Callee.Value]; ok {
		if len(call.Args) != len(fn.Params) {
			a.addError(errors.New(errors.ErrorCallArity,
				fmt.Sprintf("call to '%s' passes %d arguments, callee takes %d",
					call.Callee.Value, len(call.Args), len(fn.Params)), call.Callee.Pos, len(call.Callee.Value)))
		} else {
			for i, arg := range call.Args {
				a.requireType(arg, scope, TypeOf(fn.Params[i].Type), errors.ErrorTypeMismatch,
					fmt.Sprintf("argument %d of '%s' must be %s", i+1, call.Callee.Value, TypeOf(fn.Params[i].Type)))
			}
		}
		if len(call.Lhs) != len(fn.Returns) {
			a.addError(errors.New(errors.ErrorCallArity,
				fmt.Sprintf("call to '%s' binds %d results, callee returns %d",
					call.Callee.Value, len(call.Lhs), len(fn.Returns)), call.Callee.Pos, len(call.Callee.Value)))
			return
		}
		for i, lhs := range call.Lhs {
			t, ok := scope.Lookup(lhs.Value)
			if !ok {
				a.addError(errors.UndeclaredVariable(lhs.Value, scope.Closest(lhs.Value), lhs.Pos))
				continue
			}
			if want := TypeOf(fn.Returns[i].Type); t != want {
				a.addError(errors.TypeMismatch(want.String(), t.String(), lhs.Pos))
			}
		}
		return
	}

	if pred, ok := a.predicates[call.Callee.Value]; ok {
		if len(call.Lhs) != 1 {
			a.addError(errors.New(errors.ErrorCallArity,
				fmt.Sprintf("predicate '%s' produces one boolean result", call.Callee.Value),
				call.Callee.Pos, len(call.Callee.Value)))
			return
		}
		a.checkPredicateArgs(pred, call.Args, call.Callee.Pos, scope)
		t, ok := scope.Lookup(call.Lhs[0].Value)
		if !ok {
			a.addError(errors.UndeclaredVariable(call.Lhs[0].Value, scope.Closest(call.Lhs[0].Value), call.Lhs[0].Pos))
			return
		}
		if t != TypeBool {
			a.addError(errors.TypeMismatch("bool", t.String(), call.Lhs[0].Pos))
		}
		return
	}

	a.addError(errors.New(errors.ErrorUndefinedCallee,
		fmt.Sprintf("call to undefined function '%s'", call.Callee.Value), call.Callee.Pos, len(call.Callee.Value)))
}

func (a *Analyzer) checkPredicateArgs(pred *grammar.PredicateDef, args []*grammar.Expr, pos lexer.Position, scope *Scope) {
	if len(args) != len(pred.Params) {
		a.addError(errors.New(errors.ErrorCallArity,
			fmt.Sprintf("predicate '%s' takes %d arguments, got %d",
				pred.Name.Value, len(pred.Params), len(args)), pos, len(pred.Name.Value)))
		return
	}
	for i, arg := range args {
		a.requireType(arg, scope, TypeOf(pred.Params[i].Type), errors.ErrorTypeMismatch,
			fmt.Sprintf("argument %d of '%s' must be %s", i+1, pred.Name.Value, TypeOf(pred.Params[i].Type)))
	}
}

// requireType types an expression and reports a diagnostic when it is not
// the wanted type. An invalid inner expression reports its own diagnostics
// and is not re-reported here.
func (a *Analyzer) requireType(e *grammar.Expr, scope *Scope, want Type, code, message string) {
	got := a.typeExpr(e, scope)
	if got == TypeInvalid || got == want {
		return
	}
	err := errors.New(code, message, e.Pos, 1)
	err.Notes = append(err.Notes, fmt.Sprintf("this expression has type %s", got))
	a.addError(err)
}

func (a *Analyzer) typeExpr(e *grammar.Expr, scope *Scope) Type {
	return a.typeImplies(e.Implies, scope)
}

func (a *Analyzer) typeImplies(e *grammar.ImpliesExpr, scope *Scope) Type {
	left := a.typeOr(e.Left, scope)
	if e.Right == nil {
		return left
	}
	right := a.typeImplies(e.Right, scope)
	return a.boolPair(left, right, e.Pos, "==>")
}

func (a *Analyzer) typeOr(e *grammar.OrExpr, scope *Scope) Type {
	t := a.typeAnd(e.Left, scope)
	for _, r := range e.Rest {
		t = a.boolPair(t, a.typeAnd(r, scope), e.Pos, "||")
	}
	return t
}

func (a *Analyzer) typeAnd(e *grammar.AndExpr, scope *Scope) Type {
	t := a.typeCmp(e.Left, scope)
	for _, r := range e.Rest {
		t = a.boolPair(t, a.typeCmp(r, scope), e.Pos, "&&")
	}
	return t
}

func (a *Analyzer) typeCmp(e *grammar.CmpExpr, scope *Scope) Type {
	left := a.typeAdd(e.Left, scope)
	if e.Cmp == nil {
		return left
	}
	right := a.typeAdd(e.Cmp.Right, scope)
	if left == TypeInvalid || right == TypeInvalid {
		return TypeInvalid
	}
	switch e.Cmp.Op {
	case "==", "!=":
		if left != right || left == TypeIntArray {
			a.addError(errors.New(errors.ErrorTypeMismatch,
				fmt.Sprintf("operands of '%s' must be both int or both bool", e.Cmp.Op), e.Pos, 1))
			return TypeInvalid
		}
	default:
		if left != TypeInt || right != TypeInt {
			a.addError(errors.New(errors.ErrorTypeMismatch,
				fmt.Sprintf("operands of '%s' must be int", e.Cmp.Op), e.Pos, 1))
			return TypeInvalid
		}
	}
	return TypeBool
}

func (a *Analyzer) typeAdd(e *grammar.AddExpr, scope *Scope) Type {
	t := a.typeMul(e.Left, scope)
	for _, op := range e.Ops {
		t = a.intPair(t, a.typeMul(op.Right, scope), e.Pos, op.Op)
	}
	return t
}

func (a *Analyzer) typeMul(e *grammar.MulExpr, scope *Scope) Type {
	t := a.typeUnary(e.Left, scope)
	for _, op := range e.Ops {
		t = a.intPair(t, a.typeUnary(op.Right, scope), e.Pos, op.Op)
	}
	return t
}

func (a *Analyzer) typeUnary(e *grammar.UnaryExpr, scope *Scope) Type {
	inner := a.typePostfix(e.Value, scope)
	switch e.Op {
	case "":
		return inner
	case "!":
		if inner != TypeBool && inner != TypeInvalid {
			a.addError(errors.New(errors.ErrorTypeMismatch, "operand of '!' must be bool", e.Pos, 1))
			return TypeInvalid
		}
		return TypeBool
	case "-":
		if inner != TypeInt && inner != TypeInvalid {
			a.addError(errors.New(errors.ErrorTypeMismatch, "operand of unary '-' must be int", e.Pos, 1))
			return TypeInvalid
		}
		return TypeInt
	}
	return TypeInvalid
}

func (a *Analyzer) typePostfix(e *grammar.PostfixExpr, scope *Scope) Type {
	t := a.typePrimary(e.Primary, scope)
	for _, idx := range e.Indexes {
		if t != TypeIntArray && t != TypeInvalid {
			a.addError(errors.New(errors.ErrorNotAnArray, "indexed expression is not an array", e.Pos, 1))
			return TypeInvalid
		}
		a.requireType(idx, scope, TypeInt, errors.ErrorTypeMismatch, "array index must be int")
		t = TypeInt
	}
	return t
}

func (a *Analyzer) typePrimary(e *grammar.PrimaryExpr, scope *Scope) Type {
	switch {
	case e.Call != nil:
		return a.typeCall(e.Call, scope)
	case e.Number != nil:
		return TypeInt
	case e.True, e.False:
		return TypeBool
	case e.Ident != nil:
		t, ok := scope.Lookup(e.Ident.Value)
		if !ok {
			a.addError(errors.UndeclaredVariable(e.Ident.Value, scope.Closest(e.Ident.Value), e.Ident.Pos))
			return TypeInvalid
		}
		return t
	case e.Parens != nil:
		return a.typeExpr(e.Parens, scope)
	}
	return TypeInvalid
}

func (a *Analyzer) typeCall(call *grammar.CallExpr, scope *Scope) Type {
	if call.Name.Value == "length" {
		if len(call.Args) != 1 {
			a.addError(errors.New(errors.ErrorCallArity, "length takes one argument", call.Name.Pos, 6))
			return TypeInvalid
		}
		a.requireType(call.Args[0], scope, TypeIntArray, errors.ErrorNotAnArray, "argument of length must be an array")
		return TypeInt
	}
	if pred, ok := a.predicates[call.Name.Value]; ok {
		a.checkPredicateArgs(pred, call.Args, call.Name.Pos, scope)
		return TypeBool
	}
	if _, ok := a.functions[call.Name.Value]; ok {
		a.addError(errors.New(errors.ErrorUndefinedCallee,
			fmt.Sprintf("function '%s' cannot be called inside an expression", call.Name.Value),
			call.Name.Pos, len(call.Name.Value)))
		return TypeInvalid
	}
	a.addError(errors.New(errors.ErrorUndefinedCallee,
		fmt.Sprintf("call to undefined predicate '%s'", call.Name.Value), call.Name.Pos, len(call.Name.Value)))
	return TypeInvalid
}

func (a *Analyzer) boolPair(left, right Type, pos lexer.Position, op string) Type {
	if left == TypeInvalid || right == TypeInvalid {
		return TypeInvalid
	}
	if left != TypeBool || right != TypeBool {
		a.addError(errors.New(errors.ErrorTypeMismatch,
			fmt.Sprintf("operands of '%s' must be bool", op), pos, 1))
		return TypeInvalid
	}
	return TypeBool
}

func (a *Analyzer) intPair(left, right Type, pos lexer.Position, op string) Type {
	if left == TypeInvalid || right == TypeInvalid {
		return TypeInvalid
	}
	if left != TypeInt || right != TypeInt {
		a.addError(errors.New(errors.ErrorTypeMismatch,
			fmt.Sprintf("operands of '%s' must be int", op), pos, 1))
		return TypeInvalid
	}
	return TypeInt
}

func (a *Analyzer) addError(err errors.CompilerError) {
	a.errors = append(a.errors, err)
}

func stmtPos(s *grammar.Stmt) lexer.Position {
	switch {
	case s.Let != nil:
		return s.Let.Pos
	case s.Assert != nil:
		return s.Assert.Pos
	case s.Assume != nil:
		return s.Assume.Pos
	case s.If != nil:
		return s.If.Pos
	case s.While != nil:
		return s.While.Pos
	case s.Return != nil:
		return s.Return.Pos
	case s.Call != nil:
		return s.Call.Pos
	case s.Assign != nil:
		return s.Assign.Pos
	}
	return lexer.Position{}
}
