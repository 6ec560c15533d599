package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Surface syntax for annotated programs. Functions carry requires/ensures
// clauses and an optional decreases measure; loops carry invariants and
// their own decreases measure. The grammar is layered by operator
// precedence, lowest first.

type PosIdent struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  string `@Ident`
}

type Comment struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Text   string `@Comment`
}

type Program struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Items  []*Item `@@*`
}

type Item struct {
	Comment   *Comment      `  @@`
	Predicate *PredicateDef `| @@`
	Function  *Function     `| @@`
}

type PredicateDef struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   PosIdent `"predicate" @@ "("`
	Params []*Param `[ @@ { "," @@ } ] ")"`
	Body   *Expr    `"=" @@ ";"`
}

type Param struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   PosIdent `@@ ":"`
	Type   *TypeRef `@@`
}

type TypeRef struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string `@("int" | "bool")`
	Array  bool   `[ @"[" "]" ]`
}

type Function struct {
	Pos       lexer.Position
	EndPos    lexer.Position
	Name      PosIdent   `"fun" @@ "("`
	Params    []*Param   `[ @@ { "," @@ } ] ")"`
	Returns   []*Param   `[ ":" "(" [ @@ { "," @@ } ] ")" ]`
	Requires  []*Expr    `{ "requires" @@ }`
	Ensures   []*Expr    `{ "ensures" @@ }`
	Decreases []*Expr    `[ "decreases" @@ { "," @@ } ]`
	Body      *BlockStmt `@@`
}

type BlockStmt struct {
	Pos        lexer.Position
	EndPos     lexer.Position
	Statements []*Stmt `"{" @@* "}"`
}

type Stmt struct {
	Comment *Comment    `  @@`
	Let     *LetStmt    `| @@`
	Assert  *AssertStmt `| @@`
	Assume  *AssumeStmt `| @@`
	If      *IfStmt     `| @@`
	While   *WhileStmt  `| @@`
	Return  *ReturnStmt `| @@`
	Call    *CallStmt   `| @@`
	Assign  *AssignStmt `| @@`
}

type LetStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   PosIdent `"let" @@ ":"`
	Type   *TypeRef `@@`
	Value  *Expr    `"=" @@ ";"`
}

type AssertStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Cond   *Expr `"assert" @@ ";"`
}

type AssumeStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Cond   *Expr `"assume" @@ ";"`
}

type IfStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Cond   *Expr      `"if" "(" @@ ")"`
	Then   *BlockStmt `@@`
	Else   *BlockStmt `[ "else" @@ ]`
}

type WhileStmt struct {
	Pos        lexer.Position
	EndPos     lexer.Position
	Cond       *Expr      `"while" "(" @@ ")"`
	Invariants []*Expr    `{ "invariant" @@ }`
	Decreases  []*Expr    `[ "decreases" @@ { "," @@ } ]`
	Body       *BlockStmt `@@`
}

type ReturnStmt struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Keyword bool `@"return" ";"`
}

// CallStmt covers every `lhs, ... = name(args);` form. Whether name is a
// function or a predicate is resolved during semantic analysis, not by the
// grammar.
type CallStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Lhs    []PosIdent `@@ { "," @@ } "="`
	Callee PosIdent   `@@ "("`
	Args   []*Expr    `[ @@ { "," @@ } ] ")" ";"`
}

type AssignStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Target PosIdent `@@`
	Index  *Expr    `[ "[" @@ "]" ]`
	Value  *Expr    `"=" @@ ";"`
}

// Expression layering, lowest precedence first: ==> is right-associative,
// then || and && as left-folded lists, one optional comparison, and the
// arithmetic tiers.

type Expr struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Implies *ImpliesExpr `@@`
}

type ImpliesExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Left   *OrExpr      `@@`
	Right  *ImpliesExpr `[ "==>" @@ ]`
}

type OrExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Left   *AndExpr   `@@`
	Rest   []*AndExpr `{ "||" @@ }`
}

type AndExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Left   *CmpExpr   `@@`
	Rest   []*CmpExpr `{ "&&" @@ }`
}

type CmpExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Left   *AddExpr `@@`
	Cmp    *CmpOp   `@@?`
}

type CmpOp struct {
	Op    string   `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *AddExpr `@@`
}

type AddExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Left   *MulExpr `@@`
	Ops    []*AddOp `{ @@ }`
}

type AddOp struct {
	Op    string   `@("+" | "-")`
	Right *MulExpr `@@`
}

type MulExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Left   *UnaryExpr `@@`
	Ops    []*MulOp   `{ @@ }`
}

type MulOp struct {
	Op    string     `@("*" | "/" | "%")`
	Right *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Op     string       `[ @("!" | "-") ]`
	Value  *PostfixExpr `@@`
}

type PostfixExpr struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Primary *PrimaryExpr `@@`
	Indexes []*Expr      `{ "[" @@ "]" }`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Call   *CallExpr `  @@`
	Number *string   `| @Integer`
	True   bool      `| @"true"`
	False  bool      `| @"false"`
	Ident  *PosIdent `| @@`
	Parens *Expr     `| "(" @@ ")"`
}

// CallExpr is a predicate application or the length builtin; plain function
// calls are statements, never expressions.
type CallExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   PosIdent `@@ "("`
	Args   []*Expr  `[ @@ { "," @@ } ] ")"`
}
