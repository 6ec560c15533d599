package grammar

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// Formula is a standalone expression input, used by the REPL and by tests
// that want a term without a surrounding program.
type Formula struct {
	Expr *Expr `@@`
}

// BuildParser constructs the program parser. Lookahead 4 disambiguates
// `x = f(...)` call statements from plain assignments whose value starts
// with an identifier.
func BuildParser() (*participle.Parser[Program], error) {
	return participle.Build[Program](
		participle.Lexer(VerityLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
}

// BuildFormulaParser constructs the standalone expression parser.
func BuildFormulaParser() (*participle.Parser[Formula], error) {
	return participle.Build[Formula](
		participle.Lexer(VerityLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
}

// MustBuildParser is BuildParser for package-level initialization.
func MustBuildParser() *participle.Parser[Program] {
	p, err := BuildParser()
	if err != nil {
		panic(fmt.Errorf("failed to build parser: %w", err))
	}
	return p
}

// MustBuildFormulaParser is BuildFormulaParser for package-level initialization.
func MustBuildFormulaParser() *participle.Parser[Formula] {
	p, err := BuildFormulaParser()
	if err != nil {
		panic(fmt.Errorf("failed to build formula parser: %w", err))
	}
	return p
}
