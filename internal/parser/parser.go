package parser

import (
	"fmt"
	"os"

	"verity/grammar"
)

var parser = grammar.MustBuildParser()

var formulaParser = grammar.MustBuildFormulaParser()

// ParseFile parses one annotated source file.
func ParseFile(path string) (*grammar.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses annotated source text.
func ParseSource(sourceName string, source string) (*grammar.Program, error) {
	return parser.ParseString(sourceName, source)
}

// ParseFormula parses one standalone expression, as entered at the REPL.
func ParseFormula(sourceName string, source string) (*grammar.Expr, error) {
	formula, err := formulaParser.ParseString(sourceName, source)
	if err != nil {
		return nil, err
	}
	return formula.Expr, nil
}
