// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"verity/internal/ir"
	"verity/internal/lower"
	"verity/internal/parser"
	"verity/internal/solver"
)

const PROMPT = ">> "

// Start runs the interactive entailment checker: `var x: int;` declares a
// free variable, any other line is parsed as a formula and sent to the
// oracle for a validity verdict.
func Start(in io.Reader, out io.Writer, oracle solver.Oracle) {
	scanner := bufio.NewScanner(in)
	scope := make(map[string]*ir.Variable)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "var ") {
			if err := declare(line, scope); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			continue
		}

		expr, err := parser.ParseFormula("repl", line)
		if err != nil {
			fmt.Fprintf(out, "parse error: %v\n", err)
			continue
		}
		formula, err := lower.LowerExpr(expr, scope)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if !ir.SameType(formula.Type(), &ir.BoolType{}) {
			fmt.Fprintf(out, "error: formula must be bool, got %s\n", formula.Type())
			continue
		}

		outcome, err := oracle.CheckValid(formula)
		if err != nil {
			fmt.Fprintf(out, "solver error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, outcome.Verdict)
		if outcome.Verdict == solver.VerdictInvalid && outcome.Model != "" {
			fmt.Fprintln(out, outcome.Model)
		}
	}
}

// declare handles a `var name: type;` line.
func declare(line string, scope map[string]*ir.Variable) error {
	decl := strings.TrimSuffix(strings.TrimPrefix(line, "var "), ";")
	name, typeName, found := strings.Cut(decl, ":")
	if !found {
		return fmt.Errorf("expected 'var name: type;'")
	}
	name = strings.TrimSpace(name)
	typeName = strings.TrimSpace(typeName)

	var t ir.Type
	switch typeName {
	case "int":
		t = &ir.IntType{}
	case "bool":
		t = &ir.BoolType{}
	case "int[]":
		t = &ir.ArrayType{Elem: &ir.IntType{}}
	default:
		return fmt.Errorf("unsupported type %q", typeName)
	}
	scope[name] = &ir.Variable{Name: name, Type: t}
	return nil
}
