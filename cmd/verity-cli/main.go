// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"verity/internal/errors"
	"verity/internal/lower"
	"verity/internal/parser"
	"verity/internal/semantic"
	"verity/internal/solver"
	"verity/internal/verifier"
	"verity/repl"
)

func main() {
	var verbose bool
	var debug bool
	var solverPath string
	var startRepl bool
	flag.BoolVar(&verbose, "v", false, "print basic paths and verification conditions")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.StringVar(&solverPath, "solver", "", "path to the z3 binary (default: z3 from PATH)")
	flag.BoolVar(&startRepl, "repl", false, "start the interactive entailment checker")
	flag.Parse()

	if debug {
		commonlog.Configure(1, nil)
	}

	oracle := solver.NewZ3Oracle(solverPath)
	if !oracle.Available() {
		color.Red("solver binary not found")
		os.Exit(1)
	}

	if startRepl {
		repl.Start(os.Stdin, os.Stdout, oracle)
		return
	}

	if flag.NArg() < 1 {
		fmt.Println("Usage: verity-cli [flags] <file.vt>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	path := flag.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	program, err := parser.ParseSource(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	if semanticErrors := semantic.NewAnalyzer().Analyze(program); len(semanticErrors) > 0 {
		reporter := errors.NewErrorReporter(path, string(source))
		fmt.Print(reporter.FormatAll(semanticErrors))
		os.Exit(1)
	}

	lowered, err := lower.LowerProgram(program)
	if err != nil {
		color.Red("Lowering failed: %s", err)
		os.Exit(1)
	}

	report, err := verifier.Apply(lowered, oracle, verifier.Options{
		Trace:   os.Stdout,
		Verbose: verbose,
	})
	if err != nil {
		color.Red("Verification failed: %s", err)
		os.Exit(1)
	}

	switch {
	case report.Result > 0:
		color.Green("✅ %s: all specifications hold", path)
	case report.Result < 0:
		color.Red("❌ %s: specification violated", path)
		for _, failure := range report.Failures {
			fmt.Printf("  %s: %s\n", failure.VC, failure.Outcome.Verdict)
			if failure.Outcome.Model != "" && verbose {
				fmt.Println(failure.Outcome.Model)
			}
		}
		os.Exit(1)
	default:
		color.Yellow("❓ %s: solver could not decide", path)
		os.Exit(2)
	}
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("❌ Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", pe.Message())
}
