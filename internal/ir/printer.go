package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for the verification IR.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer.
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the string representation of a program.
func Print(program *Program) string {
	p := NewPrinter()
	p.printProgram(program)
	return p.output.String()
}

// PrintFunction returns the string representation of one function.
func PrintFunction(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(program *Program) {
	for _, pred := range program.Predicates {
		p.writeLine("predicate %s(%s) = %s", pred.Name, formatVars(pred.Params), pred.Body)
	}
	if len(program.Predicates) > 0 {
		p.writeLine("")
	}
	for i, fn := range program.Functions {
		if i > 0 {
			p.writeLine("")
		}
		p.printFunction(fn)
	}
}

func (p *Printer) printFunction(fn *Function) {
	p.writeLine("fun %s(%s): (%s)", fn.Name, formatVars(fn.Params), formatVars(fn.Returns))
	p.indent++
	for _, b := range allBlocks(fn) {
		p.printBlock(b)
	}
	p.indent--
}

func (p *Printer) printBlock(b Block) {
	switch block := b.(type) {
	case *PreconditionBlock:
		p.writeLine("%s: precondition", block.Name)
		p.printAnnotations("requires", block.Conditions)
		p.printAnnotations("decreases", block.Rankings)
	case *PostconditionBlock:
		p.writeLine("%s: postcondition", block.Name)
		p.printAnnotations("ensures", block.Conditions)
	case *LoopHeadBlock:
		p.writeLine("%s: loop head", block.Name)
		p.printAnnotations("invariant", block.Invariants)
		p.printAnnotations("decreases", block.Rankings)
	case *BasicBlock:
		p.writeLine("%s:", block.Name)
	}

	p.indent++
	for _, s := range b.Statements() {
		p.writeLine("%s", s)
	}
	if succs := b.Successors(); len(succs) > 0 {
		labels := make([]string, len(succs))
		for i, succ := range succs {
			labels[i] = succ.Label()
		}
		p.writeLine("-> %s", strings.Join(labels, ", "))
	}
	p.indent--
}

func (p *Printer) printAnnotations(keyword string, exprs []Expr) {
	p.indent++
	for _, e := range exprs {
		p.writeLine("%s %s", keyword, e)
	}
	p.indent--
}

func formatVars(vars []*Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%s: %s", v.Name, v.Type)
	}
	return strings.Join(parts, ", ")
}
