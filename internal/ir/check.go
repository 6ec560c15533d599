package ir

import (
	"fmt"
	"strings"
)

// Checker validates that a program satisfies the structural invariants the
// verifier relies on. Malformed IR is fatal: the verifier refuses to start
// rather than recover or partially verify.
type Checker struct {
	program *Program
	errors  []string
}

// NewChecker creates a new IR checker.
func NewChecker() *Checker {
	return &Checker{errors: make([]string, 0)}
}

// CheckProgram validates a complete program.
func (c *Checker) CheckProgram(p *Program) error {
	c.program = p
	c.errors = make([]string, 0)

	predNames := make(map[string]bool)
	for _, pred := range p.Predicates {
		if predNames[pred.Name] {
			c.addError("duplicate predicate name: %s", pred.Name)
		}
		predNames[pred.Name] = true
		if pred.Body == nil {
			c.addError("predicate %s: body cannot be nil", pred.Name)
		} else if !SameType(pred.Body.Type(), &BoolType{}) {
			c.addError("predicate %s: body must be bool, got %s", pred.Name, pred.Body.Type())
		}
	}

	fnNames := make(map[string]bool)
	for _, fn := range p.Functions {
		if fnNames[fn.Name] {
			c.addError("duplicate function name: %s", fn.Name)
		}
		fnNames[fn.Name] = true
		c.checkFunction(fn)
	}

	if len(c.errors) > 0 {
		return fmt.Errorf("malformed IR:\n%s", strings.Join(c.errors, "\n"))
	}
	return nil
}

func (c *Checker) checkFunction(fn *Function) {
	if fn.Pre == nil {
		c.addError("function %s: missing precondition block", fn.Name)
		return
	}
	if fn.Post == nil {
		c.addError("function %s: missing postcondition block", fn.Name)
		return
	}
	if len(fn.Post.Successors()) != 0 {
		c.addError("function %s: postcondition block %s has successors", fn.Name, fn.Post.Name)
	}

	c.checkConditions(fn.Name, fn.Pre.Name, fn.Pre.Conditions, fn.Pre.Rankings)
	c.checkConditions(fn.Name, fn.Post.Name, fn.Post.Conditions, nil)

	// All annotated ranking tuples in one function share a fixed arity; a
	// lexicographic comparison between tuples of different widths has no
	// meaning.
	arity := len(fn.Pre.Rankings)
	for _, b := range fn.Blocks {
		head, ok := b.(*LoopHeadBlock)
		if !ok {
			continue
		}
		c.checkConditions(fn.Name, head.Name, head.Invariants, head.Rankings)
		if len(head.Rankings) == 0 {
			continue
		}
		if arity == 0 {
			arity = len(head.Rankings)
		} else if len(head.Rankings) != arity {
			c.addError("function %s: block %s has %d ranking components, expected %d",
				fn.Name, head.Name, len(head.Rankings), arity)
		}
	}

	for _, b := range allBlocks(fn) {
		for _, s := range b.Statements() {
			c.checkStatement(fn, b, s)
		}
	}

	c.checkCutFreeCycles(fn)
}

func (c *Checker) checkConditions(fn, block string, conds, rankings []Expr) {
	for i, cond := range conds {
		if cond == nil {
			c.addError("function %s: block %s: condition %d is nil", fn, block, i)
		} else if !SameType(cond.Type(), &BoolType{}) {
			c.addError("function %s: block %s: condition %d must be bool, got %s", fn, block, i, cond.Type())
		}
	}
	for i, r := range rankings {
		if r == nil {
			c.addError("function %s: block %s: ranking component %d is nil", fn, block, i)
		} else if !SameType(r.Type(), &IntType{}) {
			c.addError("function %s: block %s: ranking component %d must be int, got %s", fn, block, i, r.Type())
		}
	}
}

func (c *Checker) checkStatement(fn *Function, b Block, s Stmt) {
	switch stmt := s.(type) {
	case *AssumeStmt, *AssertStmt, *AssignStmt, *SubscriptAssignStmt:
		// Shape-checked by construction; typing is the front end's job.
	case *CallStmt:
		callee := c.program.Function(stmt.Callee)
		if callee == nil {
			c.addError("function %s: block %s: call to undefined function %s", fn.Name, b.Label(), stmt.Callee)
			return
		}
		c.checkCall(fn, b, stmt, callee)
	default:
		c.addError("function %s: block %s: unknown statement kind %T", fn.Name, b.Label(), s)
	}
}

// checkCall validates a call site against its callee's signature.
func (c *Checker) checkCall(fn *Function, b Block, stmt *CallStmt, callee *Function) {
	if len(stmt.Args) != len(callee.Params) {
		c.addError("function %s: block %s: call to %s passes %d arguments, callee takes %d",
			fn.Name, b.Label(), stmt.Callee, len(stmt.Args), len(callee.Params))
	}
	if len(stmt.Results) != len(callee.Returns) {
		c.addError("function %s: block %s: call to %s binds %d results, callee returns %d",
			fn.Name, b.Label(), stmt.Callee, len(stmt.Results), len(callee.Returns))
	}
}

// checkCutFreeCycles rejects CFG cycles that avoid every cut-point. Path
// enumeration stops only at cut-points, so such a cycle would never
// terminate the DFS.
func (c *Checker) checkCutFreeCycles(fn *Function) {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make(map[Block]int)

	var visit func(b Block) bool
	visit = func(b Block) bool {
		switch b.(type) {
		case *PreconditionBlock, *PostconditionBlock, *LoopHeadBlock:
			return true
		}
		switch state[b] {
		case onStack:
			c.addError("function %s: cycle through block %s avoids every cut-point", fn.Name, b.Label())
			return false
		case done:
			return true
		}
		state[b] = onStack
		for _, succ := range b.Successors() {
			if !visit(succ) {
				return false
			}
		}
		state[b] = done
		return true
	}

	for _, b := range allBlocks(fn) {
		// Cut-points are legal cycle breakers; descend only through their
		// successors.
		switch b.(type) {
		case *PreconditionBlock, *LoopHeadBlock:
			for _, succ := range b.Successors() {
				if !visit(succ) {
					return
				}
			}
		}
	}
}

func (c *Checker) addError(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

// allBlocks returns the precondition block, interior blocks, and
// postcondition block of a function in that order.
func allBlocks(fn *Function) []Block {
	blocks := make([]Block, 0, len(fn.Blocks)+2)
	blocks = append(blocks, fn.Pre)
	blocks = append(blocks, fn.Blocks...)
	blocks = append(blocks, fn.Post)
	return blocks
}
