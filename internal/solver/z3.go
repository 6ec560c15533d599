package solver

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tliron/commonlog"

	"verity/internal/ir"
)

var log = commonlog.GetLogger("verity.solver")

// Z3Oracle discharges validity queries through the z3 binary. Each
// CheckValid is one-shot: the session prelude (theory setup plus the
// predicate definitions registered so far) and the negated formula are piped
// to a fresh solver process, and the first result line decides the verdict.
type Z3Oracle struct {
	path       string
	predicates []string
}

// NewZ3Oracle creates an oracle running the given binary; an empty path
// means "z3" from PATH.
func NewZ3Oracle(path string) *Z3Oracle {
	if path == "" {
		path = "z3"
	}
	return &Z3Oracle{path: path, predicates: make([]string, 0)}
}

// Available reports whether the solver binary can be found.
func (z *Z3Oracle) Available() bool {
	_, err := exec.LookPath(z.path)
	return err == nil
}

// DefinePredicate registers a predicate definition for every later query in
// this session.
func (z *Z3Oracle) DefinePredicate(pred *ir.Predicate) error {
	def, err := emitPredicate(pred)
	if err != nil {
		return err
	}
	z.predicates = append(z.predicates, def)
	log.Debugf("defined predicate %s", pred.Name)
	return nil
}

// CheckValid asks whether the negation of the formula is unsatisfiable.
func (z *Z3Oracle) CheckValid(formula ir.Expr) (Outcome, error) {
	script, err := BuildScript(z.predicates, formula)
	if err != nil {
		return Outcome{}, err
	}

	cmd := exec.Command(z.path, "-smt2", "-in")
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// z3 exits non-zero on (error ...) output even when check-sat already
	// answered, so the exit status alone decides nothing; parse stdout first.
	runErr := cmd.Run()

	result, model := splitResult(stdout.String())
	log.Debugf("z3 answered %q for %s", result, formula)
	switch result {
	case "unsat":
		return Outcome{Verdict: VerdictValid}, nil
	case "sat":
		return Outcome{Verdict: VerdictInvalid, Model: model}, nil
	case "unknown":
		return Outcome{Verdict: VerdictUnknown}, nil
	}

	if runErr != nil {
		return Outcome{}, fmt.Errorf("z3 failed: %v: %s", runErr, strings.TrimSpace(stderr.String()))
	}
	return Outcome{}, fmt.Errorf("unexpected z3 output: %q", strings.TrimSpace(stdout.String()))
}

// splitResult separates the check-sat answer from the model text that
// follows it. After an unsat answer the trailing get-model produces an
// (error ...) line, which is dropped.
func splitResult(output string) (string, string) {
	lines := strings.Split(output, "\n")
	result := ""
	rest := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "(error") {
			continue
		}
		if result == "" {
			result = trimmed
			continue
		}
		rest = append(rest, line)
	}
	return result, strings.Join(rest, "\n")
}
