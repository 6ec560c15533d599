package verifier

import (
	"io"

	"github.com/tliron/commonlog"

	"verity/internal/ir"
	"verity/internal/solver"
)

var log = commonlog.GetLogger("verity.verifier")

// Result is the aggregate verdict over every verification condition of a
// program, with the conventional integer encoding: positive when all
// specifications hold, negative when at least one fails, zero when the
// oracle could not decide.
type Result int

const (
	ResultUnknown Result = 0
	ResultOK      Result = 1
	ResultFail    Result = -1
)

func (r Result) String() string {
	switch {
	case r > 0:
		return "OK"
	case r < 0:
		return "FAIL"
	}
	return "UNKNOWN"
}

// Options control diagnostics; they do not affect verdicts.
type Options struct {
	// Trace receives pretty-printed basic paths and VCs when Verbose is set.
	Trace   io.Writer
	Verbose bool
}

// Failure describes one refuted or undecided verification condition.
type Failure struct {
	VC      *VC
	Outcome solver.Outcome
}

// Report carries the aggregate result and the per-VC failures behind it.
type Report struct {
	Result   Result
	Failures []Failure
}

// Apply verifies a whole program: it validates the IR, registers the user
// predicates with the oracle once, enumerates every basic path, builds each
// path's verification conditions, and dispatches them. The result is OK only
// if every VC is valid; a refuted VC makes it FAIL, and an undecided one
// (with nothing refuted) makes it UNKNOWN.
func Apply(program *ir.Program, oracle solver.Oracle, opts Options) (*Report, error) {
	if err := ir.NewChecker().CheckProgram(program); err != nil {
		return nil, err
	}

	for _, pred := range program.Predicates {
		if err := oracle.DefinePredicate(pred); err != nil {
			return nil, err
		}
	}

	report := &Report{Result: ResultOK}
	for _, fn := range program.Functions {
		paths, err := EnumeratePaths(program, fn)
		if err != nil {
			return nil, err
		}
		log.Infof("function %s: %d basic paths", fn.Name, len(paths))

		for _, p := range paths {
			if opts.Verbose && opts.Trace != nil {
				WritePath(opts.Trace, p)
			}
			vcs, err := BuildVCs(fn.Name, p)
			if err != nil {
				return nil, err
			}
			for _, vc := range vcs {
				if opts.Verbose && opts.Trace != nil {
					WriteVC(opts.Trace, vc)
				}
				outcome, err := oracle.CheckValid(vc.Formula)
				if err != nil {
					return nil, err
				}
				switch outcome.Verdict {
				case solver.VerdictValid:
					continue
				case solver.VerdictInvalid:
					report.Result = ResultFail
				case solver.VerdictUnknown:
					if report.Result == ResultOK {
						report.Result = ResultUnknown
					}
				}
				log.Infof("%s: %s", vc, outcome.Verdict)
				report.Failures = append(report.Failures, Failure{VC: vc, Outcome: outcome})
			}
		}
	}
	return report, nil
}
