package verifier

import (
	"fmt"
	"io"
)

// WritePath pretty-prints one basic path to the sink.
func WritePath(w io.Writer, p *BasicPath) {
	fmt.Fprintf(w, "path %s -> %s\n", p.HeadBlock.Label(), p.TailBlock.Label())
	for _, c := range p.HeadConditions {
		fmt.Fprintf(w, "  head  %s\n", c)
	}
	for _, r := range p.HeadRankings {
		fmt.Fprintf(w, "  head# %s\n", r)
	}
	for _, s := range p.Statements {
		fmt.Fprintf(w, "        %s\n", s)
	}
	for _, c := range p.TailConditions {
		fmt.Fprintf(w, "  tail  %s\n", c)
	}
	for _, r := range p.TailRankings {
		fmt.Fprintf(w, "  tail# %s\n", r)
	}
}

// WriteVC pretty-prints one verification condition to the sink.
func WriteVC(w io.Writer, vc *VC) {
	fmt.Fprintf(w, "vc [%s] %s: %s\n", vc.Kind, vc.Function, vc.Path)
	fmt.Fprintf(w, "  %s\n", vc.Formula)
}
