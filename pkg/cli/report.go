package cli

import (
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/eventflow/remap/internal/diagnostics"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
	ansiReset  = "\x1b[0m"
)

// reportDiagnostics renders compile diagnostics for a human, colored only
// when the destination is a real terminal.
func reportDiagnostics(diags *diagnostics.List, w io.Writer) {
	color := isTerminal(w)
	for _, d := range diags.All() {
		code, reset, dim := d.Code.String(), "", ""
		if color {
			code = ansiRed + code + ansiReset
			reset = ansiReset
			dim = ansiDim
		}
		fmt.Fprintf(w, "error[%s] %d:%d: %s\n", code, d.Span.Start.Line, d.Span.Start.Column, d.Message)
		for _, kinds := range d.Kinds {
			fmt.Fprintf(w, "  %sresolved type: %s%s\n", dim, kinds, reset)
		}
		for _, s := range d.Suggestions {
			if color {
				fmt.Fprintf(w, "  %stry:%s %s\n", ansiYellow, ansiReset, s)
			} else {
				fmt.Fprintf(w, "  try: %s\n", s)
			}
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
