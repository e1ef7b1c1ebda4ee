// Package diagnostics carries the structured facts the checker emits:
// error-kind codes, source spans, the resolved kinds involved, and optional
// rewrite suggestions. Rendering these into human-readable reports with
// source excerpts is the diagnostic renderer's job, not this package's.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/eventflow/remap/internal/token"
)

// Code identifies an error kind. Values are stable: hosts key alerting and
// docs links off them.
type Code int

const (
	SyntaxError                Code = 201
	NonBooleanPredicate        Code = 102
	FallibleWithoutHandling    Code = 103
	UnnecessaryErrorAssignment Code = 104
	UnknownFunction            Code = 105
	InvalidArgumentType        Code = 110
	UnnecessaryNoopAssignment  Code = 640
	InvalidAssignmentTarget    Code = 641
	ParentPathRejectsMutation  Code = 642
)

func (c Code) String() string { return fmt.Sprintf("E%03d", int(c)) }

// Span locates a diagnostic in the source. End is exclusive; a zero End
// means the diagnostic covers a single token starting at Start.
type Span struct {
	Start token.Token
	End   token.Token
}

func SpanOf(tok token.Token) Span { return Span{Start: tok} }

// Diagnostic is one structured compile-time finding.
type Diagnostic struct {
	Code        Code
	Span        Span
	Message     string
	Kinds       []string // resolved type(s) involved, rendered
	Suggestions []string // rewrite templates, e.g. "ok, err = %s"
}

func New(code Code, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Span:    SpanOf(tok),
		Message: fmt.Sprintf(format, args...),
	}
}

func (d *Diagnostic) WithKinds(kinds ...string) *Diagnostic {
	d.Kinds = append(d.Kinds, kinds...)
	return d
}

func (d *Diagnostic) WithSuggestion(format string, args ...interface{}) *Diagnostic {
	d.Suggestions = append(d.Suggestions, fmt.Sprintf(format, args...))
	return d
}

// Error implements error so a single diagnostic can travel through error
// returns inside the compiler.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s [%d:%d]: %s", d.Code, d.Span.Start.Line, d.Span.Start.Column, d.Message)
}

// List accumulates diagnostics, deduplicating by position and code so a
// poisoned subtree does not repeat itself.
type List struct {
	seen map[string]*Diagnostic
}

func (l *List) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	if l.seen == nil {
		l.seen = make(map[string]*Diagnostic)
	}
	key := fmt.Sprintf("%d:%d:%d", d.Span.Start.Line, d.Span.Start.Column, d.Code)
	l.seen[key] = d
}

func (l *List) Empty() bool { return len(l.seen) == 0 }

func (l *List) Len() int { return len(l.seen) }

// All returns the diagnostics sorted by source position for deterministic
// reporting.
func (l *List) All() []*Diagnostic {
	out := make([]*Diagnostic, 0, len(l.seen))
	for _, d := range l.seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Span.Start, out[j].Span.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// HasCode reports whether any accumulated diagnostic carries the code.
func (l *List) HasCode(code Code) bool {
	for _, d := range l.seen {
		if d.Code == code {
			return true
		}
	}
	return false
}
