// Package pathspec describes locations inside a structured event value as a
// sequence of field, index and coalesce segments. Paths are shared between
// the compile-time resolver and the runtime mutator so both walk the exact
// same segments.
package pathspec

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a path: a field by name, an index by position, or a
// coalesce of field alternatives (first one present wins).
type Segment interface {
	String() string
	segment()
}

type Field string

func (f Field) segment()       {}
func (f Field) String() string { return string(f) }

type Index int

func (i Index) segment()       {}
func (i Index) String() string { return fmt.Sprintf("[%d]", int(i)) }

// Coalesce lists field alternatives, e.g. .(host | hostname).
type Coalesce []string

func (c Coalesce) segment()       {}
func (c Coalesce) String() string { return "(" + strings.Join(c, " | ") + ")" }

// Path is an ordered list of segments. The empty path addresses the root.
type Path []Segment

func Root() Path { return nil }

func (p Path) IsRoot() bool { return len(p) == 0 }

// String renders the path without a leading dot: "a.b[3].(x | y)". Callers
// prefix "." themselves when printing event-rooted paths.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if _, isIndex := seg.(Index); !isIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Parse reads a textual path such as ".a.b[3].(x | y)" or "a.b". A leading
// dot is optional; an empty string is the root path.
func Parse(s string) (Path, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return Root(), nil
	}

	var path Path
	i := 0
	expectDot := false
	for i < len(s) {
		switch {
		case s[i] == '.':
			if !expectDot {
				return nil, fmt.Errorf("path %q: unexpected '.' at offset %d", s, i)
			}
			expectDot = false
			i++
		case s[i] == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unterminated index at offset %d", s, i)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("path %q: invalid index: %v", s, err)
			}
			path = append(path, Index(n))
			i += end + 1
			expectDot = true
		case s[i] == '(':
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unterminated coalesce at offset %d", s, i)
			}
			var alts Coalesce
			for _, alt := range strings.Split(s[i+1:i+end], "|") {
				alt = strings.TrimSpace(alt)
				if alt == "" {
					return nil, fmt.Errorf("path %q: empty coalesce alternative", s)
				}
				alts = append(alts, alt)
			}
			if len(alts) < 2 {
				return nil, fmt.Errorf("path %q: coalesce needs at least two alternatives", s)
			}
			path = append(path, alts)
			i += end + 1
			expectDot = true
		default:
			if expectDot {
				return nil, fmt.Errorf("path %q: expected '.' or '[' at offset %d", s, i)
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			field := s[i:j]
			if field == "" {
				return nil, fmt.Errorf("path %q: empty field at offset %d", s, i)
			}
			path = append(path, Field(field))
			i = j
			expectDot = true
		}
	}
	if !expectDot {
		return nil, fmt.Errorf("path %q: trailing separator", s)
	}
	return path, nil
}

// MustParse is Parse for statically known paths; it panics on malformed input.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
