package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eventflow/remap/internal/pathspec"
	"github.com/eventflow/remap/internal/token"
)

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return strconv.FormatFloat(fl.Value, 'g', -1, 64) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string        { return strconv.FormatBool(bl.Value) }

type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()       {}
func (nl *NullLiteral) GetToken() token.Token { return nl.Token }
func (nl *NullLiteral) String() string        { return "null" }

type RegexLiteral struct {
	Token   token.Token
	Pattern string
}

func (rl *RegexLiteral) expressionNode()       {}
func (rl *RegexLiteral) GetToken() token.Token { return rl.Token }
func (rl *RegexLiteral) String() string        { return "r'" + rl.Pattern + "'" }

// ObjectEntry keeps literal fields ordered for deterministic evaluation.
type ObjectEntry struct {
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	Token   token.Token
	Entries []ObjectEntry
}

func (ol *ObjectLiteral) expressionNode()       {}
func (ol *ObjectLiteral) GetToken() token.Token { return ol.Token }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Entries))
	for i, e := range ol.Entries {
		parts[i] = fmt.Sprintf("%q: %s", e.Key, e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }
func (al *ArrayLiteral) String() string {
	parts := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Query reads the event (External) or a local variable at a path. An empty
// path on an external query is the whole event; on a variable it is the
// bare binding.
type Query struct {
	Token    token.Token
	External bool
	Variable string // empty when External
	Path     pathspec.Path
}

func (q *Query) expressionNode()       {}
func (q *Query) GetToken() token.Token { return q.Token }
func (q *Query) String() string {
	if q.External {
		return "." + q.Path.String()
	}
	if q.Path.IsRoot() {
		return q.Variable
	}
	return q.Variable + "." + q.Path.String()
}

type InfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return fmt.Sprintf("%s %s %s", ie.Left.String(), ie.Operator, ie.Right.String())
}

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string        { return pe.Operator + pe.Right.String() }

// Argument is a positional or named call argument.
type Argument struct {
	Token token.Token
	Name  string // empty for positional
	Value Expression
}

func (a *Argument) String() string {
	if a.Name != "" {
		return a.Name + ": " + a.Value.String()
	}
	return a.Value.String()
}

type CallExpression struct {
	Token     token.Token // the function name token
	Name      string
	Arguments []*Argument
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	parts := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		parts[i] = a.String()
	}
	return ce.Name + "(" + strings.Join(parts, ", ") + ")"
}

// MustExpression is the abort form `expr!`: a runtime failure of the inner
// expression terminates the whole program run instead of propagating as a
// recoverable error.
type MustExpression struct {
	Token      token.Token // the '!' token
	Expression Expression
}

func (me *MustExpression) expressionNode()       {}
func (me *MustExpression) GetToken() token.Token { return me.Token }
func (me *MustExpression) String() string {
	if call, ok := me.Expression.(*CallExpression); ok {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		return call.Name + "!(" + strings.Join(parts, ", ") + ")"
	}
	return me.Expression.String() + "!"
}

// CoalesceExpression is `left ?? right`: a runtime failure of the left side
// yields the right side instead.
type CoalesceExpression struct {
	Token token.Token // the '??' token
	Left  Expression
	Right Expression
}

func (ce *CoalesceExpression) expressionNode()       {}
func (ce *CoalesceExpression) GetToken() token.Token { return ce.Token }
func (ce *CoalesceExpression) String() string {
	return ce.Left.String() + " ?? " + ce.Right.String()
}

type BlockExpression struct {
	Token      token.Token
	Statements []Statement
}

func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) GetToken() token.Token { return be.Token }
func (be *BlockExpression) String() string {
	parts := make([]string, len(be.Statements))
	for i, s := range be.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockExpression
	Alternative *BlockExpression // nil when there is no else arm
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) GetToken() token.Token { return ie.Token }
func (ie *IfExpression) String() string {
	s := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		s += " else " + ie.Alternative.String()
	}
	return s
}

// AssignTarget is the left side of an assignment: the event root or a local
// variable, optionally narrowed by a path, or the no-op target `_`.
type AssignTarget struct {
	Token    token.Token
	Noop     bool
	External bool
	Variable string
	Path     pathspec.Path
}

func (at *AssignTarget) String() string {
	switch {
	case at.Noop:
		return "_"
	case at.External && at.Path.IsRoot():
		return "."
	case at.External:
		return "." + at.Path.String()
	case at.Path.IsRoot():
		return at.Variable
	default:
		return at.Variable + "." + at.Path.String()
	}
}

// AssignmentExpression is the single-target form `target = expr`.
type AssignmentExpression struct {
	Token  token.Token // the '=' token
	Target *AssignTarget
	Value  Expression
}

func (ae *AssignmentExpression) expressionNode()       {}
func (ae *AssignmentExpression) GetToken() token.Token { return ae.Token }
func (ae *AssignmentExpression) String() string {
	return ae.Target.String() + " = " + ae.Value.String()
}

// InfallibleAssignmentExpression is the dual-capture form
// `ok, err = expr`: both targets are always bound, so the statement itself
// can never fail.
type InfallibleAssignmentExpression struct {
	Token token.Token // the '=' token
	Ok    *AssignTarget
	Err   *AssignTarget
	Value Expression
}

func (ia *InfallibleAssignmentExpression) expressionNode()       {}
func (ia *InfallibleAssignmentExpression) GetToken() token.Token { return ia.Token }
func (ia *InfallibleAssignmentExpression) String() string {
	return ia.Ok.String() + ", " + ia.Err.String() + " = " + ia.Value.String()
}
