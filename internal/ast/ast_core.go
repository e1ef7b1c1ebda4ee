// Package ast defines the expression tree the parser produces and the
// checker and evaluator consume: literals, queries, operators, calls,
// conditionals, assignment variants, error-handling wrappers and blocks.
package ast

import (
	"strings"

	"github.com/eventflow/remap/internal/token"
)

// Node is the base interface for all tree nodes.
type Node interface {
	GetToken() token.Token
	String() string
}

// Statement is a node valid at program/block top level.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node producing a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node: a sequence of statements whose last value is the
// program's result.
type Program struct {
	Statements []Statement
}

func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}

func (p *Program) String() string {
	parts := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

// ExpressionStatement wraps an expression used in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode() {}
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}
func (es *ExpressionStatement) String() string { return es.Expression.String() }
