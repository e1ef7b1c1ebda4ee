// Package parser builds the expression tree from tokens. It is a Pratt
// parser over a pre-lexed token slice; assignment targets are recognized
// with bounded backtracking.
package parser

import (
	"strconv"

	"github.com/eventflow/remap/internal/ast"
	"github.com/eventflow/remap/internal/diagnostics"
	"github.com/eventflow/remap/internal/lexer"
	"github.com/eventflow/remap/internal/pathspec"
	"github.com/eventflow/remap/internal/token"
)

const (
	lowest = iota
	coalescePrec
	orPrec
	andPrec
	equalsPrec
	comparePrec
	sumPrec
	productPrec
	prefixPrec
)

var precedences = map[token.Type]int{
	token.COALESCE: coalescePrec,
	token.OR:       orPrec,
	token.AND:      andPrec,
	token.EQ:       equalsPrec,
	token.NOT_EQ:   equalsPrec,
	token.LT:       comparePrec,
	token.GT:       comparePrec,
	token.LT_EQ:    comparePrec,
	token.GT_EQ:    comparePrec,
	token.PLUS:     sumPrec,
	token.MINUS:    sumPrec,
	token.ASTERISK: productPrec,
	token.SLASH:    productPrec,
}

type Parser struct {
	tokens []token.Token
	pos    int
	errors diagnostics.List
}

func New(input string) *Parser {
	l := lexer.New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return &Parser{tokens: tokens}
}

// Parse consumes the whole input and returns the program plus any syntax
// diagnostics. Parsing continues past errors to surface as many as possible.
func Parse(input string) (*ast.Program, *diagnostics.List) {
	p := New(input)
	prog := p.parseProgram()
	return prog, &p.errors
}

func (p *Parser) cur() token.Token { return p.tokens[p.pos] }

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) next() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek().Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		return true
	}
	p.errorf(p.cur(), "expected %s, found %s", t, p.cur().Type)
	return false
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.errors.Add(diagnostics.New(diagnostics.SyntaxError, tok, format, args...))
}

func (p *Parser) skipSeparators() {
	for p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) {
		p.next()
	}
}

func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.next()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipSeparators()
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			// Recover: drop tokens to the next statement boundary.
			for !p.curIs(token.NEWLINE) && !p.curIs(token.SEMICOLON) && !p.curIs(token.EOF) {
				p.next()
			}
		}
		p.skipSeparators()
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.cur()
	expr := p.parseStatementExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

// parseStatementExpression recognizes the assignment forms before falling
// back to a plain expression:
//
//	target = expr
//	ok, err = expr
func (p *Parser) parseStatementExpression() ast.Expression {
	mark := p.pos
	if assign := p.tryParseAssignment(); assign != nil {
		return assign
	}
	p.pos = mark
	return p.parseExpression(lowest)
}

func (p *Parser) tryParseAssignment() ast.Expression {
	first := p.parseAssignTarget()
	if first == nil {
		return nil
	}

	if p.curIs(token.COMMA) {
		p.next()
		second := p.parseAssignTarget()
		if second == nil || !p.curIs(token.ASSIGN) {
			return nil
		}
		eq := p.cur()
		p.next()
		p.skipNewlines()
		rhs := p.parseExpression(lowest)
		if rhs == nil {
			return nil
		}
		return &ast.InfallibleAssignmentExpression{Token: eq, Ok: first, Err: second, Value: rhs}
	}

	if !p.curIs(token.ASSIGN) {
		return nil
	}
	eq := p.cur()
	p.next()
	p.skipNewlines()
	rhs := p.parseExpression(lowest)
	if rhs == nil {
		return nil
	}
	return &ast.AssignmentExpression{Token: eq, Target: first, Value: rhs}
}

// parseAssignTarget parses `_`, `.path`, `ident` or `ident.path`, returning
// nil (without reporting) when the tokens do not form a target.
func (p *Parser) parseAssignTarget() *ast.AssignTarget {
	tok := p.cur()
	switch tok.Type {
	case token.UNDERSCORE:
		p.next()
		return &ast.AssignTarget{Token: tok, Noop: true}
	case token.DOT:
		p.next()
		path, ok := p.parsePathSegments(true)
		if !ok {
			return nil
		}
		return &ast.AssignTarget{Token: tok, External: true, Path: path}
	case token.IDENT:
		name := tok.Lexeme
		p.next()
		var path pathspec.Path
		if p.curIs(token.DOT) || p.curIs(token.LBRACKET) {
			var ok bool
			path, ok = p.parseVariablePath()
			if !ok {
				return nil
			}
		}
		return &ast.AssignTarget{Token: tok, Variable: name, Path: path}
	default:
		return nil
	}
}

// parsePathSegments parses segments after an event-root dot: field, [index]
// and (a | b) coalesce segments. Write targets reject coalesce later, in
// the checker, where the diagnostic can carry types.
func (p *Parser) parsePathSegments(allowEmpty bool) (pathspec.Path, bool) {
	var path pathspec.Path
	for {
		switch p.cur().Type {
		case token.IDENT:
			path = append(path, pathspec.Field(p.cur().Lexeme))
			p.next()
		case token.STRING:
			path = append(path, pathspec.Field(p.cur().Lexeme))
			p.next()
		case token.LPAREN:
			seg, ok := p.parseCoalesceSegment()
			if !ok {
				return nil, false
			}
			path = append(path, seg)
		case token.LBRACKET:
			seg, ok := p.parseIndexSegment()
			if !ok {
				return nil, false
			}
			path = append(path, seg)
		default:
			if len(path) == 0 && !allowEmpty {
				return nil, false
			}
			return path, true
		}

		switch p.cur().Type {
		case token.DOT:
			p.next()
		case token.LBRACKET:
			// next segment is an index; no dot between
		default:
			return path, true
		}
	}
}

// parseVariablePath parses `.field`/`[index]` suffixes after a variable
// name.
func (p *Parser) parseVariablePath() (pathspec.Path, bool) {
	var path pathspec.Path
	for {
		switch p.cur().Type {
		case token.DOT:
			p.next()
			if !p.curIs(token.IDENT) && !p.curIs(token.STRING) {
				return nil, false
			}
			path = append(path, pathspec.Field(p.cur().Lexeme))
			p.next()
		case token.LBRACKET:
			seg, ok := p.parseIndexSegment()
			if !ok {
				return nil, false
			}
			path = append(path, seg)
		default:
			return path, true
		}
	}
}

func (p *Parser) parseIndexSegment() (pathspec.Segment, bool) {
	p.next() // consume '['
	neg := false
	if p.curIs(token.MINUS) {
		neg = true
		p.next()
	}
	if !p.curIs(token.INT) {
		return nil, false
	}
	n, err := strconv.Atoi(p.cur().Lexeme)
	if err != nil {
		return nil, false
	}
	if neg {
		n = -n
	}
	p.next()
	if !p.curIs(token.RBRACKET) {
		return nil, false
	}
	p.next()
	return pathspec.Index(n), true
}

func (p *Parser) parseCoalesceSegment() (pathspec.Segment, bool) {
	p.next() // consume '('
	var alts pathspec.Coalesce
	for {
		if !p.curIs(token.IDENT) && !p.curIs(token.STRING) {
			return nil, false
		}
		alts = append(alts, p.cur().Lexeme)
		p.next()
		if p.curIs(token.PIPE) {
			p.next()
			continue
		}
		break
	}
	if len(alts) < 2 || !p.curIs(token.RPAREN) {
		return nil, false
	}
	p.next()
	return alts, true
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		prec, ok := precedences[p.cur().Type]
		if !ok || precedence >= prec {
			return left
		}
		tok := p.cur()
		p.next()
		p.skipNewlines()
		right := p.parseExpression(prec)
		if right == nil {
			return nil
		}
		if tok.Type == token.COALESCE {
			left = &ast.CoalesceExpression{Token: tok, Left: left, Right: right}
		} else {
			left = &ast.InfixExpression{Token: tok, Operator: tok.Lexeme, Left: left, Right: right}
		}
	}
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.BANG, token.MINUS:
		p.next()
		right := p.parseExpression(prefixPrec)
		if right == nil {
			return nil
		}
		return &ast.PrefixExpression{Token: tok, Operator: tok.Lexeme, Right: right}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.next()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorf(tok, "invalid integer literal %q", tok.Lexeme)
			return nil
		}
		return &ast.IntegerLiteral{Token: tok, Value: n}
	case token.FLOAT:
		p.next()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorf(tok, "invalid float literal %q", tok.Lexeme)
			return nil
		}
		return &ast.FloatLiteral{Token: tok, Value: f}
	case token.STRING:
		p.next()
		return &ast.StringLiteral{Token: tok, Value: tok.Lexeme}
	case token.REGEX:
		p.next()
		return &ast.RegexLiteral{Token: tok, Pattern: tok.Lexeme}
	case token.TRUE, token.FALSE:
		p.next()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}
	case token.NULL:
		p.next()
		return &ast.NullLiteral{Token: tok}
	case token.IF:
		return p.parseIf()
	case token.LPAREN:
		p.next()
		p.skipNewlines()
		inner := p.parseExpression(lowest)
		if inner == nil {
			return nil
		}
		p.skipNewlines()
		if !p.expect(token.RPAREN) {
			return nil
		}
		p.next()
		return p.maybeMust(inner)
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.DOT:
		p.next()
		path, ok := p.parsePathSegments(true)
		if !ok {
			p.errorf(tok, "malformed event path")
			return nil
		}
		return &ast.Query{Token: tok, External: true, Path: path}
	case token.IDENT:
		return p.parseIdentExpression()
	default:
		p.errorf(tok, "unexpected token %s", tok.Type)
		return nil
	}
}

// parseIdentExpression handles calls (with optional `!`), variable queries
// and variable path queries.
func (p *Parser) parseIdentExpression() ast.Expression {
	tok := p.cur()
	p.next()

	switch {
	case p.curIs(token.LPAREN):
		return p.parseCall(tok, false)
	case p.curIs(token.BANG) && p.peekIs(token.LPAREN):
		p.next()
		return p.parseCall(tok, true)
	default:
		path, ok := p.parseVariablePath()
		if !ok {
			p.errorf(p.cur(), "malformed path after %q", tok.Lexeme)
			return nil
		}
		return &ast.Query{Token: tok, Variable: tok.Lexeme, Path: path}
	}
}

func (p *Parser) parseCall(name token.Token, must bool) ast.Expression {
	call := &ast.CallExpression{Token: name, Name: name.Lexeme}
	p.next() // consume '('
	p.skipNewlines()
	for !p.curIs(token.RPAREN) {
		if p.curIs(token.EOF) {
			p.errorf(name, "unterminated call to %q", name.Lexeme)
			return nil
		}
		arg := &ast.Argument{Token: p.cur()}
		if p.curIs(token.IDENT) && p.peekIs(token.COLON) {
			arg.Name = p.cur().Lexeme
			p.next()
			p.next()
			p.skipNewlines()
		}
		expr := p.parseExpression(lowest)
		if expr == nil {
			return nil
		}
		arg.Value = expr
		call.Arguments = append(call.Arguments, arg)
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.next() // consume ')'

	if must {
		return &ast.MustExpression{Token: name, Expression: call}
	}
	return p.maybeMust(call)
}

// maybeMust wraps an expression followed by a postfix `!` in the abort form.
// The lexer has already folded `!=` into its own token, so a BANG here is
// unambiguous... unless a prefix negation follows, which the grammar does
// not allow directly after an expression anyway.
func (p *Parser) maybeMust(expr ast.Expression) ast.Expression {
	if p.curIs(token.BANG) {
		tok := p.cur()
		p.next()
		return &ast.MustExpression{Token: tok, Expression: expr}
	}
	return expr
}

func (p *Parser) parseIf() ast.Expression {
	tok := p.cur()
	p.next()
	cond := p.parseExpression(lowest)
	if cond == nil {
		return nil
	}
	p.skipNewlines()
	cons := p.parseBlock()
	if cons == nil {
		return nil
	}
	expr := &ast.IfExpression{Token: tok, Condition: cond, Consequence: cons}

	if p.curIs(token.ELSE) {
		p.next()
		p.skipNewlines()
		if p.curIs(token.IF) {
			nested := p.parseIf()
			if nested == nil {
				return nil
			}
			expr.Alternative = &ast.BlockExpression{
				Token:      nested.GetToken(),
				Statements: []ast.Statement{&ast.ExpressionStatement{Token: nested.GetToken(), Expression: nested}},
			}
		} else {
			alt := p.parseBlock()
			if alt == nil {
				return nil
			}
			expr.Alternative = alt
		}
	}
	return expr
}

func (p *Parser) parseBlock() *ast.BlockExpression {
	tok := p.cur()
	if !p.expect(token.LBRACE) {
		return nil
	}
	p.next()
	block := &ast.BlockExpression{Token: tok}
	p.skipSeparators()
	for !p.curIs(token.RBRACE) {
		if p.curIs(token.EOF) {
			p.errorf(tok, "unterminated block")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.skipSeparators()
	}
	p.next()
	return block
}

// parseObjectLiteral parses `{ "key": expr, ... }`. Keys are strings or
// bare identifiers.
func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	obj := &ast.ObjectLiteral{Token: tok}
	p.skipNewlines()
	for !p.curIs(token.RBRACE) {
		if p.curIs(token.EOF) {
			p.errorf(tok, "unterminated object literal")
			return nil
		}
		if !p.curIs(token.STRING) && !p.curIs(token.IDENT) {
			p.errorf(p.cur(), "expected object key, found %s", p.cur().Type)
			return nil
		}
		key := p.cur().Lexeme
		p.next()
		if !p.expect(token.COLON) {
			return nil
		}
		p.next()
		p.skipNewlines()
		val := p.parseExpression(lowest)
		if val == nil {
			return nil
		}
		obj.Entries = append(obj.Entries, ast.ObjectEntry{Key: key, Value: val})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.next()
	return obj
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	arr := &ast.ArrayLiteral{Token: tok}
	p.skipNewlines()
	for !p.curIs(token.RBRACKET) {
		if p.curIs(token.EOF) {
			p.errorf(tok, "unterminated array literal")
			return nil
		}
		elem := p.parseExpression(lowest)
		if elem == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, elem)
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.next()
	return arr
}
