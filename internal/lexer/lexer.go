// Package lexer turns program source into tokens.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/eventflow/remap/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.skipComment()

	tok := token.Token{Line: l.line, Column: l.column, Offset: l.position}

	switch l.ch {
	case 0:
		tok.Type = token.EOF
	case '\n':
		tok.Type = token.NEWLINE
		tok.Lexeme = "\n"
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Lexeme = token.EQ, "=="
		} else {
			tok.Type, tok.Lexeme = token.ASSIGN, "="
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Lexeme = token.NOT_EQ, "!="
		} else {
			tok.Type, tok.Lexeme = token.BANG, "!"
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Lexeme = token.LT_EQ, "<="
		} else {
			tok.Type, tok.Lexeme = token.LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Lexeme = token.GT_EQ, ">="
		} else {
			tok.Type, tok.Lexeme = token.GT, ">"
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok.Type, tok.Lexeme = token.AND, "&&"
		} else {
			tok.Type, tok.Lexeme = token.ILLEGAL, "&"
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok.Type, tok.Lexeme = token.OR, "||"
		} else {
			tok.Type, tok.Lexeme = token.PIPE, "|"
		}
	case '?':
		if l.peekChar() == '?' {
			l.readChar()
			tok.Type, tok.Lexeme = token.COALESCE, "??"
		} else {
			tok.Type, tok.Lexeme = token.ILLEGAL, "?"
		}
	case '+':
		tok.Type, tok.Lexeme = token.PLUS, "+"
	case '-':
		tok.Type, tok.Lexeme = token.MINUS, "-"
	case '*':
		tok.Type, tok.Lexeme = token.ASTERISK, "*"
	case '/':
		tok.Type, tok.Lexeme = token.SLASH, "/"
	case ',':
		tok.Type, tok.Lexeme = token.COMMA, ","
	case ';':
		tok.Type, tok.Lexeme = token.SEMICOLON, ";"
	case ':':
		tok.Type, tok.Lexeme = token.COLON, ":"
	case '.':
		tok.Type, tok.Lexeme = token.DOT, "."
	case '(':
		tok.Type, tok.Lexeme = token.LPAREN, "("
	case ')':
		tok.Type, tok.Lexeme = token.RPAREN, ")"
	case '{':
		tok.Type, tok.Lexeme = token.LBRACE, "{"
	case '}':
		tok.Type, tok.Lexeme = token.RBRACE, "}"
	case '[':
		tok.Type, tok.Lexeme = token.LBRACKET, "["
	case ']':
		tok.Type, tok.Lexeme = token.RBRACKET, "]"
	case '"':
		tok.Type = token.STRING
		tok.Lexeme = l.readString()
	default:
		switch {
		case l.ch == 'r' && l.peekChar() == '\'':
			tok.Type = token.REGEX
			tok.Lexeme = l.readRegex()
		case isIdentStart(l.ch):
			ident := l.readIdentifier()
			if ident == "_" {
				tok.Type, tok.Lexeme = token.UNDERSCORE, "_"
			} else {
				tok.Type, tok.Lexeme = token.LookupIdent(ident), ident
			}
			return tok
		case unicode.IsDigit(l.ch):
			lexeme, isFloat := l.readNumber()
			if isFloat {
				tok.Type = token.FLOAT
			} else {
				tok.Type = token.INT
			}
			tok.Lexeme = lexeme
			return tok
		default:
			tok.Type = token.ILLEGAL
			tok.Lexeme = string(l.ch)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// skipComment drops '#' to end of line, keeping the newline token.
func (l *Lexer) skipComment() {
	for l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		l.skipWhitespace()
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readString consumes a double-quoted string with \", \\, \n, \t escapes and
// returns the unescaped contents. The caller is positioned on the opening
// quote; on return the current char is the closing quote.
func (l *Lexer) readString() string {
	var out []rune
	for {
		l.readChar()
		switch l.ch {
		case '"', 0:
			return string(out)
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, '\\', l.ch)
			}
		default:
			out = append(out, l.ch)
		}
	}
}

// readRegex consumes r'...' and returns the raw pattern text. Single quotes
// inside the pattern are escaped as \'.
func (l *Lexer) readRegex() string {
	l.readChar() // consume 'r', now on opening quote
	var out []rune
	for {
		l.readChar()
		switch l.ch {
		case '\'', 0:
			return string(out)
		case '\\':
			if l.peekChar() == '\'' {
				l.readChar()
				out = append(out, '\'')
			} else {
				out = append(out, l.ch)
			}
		default:
			out = append(out, l.ch)
		}
	}
}
