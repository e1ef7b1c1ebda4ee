package token

import "fmt"

type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"
	NEWLINE Type = "NEWLINE"

	IDENT  Type = "IDENT"  // msg, foo
	INT    Type = "INT"    // 42
	FLOAT  Type = "FLOAT"  // 3.14
	STRING Type = "STRING" // "hello"
	REGEX  Type = "REGEX"  // r'\d+'

	ASSIGN   Type = "="
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"
	BANG     Type = "!"

	EQ       Type = "=="
	NOT_EQ   Type = "!="
	LT       Type = "<"
	GT       Type = ">"
	LT_EQ    Type = "<="
	GT_EQ    Type = ">="
	AND      Type = "&&"
	OR       Type = "||"
	COALESCE Type = "??"

	COMMA      Type = ","
	SEMICOLON  Type = ";"
	COLON      Type = ":"
	DOT        Type = "."
	PIPE       Type = "|"
	UNDERSCORE Type = "_"

	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
	LBRACKET Type = "["
	RBRACKET Type = "]"

	IF    Type = "IF"
	ELSE  Type = "ELSE"
	TRUE  Type = "TRUE"
	FALSE Type = "FALSE"
	NULL  Type = "NULL"
)

var keywords = map[string]Type{
	"if":    IF,
	"else":  ELSE,
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// LookupIdent returns the keyword type for an identifier, or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}

type Token struct {
	Type    Type
	Lexeme  string
	Line    int // 1-based
	Column  int // 1-based
	Offset  int // byte offset into the source
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
