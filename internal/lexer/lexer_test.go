package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflow/remap/internal/token"
)

func collect(input string) []token.Token {
	l := New(input)
	var out []token.Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func TestOperators(t *testing.T) {
	toks := collect(`= == != < <= > >= && || ?? + - * / ! | _`)
	want := []token.Type{
		token.ASSIGN, token.EQ, token.NOT_EQ, token.LT, token.LT_EQ,
		token.GT, token.GT_EQ, token.AND, token.OR, token.COALESCE,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.BANG, token.PIPE, token.UNDERSCORE, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := collect("if else true false null status_code")
	want := []token.Type{
		token.IF, token.ELSE, token.TRUE, token.FALSE, token.NULL,
		token.IDENT, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type)
	}
	assert.Equal(t, "status_code", toks[5].Lexeme)
}

func TestNumbers(t *testing.T) {
	toks := collect("42 3.14 7.")
	assert.Equal(t, token.INT, toks[0].Type)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.FLOAT, toks[1].Type)
	assert.Equal(t, "3.14", toks[1].Lexeme)
	// A trailing dot is not part of the number.
	assert.Equal(t, token.INT, toks[2].Type)
	assert.Equal(t, token.DOT, toks[3].Type)
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb\"c"`)
	require.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "a\nb\"c", toks[0].Lexeme)
}

func TestRegexLiteral(t *testing.T) {
	toks := collect(`r'\d+' rest`)
	require.Equal(t, token.REGEX, toks[0].Type)
	assert.Equal(t, `\d+`, toks[0].Lexeme)
	assert.Equal(t, token.IDENT, toks[1].Type)
	assert.Equal(t, "rest", toks[1].Lexeme)
}

func TestCommentsAndNewlines(t *testing.T) {
	toks := collect("a # trailing comment\nb")
	want := []token.Type{token.IDENT, token.NEWLINE, token.IDENT, token.EOF}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type)
	}
}

func TestPositions(t *testing.T) {
	toks := collect("a\n  b")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	b := toks[2]
	assert.Equal(t, 2, b.Line)
	assert.Equal(t, 3, b.Column)
}

func TestIllegal(t *testing.T) {
	toks := collect("a & b")
	assert.Equal(t, token.ILLEGAL, toks[1].Type)
}
