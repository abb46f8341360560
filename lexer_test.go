// lexer_test.go
package strex

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// exprRules is the arithmetic ruleset most lexer tests run against.
func exprRules() *Ruleset {
	rs := NewRuleset()
	rs.Add("ws", NewCharset(" \t\n"), 0)
	rs.Add("id", NewCharset(asciiLetters), 0)
	rs.Add("op", NewPattern(`[*+\-/]`), 0)
	rs.Add("num", NewPattern(`\d+`), 0)
	rs.Skip("ws")
	return rs
}

func toks(t *testing.T, rs *Ruleset, src string) []Token {
	t.Helper()
	lex := NewLexer(NewTextScanner(src), rs)
	ts, err := lex.Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return ts
}

func wantTokens(t *testing.T, rs *Ruleset, src string, want ...string) []Token {
	t.Helper()
	ts := toks(t, rs, src)
	var got []string
	for _, tok := range ts {
		if tok.EOF() {
			got = append(got, "eof")
			continue
		}
		got = append(got, tok.Type+"("+tok.Value+")")
	}
	if !assert.Equal(t, want, got) {
		t.Fatalf("source: %q", src)
	}
	return ts
}

func TestLexer_TokenStream(t *testing.T) {
	wantTokens(t, exprRules(), "x * a + 2",
		"id(x)", "op(*)", "id(a)", "op(+)", "num(2)", "eof")
}

func TestLexer_SkipRulesNeverEmit(t *testing.T) {
	ts := toks(t, exprRules(), "  a\t+\nb  ")
	for _, tok := range ts {
		assert.NotEqual(t, "ws", tok.Type)
	}
}

func TestLexer_EOFIsSticky(t *testing.T) {
	lex := NewLexer(NewTextScanner("a"), exprRules())
	tok, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, "id", tok.Type)

	for i := 0; i < 3; i++ {
		tok, err = lex.Next()
		require.NoError(t, err)
		assert.True(t, tok.EOF())
	}
}

// Concatenating every token's consumed span reconstructs the input
// exactly. Run without skip marks so whitespace tokens are emitted too.
func TestLexer_TokensReconstructInput(t *testing.T) {
	rs := NewRuleset()
	rs.Add("ws", NewCharset(" \t\n"), 0)
	rs.Add("id", NewCharset(asciiLetters), 0)
	rs.Add("op", NewPattern(`[*+\-/]`), 0)
	rs.Add("num", NewPattern(`\d+`), 0)

	for _, src := range []string{
		"x * a + 2",
		"  leading\nand trailing  ",
		"",
		"a+b-c/d",
	} {
		ts := toks(t, rs, src)
		var b strings.Builder
		for _, tok := range ts {
			b.WriteString(tok.Value)
		}
		assert.Equal(t, src, b.String(), "source %q", src)
	}
}

func TestLexer_TokenCursors(t *testing.T) {
	ts := toks(t, exprRules(), "ab\n cd")
	require.Len(t, ts, 3)
	assert.Equal(t, Cursor{Offset: 0, Line: 1, Col: 0}, ts[0].Cursor)
	assert.Equal(t, Cursor{Offset: 4, Line: 2, Col: 1}, ts[1].Cursor)
	assert.Equal(t, Cursor{Offset: 6, Line: 2, Col: 3}, ts[2].Cursor) // eof
}

func TestLexer_UnrecognizedInput(t *testing.T) {
	lex := NewLexer(NewTextScanner("a ?"), exprRules())
	_, err := lex.Next()
	require.NoError(t, err)

	_, err = lex.Next()
	var terr *TokenizationError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "?", terr.Token.Value)
	assert.Equal(t, Cursor{Offset: 2, Line: 1, Col: 2}, terr.Token.Cursor)
	assert.True(t, terr.Token.Unrecognized())
}

func TestLexer_TolerantLexesPastGarbage(t *testing.T) {
	lex := NewLexer(NewTextScanner("a ? b"), exprRules())
	lex.Tolerant = true

	var types []string
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		if tok.EOF() {
			break
		}
		types = append(types, tok.Type)
	}
	assert.Equal(t, []string{"id", "", "id"}, types)
}

func TestLexer_ExpectedNamesTriedInCallerOrder(t *testing.T) {
	rs := NewRuleset()
	rs.Add("wide", NewCharset("xy"), 0)
	rs.Add("narrow", NewCharset("x"), 0)

	lex := NewLexer(NewTextScanner("xy"), rs)
	tok, err := lex.Next("narrow", "wide")
	require.NoError(t, err)
	assert.Equal(t, "narrow", tok.Type)
	assert.Equal(t, "x", tok.Value)
}

func TestLexer_ExpectedSkipRuleIsEmitted(t *testing.T) {
	lex := NewLexer(NewTextScanner("  x"), exprRules())
	tok, err := lex.Next("ws")
	require.NoError(t, err)
	assert.Equal(t, "ws", tok.Type)
	assert.Equal(t, "  ", tok.Value)
}

func TestLexer_UnexpectedToken(t *testing.T) {
	lex := NewLexer(NewTextScanner("42"), exprRules())
	_, err := lex.Next("id")
	var uerr *UnexpectedTokenError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, []string{"id"}, uerr.Expected)
	assert.Equal(t, "num", uerr.Token.Type)
	assert.Equal(t, "42", uerr.Token.Value)
}

func TestLexer_ExpectationAtEOF(t *testing.T) {
	lex := NewLexer(NewTextScanner("  "), exprRules())

	_, err := lex.Next("id")
	var uerr *UnexpectedTokenError
	require.True(t, errors.As(err, &uerr))
	assert.True(t, uerr.Token.EOF())

	tok, err := lex.Next("eof")
	require.NoError(t, err)
	assert.True(t, tok.EOF())
}

func TestLexer_UnknownExpectationPanics(t *testing.T) {
	lex := NewLexer(NewTextScanner("x"), exprRules())
	assert.Panics(t, func() { lex.Next("nosuchrule") })
}

func TestLexer_Accept(t *testing.T) {
	lex := NewLexer(NewTextScanner("a + 2"), exprRules())

	tok, ok := lex.Accept("id")
	require.True(t, ok)
	assert.Equal(t, "a", tok.Value)

	// Mismatch: no token, and nothing consumed (not even whitespace).
	_, ok = lex.Accept("num")
	require.False(t, ok)
	tok, ok = lex.Accept("op")
	require.True(t, ok)
	assert.Equal(t, "+", tok.Value)

	tok, ok = lex.Accept("num")
	require.True(t, ok)
	assert.Equal(t, "2", tok.Value)

	_, ok = lex.Accept("id")
	assert.False(t, ok)
	tok, ok = lex.Accept("eof")
	require.True(t, ok)
	assert.True(t, tok.EOF())
}

// An Accept miss that runs through trailing skippable input to the end
// of the stream rewinds; the skipped input must still be there for a
// later call that expects it.
func TestLexer_AcceptMissAtEndLeavesSkippableInput(t *testing.T) {
	lex := NewLexer(NewTextScanner("a  "), exprRules())

	tok, ok := lex.Accept("id")
	require.True(t, ok)
	require.Equal(t, "a", tok.Value)

	_, ok = lex.Accept("id")
	require.False(t, ok)

	tok, ok = lex.Accept("ws")
	require.True(t, ok)
	assert.Equal(t, "ws", tok.Type)
	assert.Equal(t, "  ", tok.Value)

	tok, ok = lex.Accept("eof")
	require.True(t, ok)
	assert.True(t, tok.EOF())
}

func TestLexer_AcceptRestoresPreCallCursor(t *testing.T) {
	s := NewTextScanner("  x")
	lex := NewLexer(s, exprRules())

	before := s.Cursor()
	_, ok := lex.Accept("num")
	require.False(t, ok)
	assert.Equal(t, before, s.Cursor())
}

func TestLexer_QuotedStringToken(t *testing.T) {
	rs := NewRuleset()
	rs.Add("str", NewQuotedString(), 0)

	ts := toks(t, rs, `"hello`)
	require.Len(t, ts, 2)
	assert.Equal(t, `"hello`, ts[0].Value)
	assert.False(t, ts[0].Closed)
	assert.False(t, ts[0].Valid())
}

func TestLexer_PatternTokenCarriesGroups(t *testing.T) {
	rs := NewRuleset()
	rs.Add("assign", NewPattern(`(\w+)=(\d+)`), 0)

	ts := toks(t, rs, "x=1")
	require.Len(t, ts, 2)
	assert.Equal(t, []string{"x", "1"}, ts[0].Groups)
}

// Two rules that could both match: registration order breaks the tie.
func TestLexer_FirstRegisteredRuleWinsTie(t *testing.T) {
	rs := NewRuleset()
	rs.Add("num", NewCharset("abc123"), 0)
	rs.Add("id", NewCharset("abc123"), 0)

	ts := toks(t, rs, "abc123")
	require.Len(t, ts, 2)
	assert.Equal(t, "num", ts[0].Type)
}

// First-match, not longest-match: an earlier rule with a shorter match
// beats a later rule that would consume more.
func TestLexer_FirstMatchNotLongestMatch(t *testing.T) {
	rs := NewRuleset()
	rs.Add("short", NewSeq("ab"), 0)
	rs.Add("long", NewSeq("abc"), 0)

	lex := NewLexer(NewTextScanner("abcd"), rs)
	tok, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, "short", tok.Type)
	assert.Equal(t, "ab", tok.Value)
}

func TestLexer_HigherPriorityBeatsRegistrationOrder(t *testing.T) {
	rs := NewRuleset()
	rs.Add("low", NewCharset("ab"), 0)
	rs.Add("high", NewSeq("ab"), 5)

	ts := toks(t, rs, "ab")
	require.Len(t, ts, 2)
	assert.Equal(t, "high", ts[0].Type)
}

func TestLexer_CurrentToken(t *testing.T) {
	lex := NewLexer(NewTextScanner("a"), exprRules())
	_, ok := lex.Token()
	assert.False(t, ok)

	want, err := lex.Next()
	require.NoError(t, err)
	got, ok := lex.Token()
	require.True(t, ok)
	assert.Equal(t, want, got)
}
