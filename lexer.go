// lexer.go: the token stream over a Scanner and a Ruleset.
package strex

import "fmt"

// EOF is the reserved token type marking the end of the token stream.
const EOF = "eof"

// Token is one successful rule application, the end-of-stream sentinel, or
// an unrecognized-input marker (Type == ""). Cursor is the position the
// token started at. Groups is set for Pattern tokens and Closed is false
// for unterminated quoted strings.
type Token struct {
	Type   string
	Value  string
	Cursor Cursor
	Groups []string
	Closed bool
}

// EOF reports whether the token marks the end of the stream.
func (t Token) EOF() bool { return t.Type == EOF }

// Unrecognized reports whether the token stands for input no rule matched.
func (t Token) Unrecognized() bool { return t.Type == "" }

// Valid reports whether the token was produced by a rule and, for quoted
// strings, properly terminated.
func (t Token) Valid() bool { return t.Type != "" && t.Closed }

func (t Token) String() string {
	switch {
	case t.EOF():
		return fmt.Sprintf("<token EOF at %v>", t.Cursor)
	case t.Unrecognized():
		return fmt.Sprintf("<token UNRECOGNIZED %q at %v>", t.Value, t.Cursor)
	case !t.Closed:
		return fmt.Sprintf("<token %s:%q at %v UNTERMINATED>", t.Type, t.Value, t.Cursor)
	default:
		return fmt.Sprintf("<token %s:%q at %v>", t.Type, t.Value, t.Cursor)
	}
}

// Lexer splits the input of a Scanner into Tokens using a Ruleset. Once the
// end of the input is reached the lexer stays there: every further call
// returns the same EOF token without touching the scanner.
//
// A Lexer drives exactly one scanner and is not safe for concurrent use;
// the Ruleset it reads from may be shared.
type Lexer struct {
	// Tolerant makes Next return an unrecognized one-rune token instead of
	// a *TokenizationError when no rule matches, letting the caller lex
	// past garbage.
	Tolerant bool

	scanner Scanner
	rules   *Ruleset
	tok     Token
	started bool
}

// NewLexer returns a lexer over s applying the rules in rs.
func NewLexer(s Scanner, rs *Ruleset) *Lexer {
	return &Lexer{scanner: s, rules: rs}
}

// Token returns the token produced by the most recent Next or Accept call.
// The bool is false before any token has been produced.
func (l *Lexer) Token() (Token, bool) { return l.tok, l.started }

// Next produces the next token. Skip-rule matches are consumed silently
// and never returned.
//
// When expected rule names are given they are tried first, in the caller's
// order, and the produced token must be one of them: a match by any other
// rule (or the EOF sentinel, unless "eof" is among the expected names)
// yields an *UnexpectedTokenError carrying the actual token. An expected
// match is returned even if its rule is marked skip.
//
// If no rule matches at the current position, exactly one rune is consumed
// and reported through a *TokenizationError, or returned as an
// unrecognized token when the lexer is Tolerant. Naming an unregistered
// rule panics.
func (l *Lexer) Next(expected ...string) (Token, error) {
	tok, _, err := l.next(expected, false)
	return tok, err
}

// Accept is Next in a non-failing mode: the next token is returned only if
// its type is one of names (skip rules still apply); otherwise the scanner
// is restored to the pre-call cursor and the bool is false. Accept never
// fails on a mismatch, only an unknown rule name panics.
func (l *Lexer) Accept(names ...string) (Token, bool) {
	tok, ok, _ := l.next(names, true)
	return tok, ok
}

// Scan tokenizes the remaining input and returns all tokens, the EOF
// sentinel included.
func (l *Lexer) Scan() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.EOF() {
			return out, nil
		}
	}
}

func (l *Lexer) next(expectation []string, asAccept bool) (Token, bool, error) {
	// Once ended, stay ended without touching the scanner.
	if l.started && l.tok.EOF() {
		if nameIn(expectation, EOF) {
			return l.tok, true, nil
		}
		if asAccept {
			return Token{}, false, nil
		}
		if len(expectation) > 0 {
			return l.tok, false, &UnexpectedTokenError{Expected: expectation, Token: l.tok}
		}
		return l.tok, true, nil
	}

	var preCall Cursor
	if asAccept {
		preCall = l.scanner.Cursor()
	}

	for {
		cursor := l.scanner.Cursor()

		if _, ok := l.scanner.Char(); !ok {
			tok := Token{Type: EOF, Cursor: cursor, Closed: true}
			// A rejected accept rewinds; the end of the stream was not
			// surfaced, so the lexer must not latch into its ended state.
			if asAccept && !nameIn(expectation, EOF) {
				l.scanner.Restore(preCall)
				return Token{}, false, nil
			}
			l.setToken(tok)
			if !asAccept && len(expectation) > 0 && !nameIn(expectation, EOF) {
				return tok, false, &UnexpectedTokenError{Expected: expectation, Token: tok}
			}
			return tok, true, nil
		}

		entry, m, matched := l.matchAt(cursor, expectation, asAccept)

		if !matched {
			if asAccept {
				l.scanner.Restore(preCall)
				return Token{}, false, nil
			}
			ch, _ := l.scanner.Char()
			l.scanner.Next()
			tok := Token{Value: string(ch), Cursor: cursor}
			l.setToken(tok)
			if !l.Tolerant {
				return tok, false, &TokenizationError{Token: tok}
			}
			if len(expectation) > 0 {
				return tok, false, &UnexpectedTokenError{Expected: expectation, Token: tok}
			}
			return tok, true, nil
		}

		tok := Token{
			Type:   entry.name,
			Value:  m.Text,
			Cursor: cursor,
			Groups: m.Groups,
			Closed: m.Closed,
		}

		// Skipping never emits a token, unless the rule was explicitly
		// expected by name.
		if entry.skip && !nameIn(expectation, entry.name) {
			continue
		}

		l.setToken(tok)
		if len(expectation) > 0 && !nameIn(expectation, tok.Type) {
			if asAccept {
				l.scanner.Restore(preCall)
				return Token{}, false, nil
			}
			return tok, false, &UnexpectedTokenError{Expected: expectation, Token: tok}
		}
		return tok, true, nil
	}
}

// matchAt tries the expected rules first in caller order, then the rest of
// the ruleset in priority order. In accept mode the general pool shrinks
// to the skip rules, so that no unrelated rule consumes input only for the
// accept to fail. A zero-length match counts as no-match; the scanner is
// restored after every failed rule.
func (l *Lexer) matchAt(cursor Cursor, expectation []string, asAccept bool) (*ruleEntry, Match, bool) {
	for _, name := range expectation {
		if name == EOF {
			continue
		}
		e, ok := l.rules.byName[name]
		if !ok {
			panic(fmt.Sprintf("strex: unknown rule name %q", name))
		}
		if m, ok := e.rule.Match(l.scanner); ok && m.Text != "" {
			return e, m, true
		}
		l.scanner.Restore(cursor)
	}

	pool := l.rules.rules
	if asAccept {
		pool = l.rules.skippable()
	}
	for _, e := range pool {
		if nameIn(expectation, e.name) {
			continue // already tried above
		}
		if m, ok := e.rule.Match(l.scanner); ok && m.Text != "" {
			return e, m, true
		}
		l.scanner.Restore(cursor)
	}
	return nil, Match{}, false
}

func (l *Lexer) setToken(tok Token) {
	l.tok = tok
	l.started = true
}

func nameIn(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
