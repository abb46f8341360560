// rules.go: tokenization rules and the priority-ordered Ruleset.
package strex

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Match is the result of a successful rule application: the consumed text
// plus kind-specific payload. Closed is false only for quoted strings that
// ended at a newline or the end of the input; Groups is set only by
// Pattern rules.
type Match struct {
	Text   string
	Closed bool
	Groups []string
}

// Rule attempts to consume a run of input at the scanner position. On
// success it returns the consumed text and reports true. On failure it
// must leave the scanner exactly where it was and report false.
//
// Rules are stateless configuration: one Rule value may serve any number
// of scanners, including concurrently.
type Rule interface {
	Match(s Scanner) (Match, bool)
}

// MatchFunc adapts a plain function to the Rule interface. It is the
// extension point for matchers the built-in kinds do not cover.
type MatchFunc func(s Scanner) (Match, bool)

func (f MatchFunc) Match(s Scanner) (Match, bool) { return f(s) }

// Seq matches an exact literal, rune by rune. With IgnoreCase set the
// comparison is lower-cased while the consumed text keeps the input's own
// casing.
type Seq struct {
	Text       string
	IgnoreCase bool
}

// NewSeq returns a case-sensitive literal rule.
func NewSeq(text string) *Seq { return &Seq{Text: text} }

func (q *Seq) Match(s Scanner) (Match, bool) {
	start := s.Cursor()
	var b strings.Builder
	for _, want := range q.Text {
		have, ok := s.Char()
		if q.IgnoreCase {
			want = unicode.ToLower(want)
			have = unicode.ToLower(have)
		}
		if !ok || have != want {
			s.Restore(start)
			return Match{}, false
		}
		ch, _ := s.Char()
		b.WriteRune(ch)
		s.Next()
	}
	return Match{Text: b.String(), Closed: true}, true
}

// Charset greedily consumes the maximal run of runes belonging to Set.
// AtColumn, when non-negative, makes the rule applicable only while the
// scanner column equals it; this is how indentation-sensitive tokens are
// built. An empty run is reported as no-match.
type Charset struct {
	Set      string
	AtColumn int
}

// NewCharset returns a rule over the given rune set with no column
// constraint.
func NewCharset(set string) *Charset { return &Charset{Set: set, AtColumn: -1} }

func (c *Charset) Match(s Scanner) (Match, bool) {
	if c.AtColumn >= 0 && s.Cursor().Col != c.AtColumn {
		return Match{}, false
	}
	text := ReadSet(s, c.Set, -1, false, false)
	if text == "" {
		return Match{}, false
	}
	return Match{Text: text, Closed: true}, true
}

// QuotedString matches a quoted run of characters. The opening quote picks
// the closing one; backslash-escaped pairs are consumed verbatim. The
// match ends at the closing quote, at a newline, or at the end of the
// input. In the latter two cases the token is still produced, with Closed
// set to false and the text missing the closing quote, and it is up to the
// caller to decide how severe an unterminated string is.
type QuotedString struct {
	Single bool
	Double bool
}

// NewQuotedString returns a rule accepting both quote kinds.
func NewQuotedString() *QuotedString { return &QuotedString{Single: true, Double: true} }

func (q *QuotedString) Match(s Scanner) (Match, bool) {
	ch, ok := s.Char()
	if !ok {
		return Match{}, false
	}
	var quote rune
	switch {
	case q.Single && ch == '\'':
		quote = '\''
	case q.Double && ch == '"':
		quote = '"'
	default:
		return Match{}, false
	}

	var b strings.Builder
	b.WriteRune(quote)
	ch, ok = s.Next()
	for ok && ch != quote && ch != '\n' {
		b.WriteRune(ch)
		if ch == '\\' {
			ch, ok = s.Next()
			if !ok {
				break
			}
			b.WriteRune(ch)
		}
		ch, ok = s.Next()
	}

	if !ok || ch == '\n' {
		return Match{Text: b.String(), Closed: false}, true
	}
	s.Next() // consume the closing quote
	b.WriteRune(quote)
	return Match{Text: b.String(), Closed: true}, true
}

// Pattern matches a regular expression anchored at the scanner position and
// records its capture groups on the token. It requires a scanner with
// RegionMatcher support (TextScanner); using it with a stream backend is a
// configuration error and panics.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr anchored at the match position. It panics if
// expr does not compile, so bad patterns fail at setup rather than
// mid-parse.
func NewPattern(expr string) *Pattern {
	return &Pattern{re: regexp.MustCompile(`\A(?:` + expr + `)`)}
}

// NewPatternRegexp wraps an already compiled expression. The expression is
// matched anchored at the current position regardless of how it was
// compiled.
func NewPatternRegexp(re *regexp.Regexp) *Pattern { return &Pattern{re: re} }

func (p *Pattern) Match(s Scanner) (Match, bool) {
	rm, ok := s.(RegionMatcher)
	if !ok {
		panic(fmt.Sprintf("strex: Pattern rules need a scanner with MatchRegion support, got %T", s))
	}
	text, groups, ok := rm.MatchRegion(p.re)
	if !ok {
		return Match{}, false
	}
	return Match{Text: text, Closed: true, Groups: groups}, true
}

type ruleEntry struct {
	name     string
	rule     Rule
	priority int
	skip     bool
}

// Ruleset is an ordered collection of named rules consulted by a Lexer.
// Rules are tried highest priority first; rules of equal priority keep
// their registration order, so the first one registered wins a tie. The
// policy is first-match, not longest-match: the first rule that consumes a
// non-empty span produces the token.
//
// A Ruleset is built once and must not be modified after the first Lexer
// starts using it; a read-only Ruleset is safe to share across concurrent
// parses.
type Ruleset struct {
	rules  []*ruleEntry
	byName map[string]*ruleEntry
}

func NewRuleset() *Ruleset {
	return &Ruleset{byName: make(map[string]*ruleEntry)}
}

// Add registers rule under name. Registering a duplicate name is a
// programming error and panics.
func (rs *Ruleset) Add(name string, rule Rule, priority int) {
	if _, dup := rs.byName[name]; dup {
		panic(fmt.Sprintf("strex: duplicate rule name %q", name))
	}
	e := &ruleEntry{name: name, rule: rule, priority: priority}
	at := len(rs.rules)
	for i, other := range rs.rules {
		if other.priority < priority {
			at = i
			break
		}
	}
	rs.rules = append(rs.rules, nil)
	copy(rs.rules[at+1:], rs.rules[at:])
	rs.rules[at] = e
	rs.byName[name] = e
}

// Skip marks the named rules as skip rules: their matches are consumed but
// never emitted as tokens, unless a Lexer call expects them by name.
// Naming an unregistered rule panics.
func (rs *Ruleset) Skip(names ...string) {
	for _, name := range names {
		e, ok := rs.byName[name]
		if !ok {
			panic(fmt.Sprintf("strex: unknown rule name %q", name))
		}
		e.skip = true
	}
}

// skippable returns the skip rules in application order.
func (rs *Ruleset) skippable() []*ruleEntry {
	var out []*ruleEntry
	for _, e := range rs.rules {
		if e.skip {
			out = append(out, e)
		}
	}
	return out
}
