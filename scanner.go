// scanner.go: cursor bookkeeping and the in-memory text backend.
package strex

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Cursor is an immutable snapshot of a scanner position. Offset is a byte
// offset into the UTF-8 input, Line is 1-based and Col is a 0-based rune
// count within the line. A Cursor obtained from Scanner.Cursor can later be
// passed to Scanner.Restore to rewind (or fast-forward) the same scanner.
type Cursor struct {
	Offset int
	Line   int
	Col    int
}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Line, c.Col)
}

// Scanner steps through input one rune at a time while tracking line and
// column numbers. Only the line-feed character counts as a newline.
//
// Char reports the rune at the current position; the bool is false at the
// end of the input. Next advances by exactly one rune and returns the new
// current rune; at the end of the input it is a no-op. Restore must accept
// any Cursor previously returned by Cursor on the same scanner (stream
// backends bound this to their retained window, see StreamScanner).
type Scanner interface {
	Char() (rune, bool)
	Next() (rune, bool)
	Cursor() Cursor
	Restore(Cursor)
}

// RegionMatcher is the optional scanner capability used by Pattern rules:
// regexp matching anchored at the current position. Only in-memory backends
// implement it.
type RegionMatcher interface {
	// MatchRegion matches re anchored at the current offset. On success it
	// advances past the match and returns the matched text and the capture
	// groups (group 1 first, unmatched groups empty). A zero-length match
	// is reported as no-match so that rule loops cannot spin in place. On
	// failure the position is unchanged.
	MatchRegion(re *regexp.Regexp) (text string, groups []string, ok bool)
}

// TextScanner scans an in-memory string. It is the backend of choice when
// the whole input is available up front: Restore accepts any previously
// saved Cursor and Pattern rules are supported.
type TextScanner struct {
	text string
	cur  Cursor
}

// NewTextScanner returns a scanner positioned at the start of text.
func NewTextScanner(text string) *TextScanner {
	return &TextScanner{text: text, cur: Cursor{Line: 1}}
}

// Text returns the full input.
func (s *TextScanner) Text() string { return s.text }

func (s *TextScanner) Char() (rune, bool) {
	if s.cur.Offset >= len(s.text) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.text[s.cur.Offset:])
	return r, true
}

func (s *TextScanner) Next() (rune, bool) {
	r, ok := s.Char()
	if !ok {
		return 0, false
	}
	if r == '\n' {
		s.cur.Line++
		s.cur.Col = 0
	} else {
		s.cur.Col++
	}
	s.cur.Offset += utf8.RuneLen(r)
	return s.Char()
}

func (s *TextScanner) Cursor() Cursor { return s.cur }

func (s *TextScanner) Restore(c Cursor) { s.cur = c }

// MatchRegion implements RegionMatcher. Line and column are recomputed by
// counting line-feeds inside the matched span, which gives the same Cursor
// as advancing rune by rune but without re-scanning long matches.
func (s *TextScanner) MatchRegion(re *regexp.Regexp) (string, []string, bool) {
	loc := re.FindStringSubmatchIndex(s.text[s.cur.Offset:])
	if loc == nil || loc[0] != 0 || loc[1] == 0 {
		return "", nil, false
	}
	span := s.text[s.cur.Offset : s.cur.Offset+loc[1]]

	var groups []string
	for i := 2; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, span[loc[i]:loc[i+1]])
	}

	if n := strings.Count(span, "\n"); n > 0 {
		s.cur.Line += n
		s.cur.Col = utf8.RuneCountInString(span[strings.LastIndexByte(span, '\n')+1:])
	} else {
		s.cur.Col += utf8.RuneCountInString(span)
	}
	s.cur.Offset += len(span)
	return span, groups, true
}

// ReadSet consumes the maximal run of runes that are members of set (or
// non-members, when inverted is true) and returns the consumed text. A
// non-negative max bounds the number of runes read. With foldCase set,
// runes are lower-cased before the membership test but the returned text
// preserves the input as scanned.
func ReadSet(s Scanner, set string, max int, inverted, foldCase bool) string {
	var b strings.Builder
	n := 0
	for {
		ch, ok := s.Char()
		if !ok {
			break
		}
		if max >= 0 && n >= max {
			break
		}
		probe := ch
		if foldCase {
			probe = unicode.ToLower(ch)
		}
		if strings.ContainsRune(set, probe) == inverted {
			break
		}
		b.WriteRune(ch)
		n++
		s.Next()
	}
	return b.String()
}

// ReadLine consumes up to and including the next line-feed and returns the
// consumed text. At the end of the input it returns the remaining partial
// line, which may be empty.
func ReadLine(s Scanner) string {
	var b strings.Builder
	for {
		ch, ok := s.Char()
		if !ok {
			break
		}
		b.WriteRune(ch)
		s.Next()
		if ch == '\n' {
			break
		}
	}
	return b.String()
}
