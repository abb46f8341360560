// stream.go: Scanner backend over an io.Reader with bounded lookback.
package strex

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"
)

// StreamScanner scans runes from an io.Reader while retaining a bounded
// window of already-read runes so that a saved Cursor can be restored
// without the whole input being held in memory.
//
// The contract is the same as TextScanner's with one restriction: Restore
// only accepts Cursors that are still inside the retained window. Restoring
// a Cursor that has slid out of the window is a programming error and
// panics; pick a lookback at least as large as the longest run a single
// rule may consume before failing.
//
// StreamScanner does not implement RegionMatcher, so Pattern rules cannot
// be used with it.
type StreamScanner struct {
	r        io.RuneReader
	win      []bufferedRune
	idx      int // index of the current rune within win; len(win) means unread
	cur      Cursor
	eof      bool
	lookback int
}

type bufferedRune struct {
	off int
	r   rune
}

// NewStreamScanner returns a scanner reading from r that retains at least
// lookback runes for Restore. A lookback smaller than 1 is raised to 1.
func NewStreamScanner(r io.Reader, lookback int) *StreamScanner {
	if lookback < 1 {
		lookback = 1
	}
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &StreamScanner{r: rr, cur: Cursor{Line: 1}, lookback: lookback}
}

func (s *StreamScanner) Char() (rune, bool) {
	if s.idx < len(s.win) {
		return s.win[s.idx].r, true
	}
	if s.eof {
		return 0, false
	}
	r, _, err := s.r.ReadRune()
	if err != nil {
		// Read errors other than io.EOF also end the stream; the scanner
		// contract has no error channel and rules treat end-of-input as
		// an ordinary no-match.
		s.eof = true
		return 0, false
	}
	s.win = append(s.win, bufferedRune{off: s.cur.Offset, r: r})
	s.trim()
	return r, true
}

func (s *StreamScanner) Next() (rune, bool) {
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
	s.idx++
	return s.Char()
}

func (s *StreamScanner) Cursor() Cursor { return s.cur }

// Restore re-positions the scanner at c. The cursor must point at a rune
// still inside the retained window, at the current position, or at the
// position immediately past the last buffered rune.
func (s *StreamScanner) Restore(c Cursor) {
	if c.Offset == s.cur.Offset {
		s.cur = c
		return
	}
	for i := range s.win {
		if s.win[i].off == c.Offset {
			s.idx = i
			s.cur = c
			return
		}
	}
	if n := len(s.win); n > 0 {
		last := s.win[n-1]
		if c.Offset == last.off+utf8.RuneLen(last.r) {
			s.idx = n
			s.cur = c
			return
		}
	}
	panic(fmt.Sprintf("strex: restore to %v is outside the retained lookback window", c))
}

// trim drops runes from the front of the window once it exceeds the
// configured lookback, never dropping the current rune.
func (s *StreamScanner) trim() {
	for len(s.win) > s.lookback && s.idx > 0 {
		s.win = s.win[1:]
		s.idx--
	}
}
