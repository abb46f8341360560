// errors.go: error taxonomy and caret-snippet rendering.
//
// Two error kinds cross the package boundary at parse time:
//
//   - *TokenizationError: no rule matched at the current position. The
//     caller may skip a character and retry, or abort.
//   - *UnexpectedTokenError: an expectation given to Lexer.Next was not
//     met. Carries the expected names and the actual token.
//
// Configuration mistakes (duplicate rule names, Ref to an unknown rule,
// patterns that do not compile) are programmer errors and panic at setup
// or first use instead; unterminated quoted strings are not errors at all
// but tokens with Closed == false.
//
// WrapErrorWithSource upgrades the two parse-time errors to a multi-line
// snippet with a caret under the offending column:
//
//	TOKENIZATION ERROR at 2:5: could not tokenize stream at 2:4: "?"
//
//	   1 | x = 1
//	   2 | y = ?
//	     |     ^
//	   3 | z = 2
//
// Line/column coordinates are clamped to the source so rendering never
// fails on short inputs. Output is plain text, suitable for logs.
package strex

import (
	"fmt"
	"strings"
)

// TokenizationError reports that no rule matched. Its Token is the
// unrecognized one-rune token, carrying the offending character and its
// cursor.
type TokenizationError struct {
	Token Token
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("could not tokenize stream at %v: %q", e.Token.Cursor, e.Token.Value)
}

// UnexpectedTokenError reports that an expectation passed to Lexer.Next
// was not met. Token is the token actually produced, with its real type,
// value and position.
type UnexpectedTokenError struct {
	Expected []string
	Token    Token
}

func (e *UnexpectedTokenError) Error() string {
	var want string
	if len(e.Expected) == 1 {
		want = fmt.Sprintf("%q", e.Expected[0])
	} else {
		want = "{" + strings.Join(e.Expected, ",") + "}"
	}
	got := e.Token.Type
	if e.Token.Unrecognized() {
		got = "<unrecognized>"
	}
	return fmt.Sprintf("expected token %s, got %q instead (value %q at %v)",
		want, got, e.Token.Value, e.Token.Cursor)
}

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of src when err is a *TokenizationError or an
// *UnexpectedTokenError; any other error is returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name (e.g. a file
// path) included in the header line.
func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *TokenizationError:
		c := e.Token.Cursor
		// Cursor columns are 0-based; render 1-based.
		return fmt.Errorf("%s", snippet(src, "TOKENIZATION ERROR", srcName, c.Line, c.Col+1, e.Error()))
	case *UnexpectedTokenError:
		c := e.Token.Cursor
		return fmt.Errorf("%s", snippet(src, "UNEXPECTED TOKEN", srcName, c.Line, c.Col+1, e.Error()))
	default:
		return err
	}
}

// snippet builds the header plus up to one line of context on either side
// of the error line, with a caret under the 1-based column. Out-of-range
// coordinates are clamped so the caret can always be rendered.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
