// Package strex provides building blocks for hand-rolled lexers and
// lightweight recursive-descent parsers over character streams.
//
// The package is layered bottom-up:
//
//   - Scanner: a cursor over text (or an io.Reader) that tracks byte
//     offset, line and column, and supports save/restore of its position.
//   - Rule / Ruleset / Lexer: named matching rules applied at the scanner
//     position in priority order, producing a flat stream of Tokens.
//   - Lexicon / Extractor: combinators (Ref, Sequence, Either, leaf
//     matchers) that assemble a SyntaxNode tree with backtracking, plus a
//     collapse pass that removes structurally redundant nodes.
//
// A Ruleset or Lexicon is built once and is read-only afterwards, so a
// single instance may be shared across concurrent parses; each parse needs
// its own Scanner.
package strex

// Version is the library version, printed by the strex command.
const Version = "2.0.0"
