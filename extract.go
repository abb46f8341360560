// extract.go: syntax-tree extraction combinators over the Scanner contract.
package strex

import "fmt"

// SyntaxNode is a node of an extracted syntax tree. Type is "" for purely
// structural nodes, which the collapse pass may remove. Children are owned
// by their parent; the root belongs to the caller.
type SyntaxNode struct {
	Value    string
	Type     string
	Cursor   Cursor
	Children []*SyntaxNode
}

func (n *SyntaxNode) String() string {
	return fmt.Sprintf("<node #%s: %q at %v>", n.Type, n.Value, n.Cursor)
}

// ReduceMode selects how Lexicon.Parse collapses the extracted tree.
type ReduceMode int

const (
	// NoReduce returns the tree exactly as built.
	NoReduce ReduceMode = iota
	// Normal collapses value-less nodes with at most one child, but only
	// those without an explicit type.
	Normal
	// Tight collapses value-less nodes with at most one child regardless
	// of their type.
	Tight
)

// Context carries the per-parse state threaded through extractors: the
// lexicon being applied and the whitespace re-entrancy guard. Each
// Lexicon.Parse call creates its own Context, which is what makes a single
// read-only Lexicon safe to share between concurrent parses.
type Context struct {
	Lexicon *Lexicon

	inWhitespace bool
}

// SkipWhitespace repeatedly applies the lexicon's whitespace rules until
// none matches and returns the nodes produced by non-reduced whitespace
// rules, in match order. Whitespace rules invoked through here cannot
// recursively trigger whitespace skipping themselves.
func (c *Context) SkipWhitespace(s Scanner) []*SyntaxNode {
	if c.inWhitespace {
		return nil
	}
	c.inWhitespace = true
	defer func() { c.inWhitespace = false }()

	var nodes []*SyntaxNode
	for {
		matched := false
		for _, w := range c.Lexicon.ws {
			list := w.ex.Extract(c, s, w.name)
			if len(list) == 0 {
				continue
			}
			matched = true
			if !w.reduce {
				nodes = append(nodes, list...)
			}
		}
		if !matched {
			return nodes
		}
	}
}

// Extractor extracts syntax nodes from the scanner position. A nil or
// empty result means no-match, in which case the scanner must be left at
// (or restored to) the position it was called with. rule is the name of
// the lexicon rule the extractor was registered under, or "" when invoked
// as an anonymous sub-extractor; extractors use it as the node type.
type Extractor interface {
	Extract(c *Context, s Scanner, rule string) []*SyntaxNode
}

// Matcher is the leaf-level extension point: a function that consumes text
// at the scanner position or reports no-match without moving it.
type Matcher func(s Scanner) (string, bool)

// MatcherExtractor turns a Matcher into a leaf Extractor: whitespace is
// skipped first, then a successful match becomes a single leaf node
// (preceded by any non-reduced whitespace nodes). On failure the
// whitespace consumption is undone and the scanner is back at the
// pre-call cursor.
type MatcherExtractor struct {
	Fn   Matcher
	Name string // node type used when the extractor is not a named rule
}

func (m *MatcherExtractor) Extract(c *Context, s Scanner, rule string) []*SyntaxNode {
	start := s.Cursor()
	nodes := c.SkipWhitespace(s)
	cursor := s.Cursor()
	text, ok := m.Fn(s)
	if !ok || text == "" {
		s.Restore(start)
		return nil
	}
	typ := rule
	if typ == "" {
		typ = m.Name
	}
	return append(nodes, &SyntaxNode{Value: text, Type: typ, Cursor: cursor})
}

// Str returns a leaf extractor matching the exact literal text.
func Str(text string) Extractor {
	rule := NewSeq(text)
	return &MatcherExtractor{Fn: func(s Scanner) (string, bool) {
		m, ok := rule.Match(s)
		return m.Text, ok
	}}
}

// Set returns a leaf extractor consuming the maximal non-empty run of
// runes from set.
func Set(set string) Extractor {
	return &MatcherExtractor{Fn: func(s Scanner) (string, bool) {
		text := ReadSet(s, set, -1, false, false)
		return text, text != ""
	}}
}

// Tok bridges a tokenizer Rule into the extractor layer: the rule's
// consumed text becomes a leaf node of type name.
func Tok(name string, rule Rule) Extractor {
	return &MatcherExtractor{Name: name, Fn: func(s Scanner) (string, bool) {
		m, ok := rule.Match(s)
		return m.Text, ok && m.Text != ""
	}}
}

type refExtractor struct {
	name string
}

// Ref returns an extractor that looks up the named lexicon rule at parse
// time and delegates to it, propagating the referenced rule's node list
// unchanged. Referencing a rule that was never registered is a
// configuration error and panics at first use.
func Ref(name string) Extractor { return refExtractor{name: name} }

func (r refExtractor) Extract(c *Context, s Scanner, _ string) []*SyntaxNode {
	ex, ok := c.Lexicon.Extractor(r.name)
	if !ok {
		panic(fmt.Sprintf("strex: Ref to unknown rule %q", r.name))
	}
	return ex.Extract(c, s, r.name)
}

type sequenceExtractor struct {
	exs []Extractor
}

// Sequence returns an extractor matching all sub-extractors in order,
// skipping whitespace before each one. On success it produces one parent
// node whose children are the concatenated sub-results; on the first
// failure the whole sequence fails and the scanner is restored to where
// the sequence started.
func Sequence(exs ...Extractor) Extractor { return &sequenceExtractor{exs: exs} }

func (q *sequenceExtractor) Extract(c *Context, s Scanner, rule string) []*SyntaxNode {
	start := s.Cursor()
	parent := &SyntaxNode{Type: rule, Cursor: start}
	for _, ex := range q.exs {
		parent.Children = append(parent.Children, c.SkipWhitespace(s)...)
		list := ex.Extract(c, s, "")
		if len(list) == 0 {
			s.Restore(start)
			return nil
		}
		parent.Children = append(parent.Children, list...)
	}
	return []*SyntaxNode{parent}
}

type eitherExtractor struct {
	exs []Extractor
}

// Either returns an extractor trying the alternatives in order; the first
// one that matches wins and its nodes become the children of one parent
// node. After each failed alternative, and on total failure, the scanner
// is restored to the pre-attempt cursor.
func Either(exs ...Extractor) Extractor { return &eitherExtractor{exs: exs} }

func (e *eitherExtractor) Extract(c *Context, s Scanner, rule string) []*SyntaxNode {
	start := s.Cursor()
	parent := &SyntaxNode{Type: rule, Cursor: start}
	for _, ex := range e.exs {
		list := ex.Extract(c, s, "")
		if len(list) > 0 {
			parent.Children = list
			return []*SyntaxNode{parent}
		}
		s.Restore(start)
	}
	return nil
}

type lexiconRule struct {
	name string
	ex   Extractor
}

type whitespaceRule struct {
	name   string
	ex     Extractor
	reduce bool
}

// Lexicon is a caller-built set of named extraction rules plus whitespace
// rules. It is read-only after construction: Parse keeps all mutable
// per-parse state in a Context, so one Lexicon may serve any number of
// concurrent parses.
type Lexicon struct {
	reduce ReduceMode
	rules  []lexiconRule
	ws     []whitespaceRule
	byName map[string]Extractor
}

// NewLexicon returns an empty lexicon collapsing parse results with mode.
func NewLexicon(mode ReduceMode) *Lexicon {
	return &Lexicon{reduce: mode, byName: make(map[string]Extractor)}
}

// Rule registers a named rule. Multiple extractors are wrapped in a
// Sequence. Registering zero extractors or a duplicate name panics.
func (lx *Lexicon) Rule(name string, exs ...Extractor) {
	lx.add(name, exs, false, false)
}

// WhitespaceRule registers a rule consulted by Context.SkipWhitespace
// before every extraction attempt. With reduce set the matched nodes are
// dropped; otherwise they are handed to the next produced node's sibling
// list.
func (lx *Lexicon) WhitespaceRule(name string, reduce bool, exs ...Extractor) {
	lx.add(name, exs, true, reduce)
}

func (lx *Lexicon) add(name string, exs []Extractor, ws, reduce bool) {
	if len(exs) == 0 {
		panic(fmt.Sprintf("strex: rule %q needs at least one extractor", name))
	}
	if _, dup := lx.byName[name]; dup {
		panic(fmt.Sprintf("strex: duplicate rule name %q", name))
	}
	ex := exs[0]
	if len(exs) > 1 {
		ex = Sequence(exs...)
	}
	lx.byName[name] = ex
	if ws {
		lx.ws = append(lx.ws, whitespaceRule{name: name, ex: ex, reduce: reduce})
	} else {
		lx.rules = append(lx.rules, lexiconRule{name: name, ex: ex})
	}
}

// Extractor returns the extractor registered under name.
func (lx *Lexicon) Extractor(name string) (Extractor, bool) {
	ex, ok := lx.byName[name]
	return ex, ok
}

// Parse tries each top-level rule in registration order against the
// scanner. The first rule producing a non-empty node list wins; its nodes
// are collapsed according to the lexicon's reduce mode and returned. On
// total failure the scanner is restored and nil is returned.
func (lx *Lexicon) Parse(s Scanner) []*SyntaxNode {
	c := &Context{Lexicon: lx}
	for _, r := range lx.rules {
		cursor := s.Cursor()
		list := r.ex.Extract(c, s, r.name)
		if len(list) > 0 {
			if lx.reduce != NoReduce {
				for i, n := range list {
					list[i] = Collapse(n, lx.reduce == Tight)
				}
			}
			return list
		}
		s.Restore(cursor)
	}
	return nil
}
