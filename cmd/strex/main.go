// Command strex is an interactive explorer for the strex library: it
// tokenizes lines (or files) with a small demonstration ruleset and can
// switch to showing the extracted parse tree of an arithmetic grammar.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	strex "github.com/yuhangwang/nr.strex"
)

const (
	appName     = "strex"
	historyFile = ".strex_history"
	prompt      = "==> "
)

var banner = fmt.Sprintf("strex %s token explorer\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", strex.Version)

const helpText = `
commands:
  :tokens  Show the token stream for each line (default)
  :tree    Show the extracted parse tree for each line
  :quit    Exit
`

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"

// demoRules is the ruleset used by the repl and the lex subcommand:
// whitespace is skipped, identifiers, numbers, operators and quoted
// strings come out as tokens.
func demoRules() *strex.Ruleset {
	rs := strex.NewRuleset()
	rs.Add("ws", strex.NewCharset(" \t\r\n"), 0)
	rs.Add("id", strex.NewCharset(letters), 0)
	rs.Add("num", strex.NewPattern(`\d+(\.\d+)?`), 0)
	rs.Add("op", strex.NewPattern(`[-+*/%=(),]`), 0)
	rs.Add("str", strex.NewQuotedString(), 0)
	rs.Skip("ws")
	return rs
}

// demoLexicon is a small right-recursive arithmetic grammar for the tree
// mode.
func demoLexicon() *strex.Lexicon {
	num := strex.Tok("num", strex.NewPattern(`\d+(\.\d+)?`))
	id := strex.Tok("id", strex.NewCharset(letters))

	lx := strex.NewLexicon(strex.Normal)
	lx.WhitespaceRule("ws", true, strex.Set(" \t\r\n"))
	lx.Rule("expr", strex.Either(
		strex.Sequence(strex.Ref("term"), strex.Str("+"), strex.Ref("expr")),
		strex.Sequence(strex.Ref("term"), strex.Str("-"), strex.Ref("expr")),
		strex.Ref("term"),
	))
	lx.Rule("term", strex.Either(
		strex.Sequence(strex.Ref("factor"), strex.Str("*"), strex.Ref("term")),
		strex.Sequence(strex.Ref("factor"), strex.Str("/"), strex.Ref("term")),
		strex.Ref("factor"),
	))
	lx.Rule("factor", strex.Either(
		strex.Sequence(strex.Str("("), strex.Ref("expr"), strex.Str(")")),
		num,
		id,
	))
	return lx
}

func main() {
	if len(os.Args) < 2 {
		os.Exit(cmdRepl())
	}

	switch cmd := os.Args[1]; cmd {
	case "repl":
		os.Exit(cmdRepl())
	case "lex":
		os.Exit(cmdLex(os.Args[2:]))
	case "version":
		fmt.Println(strex.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`strex %s

Usage:
  %s [repl]        Start the interactive explorer.
  %s lex <file>    Tokenize a file and print the tokens.
  %s version       Print the library version.

`, strex.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// lex
// -----------------------------------------------------------------------------

func cmdLex(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s lex <file>\n", appName)
		return 2
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}

	lex := strex.NewLexer(strex.NewTextScanner(string(src)), demoRules())
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(strex.WrapErrorWithName(err, args[0], string(src)).Error()))
		return 1
	}
	for _, tok := range tokens {
		fmt.Println(tok)
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	rules := demoRules()
	lexicon := demoLexicon()
	treeMode := false

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":tree":
				treeMode = true
				fmt.Println("showing parse trees")
			case ":tokens":
				treeMode = false
				fmt.Println("showing token streams")
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Println("unknown command. Type :help for commands.")
			}
			continue
		}
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(line)

		if treeMode {
			showTree(lexicon, line)
		} else {
			showTokens(rules, line)
		}
	}
}

func showTokens(rules *strex.Ruleset, src string) {
	lex := strex.NewLexer(strex.NewTextScanner(src), rules)
	for {
		tok, err := lex.Next()
		if err != nil {
			fmt.Fprintln(os.Stderr, red(strex.WrapErrorWithSource(err, src).Error()))
			return
		}
		if tok.EOF() {
			return
		}
		if !tok.Valid() {
			fmt.Println(green(tok.String()))
			continue
		}
		fmt.Println(blue(tok.String()))
	}
}

func showTree(lexicon *strex.Lexicon, src string) {
	s := strex.NewTextScanner(src)
	nodes := lexicon.Parse(s)
	if len(nodes) == 0 {
		fmt.Fprintln(os.Stderr, red("no parse"))
		return
	}
	var b strings.Builder
	for _, n := range nodes {
		strex.DumpTree(&b, n)
	}
	fmt.Print(blue(b.String()))
	if _, ok := s.Char(); ok {
		fmt.Println(green(fmt.Sprintf("(stopped at %v, rest unparsed)", s.Cursor())))
	}
}
