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

	"javelin/interpreter-go/pkg/ast"
	"javelin/interpreter-go/pkg/driver"
	"javelin/interpreter-go/pkg/logger"
	"javelin/interpreter-go/pkg/parser"
)

const (
	historyFile = ".javelin_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var (
	banner   = fmt.Sprintf("%s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", cliToolVersion)
	helpText = `REPL commands:
  :help    Show this help
  :quit    Exit the REPL`
)

func runRepl(args []string, flags globalFlags) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "javelin repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	proj, err := loadProject(".")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	session, err := proj.newSession(flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer session.Close()
	defer logger.Close()

	fmt.Fprintln(stdout, banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		code, ok := readUntilParsed(ln, session)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":exit":
				return 0
			case ":help":
				fmt.Fprintln(stdout, helpText)
			default:
				fmt.Fprintln(stdout, "unknown command. Type :help for commands.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		results, err := session.Eval([]byte(code))
		if printErr := printResults(session, results); printErr != nil {
			fmt.Fprintln(stderr, driver.DescribeError("", printErr))
		}
		if err != nil {
			fmt.Fprintln(stderr, driver.DescribeError("", err))
		}
	}
}

// readUntilParsed keeps prompting while the accumulated input is an
// unfinished statement.
func readUntilParsed(ln *liner.State, session *driver.Session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if src, ready := completeInput(session, b.String()); ready {
			return src, true
		}
	}
}

// completeInput decides whether src is ready to submit. Input that only lacks
// its final semicolon is completed when the result ends in a declaration or
// expression statement, so "x + 1" evaluates without typing ";".
func completeInput(session *driver.Session, src string) (string, bool) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" || strings.HasPrefix(trimmed, ":") {
		return src, true
	}
	_, err := session.Parse([]byte(src))
	if err == nil || !parser.IsIncomplete(err) {
		return src, true
	}
	completed := strings.TrimRight(src, " \t\r\n") + ";"
	script, err := session.Parse([]byte(completed))
	if err != nil || len(script.Statements) == 0 {
		return src, false
	}
	switch script.Statements[len(script.Statements)-1].(type) {
	case *ast.ExpressionStatement, *ast.VariableDeclaration:
		return completed, true
	}
	return src, false
}
