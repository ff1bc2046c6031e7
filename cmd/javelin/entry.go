package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"javelin/interpreter-go/pkg/driver"
	"javelin/interpreter-go/pkg/logger"
	"javelin/interpreter-go/pkg/runtime"
	"javelin/interpreter-go/pkg/types"
)

type executionMode int

const (
	modeRun executionMode = iota
	modeCheck
)

func modeCommandLabel(mode executionMode) string {
	if mode == modeCheck {
		return "javelin check"
	}
	return "javelin run"
}

func runEntry(args []string, flags globalFlags) int {
	return runEntryWithMode(args, flags, modeRun)
}

func runCheck(args []string, flags globalFlags) int {
	return runEntryWithMode(args, flags, modeCheck)
}

func runEntryWithMode(args []string, flags globalFlags, mode executionMode) int {
	if len(args) > 1 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var (
		entryPath string
		proj      *project
		err       error
	)
	if len(args) == 1 {
		entryPath = args[0]
		proj, err = loadProject(filepath.Dir(entryPath))
	} else {
		proj, err = loadProject(".")
		if err == nil {
			if proj.manifest == nil {
				fmt.Fprintf(stderr, "%s requires a source file (%s not found)\n", modeCommandLabel(mode), driver.ManifestFileName)
				return 1
			}
			entryPath = proj.manifest.MainPath()
			if entryPath == "" {
				fmt.Fprintf(stderr, "manifest error: %s does not name a main script\n", proj.manifest.Path)
				return 1
			}
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return 1
	}

	source, err := os.ReadFile(entryPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read %s: %v\n", entryPath, err)
		return 1
	}
	return executeEntry(entryPath, source, proj, flags, mode)
}

func executeEntry(entryPath string, source []byte, proj *project, flags globalFlags, mode executionMode) int {
	session, err := proj.newSession(flags)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer session.Close()
	defer logger.Close()

	if mode == modeCheck {
		script, err := session.Parse(source)
		if err == nil {
			err = session.Check(script)
		}
		if err != nil {
			fmt.Fprintln(stderr, driver.DescribeError(entryPath, err))
			return 1
		}
		return 0
	}

	if _, err := session.Eval(source); err != nil {
		fmt.Fprintln(stderr, driver.DescribeError(entryPath, err))
		return 1
	}
	return 0
}

func runEval(args []string, flags globalFlags) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "javelin eval requires source text")
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

	results, err := session.Eval([]byte(strings.Join(args, " ")))
	if printErr := printResults(session, results); printErr != nil {
		fmt.Fprintln(stderr, driver.DescribeError("", printErr))
		return 1
	}
	if err != nil {
		fmt.Fprintln(stderr, driver.DescribeError("", err))
		return 1
	}
	return 0
}

// printResults writes the value of every non-void expression statement.
func printResults(session *driver.Session, results []driver.Result) error {
	for _, result := range results {
		text, ok, err := describeResult(session, result)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(stdout, text)
		}
	}
	return nil
}

// describeResult renders an expression value as a literal would be written:
// strings and chars are quoted.
func describeResult(session *driver.Session, result driver.Result) (string, bool, error) {
	if result.Type == nil || types.IsVoid(result.Type) {
		return "", false, nil
	}
	switch v := result.Value.(type) {
	case runtime.StringValue:
		return strconv.Quote(v.Val), true, nil
	case runtime.CharValue:
		return strconv.QuoteRune(rune(v.Val)), true, nil
	}
	text, err := session.Render(result.Value)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
