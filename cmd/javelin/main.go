package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const cliToolVersion = "javelin 0.1.0"

// Command output goes through these so tests can capture it.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

type globalFlags struct {
	LogLevel  string
	LogFormat string
	LogFile   string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	flags, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(remaining[1:], flags)
	case "check":
		return runCheck(remaining[1:], flags)
	case "eval":
		return runEval(remaining[1:], flags)
	case "repl":
		return runRepl(remaining[1:], flags)
	case "deps":
		return runDeps(remaining[1:], flags)
	default:
		return runEntry(remaining, flags)
	}
}

// parseGlobalFlags consumes the --log-* flags that precede the subcommand.
func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	idx := 0
	for ; idx < len(args); idx++ {
		arg := args[idx]
		if !strings.HasPrefix(arg, "--log-") {
			break
		}
		name, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return flags, nil, fmt.Errorf("%s requires a value (%s=<value>)", name, name)
		}
		switch name {
		case "--log-level":
			flags.LogLevel = value
		case "--log-format":
			flags.LogFormat = value
		case "--log-file":
			flags.LogFile = value
		default:
			return flags, nil, fmt.Errorf("unknown flag %s", name)
		}
	}
	return flags, args[idx:], nil
}

func printUsage() {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  javelin [--log-level=<level>] [--log-format=text|json] [--log-file=<path>] <command>")
	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "Commands:")
	fmt.Fprintln(stderr, "  javelin run [file.java]     run a script, or the manifest's main script")
	fmt.Fprintln(stderr, "  javelin <file.java>         same as run")
	fmt.Fprintln(stderr, "  javelin check [file.java]   type-check a script without running it")
	fmt.Fprintln(stderr, "  javelin eval <source>       run inline source and print its values")
	fmt.Fprintln(stderr, "  javelin repl                start an interactive session")
	fmt.Fprintln(stderr, "  javelin deps [install]      fetch libraries and write javelin.lock")
	fmt.Fprintln(stderr, "  javelin deps update         refetch git libraries")
	fmt.Fprintln(stderr, "  javelin version")
}
