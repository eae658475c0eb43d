package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/marci1175/fog/build"
)

const usage = `Usage: fog [flags|options] <path to project root>

Flags:
------
-h, --help      Displays usage information (ie. this text).
-v, --version   Displays the current compiler version.

Options:
--------
-f, --features   Comma-separated list of feature flags to enable in the root
                 project.  Only flags the project declares may be enabled.
`

const version = "fog 0.1.0"

// Prints the usage message and exits the compiler with the given exit code.
func printUsage(exitCode int) {
	fmt.Print(usage, "\n")
	os.Exit(exitCode)
}

// argumentError displays an argument error and exits the program.
func argumentError(message string, args ...interface{}) {
	fmt.Print("argument error: ", fmt.Sprintf(message, args...), "\n\n")
	printUsage(1)
}

// cliOptions is the parsed command line.
type cliOptions struct {
	rootPath string
	features []string
}

// parseArgs parses the command line arguments, exiting on invalid input or an
// informational flag.
func parseArgs(args []string) *cliOptions {
	opts := &cliOptions{}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-h", "--help":
			printUsage(0)
		case "-v", "--version":
			fmt.Println(version)
			os.Exit(0)
		case "-f", "--features":
			i++
			if i == len(args) || strings.HasPrefix(args[i], "-") {
				argumentError("option %s requires an argument", arg)
			}

			for _, f := range strings.Split(args[i], ",") {
				if f = strings.TrimSpace(f); f != "" {
					opts.features = append(opts.features, f)
				}
			}
		default:
			if strings.HasPrefix(arg, "-") {
				argumentError("unknown flag: %s", arg)
			}

			if opts.rootPath != "" {
				argumentError("root path specified multiple times")
			}

			opts.rootPath = arg
		}
	}

	if opts.rootPath == "" {
		argumentError("a root path must be specified")
	}

	return opts
}

func main() {
	opts := parseArgs(os.Args[1:])

	c, err := build.NewCompiler(opts.rootPath, opts.features)
	if err != nil {
		printErrorMessage(err)
		os.Exit(1)
	}

	manifest, err := c.Compile(context.Background())
	if err != nil {
		if errors.Is(err, build.ErrBuildFailed) {
			displayDiagnostics(c.Diagnostics())
		} else {
			printErrorMessage(err)
		}

		os.Exit(1)
	}

	printBuildSuccess(manifest)
}
