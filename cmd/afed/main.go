// Command afed evaluates expressions in place in a document: read a
// file, splice every `=` print-span with its computed value, and write
// the result back out (or just report errors in check-only mode).
//
// Kong's main.go wires flag.FlagSet directly into lexer/parser/compiler/
// vm calls for a single-purpose REPL-or-run-a-file CLI. This command
// keeps that "wire the stdlib flags straight into the core" shape but
// swaps flag for cobra, since the afed source's getopt_long surface
// (afed.c) needs a richer set of flags (input/output/error-stream
// routing, check-only, no-clobber, quiet) than flag.FlagSet comfortably
// expresses.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/afed-lang/afed/document"
	"github.com/afed-lang/afed/eval"
	"github.com/afed-lang/afed/instr"
	"github.com/afed-lang/afed/ns"
	"github.com/afed-lang/afed/replui"
)

const version = "0.1.0"

// Exit codes, per SPEC_FULL.md's Configuration & CLI section.
const (
	exitSuccess   = 0
	exitUsage     = 1
	exitIO        = 2
	exitDocErrors = 3

	replUsername = "afed"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inputFlag  string
		outputFlag string
		errorFlag  string
		checkOnly  bool
		noClobber  bool
		quiet      bool
	)

	code := exitSuccess
	root := &cobra.Command{
		Use:           "afed [OPTION]... [-i] INFILE [[-o] OUTFILE]",
		Short:         "Evaluate expressions in place in an afed document",
		Version:       version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := runRoot(rootOptions{
				positional: args,
				inputPath:  inputFlag,
				outputPath: outputFlag,
				errorPath:  errorFlag,
				checkOnly:  checkOnly,
				noClobber:  noClobber,
				quiet:      quiet,
			})
			code = c
			return err
		},
	}
	root.Flags().StringVarP(&inputFlag, "input", "i", "", "document to evaluate ('-' for stdin)")
	root.Flags().StringVarP(&outputFlag, "output", "o", "", "where to write the result ('-' for stdout)")
	root.Flags().StringVarP(&errorFlag, "errors", "e", "", "where to send error messages ('-' for stdout; default stderr)")
	root.Flags().BoolVarP(&checkOnly, "check", "C", false, "check for errors only, never write output")
	root.Flags().BoolVarP(&noClobber, "no-clobber", "n", false, "never default the output to the input path")
	root.Flags().BoolVarP(&quiet, "no-errors", "E", false, "suppress error messages entirely")

	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		if code == exitSuccess {
			code = exitUsage
		}
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}

func newReplCmd() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive line-at-a-time session",
		RunE: func(cmd *cobra.Command, args []string) error {
			username := os.Getenv("USER")
			if username == "" {
				username = replUsername
			}
			replui.Start(username, replui.Options{NoColor: noColor})
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable styled output")
	return cmd
}

type rootOptions struct {
	positional []string
	inputPath  string
	outputPath string
	errorPath  string
	checkOnly  bool
	noClobber  bool
	quiet      bool
}

// resolvePaths folds cobra's positional arguments ([-i] INFILE [[-o]
// OUTFILE]) together with the explicit -i/-o flags, matching afed.c's
// getopt_long loop where a bare positional argument fills whichever of
// infile/outfile is still unset.
func resolvePaths(o rootOptions) (in, out string, err error) {
	in, out = o.inputPath, o.outputPath
	for _, a := range o.positional {
		switch {
		case in == "":
			in = a
		case out == "":
			out = a
		default:
			return "", "", errors.New("too many file arguments")
		}
	}
	if in == "" {
		return "", "", errors.New("no input file given")
	}
	return in, out, nil
}

func openInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func openErrorWriter(path string, quiet bool) (io.Writer, func(), error) {
	if quiet {
		return io.Discard, func() {}, nil
	}
	switch path {
	case "":
		return os.Stderr, func() {}, nil
	case "-":
		return os.Stdout, func() {}, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
}

func writeOutput(path, inputPath, content string, noClobber bool) error {
	if path == "" {
		if noClobber {
			return errors.New("no output file given and no-clobber present")
		}
		path = inputPath
	}
	if path == "-" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func runRoot(o rootOptions) (int, error) {
	inPath, outPath, err := resolvePaths(o)
	if err != nil {
		return exitUsage, err
	}

	src, err := openInput(inPath)
	if err != nil {
		return exitIO, fmt.Errorf("input file %q did not open: %w", inPath, err)
	}

	errW, closeErrW, err := openErrorWriter(o.errorPath, o.quiet)
	if err != nil {
		return exitIO, fmt.Errorf("error file %q did not open: %w", o.errorPath, err)
	}
	defer closeErrW()

	space := ns.New(true)
	ns.SetEvaluator(func(b *instr.Binding) { _, _ = eval.Eval(b) })

	res := document.Splice(src, space)

	errColor := color.New(color.FgRed)
	for _, e := range res.Errors {
		_, _ = errColor.Fprintln(errW, e)
	}

	if o.checkOnly {
		if res.ErrCount > 0 {
			plural := "s"
			if res.ErrCount == 1 {
				plural = ""
			}
			fmt.Fprintf(errW, "%d Parse Error%s\n", res.ErrCount, plural)
		} else {
			fmt.Fprintln(errW, "No Parse Errors")
		}
		return statusFor(res.ErrCount), nil
	}

	if err := writeOutput(outPath, inPath, res.Output, o.noClobber); err != nil {
		if outPath == "" && o.noClobber {
			return exitUsage, err
		}
		return exitIO, err
	}

	return statusFor(res.ErrCount), nil
}

func statusFor(errCount int) int {
	if errCount > 0 {
		return exitDocErrors
	}
	return exitSuccess
}
