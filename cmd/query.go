package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression over a validation report" }
func (*queryCmd) Usage() string {
	return `fxv query <jsonpath> <file>

  Validates the file and prints the part of the JSON report selected by the
  JSONPath expression, for instance:

    fxv query '$.summary.error' fund.xml
    fxv query '$.findings[?(@.severity=="error")].rule' fund.xml
`
}

func (*queryCmd) SetFlags(f *flag.FlagSet) {}

func (*queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "query requires a JSONPath expression and a file")
		return subcommands.ExitUsageError
	}
	path, file := f.Arg(0), f.Arg(1)

	ev, err := newEvaluator()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	at, err := now()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	v := validateFile(ev, at, file)
	if v.err != nil {
		fmt.Fprintf(os.Stderr, "Error validating %s: %v\n", file, v.err)
		return subcommands.ExitFailure
	}
	out, err := selectJSON(v.report, path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
