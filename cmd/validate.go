package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fundsxml"
	"github.com/etnz/fundsxml/renderer"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
)

type validateCmd struct {
	format   string
	sel      string
	failures bool
	strict   bool
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "validate FundsXML4 documents and print the reports" }
func (*validateCmd) Usage() string {
	return `fxv validate [-format md|json] [-select <jsonpath>] [-failures] [-strict] <file>...

  Decodes each file, runs every rule and prints one report per file, in
  argument order. Files are validated concurrently.

  Exits with a failure when a file cannot be decoded and, with -strict,
  when a report has errors.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "md", "Output format: md or json.")
	f.StringVar(&c.sel, "select", "", "JSONPath expression selecting a part of the JSON report. Implies -format json.")
	f.BoolVar(&c.failures, "failures", false, "Only show warnings and errors.")
	f.BoolVar(&c.strict, "strict", false, "Exit with a failure when a report has errors.")
}

// validation is the outcome of one file.
type validation struct {
	path   string
	report *fundsxml.Report
	err    error
}

func (c *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "validate requires at least one file")
		return subcommands.ExitUsageError
	}
	if c.format != "md" && c.format != "json" {
		fmt.Fprintf(os.Stderr, "Unknown format %q, want md or json\n", c.format)
		return subcommands.ExitUsageError
	}
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

	results := validateFiles(ctx, ev, at, f.Args())

	status := subcommands.ExitSuccess
	for _, v := range results {
		if v.err != nil {
			fmt.Fprintf(os.Stderr, "Error validating %s: %v\n", v.path, v.err)
			status = subcommands.ExitFailure
			continue
		}
		if err := c.print(v.report); err != nil {
			fmt.Fprintf(os.Stderr, "Error printing %s: %v\n", v.path, err)
			status = subcommands.ExitFailure
			continue
		}
		if c.strict && !v.report.Passed() {
			status = subcommands.ExitFailure
		}
	}
	return status
}

func (c *validateCmd) print(r *fundsxml.Report) error {
	if c.failures {
		r = failuresOnly(r)
	}
	switch {
	case c.sel != "":
		out, err := selectJSON(r, c.sel)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case c.format == "json":
		out, err := json.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printMarkdown(renderer.ReportMarkdown(r, renderer.ReportRenderOptions{FailuresOnly: c.failures}))
	}
	return nil
}

// validateFiles decodes and evaluates files concurrently. Results keep the
// order of paths.
func validateFiles(ctx context.Context, ev *fundsxml.Evaluator, at time.Time, paths []string) []validation {
	results := make([]validation, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = validation{path: path, err: err}
				return nil
			}
			results[i] = validateFile(ev, at, path)
			return nil
		})
	}
	g.Wait()
	return results
}

func validateFile(ev *fundsxml.Evaluator, at time.Time, path string) validation {
	doc, err := fundsxml.DecodeFile(path)
	if err != nil {
		return validation{path: path, err: err}
	}
	return validation{path: path, report: ev.Evaluate(doc, at)}
}

// failuresOnly returns a copy of r without its pass findings.
func failuresOnly(r *fundsxml.Report) *fundsxml.Report {
	out := fundsxml.NewReport(r.Profile, r.Today)
	out.ContentDate = r.ContentDate
	out.DocumentID = r.DocumentID
	out.Funds = r.Funds
	out.Add(r.Failures()...)
	return out
}

// selectJSON evaluates a JSONPath expression over the JSON encoding of r and
// returns the selection, JSON encoded.
func selectJSON(r *fundsxml.Report, path string) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	sel, err := jsonpath.Get(path, v)
	if err != nil {
		return nil, fmt.Errorf("invalid selection %q: %w", path, err)
	}
	return json.Marshal(sel)
}
