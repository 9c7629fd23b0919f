package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fundsxml/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	top int
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display top holdings, distributions and concentration" }
func (*holdingsCmd) Usage() string {
	return `fxv holdings [-n <count>] <file>

  Displays, for each fund, its top holdings by weight, the value of its
  positions by asset type, currency and exposure, and concentration measures.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.top, "n", 0, "Number of top holdings. Defaults to the tolerance profile value.")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "holdings requires exactly one file")
		return subcommands.ExitUsageError
	}
	top := c.top
	if top <= 0 {
		t, err := tolerances()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		top = t.TopHoldings
	}

	funds, err := aggregates(f.Arg(0), top)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingsMarkdown(funds))
	return subcommands.ExitSuccess
}
