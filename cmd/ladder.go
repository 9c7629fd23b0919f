package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fundsxml/renderer"
	"github.com/google/subcommands"
)

type ladderCmd struct {
	json bool
}

func (*ladderCmd) Name() string     { return "ladder" }
func (*ladderCmd) Synopsis() string { return "display the maturity ladder of each fund" }
func (*ladderCmd) Usage() string {
	return `fxv ladder [-json] <file>

  Groups the bond positions of each fund by time to maturity from the
  content date.
`
}

func (c *ladderCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the ladders as JSON.")
}

func (c *ladderCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ladder requires exactly one file")
		return subcommands.ExitUsageError
	}
	funds, err := aggregates(f.Arg(0), 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	if c.json {
		ladders := make(map[string]interface{}, len(funds))
		for _, fa := range funds {
			ladders[fa.Key] = fa.Ladder
		}
		out, err := json.Marshal(ladders)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.LadderMarkdown(funds))
	return subcommands.ExitSuccess
}
