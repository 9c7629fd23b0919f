package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fundsxml"
	"github.com/etnz/fundsxml/renderer"
	"github.com/google/subcommands"
)

type rulesCmd struct{}

func (*rulesCmd) Name() string     { return "rules" }
func (*rulesCmd) Synopsis() string { return "list the validation rules and the active tolerance profile" }
func (*rulesCmd) Usage() string {
	return `fxv [-profile <name>] [-tolerances <file>] rules

  Lists every rule with its category and description, then prints the
  tolerance profile selected by the global flags.
`
}

func (*rulesCmd) SetFlags(f *flag.FlagSet) {}

func (*rulesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := tolerances()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RulesMarkdown(fundsxml.Rules(), t))
	return subcommands.ExitSuccess
}
