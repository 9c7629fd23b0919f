// Command fxv validates FundsXML4 documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/fundsxml"
	"github.com/etnz/fundsxml/cmd"
	"github.com/etnz/fundsxml/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Completes and exits when invoked by the shell completion.
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	if err := cmd.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}
	flag.Parse()

	if name := flag.Arg(0); !cmd.IsCommand(name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the fxv command line to the shell completion.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictors(flag.CommandLine),
	}
	for _, c := range cmd.Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{
			Flags: predictors(fs),
			Args:  predict.Files("*.xml"),
		}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, docs.All))
	}
	root.Sub["rules"].Args = predict.Nothing
	return root
}

// predictors predicts the values of the flags of fs.
func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = predict.Nothing
			return
		}
		switch f.Name {
		case "profile":
			m[f.Name] = predict.Set(fundsxml.Profiles())
		case "tolerances":
			m[f.Name] = predict.Files("*.yaml")
		case "log-level":
			m[f.Name] = predict.Set{"debug", "info", "warn", "error"}
		case "format":
			m[f.Name] = predict.Set{"md", "json"}
		default:
			m[f.Name] = predict.Something
		}
	})
	return m
}
