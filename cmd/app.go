// Package cmd implements the subcommands of the fxv CLI.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fundsxml"
	"github.com/etnz/fundsxml/date"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Commands lists the fxv subcommands, in help order.
var Commands = []subcommands.Command{
	&validateCmd{},
	&queryCmd{},
	&watchCmd{},
	&ladderCmd{},
	&holdingsCmd{},
	&rulesCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var profileName = flag.String("profile", "", "Tolerance profile (default, reconciliation). Defaults to $FXV_PROFILE, then default.")
var tolerancesFile = flag.String("tolerances", "", "YAML tolerances file applied over the profile. Defaults to $FXV_TOLERANCES.")
var nowFlag = flag.String("now", "", "Evaluation date (YYYY-MM-DD) for the date based rules. Defaults to $FXV_NOW, then today.")
var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error). Defaults to $FXV_LOG_LEVEL, then warn.")

// LoadEnv reads a .env file in the working directory, if any. Variables
// already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setting returns the flag value, else the environment variable, else
// fallback. An empty value counts as unset.
func setting(value, env, fallback string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// newLogger returns the console logger on stderr.
func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(setting(*logLevel, EnvLogLevel, "warn"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    noColor(os.Stderr),
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// tolerances resolves the active profile and applies the tolerances file.
func tolerances() (fundsxml.Tolerances, error) {
	t, err := fundsxml.Profile(setting(*profileName, EnvProfile, "default"))
	if err != nil {
		return fundsxml.Tolerances{}, err
	}
	if path := setting(*tolerancesFile, EnvTolerances, ""); path != "" {
		return fundsxml.LoadTolerances(path, t)
	}
	return t, nil
}

// now returns the evaluation time.
func now() (time.Time, error) {
	s := setting(*nowFlag, EnvNow, "")
	if s == "" {
		return time.Now(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -now date: %w", err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC), nil
}

// newEvaluator builds the evaluator from the global flags.
func newEvaluator() (*fundsxml.Evaluator, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	t, err := tolerances()
	if err != nil {
		return nil, err
	}
	log.Debug().Str("profile", t.Name).Msg("tolerances loaded")
	return fundsxml.NewEvaluator(t, log), nil
}

// aggregates decodes a file and computes the aggregates of every fund.
func aggregates(path string, topN int) ([]*fundsxml.FundAggregates, error) {
	doc, err := fundsxml.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	funds := make([]*fundsxml.FundAggregates, 0, len(doc.Funds))
	for _, f := range doc.Funds {
		funds = append(funds, fundsxml.Aggregate(doc, f, topN))
	}
	return funds, nil
}

// noColor reports whether output to f must stay plain.
func noColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// printMarkdown prints md to stdout, rendered for the terminal when stdout is one.
func printMarkdown(md string) {
	if noColor(os.Stdout) {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
