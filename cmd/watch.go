package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/etnz/fundsxml"
	"github.com/etnz/fundsxml/renderer"
	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type watchCmd struct {
	failures bool
	debounce time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "validate a document again each time it changes" }
func (*watchCmd) Usage() string {
	return `fxv watch [-failures] <file>

  Validates the file, then validates it again each time it is written,
  until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.failures, "failures", true, "Only show warnings and errors.")
	f.DurationVar(&c.debounce, "debounce", 300*time.Millisecond, "Delay batching rapid writes into one validation.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "watch requires exactly one file")
		return subcommands.ExitUsageError
	}
	file, err := filepath.Abs(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	log, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ev, err := newEvaluator()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		return subcommands.ExitFailure
	}
	defer watcher.Close()
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", file, err)
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	c.validate(ev, file, log)
	if err := c.watch(ctx, watcher, file, func() { c.validate(ev, file, log) }, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// watch calls onChange after each burst of writes to file, until ctx is done.
func (c *watchCmd) watch(ctx context.Context, w *fsnotify.Watcher, file string, onChange func(), log zerolog.Logger) error {
	timer := time.NewTimer(c.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("file changed")
			timer.Reset(c.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")
		case <-timer.C:
			onChange()
		}
	}
}

func (c *watchCmd) validate(ev *fundsxml.Evaluator, file string, log zerolog.Logger) {
	at, err := now()
	if err != nil {
		log.Error().Err(err).Msg("invalid evaluation date")
		return
	}
	v := validateFile(ev, at, file)
	if v.err != nil {
		log.Error().Err(v.err).Str("file", file).Msg("validation failed")
		return
	}
	r := v.report
	if c.failures {
		r = failuresOnly(r)
	}
	printMarkdown(renderer.ReportMarkdown(r, renderer.ReportRenderOptions{FailuresOnly: c.failures, SkipFunds: true}))
	log.Info().
		Str("file", file).
		Int("errors", v.report.Count(fundsxml.SeverityError)).
		Int("warnings", v.report.Count(fundsxml.SeverityWarning)).
		Msg("validated")
}
