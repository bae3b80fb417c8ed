package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"relprefix/internal/config"
	"relprefix/internal/logging"
	"relprefix/internal/orchestrator"
	"relprefix/internal/output"
	"relprefix/internal/scanner"
)

type flags struct {
	configPath string
	dir        string
	attempts   int
	delay      time.Duration
	allEntries bool
	noSort     bool
	ignore     []string
	dryRun     bool
	watch      bool
	verbose    bool
	logLevel   string
	logFormat  string
}

// execute runs cmd and returns the process exit status.
func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		out := output.New(output.Config{
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
		})
		out.Error("Error: %v", err)
		if errors.Is(err, orchestrator.ErrMissingPrefix) {
			out.Error("Usage: %s", cmd.UseLine())
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "relprefix [flags] <prefix>",
		Short: "Prepend a platform or version prefix to build artifacts",
		Long: `relprefix renames every file in a build output directory to
<prefix><name>. Files locked by another process are retried a bounded
number of times; entries that still fail keep their name and are reported.

Running it twice with the same prefix prefixes twice.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

// register binds every command-line flag to f.
func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&f.dir, "dir", "d", config.DefaultDirectory, "target directory")
	fs.IntVar(&f.attempts, "attempts", config.DefaultMaxAttempts, "attempts per locked entry")
	fs.DurationVar(&f.delay, "delay", config.DefaultDelay, "wait between attempts")
	fs.BoolVar(&f.allEntries, "all-entries", false, "rename directories too (never recursed into)")
	fs.BoolVar(&f.noSort, "no-sort", false, "keep filesystem enumeration order")
	fs.StringArrayVar(&f.ignore, "ignore", nil, "glob pattern of entry names to leave alone (repeatable)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "print planned renames without renaming")
	fs.BoolVarP(&f.watch, "watch", "w", false, "keep prefixing new entries until interrupted")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print every attempt")
	fs.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "diagnostic log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "diagnostic log format (text, json)")
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), f, args)
	if err != nil {
		return err
	}

	out := output.New(output.Config{
		Verbose:   cfg.Verbose,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		IsTTY:     isTerminal(cmd.OutOrStdout()),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Entries that keep their name are reported line by line and do not
	// fail the run.
	_, err = orchestrator.Run(ctx, cfg, orchestrator.Deps{
		Out: out,
		Log: logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format),
	})
	return err
}

// loadConfig builds the configuration from the optional file, then applies
// the flags the user set and the positional prefix.
func loadConfig(fs *pflag.FlagSet, f *flags, args []string) (*config.Configuration, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fs.Changed("dir") {
		cfg.Directory = f.dir
	}
	if fs.Changed("attempts") {
		cfg.Retry.MaxAttempts = f.attempts
	}
	if fs.Changed("delay") {
		cfg.Retry.Delay = f.delay
	}
	if fs.Changed("all-entries") {
		cfg.Entries = scanner.EntriesFiles
		if f.allEntries {
			cfg.Entries = scanner.EntriesAll
		}
	}
	if fs.Changed("no-sort") {
		cfg.Order = config.OrderName
		if f.noSort {
			cfg.Order = config.OrderDirectory
		}
	}
	if fs.Changed("ignore") {
		cfg.Ignore = append(cfg.Ignore, f.ignore...)
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if fs.Changed("watch") {
		cfg.Watch.Enabled = f.watch
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if len(args) == 1 {
		cfg.Prefix = args[0]
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	return w == io.Writer(os.Stdout) && output.DefaultConfig().IsTTY
}
