package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchbase/tools-logstore/config"
	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/facility"
	"github.com/couchbase/tools-logstore/retention"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	backend    string
	path       string
	table      string
	natsURL    string
	logLevel   string
	jsonLogs   bool
}

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "logstore",
		Short:        "Inspect and maintain a structured log store",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON configuration file")
	flags.StringVar(&opts.backend, "backend", "", "storage backend, one of 'sqlite', 'pebble' or 'none'")
	flags.StringVarP(&opts.path, "path", "p", "", "SQLite database file or pebble directory")
	flags.StringVar(&opts.table, "table", "", "name of the log table")
	flags.StringVar(&opts.natsURL, "nats-url", "", "NATS server retention results are published to")
	flags.StringVar(&opts.logLevel, "log-level", "info", "level of the operational log written to stderr")
	flags.BoolVar(&opts.jsonLogs, "json-log", false, "write the operational log as JSON")

	root.AddCommand(
		newAppendCommand(opts),
		newListCommand(opts),
		newClearCommand(opts),
		newExportCommand(opts),
		newTruncateCommand(opts),
		newScheduleCommand(opts),
	)

	return root
}

// logger returns the operational logger, which writes to stderr so it never mixes with command output.
func (o *globalOptions) logger() (log.Logger, error) {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{Level: log.SlogLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, handlerOptions)
	if o.jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, handlerOptions)
	}

	return log.NewSlogLogger(slog.New(handler)), nil
}

// config returns the configuration, flags take precedence over the environment which takes precedence over the file.
func (o *globalOptions) config() (config.Config, error) {
	cfg := config.Default()

	if o.configPath != "" {
		var err error

		cfg, err = config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg.ApplyEnv()

	if o.backend != "" {
		cfg.Backend = config.Backend(o.backend)
	}

	if o.path != "" {
		cfg.Path = o.path
	}

	if o.table != "" {
		cfg.Table = o.table
	}

	if o.natsURL != "" {
		cfg.Report.NATSURL = o.natsURL
	}

	return cfg, nil
}

// open builds the facility used by a command, the caller must close it.
func (o *globalOptions) open(scheduler retention.Scheduler) (*facility.Facility, error) {
	logger, err := o.logger()
	if err != nil {
		return nil, err
	}

	wrapped := log.NewWrappedLogger(logger)
	wrapped.Infof("(CLI) Running with arguments: %s", log.MaskAndUserTagCLIArguments(os.Args[1:]))

	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	f, err := facility.New(facility.Options{Config: cfg, Scheduler: scheduler, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open log store: %w", err)
	}

	return f, nil
}
