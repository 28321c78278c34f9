package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/couchbase/tools-logstore/core/log"
	"github.com/couchbase/tools-logstore/fsutil"
	"github.com/couchbase/tools-logstore/logstore"
	"github.com/couchbase/tools-logstore/retention"
)

func newAppendCommand(opts *globalOptions) *cobra.Command {
	var source, level string

	cmd := &cobra.Command{
		Use:   "append [message...]",
		Short: "Append an entry to the log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := log.ParseLevel(level)
			if err != nil {
				return err
			}

			f, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer f.Close()

			entry, err := f.Logger(source).Log(parsed, strings.Join(args, " "), nil)
			if err != nil {
				return fmt.Errorf("failed to append entry: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), entry.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source the entry is scoped to")
	cmd.Flags().StringVarP(&level, "level", "l", "info", "level of the entry")

	return cmd
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var source, format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries in the log, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := f.Logger(source).ReadAll()
			if err != nil {
				return fmt.Errorf("failed to read entries: %w", err)
			}

			return printEntries(cmd.OutOrStdout(), entries, format)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "only list entries for this source")
	cmd.Flags().StringVar(&format, "format", "text", "output format, one of 'text' or 'json'")

	return cmd
}

func printEntries(w io.Writer, entries []logstore.Entry, format string) error {
	switch logstore.ExportFormat(format) {
	case logstore.ExportFormatJSON:
		encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(entries)
	case logstore.ExportFormatText:
		for _, entry := range entries {
			source := entry.SourceID
			if source == "" {
				source = "-"
			}

			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", entry.ID, entry.Date.Format("2006-01-02 15:04:05"), entry.Level,
				source, entry.Message)
		}

		return nil
	}

	return fmt.Errorf("unknown format '%s'", format)
}

func newClearCommand(opts *globalOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry, or every entry for a source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer f.Close()

			cleared, err := f.Logger(source).Clear()
			if err != nil {
				return fmt.Errorf("failed to clear entries: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", cleared)

			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "only clear entries for this source")

	return cmd
}

func newExportCommand(opts *globalOptions) *cobra.Command {
	var (
		source, output string
		options        logstore.ExportOptions
		format         string
		compression    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the entries in the log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer f.Close()

			options.Format = logstore.ExportFormat(format)
			options.Compression = logstore.Compression(compression)

			export := func(w io.Writer) error { return f.Logger(source).Export(cmd.Context(), w, options) }

			if output == "" || output == "-" {
				err = export(cmd.OutOrStdout())
			} else {
				err = fsutil.WriteAtomic(output, export)
			}

			if err != nil {
				return fmt.Errorf("failed to export entries: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "only export entries for this source")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to export to, '-' for stdout")
	cmd.Flags().StringVar(&format, "format", string(logstore.ExportFormatText), "export format, one of 'text' or 'json'")
	cmd.Flags().StringVar(&compression, "compression", string(logstore.CompressionNone),
		"compression, one of 'none', 'gzip' or 'zstd'")
	cmd.Flags().IntVar(&options.BytesPerSecond, "rate", 0, "maximum bytes written per second, 0 is unlimited")

	return cmd
}

func newTruncateCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "truncate",
		Short: "Run retention once, purging entries older than the configured maximum age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := opts.open(nil)
			if err != nil {
				return err
			}
			defer f.Close()

			if f.Job() == nil {
				return fmt.Errorf("retention is disabled")
			}

			result := f.Job().Run()
			if result.Err != nil {
				return fmt.Errorf("failed to truncate log: %w", result.Err)
			}

			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "skipped, another run is in progress")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries\n", result.Deleted)

			return nil
		},
	}

	return cmd
}

func newScheduleCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run retention on its configured schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger, err := opts.logger()
			if err != nil {
				return err
			}

			scheduler := retention.NewTickerScheduler(nil, logger)

			f, err := opts.open(scheduler)
			if err != nil {
				scheduler.Stop()
				return err
			}

			// Any running retention must complete before the store is closed
			defer func() {
				scheduler.Stop()
				f.Close()
			}()

			if f.Job() == nil {
				return fmt.Errorf("retention is disabled")
			}

			<-ctx.Done()

			return nil
		},
	}

	return cmd
}
