package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/adapter/output"
	"github.com/jmylchreest/toastui/internal/core"
	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/model"
)

var historyOpts struct {
	// Filter options
	since    string
	typ      string
	position string
	filter   string
	search   string
	limit    int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string
}

var historyCmd = &cobra.Command{
	Use:   "history [index|id]",
	Short: "List dismissed toasts",
	Long: `List toasts from the dismissal log.

The log is written while the host runs with history enabled ([history] in the
config file, or --history-file). Entries are listed most recently dismissed
first.

With an index (1-based, after filtering and sorting) or an id, only that entry
is printed.

Examples:
  # Everything dismissed in the last hour
  toastui history --since 1h

  # Errors that stayed up for more than ten seconds
  toastui history --filter "type=error,lifetime>10s"

  # Pick one with fuzzel and print its message
  toastui history -f dmenu | fuzzel -d | cut -d' ' -f1 | xargs toastui history --field message`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the dismissal log",
	Long: `Remove old entries from the dismissal log.

Prune rewrites the log file, so run it while no host is writing to it.

Examples:
  # Remove entries older than 7 days
  toastui history prune --older-than 7d

  # Keep only the 100 most recent entries
  toastui history prune --keep 100

  # Preview what would be removed
  toastui history prune --older-than 48h --dry-run`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(pruneCmd)

	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Show entries dismissed within the last duration (e.g., 1h, 7d, 1w)")
	historyCmd.Flags().StringVar(&historyOpts.typ, "type", "",
		"Filter by toast type (default, success, error, warning, info)")
	historyCmd.Flags().StringVar(&historyOpts.position, "position", "",
		"Filter by anchor (e.g., top-right)")
	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		"Filter expression (e.g., \"type=error,message~disk,dismissed<1h\")")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Search in messages")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of entries to show (0=unlimited)")

	historyCmd.Flags().StringVar(&historyOpts.sortBy, "sort", "dismissed",
		"Sort by field (dismissed, created, type, lifetime)")
	historyCmd.Flags().StringVar(&historyOpts.sortOrder, "order", "desc",
		"Sort order (asc, desc)")

	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format (plain, dmenu, json, ids)")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output a single field of the selected entry (id, type, position, message, created, dismissed, lifetime)")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Custom Go template for plain and dmenu output")

	pruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove entries dismissed longer ago than this duration (e.g., 48h, 7d, 1w)")
	pruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent entries (0=unlimited)")
	pruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without removing it")
}

// logPath returns the dismissal log to read, whether or not recording is enabled.
func logPath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	return cfg.HistoryPath()
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := logPath()
	entries, err := history.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded dismissal log", "path", path, "entries", len(entries))

	now := time.Now()
	entries, err = selectEntries(entries, now)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		var e *history.Entry
		if idx, err := strconv.Atoi(args[0]); err == nil && idx > 0 {
			e = core.LookupByIndex(entries, idx)
		} else {
			e = core.LookupByID(entries, args[0])
		}
		if e == nil {
			return fmt.Errorf("no dismissed toast %q", args[0])
		}
		entries = []history.Entry{*e}
	}

	if historyOpts.field != "" {
		if len(entries) != 1 {
			return fmt.Errorf("--field needs exactly one entry, got %d", len(entries))
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), output.FormatField(&entries[0], historyOpts.field))
		return err
	}

	format, err := output.ParseFormat(historyOpts.format)
	if err != nil {
		return err
	}
	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	opts.Now = func() time.Time { return now }
	if format == output.FormatPlain {
		opts.MessageMaxLen = 0
	}

	f, err := output.NewFormatter(format, opts)
	if err != nil {
		return err
	}
	return f.Format(cmd.OutOrStdout(), entries)
}

// selectEntries applies the filter, search and sort flags, then the limit.
func selectEntries(entries []history.Entry, now time.Time) ([]history.Entry, error) {
	opts := core.FilterOptions{
		Type:     model.Type(strings.ToLower(historyOpts.typ)),
		Position: model.Position(strings.ToLower(historyOpts.position)),
	}
	if opts.Type != "" && !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidType, historyOpts.typ)
	}
	if opts.Position != "" && !opts.Position.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidPosition, historyOpts.position)
	}
	if historyOpts.since != "" {
		d, err := core.ParseDuration(historyOpts.since)
		if err != nil {
			return nil, err
		}
		opts.Since = d
	}

	expr, err := core.ParseFilter(historyOpts.filter, now)
	if err != nil {
		return nil, err
	}

	entries = core.Filter(entries, opts, now)
	entries = core.FilterWithExpr(entries, expr)
	entries = core.Search(entries, historyOpts.search)

	core.Sort(entries, core.SortOptions{
		Field: core.ParseSortField(historyOpts.sortBy),
		Order: core.ParseSortOrder(historyOpts.sortOrder),
	})

	if historyOpts.limit > 0 && len(entries) > historyOpts.limit {
		entries = entries[:historyOpts.limit]
	}
	return entries, nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}

	path := logPath()
	entries, err := history.Load(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No dismissed toasts in the log")
		return nil
	}

	now := time.Now()
	core.Sort(entries, core.DefaultSortOptions())

	var cutoff time.Time
	if pruneOpts.olderThan != "" {
		d, err := core.ParseDuration(pruneOpts.olderThan)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		cutoff = now.Add(-d)
	}

	var keep, drop []history.Entry
	for i, e := range entries {
		tooOld := !cutoff.IsZero() && e.DismissedAt.Before(cutoff)
		overLimit := pruneOpts.keep > 0 && i >= pruneOpts.keep
		if tooOld || overLimit {
			drop = append(drop, e)
		} else {
			keep = append(keep, e)
		}
	}

	if len(drop) == 0 {
		fmt.Fprintln(out, "Nothing to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Fprintf(out, "Would remove %d entr%s:\n", len(drop), plural(len(drop)))
		f, err := output.NewFormatter(output.FormatPlain, output.FormatterOptions{
			ShowType:      true,
			ShowTime:      true,
			MessageMaxLen: 60,
			Now:           func() time.Time { return now },
		})
		if err != nil {
			return err
		}
		if len(drop) > 10 {
			if err := f.Format(out, drop[:10]); err != nil {
				return err
			}
			fmt.Fprintf(out, "... and %d more\n", len(drop)-10)
			return nil
		}
		return f.Format(out, drop)
	}

	// The log is append-ordered; keep it oldest first.
	core.Sort(keep, core.SortOptions{Field: core.SortByDismissed, Order: core.SortAsc})
	if err := history.Rewrite(path, keep); err != nil {
		return err
	}
	logger.Info("pruned dismissal log", "path", path, "removed", len(drop), "kept", len(keep))
	fmt.Fprintf(out, "Removed %d entr%s\n", len(drop), plural(len(drop)))
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
