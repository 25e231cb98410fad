package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/statex-dev/statex/internal/amount"
	"github.com/statex-dev/statex/internal/categories"
	"github.com/statex-dev/statex/internal/config"
	"github.com/statex-dev/statex/internal/extract"
	"github.com/statex-dev/statex/internal/gitops"
	"github.com/statex-dev/statex/internal/logger"
	"github.com/statex-dev/statex/internal/report"
	"github.com/statex-dev/statex/internal/runlog"
)

type runOptions struct {
	dir      string
	format   string
	logLevel string
	now      string
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [statement.html]",
		Short: "Extract, categorize and export the operations of a saved statement page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := resolveBaseDir(opts.dir)
			if err != nil {
				return err
			}

			input := ""
			if len(args) > 0 {
				if input, err = filepath.Abs(args[0]); err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
			}

			now := time.Now()
			if opts.now != "" {
				if now, err = parseNow(opts.now); err != nil {
					return err
				}
			}

			return runExtract(cmd.InOrStdin(), cmd.OutOrStdout(), baseDir, input, now, time.Now(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "base directory (default: the executable's directory)")
	cmd.Flags().StringVar(&opts.format, "format", "", "report format: xlsx or csv (overrides config)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	cmd.Flags().StringVar(&opts.now, "now", "", "reference time for relative day labels (RFC3339 or YYYY-MM-DD)")

	return cmd
}

// runExtract resolves day labels against now; started names the report and the run log entry.
func runExtract(in io.Reader, out io.Writer, baseDir, input string, now, started time.Time, opts runOptions) error {
	cfg, err := config.LoadOrDefault(baseDir)
	if err != nil {
		return err
	}
	if opts.format != "" {
		cfg.Report.Format = opts.format
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if input == "" {
		input = config.Resolve(baseDir, cfg.Paths.Input)
	}

	log := logger.NewConsole(out, cfg.LogLevel)
	logPreviousRun(log, baseDir)

	writer := report.DefaultRegistry().Get(cfg.Report.Format)
	if writer == nil {
		return fmt.Errorf("unknown report format %q", cfg.Report.Format)
	}

	dictPath := config.Resolve(baseDir, cfg.Paths.Dictionary)
	store, err := categories.Load(dictPath, categories.NewConsolePrompter(in, out),
		categories.WithSuggestions(cfg.Prompt.Suggestions))
	if err != nil {
		return err
	}
	log.Info().Str("dictionary", dictPath).Int("known", store.Known()).Msg("dictionary loaded")

	doc, err := extract.ParseFile(input)
	if err != nil {
		return err
	}

	acc := report.NewAccumulator(store, report.Options{
		Account: cfg.Report.Account,
		Exclude: cfg.Report.Exclude,
	})
	ex := extract.New(cfg.Markers, amount.NewParser(log), log)

	stats, extractErr := ex.Extract(doc, now, acc.AddOperation)

	// Keep what the operator already classified even if the pass failed.
	learned, err := store.Persist(dictPath)
	if err != nil {
		return err
	}
	if extractErr != nil {
		return fmt.Errorf("extracting %s: %w", input, extractErr)
	}

	reportPath, err := acc.Flush(config.Resolve(baseDir, cfg.Paths.OutputDir), started, writer)
	if err != nil {
		return err
	}

	log.Info().
		Int("rows", len(acc.Samples())).
		Int("dropped", acc.Dropped()).
		Int("skipped", stats.Skipped).
		Int("learned", learned).
		Msg("run complete")
	fmt.Fprintf(out, "Results written to %s\n", reportPath)

	entry := runlog.Entry{
		Timestamp: started,
		Input:     input,
		Rows:      len(acc.Samples()),
		Dropped:   acc.Dropped(),
		Skipped:   stats.Skipped,
		Learned:   learned,
		Report:    reportPath,
	}
	if err := runlog.Append(baseDir, []runlog.Entry{entry}); err != nil {
		log.Warn().Err(err).Msg("run log not updated")
	}

	if cfg.Git.AutoCommit && learned > 0 {
		commitDictionary(log, baseDir, dictPath, learned, cfg.Git)
	}
	return nil
}

func logPreviousRun(log zerolog.Logger, baseDir string) {
	entries, err := runlog.Read(baseDir)
	if err != nil {
		log.Warn().Err(err).Msg("run log unreadable")
		return
	}
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	log.Info().
		Time("at", last.Timestamp).
		Int("rows", last.Rows).
		Int("learned", last.Learned).
		Str("report", last.Report).
		Msg("previous run")
}

func commitDictionary(log zerolog.Logger, baseDir, dictPath string, learned int, git config.GitConfig) {
	if !gitops.IsRepo(baseDir) {
		log.Warn().Str("dir", baseDir).Msg("auto-commit enabled but base directory is not a git repository")
		return
	}
	rel, err := filepath.Rel(baseDir, dictPath)
	if err != nil {
		log.Warn().Err(err).Msg("dictionary outside base directory, not committed")
		return
	}
	msg := fmt.Sprintf("dictionary: learn %d categories", learned)
	hash, err := gitops.CommitFiles(baseDir, msg, git.AuthorName, git.AuthorEmail, rel)
	if err != nil {
		log.Warn().Err(err).Msg("dictionary commit failed")
		return
	}
	log.Info().Str("commit", hash).Msg("dictionary committed")
}

func resolveBaseDir(dir string) (string, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolving path: %w", err)
		}
		return abs, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

func parseNow(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --now %q: %w", s, err)
	}
	return t, nil
}
