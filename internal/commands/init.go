package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/statex-dev/statex/internal/categories"
	"github.com/statex-dev/statex/internal/config"
	"github.com/statex-dev/statex/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var withGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create the working layout, a default config and an empty dictionary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, withGit)
		},
	}

	cmd.Flags().BoolVar(&withGit, "git", false, "initialize a git repository and enable dictionary auto-commit")

	return cmd
}

func runInit(out io.Writer, dir string, withGit bool) error {
	cfg := config.Default()
	cfg.Git.AutoCommit = withGit

	dirs := []string{
		filepath.Dir(cfg.Paths.Input),
		filepath.Dir(cfg.Paths.Dictionary),
		cfg.Paths.OutputDir,
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if !exists(cfgPath) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	dictPath := config.Resolve(dir, cfg.Paths.Dictionary)
	if !exists(dictPath) {
		if err := categories.CreateDictionary(dictPath); err != nil {
			return fmt.Errorf("writing dictionary: %w", err)
		}
	}

	if withGit && !gitops.IsRepo(dir) {
		if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("input/\noutput/\n"), 0o644); err != nil {
			return fmt.Errorf("writing .gitignore: %w", err)
		}
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
	}

	fmt.Fprintf(out, "Initialized statex workspace at %s\n", dir)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
