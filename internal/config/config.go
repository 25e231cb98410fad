package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/statex-dev/statex/internal/extract"
	"github.com/statex-dev/statex/internal/report"
)

// FileName is the config file looked up in the base directory.
const FileName = "statex.yaml"

// Config represents the top-level statex.yaml configuration.
type Config struct {
	Paths    PathsConfig     `yaml:"paths"`
	Report   ReportConfig    `yaml:"report"`
	Prompt   PromptConfig    `yaml:"prompt"`
	Markers  extract.Markers `yaml:"markers"`
	Git      GitConfig       `yaml:"git"`
	LogLevel string          `yaml:"log_level"`
}

// PathsConfig locates run inputs and outputs. Relative paths resolve against the base directory.
type PathsConfig struct {
	Input      string `yaml:"input"`
	Dictionary string `yaml:"dictionary"`
	OutputDir  string `yaml:"output_dir"`
}

// ReportConfig controls the export report.
type ReportConfig struct {
	Format  string   `yaml:"format"`
	Account string   `yaml:"account"`
	Exclude []string `yaml:"exclude"`
}

// PromptConfig controls interactive classification.
type PromptConfig struct {
	Suggestions int `yaml:"suggestions"`
}

// GitConfig controls committing the dictionary after a run.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a statex.yaml file from disk. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Markers = cfg.Markers.WithDefaults()
	return cfg, nil
}

// LoadOrDefault loads <dir>/statex.yaml, or returns Default if it does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the configuration used when no statex.yaml exists.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Input:      filepath.Join("input", "data.html"),
			Dictionary: filepath.Join("data", "titles-dictionary.xlsx"),
			OutputDir:  "output",
		},
		Report: ReportConfig{
			Format:  "xlsx",
			Account: report.DefaultAccount,
			Exclude: append([]string(nil), report.DefaultExclude...),
		},
		Prompt: PromptConfig{
			Suggestions: 3,
		},
		Markers: extract.DefaultMarkers(),
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "statex",
			AuthorEmail: "statex@localhost",
		},
		LogLevel: "info",
	}
}

// Resolve returns path joined to baseDir unless it is already absolute.
func Resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
