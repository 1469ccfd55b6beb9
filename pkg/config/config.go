// Package config handles loading and managing repocert configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for repocert.
type Config struct {
	Assessment AssessmentConfig `yaml:"assessment"`
	Service    ServiceConfig    `yaml:"service"`
}

// AssessmentConfig controls evaluator selection and scoring behavior.
type AssessmentConfig struct {
	Weights            map[string]float64 `yaml:"weights"`
	ExcludedAttributes []string           `yaml:"excluded_attributes"`
	Concurrency        int                `yaml:"concurrency"`
	EvaluatorTimeout   int                `yaml:"evaluator_timeout"` // seconds
	FailBelow          float64            `yaml:"fail_below"`
	SkipHistory        bool               `yaml:"skip_history"`
}

// ServiceConfig points the CLI at a hosted repocert service for submissions.
type ServiceConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Assessment: AssessmentConfig{
			Weights:          map[string]float64{},
			Concurrency:      4,
			EvaluatorTimeout: 30,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Assessment.Concurrency < 0 {
		return nil, fmt.Errorf("parsing config: concurrency must not be negative")
	}
	if cfg.Assessment.EvaluatorTimeout < 0 {
		return nil, fmt.Errorf("parsing config: evaluator_timeout must not be negative")
	}

	return cfg, nil
}

// FindConfigFile looks for .repocert/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".repocert", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the cache directory for a given repository path.
// Uses ~/.cache/repocert/<repo-slug>/ to avoid polluting the repo.
func CacheDir(repoPath string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	slug := repoSlug(repoPath)
	return filepath.Join(home, ".cache", "repocert", slug)
}

// AssessmentDir returns the local assessment archive directory for a repository.
func AssessmentDir(repoPath string) string {
	return filepath.Join(CacheDir(repoPath), "assessments")
}

// BadgeDir returns the rendered badge output directory for a repository.
func BadgeDir(repoPath string) string {
	return filepath.Join(CacheDir(repoPath), "badges")
}

// repoSlug creates a filesystem-safe identifier from a repository path.
// Uses the last two path components (e.g., "user/myrepo" from "/home/user/workspace/myrepo").
func repoSlug(repoPath string) string {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		abs = repoPath
	}
	dir := filepath.Base(filepath.Dir(abs))
	base := filepath.Base(abs)
	return dir + "_" + base
}

// FindRepoRoot walks up from dir looking for a .git directory.
func FindRepoRoot(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ".git")
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no git repository found (looked for a .git directory)")
}
