// Package config loads optional defaults for ask from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "ASK_CONFIG"

// File is the configuration file structure. Command-line flags take precedence over it.
type File struct {
	FileMatches     int      `yaml:"file_matches"`
	SentenceMatches int      `yaml:"sentence_matches"`
	Extensions      []string `yaml:"extensions"`
	Stem            bool     `yaml:"stem"`
	ExtraStopwords  []string `yaml:"extra_stopwords"`
	Concurrency     int      `yaml:"concurrency"`
	Format          string   `yaml:"format"` // text, markdown or json
}

// Default returns the built-in configuration.
func Default() *File {
	cfg := &File{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the config at path. An empty path or a missing file yields the defaults.
func Load(path string) (*File, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Path returns explicit when set, otherwise the value of ASK_CONFIG.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvPath)
}

func validate(cfg *File) error {
	if cfg.FileMatches < 0 {
		return fmt.Errorf("file_matches must not be negative, got %d", cfg.FileMatches)
	}
	if cfg.SentenceMatches < 0 {
		return fmt.Errorf("sentence_matches must not be negative, got %d", cfg.SentenceMatches)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "text", "markdown", "md", "json":
	default:
		return fmt.Errorf("unknown format %q", cfg.Format)
	}
	return nil
}

func applyDefaults(cfg *File) {
	if cfg.FileMatches == 0 {
		cfg.FileMatches = 1
	}
	if cfg.SentenceMatches == 0 {
		cfg.SentenceMatches = 1
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".txt"}
	}
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)
}
