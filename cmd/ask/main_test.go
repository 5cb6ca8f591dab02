package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/ask/internal/app"
	"github.com/chriscorrea/ask/internal/config"
)

func parseFlags(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "ask"}
	addFlags(cmd)
	if err := cmd.ParseFlags(flags); err != nil {
		t.Fatalf("ParseFlags(%v) unexpected error: %v", flags, err)
	}
	return cmd
}

func TestBuildConfig(t *testing.T) {
	t.Setenv(config.EnvPath, "")

	tests := []struct {
		name  string
		flags []string
		check func(t *testing.T, cfg app.Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg app.Config) {
				if cfg.CorpusDir != "corpus" || cfg.FileMatches != 1 || cfg.SentenceMatches != 1 {
					t.Errorf("unexpected defaults: %+v", cfg)
				}
				if cfg.OutputFormat != app.Text {
					t.Errorf("OutputFormat = %v, want Text", cfg.OutputFormat)
				}
				if !reflect.DeepEqual(cfg.Extensions, []string{".txt"}) {
					t.Errorf("Extensions = %v, want [.txt]", cfg.Extensions)
				}
			},
		},
		{
			name:  "explicit values",
			flags: []string{"-q", "what is go?", "-f", "2", "-n", "3", "--stem", "--json", "--quiet"},
			check: func(t *testing.T, cfg app.Config) {
				if cfg.Query != "what is go?" || cfg.FileMatches != 2 || cfg.SentenceMatches != 3 {
					t.Errorf("unexpected config: %+v", cfg)
				}
				if !cfg.Stem || !cfg.Quiet || cfg.OutputFormat != app.JSON {
					t.Errorf("unexpected config: %+v", cfg)
				}
			},
		},
		{
			name:  "html corpus",
			flags: []string{"--html", "--selector", "article", "--md"},
			check: func(t *testing.T, cfg app.Config) {
				if !reflect.DeepEqual(cfg.Extensions, []string{".txt", ".html", ".htm"}) {
					t.Errorf("Extensions = %v", cfg.Extensions)
				}
				if cfg.HTML.Selector != "article" || cfg.OutputFormat != app.Markdown {
					t.Errorf("unexpected config: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := buildConfig(parseFlags(t, tt.flags...), []string{"corpus"})
			if err != nil {
				t.Fatalf("buildConfig() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestBuildConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ask.yaml")
	content := "file_matches: 4\nsentence_matches: 2\nstem: true\nformat: json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(config.EnvPath, path)

	cfg, err := buildConfig(parseFlags(t, "-n", "5", "--text"), []string{"corpus"})
	if err != nil {
		t.Fatalf("buildConfig() unexpected error: %v", err)
	}

	// flags override the file only where they were set
	if cfg.FileMatches != 4 || cfg.SentenceMatches != 5 || !cfg.Stem {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.OutputFormat != app.Text {
		t.Errorf("OutputFormat = %v, want Text", cfg.OutputFormat)
	}
}

func TestBuildConfigInvalid(t *testing.T) {
	t.Setenv(config.EnvPath, "")

	if _, err := buildConfig(parseFlags(t, "-n", "0"), []string{"corpus"}); err == nil {
		t.Error("buildConfig() expected error for zero sentences")
	}
	if _, err := buildConfig(parseFlags(t, "-f", "-1"), []string{"corpus"}); err == nil {
		t.Error("buildConfig() expected error for negative files")
	}
}
