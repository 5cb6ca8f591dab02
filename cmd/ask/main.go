package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chriscorrea/ask/internal/app"
	"github.com/chriscorrea/ask/internal/config"
	"github.com/chriscorrea/ask/internal/extract"
)

// buildConfig constructs an app.Config from the config file, command flags and arguments.
// Flags that were set explicitly take precedence over the file.
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	file, err := config.Load(config.Path(configPath))
	if err != nil {
		return app.Config{}, err
	}

	query, _ := flags.GetString("query")
	selector, _ := flags.GetString("selector")
	includeAll, _ := flags.GetBool("include-all")
	mdFlag, _ := flags.GetBool("md")
	textFlag, _ := flags.GetBool("text")
	jsonFlag, _ := flags.GetBool("json")
	quiet, _ := flags.GetBool("quiet")
	debug, _ := flags.GetBool("debug")

	fileMatches := file.FileMatches
	if flags.Changed("files") {
		fileMatches, _ = flags.GetInt("files")
	}
	sentenceMatches := file.SentenceMatches
	if flags.Changed("sentences") {
		sentenceMatches, _ = flags.GetInt("sentences")
	}
	if fileMatches < 1 || sentenceMatches < 1 {
		return app.Config{}, fmt.Errorf("--files and --sentences must be at least 1")
	}

	stem := file.Stem
	if flags.Changed("stem") {
		stem, _ = flags.GetBool("stem")
	}

	extensions := file.Extensions
	if html, _ := flags.GetBool("html"); html {
		extensions = append(extensions, ".html", ".htm")
	}

	// determine output format
	outputFormat, err := app.ParseOutputFormat(file.Format)
	if err != nil {
		return app.Config{}, err
	}
	switch {
	case textFlag:
		outputFormat = app.Text
	case jsonFlag:
		outputFormat = app.JSON
	case mdFlag:
		outputFormat = app.Markdown
	}

	return app.Config{
		CorpusDir:       args[0],
		Query:           query,
		FileMatches:     fileMatches,
		SentenceMatches: sentenceMatches,
		Extensions:      extensions,
		HTML:            extract.Options{Selector: selector, IncludeAll: includeAll},
		Stem:            stem,
		ExtraStopwords:  file.ExtraStopwords,
		Concurrency:     file.Concurrency,
		OutputFormat:    outputFormat,
		Quiet:           quiet,
		Debug:           debug,
	}, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "ask <corpus>",
	Short: "Answer questions from a directory of text documents",
	Long: `Ask finds the documents in a corpus directory that best match a question using TF-IDF,
then answers with the sentences of those documents that best match the question.

The question is read from --query or prompted for on standard input.

Examples:
  ask corpus
  ask corpus --query "What are the types of supervised learning?"
  ask docs --html --files 2 --sentences 3 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env may supply ASK_CONFIG
		_ = godotenv.Load()

		// build config from file, flags and arguments
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// configure logging pending debug flag
		setupLogger(cfg.Debug)
		slog.Debug("Configuration loaded", "corpus", cfg.CorpusDir, "files", cfg.FileMatches,
			"sentences", cfg.SentenceMatches, "extensions", cfg.Extensions, "format", cfg.OutputFormat)

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, cfg, os.Stdin)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

func init() {
	addFlags(rootCmd)
}

// addFlags registers the ask flags on cmd.
func addFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("query", "q", "", "Question to answer (prompted for when omitted)")
	cmd.Flags().IntP("files", "f", 1, "Number of best matching files to search for sentences")
	cmd.Flags().IntP("sentences", "n", 1, "Number of sentences in the answer")
	cmd.Flags().Bool("stem", false, "Reduce words to their stems before ranking")
	cmd.Flags().String("config", "", "Path to a YAML config file (default: $"+config.EnvPath+")")

	// html corpora
	cmd.Flags().Bool("html", false, "Also load .html and .htm documents")
	cmd.Flags().StringP("selector", "s", "", "CSS selector for HTML content extraction")
	cmd.Flags().BoolP("include-all", "i", false, "Include all HTML content without readability filtering")

	// output format flags are mutually exclusive
	cmd.Flags().Bool("md", false, "Output in Markdown format")
	cmd.Flags().Bool("text", false, "Output in plain text format (default)")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.MarkFlagsMutuallyExclusive("md", "text", "json")

	// other flags
	cmd.Flags().Bool("quiet", false, "Suppress progress output")
	cmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = cmd.Flags().MarkHidden("debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
