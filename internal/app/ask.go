// Package app contains the core application logic for the ask CLI tool.
// It answers a question over a corpus directory, separated from CLI concerns.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chriscorrea/ask/internal/corpus"
	"github.com/chriscorrea/ask/internal/extract"
	"github.com/chriscorrea/ask/internal/rank"
	"github.com/chriscorrea/ask/internal/spinner"
	"github.com/chriscorrea/ask/internal/tokenize"
)

// ErrNoQuery is returned when neither the configuration nor the input holds a question.
var ErrNoQuery = errors.New("no query provided")

// ErrNoSentences is returned when the best files contain no sentence with a single token.
var ErrNoSentences = errors.New("no candidate sentences in matching files")

// OutputFormat defines the output format for answers
type OutputFormat int

const (
	// plaintext output format (default), one sentence per line
	Text OutputFormat = iota
	// markdown output format
	Markdown
	// JSON output format
	JSON
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Text:
		return "Text"
	case Markdown:
		return "Markdown"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ParseOutputFormat maps a config file format name to an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("unknown output format %q", name)
	}
}

// Config holds all configuration options for the ask application.
type Config struct {
	CorpusDir       string
	Query           string // prompted for on the input reader when empty
	FileMatches     int    // files whose sentences are searched (default: 1)
	SentenceMatches int    // sentences in the answer (default: 1)
	Extensions      []string
	HTML            extract.Options
	Stem            bool
	ExtraStopwords  []string
	Concurrency     int          // documents tokenized in parallel
	OutputFormat    OutputFormat // output format (txt/md/json)
	Quiet           bool         // suppress progress output
	Debug           bool
}

// Run answers a question over the corpus in cfg.CorpusDir.
//
// Processing Pipeline:
// 1. Load and tokenize the corpus, compute corpus IDF
// 2. Read the query (from cfg.Query or a prompt on in)
// 3. Rank files by TF-IDF and keep the best cfg.FileMatches
// 4. Segment those files into sentences and rank them against a sentence-level IDF
// 5. Render the answer in cfg.OutputFormat
//
// ctx allows for cancellation while the corpus is loaded and tokenized.
func Run(ctx context.Context, cfg Config, in io.Reader) (string, error) {
	if strings.TrimSpace(cfg.CorpusDir) == "" {
		return "", fmt.Errorf("no corpus directory provided")
	}
	if cfg.FileMatches == 0 {
		cfg.FileMatches = 1
	}
	if cfg.SentenceMatches == 0 {
		cfg.SentenceMatches = 1
	}

	tok := tokenize.New(tokenize.Options{
		ExtraStopwords: cfg.ExtraStopwords,
		Stem:           cfg.Stem,
	})

	// display spinner for longer operations
	var sp *spinner.Spinner
	if !cfg.Quiet {
		sp = spinner.New(os.Stderr, "Loading corpus...")
		sp.Start(ctx)
		defer sp.Stop()
	}

	// step 1: load corpus and compute corpus IDF
	docs, err := corpus.Load(ctx, cfg.CorpusDir, corpus.Options{
		Extensions: cfg.Extensions,
		HTML:       cfg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("failed to load corpus: %w", err)
	}

	fileTokens, err := corpus.Tokenize(ctx, docs, tok, cfg.Concurrency)
	if err != nil {
		return "", err
	}

	fileIDF, err := rank.ComputeIDF(fileTokens)
	if err != nil {
		return "", fmt.Errorf("failed to compute corpus idf: %w", err)
	}
	slog.Debug("Corpus indexed", "documents", len(docs), "terms", len(fileIDF))

	// step 2: read the query, with the spinner off while prompting
	question := strings.TrimSpace(cfg.Query)
	if question == "" {
		if sp != nil {
			sp.Stop()
		}
		question, err = readQuery(in, os.Stderr)
		if err != nil {
			return "", err
		}
	}

	queryTokens, err := tok.Tokenize(question)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize query: %w", err)
	}
	query := rank.NewQuery(queryTokens)
	if len(query) == 0 {
		slog.Debug("Query has no terms after normalization", "query", question)
	}

	// step 3: rank files
	if sp != nil {
		sp.SetMessage("Ranking files...")
		sp.Start(ctx)
	}
	files, err := rank.RankFiles(query, fileTokens, fileIDF, cfg.FileMatches)
	if err != nil {
		return "", fmt.Errorf("failed to rank files: %w", err)
	}

	// step 4: rank sentences of the winning files
	if sp != nil {
		sp.SetMessage("Ranking sentences...")
	}
	candidates, err := collectSentences(docs, files, tok)
	if err != nil {
		return "", err
	}
	if len(candidates.tokens) == 0 {
		return "", ErrNoSentences
	}

	sentenceIDF, err := rank.ComputeIDF(candidates.tokens)
	if err != nil {
		return "", fmt.Errorf("failed to compute sentence idf: %w", err)
	}
	sentences, err := rank.RankSentences(query, candidates.tokens, sentenceIDF, cfg.SentenceMatches)
	if err != nil {
		return "", fmt.Errorf("failed to rank sentences: %w", err)
	}

	if sp != nil {
		sp.Stop()
	}

	// step 5: render
	result, err := newAnswer(question, query, docs, files, sentences, candidates.source, cfg.OutputFormat)
	if err != nil {
		return "", err
	}
	return render(result, cfg.OutputFormat)
}

// readQuery prompts on prompt and reads one line from in.
func readQuery(in io.Reader, prompt io.Writer) (string, error) {
	if in == nil {
		return "", ErrNoQuery
	}

	fmt.Fprint(prompt, "Query: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read query: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrNoQuery
	}
	return line, nil
}

// textProcessor tokenizes and segments text.
type textProcessor interface {
	tokenize.Tokenizer
	tokenize.Segmenter
}

// sentenceSet holds the candidate sentences of the best files, keyed by sentence text.
type sentenceSet struct {
	tokens map[string][]string
	source map[string]string // sentence text to the first file it was found in
}

// collectSentences splits the matching documents into passages then sentences and
// tokenizes them. Sentences without tokens are dropped and duplicates collapse.
func collectSentences(docs []corpus.Document, files []rank.FileScore, tok textProcessor) (sentenceSet, error) {
	set := sentenceSet{
		tokens: make(map[string][]string),
		source: make(map[string]string),
	}

	byName := make(map[string]corpus.Document, len(docs))
	for _, doc := range docs {
		byName[doc.Name] = doc
	}

	for _, file := range files {
		doc, ok := byName[file.ID]
		if !ok {
			return sentenceSet{}, fmt.Errorf("ranked file %q not in corpus", file.ID)
		}

		for _, passage := range tokenize.Passages(doc.Text) {
			sentences, err := tok.Sentences(passage)
			if err != nil {
				return sentenceSet{}, fmt.Errorf("failed to segment %q: %w", doc.Name, err)
			}

			for _, sentence := range sentences {
				if _, seen := set.tokens[sentence]; seen {
					continue
				}
				tokens, err := tok.Tokenize(sentence)
				if err != nil {
					return sentenceSet{}, fmt.Errorf("failed to tokenize sentence in %q: %w", doc.Name, err)
				}
				if len(tokens) == 0 {
					continue
				}
				set.tokens[sentence] = tokens
				set.source[sentence] = doc.Name
			}
		}
	}

	slog.Debug("Candidate sentences collected", "files", len(files), "sentences", len(set.tokens))
	return set, nil
}
