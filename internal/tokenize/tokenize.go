// Package tokenize turns raw text into the normalized token sequences the ranker consumes.
//
// Words and sentences are segmented with prose. Tokens are lowercased, tokens made only of
// punctuation or symbols are dropped, stopwords are removed and, optionally, the remaining
// words are reduced to their Snowball (English) stems.
//
// Usage Example:
//
//	tok := tokenize.New(tokenize.Options{})
//	tokens, err := tok.Tokenize("What are the types of supervised learning?")
//	// []string{"types", "supervised", "learning"}
package tokenize

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

// Tokenizer normalizes text into an ordered sequence of tokens.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// Segmenter splits text into sentences.
type Segmenter interface {
	Sentences(text string) ([]string, error)
}

// Options configures a Prose tokenizer.
type Options struct {
	Stopwords      []string // replaces the default English list when non-nil
	ExtraStopwords []string // added to the stopword list
	Stem           bool     // reduce words to their Snowball stems
}

// Prose is a Tokenizer and Segmenter backed by prose.
type Prose struct {
	stopwords map[string]struct{}
	stem      bool
}

// New creates a Prose tokenizer with the given options.
func New(opts Options) *Prose {
	base := opts.Stopwords
	if base == nil {
		base = EnglishStopwords
	}

	stopwords := make(map[string]struct{}, len(base)+len(clitics)+len(opts.ExtraStopwords))
	for _, list := range [][]string{base, clitics, opts.ExtraStopwords} {
		for _, word := range list {
			stopwords[strings.ToLower(word)] = struct{}{}
		}
	}

	return &Prose{
		stopwords: stopwords,
		stem:      opts.Stem,
	}
}

// Tokenize returns the normalized words of text, in order.
func (p *Prose) Tokenize(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize text: %w", err)
	}

	raw := doc.Tokens()
	words := make([]string, 0, len(raw))
	for _, token := range raw {
		word := strings.ToLower(strings.TrimSpace(token.Text))
		if word == "" || isPunctuation(word) {
			continue
		}
		if _, stop := p.stopwords[word]; stop {
			continue
		}
		if p.stem {
			word = stemWord(word)
		}
		words = append(words, word)
	}

	return words, nil
}

// Sentences splits text into sentences using prose's punkt segmenter.
func (p *Prose) Sentences(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false))
	if err != nil {
		return nil, fmt.Errorf("failed to segment text: %w", err)
	}

	var sentences []string
	for _, sentence := range doc.Sentences() {
		if s := strings.TrimSpace(sentence.Text); s != "" {
			sentences = append(sentences, s)
		}
	}

	slog.Debug("Text segmented", "textLength", len(text), "sentences", len(sentences))
	return sentences, nil
}

// Passages splits raw document text on line breaks, dropping blank lines.
func Passages(text string) []string {
	var passages []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			passages = append(passages, trimmed)
		}
	}
	return passages
}

// isPunctuation reports whether every rune of word is punctuation or a symbol.
func isPunctuation(word string) bool {
	for _, r := range word {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

func stemWord(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
