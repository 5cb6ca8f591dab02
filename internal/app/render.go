package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/chriscorrea/ask/internal/corpus"
	"github.com/chriscorrea/ask/internal/counter"
	"github.com/chriscorrea/ask/internal/rank"
)

// Answer is the structured result of one question.
type Answer struct {
	RunID     string          `json:"run_id"`
	Query     string          `json:"query"`
	Terms     []string        `json:"terms"`
	Files     []FileMatch     `json:"files"`
	Sentences []SentenceMatch `json:"sentences"`
}

// FileMatch is a ranked corpus file.
type FileMatch struct {
	Name  string  `json:"name"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// SentenceMatch is a ranked answer sentence with its measurements.
type SentenceMatch struct {
	Text       string  `json:"text"`
	File       string  `json:"file"`
	IDFSum     float64 `json:"idf_sum"`
	Density    float64 `json:"density"`
	Words      int     `json:"words"`
	Characters int     `json:"characters"`
	Tokens     int     `json:"tokens,omitempty"` // JSON only; omitted when the encoding is unavailable
}

func newAnswer(question string, query rank.Query, docs []corpus.Document, files []rank.FileScore, sentences []rank.SentenceScore, source map[string]string, format OutputFormat) (Answer, error) {
	paths := make(map[string]string, len(docs))
	for _, doc := range docs {
		paths[doc.Name] = doc.Path
	}

	answer := Answer{
		RunID:     uuid.NewString(),
		Query:     question,
		Terms:     query.Terms(),
		Files:     make([]FileMatch, len(files)),
		Sentences: make([]SentenceMatch, len(sentences)),
	}

	for i, f := range files {
		answer.Files[i] = FileMatch{Name: f.ID, Path: paths[f.ID], Score: f.Score}
	}
	for i, s := range sentences {
		answer.Sentences[i] = SentenceMatch{
			Text:    s.ID,
			File:    source[s.ID],
			IDFSum:  s.IDFSum,
			Density: s.Density,
		}
	}

	if err := measure(answer.Sentences, format); err != nil {
		return Answer{}, err
	}
	return answer, nil
}

// measure fills in the counts of each sentence. Token counts need the tiktoken encoding,
// which may have to be downloaded, so they are only taken for JSON output.
func measure(sentences []SentenceMatch, format OutputFormat) error {
	methods := []counter.CountingMethod{counter.Words, counter.Characters}
	if format == JSON {
		methods = append(methods, counter.Tokens)
	}

	for _, method := range methods {
		c, err := counter.NewCounter(method)
		if err != nil {
			if method == counter.Tokens {
				slog.Debug("Counter unavailable, omitting counts", "method", method.String(), "error", err)
				continue
			}
			return fmt.Errorf("failed to create %s counter: %w", method, err)
		}

		for i := range sentences {
			n := c.Count(sentences[i].Text)
			switch method {
			case counter.Words:
				sentences[i].Words = n
			case counter.Characters:
				sentences[i].Characters = n
			case counter.Tokens:
				sentences[i].Tokens = n
			}
		}
		slog.Debug("Sentences measured", "unit", c.Name(), "sentences", len(sentences))
	}
	return nil
}

func render(answer Answer, format OutputFormat) (string, error) {
	switch format {
	case JSON:
		return renderJSON(answer)
	case Markdown:
		return renderMarkdown(answer), nil
	default:
		return renderText(answer), nil
	}
}

// renderText prints one sentence per line.
func renderText(answer Answer) string {
	var b strings.Builder
	for _, s := range answer.Sentences {
		b.WriteString(s.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func renderMarkdown(answer Answer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", answer.Query)

	b.WriteString("### Files\n\n")
	for i, f := range answer.Files {
		fmt.Fprintf(&b, "%d. `%s` (score %.4f)\n", i+1, f.Name, f.Score)
	}

	b.WriteString("\n### Answer\n\n")
	for _, s := range answer.Sentences {
		fmt.Fprintf(&b, "> %s\n>\n> *%s*\n\n", s.Text, s.File)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderJSON(answer Answer) (string, error) {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode answer: %w", err)
	}
	return string(data) + "\n", nil
}
