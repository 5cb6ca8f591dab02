package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chriscorrea/ask/internal/corpus"
)

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"python.txt": "Python is a programming language.\nPython was created by Guido van Rossum.",
		"cats.txt":   "Cats are small carnivorous mammals.\nCats sleep most of the day.",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestOutputFormatString(t *testing.T) {
	tests := []struct {
		format   OutputFormat
		expected string
	}{
		{Text, "Text"},
		{Markdown, "Markdown"},
		{JSON, "JSON"},
		{OutputFormat(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.expected {
			t.Errorf("OutputFormat(%d).String() = %q, want %q", tt.format, got, tt.expected)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    OutputFormat
		wantErr bool
	}{
		{"", Text, false},
		{"text", Text, false},
		{"MD", Markdown, false},
		{"markdown", Markdown, false},
		{"json", JSON, false},
		{"xml", Text, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	dir := writeCorpus(t)

	tests := []struct {
		name     string
		query    string
		input    string
		expected string
	}{
		{
			name:     "query from config",
			query:    "Who created Python?",
			expected: "Python was created by Guido van Rossum.\n",
		},
		{
			name:     "query read from input",
			input:    "Who created Python?\n",
			expected: "Python was created by Guido van Rossum.\n",
		},
		{
			name:     "input without trailing newline",
			input:    "How long do cats sleep?",
			expected: "Cats sleep most of the day.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				CorpusDir: dir,
				Query:     tt.query,
				Quiet:     true,
			}

			got, err := Run(context.Background(), cfg, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Run() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRunSentenceMatches(t *testing.T) {
	dir := writeCorpus(t)

	cfg := Config{
		CorpusDir:       dir,
		Query:           "Who created Python?",
		SentenceMatches: 5,
		Quiet:           true,
	}

	got, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	// capped to the two sentences of python.txt, best first
	expected := "Python was created by Guido van Rossum.\nPython is a programming language.\n"
	if got != expected {
		t.Errorf("Run() = %q, want %q", got, expected)
	}
}

func TestRunJSON(t *testing.T) {
	dir := writeCorpus(t)

	cfg := Config{
		CorpusDir:    dir,
		Query:        "Who created Python?",
		OutputFormat: JSON,
		Quiet:        true,
	}

	got, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	var answer Answer
	if err := json.Unmarshal([]byte(got), &answer); err != nil {
		t.Fatalf("Run() output is not valid JSON: %v\n%s", err, got)
	}

	if answer.RunID == "" {
		t.Error("expected a run id")
	}
	if strings.Join(answer.Terms, ",") != "created,python" {
		t.Errorf("terms = %v, want [created python]", answer.Terms)
	}
	if len(answer.Files) != 1 || answer.Files[0].Name != "python.txt" {
		t.Fatalf("files = %+v, want python.txt only", answer.Files)
	}
	if answer.Files[0].Path != filepath.Join(dir, "python.txt") || answer.Files[0].Score <= 0 {
		t.Errorf("file match = %+v", answer.Files[0])
	}
	if len(answer.Sentences) != 1 {
		t.Fatalf("sentences = %+v, want one", answer.Sentences)
	}

	s := answer.Sentences[0]
	if s.Text != "Python was created by Guido van Rossum." || s.File != "python.txt" {
		t.Errorf("sentence = %+v", s)
	}
	if s.Words != 7 || s.Characters != 39 {
		t.Errorf("words/characters = %d/%d, want 7/39", s.Words, s.Characters)
	}
	if s.IDFSum <= 0 || s.Density <= 0 {
		t.Errorf("scores = %v/%v, want positive", s.IDFSum, s.Density)
	}
}

func TestRunMarkdown(t *testing.T) {
	dir := writeCorpus(t)

	cfg := Config{
		CorpusDir:    dir,
		Query:        "Who created Python?",
		OutputFormat: Markdown,
		Quiet:        true,
	}

	got, err := Run(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	for _, want := range []string{
		"## Who created Python?",
		"1. `python.txt`",
		"> Python was created by Guido van Rossum.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Run() markdown missing %q:\n%s", want, got)
		}
	}
}

func TestRunErrors(t *testing.T) {
	dir := writeCorpus(t)

	blank := t.TempDir()
	if err := os.WriteFile(filepath.Join(blank, "blank.txt"), []byte("the and of\n\n"), 0o644); err != nil {
		t.Fatalf("failed to write blank.txt: %v", err)
	}

	tests := []struct {
		name    string
		cfg     Config
		input   string
		wantErr error
		errText string
	}{
		{
			name:    "no corpus directory",
			cfg:     Config{Query: "python"},
			errText: "no corpus directory",
		},
		{
			name:    "missing corpus directory",
			cfg:     Config{CorpusDir: filepath.Join(dir, "missing"), Query: "python"},
			errText: "does not exist",
		},
		{
			name:    "no documents",
			cfg:     Config{CorpusDir: dir, Query: "python", Extensions: []string{".md"}},
			wantErr: corpus.ErrNoDocuments,
		},
		{
			name:    "empty input",
			cfg:     Config{CorpusDir: dir},
			wantErr: ErrNoQuery,
		},
		{
			name:    "blank input line",
			cfg:     Config{CorpusDir: dir},
			input:   "   \n",
			wantErr: ErrNoQuery,
		},
		{
			name:    "only stopword sentences",
			cfg:     Config{CorpusDir: blank, Query: "python"},
			wantErr: ErrNoSentences,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Quiet = true
			_, err := Run(context.Background(), tt.cfg, strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Run() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Run() error = %q, want it to mention %q", err, tt.errText)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	dir := writeCorpus(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{CorpusDir: dir, Query: "python", Quiet: true}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestReadQuery(t *testing.T) {
	var prompt strings.Builder
	got, err := readQuery(strings.NewReader("  what is go?  \nignored line\n"), &prompt)
	if err != nil {
		t.Fatalf("readQuery() unexpected error: %v", err)
	}
	if got != "what is go?" {
		t.Errorf("readQuery() = %q, want %q", got, "what is go?")
	}
	if prompt.String() != "Query: " {
		t.Errorf("prompt = %q, want %q", prompt.String(), "Query: ")
	}

	if _, err := readQuery(nil, &prompt); !errors.Is(err, ErrNoQuery) {
		t.Errorf("readQuery(nil) error = %v, want ErrNoQuery", err)
	}
}

func TestMeasureSkipsTokensOutsideJSON(t *testing.T) {
	for _, format := range []OutputFormat{Text, Markdown} {
		t.Run(format.String(), func(t *testing.T) {
			sentences := []SentenceMatch{{Text: "Cats sleep most of the day."}}
			if err := measure(sentences, format); err != nil {
				t.Fatalf("measure() unexpected error: %v", err)
			}

			got := sentences[0]
			if got.Words != 6 || got.Characters != 27 {
				t.Errorf("words/characters = %d/%d, want 6/27", got.Words, got.Characters)
			}
			if got.Tokens != 0 {
				t.Errorf("tokens = %d, want 0 outside JSON output", got.Tokens)
			}
		})
	}
}

// TestRunTextWithoutNetwork routes any HTTP traffic to a listener that never answers.
// A text answer comes from local files only, so Run must finish without connecting.
func TestRunTextWithoutNetwork(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	var connections atomic.Int32
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			connections.Add(1)
			go func() {
				// hold the connection open without replying
				_, _ = io.Copy(io.Discard, conn)
				conn.Close()
			}()
		}
	}()

	proxy := "http://" + listener.Addr().String()
	t.Setenv("HTTPS_PROXY", proxy)
	t.Setenv("HTTP_PROXY", proxy)

	dir := writeCorpus(t)
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := Run(context.Background(), Config{CorpusDir: dir, Query: "How long do cats sleep?", Quiet: true}, nil)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Run() unexpected error: %v", r.err)
		}
		if r.out != "Cats sleep most of the day.\n" {
			t.Errorf("Run() = %q", r.out)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run() still blocked after 5s; connections attempted: %d", connections.Load())
	}

	if n := connections.Load(); n != 0 {
		t.Errorf("Run() made %d network connections, want 0", n)
	}
}
