// Package corpus loads the documents of a corpus directory and turns them into token
// sequences keyed by file name.
package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/ask/internal/extract"
	"github.com/chriscorrea/ask/internal/tokenize"
)

// MaxFileSizeBytes caps the size of a single corpus document.
const MaxFileSizeBytes = 50 * 1024 * 1024

// ErrNoDocuments is returned when a directory holds no document with an accepted extension.
var ErrNoDocuments = errors.New("no documents found")

// DefaultExtensions are the file extensions loaded when Options.Extensions is empty.
var DefaultExtensions = []string{".txt"}

// Document is one corpus file.
type Document struct {
	Name string // file name, used as the document identifier
	Path string
	Text string
}

// Options configures Load.
type Options struct {
	Extensions  []string        // accepted extensions, e.g. ".txt", ".md", ".html"
	HTML        extract.Options // applied to .html and .htm documents
	MaxFileSize int64           // per-file limit in bytes (default MaxFileSizeBytes)
}

// Load reads every regular file in dir whose extension is accepted, sorted by name.
// Subdirectories are not descended into. HTML documents are reduced to text.
func Load(ctx context.Context, dir string, opts Options) ([]Document, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("corpus directory %q does not exist", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access corpus directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus directory %q: %w", dir, err)
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = MaxFileSizeBytes
	}

	var docs []Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !accepts(extensions, ext) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		text, ok, err := readDocument(path, ext, maxSize, opts.HTML)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		docs = append(docs, Document{Name: entry.Name(), Path: path, Text: text})
		slog.Debug("Loaded document", "name", entry.Name(), "textLength", len(text))
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %q (extensions %v)", ErrNoDocuments, dir, extensions)
	}
	return docs, nil
}

// readDocument returns the text of a corpus file. ok is false for paths that are not
// regular files, such as directories named like documents.
func readDocument(path, ext string, maxSize int64, htmlOpts extract.Options) (text string, ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", false, nil
	}
	if info.Size() > maxSize {
		return "", false, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit)", path, info.Size(), maxSize)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	if ext == ".html" || ext == ".htm" {
		text, err := extract.ToText(bytes.NewReader(raw), htmlOpts)
		if err != nil {
			return "", false, fmt.Errorf("failed to extract text from %q: %w", path, err)
		}
		return text, true, nil
	}

	return string(raw), true, nil
}

func accepts(extensions []string, ext string) bool {
	return slices.ContainsFunc(extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// Tokenize tokenizes every document with at most concurrency documents in flight and
// returns the token sequences keyed by document name.
func Tokenize(ctx context.Context, docs []Document, tok tokenize.Tokenizer, concurrency int) (map[string][]string, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([][]string, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tokens, err := tok.Tokenize(doc.Text)
			if err != nil {
				return fmt.Errorf("failed to tokenize %q: %w", doc.Name, err)
			}
			results[i] = tokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tokens := make(map[string][]string, len(docs))
	for i, doc := range docs {
		tokens[doc.Name] = results[i]
	}

	slog.Debug("Corpus tokenized", "documents", len(docs), "concurrency", concurrency)
	return tokens, nil
}
