// Package extract reduces HTML documents to plain text lines so that they can join a corpus
// alongside .txt files.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Options controls which part of an HTML document is kept.
type Options struct {
	Selector   string // CSS selector; when set, only matching elements are kept
	IncludeAll bool   // keep the whole document instead of the readability main content
}

var (
	headingMarker    = regexp.MustCompile(`^#{1,6}\s+`)
	listMarker       = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s+`)
	quoteMarker      = regexp.MustCompile(`^(?:>\s?)+`)
	emphasisDelimits = regexp.MustCompile(`(^|[^\w*])(\*\*|__|\*|_)([^*_\n]+?)(\*\*|__|\*|_)($|[^\w*])`)
)

// ToText extracts text from HTML. Block elements end up on their own lines and
// Markdown markup produced during conversion is stripped.
func ToText(content io.Reader, opts Options) (string, error) {
	var (
		markdown string
		err      error
	)

	switch {
	case opts.Selector != "":
		markdown, err = selectContent(content, opts.Selector)
	case opts.IncludeAll:
		markdown, err = wholeDocument(content)
	default:
		markdown, err = mainContent(content)
	}
	if err != nil {
		return "", err
	}

	return plainText(markdown), nil
}

// mainContent keeps the readability article body
func mainContent(content io.Reader) (string, error) {
	article, err := readability.FromReader(content, &url.URL{})
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}
	return toMarkdown(article.Content)
}

func selectContent(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var parts []string
	selection.Each(func(_ int, s *goquery.Selection) {
		inner, err := s.Html()
		if err != nil {
			return
		}
		tag := goquery.NodeName(s)
		parts = append(parts, fmt.Sprintf("<%s>%s</%s>", tag, inner, tag))
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	return toMarkdown(strings.Join(parts, "\n"))
}

func wholeDocument(content io.Reader) (string, error) {
	raw, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}
	return toMarkdown(string(raw))
}

func toMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return markdown, nil
}

// plainText strips heading, list, quote and emphasis markup line by line and drops
// blank lines.
func plainText(markdown string) string {
	var lines []string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		line = quoteMarker.ReplaceAllString(line, "")
		line = headingMarker.ReplaceAllString(line, "")
		line = listMarker.ReplaceAllString(line, "")
		line = emphasisDelimits.ReplaceAllString(line, "$1$3$5")
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
