// Package counter measures answer text in words, characters or model tokens.
//
// Usage Example:
//
//	c, err := counter.NewCounter(counter.Tokens)
//	n := c.Count("Hello, world!")
package counter

import (
	"strings"
	"unicode/utf8"
)

// Counter counts units of text.
type Counter interface {
	// Count returns the number of units in text.
	Count(text string) int

	// Name returns a human-readable name for the unit (for logging and output).
	Name() string
}

// CountingMethod selects a Counter implementation.
type CountingMethod int

const (
	// Tokens counts tiktoken cl100k_base tokens
	Tokens CountingMethod = iota
	// Words counts whitespace-separated words
	Words
	// Characters counts runes
	Characters
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// NewCounter returns the Counter for method, falling back to Tokens for unknown methods.
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Words:
		return wordCounter{}, nil
	case Characters:
		return charCounter{}, nil
	default:
		return NewTokenCounter()
	}
}

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }
func (wordCounter) Name() string          { return "words" }

type charCounter struct{}

func (charCounter) Count(text string) int { return utf8.RuneCountInString(text) }
func (charCounter) Name() string          { return "characters" }
