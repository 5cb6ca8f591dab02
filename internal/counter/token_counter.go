package counter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the tiktoken encoding answers are measured in.
const encodingName = "cl100k_base"

// TokenCounter counts model tokens in answer sentences.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

// sharedTokenCounter loads the encoding at most once per process. Loading may download
// the BPE ranks, so a failure is remembered rather than retried for every answer.
var sharedTokenCounter = sync.OnceValues(func() (Counter, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s encoding: %w", encodingName, err)
	}
	slog.Debug("Token encoding loaded", "encoding", encodingName)
	return &TokenCounter{encoding: encoding}, nil
})

// NewTokenCounter returns the process-wide token counter, loading its encoding on first use.
func NewTokenCounter() (Counter, error) {
	return sharedTokenCounter()
}

// Count returns the number of tokens in text. Safe for concurrent use.
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.encoding.Encode(text, nil, nil))
}

// Name returns the unit name.
func (tc *TokenCounter) Name() string {
	return "tokens (" + encodingName + ")"
}
