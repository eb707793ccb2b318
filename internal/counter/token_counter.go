// Package counter measures counted text in model tokens.
//
// wordcount reports how many of each unit a source contains; the token total next to it
// tells how large the same text is for an LLM context window. Tokens are counted with
// tiktoken, using cl100k_base unless another encoding is configured.
package counter

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Counter counts the size of a text in some unit.
type Counter interface {
	// Count returns the number of units in text.
	Count(text string) int

	// Name returns a human-readable name for the unit (for reports and logging)
	Name() string
}

// TokenCounter implements Counter using a tiktoken encoding.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
	mu       sync.RWMutex
}

// NewTokenCounter loads the named tiktoken encoding; an empty name selects DefaultEncoding.
func NewTokenCounter(encodingName string) (*TokenCounter, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	slog.Debug("Initializing TokenCounter", "encoding", encodingName)

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s encoding: %w", encodingName, err)
	}

	return &TokenCounter{encoding: encoding, name: encodingName}, nil
}

// Count returns the number of tokens in text. Safe for concurrent use.
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()

	// nil allowed/disallowed special tokens: special token text is counted as plain text
	tokenCount := len(tc.encoding.Encode(text, nil, nil))

	slog.Debug("Token count calculated", "textLength", len(text), "tokenCount", tokenCount)
	return tokenCount
}

// Name returns the unit name including the encoding.
func (tc *TokenCounter) Name() string {
	return fmt.Sprintf("tokens (%s)", tc.name)
}
