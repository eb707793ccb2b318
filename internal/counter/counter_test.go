package counter

import (
	"testing"
)

func TestTokenCounter(t *testing.T) {
	counter, err := NewTokenCounter("")
	if err != nil {
		t.Fatalf("Failed to create TokenCounter: %v", err)
	}

	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"simple text", "hello world"},
		{"punctuation", "Hello, world!"},
		{"cjk", "天地玄黃"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := counter.Count(tt.text)
			// exact token counts vary with encoding versions; only check the sign
			if tt.text == "" {
				if result != 0 {
					t.Errorf("TokenCounter.Count(%q) = %d, want 0 for empty string", tt.text, result)
				}
			} else if result <= 0 {
				t.Errorf("TokenCounter.Count(%q) = %d, want positive number for non-empty text", tt.text, result)
			}
		})
	}

	if counter.Name() != "tokens (cl100k_base)" {
		t.Errorf("TokenCounter.Name() = %q, want %q", counter.Name(), "tokens (cl100k_base)")
	}
}

func TestTokenCounterGrowsWithText(t *testing.T) {
	counter, err := NewTokenCounter(DefaultEncoding)
	if err != nil {
		t.Fatalf("Failed to create TokenCounter: %v", err)
	}

	short := counter.Count("the quick brown fox")
	long := counter.Count("the quick brown fox jumps over the lazy dog, again and again")
	if long <= short {
		t.Errorf("Count(long) = %d, want more than Count(short) = %d", long, short)
	}
}

func TestNewTokenCounterUnknownEncoding(t *testing.T) {
	if _, err := NewTokenCounter("no_such_encoding"); err == nil {
		t.Error("NewTokenCounter(\"no_such_encoding\") expected error, got nil")
	}
}

func TestTokenCounterImplementsCounter(t *testing.T) {
	var _ Counter = (*TokenCounter)(nil)
}
