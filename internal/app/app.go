// Package app contains the core application logic for the wordcount CLI.
// It handles the counting pipeline separated from CLI concerns.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/chriscorrea/wordcount"
	"github.com/chriscorrea/wordcount/internal/counter"
	"github.com/chriscorrea/wordcount/internal/extract"
	"github.com/chriscorrea/wordcount/internal/fetch"
	"github.com/chriscorrea/wordcount/internal/normalize"
	"github.com/chriscorrea/wordcount/internal/report"
	"github.com/chriscorrea/wordcount/internal/spinner"
)

// Config holds all configuration options for one wordcount run.
type Config struct {
	Sources    []string              // URLs, file paths, or "-" for stdin
	Option     wordcount.CountOption // unit to count
	Top        int                   // report only the n most frequent units (0 = all)
	Format     report.Format         // table/tsv/json
	Normalize  normalize.Options     // case folding, stemming, minimum length
	Tokens     bool                  // also report the size of the counted text in tokens
	Encoding   string                // tiktoken encoding for Tokens
	Selector   string                // CSS selector for HTML sources
	IncludeAll bool                  // count whole HTML documents without readability filtering
	Quiet      bool                  // suppress warnings and the spinner
	Color      bool                  // style table output
	Stderr     io.Writer             // warnings and spinner; os.Stderr when nil
}

// newTokenCounter is replaced in tests to avoid loading encodings
var newTokenCounter = func(encoding string) (counter.Counter, error) {
	return counter.NewTokenCounter(encoding)
}

// Run executes a counting run with the given configuration and returns the rendered report.
//
// Processing Pipeline:
// 1. Open each source (decompressing and extracting HTML text as needed)
// 2. Count units per source and merge the counts
// 3. Normalize, rank and render
//
// A source that cannot be opened is skipped with a warning. A source that is not valid
// UTF-8 fails the whole run: counts over partially decoded text are not reported.
func Run(ctx context.Context, cfg Config) (string, error) {
	if len(cfg.Sources) == 0 {
		return "", fmt.Errorf("no sources provided")
	}
	if err := cfg.Normalize.Validate(); err != nil {
		return "", err
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var tokenCounter counter.Counter
	if cfg.Tokens {
		tc, err := newTokenCounter(cfg.Encoding)
		if err != nil {
			return "", err
		}
		tokenCounter = tc
	}

	var sp *spinner.Spinner
	if !cfg.Quiet && spinner.ShouldAnimate(stderr) {
		sp = spinner.New(ctx, stderr, "Counting...")
		sp.Start()
		defer sp.Stop()
	}

	merged := make(wordcount.Frequencies)
	counted, tokens := 0, 0

	for _, source := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if sp != nil {
			sp.UpdateMessage(fmt.Sprintf("Counting %s", source))
		}

		freqs, sourceTokens, err := countSource(ctx, source, cfg, sp, tokenCounter)
		if err != nil {
			var skip *skipError
			if errors.As(err, &skip) {
				if !cfg.Quiet {
					fmt.Fprintf(stderr, "Warning: failed to process source %q: %v\n", source, skip.err)
				}
				continue
			}
			return "", fmt.Errorf("failed to count %q: %w", source, err)
		}

		for unit, n := range freqs {
			merged[unit] += n
		}
		tokens += sourceTokens
		counted++
	}

	if counted == 0 {
		return "", fmt.Errorf("no content counted from any source")
	}

	if cfg.Normalize.Enabled() {
		normalized, err := normalize.Apply(merged, cfg.Option, cfg.Normalize)
		if err != nil {
			return "", err
		}
		merged = normalized
	}

	rep := report.New(cfg.Option, merged, cfg.Top)
	if tokenCounter != nil {
		rep.Tokens = &report.TokenTotal{Name: tokenCounter.Name(), Count: tokens}
	}

	var out strings.Builder
	if err := report.Render(&out, rep, cfg.Format, report.Options{Color: cfg.Color}); err != nil {
		return "", err
	}
	return out.String(), nil
}

// skipError marks a per-source failure that does not abort the run
type skipError struct {
	err error
}

func (e *skipError) Error() string { return e.err.Error() }
func (e *skipError) Unwrap() error { return e.err }

// countSource opens one source and counts it. Open and extraction failures are returned
// as *skipError; counting failures are returned as-is.
func countSource(ctx context.Context, source string, cfg Config, sp *spinner.Spinner, tc counter.Counter) (wordcount.Frequencies, int, error) {
	src, err := fetch.Open(ctx, source)
	if err != nil {
		return nil, 0, &skipError{err: err}
	}
	defer src.Close()

	var input io.Reader = src
	if sp != nil {
		input = sp.Track(input)
	}

	var text *strings.Builder
	if src.HTML {
		// parse source URL for readability context (if it's a URL)
		var baseURL *url.URL
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			baseURL, _ = url.Parse(source)
		}

		raw, err := io.ReadAll(input)
		if err != nil {
			return nil, 0, &skipError{err: fmt.Errorf("failed to read content: %w", err)}
		}
		// the HTML parsers replace or reinterpret invalid bytes, so reject them first
		if !utf8.Valid(raw) {
			return nil, 0, invalidUTF8(raw)
		}

		extracted, err := extract.ToText(bytes.NewReader(raw), cfg.Selector, cfg.IncludeAll, baseURL)
		if err != nil {
			return nil, 0, &skipError{err: fmt.Errorf("failed to extract content: %w", err)}
		}
		input = strings.NewReader(extracted)
	} else if cfg.Selector != "" {
		slog.Debug("Selector ignored for non-HTML source", "source", source)
	}

	if tc != nil {
		// keep a copy of the counted text for the token total
		text = &strings.Builder{}
		input = io.TeeReader(input, text)
	}

	freqs, err := wordcount.Count(input, cfg.Option)
	if err != nil {
		return nil, 0, err
	}

	tokens := 0
	if tc != nil {
		tokens = tc.Count(text.String())
	}

	slog.Debug("Source counted", "source", src.Name, "html", src.HTML, "distinct", len(freqs), "total", freqs.Total())
	return freqs, tokens, nil
}

// invalidUTF8 locates the first invalid sequence in raw and returns it as the
// *wordcount.DecodeError that counting the same bytes would produce.
func invalidUTF8(raw []byte) error {
	_, err := wordcount.Count(bytes.NewReader(raw), wordcount.Line)
	if err == nil {
		return wordcount.ErrInvalidUTF8
	}
	return err
}
