// Package normalize merges counted units that should be treated as the same unit.
//
// Counting itself is exact: "Heron" and "herons" are different words. This package applies
// the optional post-processing steps offered by the CLI: case folding, stemming and a
// minimum unit length. Keys that become equal are merged by summing their counts.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/chriscorrea/wordcount"
	"github.com/kljensen/snowball"
)

// DefaultLanguage is the stemming language used when none is configured.
const DefaultLanguage = "english"

// supportedLanguages are the languages the snowball stemmers handle
var supportedLanguages = map[string]struct{}{
	"english":   {},
	"french":    {},
	"hungarian": {},
	"norwegian": {},
	"russian":   {},
	"spanish":   {},
	"swedish":   {},
}

// Options selects the normalization steps to apply.
type Options struct {
	FoldCase  bool   // lower-case every unit
	Stem      bool   // reduce words to their stem; only meaningful for word counts
	Language  string // snowball stemmer language (default: english)
	MinLength int    // drop units shorter than this many runes (0 keeps everything)
}

// Enabled reports whether any step would change the frequencies.
func (o Options) Enabled() bool {
	return o.FoldCase || o.Stem || o.MinLength > 0
}

// Validate checks the options before any counting happens.
func (o Options) Validate() error {
	if o.MinLength < 0 {
		return fmt.Errorf("minimum length must not be negative: %d", o.MinLength)
	}
	if o.Stem {
		if _, ok := supportedLanguages[o.language()]; !ok {
			return fmt.Errorf("unsupported stemming language %q", o.Language)
		}
	}
	return nil
}

func (o Options) language() string {
	if o.Language == "" {
		return DefaultLanguage
	}
	return strings.ToLower(o.Language)
}

// Apply returns a new mapping with the selected steps applied; freqs is left untouched.
// Stemming only runs for word counts: stemming a character or a whole line is meaningless.
func Apply(freqs wordcount.Frequencies, option wordcount.CountOption, opts Options) (wordcount.Frequencies, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	stem := opts.Stem && option == wordcount.Word
	result := make(wordcount.Frequencies, len(freqs))

	for unit, n := range freqs {
		key := unit
		if opts.FoldCase {
			key = strings.ToLower(key)
		}
		if stem {
			stemmed, err := snowball.Stem(key, opts.language(), true)
			if err != nil {
				return nil, fmt.Errorf("failed to stem %q: %w", key, err)
			}
			// snowball lower-cases its output; keep the original when it yields nothing
			if stemmed != "" {
				key = stemmed
			}
		}
		if opts.MinLength > 0 && utf8.RuneCountInString(key) < opts.MinLength {
			continue
		}
		result[key] += n
	}

	slog.Debug("Frequencies normalized", "before", len(freqs), "after", len(result), "foldCase", opts.FoldCase, "stem", stem)
	return result, nil
}
