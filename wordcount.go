// Package wordcount counts how often each character, word or line occurs in UTF-8 text.
//
// Lines are compared by content, so Line mode reports how many times each distinct line
// appears rather than how many lines there are.
//
// Usage Example:
//
//	freqs, err := wordcount.Count(strings.NewReader("aa bb cc bb"), wordcount.Word)
//	// freqs["bb"] == 2
//
// Input that is not valid UTF-8 fails the whole call: Count returns no mapping and an
// error wrapping ErrInvalidUTF8, and MustCount panics.
package wordcount

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordRegex matches a run of Unicode word characters: letters, marks, decimal and letter
// numbers, connector punctuation and the zero-width joiners. RE2 has no Alphabetic
// property, so the alphabetic symbols outside \p{L} (circled and enclosed Latin letters)
// are listed explicitly.
var wordRegex = regexp.MustCompile(`[\p{L}\p{M}\p{Nd}\p{Nl}\p{Pc}\x{200C}\x{200D}` +
	`\x{24B6}-\x{24E9}\x{1F130}-\x{1F149}\x{1F150}-\x{1F169}\x{1F170}-\x{1F189}]+`)

// Frequencies maps each distinct unit to the number of times it occurred.
type Frequencies map[string]uint64

// Total returns the sum of all counts.
func (f Frequencies) Total() uint64 {
	var total uint64
	for _, n := range f {
		total += n
	}
	return total
}

// Count reads input line by line and tallies the units selected by option.
//
// Line terminators ("\n" or "\r\n") are stripped before counting and are never units
// themselves. On invalid UTF-8, a read failure or an unknown option, Count returns a nil
// map and the error; a partially filled mapping is never returned.
func Count(input io.Reader, option CountOption) (Frequencies, error) {
	if !option.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOption, int(option))
	}

	freqs := make(Frequencies)
	reader := bufio.NewReader(input)

	lineNo := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read line %d: %w", lineNo+1, err)
		}
		if line == "" && err == io.EOF {
			break
		}
		lineNo++

		line = trimTerminator(line)
		if offset := invalidOffset(line); offset >= 0 {
			return nil, &DecodeError{Line: lineNo, Offset: offset}
		}

		switch option {
		case Char:
			for _, r := range line {
				freqs[string(r)]++
			}
		case Word:
			for _, word := range wordRegex.FindAllString(line, -1) {
				freqs[word]++
			}
		case Line:
			freqs[line]++
		}

		if err == io.EOF {
			break
		}
	}

	slog.Debug("Frequencies counted", "option", option, "lines", lineNo, "distinct", len(freqs))
	return freqs, nil
}

// MustCount is like Count but panics if the input cannot be counted.
func MustCount(input io.Reader, option CountOption) Frequencies {
	freqs, err := Count(input, option)
	if err != nil {
		panic("wordcount: Count: " + err.Error())
	}
	return freqs
}

// trimTerminator removes a trailing "\n" and then a "\r" that preceded it.
// A lone "\r" without "\n" is line content.
func trimTerminator(line string) string {
	if !strings.HasSuffix(line, "\n") {
		return line
	}
	line = line[:len(line)-1]
	return strings.TrimSuffix(line, "\r")
}

// invalidOffset returns the byte offset of the first invalid UTF-8 sequence, or -1.
func invalidOffset(s string) int {
	if utf8.ValidString(s) {
		return -1
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
