package wordcount

import (
	"fmt"
	"strings"
)

// CountOption selects the unit that Count tallies.
type CountOption int

const (
	// Word counts maximal runs of word characters (default)
	Word CountOption = iota
	// Char counts individual Unicode scalar values
	Char
	// Line counts identical lines
	Line
)

// DefaultCountOption is the option used when none is specified.
const DefaultCountOption = Word

// String returns the string representation of the count option.
func (o CountOption) String() string {
	switch o {
	case Word:
		return "word"
	case Char:
		return "char"
	case Line:
		return "line"
	default:
		return "unknown"
	}
}

// ParseCountOption converts a unit name such as "word", "chars" or "Line" into a CountOption.
func ParseCountOption(s string) (CountOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word", "words":
		return Word, nil
	case "char", "chars", "character", "characters":
		return Char, nil
	case "line", "lines":
		return Line, nil
	default:
		return DefaultCountOption, fmt.Errorf("%w: %q", ErrUnknownOption, s)
	}
}

func (o CountOption) valid() bool {
	return o == Word || o == Char || o == Line
}
