package wordcount

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUTF8 is wrapped by every error caused by input that does not decode as UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8 input")

	// ErrUnknownOption is returned for a CountOption outside Word, Char and Line.
	ErrUnknownOption = errors.New("unknown count option")
)

// DecodeError reports the first line of the input that is not valid UTF-8.
type DecodeError struct {
	Line   int // 1-based line number
	Offset int // byte offset of the first invalid sequence within the line
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d, byte %d: %v", e.Line, e.Offset, ErrInvalidUTF8)
}

// Unwrap lets errors.Is match ErrInvalidUTF8.
func (e *DecodeError) Unwrap() error {
	return ErrInvalidUTF8
}
