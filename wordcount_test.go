package wordcount

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func assertFrequencies(t *testing.T, got, want Frequencies) {
	t.Helper()
	if !maps.Equal(got, want) {
		t.Fatalf("frequencies mismatch:\n got: %v\nwant: %v", got, want)
	}
}

func TestCountWord(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Frequencies
	}{
		{"duplicate words", "aa bb cc bb", Frequencies{"aa": 1, "bb": 2, "cc": 1}},
		{"no duplicates", "aa cc dd", Frequencies{"aa": 1, "cc": 1, "dd": 1}},
		{"punctuation separates", "hello, world! hello.", Frequencies{"hello": 2, "world": 1}},
		{"underscore and digits", "snake_case x1 42", Frequencies{"snake_case": 1, "x1": 1, "42": 1}},
		{"hyphen splits", "state-of-the-art", Frequencies{"state": 1, "of": 1, "the": 1, "art": 1}},
		{"unicode letters", "naïve café naïve", Frequencies{"naïve": 2, "café": 1}},
		{"across lines", "aa bb\nbb cc\r\naa", Frequencies{"aa": 2, "bb": 2, "cc": 1}},
		{"case sensitive", "Go go GO", Frequencies{"Go": 1, "go": 1, "GO": 1}},
		{"enclosed letters", "\u24b6bc \U0001f170x \u24e9 \U0001f130\U0001f150", Frequencies{"\u24b6bc": 1, "\U0001f170x": 1, "\u24e9": 1, "\U0001f130\U0001f150": 1}},
		{"symbols next to enclosed letters", "\u24ea\u24b6 \U0001f18a", Frequencies{"\u24b6": 1}},
		{"only separators", " ,.;!? \n\t", Frequencies{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Count(strings.NewReader(tt.input), Word)
			if err != nil {
				t.Fatalf("Count(%q, Word) unexpected error: %v", tt.input, err)
			}
			assertFrequencies(t, got, tt.want)
		})
	}
}

func TestCountChar(t *testing.T) {
	got, err := Count(strings.NewReader("abadracadabra"), Char)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	assertFrequencies(t, got, Frequencies{"a": 6, "b": 2, "c": 1, "d": 2, "r": 2})
}

func TestCountCharUTF8(t *testing.T) {
	input := `
天地玄黃
宇宙洪荒
日月盈昃
辰宿列張
`
	got, err := Count(strings.NewReader(input), Char)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	if len(got) != 16 {
		t.Fatalf("len(Count(...)) = %d, want 16: %v", len(got), got)
	}
	for unit, n := range got {
		if n != 1 {
			t.Errorf("count[%q] = %d, want 1", unit, n)
		}
	}
}

func TestCountCharExcludesTerminators(t *testing.T) {
	got, err := Count(strings.NewReader("a b\r\nb\n"), Char)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	assertFrequencies(t, got, Frequencies{"a": 1, " ": 1, "b": 2})
}

func TestCountLine(t *testing.T) {
	input := `Tokyo, Japan
Kyoto, Japan
Tokyo, Japan
Shanghai, China
`
	got, err := Count(strings.NewReader(input), Line)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	assertFrequencies(t, got, Frequencies{
		"Tokyo, Japan":    2,
		"Kyoto, Japan":    1,
		"Shanghai, China": 1,
	})
}

func TestCountLineTerminators(t *testing.T) {
	want := Frequencies{"aa": 1, "bb": 2, "cc": 1}

	for _, input := range []string{"aa\r\nbb\r\ncc\r\nbb", "aa\nbb\ncc\nbb", "aa\nbb\r\ncc\nbb\n"} {
		got, err := Count(strings.NewReader(input), Line)
		if err != nil {
			t.Fatalf("Count(%q, Line) unexpected error: %v", input, err)
		}
		assertFrequencies(t, got, want)
	}
}

func TestCountLineEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Frequencies
	}{
		{"empty lines are units", "a\n\nb\n\n", Frequencies{"a": 1, "": 2, "b": 1}},
		{"lone carriage return is content", "a\rb\na\rb", Frequencies{"a\rb": 2}},
		{"carriage return at eof is kept", "x\r", Frequencies{"x\r": 1}},
		{"single newline", "\n", Frequencies{"": 1}},
		{"trailing whitespace is significant", "a \na", Frequencies{"a ": 1, "a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Count(strings.NewReader(tt.input), Line)
			if err != nil {
				t.Fatalf("Count(%q, Line) unexpected error: %v", tt.input, err)
			}
			assertFrequencies(t, got, tt.want)
		})
	}
}

func TestCountEmptyInput(t *testing.T) {
	for _, option := range []CountOption{Word, Char, Line} {
		t.Run(option.String(), func(t *testing.T) {
			got, err := Count(strings.NewReader(""), option)
			if err != nil {
				t.Fatalf("Count(\"\", %v) unexpected error: %v", option, err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("Count(\"\", %v) = %v, want empty non-nil map", option, got)
			}
		})
	}
}

func TestCountLongLine(t *testing.T) {
	line := strings.Repeat("ab ", 100_000)
	got, err := Count(strings.NewReader(line), Word)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	assertFrequencies(t, got, Frequencies{"ab": 100_000})
}

func TestCountInvalidUTF8(t *testing.T) {
	input := []byte{
		'a',
		0xf0, 0x90, 0x80, // truncated four-byte sequence
		0xe3, 0x81, 0x82, // あ
	}

	for _, option := range []CountOption{Word, Char, Line} {
		t.Run(option.String(), func(t *testing.T) {
			got, err := Count(bytes.NewReader(input), option)
			if err == nil {
				t.Fatalf("Count(%v) expected error, got %v", option, got)
			}
			if got != nil {
				t.Errorf("Count(%v) returned partial map %v", option, got)
			}
			if !errors.Is(err, ErrInvalidUTF8) {
				t.Errorf("Count(%v) error = %v, want ErrInvalidUTF8", option, err)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Count(%v) error type = %T, want *DecodeError", option, err)
			}
			if decodeErr.Line != 1 || decodeErr.Offset != 1 {
				t.Errorf("DecodeError = line %d offset %d, want line 1 offset 1", decodeErr.Line, decodeErr.Offset)
			}
		})
	}
}

func TestCountInvalidUTF8AfterValidLines(t *testing.T) {
	input := append([]byte("good line\nanother\n"), 0xff, '\n')

	got, err := Count(bytes.NewReader(input), Line)
	if got != nil {
		t.Errorf("Count returned partial map %v", got)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Count error = %v, want *DecodeError", err)
	}
	if decodeErr.Line != 3 {
		t.Errorf("DecodeError.Line = %d, want 3", decodeErr.Line)
	}
}

func TestCountReplacementCharacterIsValid(t *testing.T) {
	got, err := Count(strings.NewReader("\uFFFD\uFFFD"), Char)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	assertFrequencies(t, got, Frequencies{"\uFFFD": 2})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestCountReadError(t *testing.T) {
	got, err := Count(io.MultiReader(strings.NewReader("aa\n"), failingReader{}), Word)
	if err == nil {
		t.Fatal("Count expected error from failing reader")
	}
	if got != nil {
		t.Errorf("Count returned partial map %v", got)
	}
	if errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("read error should not wrap ErrInvalidUTF8: %v", err)
	}
}

func TestCountUnknownOption(t *testing.T) {
	_, err := Count(strings.NewReader("aa"), CountOption(42))
	if !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Count(CountOption(42)) error = %v, want ErrUnknownOption", err)
	}
}

func TestMustCount(t *testing.T) {
	got := MustCount(strings.NewReader("aa bb cc bb"), DefaultCountOption)
	assertFrequencies(t, got, Frequencies{"aa": 1, "bb": 2, "cc": 1})

	defer func() {
		if recover() == nil {
			t.Error("MustCount did not panic on invalid UTF-8")
		}
	}()
	MustCount(bytes.NewReader([]byte{'a', 0xf0, 0x90, 0x80, 0xe3, 0x81, 0x82}), Word)
}

func TestCountTotals(t *testing.T) {
	input := "The quick brown fox\r\njumps over the lazy dog.\n\nThe end, the END\n日本語 テキスト"
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")

	var wantWords, wantChars uint64
	for _, line := range lines {
		wantWords += uint64(len(wordRegex.FindAllString(line, -1)))
		wantChars += uint64(utf8.RuneCountInString(line))
	}

	tests := []struct {
		option CountOption
		want   uint64
	}{
		{Word, wantWords},
		{Char, wantChars},
		{Line, uint64(len(lines))},
	}

	for _, tt := range tests {
		t.Run(tt.option.String(), func(t *testing.T) {
			got := MustCount(strings.NewReader(input), tt.option)
			if got.Total() != tt.want {
				t.Errorf("Total() = %d, want %d", got.Total(), tt.want)
			}
		})
	}
}

func TestCountDeterministic(t *testing.T) {
	input := "one two three two one\nfour one"
	for _, option := range []CountOption{Word, Char, Line} {
		first := MustCount(strings.NewReader(input), option)
		second := MustCount(strings.NewReader(input), option)
		if !maps.Equal(first, second) {
			t.Errorf("Count(%v) not deterministic: %v vs %v", option, first, second)
		}
	}
}

func TestCountFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(path, []byte("message\nmessage"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open temp file: %v", err)
	}
	defer f.Close()

	got, err := Count(f, Line)
	if err != nil {
		t.Fatalf("Count unexpected error: %v", err)
	}
	assertFrequencies(t, got, Frequencies{"message": 2})
}

func BenchmarkCountWord(b *testing.B) {
	input := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Count(strings.NewReader(input), Word); err != nil {
			b.Fatal(err)
		}
	}
}
