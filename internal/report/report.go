// Package report ranks frequencies and renders them as a table, TSV or JSON.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/chriscorrea/wordcount"
	"github.com/mattn/go-runewidth"
)

// Format defines the output format for reports
type Format int

const (
	// aligned table (default)
	Table Format = iota
	// tab-separated count and unit
	TSV
	// JSON document
	JSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case Table:
		return "Table"
	case TSV:
		return "TSV"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ParseFormat converts "table", "tsv" or "json" into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return Table, nil
	case "tsv", "text":
		return TSV, nil
	case "json":
		return JSON, nil
	default:
		return Table, fmt.Errorf("unknown output format %q", s)
	}
}

// Entry is one counted unit.
type Entry struct {
	Unit  string
	Count uint64
}

// TokenTotal is the size of the counted text in model tokens.
type TokenTotal struct {
	Name  string // e.g. "tokens (cl100k_base)"
	Count int
}

// Report is everything needed to render one run.
type Report struct {
	Option   wordcount.CountOption
	Entries  []Entry // ranked, possibly truncated
	Total    uint64  // sum of all counts before truncation
	Distinct int     // number of distinct units before truncation
	Tokens   *TokenTotal
}

// Rank orders frequencies by count (highest first), breaking ties by unit so that
// output is deterministic.
func Rank(freqs wordcount.Frequencies) []Entry {
	entries := make([]Entry, 0, len(freqs))
	for unit, n := range freqs {
		entries = append(entries, Entry{Unit: unit, Count: n})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Unit, b.Unit)
	})
	return entries
}

// Top returns at most n entries; n <= 0 keeps all of them.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// New builds a report from frequencies, keeping the top n units.
func New(option wordcount.CountOption, freqs wordcount.Frequencies, n int) Report {
	return Report{
		Option:   option,
		Entries:  Top(Rank(freqs), n),
		Total:    freqs.Total(),
		Distinct: len(freqs),
	}
}

// Options controls rendering.
type Options struct {
	Color bool // style the table header; only for terminals
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Render writes the report to w in the given format.
func Render(w io.Writer, r Report, format Format, opts Options) error {
	switch format {
	case Table:
		return renderTable(w, r, opts)
	case TSV:
		return renderTSV(w, r)
	case JSON:
		return renderJSON(w, r)
	default:
		return fmt.Errorf("unsupported output format %v", format)
	}
}

func renderTable(w io.Writer, r Report, opts Options) error {
	headers := []string{"COUNT", "SHARE", strings.ToUpper(r.Option.String())}
	rows := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, []string{
			strconv.FormatUint(e.Count, 10),
			share(e.Count, r.Total),
			DisplayUnit(e.Unit),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	header := formatRow(headers, widths)
	if opts.Color {
		header = headerStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(formatRow(row, widths))
		b.WriteByte('\n')
	}

	footer := fmt.Sprintf("%d %ss, %d distinct", r.Total, r.Option, r.Distinct)
	if r.Tokens != nil {
		footer += fmt.Sprintf(", %d %s", r.Tokens.Count, r.Tokens.Name)
	}
	if opts.Color {
		footer = footerStyle.Render(footer)
	}
	b.WriteString(footer)
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// formatRow right-aligns the numeric columns and leaves the unit column unpadded
func formatRow(row []string, widths []int) string {
	var b strings.Builder
	last := len(row) - 1
	for i, cell := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == last {
			b.WriteString(cell)
			continue
		}
		b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		b.WriteString(cell)
	}
	return b.String()
}

func share(n, total uint64) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64) + "%"
}

func renderTSV(w io.Writer, r Report) error {
	var b strings.Builder
	for _, e := range r.Entries {
		b.WriteString(strconv.FormatUint(e.Count, 10))
		b.WriteByte('\t')
		b.WriteString(DisplayUnit(e.Unit))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type jsonEntry struct {
	Unit  string `json:"unit"`
	Count uint64 `json:"count"`
}

type jsonTokens struct {
	Encoding string `json:"encoding"`
	Count    int    `json:"count"`
}

type jsonReport struct {
	Option   string      `json:"option"`
	Total    uint64      `json:"total"`
	Distinct int         `json:"distinct"`
	Tokens   *jsonTokens `json:"tokens,omitempty"`
	Counts   []jsonEntry `json:"counts"`
}

func renderJSON(w io.Writer, r Report) error {
	out := jsonReport{
		Option:   r.Option.String(),
		Total:    r.Total,
		Distinct: r.Distinct,
		Counts:   make([]jsonEntry, 0, len(r.Entries)),
	}
	if r.Tokens != nil {
		out.Tokens = &jsonTokens{Encoding: r.Tokens.Name, Count: r.Tokens.Count}
	}
	for _, e := range r.Entries {
		out.Counts = append(out.Counts, jsonEntry{Unit: e.Unit, Count: e.Count})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// DisplayUnit returns unit as-is when it is visible text, and Go-quoted when it is empty,
// contains whitespace other than inner spaces, or contains non-printable characters.
func DisplayUnit(unit string) string {
	if unit == "" || strings.TrimSpace(unit) != unit {
		return strconv.Quote(unit)
	}
	for _, r := range unit {
		if r != ' ' && !unicode.IsGraphic(r) {
			return strconv.Quote(unit)
		}
	}
	return unit
}
