package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/chriscorrea/wordcount"
	"github.com/chriscorrea/wordcount/internal/app"
	"github.com/chriscorrea/wordcount/internal/config"
	"github.com/chriscorrea/wordcount/internal/normalize"
	"github.com/chriscorrea/wordcount/internal/report"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// buildConfig constructs an app.Config from the config file, command flags and arguments.
// Flags that were set explicitly override the file; the file overrides built-in defaults.
func buildConfig(cmd *cobra.Command, args []string, file config.FileConfig) (app.Config, error) {
	flags := cmd.Flags()

	// determine the counting unit
	option := wordcount.DefaultCountOption
	if file.Count.Unit != nil {
		parsed, err := wordcount.ParseCountOption(*file.Count.Unit)
		if err != nil {
			return app.Config{}, fmt.Errorf("config: %w", err)
		}
		option = parsed
	}
	charFlag, _ := flags.GetBool("char")
	wordFlag, _ := flags.GetBool("word")
	lineFlag, _ := flags.GetBool("line")
	switch {
	case charFlag:
		option = wordcount.Char
	case lineFlag:
		option = wordcount.Line
	case wordFlag:
		option = wordcount.Word
	}

	// determine output format
	format := report.Table
	if file.Output.Format != nil {
		parsed, err := report.ParseFormat(*file.Output.Format)
		if err != nil {
			return app.Config{}, fmt.Errorf("config: %w", err)
		}
		format = parsed
	}
	tableFlag, _ := flags.GetBool("table")
	tsvFlag, _ := flags.GetBool("tsv")
	jsonFlag, _ := flags.GetBool("json")
	switch {
	case jsonFlag:
		format = report.JSON
	case tsvFlag:
		format = report.TSV
	case tableFlag:
		format = report.Table
	}

	top := intSetting(cmd, "top", file.Count.Top)
	if top < 0 {
		return app.Config{}, fmt.Errorf("--top must not be negative: %d", top)
	}

	norm := normalize.Options{
		FoldCase:  boolSetting(cmd, "ignore-case", file.Count.IgnoreCase),
		Stem:      boolSetting(cmd, "stem", file.Count.Stem),
		Language:  stringSetting(cmd, "language", file.Count.Language),
		MinLength: intSetting(cmd, "min-length", file.Count.MinLength),
	}
	if err := norm.Validate(); err != nil {
		return app.Config{}, err
	}

	selector, _ := flags.GetString("selector")
	includeAll, _ := flags.GetBool("include-all")
	quiet, _ := flags.GetBool("quiet")

	// no arguments provided - use stdin
	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	return app.Config{
		Sources:    sources,
		Option:     option,
		Top:        top,
		Format:     format,
		Normalize:  norm,
		Tokens:     boolSetting(cmd, "tokens", file.Output.Tokens),
		Encoding:   stringSetting(cmd, "encoding", file.Output.Encoding),
		Selector:   selector,
		IncludeAll: includeAll,
		Quiet:      quiet,
		Color:      colorEnabled(os.Stdout),
	}, nil
}

func boolSetting(cmd *cobra.Command, name string, fromFile *bool) bool {
	v, _ := cmd.Flags().GetBool(name)
	if !cmd.Flags().Changed(name) && fromFile != nil {
		return *fromFile
	}
	return v
}

func intSetting(cmd *cobra.Command, name string, fromFile *int) int {
	v, _ := cmd.Flags().GetInt(name)
	if !cmd.Flags().Changed(name) && fromFile != nil {
		return *fromFile
	}
	return v
}

func stringSetting(cmd *cobra.Command, name string, fromFile *string) string {
	v, _ := cmd.Flags().GetString(name)
	if !cmd.Flags().Changed(name) && fromFile != nil {
		return *fromFile
	}
	return v
}

// colorEnabled reports whether table output to f may be styled
func colorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}

	w := os.Stderr
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordcount [sources...]",
		Short: "Count characters, words or lines in text",
		Long: `wordcount reports how often each character, word or line occurs in its input. Sources may include local files (optionally .gz, .zst or .xz compressed), URLs, or standard input.

Examples:
  wordcount notes.txt
  wordcount --line --top 10 access.log.gz
  wordcount --ignore-case --stem https://example.com/article
  cat content.txt | wordcount --char --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			setupLogger(debug)

			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.DefaultPath()
			}
			file, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			slog.Debug("Config loaded", "path", configPath)

			cfg, err := buildConfig(cmd, args, file)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			// create context with signal handling for graceful shutdown
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			result, err := app.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("wordcount failed: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags := cmd.Flags()

	// unit flags
	flags.BoolP("char", "c", false, "Count characters (Unicode code points)")
	flags.BoolP("word", "w", false, "Count words (default)")
	flags.BoolP("line", "l", false, "Count identical lines")
	cmd.MarkFlagsMutuallyExclusive("char", "word", "line")

	// normalization
	flags.BoolP("ignore-case", "i", false, "Merge units that differ only in case")
	flags.Bool("stem", false, "Merge words with the same stem (stemmed words are always lower-cased)")
	flags.String("language", normalize.DefaultLanguage, "Stemming language")
	flags.Int("min-length", 0, "Drop units shorter than this many characters")

	// output
	flags.IntP("top", "n", 0, "Show only the N most frequent units (default: all)")
	flags.Bool("table", false, "Output an aligned table (default)")
	flags.Bool("tsv", false, "Output tab-separated count and unit")
	flags.Bool("json", false, "Output JSON")
	cmd.MarkFlagsMutuallyExclusive("table", "tsv", "json")
	flags.Bool("tokens", false, "Also report the size of the counted text in tokens")
	flags.String("encoding", "", "tiktoken encoding for --tokens (default: cl100k_base)")

	// HTML sources
	flags.StringP("selector", "s", "", "CSS selector for HTML sources")
	flags.Bool("include-all", false, "Count whole HTML documents without readability filtering")

	// other flags
	flags.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/wordcount/config.toml)")
	flags.BoolP("quiet", "q", false, "Suppress warnings and progress output")
	flags.BoolP("debug", "D", false, "Enable debug logging")
	_ = flags.MarkHidden("debug")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
