// Package extract turns HTML sources into countable text.
// Output is Markdown with link targets and images removed, so that URLs and image
// paths do not show up as words.
package extract

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ToText extracts the text to be counted from an HTML document.
//
// Parameters:
//   - content: io.Reader containing HTML content
//   - selector: optional CSS selector; when set only matching elements are kept
//   - includeAll: if true, skips readability extraction and converts the whole document
//   - baseURL: optional URL for context during readability extraction (can be nil)
func ToText(content io.Reader, selector string, includeAll bool, baseURL *url.URL) (string, error) {
	// a selector overrides includeAll
	if selector != "" {
		return extractWithSelector(content, selector)
	}

	if includeAll {
		htmlBytes, err := io.ReadAll(content)
		if err != nil {
			return "", fmt.Errorf("failed to read HTML content: %w", err)
		}
		return convertToMarkdown(string(htmlBytes))
	}

	return extractMainContent(content, baseURL)
}

// extractMainContent uses go-readability to keep only the main article content
func extractMainContent(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract main content: %w", err)
	}
	slog.Debug("Readability extraction", "title", article.Title, "length", article.Length)

	return convertToMarkdown(article.Content)
}

// extractWithSelector keeps the elements matching a CSS selector, in document order
func extractWithSelector(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	parts := make([]string, 0, selection.Length())
	selection.Each(func(i int, s *goquery.Selection) {
		html, err := goquery.OuterHtml(s)
		if err != nil {
			slog.Debug("Skipping unreadable selection", "index", i, "error", err)
			return
		}
		parts = append(parts, html)
	})

	if len(parts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	return convertToMarkdown(strings.Join(parts, "\n"))
}

// textOnlyRules drop link destinations and images
var textOnlyRules = []md.Rule{
	{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			text := strings.TrimSpace(content)
			return &text
		},
	},
	{
		Filter: []string{"img"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			empty := ""
			return &empty
		},
	},
}

// convertToMarkdown converts an HTML string to tidy Markdown
func convertToMarkdown(htmlString string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.AddRules(textOnlyRules...)

	markdown, err := converter.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	cleaned := strings.TrimSpace(markdown)
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}
	return cleaned, nil
}
