package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-shiori/go-readability"
)

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the readable article text of an HTML page. pageURL, when set, is used
// to resolve relative links inside the document.
func (e *ContentExtractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	var base *url.URL
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return "", fmt.Errorf("failed to parse page url: %w", err)
		}
		base = parsed
	}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := CleanText(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(text))

	return text, nil
}
