package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// fieldExtractor returns one candidate value for a field, or "" when absent.
type fieldExtractor func(item *gofeed.Item) string

// Feeds disagree on where fields live. Each chain is tried in order and the first
// non-empty value wins.
var (
	titleExtractors = []fieldExtractor{
		func(i *gofeed.Item) string { return i.Title },
		func(i *gofeed.Item) string {
			if i.DublinCoreExt != nil {
				return first(i.DublinCoreExt.Title)
			}
			return ""
		},
	}

	linkExtractors = []fieldExtractor{
		func(i *gofeed.Item) string { return i.Link },
		func(i *gofeed.Item) string { return first(i.Links) },
		func(i *gofeed.Item) string {
			if strings.HasPrefix(i.GUID, "http://") || strings.HasPrefix(i.GUID, "https://") {
				return i.GUID
			}
			return ""
		},
	}

	dateExtractors = []fieldExtractor{
		func(i *gofeed.Item) string { return i.Published },
		func(i *gofeed.Item) string {
			if i.DublinCoreExt != nil {
				return first(i.DublinCoreExt.Date)
			}
			return ""
		},
		func(i *gofeed.Item) string { return i.Updated },
		func(i *gofeed.Item) string { return extensionValue(i, "atom", "updated") },
		func(i *gofeed.Item) string { return extensionValue(i, "", "date") },
	}

	descriptionExtractors = []fieldExtractor{
		func(i *gofeed.Item) string { return i.Description },
		func(i *gofeed.Item) string { return i.Content },
		func(i *gofeed.Item) string { return extensionValue(i, "atom", "summary") },
	}
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, RDF or Atom document into candidates.
func (p *Parser) Run(data []byte) ([]Candidate, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:       extract(item, titleExtractors),
			Link:        extract(item, linkExtractors),
			Description: extract(item, descriptionExtractors),
			RawDate:     extract(item, dateExtractors),
		})
	}

	return candidates, nil
}

func extract(item *gofeed.Item, chain []fieldExtractor) string {
	for _, fn := range chain {
		if v := strings.TrimSpace(fn(item)); v != "" {
			return v
		}
	}
	return ""
}

func extensionValue(item *gofeed.Item, namespace, name string) string {
	if item.Extensions == nil {
		return ""
	}
	elements, ok := item.Extensions[namespace]
	if !ok {
		return ""
	}
	for _, e := range elements[name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
