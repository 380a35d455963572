package feed

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Zs}\x{feff}]+`)
)

// Normalize maps a candidate onto an Item. The date is left unresolved.
func Normalize(c Candidate, organization, category string) Item {
	return Item{
		Title:        CleanText(c.Title),
		Link:         strings.TrimSpace(c.Link),
		Description:  CleanText(c.Description),
		Organization: strings.TrimSpace(organization),
		Category:     strings.TrimSpace(category),
		RawDate:      strings.TrimSpace(c.RawDate),
	}
}

// CleanText strips markup, decodes entities and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	// entities such as &lt;b&gt; decode into tags
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
