package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
)

const (
	markdownHeader    = "| 기사 날짜 | 구분 | 부처 | 내용(간략하게) | 원문 |"
	markdownSeparator = "|---|---|---|---|---|"
)

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// JSONEntry is the serialized form of an Entry.
type JSONEntry struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	Organization string `json:"organization"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Link         string `json:"link"`
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Sort returns a copy of entries ordered newest day first. Entries of the same day keep
// their relative order.
func (g *Generator) Sort(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateYMD > sorted[j].DateYMD
	})
	return sorted
}

func (g *Generator) Markdown(entries []Entry) string {
	var buf strings.Builder

	buf.WriteString(markdownHeader)
	buf.WriteString("\n")
	buf.WriteString(markdownSeparator)

	for _, e := range g.Sort(entries) {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | <a href=\"%s\">원문</a> |",
			cell(e.DateYMD),
			cell(e.Category),
			cell(e.Organization),
			cell(e.Summary),
			html.EscapeString(e.Link))
	}

	return buf.String()
}

func (g *Generator) JSON(entries []Entry) ([]byte, error) {
	sorted := g.Sort(entries)
	out := make([]JSONEntry, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, JSONEntry{
			ID:           EntryID(e.Item),
			Date:         e.DateYMD,
			Category:     e.Category,
			Organization: e.Organization,
			Title:        e.Title,
			Summary:      e.Summary,
			Link:         e.Link,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entries: %w", err)
	}
	return data, nil
}

// EntryID is a short stable identifier derived from the item's dedupe key.
func EntryID(item Item) string {
	sum := sha256.Sum256([]byte(Key(item)))
	return hex.EncodeToString(sum[:])[:16]
}

func cell(s string) string {
	return strings.TrimSpace(cellReplacer.Replace(s))
}
