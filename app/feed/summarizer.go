package feed

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultSummaryLength = 20
	EmptySummary         = "no content"

	maxKeywords = 3
	ellipsis    = "…"
)

type action struct {
	label    string
	synonyms []string
}

// Declaration order decides which action wins when several occur.
var actions = []action{
	{"발표", []string{"발표", "공개", "공표", "공고"}},
	{"시행", []string{"시행", "실시", "추진", "개시", "도입", "시작"}},
	{"개정", []string{"개정", "수정", "변경", "개편", "개선", "보완"}},
	{"선정", []string{"선정", "지정", "선별", "채택", "결정", "확정"}},
	{"지원", []string{"지원", "지원책", "보조", "지원금", "지원사업", "지원방안"}},
	{"모집", []string{"모집", "공모", "신청", "접수", "모집공고", "참여"}},
	{"점검", []string{"점검", "조사", "검토", "감사", "단속", "확인"}},
	{"협약", []string{"협약", "협력", "업무협약", "MOU", "체결", "합의"}},
	{"개최", []string{"개최", "행사", "포럼", "회의", "세미나", "설명회"}},
	{"승인", []string{"승인", "허가", "인가", "통과", "의결"}},
	{"강화", []string{"강화", "확대", "증대", "향상"}},
}

var salientSuffixes = []string{"법", "정책", "지원", "개발", "산업", "기술", "환경"}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"에", "의", "를", "을", "이", "가", "은", "는", "로", "으로", "에서", "와", "과", "도",
		"만", "부터", "까지", "보다", "처럼", "같이", "위해", "통해", "대해", "관해",
		"있다", "없다", "하다", "되다", "이다", "아니다",
		"그", "저", "그런", "이런", "저런",
		"때문", "위해서", "때문에", "관련", "관해서", "대해서", "통해서",
		"및", "등", "또", "또한", "그리고", "하지만", "그러나", "따라서", "그래서",
	} {
		stopWords[w] = struct{}{}
	}
}

var bracketPattern = regexp.MustCompile(`[「『\[【(《<]([^」』\]】)》>]*)[」』\]】)》>]`)

// Summarizer compresses a title and description into a short label.
type Summarizer struct {
	maxLength int
}

func NewSummarizer(maxLength int) *Summarizer {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}
	return &Summarizer{maxLength: maxLength}
}

// Run summarizes every item, keeping the input order.
func (s *Summarizer) Run(items []Item) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			Item:    item,
			Summary: Summarize(item.Title, item.Description, s.maxLength),
		})
	}
	return entries
}

// Summarize returns a label of at most maxLength runes. It never returns an empty string:
// empty text yields EmptySummary even when maxLength is shorter than it.
func Summarize(title, description string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}

	text := combinedText(title, description)
	if text == "" {
		return EmptySummary
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	verb := findAction(text)
	keywords := extractKeywords(text)

	fits := func(s string) bool {
		return s != "" && utf8.RuneCountInString(s) <= maxLength
	}

	if verb != "" {
		for k := len(keywords); k >= 1; k-- {
			if candidate := strings.Join(keywords[:k], " ") + " " + verb; fits(candidate) {
				return candidate
			}
		}
	}
	for k := len(keywords); k >= 1; k-- {
		if candidate := strings.Join(keywords[:k], " "); fits(candidate) {
			return candidate
		}
	}
	if fits(verb) {
		return verb
	}

	if truncated := smartTruncate(text, maxLength); truncated != "" {
		return truncated
	}
	return EmptySummary
}

func combinedText(title, description string) string {
	title = CleanText(title)
	description = CleanText(description)
	if description == "" || description == title {
		return title
	}
	if title == "" {
		return description
	}
	return title + " " + description
}

func findAction(text string) string {
	for _, a := range actions {
		for _, synonym := range a.synonyms {
			if strings.Contains(text, synonym) {
				return a.label
			}
		}
	}
	return ""
}

// extractKeywords picks up to maxKeywords unique keywords: bracketed spans first, then
// domain-salient tokens, then the most frequent remaining tokens.
func extractKeywords(text string) []string {
	var keywords []string
	add := func(word string) {
		if len(keywords) >= maxKeywords || word == "" {
			return
		}
		for _, k := range keywords {
			if strings.Contains(k, word) {
				return
			}
		}
		keywords = append(keywords, word)
	}

	for _, m := range bracketPattern.FindAllStringSubmatch(text, -1) {
		span := strings.TrimSpace(m[1])
		if n := utf8.RuneCountInString(span); n >= 2 && n <= 20 {
			add(span)
		}
	}

	tokens := tokenize(text)
	for _, token := range tokens {
		if isSalient(token) {
			add(token)
		}
	}

	for _, token := range byFrequency(tokens) {
		add(token)
	}

	return keywords
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if usableToken(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func usableToken(word string) bool {
	if n := utf8.RuneCountInString(word); n < 2 || n > 15 {
		return false
	}
	if _, ok := stopWords[word]; ok {
		return false
	}
	if strings.Contains(strings.ToLower(word), "http") {
		return false
	}
	return !allRunes(word, unicode.IsDigit) && !allRunes(word, isLatin)
}

func isSalient(token string) bool {
	for _, suffix := range salientSuffixes {
		if strings.HasSuffix(token, suffix) && token != suffix {
			return true
		}
	}
	return false
}

// byFrequency orders distinct tokens by count, ties by first appearance.
func byFrequency(tokens []string) []string {
	counts := make(map[string]int, len(tokens))
	var order []string
	for _, t := range tokens {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	return order
}

// smartTruncate cuts text to at most limit runes including the ellipsis, backing off to
// the last space when it is close enough to the cut.
func smartTruncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit < 2 {
		return string(runes[:limit])
	}

	cut := runes[:limit-1]
	if !unicode.IsSpace(runes[limit-1]) {
		if idx := lastSpace(cut); idx > 0 && float64(idx) > float64(limit-1)*0.7 {
			cut = cut[:idx]
		}
	}

	trimmed := strings.TrimRightFunc(string(cut), unicode.IsSpace)
	if trimmed == "" {
		return ""
	}
	return trimmed + ellipsis
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

func isLatin(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
