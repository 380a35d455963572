package feed

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Titles shorter than this never merge by containment alone.
const minContainmentRunes = 10

var pressPattern = regexp.MustCompile(`보도|해명|참고`)

// Deduper collapses exact and near-duplicate items into one representative each.
type Deduper struct {
	pref Preference
}

func NewDeduper(pref Preference) *Deduper {
	return &Deduper{pref: pref}
}

type titleGroup struct {
	titles  []string
	members []Item
}

// Run returns one representative per cluster of duplicates, in cluster creation order.
// Items are returned unmodified.
func (d *Deduper) Run(items []Item) []Item {
	if len(items) == 0 {
		return []Item{}
	}

	// exact pass: same normalized title and host+path
	exact := make(map[string]int, len(items))
	survivors := make([]Item, 0, len(items))
	for _, item := range items {
		key := Key(item)
		if idx, ok := exact[key]; ok {
			survivors[idx] = d.chooseBetter(survivors[idx], item)
			continue
		}
		exact[key] = len(survivors)
		survivors = append(survivors, item)
	}

	// similarity pass: a survivor joins every group holding a similar title, and the
	// groups it bridges are merged into the earliest one
	var groups []*titleGroup
	for _, item := range survivors {
		title := normTitle(item.Title)

		var matched []int
		for i, g := range groups {
			for _, t := range g.titles {
				if similarTitle(title, t) {
					matched = append(matched, i)
					break
				}
			}
		}

		if len(matched) == 0 {
			groups = append(groups, &titleGroup{titles: []string{title}, members: []Item{item}})
			continue
		}

		target := groups[matched[0]]
		target.titles = append(target.titles, title)
		target.members = append(target.members, item)

		for j := len(matched) - 1; j >= 1; j-- {
			idx := matched[j]
			target.titles = append(target.titles, groups[idx].titles...)
			target.members = append(target.members, groups[idx].members...)
			groups = append(groups[:idx], groups[idx+1:]...)
		}
	}

	result := make([]Item, 0, len(groups))
	for _, g := range groups {
		best := g.members[0]
		for _, m := range g.members[1:] {
			best = d.chooseBetter(best, m)
		}
		result = append(result, best)
	}

	return result
}

// chooseBetter returns whichever of a and b should represent their group. The order is
// total, so the winner does not depend on argument order.
func (d *Deduper) chooseBetter(a, b Item) Item {
	if d.compare(a, b) >= 0 {
		return a
	}
	return b
}

func (d *Deduper) compare(a, b Item) int {
	if d.pref.OfficialFirst {
		if c := compareBool(hasDomain(a.Link, d.pref.OfficialDomains), hasDomain(b.Link, d.pref.OfficialDomains)); c != 0 {
			return c
		}
	} else if d.pref.PortalFirst {
		if c := compareBool(hasDomain(a.Link, d.pref.PortalDomains), hasDomain(b.Link, d.pref.PortalDomains)); c != 0 {
			return c
		}
	}

	if d.pref.PressOverNotice {
		if c := compareBool(isPress(a.Category), isPress(b.Category)); c != 0 {
			return c
		}
	}

	if c := utf8.RuneCountInString(infoText(a)) - utf8.RuneCountInString(infoText(b)); c != 0 {
		return c
	}
	if c := len(normLink(a.Link)) - len(normLink(b.Link)); c != 0 {
		return c
	}

	// arbitrary but stable: the lexically smaller item wins
	for _, pair := range [][2]string{
		{a.Link, b.Link},
		{a.Title, b.Title},
		{a.Organization, b.Organization},
		{a.Category, b.Category},
		{a.Description, b.Description},
		{a.DateYMD, b.DateYMD},
		{a.RawDate, b.RawDate},
	} {
		if c := strings.Compare(pair[1], pair[0]); c != 0 {
			return c
		}
	}
	return 0
}

// Key is the exact-duplicate key of an item: normalized title and normalized link.
func Key(item Item) string {
	return normTitle(item.Title) + "|" + normLink(item.Link)
}

func normTitle(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func normLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return strings.ToLower(link)
	}
	return strings.ToLower(u.Hostname()) + u.EscapedPath()
}

func similarTitle(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	shorter, longer := a, b
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	if utf8.RuneCountInString(shorter) < minContainmentRunes {
		return false
	}
	return strings.Contains(longer, shorter)
}

func hasDomain(link string, domains []string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// isPress reports press releases and clarifications. Notices (공지, 공고, 알림) rank below them.
func isPress(category string) bool {
	return pressPattern.MatchString(category)
}

func infoText(item Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Title
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
