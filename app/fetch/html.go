package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/lysyi3m/gov-comb/app/feed"
)

var datePattern = regexp.MustCompile(`\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2}`)

var errSoftNotFound = errors.New("page reports not found")

// SiteVariant describes how to read one family of board list pages.
type SiteVariant struct {
	Name            string
	RowSelector     string
	AnchorSelectors []string // tried in order, the first match in a row wins
	DateFromPattern bool     // pick the last cell that looks like a date instead of the last cell
	AlternateHost   bool     // retry with the www. prefix toggled
	SoftNotFound    []string // body markers of an error page served with 200
	ListFallback    bool     // read li anchors when no table row matched
}

var (
	GenericVariant = SiteVariant{
		Name:            "generic",
		RowSelector:     "table.board_list tbody tr",
		AnchorSelectors: []string{"a[href]"},
	}

	softNotFoundMarkers = []string{
		"Page Not Found",
		"요청하신 페이지를 찾을 수 없습니다",
		"페이지를 찾을 수 없습니다",
	}

	MEVariant = SiteVariant{
		Name:            "me",
		RowSelector:     "table tbody tr",
		AnchorSelectors: []string{"a[href*='read.do']", "a[href]"},
		DateFromPattern: true,
		AlternateHost:   true,
		SoftNotFound:    softNotFoundMarkers,
		ListFallback:    true,
	}

	KCCPVariant = SiteVariant{
		Name:        "kccp",
		RowSelector: "table tbody tr",
		AnchorSelectors: []string{
			"a[href*='View']",
			"a[href*='view']",
			"a[href*='nv_newsView']",
			"a[href*='nv_noticeView']",
			"a[href]",
		},
		DateFromPattern: true,
		AlternateHost:   true,
		SoftNotFound:    softNotFoundMarkers,
		ListFallback:    true,
	}
)

// HTMLFetcher scrapes board list pages with colly and reads them with goquery.
type HTMLFetcher struct {
	client  *Client
	variant SiteVariant
}

func NewHTMLFetcher(client *Client, variant SiteVariant) *HTMLFetcher {
	return &HTMLFetcher{client: client, variant: variant}
}

func (f *HTMLFetcher) Fetch(ctx context.Context, pageURL string) ([]feed.Candidate, error) {
	urls := []string{pageURL}
	if f.variant.AlternateHost {
		if alt := alternateHost(pageURL); alt != "" {
			urls = append(urls, alt)
		}
	}

	var errs []error
	for _, u := range urls {
		body, finalURL, err := f.visit(ctx, u)
		if err == nil && f.isSoftNotFound(body) {
			err = errSoftNotFound
		}
		if err != nil {
			slog.Debug("HTML candidate rejected", "variant", f.variant.Name, "url", u, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}

		return f.parse(body, finalURL)
	}

	return nil, fmt.Errorf("failed to fetch page: %w", errors.Join(errs...))
}

func (f *HTMLFetcher) visit(ctx context.Context, pageURL string) ([]byte, string, error) {
	timeout, err := f.client.Timeout(ctx)
	if err != nil {
		return nil, "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.client.UserAgent()),
		colly.MaxBodySize(maxBodyBytes),
		colly.DetectCharset(),
	)
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHTML)
		r.Headers.Set("Accept-Language", acceptLanguage)
		r.Headers.Set("Referer", r.URL.String())
	})

	var (
		body     []byte
		finalURL = pageURL
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	return body, finalURL, nil
}

func (f *HTMLFetcher) isSoftNotFound(body []byte) bool {
	for _, marker := range f.variant.SoftNotFound {
		if bytes.Contains(body, []byte(marker)) {
			return true
		}
	}
	return false
}

func (f *HTMLFetcher) parse(body []byte, pageURL string) ([]feed.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page url: %w", err)
	}

	candidates := f.parseRows(doc, base)
	if len(candidates) == 0 && f.variant.ListFallback {
		candidates = parseList(doc, base)
	}

	return candidates, nil
}

func (f *HTMLFetcher) parseRows(doc *goquery.Document, base *url.URL) []feed.Candidate {
	var candidates []feed.Candidate

	doc.Find(f.variant.RowSelector).Each(func(_ int, row *goquery.Selection) {
		anchor := f.anchor(row)
		if anchor == nil {
			return
		}

		title := strings.TrimSpace(anchor.Text())
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if title == "" || href == "" {
			return
		}

		candidates = append(candidates, feed.Candidate{
			Title:   title,
			Link:    resolve(base, href),
			RawDate: f.rowDate(row.Find("td")),
		})
	})

	return candidates
}

func (f *HTMLFetcher) anchor(row *goquery.Selection) *goquery.Selection {
	for _, selector := range f.variant.AnchorSelectors {
		if a := row.Find(selector).First(); a.Length() > 0 {
			return a
		}
	}
	return nil
}

func (f *HTMLFetcher) rowDate(cells *goquery.Selection) string {
	if f.variant.DateFromPattern {
		for i := cells.Length() - 1; i >= 0; i-- {
			text := strings.TrimSpace(cells.Eq(i).Text())
			if datePattern.MatchString(text) {
				return text
			}
		}
	}
	return strings.TrimSpace(cells.Last().Text())
}

func parseList(doc *goquery.Document, base *url.URL) []feed.Candidate {
	var candidates []feed.Candidate

	doc.Find("li a[href]").Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if title == "" || href == "" {
			return
		}
		candidates = append(candidates, feed.Candidate{
			Title:   title,
			Link:    resolve(base, href),
			RawDate: datePattern.FindString(a.Closest("li").Text()),
		})
	})

	return candidates
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// alternateHost toggles the www. prefix of the URL host.
func alternateHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if strings.HasPrefix(u.Host, "www.") {
		u.Host = strings.TrimPrefix(u.Host, "www.")
	} else {
		u.Host = "www." + u.Host
	}
	return u.String()
}
