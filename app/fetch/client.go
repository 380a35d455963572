package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second

	maxBodyBytes   = 10 << 20
	acceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
	acceptFeed     = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Client performs outbound GETs with browser-like headers.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

// Timeout returns the time left before ctx expires, capped at the client timeout. It fails
// once the deadline has passed, since a non-positive http.Client timeout means no limit.
func (c *Client) Timeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < c.timeout {
			return left, nil
		}
	}
	return c.timeout, nil
}

// Feed fetches an RSS or Atom document.
func (c *Client) Feed(ctx context.Context, url string) ([]byte, error) {
	data, _, err := c.get(ctx, url, acceptFeed, "")
	return data, err
}

// Page fetches an HTML document and returns it with the final URL after redirects.
func (c *Client) Page(ctx context.Context, url string) ([]byte, string, error) {
	return c.get(ctx, url, acceptHTML, "text/html")
}

func (c *Client) get(ctx context.Context, url, accept, wantType string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if wantType != "" {
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), wantType) {
			return nil, "", fmt.Errorf("content type is not %s: %s", wantType, contentType)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Request.URL.String(), nil
}
