// Package kst resolves date windows and loosely formatted dates in Korea Standard Time.
package kst

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Location is Asia/Seoul as a fixed UTC+9 offset. Korea has no daylight saving time,
// so the tz database is not needed.
var Location = time.FixedZone("KST", 9*60*60)

var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

const dayLayout = "2006-01-02"

var (
	fullDatePattern  = regexp.MustCompile(`(\d{4})[-./](\d{1,2})[-./](\d{1,2})`)
	monthDayPattern  = regexp.MustCompile(`(?:^|\s)(\d{1,2})[-./](\d{1,2})(?:\s|$)`)
	koreanDayPattern = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)
)

// Window is an inclusive time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type Resolver struct {
	now func() time.Time
}

// NewResolver returns a resolver using the given clock. A nil clock means time.Now.
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

func (r *Resolver) Now() time.Time {
	return r.now().In(Location)
}

// Window builds the interval [from 00:00:00, to 23:59:59] in KST. An empty from means
// yesterday and an empty to means today. from > to is accepted and yields a window that
// contains nothing.
func (r *Resolver) Window(from, to string) (Window, error) {
	now := r.Now()
	y, m, d := now.Date()

	var w Window
	if from == "" {
		w.Start = time.Date(y, m, d-1, 0, 0, 0, 0, Location)
	} else {
		day, err := parseDay(from)
		if err != nil {
			return Window{}, fmt.Errorf("from=%q: %w", from, err)
		}
		w.Start = day
	}

	if to == "" {
		w.End = time.Date(y, m, d, 23, 59, 59, 0, Location)
	} else {
		day, err := parseDay(to)
		if err != nil {
			return Window{}, fmt.Errorf("to=%q: %w", to, err)
		}
		w.End = day.Add(24*time.Hour - time.Second)
	}

	return w, nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, strings.TrimSpace(s), Location)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseDateLike extracts a date from free-form text. It tries a full date parse first, then
// YYYY-MM-DD style substrings, then bare MM-DD, then "N월 N일". Partial forms assume the
// current KST year.
func (r *Resolver) ParseDateLike(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}

	var (
		fromText   time.Time
		hasYMDText bool
	)
	if m := fullDatePattern.FindStringSubmatch(s); m != nil {
		fromText, hasYMDText = noonKST(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	// dateparse misreads board cells such as "2025.06.09." or "2025.06.09(월)", so a full
	// parse only wins when its own-zone date agrees with the Y-M-D written in the text
	if t, ok := parseFull(s); ok {
		if !hasYMDText || t.Format(dayLayout) == fromText.Format(dayLayout) {
			return t, true
		}
	}
	if hasYMDText {
		return fromText, true
	}

	year := r.Now().Year()

	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		if t, ok := noonKST(year, atoi(m[1]), atoi(m[2])); ok {
			return t, true
		}
	}

	if m := koreanDayPattern.FindStringSubmatch(s); m != nil {
		if t, ok := noonKST(year, atoi(m[1]), atoi(m[2])); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

// CoerceItemDate resolves an item date from its raw date field, then its title, then its
// description. When nothing parses it returns now if fallbackToToday is set.
func (r *Resolver) CoerceItemDate(rawDate, title, description string, fallbackToToday bool) (time.Time, bool) {
	for _, candidate := range []string{rawDate, title, description} {
		if t, ok := r.ParseDateLike(candidate); ok {
			return t, true
		}
	}

	if fallbackToToday {
		return r.Now(), true
	}
	return time.Time{}, false
}

// FormatYMD renders the KST calendar date of t.
func FormatYMD(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location).Format(dayLayout)
}

func parseFull(s string) (t time.Time, ok bool) {
	// dateparse panics on a handful of malformed inputs
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(s, Location)
	if err != nil || parsed.Year() < 1990 {
		return time.Time{}, false
	}
	return parsed, true
}

func noonKST(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, Location)
	if t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
