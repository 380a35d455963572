package source

import (
	"time"
)

type Kind string

const (
	KindRSS      Kind = "rss"
	KindHTML     Kind = "html"
	KindHTMLME   Kind = "html_me"
	KindHTMLKCCP Kind = "html_kccp"
)

var knownKinds = map[Kind]bool{
	KindRSS:      true,
	KindHTML:     true,
	KindHTMLME:   true,
	KindHTMLKCCP: true,
}

func (k Kind) IsHTML() bool {
	return k != KindRSS
}

// Registry is the parsed source list together with the dedupe domain preferences.
type Registry struct {
	OfficialDomains []string     `yaml:"official_domains" json:"official_domains"`
	PortalDomains   []string     `yaml:"portal_domains" json:"portal_domains"`
	Sources         []Descriptor `yaml:"sources" json:"sources"`
}

// Descriptor identifies one pollable feed.
type Descriptor struct {
	Organization string `yaml:"organization" json:"organization"`
	Category     string `yaml:"category" json:"category"`
	Kind         Kind   `yaml:"kind" json:"kind"`
	URL          string `yaml:"url" json:"url"`
	FallbackURL  string `yaml:"fallback_url" json:"fallback_url,omitempty"`
	FallbackKind Kind   `yaml:"fallback_kind" json:"fallback_kind,omitempty"`

	// Nil means the kind default: RSS items without a date are kept as today,
	// HTML rows without a date are dropped.
	FallbackToToday *bool `yaml:"fallback_to_today" json:"fallback_to_today,omitempty"`

	Enabled        *bool `yaml:"enabled" json:"enabled,omitempty"`
	Timeout        int   `yaml:"timeout" json:"timeout,omitempty"` // seconds
	ExtractContent bool  `yaml:"extract_content" json:"extract_content,omitempty"`
}

// Name is a short label used in logs.
func (d *Descriptor) Name() string {
	return d.Organization + "/" + d.Category
}

func (d *Descriptor) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// FallbackToTodayFor reports the date policy for items produced by the given kind.
func (d *Descriptor) FallbackToTodayFor(kind Kind) bool {
	if d.FallbackToToday != nil {
		return *d.FallbackToToday
	}
	return kind == KindRSS
}

// GetTimeout returns the per-source timeout, or def when unset.
func (d *Descriptor) GetTimeout(def time.Duration) time.Duration {
	if d.Timeout <= 0 {
		return def
	}
	return time.Duration(d.Timeout) * time.Second
}

func (r *Registry) EnabledSources() []Descriptor {
	enabled := make([]Descriptor, 0, len(r.Sources))
	for _, d := range r.Sources {
		if d.IsEnabled() {
			enabled = append(enabled, d)
		}
	}
	return enabled
}
