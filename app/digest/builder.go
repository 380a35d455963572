package digest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/fetch"
	"github.com/lysyi3m/gov-comb/app/kst"
	"github.com/lysyi3m/gov-comb/app/source"
)

type Options struct {
	Timeout       time.Duration // per source, unless the descriptor sets its own
	WorkerCount   int           // 0 fetches every source at once
	SummaryLength int
	PreferPortal  bool
}

// SourceStats describes what one source contributed to a digest.
type SourceStats struct {
	Source       string      `json:"source"`
	Kind         source.Kind `json:"kind"`
	Fetched      int         `json:"fetched"`
	Kept         int         `json:"kept"`
	Dropped      int         `json:"dropped"`
	UsedFallback bool        `json:"used_fallback,omitempty"`
	Error        string      `json:"error,omitempty"`
}

type Stats struct {
	Sources   []SourceStats `json:"sources"`
	Collected int           `json:"collected"`
	Unique    int           `json:"unique"`
	Duration  time.Duration `json:"duration"`
}

// Builder runs the whole pipeline for one window: fetch, normalize, filter, dedupe
// and summarize.
type Builder struct {
	registry   *source.Registry
	client     *fetch.Client
	fetchers   fetch.Set
	resolver   *kst.Resolver
	filterer   *feed.Filterer
	deduper    *feed.Deduper
	summarizer *feed.Summarizer
	extractor  *feed.ContentExtractor
	timeout    time.Duration
	workers    int
}

func NewBuilder(registry *source.Registry, client *fetch.Client, resolver *kst.Resolver, opts Options) *Builder {
	pref := feed.DefaultPreference(registry.OfficialDomains, registry.PortalDomains)
	if opts.PreferPortal {
		pref.OfficialFirst = false
		pref.PortalFirst = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}

	workers := opts.WorkerCount
	if workers <= 0 {
		workers = max(len(registry.Sources), 1)
	}

	return &Builder{
		registry:   registry,
		client:     client,
		fetchers:   fetch.NewSet(client),
		resolver:   resolver,
		filterer:   feed.NewFilterer(resolver),
		deduper:    feed.NewDeduper(pref),
		summarizer: feed.NewSummarizer(opts.SummaryLength),
		extractor:  feed.NewContentExtractor(),
		timeout:    timeout,
		workers:    workers,
	}
}

func (b *Builder) Registry() *source.Registry {
	return b.registry
}

func (b *Builder) Resolver() *kst.Resolver {
	return b.resolver
}

type sourceResult struct {
	items []feed.Item
	stats SourceStats
}

// Build collects every enabled source and returns the summarized entries for window.
// A failing source only contributes nothing; an error is returned only when ctx ends.
func (b *Builder) Build(ctx context.Context, window kst.Window) ([]feed.Entry, Stats, error) {
	start := time.Now()
	sources := b.registry.EnabledSources()
	results := make([]sourceResult, len(sources))

	g := new(errgroup.Group)
	g.SetLimit(b.workers)
	for i, d := range sources {
		g.Go(func() error {
			results[i].items, results[i].stats = b.collect(ctx, d, window)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Sources: make([]SourceStats, 0, len(results))}
	var collected []feed.Item
	for _, r := range results {
		collected = append(collected, r.items...)
		stats.Sources = append(stats.Sources, r.stats)
	}

	unique := b.deduper.Run(collected)
	entries := b.summarizer.Run(unique)

	stats.Collected = len(collected)
	stats.Unique = len(unique)
	stats.Duration = time.Since(start)

	slog.Info("Digest built",
		"from", kst.FormatYMD(window.Start),
		"to", kst.FormatYMD(window.End),
		"sources", len(sources),
		"collected", stats.Collected,
		"unique", stats.Unique,
		"duration", stats.Duration)

	return entries, stats, nil
}

func (b *Builder) collect(ctx context.Context, d source.Descriptor, window kst.Window) ([]feed.Item, SourceStats) {
	stats := SourceStats{Source: d.Name(), Kind: d.Kind}
	timeout := d.GetTimeout(b.timeout)

	res := b.fetchWithFallback(ctx, d, timeout)
	candidates, kind := res.candidates, res.kind
	stats.Kind = kind
	stats.Fetched = len(candidates)
	stats.UsedFallback = res.fallback
	if len(candidates) == 0 {
		if res.err != nil {
			stats.Error = res.err.Error()
		}
		return nil, stats
	}

	items := make([]feed.Item, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, feed.Normalize(c, d.Organization, d.Category))
	}

	kept, dropped := b.filterer.Run(items, window, d.FallbackToTodayFor(kind))
	stats.Kept = len(kept)
	stats.Dropped = dropped
	if dropped > 0 {
		slog.Debug("Items outside window dropped", "source", d.Name(), "dropped", dropped)
	}

	if d.ExtractContent {
		enrichCtx, cancel := context.WithTimeout(ctx, timeout)
		b.enrich(enrichCtx, kept)
		cancel()
	}

	return kept, stats
}

type fetchResult struct {
	candidates []feed.Candidate
	kind       source.Kind // kind that produced the candidates
	fallback   bool
	err        error
}

// fetchWithFallback tries the primary URL, then the fallback URL once if the primary
// produced nothing. Each attempt gets its own timeout.
func (b *Builder) fetchWithFallback(ctx context.Context, d source.Descriptor, timeout time.Duration) fetchResult {
	candidates, err := b.fetch(ctx, timeout, d.Kind, d.URL)
	if err != nil {
		slog.Warn("Source fetch failed", "source", d.Name(), "url", d.URL, "error", err)
	}
	if len(candidates) > 0 || d.FallbackURL == "" {
		return fetchResult{candidates: candidates, kind: d.Kind, err: err}
	}

	kind := d.FallbackKind
	if kind == "" {
		kind = d.Kind
	}

	fallback, fallbackErr := b.fetch(ctx, timeout, kind, d.FallbackURL)
	if fallbackErr != nil {
		slog.Warn("Source fallback failed", "source", d.Name(), "url", d.FallbackURL, "error", fallbackErr)
		return fetchResult{kind: d.Kind, fallback: true, err: errors.Join(err, fallbackErr)}
	}

	slog.Info("Source fallback used", "source", d.Name(), "url", d.FallbackURL, "items", len(fallback))
	return fetchResult{candidates: fallback, kind: kind, fallback: true, err: err}
}

func (b *Builder) fetch(ctx context.Context, timeout time.Duration, kind source.Kind, url string) ([]feed.Candidate, error) {
	f, err := b.fetchers.For(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return f.Fetch(ctx, url)
}

// enrich replaces missing descriptions with the readable text of the linked page.
// Failures keep the item as it is.
func (b *Builder) enrich(ctx context.Context, items []feed.Item) {
	for i := range items {
		item := &items[i]
		if item.Link == "" || (item.Description != "" && item.Description != item.Title) {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		data, finalURL, err := b.client.Page(ctx, item.Link)
		if err != nil {
			slog.Debug("Content fetch failed", "url", item.Link, "error", err)
			continue
		}

		text, err := b.extractor.Run(data, finalURL)
		if err != nil {
			slog.Debug("Content extraction failed", "url", item.Link, "error", err)
			continue
		}

		item.Description = text
	}
}
