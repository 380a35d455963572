package fetch

import (
	"context"
	"fmt"

	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/source"
)

// Fetcher turns one source URL into raw candidates.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Candidate, error)
}

// Set maps each source kind to its fetcher.
type Set map[source.Kind]Fetcher

func NewSet(client *Client) Set {
	return Set{
		source.KindRSS:      NewRSSFetcher(client),
		source.KindHTML:     NewHTMLFetcher(client, GenericVariant),
		source.KindHTMLME:   NewHTMLFetcher(client, MEVariant),
		source.KindHTMLKCCP: NewHTMLFetcher(client, KCCPVariant),
	}
}

func (s Set) For(kind source.Kind) (Fetcher, error) {
	f, ok := s[kind]
	if !ok {
		return nil, fmt.Errorf("no fetcher for kind '%s'", kind)
	}
	return f, nil
}

type RSSFetcher struct {
	client *Client
	parser *feed.Parser
}

func NewRSSFetcher(client *Client) *RSSFetcher {
	return &RSSFetcher{
		client: client,
		parser: feed.NewParser(),
	}
}

func (f *RSSFetcher) Fetch(ctx context.Context, url string) ([]feed.Candidate, error) {
	data, err := f.client.Feed(ctx, url)
	if err != nil {
		return nil, err
	}
	return f.parser.Run(data)
}
