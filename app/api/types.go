package api

import (
	"context"

	"github.com/lysyi3m/gov-comb/app/digest"
	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/kst"
	"github.com/lysyi3m/gov-comb/app/source"
)

type DigestBuilder interface {
	Build(ctx context.Context, window kst.Window) ([]feed.Entry, digest.Stats, error)
	Registry() *source.Registry
	Resolver() *kst.Resolver
}

var _ DigestBuilder = (*digest.Builder)(nil)

type GeneratorInterface interface {
	Markdown(entries []feed.Entry) string
	JSON(entries []feed.Entry) ([]byte, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	builder   DigestBuilder
	generator GeneratorInterface
	version   string
}

type WindowResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type StatusResponse struct {
	Message    string         `json:"message"`
	FeedsCount int            `json:"feedsCount"`
	Window     WindowResponse `json:"window"`
}
