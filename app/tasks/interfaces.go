package tasks

import (
	"context"

	"github.com/lysyi3m/gov-comb/app/digest"
	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/kst"
)

// TaskSchedulerInterface is what the server needs from the snapshot scheduler.
//
//	scheduler, err := NewScheduler(spec, builder, dir)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
}

type DigestBuilder interface {
	Build(ctx context.Context, window kst.Window) ([]feed.Entry, digest.Stats, error)
	Resolver() *kst.Resolver
}

var _ DigestBuilder = (*digest.Builder)(nil)
