package feed

import (
	"github.com/lysyi3m/gov-comb/app/kst"
)

// Filterer resolves item dates and keeps the items inside a window.
type Filterer struct {
	resolver *kst.Resolver
}

func NewFilterer(resolver *kst.Resolver) *Filterer {
	return &Filterer{resolver: resolver}
}

// Run returns the items whose resolved date falls inside window, with ResolvedDate and
// DateYMD set, plus the number of items dropped. fallbackToToday is the date policy of
// the source the items came from.
func (f *Filterer) Run(items []Item, window kst.Window, fallbackToToday bool) ([]Item, int) {
	kept := make([]Item, 0, len(items))
	dropped := 0

	for _, item := range items {
		date, ok := f.resolver.CoerceItemDate(item.RawDate, item.Title, item.Description, fallbackToToday)
		if !ok || !window.Contains(date) {
			dropped++
			continue
		}

		item.ResolvedDate = date
		item.DateYMD = kst.FormatYMD(date)
		item.RawDate = ""
		kept = append(kept, item)
	}

	return kept, dropped
}
