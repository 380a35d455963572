package feed

import (
	"time"
)

// Candidate is one row or item as found in a source response, before normalization.
type Candidate struct {
	Title       string
	Link        string
	Description string
	RawDate     string
}

type Item struct {
	Title        string
	Link         string
	Description  string
	Organization string
	Category     string
	RawDate      string // unresolved date text, cleared by the Filterer

	ResolvedDate time.Time // set by the Filterer
	DateYMD      string    // KST calendar date of ResolvedDate
}

// Entry is a deduplicated item with its summary, ready to render.
type Entry struct {
	Item
	Summary string
}

// Preference controls which item of a duplicate group survives.
type Preference struct {
	OfficialDomains []string
	PortalDomains   []string
	OfficialFirst   bool // official ministry links win over portal mirrors
	PortalFirst     bool // portal mirrors win; only consulted when OfficialFirst is false
	PressOverNotice bool
}

func DefaultPreference(officialDomains, portalDomains []string) Preference {
	return Preference{
		OfficialDomains: officialDomains,
		PortalDomains:   portalDomains,
		OfficialFirst:   true,
		PressOverNotice: true,
	}
}
