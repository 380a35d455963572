package cfg

import (
	"time"
)

type Cfg struct {
	// Server
	Port         string
	APIAccessKey string

	// Collection
	SourcesFile   string
	UserAgent     string
	FetchTimeout  time.Duration
	WorkerCount   int
	SummaryLength int
	PreferPortal  bool

	// Snapshots
	DigestCron string
	DigestDir  string

	Debug   bool
	Version string
}
