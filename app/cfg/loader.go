package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Collection configuration
	SourcesFile   string `long:"sources-file" env:"SOURCES_FILE" description:"Source registry YAML file (built-in registry when empty)"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" description:"User agent string for outbound requests (browser-like default)"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Per-source fetch timeout in seconds"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"0" description:"Concurrent source fetches (0 fetches all sources at once)"`
	SummaryLength int    `long:"summary-length" env:"SUMMARY_LENGTH" default:"20" description:"Maximum summary length in characters"`
	PreferPortal  bool   `long:"prefer-portal" env:"PREFER_PORTAL" description:"Prefer portal mirrors over ministry sites when deduplicating"`

	// Snapshot configuration
	DigestCron string `long:"digest-cron" env:"DIGEST_CRON" description:"Cron spec for writing daily digest snapshots (disabled when empty)"`
	DigestDir  string `long:"digest-dir" env:"DIGEST_DIR" default:"./digests" description:"Directory for digest snapshots"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line arguments and environment variables. Extra option groups
// are parsed alongside the common options. It returns nil when help was requested.
func Load(args []string, groups ...any) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	for _, g := range groups {
		if _, err := parser.AddGroup("Command Options", "", g); err != nil {
			return nil, fmt.Errorf("failed to register options: %w", err)
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	return &Cfg{
		Port:          raw.Port,
		APIAccessKey:  raw.APIAccessKey,
		SourcesFile:   raw.SourcesFile,
		UserAgent:     raw.UserAgent,
		FetchTimeout:  time.Duration(raw.FetchTimeout) * time.Second,
		WorkerCount:   raw.WorkerCount,
		SummaryLength: raw.SummaryLength,
		PreferPortal:  raw.PreferPortal,
		DigestCron:    raw.DigestCron,
		DigestDir:     raw.DigestDir,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}, nil
}

func validate(raw *rawCfg) error {
	if raw.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %d", raw.FetchTimeout)
	}
	if raw.WorkerCount < 0 {
		return fmt.Errorf("worker count cannot be negative, got %d", raw.WorkerCount)
	}
	if raw.SummaryLength <= 0 {
		return fmt.Errorf("summary length must be positive, got %d", raw.SummaryLength)
	}
	return nil
}
