package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/gov-comb/app/cfg"
	"github.com/lysyi3m/gov-comb/app/digest"
	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/fetch"
	"github.com/lysyi3m/gov-comb/app/kst"
	"github.com/lysyi3m/gov-comb/app/logger"
	"github.com/lysyi3m/gov-comb/app/source"
)

type digestOptions struct {
	From   string `long:"from" description:"First day of the window, YYYY-MM-DD (default: yesterday KST)"`
	To     string `long:"to" description:"Last day of the window, YYYY-MM-DD (default: today KST)"`
	Format string `long:"format" default:"markdown" choice:"markdown" choice:"json" description:"Output format"`
	Stats  bool   `long:"stats" description:"Print per-source statistics to stderr"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts digestOptions

	appCfg, err := cfg.Load(os.Args[1:], &opts)
	if err != nil {
		return err
	}
	if appCfg == nil {
		return nil
	}

	// stdout carries the digest
	slog.SetDefault(logger.NewWithWriter(os.Stderr, appCfg.Debug))

	registry, err := source.Load(appCfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("failed to load source registry: %w", err)
	}

	resolver := kst.NewResolver(time.Now)
	window, err := resolver.Window(opts.From, opts.To)
	if err != nil {
		return err
	}

	builder := digest.NewBuilder(
		registry,
		fetch.NewClient(appCfg.UserAgent, appCfg.FetchTimeout),
		resolver,
		digest.Options{
			Timeout:       appCfg.FetchTimeout,
			WorkerCount:   appCfg.WorkerCount,
			SummaryLength: appCfg.SummaryLength,
			PreferPortal:  appCfg.PreferPortal,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, stats, err := builder.Build(ctx, window)
	if err != nil {
		return fmt.Errorf("수집 실패: %w", err)
	}

	if opts.Stats {
		for _, s := range stats.Sources {
			fmt.Fprintf(os.Stderr, "%-40s %-10s fetched=%d kept=%d dropped=%d fallback=%t %s\n",
				s.Source, s.Kind, s.Fetched, s.Kept, s.Dropped, s.UsedFallback, s.Error)
		}
		fmt.Fprintf(os.Stderr, "collected=%d unique=%d duration=%s\n", stats.Collected, stats.Unique, stats.Duration)
	}

	generator := feed.NewGenerator()
	if opts.Format == "json" {
		data, err := generator.JSON(entries)
		if err != nil {
			return fmt.Errorf("failed to encode digest: %w", err)
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, generator.Markdown(entries))
	return err
}
