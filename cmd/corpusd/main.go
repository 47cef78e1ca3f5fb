// Command corpusd runs the full-text search daemon: it builds a positional
// inverted index over one or more corpus roots, then serves phrase-search
// queries over a line-oriented TCP protocol while a background scheduler
// keeps the index fresh.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/corpusd/internal/accesslog"
	"github.com/standardbeagle/corpusd/internal/config"
	"github.com/standardbeagle/corpusd/internal/corpus"
	"github.com/standardbeagle/corpusd/internal/debug"
	"github.com/standardbeagle/corpusd/internal/index"
	"github.com/standardbeagle/corpusd/internal/scheduler"
	"github.com/standardbeagle/corpusd/internal/server"
	"github.com/standardbeagle/corpusd/internal/workerpool"
)

const version = "0.1.0"

func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", c.String("config"), err)
	}

	if roots := c.StringSlice("root"); len(roots) > 0 {
		abs := make([]string, len(roots))
		for i, r := range roots {
			a, err := filepath.Abs(r)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve root %q: %w", r, err)
			}
			abs[i] = a
		}
		cfg.Corpus.Roots = abs
	}
	if port := c.Int("port"); port != 0 {
		cfg.Server.Port = port
	}
	if c.Bool("debug") {
		debug.Enabled = true
		debug.SetOutput(os.Stderr)
	}

	return cfg, config.Validate(cfg)
}

func run(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	provider := corpus.NewFSProvider(cfg.Corpus.Roots, cfg.Corpus.Include, cfg.Corpus.Exclude)
	if cfg.Corpus.WatchForChanges {
		if err := provider.WatchForChanges(); err != nil {
			accesslog.Logger.Warn().Err(err).Msg("could not start file watch, falling back to periodic refresh only")
		} else {
			defer provider.Close()
		}
	}

	ingestPool := workerpool.New()
	ingestPool.Initialize(cfg.Index.IngestWorkers)

	idx := index.New(provider, ingestPool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	if err := idx.Build(ctx); err != nil {
		return fmt.Errorf("initial index build failed: %w", err)
	}
	accesslog.Logger.Info().
		Int("documents", idx.IndexedCount()).
		Int("words", idx.Size()).
		Dur("duration", time.Since(start)).
		Msg("initial index built")

	sched := scheduler.New(provider, idx, time.Duration(cfg.Index.RefreshIntervalSec)*time.Second, provider)
	go sched.Run(ctx)

	acceptor := server.NewAcceptor(idx, provider, cfg.Server.MaxActiveClients, cfg.Server.ClientWorkers)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if err := acceptor.Listen(addr); err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	// defer runs LIFO, so registering in this order shuts down the ingest
	// pool first, then the scheduler, then the acceptor last.
	defer acceptor.Shutdown()
	defer func() {
		sched.Stop()
		<-sched.Stopped()
	}()
	defer ingestPool.Terminate()

	go acceptor.Serve(ctx)
	accesslog.Logger.Info().Str("addr", addr).Msg("corpusd listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	accesslog.Logger.Info().Msg("shutting down")
	return nil
}

func main() {
	app := &cli.App{
		Name:    "corpusd",
		Usage:   "full-text search daemon over a corpus of .txt files",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a .corpusd.kdl config file",
				Value:   ".corpusd.kdl",
			},
			&cli.StringSliceFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "corpus root directory (repeatable); overrides config",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "TCP port to listen on; overrides config",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable verbose internal trace logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		accesslog.Logger.Fatal().Err(err).Msg("corpusd failed")
	}
}
