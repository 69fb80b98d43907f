package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/hncrawl/internal/config"
	"github.com/nao1215/hncrawl/internal/crawler"
	"github.com/nao1215/hncrawl/internal/database"
	"github.com/nao1215/hncrawl/internal/fetcher"
	hnlog "github.com/nao1215/hncrawl/internal/log"
	"github.com/nao1215/hncrawl/internal/storage"
	"github.com/nao1215/hncrawl/internal/transport"
)

// errUnsafeOutputDir is returned when the output root would remove the
// working directory or the filesystem root.
var errUnsafeOutputDir = errors.New("refusing to clear output directory")

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Poll the front page and archive new submissions",
		Long: `Crawl polls the front page of the configured site, waits a fixed delay
between cycles and keeps going until interrupted (Ctrl+C). An interrupt lets
the current cycle finish its downloads and then exits with status 0.

The output directory is deleted and recreated at startup. Each new
submission gets a directory named after its id containing:
  index.<ext>          the submission's own link
  <sha256[:50]>.<ext>  one file per distinct link in the comment thread

Examples:
  # Crawl with defaults (./data, 5s delay, 30 rows)
  hncrawl crawl

  # Run one cycle and exit
  hncrawl crawl --once

  # Crawl through a local Tor SOCKS proxy
  hncrawl crawl --proxy 127.0.0.1:9050

  # Crawl through an embedded Tor daemon
  hncrawl crawl --tor`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .hncrawl in current or home directory)")
	cmd.Flags().StringP("base-url", "u", config.DefaultBaseURL,
		"Site to crawl")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Pause between cycles")
	cmd.Flags().IntP("limit", "l", config.DefaultLimit,
		"Number of front-page rows inspected per cycle")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output root directory (cleared at startup)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum bytes read from one response")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header")
	cmd.Flags().StringToString("header", nil,
		"Extra request header as key=value (repeatable)")
	cmd.Flags().String("cookie", "",
		"Cookie sent with every request")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Route requests through an embedded Tor daemon")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the archive database")
	cmd.Flags().String("db-dir", "",
		"Archive database directory (default: XDG data directory)")
	cmd.Flags().Bool("json-log", false,
		"Write log.txt as JSON lines")
	cmd.Flags().Bool("once", false,
		"Run a single cycle and exit")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	maxCycles := 0
	if once {
		maxCycles = 1
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, maxCycles, cmd.ErrOrStderr())
}

// buildConfig layers defaults, the config file, the environment and the
// flags that were explicitly set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file means defaults.
	if path := config.FindConfigFile(configPath); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyFlags copies flags the user set on the command line into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.Delay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("limit") {
		if cfg.Limit, err = flags.GetInt("limit"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("cookie") {
		if cfg.Cookie, err = flags.GetString("cookie"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("tor") {
		if cfg.EmbeddedTor, err = flags.GetBool("tor"); err != nil {
			return err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("no-db") {
		noDB, err := flags.GetBool("no-db")
		if err != nil {
			return err
		}
		cfg.SaveToDB = !noDB
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("json-log") {
		if cfg.JSONLog, err = flags.GetBool("json-log"); err != nil {
			return err
		}
	}
	return nil
}

// resetOutputDir deletes and recreates the output root.
func resetOutputDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if abs == filepath.Dir(abs) || abs == cwd {
		return fmt.Errorf("%w: %s", errUnsafeOutputDir, dir)
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// runCrawl wires the crawl engine and runs the scheduler until ctx is
// cancelled or maxCycles cycles have run.
func runCrawl(ctx context.Context, cfg *config.Config, maxCycles int, console io.Writer) error {
	if err := resetOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	logger, closeLog, err := hnlog.Setup(hnlog.Options{
		LogFile: cfg.LogFilePath(),
		Console: console,
		Verbose: cfg.Verbose,
		JSON:    cfg.JSONLog,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	logger.Info("starting crawl",
		"base_url", cfg.BaseURL,
		"delay", cfg.Delay,
		"limit", cfg.Limit,
		"output_dir", cfg.OutputDir,
		"proxy", cfg.Proxy,
		"embedded_tor", cfg.EmbeddedTor,
		"cookie", cfg.Cookie,
	)

	client, stopTransport, err := newHTTPClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopTransport()

	f := fetcher.New(client, fetcher.WithMaxBodySize(cfg.MaxBodySize))

	var run *database.Run
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		run, err = db.StartRun(ctx, cfg.BaseURL, cfg.OutputDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := run.Finish(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to finish run", "error", err)
			}
		}()
		logger.Info("archive opened", "path", db.Path(), "run", run.ID)
	}

	saverOpts := make([]storage.Option, 0, 1)
	cycleOpts := []crawler.CycleOption{
		crawler.WithBaseURL(cfg.BaseURL),
		crawler.WithLimit(cfg.Limit),
		crawler.WithOutputDir(cfg.OutputDir),
		crawler.WithLogger(logger),
	}
	schedulerOpts := []crawler.SchedulerOption{
		crawler.WithDelay(cfg.Delay),
		crawler.WithMaxCycles(maxCycles),
		crawler.WithSchedulerLogger(logger),
	}
	if run != nil {
		saverOpts = append(saverOpts, storage.WithRecorder(run))
		cycleOpts = append(cycleOpts, crawler.WithArchive(run))
		schedulerOpts = append(schedulerOpts, crawler.WithCycleArchive(run))
	}

	saver := storage.NewSaver(f, logger, saverOpts...)
	processor := crawler.NewProcessor(f, saver, cfg.BaseURL, logger)
	cycle := crawler.NewCycle(f, processor, crawler.NewSeenSet(), cycleOpts...)

	return crawler.NewScheduler(cycle, schedulerOpts...).Run(ctx)
}

// newHTTPClient builds the crawl client for the configured transport. The
// returned stop function releases the embedded Tor daemon, if any.
func newHTTPClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*http.Client, func(), error) {
	opts := transport.Options{
		Timeout:   cfg.Timeout,
		Proxy:     cfg.Proxy,
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
		Cookie:    cfg.Cookie,
	}
	noop := func() {}

	switch {
	case cfg.EmbeddedTor:
		logger.Warn("starting embedded Tor daemon, this may take a few minutes")
		tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, noop, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		stop := func() {
			if err := tor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		if status := transport.CheckProxy(ctx, tor.SocksAddr()); status != transport.ProxyStatusOK {
			stop()
			return nil, noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
		}
		client, err := tor.HTTPClient(opts)
		if err != nil {
			stop()
			return nil, noop, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		logger.Info("embedded Tor daemon started", "socks_addr", tor.SocksAddr())
		return client, stop, nil

	case cfg.Proxy != "":
		if status := transport.CheckProxy(ctx, cfg.Proxy); status != transport.ProxyStatusOK {
			return nil, noop, fmt.Errorf("proxy check failed for %s: %w", cfg.Proxy, status.Err())
		}
		logger.Info("proxy connection verified", "address", cfg.Proxy)
	}

	client, err := transport.NewHTTPClient(opts)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, noop, nil
}
