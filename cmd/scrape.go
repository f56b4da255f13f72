package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookscrape/internal/api"
	"bookscrape/internal/clock/system"
	"bookscrape/internal/config"
	"bookscrape/internal/extractor"
	collyfetcher "bookscrape/internal/fetcher/colly"
	"bookscrape/internal/logging"
	"bookscrape/internal/progress"
	"bookscrape/internal/progress/sinks"
	"bookscrape/internal/scrape"
	"bookscrape/internal/sink"
	memorystore "bookscrape/internal/store/memory"
	postgresstore "bookscrape/internal/store/postgres"
	"bookscrape/internal/urlsource"
)

// newScrapeCmd creates and configures the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	var (
		mode       string
		inputPath  string
		outputDir  string
		concurrent int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch, extract, and persist every URL in the input file",
		Long: `Reads the URL list, fetches each page, extracts the product record, and
writes one JSON file per page. With --mode concurrent the pages are
processed by a bounded worker pool; with --mode sequential they are
processed one at a time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if inputPath != "" {
				cfg.Input.Path = inputPath
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			if concurrent > 0 {
				cfg.Scrape.Concurrency = concurrent
			}
			if mode != scrape.ModeSequential && mode != scrape.ModeConcurrent {
				return fmt.Errorf("unknown mode %q", mode)
			}
			return runScrape(cmd.Context(), cfg, mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", scrape.ModeConcurrent, "orchestration mode: sequential or concurrent")
	cmd.Flags().StringVar(&inputPath, "input", "", "override input.path from config")
	cmd.Flags().StringVar(&outputDir, "output", "", "override output.dir from config")
	cmd.Flags().IntVar(&concurrent, "concurrency", 0, "override scrape.concurrency from config")

	return cmd
}

func runScrape(parent context.Context, cfg config.Config, mode string) error {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	urls, err := urlsource.FromCSV(cfg.Input.Path, cfg.Input.URLColumn)
	if err != nil {
		return fmt.Errorf("read url list: %w", err)
	}
	logger.Info("url list loaded",
		zap.String("path", cfg.Input.Path),
		zap.Int("count", len(urls)),
	)

	productSink, err := sink.New(cfg.Output.Dir, logger.Named("sink"))
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init run store: %w", err)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
	)
	defer func() {
		if cerr := hub.Close(context.Background()); cerr != nil {
			logger.Warn("progress hub close failed", zap.Error(cerr))
		}
	}()

	if cfg.Server.Port > 0 {
		server := api.NewServer(registry, logger.Named("api"))
		go func() {
			if serr := server.Serve(ctx, cfg.Server.Port); serr != nil {
				logger.Warn("observability server stopped", zap.Error(serr))
			}
		}()
	}

	runner := scrape.NewRunner(
		collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.HTTP.UserAgent,
			Timeout:   cfg.RequestTimeout(),
		}),
		extractor.New(cfg.Extract),
		productSink,
		system.New(),
		store,
		hub,
		logger.Named("runner"),
	)

	runID := uuid.NewString()
	fmt.Println("Saving the output of extracted information")

	var summary scrape.Summary
	if mode == scrape.ModeSequential {
		summary = runner.RunSequential(ctx, runID, urls)
	} else {
		summary = runner.RunConcurrent(ctx, runID, urls, cfg.Scrape.Concurrency)
	}

	fmt.Printf("Scraping time: %.2f seconds.\n", summary.ElapsedSeconds())
	logger.Info("run finished",
		zap.String("run_id", runID),
		zap.String("mode", summary.Mode),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
	)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d pages failed", summary.Failed, len(summary.Results))
	}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (scrape.RunStore, func(), error) {
	if cfg.DB.DSN == "" {
		return memorystore.New(), func() {}, nil
	}
	pg, err := postgresstore.NewRunStore(ctx, postgresstore.RunStoreConfig{
		DSN:   cfg.DB.DSN,
		Table: cfg.DB.Table,
	})
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}
