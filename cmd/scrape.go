package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rpineda26/facultyscraper/internal/config"
	collyfetcher "github.com/rpineda26/facultyscraper/internal/fetcher/colly"
	"github.com/rpineda26/facultyscraper/internal/fetcher/headless"
	"github.com/rpineda26/facultyscraper/internal/logging"
	"github.com/rpineda26/facultyscraper/internal/metrics"
	"github.com/rpineda26/facultyscraper/internal/scraper"
	"github.com/rpineda26/facultyscraper/internal/sink"
	"github.com/rpineda26/facultyscraper/internal/site"
)

// newScrapeCmd creates and configures the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one bounded-time scrape of the configured site",
		Long: `Runs the three-stage pipeline against the configured base URL for the
configured number of minutes, appending contact records to the contacts file
and one statistics snapshot to the stats file.`,
		RunE: runScrapeCommand,
	}

	cmd.Flags().String("base-url", "", "root URL of the institution site")
	cmd.Flags().Int("workers", 0, "worker pool size per stage")
	cmd.Flags().Int("minutes", 0, "run duration in minutes")
	cmd.Flags().Bool("headless", true, "render profile pages with headless Chrome")

	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	bindings := map[string]string{
		"scraper.base_url":         "base-url",
		"scraper.workers":          "workers",
		"scraper.duration_minutes": "minutes",
		"headless.enabled":         "headless",
	}
	for key, flag := range bindings {
		if cmd.Flags().Changed(flag) {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr)
		go func() {
			if serr := srv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				logger.Warn("Metrics listener stopped", zap.Error(serr))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("Serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	engine, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting scraper",
		zap.String("base_url", cfg.Scraper.BaseURL),
		zap.Int("workers", cfg.Scraper.Workers),
		zap.Int("minutes", cfg.Scraper.DurationMinutes),
	)
	return engine.Run(ctx)
}

func buildEngine(cfg config.Config, logger *zap.Logger) (*scraper.Engine, func(), error) {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	}, logger)

	cleanup := func() {}
	var renderers scraper.RendererFactory
	if cfg.Headless.Enabled {
		factory := headless.NewFactory(headless.Config{
			UserAgent:         cfg.HTTP.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		cleanup = factory.Close
		renderers = factory
	} else {
		logger.Warn("Headless rendering disabled; profile pages will be recorded as incomplete")
		renderers = headless.NewNoop()
	}

	results, err := sink.NewCSV(cfg.Output.ContactsFile)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	engine, err := scraper.NewEngine(
		cfg.EngineConfig(),
		fetcher,
		renderers,
		site.New(),
		results,
		sink.NewStatsFile(cfg.Output.StatsFile),
		nil,
		logger,
	)
	if err != nil {
		results.Close()
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}
