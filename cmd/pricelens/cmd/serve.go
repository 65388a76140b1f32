package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/pricelens/internal/aggregate"
	"github.com/donaldgifford/pricelens/internal/api"
	"github.com/donaldgifford/pricelens/internal/config"
	"github.com/donaldgifford/pricelens/internal/notify"
	"github.com/donaldgifford/pricelens/internal/source"
	"github.com/donaldgifford/pricelens/internal/store"
	"github.com/donaldgifford/pricelens/internal/vision"
	"github.com/donaldgifford/pricelens/internal/wishlist"
	"github.com/donaldgifford/pricelens/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and refresh scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	browser, err := source.NewBrowser(
		cfg.Sources.Browser.Headless,
		source.WithUserAgent(cfg.Sources.Browser.UserAgent),
		source.WithNavTimeout(cfg.Sources.Browser.NavTimeout),
	)
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	defer browser.Close()

	engine := aggregate.NewEngine(
		buildAdapters(cfg, browser, log),
		aggregate.WithLogger(log),
	)

	extractor := vision.NewExtractor(
		vision.NewRESTClient(
			cfg.Vision.Endpoint,
			vision.WithAPIKey(cfg.Vision.APIKey),
			vision.WithHTTPClient(&http.Client{Timeout: cfg.Vision.Timeout}),
		),
		vision.WithMaxTextWords(cfg.Vision.MaxKeywords),
		vision.WithLogger(log),
	)

	var notifier notify.Notifier
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	} else {
		notifier = notify.NewNoOpNotifier(log)
	}

	tracker := wishlist.NewTracker(
		st, engine, notifier,
		wishlist.WithLogger(log),
		wishlist.WithStagger(cfg.Schedule.StaggerOffset),
	)

	scheduler, err := wishlist.NewScheduler(tracker, cfg.Schedule.RefreshInterval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	scheduler.Start()

	e := api.NewRouter(api.RouterConfig{
		Store:     st,
		Tracker:   tracker,
		Searcher:  engine,
		Extractor: extractor,
		Logger:    log,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Stop the cron first so no refresh cycle starts mid-shutdown; the
	// returned context waits out any cycle already running.
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// buildAdapters wires one adapter per enabled retail source, each with its
// own rate limiter. Config validation guarantees at least one is enabled.
func buildAdapters(cfg *config.Config, sessions source.SessionFactory, log *slog.Logger) []source.Adapter {
	var adapters []source.Adapter

	if cfg.Sources.Amazon.Enabled {
		rl := source.NewRateLimiter(
			cfg.Sources.Amazon.RateLimit.PerSecond,
			cfg.Sources.Amazon.RateLimit.Burst,
			cfg.Sources.Amazon.RateLimit.DailyLimit,
		)
		adapters = append(adapters, source.NewAmazonAdapter(
			sessions,
			source.WithAmazonBaseURL(cfg.Sources.Amazon.BaseURL),
			source.WithAmazonTimeout(cfg.Sources.Amazon.Timeout),
			source.WithAmazonMaxOffers(cfg.Sources.Amazon.MaxOffers),
			source.WithAmazonRateLimiter(rl),
			source.WithAmazonLogger(log),
		))
	}

	if cfg.Sources.Flipkart.Enabled {
		rl := source.NewRateLimiter(
			cfg.Sources.Flipkart.RateLimit.PerSecond,
			cfg.Sources.Flipkart.RateLimit.Burst,
			cfg.Sources.Flipkart.RateLimit.DailyLimit,
		)
		adapters = append(adapters, source.NewFlipkartAdapter(
			sessions,
			source.WithFlipkartBaseURL(cfg.Sources.Flipkart.BaseURL),
			source.WithFlipkartTimeout(cfg.Sources.Flipkart.Timeout),
			source.WithFlipkartMaxOffers(cfg.Sources.Flipkart.MaxOffers),
			source.WithFlipkartRateLimiter(rl),
			source.WithFlipkartLogger(log),
		))
	}

	return adapters
}
