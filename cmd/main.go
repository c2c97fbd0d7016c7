package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"newsbeam/internal/bot"
	"newsbeam/internal/config"
	"newsbeam/internal/database"
	"newsbeam/internal/extractor"
	"newsbeam/internal/news"
	"newsbeam/internal/scheduler"
	"newsbeam/internal/server"
	"newsbeam/internal/summarizer"
)

func main() {
	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, dotenvLoaded, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	log.InfoContext(ctx, "Config is loaded",
		"dotenvLoaded", dotenvLoaded,
		"primaryProvider", cfg.PrimaryProvider,
		"fallbackProvider", cfg.FallbackProvider)

	orchestrator, closers, err := initOrchestrator(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize summarizer",
			"error", err)

		return
	}
	defer closeAll(ctx, closers, log)

	pageExtractor := extractor.New(cfg.ExtractTimeout, log)

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	seeds, err := news.ParseSeeds(cfg.NewsFeeds)
	if err != nil {
		log.ErrorContext(ctx, "NEWS_FEEDS must be a comma-separated list of category=url",
			"error", err)

		return
	}

	if err = news.SeedFeeds(ctx, db, seeds); err != nil {
		log.ErrorContext(ctx, "Failed to seed news feeds",
			"error", err,
			"seedCount", len(seeds))

		return
	}

	catalog := news.NewCatalog(db, orchestrator, log, news.WithExtractor(pageExtractor))

	sched := scheduler.New(ctx, cfg.NewsRefreshSpec, catalog, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", cfg.NewsRefreshSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", cfg.NewsRefreshSpec)

	srv, err := server.New(server.Deps{
		Summarizer: orchestrator,
		Extractor:  pageExtractor,
		News:       catalog,
		Feeds:      db,
	}, log, server.WithCORSOrigins(cfg.CORSOrigins))
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize HTTP server",
			"error", err)

		return
	}

	var wg sync.WaitGroup

	if cfg.TelegramToken != "" {
		botInst, botErr := bot.New(cfg.TelegramToken, orchestrator, pageExtractor, cfg.AllowedUsers, log)
		if botErr != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", botErr,
				"allowedUsersCount", len(cfg.AllowedUsers))

			return
		}
		defer botInst.Stop()

		wg.Go(func() {
			botInst.Start(ctx)
		})
	} else {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is empty so bot is disabled",
			"envVar", "TELEGRAM_TOKEN")
	}

	if err = srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.ErrorContext(ctx, "HTTP server failed",
			"error", err,
			"addr", cfg.HTTPAddr)

		stop()
	}

	wg.Wait()

	log.InfoContext(context.WithoutCancel(ctx), "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initOrchestrator(
	ctx context.Context,
	cfg config.Config,
	log *slog.Logger,
) (*summarizer.Orchestrator, []io.Closer, error) {
	providerCfg := summarizer.ProviderConfig{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		GoogleAPIKey:    cfg.GoogleAPIKey,
		GeminiModel:     cfg.GeminiModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	}

	primary, primaryCloser, err := summarizer.NewProvider(ctx, summarizer.ProviderKind(cfg.PrimaryProvider), providerCfg)
	if err != nil {
		return nil, nil, err
	}

	fallback, fallbackCloser, err := summarizer.NewProvider(ctx, summarizer.ProviderKind(cfg.FallbackProvider), providerCfg)
	if err != nil {
		_ = primaryCloser.Close()
		return nil, nil, err
	}

	log.InfoContext(ctx, "Summarizer is initialized",
		"primary", primary.Name(),
		"fallback", fallback.Name(),
		"providerTimeout", cfg.ProviderTimeout)

	o := summarizer.NewOrchestrator(primary, fallback, log,
		summarizer.WithProviderTimeout(cfg.ProviderTimeout))

	return o, []io.Closer{primaryCloser, fallbackCloser}, nil
}

func closeAll(ctx context.Context, closers []io.Closer, log *slog.Logger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.WarnContext(ctx, "Failed to close provider",
				"error", err)
		}
	}
}
