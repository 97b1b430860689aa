package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"legendemer/internal/http/handlers"
	httpapi "legendemer/internal/http/httpapi"
	"legendemer/internal/infra"
	"legendemer/internal/infra/credentials"
	"legendemer/internal/infra/geoip"
	"legendemer/internal/media"
	"legendemer/internal/middleware"
	"legendemer/internal/pipeline"
	"legendemer/internal/progress"
	"legendemer/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
		if closer, ok := resolver.(interface{ Close() error }); ok {
			defer func() { _ = closer.Close() }()
		}
	}

	hub := progress.NewHub()
	store := credentials.NewStore(cfg.GeminiAPIKey)

	var saver handlers.ArtifactSaver
	if cfg.OutputDir != "" {
		fs, err := storage.NewFileStore(cfg.OutputDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare output directory")
		}
		saver = fs
	}

	app := handlers.NewApp(handlers.Options{
		Logger:      &logger,
		Streamer:    progress.NewStreamer(hub, cfg.AllowedOrigins, &logger),
		Fetcher:     media.NewFetcher(nil),
		Credentials: store,
		Store:       saver,
		ResultTTL:   cfg.ResultTTL,
	})

	build := func(ctx context.Context, key string) error {
		p, err := pipeline.Build(ctx, cfg, key, pipeline.Options{Observer: hub, Logger: &logger})
		if err != nil {
			return err
		}
		app.SetPipeline(p.Orchestrator, p.Enricher)
		return nil
	}

	ctx := context.Background()
	if err := build(ctx, cfg.GeminiAPIKey); err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation pipeline")
	}
	store.OnChange(build)
	logger.Info().Str("key_fingerprint", store.Fingerprint()).Msg("generation pipeline ready")

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AdminToken:      cfg.CredentialsAdminToken,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
