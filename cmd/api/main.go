package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mediaforge/internal/generation"
	"mediaforge/internal/http/handlers"
	"mediaforge/internal/http/httpapi"
	"mediaforge/internal/infra"
	"mediaforge/internal/providers/caption"
	"mediaforge/internal/providers/replicate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client := replicate.NewClient(replicate.Options{
		APIToken: cfg.ReplicateAPIToken,
		BaseURL:  cfg.ReplicateBaseURL,
		Logger:   &logger,
	})
	captioner := caption.NewClient(caption.Options{
		APIKey:  cfg.CaptionAPIKey,
		Model:   cfg.CaptionModel,
		BaseURL: cfg.CaptionBaseURL,
		Logger:  &logger,
	})
	orchestrator := generation.NewOrchestrator(generation.Options{
		Client: client,
		Models: generation.ModelConfig{
			FluxVersion:       cfg.FluxVersion,
			FluxSlug:          cfg.FluxSlug,
			SDXLVersion:       cfg.SDXLVersion,
			SDXLSlug:          cfg.SDXLSlug,
			ImageEditVersion:  cfg.ImageEditVersion,
			ImageEditSlug:     cfg.ImageEditSlug,
			InpaintVersion:    cfg.InpaintVersion,
			InpaintSlug:       cfg.InpaintSlug,
			RembgVersion:      cfg.RembgVersion,
			RembgSlug:         cfg.RembgSlug,
			UpscaleVersion:    cfg.UpscaleVersion,
			UpscaleSlug:       cfg.UpscaleSlug,
			TextVideoVersion:  cfg.TextVideoVersion,
			TextVideoSlug:     cfg.TextVideoSlug,
			ImageVideoVersion: cfg.ImageVideoVersion,
			ImageVideoSlug:    cfg.ImageVideoSlug,
		},
		ImageBudget:      replicate.PollBudget{Interval: cfg.ImagePollInterval, MaxTries: cfg.ImagePollTries},
		VideoBudget:      replicate.PollBudget{Interval: cfg.VideoPollInterval, MaxTries: cfg.VideoPollTries},
		BatchConcurrency: cfg.BatchConcurrency,
		Logger:           &logger,
	})

	app := handlers.NewApp(orchestrator, captioner, logger)
	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
