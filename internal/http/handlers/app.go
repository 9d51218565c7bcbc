package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mediaforge/internal/generation"
	"mediaforge/internal/infra"
	"mediaforge/internal/providers/caption"
	"mediaforge/internal/providers/replicate"
)

// App is the handler container; it owns the orchestrator and the caption
// façade and keeps route handlers thin.
type App struct {
	Orchestrator *generation.Orchestrator
	Captioner    *caption.Client
	Logger       infra.Logger
}

func NewApp(orchestrator *generation.Orchestrator, captioner *caption.Client, logger infra.Logger) *App {
	return &App{Orchestrator: orchestrator, Captioner: captioner, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{"error": kind, "message": message})
}

// generationError maps orchestrator failures onto HTTP responses, attaching
// the attempt log where one exists so callers can diagnose provider outages.
func (a *App) generationError(w http.ResponseWriter, err error) {
	var invalid *generation.InvalidInputError
	if errors.As(err, &invalid) {
		a.error(w, http.StatusBadRequest, "invalid_input", invalid.Error())
		return
	}
	if errors.Is(err, replicate.ErrMissingAPIToken) || errors.Is(err, replicate.ErrMissingVersion) || errors.Is(err, replicate.ErrMissingModel) {
		a.error(w, http.StatusServiceUnavailable, "misconfigured", err.Error())
		return
	}
	var exhausted *generation.ChainExhaustedError
	if errors.As(err, &exhausted) {
		a.json(w, http.StatusBadGateway, map[string]any{
			"error":    "all_candidates_failed",
			"message":  "every candidate model failed for this request",
			"attempts": exhausted.Attempts,
		})
		return
	}
	a.Logger.Error().Err(err).Msg("generation failed")
	a.error(w, http.StatusInternalServerError, "internal", "generation failed")
}
