package handlers

import (
	"encoding/json"
	"net/http"

	"mediaforge/internal/generation"
)

type generateRequest struct {
	Idea        string   `json:"idea"`
	Style       string   `json:"style"`
	ModelHint   string   `json:"model_hint"`
	Action      string   `json:"action"`
	AspectRatio string   `json:"aspect_ratio"`
	SourceImage string   `json:"source_image"`
	MaskImage   string   `json:"mask_image"`
	Seed        *int     `json:"seed"`
	Strength    float64  `json:"strength"`
	Count       int      `json:"count"`
	SeedLock    bool     `json:"seed_lock"`
	Orbit       bool     `json:"orbit"`
	AngleLabels []string `json:"angle_labels"`
}

func (r generateRequest) toGeneration() *generation.Request {
	return &generation.Request{
		Idea:        r.Idea,
		Style:       r.Style,
		ModelHint:   r.ModelHint,
		Action:      generation.NormalizeAction(r.Action),
		AspectRatio: r.AspectRatio,
		SourceImage: r.SourceImage,
		MaskImage:   r.MaskImage,
		Seed:        r.Seed,
		Strength:    r.Strength,
		Count:       r.Count,
		SeedLock:    r.SeedLock,
		Orbit:       r.Orbit,
		AngleLabels: r.AngleLabels,
	}
}

// Generate serves single and batch image generation. Batch responses are
// structurally successful even when individual variants fail; clients must
// inspect per-task results.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	gr := req.toGeneration()
	switch gr.Action {
	case generation.ActionTextToVideo, generation.ActionImageToVideo:
		a.error(w, http.StatusBadRequest, "bad_request", "use /v1/videos for video actions")
		return
	}

	if req.Count > 1 {
		res := a.Orchestrator.RunBatch(r.Context(), gr)
		a.json(w, http.StatusOK, res)
		return
	}

	art, err := a.Orchestrator.Generate(r.Context(), gr)
	if err != nil {
		a.generationError(w, err)
		return
	}
	if art.URL == "" {
		// soft exhaustion: no candidate produced output, non-fatal by policy
		a.json(w, http.StatusBadGateway, map[string]any{
			"error":    "no_available_model",
			"message":  "no candidate model is currently available for this action",
			"attempts": art.Attempts,
		})
		return
	}
	a.json(w, http.StatusOK, art)
}
