package handlers

import (
	"encoding/json"
	"net/http"

	"mediaforge/internal/generation"
)

type videoRequest struct {
	Idea        string `json:"idea"`
	Style       string `json:"style"`
	ModelHint   string `json:"model_hint"`
	SourceImage string `json:"source_image"`
	AspectRatio string `json:"aspect_ratio"`
}

// GenerateVideo serves text-to-video and image-to-video. The response kind
// distinguishes a real video from a fallback still so clients never present
// a degraded artifact as the requested one.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	action := generation.ActionTextToVideo
	if req.SourceImage != "" {
		action = generation.ActionImageToVideo
	}
	art, err := a.Orchestrator.GenerateVideo(r.Context(), &generation.Request{
		Idea:        req.Idea,
		Style:       req.Style,
		ModelHint:   req.ModelHint,
		Action:      action,
		SourceImage: req.SourceImage,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		a.generationError(w, err)
		return
	}
	a.json(w, http.StatusOK, art)
}
