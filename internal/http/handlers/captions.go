package handlers

import (
	"encoding/json"
	"net/http"
)

type captionRequest struct {
	Idea     string `json:"idea"`
	Style    string `json:"style"`
	MaxChars int    `json:"max_chars"`
}

func (a *App) Caption(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text, err := a.Captioner.Caption(r.Context(), req.Idea, req.Style, req.MaxChars)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]string{"caption": text})
}
