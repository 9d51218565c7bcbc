package generation

import "strings"

// ModelKey identifies a backend model family.
type ModelKey string

const (
	// ModelSDXL is the faster, more stylable model.
	ModelSDXL ModelKey = "sdxl"
	// ModelFlux is the higher-fidelity model.
	ModelFlux ModelKey = "flux"
)

var styleAssociations = map[string]ModelKey{
	"illustrated":  ModelSDXL,
	"illustration": ModelSDXL,
	"cartoon":      ModelSDXL,
	"anime":        ModelSDXL,
	"watercolor":   ModelSDXL,
	"sketch":       ModelSDXL,
	"flat":         ModelSDXL,
	"photographic": ModelFlux,
	"photo":        ModelFlux,
	"realistic":    ModelFlux,
	"cinematic":    ModelFlux,
	"futuristic":   ModelFlux,
}

// lightheartedKeywords routes promotional or playful ideas to the stylable
// model when neither a hint nor a style decides.
var lightheartedKeywords = []string{
	"fun", "funny", "cute", "cartoon", "mascot", "sticker",
	"party", "birthday", "sale", "promo", "discount", "giveaway",
}

// ChooseModel maps a request's free-text idea, declared style, and explicit
// hint to a backend model key. Precedence: a valid explicit hint wins, then a
// known style association, then a lexical scan of the idea. The function is
// pure and total; unknown inputs fall through to the high-fidelity default.
func ChooseModel(idea, style, hint string) ModelKey {
	switch ModelKey(strings.ToLower(strings.TrimSpace(hint))) {
	case ModelSDXL:
		return ModelSDXL
	case ModelFlux:
		return ModelFlux
	}

	if key, ok := styleAssociations[strings.ToLower(strings.TrimSpace(style))]; ok {
		return key
	}

	lowered := strings.ToLower(idea)
	for _, kw := range lightheartedKeywords {
		if strings.Contains(lowered, kw) {
			return ModelSDXL
		}
	}
	return ModelFlux
}
