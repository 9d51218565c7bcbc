package generation

import (
	"context"
	"strings"

	"mediaforge/pkg/datauri"
)

const defaultStrength = 0.6

// Generate runs one single-output request through its action's fallback
// chain and returns the normalized artifact. Video actions are delegated to
// the degradation cascade.
func (o *Orchestrator) Generate(ctx context.Context, req *Request) (*Artifact, error) {
	switch req.Action {
	case ActionTextToVideo, ActionImageToVideo:
		return o.GenerateVideo(ctx, req)
	}

	cctx, err := o.chainContext(req)
	if err != nil {
		return nil, err
	}
	candidates, policy := o.imageAction(req, cctx)
	res, err := o.RunChain(ctx, candidates, cctx, policy)
	if err != nil {
		return nil, err
	}
	return &Artifact{URL: res.URL, Kind: KindImage, Attempts: res.Attempts}, nil
}

// imageAction resolves the candidate chain and exhaustion policy for a
// non-video action. Upscaling treats exhaustion as a soft "no available
// model" result; everything else is fatal.
func (o *Orchestrator) imageAction(req *Request, cctx *ChainContext) ([]Candidate, ExhaustionPolicy) {
	switch req.Action {
	case ActionImageToImage:
		return o.imageEditCandidates(), PolicyFatal
	case ActionInpaint:
		return o.inpaintCandidates(), PolicyFatal
	case ActionRemoveBackground:
		return o.removeBackgroundCandidates(), PolicyFatal
	case ActionUpscale:
		return o.upscaleCandidates(), PolicySoft
	default:
		return o.textToImageCandidates(ChooseModel(req.Idea, req.Style, req.ModelHint)), PolicyFatal
	}
}

// chainContext builds the provider-neutral chain context, normalizing source
// payloads up front so malformed images fail fast instead of surfacing as
// opaque provider errors downstream.
func (o *Orchestrator) chainContext(req *Request) (*ChainContext, error) {
	cctx := &ChainContext{
		Prompt:      strings.TrimSpace(req.Idea),
		AspectRatio: req.AspectRatio,
		Seed:        req.Seed,
		Strength:    req.Strength,
	}
	if cctx.Strength <= 0 {
		cctx.Strength = defaultStrength
	}

	if actionNeedsSource(req.Action) {
		src, err := normalizeSource(req.SourceImage, "source image")
		if err != nil {
			return nil, err
		}
		cctx.SourceImage = src
	}
	if req.Action == ActionInpaint {
		mask, err := normalizeSource(req.MaskImage, "mask image")
		if err != nil {
			return nil, err
		}
		cctx.MaskImage = mask
	}
	return cctx, nil
}

func actionNeedsSource(action Action) bool {
	switch action {
	case ActionImageToImage, ActionInpaint, ActionRemoveBackground, ActionUpscale, ActionImageToVideo:
		return true
	}
	return false
}

func normalizeSource(payload, field string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", &InvalidInputError{Field: field, Reason: "required but missing"}
	}
	normalized, err := datauri.Normalize(payload)
	if err != nil {
		return "", &InvalidInputError{Field: field, Reason: err.Error()}
	}
	return normalized, nil
}
