package generation

import (
	"context"
	"errors"
	"strings"
)

// GenerateVideo runs the video-synthesis path. When the primary text-to-video
// chain fails or is unconfigured and a still-image chain is available, it
// degrades to a single still with an adapted prompt and relabels the artifact
// kind so callers can surface the substitution to the end user.
func (o *Orchestrator) GenerateVideo(ctx context.Context, req *Request) (*Artifact, error) {
	cctx, err := o.chainContext(req)
	if err != nil {
		return nil, err
	}

	if req.Action == ActionImageToVideo {
		res, err := o.runChain(ctx, o.imageToVideoCandidates(), cctx, o.videoBudget, PolicyFatal)
		if err != nil {
			return nil, err
		}
		return &Artifact{URL: res.URL, Kind: KindVideo, Attempts: res.Attempts}, nil
	}

	var attempts []Attempt
	if candidates := o.textToVideoCandidates(); len(candidates) > 0 {
		res, err := o.runChain(ctx, candidates, cctx, o.videoBudget, PolicySoft)
		if err != nil {
			return nil, err
		}
		if res.URL != "" {
			return &Artifact{URL: res.URL, Kind: KindVideo, Attempts: res.Attempts}, nil
		}
		attempts = res.Attempts
	}

	stillCandidates := o.textToImageCandidates(ChooseModel(req.Idea, req.Style, req.ModelHint))
	if len(stillCandidates) == 0 {
		return nil, &ChainExhaustedError{Attempts: attempts}
	}
	o.logger.Info().
		Int("video_attempts", len(attempts)).
		Msg("generation: video path unavailable, degrading to still image")

	stillCtx := *cctx
	stillCtx.Prompt = stillPrompt(cctx.Prompt)
	res, err := o.runChain(ctx, stillCandidates, &stillCtx, o.imageBudget, PolicyFatal)
	if err != nil {
		var exhausted *ChainExhaustedError
		if errors.As(err, &exhausted) {
			exhausted.Attempts = append(attempts, exhausted.Attempts...)
		}
		return nil, err
	}
	return &Artifact{
		URL:      res.URL,
		Kind:     KindFallbackImage,
		Attempts: append(attempts, res.Attempts...),
	}, nil
}

// stillPrompt minimally adapts a video prompt for single-frame synthesis.
func stillPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return prompt
	}
	return prompt + ", single high quality still frame"
}
