package generation

import "strings"

// Action enumerates the supported generation actions.
type Action string

const (
	ActionTextToImage      Action = "text_to_image"
	ActionImageToImage     Action = "image_to_image"
	ActionInpaint          Action = "inpaint"
	ActionRemoveBackground Action = "remove_background"
	ActionUpscale          Action = "upscale"
	ActionTextToVideo      Action = "text_to_video"
	ActionImageToVideo     Action = "image_to_video"
)

// NormalizeAction sanitizes free-form input into a supported action.
func NormalizeAction(action string) Action {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case string(ActionImageToImage), "img2img", "edit":
		return ActionImageToImage
	case string(ActionInpaint):
		return ActionInpaint
	case string(ActionRemoveBackground), "rembg":
		return ActionRemoveBackground
	case string(ActionUpscale):
		return ActionUpscale
	case string(ActionTextToVideo), "t2v":
		return ActionTextToVideo
	case string(ActionImageToVideo), "i2v":
		return ActionImageToVideo
	default:
		return ActionTextToImage
	}
}

// Request describes one user intent. The orchestrator borrows it read-only;
// callers keep ownership.
type Request struct {
	Idea        string
	Style       string
	ModelHint   string
	AspectRatio string
	Action      Action

	// Source and mask payloads are either remote URLs or inline base64
	// data URIs.
	SourceImage string
	MaskImage   string

	Seed     *int
	Strength float64

	Count       int
	SeedLock    bool
	Orbit       bool
	AngleLabels []string
}

// ArtifactKind labels what kind of media a generation produced. A fallback
// image is a still produced in place of a requested video; callers must
// surface that distinction to the end user.
type ArtifactKind string

const (
	KindImage         ArtifactKind = "image"
	KindVideo         ArtifactKind = "video"
	KindFallbackImage ArtifactKind = "fallback_image"
)

// Artifact is a finished generation: the media URL plus the per-candidate
// attempt log that produced it.
type Artifact struct {
	URL      string       `json:"url"`
	Kind     ArtifactKind `json:"kind"`
	Attempts []Attempt    `json:"attempts,omitempty"`
}

// Task is one derived variant of a batch request.
type Task struct {
	Index    int
	Prompt   string
	Strength float64
	Seed     int

	SourceImage string
	MaskImage   string
}

// TaskResult is the outcome of one batch task.
type TaskResult struct {
	Index int    `json:"index"`
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Err   string `json:"error,omitempty"`
}

// BatchResult aggregates per-task outcomes in original request order. OK is
// true whenever the run completed, independent of individual task success;
// callers must inspect Results for partial failure.
type BatchResult struct {
	OK       bool         `json:"ok"`
	FirstURL string       `json:"first_url,omitempty"`
	Results  []TaskResult `json:"results"`
}
