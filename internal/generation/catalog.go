package generation

// ModelConfig carries the backend identities configured per capability:
// an optional pinned version and an optional named slug. The version is
// always preferred; the slug serves as the fallback tier.
type ModelConfig struct {
	FluxVersion string
	FluxSlug    string
	SDXLVersion string
	SDXLSlug    string

	ImageEditVersion string
	ImageEditSlug    string
	InpaintVersion   string
	InpaintSlug      string
	RembgVersion     string
	RembgSlug        string
	UpscaleVersion   string
	UpscaleSlug      string

	TextVideoVersion  string
	TextVideoSlug     string
	ImageVideoVersion string
	ImageVideoSlug    string
}

// versionSlugPair expands one capability into its ordered candidate tiers.
func versionSlugPair(id, version, slug string, build func(*ChainContext) map[string]any) []Candidate {
	var out []Candidate
	if version != "" {
		out = append(out, Candidate{ID: id + "@pinned", Version: version, BuildInput: build})
	}
	if slug != "" {
		out = append(out, Candidate{ID: slug, Slug: slug, BuildInput: build})
	}
	return out
}

func (o *Orchestrator) textToImageCandidates(key ModelKey) []Candidate {
	primary, alternate := ModelFlux, ModelSDXL
	if key == ModelSDXL {
		primary, alternate = ModelSDXL, ModelFlux
	}
	cands := o.modelCandidates(primary)
	return append(cands, o.modelCandidates(alternate)...)
}

func (o *Orchestrator) modelCandidates(key ModelKey) []Candidate {
	switch key {
	case ModelSDXL:
		return versionSlugPair("sdxl", o.models.SDXLVersion, o.models.SDXLSlug, sdxlInput)
	default:
		return versionSlugPair("flux", o.models.FluxVersion, o.models.FluxSlug, fluxInput)
	}
}

func (o *Orchestrator) imageEditCandidates() []Candidate {
	return versionSlugPair("image-edit", o.models.ImageEditVersion, o.models.ImageEditSlug, imageEditInput)
}

func (o *Orchestrator) inpaintCandidates() []Candidate {
	return versionSlugPair("inpaint", o.models.InpaintVersion, o.models.InpaintSlug, inpaintInput)
}

func (o *Orchestrator) removeBackgroundCandidates() []Candidate {
	return versionSlugPair("rembg", o.models.RembgVersion, o.models.RembgSlug, sourceOnlyInput)
}

func (o *Orchestrator) upscaleCandidates() []Candidate {
	return versionSlugPair("upscale", o.models.UpscaleVersion, o.models.UpscaleSlug, upscaleInput)
}

func (o *Orchestrator) textToVideoCandidates() []Candidate {
	return versionSlugPair("text-video", o.models.TextVideoVersion, o.models.TextVideoSlug, textVideoInput)
}

func (o *Orchestrator) imageToVideoCandidates() []Candidate {
	return versionSlugPair("image-video", o.models.ImageVideoVersion, o.models.ImageVideoSlug, imageVideoInput)
}

func fluxInput(c *ChainContext) map[string]any {
	in := map[string]any{
		"prompt":           c.Prompt,
		"aspect_ratio":     aspectOrDefault(c.AspectRatio),
		"output_format":    "jpg",
		"safety_tolerance": 2,
	}
	if c.Seed != nil {
		in["seed"] = *c.Seed
	}
	return in
}

func sdxlInput(c *ChainContext) map[string]any {
	width, height := AspectRatioSize(c.AspectRatio)
	in := map[string]any{
		"prompt":      c.Prompt,
		"width":       width,
		"height":      height,
		"num_outputs": 1,
	}
	if c.Seed != nil {
		in["seed"] = *c.Seed
	}
	return in
}

func imageEditInput(c *ChainContext) map[string]any {
	in := map[string]any{
		"prompt":          c.Prompt,
		"image":           c.SourceImage,
		"prompt_strength": c.Strength,
		"num_outputs":     1,
	}
	if c.Seed != nil {
		in["seed"] = *c.Seed
	}
	return in
}

func inpaintInput(c *ChainContext) map[string]any {
	in := map[string]any{
		"prompt": c.Prompt,
		"image":  c.SourceImage,
		"mask":   c.MaskImage,
	}
	if c.Seed != nil {
		in["seed"] = *c.Seed
	}
	return in
}

func sourceOnlyInput(c *ChainContext) map[string]any {
	return map[string]any{"image": c.SourceImage}
}

func upscaleInput(c *ChainContext) map[string]any {
	return map[string]any{
		"image":        c.SourceImage,
		"scale":        2,
		"face_enhance": false,
	}
}

func textVideoInput(c *ChainContext) map[string]any {
	return map[string]any{
		"prompt":           c.Prompt,
		"prompt_optimizer": true,
	}
}

func imageVideoInput(c *ChainContext) map[string]any {
	in := map[string]any{"image": c.SourceImage}
	if c.Prompt != "" {
		in["prompt"] = c.Prompt
	}
	return in
}

func aspectOrDefault(aspect string) string {
	switch aspect {
	case "16:9", "4:3", "3:4", "9:16", "1:1":
		return aspect
	default:
		return "1:1"
	}
}

// AspectRatioSize maps an aspect ratio string to pixel dimensions for models
// that take explicit width and height.
func AspectRatioSize(aspect string) (int, int) {
	switch aspect {
	case "16:9":
		return 1344, 768
	case "4:3":
		return 1152, 896
	case "3:4":
		return 896, 1152
	case "9:16":
		return 768, 1344
	default:
		return 1024, 1024
	}
}
