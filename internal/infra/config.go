package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	ReplicateAPIToken string
	ReplicateBaseURL  string

	// Pinned inference graph versions. Empty means "no version pinned for
	// this capability"; the orchestrator then addresses the named model
	// (slug) directly, or skips the capability entirely when the slug is
	// empty too.
	FluxVersion       string
	SDXLVersion       string
	ImageEditVersion  string
	InpaintVersion    string
	RembgVersion      string
	UpscaleVersion    string
	TextVideoVersion  string
	ImageVideoVersion string

	FluxSlug       string
	SDXLSlug       string
	ImageEditSlug  string
	InpaintSlug    string
	RembgSlug      string
	UpscaleSlug    string
	TextVideoSlug  string
	ImageVideoSlug string

	ImagePollInterval time.Duration
	ImagePollTries    int
	VideoPollInterval time.Duration
	VideoPollTries    int

	BatchConcurrency int

	CaptionAPIKey  string
	CaptionModel   string
	CaptionBaseURL string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),

		FluxVersion:       os.Getenv("REPLICATE_FLUX_VERSION"),
		SDXLVersion:       os.Getenv("REPLICATE_SDXL_VERSION"),
		ImageEditVersion:  os.Getenv("REPLICATE_IMAGE_EDIT_VERSION"),
		InpaintVersion:    os.Getenv("REPLICATE_INPAINT_VERSION"),
		RembgVersion:      os.Getenv("REPLICATE_REMBG_VERSION"),
		UpscaleVersion:    os.Getenv("REPLICATE_UPSCALE_VERSION"),
		TextVideoVersion:  os.Getenv("REPLICATE_TEXT_VIDEO_VERSION"),
		ImageVideoVersion: os.Getenv("REPLICATE_IMAGE_VIDEO_VERSION"),

		FluxSlug:       getEnv("REPLICATE_FLUX_SLUG", "black-forest-labs/flux-1.1-pro"),
		SDXLSlug:       getEnv("REPLICATE_SDXL_SLUG", "stability-ai/sdxl"),
		ImageEditSlug:  getEnv("REPLICATE_IMAGE_EDIT_SLUG", "stability-ai/sdxl"),
		InpaintSlug:    getEnv("REPLICATE_INPAINT_SLUG", "stability-ai/stable-diffusion-inpainting"),
		RembgSlug:      getEnv("REPLICATE_REMBG_SLUG", "851-labs/background-remover"),
		UpscaleSlug:    getEnv("REPLICATE_UPSCALE_SLUG", "nightmareai/real-esrgan"),
		TextVideoSlug:  os.Getenv("REPLICATE_TEXT_VIDEO_SLUG"),
		ImageVideoSlug: os.Getenv("REPLICATE_IMAGE_VIDEO_SLUG"),

		ImagePollInterval: time.Millisecond * time.Duration(getEnvInt("IMAGE_POLL_INTERVAL_MS", 1200)),
		ImagePollTries:    getEnvInt("IMAGE_POLL_TRIES", 100),
		VideoPollInterval: time.Millisecond * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_MS", 1500)),
		VideoPollTries:    getEnvInt("VIDEO_POLL_TRIES", 240),

		BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 2),

		CaptionAPIKey:  os.Getenv("CAPTION_API_KEY"),
		CaptionModel:   getEnv("CAPTION_MODEL", "gpt-4o-mini"),
		CaptionBaseURL: getEnv("CAPTION_BASE_URL", "https://api.openai.com/v1"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
