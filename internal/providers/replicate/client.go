package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediaforge/internal/infra"
)

// ErrMissingAPIToken indicates that the client was configured without credentials.
var ErrMissingAPIToken = errors.New("replicate: api token is required")

// ErrMissingVersion indicates a submission without a pinned model version.
var ErrMissingVersion = errors.New("replicate: model version is required")

// ErrMissingModel indicates a submission without a model slug.
var ErrMissingModel = errors.New("replicate: model slug is required")

// APIError reports a non-success HTTP status from the predictions API. The
// upstream status code and body are kept for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("replicate: status %d: %s", e.StatusCode, e.Body)
}

// Options configures the Replicate predictions client.
type Options struct {
	APIToken       string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Replicate predictions API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// Prediction statuses as reported by the API.
const (
	StatusStarting   = "starting"
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// PredictionURLs carries the handle references returned on submission.
type PredictionURLs struct {
	Get    string `json:"get"`
	Cancel string `json:"cancel"`
}

// Prediction is one submitted unit of work. Output stays raw until the
// extractor decodes it, since its shape varies per model.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
	URLs   PredictionURLs  `json:"urls"`
}

// Terminal reports whether the prediction reached a final state.
func (p *Prediction) Terminal() bool {
	switch p.Status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// ErrorDetail renders the upstream error field, which may be a JSON string,
// an object, or null.
func (p *Prediction) ErrorDetail() string {
	if len(p.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Error, &s); err == nil {
		return s
	}
	raw := strings.TrimSpace(string(p.Error))
	if raw == "null" {
		return ""
	}
	return raw
}

type predictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		token:      strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.token != ""
}

// CreatePrediction submits a job against a pinned model version.
func (c *Client) CreatePrediction(ctx context.Context, version string, input map[string]any) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIToken
	}
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, ErrMissingVersion
	}
	return c.create(ctx, c.baseURL+"/predictions", predictionRequest{Version: version, Input: input})
}

// CreateModelPrediction submits a job against a named model, implying its
// latest version.
func (c *Client) CreateModelPrediction(ctx context.Context, slug string, input map[string]any) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIToken
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrMissingModel
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, slug)
	return c.create(ctx, endpoint, predictionRequest{Input: input})
}

// GetPrediction performs one status read on the prediction's polling handle.
func (c *Client) GetPrediction(ctx context.Context, getURL string) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIToken
	}
	if strings.TrimSpace(getURL) == "" {
		return nil, errors.New("replicate: missing prediction handle")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req)
}

func (c *Client) create(ctx context.Context, endpoint string, payload predictionRequest) (*Prediction, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	pred, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if pred.URLs.Get == "" && pred.ID != "" {
		pred.URLs.Get = c.baseURL + "/predictions/" + pred.ID
	}
	c.logger.Debug().
		Str("prediction_id", pred.ID).
		Str("status", pred.Status).
		Str("endpoint", endpoint).
		Msg("replicate: submitted prediction")
	return pred, nil
}

func (c *Client) do(req *http.Request) (*Prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var pred Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	return &pred, nil
}
