// Package caption is a thin façade over a chat-completion service that turns
// a creative idea into short user-facing marketing copy. It makes exactly one
// request per call, extracts the JSON fragment from the model's reply, and
// truncates the result to a character budget.
package caption

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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediaforge/internal/infra"
)

const defaultTimeout = 15 * time.Second

// Options configures the caption client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type captionPayload struct {
	Caption string `json:"caption"`
}

// NewClient constructs a caption client with sane defaults.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Caption produces one caption for the idea, truncated to maxChars. When no
// credential is configured, or the remote call fails, it falls back to a
// static caption derived from the idea itself so callers always get usable
// copy.
func (c *Client) Caption(ctx context.Context, idea, style string, maxChars int) (string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", errors.New("caption: idea is required")
	}
	if maxChars <= 0 {
		maxChars = 140
	}
	if c.apiKey == "" {
		return Truncate(staticCaption(idea, style), maxChars), nil
	}

	payload := chatRequest{
		Model:          c.model,
		Temperature:    0.7,
		ResponseFormat: &chatFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: "You are a concise copywriter that only responds with valid JSON."},
			{Role: "user", Content: buildCaptionPrompt(idea, style, maxChars)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("caption: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", fmt.Errorf("caption: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("caption: request failed, using static fallback")
		return Truncate(staticCaption(idea, style), maxChars), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("caption: upstream error, using static fallback")
		return Truncate(staticCaption(idea, style), maxChars), nil
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("caption: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return Truncate(staticCaption(idea, style), maxChars), nil
	}

	parsed, err := parsePayload(out.Choices[0].Message.Content)
	if err != nil || strings.TrimSpace(parsed.Caption) == "" {
		c.logger.Warn().Err(err).Msg("caption: unusable payload, using static fallback")
		return Truncate(staticCaption(idea, style), maxChars), nil
	}
	return Truncate(strings.TrimSpace(parsed.Caption), maxChars), nil
}

func buildCaptionPrompt(idea, style string, maxChars int) string {
	sb := &strings.Builder{}
	sb.WriteString(`Write one short caption. Respond strictly as JSON: {"caption":string}. `)
	fmt.Fprintf(sb, "Subject: %q.", idea)
	if style != "" {
		fmt.Fprintf(sb, " Tone: %s.", cases.Title(language.Und).String(strings.ToLower(style)))
	}
	fmt.Fprintf(sb, " Hard limit: %d characters.", maxChars)
	return sb.String()
}

func staticCaption(idea, style string) string {
	if style == "" {
		return idea
	}
	return fmt.Sprintf("%s (%s)", idea, cases.Title(language.Und).String(strings.ToLower(style)))
}

func parsePayload(raw string) (*captionPayload, error) {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return nil, errors.New("caption: empty payload")
	}
	var decoded captionPayload
	if err := json.Unmarshal([]byte(fragment), &decoded); err != nil {
		return nil, fmt.Errorf("caption: parse payload: %w", err)
	}
	return &decoded, nil
}

// extractJSONFragment strips code fences and surrounding prose, keeping the
// outermost JSON object.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// Truncate enforces the character budget at a rune boundary, cutting back to
// the last space when one is close enough to avoid splitting a word.
func Truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	cut := string(runes[:maxChars])
	if idx := strings.LastIndex(cut, " "); idx > maxChars/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-") + "…"
}
