package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestCreatePredictionRequiresToken(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.CreatePrediction(context.Background(), "abc123", map[string]any{"prompt": "x"})
	if !errors.Is(err, ErrMissingAPIToken) {
		t.Fatalf("err = %v, want ErrMissingAPIToken", err)
	}
}

func TestCreatePredictionRequiresVersion(t *testing.T) {
	client := NewClient(Options{APIToken: "test"})
	_, err := client.CreatePrediction(context.Background(), "  ", map[string]any{"prompt": "x"})
	if !errors.Is(err, ErrMissingVersion) {
		t.Fatalf("err = %v, want ErrMissingVersion", err)
	}
}

func TestCreatePredictionSubmitsVersionPayload(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/v1/predictions", map[string]any{
		"id":     "pred-1",
		"status": StatusStarting,
		"urls":   map[string]string{"get": "https://api.replicate.com/v1/predictions/pred-1"},
	})
	client := NewClient(Options{APIToken: "test", HTTPClient: &http.Client{Transport: transport}})

	pred, err := client.CreatePrediction(context.Background(), "abc123", map[string]any{"prompt": "a red bike"})
	if err != nil {
		t.Fatalf("create prediction: %v", err)
	}
	if pred.ID != "pred-1" {
		t.Fatalf("id = %q, want pred-1", pred.ID)
	}
	if pred.URLs.Get == "" {
		t.Fatalf("expected polling handle on submission")
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["version"] != "abc123" {
		t.Fatalf("version = %v, want abc123", payload["version"])
	}
	input := payload["input"].(map[string]any)
	if input["prompt"] != "a red bike" {
		t.Fatalf("input.prompt = %v", input["prompt"])
	}
	if got := transport.lastAuth; got != "Bearer test" {
		t.Fatalf("authorization = %q, want Bearer test", got)
	}
}

func TestCreateModelPredictionAddressesSlugEndpoint(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.setJSONResponse("/v1/models/stability-ai/sdxl/predictions", map[string]any{
		"id":     "pred-2",
		"status": StatusStarting,
	})
	client := NewClient(Options{APIToken: "test", HTTPClient: &http.Client{Transport: transport}})

	pred, err := client.CreateModelPrediction(context.Background(), "stability-ai/sdxl", map[string]any{"prompt": "p"})
	if err != nil {
		t.Fatalf("create model prediction: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if _, ok := payload["version"]; ok {
		t.Fatalf("version should be omitted for slug submissions")
	}
	if pred.URLs.Get != "https://api.replicate.com/v1/predictions/pred-2" {
		t.Fatalf("get url = %q, want synthesized handle", pred.URLs.Get)
	}
}

func TestGetPredictionSurfacesUpstreamStatus(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.responses["https://api.replicate.com/v1/predictions/pred-3"] = responseStub{
		status: http.StatusBadGateway,
		body:   []byte(`{"detail":"upstream exploded"}`),
	}
	client := NewClient(Options{APIToken: "test", HTTPClient: &http.Client{Transport: transport}})

	_, err := client.GetPrediction(context.Background(), "https://api.replicate.com/v1/predictions/pred-3")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "upstream exploded") {
		t.Fatalf("body %q should carry upstream detail", apiErr.Body)
	}
}

func TestPredictionErrorDetail(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"NSFW content detected"`, "NSFW content detected"},
		{"null", `null`, ""},
		{"object", `{"code":"E1"}`, `{"code":"E1"}`},
		{"empty", ``, ""},
	}
	for _, tc := range cases {
		p := &Prediction{Error: json.RawMessage(tc.raw)}
		if got := p.ErrorDetail(); got != tc.want {
			t.Fatalf("%s: detail = %q, want %q", tc.name, got, tc.want)
		}
	}
}

type captureTransport struct {
	responses map[string]responseStub
	lastBody  []byte
	lastAuth  string
}

type responseStub struct {
	status int
	header http.Header
	body   []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastAuth = req.Header.Get("Authorization")
	if req.Method == http.MethodPost {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
		if stub, ok := c.responses[req.URL.Path]; ok {
			return stub.toResponse(), nil
		}
	}
	if req.Method == http.MethodGet {
		if stub, ok := c.responses[req.URL.String()]; ok {
			return stub.toResponse(), nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

func (c *captureTransport) setJSONResponse(path string, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[path] = responseStub{
		status: http.StatusOK,
		header: http.Header{"Content-Type": []string{"application/json"}},
		body:   body,
	}
}

func (s responseStub) toResponse() *http.Response {
	header := http.Header{}
	for k, values := range s.header {
		cloned := make([]string, len(values))
		copy(cloned, values)
		header[k] = cloned
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(s.body)),
	}
}
