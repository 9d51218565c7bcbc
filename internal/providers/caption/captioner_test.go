package caption

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"
)

type stubTransport struct {
	status  int
	content string
	lastReq []byte
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	req.Body.Close()
	s.lastReq = body
	payload := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": s.content}},
		},
	}
	raw, _ := json.Marshal(payload)
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(string(raw))),
	}, nil
}

func TestCaptionExtractsJSONFromFencedReply(t *testing.T) {
	transport := &stubTransport{content: "Sure! Here you go:\n```json\n{\"caption\":\"Handmade ceramics, warm light.\"}\n```"}
	client := NewClient(Options{APIKey: "test", HTTPClient: &http.Client{Transport: transport}})

	got, err := client.Caption(context.Background(), "ceramic vase photo", "cinematic", 140)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if got != "Handmade ceramics, warm light." {
		t.Fatalf("caption = %q", got)
	}

	var reqPayload map[string]any
	if err := json.Unmarshal(transport.lastReq, &reqPayload); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	msgs := reqPayload["messages"].([]any)
	user := msgs[1].(map[string]any)["content"].(string)
	if !strings.Contains(user, "Cinematic") {
		t.Fatalf("style not title-cased into prompt: %q", user)
	}
}

func TestCaptionFallsBackWithoutCredential(t *testing.T) {
	client := NewClient(Options{})
	got, err := client.Caption(context.Background(), "fresh bread", "rustic", 140)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if !strings.Contains(got, "fresh bread") {
		t.Fatalf("static fallback should derive from the idea, got %q", got)
	}
}

func TestCaptionFallsBackOnUpstreamError(t *testing.T) {
	transport := &stubTransport{status: http.StatusTooManyRequests, content: "{}"}
	client := NewClient(Options{APIKey: "test", HTTPClient: &http.Client{Transport: transport}})

	got, err := client.Caption(context.Background(), "city at night", "", 140)
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if got == "" {
		t.Fatalf("expected static fallback caption")
	}
}

func TestTruncateRespectsBudget(t *testing.T) {
	long := strings.Repeat("sunlit bakery counter ", 20)
	got := Truncate(long, 60)
	if utf8.RuneCountInString(got) > 61 {
		t.Fatalf("truncated caption too long: %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncation marker missing: %q", got)
	}

	if got := Truncate("short", 60); got != "short" {
		t.Fatalf("under-budget text must pass through, got %q", got)
	}
}
