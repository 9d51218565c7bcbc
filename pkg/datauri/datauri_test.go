package datauri

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePassesThroughRemoteURLs(t *testing.T) {
	got, err := Normalize("https://cdn.example.com/photo.jpg")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "https://cdn.example.com/photo.jpg" {
		t.Fatalf("got %q, want untouched url", got)
	}
}

func TestNormalizeAcceptsCanonicalDataURI(t *testing.T) {
	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8})
	got, err := Normalize(payload)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != payload {
		t.Fatalf("canonical payload should pass through, got %q", got)
	}
}

func TestNormalizeRepairsMissingMarker(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})

	got, err := Normalize("data:image/png," + body)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "data:image/png;base64,"+body {
		t.Fatalf("marker not repaired: %q", got)
	}

	got, err = Normalize(body)
	if err != nil {
		t.Fatalf("normalize bare base64: %v", err)
	}
	if got != "data:image/png;base64,"+body {
		t.Fatalf("bare payload not canonicalized: %q", got)
	}
}

func TestNormalizeRejectsUnrepairablePayloads(t *testing.T) {
	for _, payload := range []string{"", "   ", "not base64 at all!", "data:image/png;base64,###", "data:,"} {
		if _, err := Normalize(payload); !errors.Is(err, ErrUnsupportedPayload) {
			t.Fatalf("payload %q: err = %v, want ErrUnsupportedPayload", payload, err)
		}
	}
}

func TestFromURLProducesDataURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte{0x52, 0x49, 0x46, 0x46})
	}))
	defer server.Close()

	got, err := FromURL(context.Background(), server.Client(), server.URL+"/img.webp")
	if err != nil {
		t.Fatalf("from url: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/webp;base64,") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	body := strings.TrimPrefix(got, "data:image/webp;base64,")
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		t.Fatalf("body not base64: %v", err)
	}
	if len(decoded) != 4 {
		t.Fatalf("decoded length = %d, want 4", len(decoded))
	}
}

func TestFromURLRejectsNonRemote(t *testing.T) {
	if _, err := FromURL(context.Background(), nil, "file:///etc/passwd"); err == nil {
		t.Fatalf("expected error for non-remote url")
	}
}
