// Package datauri normalizes image payloads exchanged with inference
// providers: remote URLs pass through, inline base64 payloads are validated
// and repaired to a canonical data URI form.
package datauri

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnsupportedPayload reports an inline payload that cannot be repaired
// into a canonical data URI.
var ErrUnsupportedPayload = errors.New("datauri: payload is neither a URL nor valid base64 image data")

const defaultMIME = "image/png"

// IsRemote reports whether the payload is an absolute http(s) URL.
func IsRemote(payload string) bool {
	return strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://")
}

// Normalize validates an image payload before submission. Remote URLs pass
// through untouched. Inline payloads must carry the data URI base64 marker;
// a payload missing the marker is repaired to the canonical
// "data:<mime>;base64," form when its body decodes as base64, and rejected
// otherwise. Malformed payloads would otherwise fail far downstream with
// opaque provider errors.
func Normalize(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrUnsupportedPayload
	}
	if IsRemote(payload) {
		return payload, nil
	}

	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, body, found := strings.Cut(rest, ",")
		if !found || !validBase64(body) {
			return "", ErrUnsupportedPayload
		}
		mime, _, _ := strings.Cut(meta, ";")
		if mime == "" {
			mime = defaultMIME
		}
		if strings.HasSuffix(meta, ";base64") {
			return payload, nil
		}
		// marker missing; rebuild the canonical form
		return fmt.Sprintf("data:%s;base64,%s", mime, body), nil
	}

	if validBase64(payload) {
		return fmt.Sprintf("data:%s;base64,%s", defaultMIME, payload), nil
	}
	return "", ErrUnsupportedPayload
}

// FromURL fetches a remote image and converts it to an inline base64 data
// URI, for providers that require inline image data when the caller supplied
// a URL.
func FromURL(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if !IsRemote(url) {
		return "", fmt.Errorf("datauri: not a remote url: %s", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("datauri: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("datauri: fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("datauri: fetch status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("datauri: read image: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = defaultMIME
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

func validBase64(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}
