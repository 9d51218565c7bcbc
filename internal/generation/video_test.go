package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGenerateVideoHappyPath(t *testing.T) {
	client := newFakeClient("https://cdn.example.com/clip.mp4")
	o := testOrchestrator(client)
	o.models.TextVideoVersion = "t2v-v1"

	art, err := o.GenerateVideo(context.Background(), &Request{Action: ActionTextToVideo, Idea: "waves at dawn"})
	if err != nil {
		t.Fatalf("generate video: %v", err)
	}
	if art.Kind != KindVideo {
		t.Fatalf("kind = %q, want video", art.Kind)
	}
	if art.URL != "https://cdn.example.com/clip.mp4" {
		t.Fatalf("url = %q", art.URL)
	}
}

func TestGenerateVideoDegradesToStillWhenUnconfigured(t *testing.T) {
	client := newFakeClient("https://cdn.example.com/still.jpg")
	o := testOrchestrator(client)
	// no text-video version or slug configured

	art, err := o.GenerateVideo(context.Background(), &Request{Action: ActionTextToVideo, Idea: "waves at dawn"})
	if err != nil {
		t.Fatalf("generate video: %v", err)
	}
	if art.Kind != KindFallbackImage {
		t.Fatalf("kind = %q, want fallback_image so callers can surface the substitution", art.Kind)
	}
	input := client.lastSeen["flux-v1"]
	prompt, _ := input["prompt"].(string)
	if !strings.Contains(prompt, "still") {
		t.Fatalf("still prompt not adapted: %q", prompt)
	}
}

func TestGenerateVideoDegradesToStillOnFailure(t *testing.T) {
	client := newFakeClient("https://cdn.example.com/still.jpg")
	client.fail["t2v-v1"] = fmt.Errorf("video backend down")
	o := testOrchestrator(client)
	o.models.TextVideoVersion = "t2v-v1"

	art, err := o.GenerateVideo(context.Background(), &Request{Action: ActionTextToVideo, Idea: "waves at dawn"})
	if err != nil {
		t.Fatalf("generate video: %v", err)
	}
	if art.Kind != KindFallbackImage {
		t.Fatalf("kind = %q, want fallback_image", art.Kind)
	}
	if len(art.Attempts) < 2 {
		t.Fatalf("attempt log should carry the failed video attempt plus the still attempt, got %+v", art.Attempts)
	}
	if art.Attempts[0].Candidate != "text-video@pinned" || art.Attempts[0].Err == "" {
		t.Fatalf("first attempt should be the failed video candidate, got %+v", art.Attempts[0])
	}
}

func TestGenerateImageToVideoNormalizesSource(t *testing.T) {
	client := newFakeClient("https://cdn.example.com/clip.mp4")
	o := testOrchestrator(client)
	o.models.ImageVideoVersion = "i2v-v1"

	// bare base64 payload gets repaired to a canonical data URI
	art, err := o.GenerateVideo(context.Background(), &Request{
		Action:      ActionImageToVideo,
		SourceImage: "aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("generate video: %v", err)
	}
	if art.Kind != KindVideo {
		t.Fatalf("kind = %q", art.Kind)
	}
	input := client.lastSeen["i2v-v1"]
	if img, _ := input["image"].(string); !strings.HasPrefix(img, "data:image/png;base64,") {
		t.Fatalf("source not repaired before submission: %q", img)
	}
}

func TestGenerateImageToVideoRejectsUnrepairableSource(t *testing.T) {
	client := newFakeClient("unused")
	o := testOrchestrator(client)
	o.models.ImageVideoVersion = "i2v-v1"

	_, err := o.GenerateVideo(context.Background(), &Request{
		Action:      ActionImageToVideo,
		SourceImage: "definitely not an image!!",
	})
	var inputErr *InvalidInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want *InvalidInputError", err)
	}
	if len(client.submits) != 0 {
		t.Fatalf("malformed source must be rejected before submission")
	}
}
