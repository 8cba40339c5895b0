package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
)

func sampleSet(n int) []VoiceSample {
	samples := make([]VoiceSample, n)
	for i := range samples {
		samples[i] = VoiceSample{FileName: "clip.mp3", Data: []byte("audio")}
	}
	return samples
}

func TestVoiceClone(t *testing.T) {
	var gotFiles int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("xi-api-key"); got != "voice-key" {
			t.Errorf("unexpected API key header: %q", got)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("bad multipart form: %v", err)
		}
		if name := r.FormValue("name"); name == "" {
			t.Error("enrollment must carry a name")
		}
		gotFiles = len(r.MultipartForm.File["files"])
		w.Write([]byte(`{"voice_id":"voice-abc"}`))
	}))
	defer server.Close()

	svc := NewVoiceService(&config.VoiceConfig{APIKey: "voice-key", BaseURL: server.URL})

	// Five samples offered, only three may be submitted.
	voiceID, err := svc.Clone(context.Background(), "Creator Voice", sampleSet(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voiceID != "voice-abc" {
		t.Errorf("unexpected voice ID: %q", voiceID)
	}
	if gotFiles != MaxVoiceSamples {
		t.Errorf("expected %d files, got %d", MaxVoiceSamples, gotFiles)
	}
}

func TestVoiceClone_NoSamples(t *testing.T) {
	svc := NewVoiceService(&config.VoiceConfig{APIKey: "k", BaseURL: "http://unused"})

	_, err := svc.Clone(context.Background(), "Creator Voice", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrInputValidation {
		t.Errorf("expected input_validation, got %s", domain.CodeOf(err))
	}
}

func TestVoiceClone_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":{"status":"invalid_samples","message":"audio too short"}}`))
	}))
	defer server.Close()

	svc := NewVoiceService(&config.VoiceConfig{APIKey: "k", BaseURL: server.URL})

	_, err := svc.Clone(context.Background(), "Creator Voice", sampleSet(1))
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsRetryable(err) {
		t.Error("a 422 rejection should not be retryable")
	}
}
