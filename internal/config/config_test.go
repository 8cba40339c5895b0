package config

import (
	"strings"
	"testing"

	"github.com/creatorly/styletrain/internal/domain"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Inference.APIKey = "inf"
	cfg.Voice.APIKey = "voice"
	cfg.OAuth.ClientID = "id"
	cfg.OAuth.ClientSecret = "secret"
	cfg.Storage.AccessKey = "ak"
	cfg.Storage.SecretKey = "sk"
	cfg.Embedding.Dimensions = 768
	return cfg
}

func TestValidate_Complete(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_NamesAllMissingSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Inference.APIKey = ""
	cfg.Voice.APIKey = ""
	cfg.OAuth.ClientSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrEnvironmentConfig {
		t.Errorf("expected environment_config, got %s", domain.CodeOf(err))
	}

	// The gate reports every missing setting at once, not just the first.
	msg := err.Error()
	for _, want := range []string{"INFERENCE_API_KEY", "VOICE_API_KEY", "OAUTH_CLIENT_SECRET"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should name %s, got: %s", want, msg)
		}
	}
	if strings.Contains(msg, "OAUTH_CLIENT_ID") {
		t.Errorf("error should not name settings that are present: %s", msg)
	}
}

func TestValidate_DimensionsRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Dimensions = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero dimensions")
	}
}
