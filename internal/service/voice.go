package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
)

const (
	// MaxVoiceSamples caps how many audio samples are submitted for voice
	// enrollment. Extra samples past the cap add cost without improving the
	// clone, so they are dropped rather than rejected.
	MaxVoiceSamples = 3

	voiceCloneTimeout = 180 * time.Second
)

// VoiceSample is one audio file submitted for voice enrollment.
type VoiceSample struct {
	FileName string
	Data     []byte
}

// VoiceService enrolls a creator's voice clone with the voice provider.
type VoiceService struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

// NewVoiceService creates a new VoiceService.
func NewVoiceService(cfg *config.VoiceConfig) *VoiceService {
	client := resty.New()
	client.SetTimeout(voiceCloneTimeout)

	return &VoiceService{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

type voiceAddResponse struct {
	VoiceID string `json:"voice_id"`
	Detail  *struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail,omitempty"`
}

// Clone submits up to MaxVoiceSamples audio samples and returns the provider's
// voice ID. Samples beyond the cap are silently dropped; an empty sample list
// is an input error since the provider rejects nameless enrollments anyway.
func (s *VoiceService) Clone(ctx context.Context, name string, samples []VoiceSample) (string, error) {
	if len(samples) == 0 {
		return "", domain.NewError(domain.ErrInputValidation, "voice enrollment needs at least one audio sample")
	}
	if len(samples) > MaxVoiceSamples {
		samples = samples[:MaxVoiceSamples]
	}

	req := s.client.R().
		SetContext(ctx).
		SetHeader("xi-api-key", s.apiKey).
		SetFormData(map[string]string{"name": name})
	for _, sample := range samples {
		req.SetFileReader("files", sample.FileName, bytes.NewReader(sample.Data))
	}

	var result voiceAddResponse
	resp, err := req.
		SetResult(&result).
		ForceContentType("application/json").
		Post(s.baseURL + "/v1/voices/add")
	if err != nil {
		return "", domain.NewRetryable(domain.ErrExternalService, err, "voice enrollment request failed")
	}

	if code := resp.StatusCode(); code != 200 {
		msg := fmt.Sprintf("HTTP %d", code)
		if result.Detail != nil {
			msg = fmt.Sprintf("HTTP %d: %s", code, result.Detail.Message)
		}
		if code == 429 || code >= 500 {
			return "", domain.NewRetryable(domain.ErrExternalService, fmt.Errorf("%s", msg), "voice provider is unavailable")
		}
		return "", domain.NewError(domain.ErrExternalService, "voice enrollment rejected: %s", msg)
	}

	if result.VoiceID == "" {
		return "", domain.NewError(domain.ErrExternalService, "voice provider returned no voice ID")
	}
	return result.VoiceID, nil
}
