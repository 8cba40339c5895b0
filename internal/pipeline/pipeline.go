package pipeline

import (
	"context"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/repository"
	"github.com/creatorly/styletrain/internal/service"
)

// TokenManager validates the stored access token and refreshes it when needed.
type TokenManager interface {
	Manage(ctx context.Context, accessToken, refreshToken string) (*service.TokenResult, error)
}

// VideoFetcher resolves user-supplied URLs into owned-video metadata.
type VideoFetcher interface {
	FetchVideos(ctx context.Context, urls []string, accessToken, channelID string) ([]domain.VideoRecord, error)
}

// AudioExtractor pulls the audio track of one video as an MP3 byte stream.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, sourceURL, videoID string) ([]byte, error)
}

// Inference is the generative provider surface the pipeline uses: one
// schema-constrained generation call per transcription and per analysis,
// plus text embedding.
type Inference interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}, out interface{}) (*service.GenerateResult, error)
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VoiceCloner enrolls a voice clone from audio samples.
type VoiceCloner interface {
	Clone(ctx context.Context, name string, samples []service.VoiceSample) (string, error)
}

// VectorIndex mirrors the style embedding into the similarity index.
// Index failures are logged but never fail a run.
type VectorIndex interface {
	UpsertStyleVector(ctx context.Context, userID string, vector []float32, payload *repository.StylePayload) error
}

// JobStore is the job-progress persistence surface.
type JobStore interface {
	MarkRunning(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, progress int, logLine string) error
	AppendLog(ctx context.Context, id string, logLine string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

// Pipeline orchestrates one style training run end to end. All provider
// dependencies are injected so stages can be exercised against fakes.
type Pipeline struct {
	cfg *config.Config

	jobs        JobStore
	credentials *repository.CredentialRepository
	profiles    *repository.ProfileRepository
	styles      *repository.StyleRepository
	voices      *repository.VoiceRepository
	vectors     VectorIndex

	tokens    TokenManager
	videos    VideoFetcher
	extractor AudioExtractor
	inference Inference
	voice     VoiceCloner
	store     AudioStore
}

// AudioStore persists extracted audio and returns a retrievable reference.
type AudioStore interface {
	UploadAudio(ctx context.Context, userID, videoID string, data []byte) (string, error)
}

// Deps bundles the pipeline's collaborators for construction.
type Deps struct {
	Config      *config.Config
	Jobs        JobStore
	Credentials *repository.CredentialRepository
	Profiles    *repository.ProfileRepository
	Styles      *repository.StyleRepository
	Voices      *repository.VoiceRepository
	Vectors     VectorIndex
	Tokens      TokenManager
	Videos      VideoFetcher
	Extractor   AudioExtractor
	Inference   Inference
	Voice       VoiceCloner
	Store       AudioStore
}

// New creates a Pipeline.
func New(d Deps) *Pipeline {
	return &Pipeline{
		cfg:         d.Config,
		jobs:        d.Jobs,
		credentials: d.Credentials,
		profiles:    d.Profiles,
		styles:      d.Styles,
		voices:      d.Voices,
		vectors:     d.Vectors,
		tokens:      d.Tokens,
		videos:      d.Videos,
		extractor:   d.Extractor,
		inference:   d.Inference,
		voice:       d.Voice,
		store:       d.Store,
	}
}
