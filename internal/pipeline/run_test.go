package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/repository"
	"github.com/creatorly/styletrain/internal/service"
)

type fakeJobStore struct {
	progress  []int
	logs      []string
	running   bool
	completed bool
	failedMsg string
}

func (f *fakeJobStore) MarkRunning(ctx context.Context, id string) error {
	f.running = true
	return nil
}

func (f *fakeJobStore) UpdateProgress(ctx context.Context, id string, progress int, logLine string) error {
	f.progress = append(f.progress, progress)
	f.logs = append(f.logs, logLine)
	return nil
}

func (f *fakeJobStore) AppendLog(ctx context.Context, id string, logLine string) error {
	f.logs = append(f.logs, logLine)
	return nil
}

func (f *fakeJobStore) MarkCompleted(ctx context.Context, id string) error {
	f.completed = true
	return nil
}

func (f *fakeJobStore) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failedMsg = errMsg
	return nil
}

type fakeTokens struct {
	result service.TokenResult
	err    error
}

func (f *fakeTokens) Manage(ctx context.Context, accessToken, refreshToken string) (*service.TokenResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := f.result
	return &r, nil
}

type fakeVideos struct{}

func (f *fakeVideos) FetchVideos(ctx context.Context, urls []string, accessToken, channelID string) ([]domain.VideoRecord, error) {
	ids := service.ParseVideoIDs(urls)
	videos := make([]domain.VideoRecord, 0, len(ids))
	for _, id := range ids {
		videos = append(videos, domain.VideoRecord{
			ID:           id,
			ChannelID:    channelID,
			Title:        "Video " + id,
			ThumbnailURL: "https://thumbs.example/" + id + ".jpg",
		})
	}
	return videos, nil
}

type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) ExtractAudio(ctx context.Context, sourceURL, videoID string) ([]byte, error) {
	f.calls++
	return []byte("mp3-bytes-" + videoID), nil
}

type fakeInference struct {
	transcriptTokens int
	analysisTokens   int
	analysisErr      error
	analysisCalls    int
	embedErr         error
}

func (f *fakeInference) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema map[string]interface{}, out interface{}) (*service.GenerateResult, error) {
	switch v := out.(type) {
	case *domain.TranscriptAsset:
		v.TranscriptText = "hello everyone welcome back"
		v.Segments = []domain.TranscriptSegment{{Start: 0, End: 2, Text: "hello everyone"}}
		return &service.GenerateResult{TokensUsed: f.transcriptTokens}, nil
	case *domain.StyleAnalysis:
		f.analysisCalls++
		if f.analysisErr != nil {
			return nil, f.analysisErr
		}
		v.Tone = "energetic"
		v.Pacing = "fast"
		v.Themes = []string{"gaming"}
		v.Recommendations = domain.StyleRecommendations{UploadCadence: "weekly"}
		return &service.GenerateResult{TokensUsed: f.analysisTokens}, nil
	}
	return nil, errors.New("unexpected output type")
}

func (f *fakeInference) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	v := make([]float64, 768)
	v[0] = 3
	v[1] = 4
	return v, nil
}

type fakeVoice struct {
	samples int
}

func (f *fakeVoice) Clone(ctx context.Context, name string, samples []service.VoiceSample) (string, error) {
	f.samples = len(samples)
	return "voice-123", nil
}

type fakeAudioStore struct{}

func (f *fakeAudioStore) UploadAudio(ctx context.Context, userID, videoID string, data []byte) (string, error) {
	return "https://store.example/" + userID + "/" + videoID + ".mp3", nil
}

type fakeVectors struct {
	err   error
	calls int
}

func (f *fakeVectors) UpsertStyleVector(ctx context.Context, userID string, vector []float32, payload *repository.StylePayload) error {
	f.calls++
	return f.err
}

type pipelineFixture struct {
	pipe      *Pipeline
	jobs      *fakeJobStore
	inference *fakeInference
	voice     *fakeVoice
	vectors   *fakeVectors
	extractor *fakeExtractor
	profiles  *repository.ProfileRepository
	styles    *repository.StyleRepository
	creds     *repository.CredentialRepository
	db        *gorm.DB
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Inference.APIKey = "inf-key"
	cfg.Voice.APIKey = "voice-key"
	cfg.OAuth.ClientID = "client"
	cfg.OAuth.ClientSecret = "secret"
	cfg.Storage.AccessKey = "ak"
	cfg.Storage.SecretKey = "sk"
	cfg.Embedding.Dimensions = 768
	return cfg
}

func newFixture(t *testing.T, credits int) *pipelineFixture {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to init database: %v", err)
	}

	creds := repository.NewCredentialRepository(db)
	if err := creds.Upsert(context.Background(), &domain.ChannelCredential{
		UserID:       "user-1",
		ChannelID:    "chan-1",
		ChannelTitle: "Test Channel",
		AccessToken:  "stored-token",
		RefreshToken: "stored-refresh",
	}); err != nil {
		t.Fatalf("failed to seed credential: %v", err)
	}

	if err := db.Create(&domain.UserProfile{UserID: "user-1", Credits: credits}).Error; err != nil {
		t.Fatalf("failed to seed user profile: %v", err)
	}

	f := &pipelineFixture{
		jobs: &fakeJobStore{},
		inference: &fakeInference{
			transcriptTokens: 500,
			analysisTokens:   1000,
		},
		voice:     &fakeVoice{},
		vectors:   &fakeVectors{},
		extractor: &fakeExtractor{},
		profiles:  repository.NewProfileRepository(db),
		styles:    repository.NewStyleRepository(db),
		creds:     creds,
		db:        db,
	}

	f.pipe = New(Deps{
		Config:      testConfig(),
		Jobs:        f.jobs,
		Credentials: creds,
		Profiles:    f.profiles,
		Styles:      f.styles,
		Voices:      repository.NewVoiceRepository(db),
		Vectors:     f.vectors,
		Tokens:      &fakeTokens{result: service.TokenResult{AccessToken: "stored-token"}},
		Videos:      &fakeVideos{},
		Extractor:   f.extractor,
		Inference:   f.inference,
		Voice:       f.voice,
		Store:       &fakeAudioStore{},
	})
	return f
}

func testJob() *domain.TrainingJob {
	return &domain.TrainingJob{
		ID:     uuid.NewString(),
		UserID: "user-1",
		VideoURLs: []string{
			"https://youtu.be/aaaaaaaaaaa",
			"https://youtu.be/bbbbbbbbbbb",
			"https://youtu.be/ccccccccccc",
		},
		Status: domain.JobStatusQueued,
	}
}

func TestRun_HappyPath(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	if err := f.pipe.Run(ctx, testJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.jobs.completed {
		t.Error("job should be marked completed")
	}
	wantTrace := []int{0, 10, 20, 30, 60, 80, 100}
	if !reflect.DeepEqual(f.jobs.progress, wantTrace) {
		t.Errorf("progress trace = %v, want %v", f.jobs.progress, wantTrace)
	}

	// 3 videos at 500 tokens each plus 1000 analysis tokens is 2500 tokens,
	// so 3 credits, plus 1 credit for the voice clone rounded up from 0.75.
	profile, err := f.profiles.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	if profile.Credits != 6 {
		t.Errorf("expected 6 credits left, got %d", profile.Credits)
	}
	if !profile.AITrained {
		t.Error("expected trained flag to be set")
	}

	style, err := f.styles.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to load style profile: %v", err)
	}
	if style.Tone != "energetic" {
		t.Errorf("unexpected tone: %q", style.Tone)
	}
	if style.VoiceID != "voice-123" {
		t.Errorf("unexpected voice ID: %q", style.VoiceID)
	}
	if style.TokensConsumed != 2500 {
		t.Errorf("expected 2500 tokens consumed, got %d", style.TokensConsumed)
	}
	if style.CreditsConsumed != 4 {
		t.Errorf("expected 4 credits consumed, got %d", style.CreditsConsumed)
	}
	if len(style.Embedding) != 768 {
		t.Errorf("expected 768-dim embedding, got %d", len(style.Embedding))
	}

	// Transcripts are stored with their timed segments, not just the text.
	if len(style.Transcripts) != 3 {
		t.Fatalf("expected 3 transcript assets, got %d", len(style.Transcripts))
	}
	first := style.Transcripts[0]
	if first.VideoID != "aaaaaaaaaaa" {
		t.Errorf("unexpected transcript video ID: %q", first.VideoID)
	}
	if first.TranscriptText != "hello everyone welcome back" {
		t.Errorf("unexpected transcript text: %q", first.TranscriptText)
	}
	if len(first.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(first.Segments))
	}
	if seg := first.Segments[0]; seg.Text != "hello everyone" || seg.Start != 0 || seg.End != 2 {
		t.Errorf("segment timing must survive persistence, got %+v", seg)
	}

	// The voice row records only the clone share of the cost.
	var voiceRows []domain.VoiceProfile
	if err := f.db.Where("user_id = ?", "user-1").Find(&voiceRows).Error; err != nil {
		t.Fatalf("failed to load voice profiles: %v", err)
	}
	if len(voiceRows) != 1 {
		t.Fatalf("expected 1 voice profile row, got %d", len(voiceRows))
	}
	if voiceRows[0].CreditsConsumed != 1 {
		t.Errorf("expected 1 clone credit on the voice row, got %d", voiceRows[0].CreditsConsumed)
	}

	if f.voice.samples != 3 {
		t.Errorf("expected 3 voice samples, got %d", f.voice.samples)
	}
	if f.vectors.calls != 1 {
		t.Errorf("expected 1 vector upsert, got %d", f.vectors.calls)
	}
}

func TestRun_RetrainingKeepsSingleProfileRow(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()

	if err := f.pipe.Run(ctx, testJob()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	retrain := testJob()
	retrain.IsRetraining = true
	if err := f.pipe.Run(ctx, retrain); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	count, err := f.styles.CountByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to count profiles: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 style profile row, got %d", count)
	}
}

func TestRun_InsufficientCredits(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	err := f.pipe.Run(ctx, testJob())
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrInsufficientCredits {
		t.Errorf("expected insufficient_credits, got %s", domain.CodeOf(err))
	}
	if f.jobs.failedMsg == "" {
		t.Error("job should be marked failed")
	}
	if f.jobs.completed {
		t.Error("job must not be marked completed")
	}

	// The accounting failure happens after embedding: the last reported
	// milestone is 80, never 100.
	if last := f.jobs.progress[len(f.jobs.progress)-1]; last != 80 {
		t.Errorf("expected last milestone 80, got %d", last)
	}

	// No partial style profile may be written when accounting fails.
	count, err := f.styles.CountByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to count profiles: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no style profile rows, got %d", count)
	}

	profile, err := f.profiles.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	if profile.Credits != 1 {
		t.Errorf("balance must be untouched, got %d", profile.Credits)
	}
}

func TestRun_SchemaParseExhaustsRetries(t *testing.T) {
	f := newFixture(t, 10)
	f.inference.analysisErr = domain.NewRetryable(domain.ErrSchemaParse, nil, "malformed response")

	err := f.pipe.Run(context.Background(), testJob())
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrSchemaParse {
		t.Errorf("expected schema_parse, got %s", domain.CodeOf(err))
	}
	if f.inference.analysisCalls != 3 {
		t.Errorf("expected 3 analysis attempts, got %d", f.inference.analysisCalls)
	}
}

func TestRun_VectorIndexFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, 10)
	f.vectors.err = errors.New("index offline")

	if err := f.pipe.Run(context.Background(), testJob()); err != nil {
		t.Fatalf("index failure must not fail the run: %v", err)
	}
	if !f.jobs.completed {
		t.Error("job should still complete")
	}
}

func TestRun_TooFewParseableURLs(t *testing.T) {
	f := newFixture(t, 10)

	job := testJob()
	job.VideoURLs = []string{"https://youtu.be/aaaaaaaaaaa", "junk", "more junk"}

	err := f.pipe.Run(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrInputValidation {
		t.Errorf("expected input_validation, got %s", domain.CodeOf(err))
	}
	if f.extractor.calls != 0 {
		t.Error("no extraction may happen for an invalid request")
	}
}

func TestRun_RefreshedTokenIsPersisted(t *testing.T) {
	f := newFixture(t, 10)
	f.pipe.tokens = &fakeTokens{result: service.TokenResult{AccessToken: "fresh-token", Refreshed: true}}

	if err := f.pipe.Run(context.Background(), testJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cred, err := f.creds.GetByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("failed to load credential: %v", err)
	}
	if cred.AccessToken != "fresh-token" {
		t.Errorf("expected refreshed token to be stored, got %q", cred.AccessToken)
	}
}
