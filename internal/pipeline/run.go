package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/creatorly/styletrain/internal/domain"
	"github.com/creatorly/styletrain/internal/logger"
	"github.com/creatorly/styletrain/internal/prompts"
	"github.com/creatorly/styletrain/internal/repository"
	"github.com/creatorly/styletrain/internal/retry"
	"github.com/creatorly/styletrain/internal/service"
)

// analysisRetryPolicy bounds the structured analysis and embedding calls:
// three attempts with a flat two-second pause, retrying only errors the
// provider marked transient.
var analysisRetryPolicy = retry.Policy{
	MaxAttempts: 3,
	Delay:       2 * time.Second,
	Backoff:     retry.BackoffFlat,
}

// extraction is the intermediate product of the asset stage, handed to the
// analysis and persistence stages.
type extraction struct {
	transcripts []domain.TranscriptAsset
	audioRefs   []string
	voiceID     string
	clones      int
	tokensUsed  int
}

// Run executes one training job to completion or failure. The job is
// attempted exactly once; on error it is marked failed with the error
// message and never re-enqueued.
func (p *Pipeline) Run(ctx context.Context, job *domain.TrainingJob) error {
	ctx = logger.SetJobID(ctx, job.ID)
	ctx = logger.SetUserID(ctx, job.UserID)
	ctx = logger.SetComponent(ctx, "pipeline")

	if err := p.jobs.MarkRunning(ctx, job.ID); err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to mark job running")
	}

	tracker := &progressTracker{jobs: p.jobs, jobID: job.ID, last: -1}

	if err := p.run(ctx, job, tracker); err != nil {
		logger.CtxError(ctx, "training run failed: %v", err)
		if markErr := p.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			logger.CtxError(ctx, "failed to record job failure: %v", markErr)
		}
		return err
	}

	if err := p.jobs.MarkCompleted(ctx, job.ID); err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to mark job completed")
	}
	logger.CtxInfo(ctx, "training run completed")
	return nil
}

func (p *Pipeline) run(ctx context.Context, job *domain.TrainingJob, tracker *progressTracker) error {
	// Stage: validating.
	if err := tracker.advance(ctx, StageValidating); err != nil {
		return err
	}
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	ids := service.ParseVideoIDs(job.VideoURLs)
	if len(ids) < service.MinTrainingVideos {
		return domain.NewError(domain.ErrInputValidation,
			"need at least %d valid video URLs, got %d", service.MinTrainingVideos, len(ids))
	}

	// Stage: fetching credentials.
	if err := tracker.advance(ctx, StageFetchingCredentials); err != nil {
		return err
	}
	cred, err := p.credentials.GetByUserID(ctx, job.UserID)
	if err != nil {
		return err
	}
	token, err := p.tokens.Manage(ctx, cred.AccessToken, cred.RefreshToken)
	if err != nil {
		return err
	}
	if token.Refreshed {
		if err := p.credentials.UpdateAccessToken(ctx, job.UserID, token.AccessToken); err != nil {
			return err
		}
		logger.CtxInfo(ctx, "access token refreshed")
	}

	// Stage: fetching videos.
	if err := tracker.advance(ctx, StageFetchingVideos); err != nil {
		return err
	}
	videos, err := p.videos.FetchVideos(ctx, job.VideoURLs, token.AccessToken, cred.ChannelID)
	if err != nil {
		return err
	}
	logger.CtxInfo(ctx, "fetched metadata for %d videos", len(videos))

	// Stage: extracting assets.
	if err := tracker.advance(ctx, StageExtractingAssets); err != nil {
		return err
	}
	assets, err := p.extractAssets(ctx, job, cred, videos, tracker)
	if err != nil {
		return err
	}

	// Stage: analyzing style.
	if err := tracker.advance(ctx, StageAnalyzingStyle); err != nil {
		return err
	}
	analysis, analysisTokens, err := p.analyzeStyle(ctx, cred.ChannelTitle, videos, assets.transcripts)
	if err != nil {
		return err
	}
	totalTokens := assets.tokensUsed + analysisTokens

	// Stage: embedding.
	if err := tracker.advance(ctx, StageEmbedding); err != nil {
		return err
	}
	embedding, err := p.embedStyle(ctx, analysis)
	if err != nil {
		return err
	}

	// Stage: persisting (same reported milestone as embedding).
	if err := tracker.advance(ctx, StagePersisting); err != nil {
		return err
	}
	if err := p.persist(ctx, job, videos, analysis, embedding, assets, totalTokens); err != nil {
		return err
	}

	return tracker.advance(ctx, StageCompleted)
}

// extractAssets processes videos sequentially: extract audio, archive it,
// transcribe it against the transcript schema, then enroll the voice clone
// from the first few samples. Any per-video failure fails the whole stage;
// there is no per-video retry.
func (p *Pipeline) extractAssets(ctx context.Context, job *domain.TrainingJob, cred *domain.ChannelCredential, videos []domain.VideoRecord, tracker *progressTracker) (*extraction, error) {
	result := &extraction{
		transcripts: make([]domain.TranscriptAsset, 0, len(videos)),
		audioRefs:   make([]string, 0, len(videos)),
	}
	samples := make([]service.VoiceSample, 0, service.MaxVoiceSamples)

	for i, video := range videos {
		sourceURL := service.WatchURL(video.ID)

		audio, err := p.extractor.ExtractAudio(ctx, sourceURL, video.ID)
		if err != nil {
			return nil, err
		}

		audioRef, err := p.store.UploadAudio(ctx, job.UserID, video.ID, audio)
		if err != nil {
			return nil, err
		}
		result.audioRefs = append(result.audioRefs, audioRef)

		var asset domain.TranscriptAsset
		gen, err := p.inference.GenerateStructured(ctx,
			prompts.TranscriptionSystemPrompt,
			prompts.TranscriptionPrompt(video.ID, sourceURL, audioRef),
			prompts.TranscriptionSchema(),
			&asset)
		if err != nil {
			return nil, err
		}
		asset.VideoID = video.ID
		result.transcripts = append(result.transcripts, asset)
		result.tokensUsed += gen.TokensUsed

		if len(samples) < service.MaxVoiceSamples {
			samples = append(samples, service.VoiceSample{
				FileName: video.ID + ".mp3",
				Data:     audio,
			})
		}

		if err := tracker.log(ctx, fmt.Sprintf("Processed video %d/%d (%s)", i+1, len(videos), video.ID)); err != nil {
			return nil, err
		}
	}

	voiceName := strings.TrimSpace(cred.ChannelTitle)
	if voiceName == "" {
		voiceName = job.UserID
	}
	voiceID, err := p.voice.Clone(ctx, voiceName+" Voice", samples)
	if err != nil {
		return nil, err
	}
	result.voiceID = voiceID
	result.clones = 1
	logger.CtxInfo(ctx, "voice clone enrolled: %s", voiceID)
	if err := tracker.log(ctx, fmt.Sprintf("Voice clone enrolled from %d samples", len(samples))); err != nil {
		return nil, err
	}

	return result, nil
}

// analyzeStyle makes the single structured style analysis call, bounded by
// the flat retry policy. A response that never parses against the schema
// surfaces as a schema_parse failure after the attempts are exhausted.
func (p *Pipeline) analyzeStyle(ctx context.Context, channelTitle string, videos []domain.VideoRecord, transcripts []domain.TranscriptAsset) (*domain.StyleAnalysis, int, error) {
	type analysisResult struct {
		analysis domain.StyleAnalysis
		tokens   int
	}

	result, err := retry.Do(ctx, analysisRetryPolicy, func(ctx context.Context) (analysisResult, error) {
		var out analysisResult
		gen, err := p.inference.GenerateStructured(ctx,
			prompts.StyleAnalysisSystemPrompt,
			prompts.StyleAnalysisPrompt(channelTitle, videos, transcripts),
			prompts.StyleAnalysisSchema(),
			&out.analysis)
		if err != nil {
			return analysisResult{}, err
		}
		out.tokens = gen.TokensUsed
		return out, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &result.analysis, result.tokens, nil
}

// embedStyle embeds the analysis summary and L2-normalizes the vector so
// cosine scores in the index stay comparable across runs.
func (p *Pipeline) embedStyle(ctx context.Context, analysis *domain.StyleAnalysis) ([]float32, error) {
	text := embeddingText(analysis)

	vector, err := retry.Do(ctx, analysisRetryPolicy, func(ctx context.Context) ([]float64, error) {
		return p.inference.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return normalizeL2(vector), nil
}

// persist settles the run: deduct credits atomically, upsert the single
// style profile row, record the voice enrollment, and mirror the vector
// into the index. The index write is best-effort.
func (p *Pipeline) persist(ctx context.Context, job *domain.TrainingJob, videos []domain.VideoRecord, analysis *domain.StyleAnalysis, embedding []float32, assets *extraction, totalTokens int) error {
	cost := CreditCost(totalTokens, assets.clones)
	if err := p.profiles.DeductCredits(ctx, job.UserID, cost); err != nil {
		return err
	}

	thumbnails := make([]string, 0, len(videos))
	videoURLs := make([]string, 0, len(videos))
	for _, v := range videos {
		thumbnails = append(thumbnails, v.ThumbnailURL)
		videoURLs = append(videoURLs, service.WatchURL(v.ID))
	}

	profile := &domain.StyleProfile{
		ID:                 uuid.NewString(),
		UserID:             job.UserID,
		Tone:               analysis.Tone,
		VocabularyLevel:    analysis.VocabularyLevel,
		Pacing:             analysis.Pacing,
		Themes:             analysis.Themes,
		HumorStyle:         analysis.HumorStyle,
		NarrativeStructure: analysis.NarrativeStructure,
		VisualStyle:        analysis.VisualStyle,
		AudienceEngagement: analysis.AudienceEngagement,
		Recommendations:    recommendationsMap(&analysis.Recommendations),
		Embedding:          embedding,
		Transcripts:        assets.transcripts,
		ThumbnailURLs:      thumbnails,
		VideoURLs:          videoURLs,
		VoiceID:            assets.voiceID,
		TokensConsumed:     totalTokens,
		CreditsConsumed:    cost,
	}
	if err := p.styles.Upsert(ctx, profile); err != nil {
		return err
	}

	// The voice row carries only the clone share of the cost; the token
	// share is accounted on the style profile's run total.
	voiceProfile := &domain.VoiceProfile{
		ID:              uuid.NewString(),
		UserID:          job.UserID,
		VoiceID:         assets.voiceID,
		SampleRefs:      assets.audioRefs,
		ClonesCreated:   assets.clones,
		CreditsConsumed: VoiceCloneCredits(assets.clones),
	}
	if err := p.voices.Create(ctx, voiceProfile); err != nil {
		return err
	}

	if p.vectors != nil {
		payload := &repository.StylePayload{
			UserID: job.UserID,
			Tone:   analysis.Tone,
			Pacing: analysis.Pacing,
			Themes: analysis.Themes,
		}
		if err := p.vectors.UpsertStyleVector(ctx, job.UserID, embedding, payload); err != nil {
			logger.CtxWarn(ctx, "style vector index update failed: %v", err)
		}
	}

	return nil
}

func recommendationsMap(r *domain.StyleRecommendations) domain.JSONMap {
	return domain.JSONMap{
		"contentIdeas":     r.ContentIdeas,
		"titleFormulas":    r.TitleFormulas,
		"hookTechniques":   r.HookTechniques,
		"uploadCadence":    r.UploadCadence,
		"audienceGrowth":   r.AudienceGrowth,
		"thumbnailAdvice":  r.ThumbnailAdvice,
		"collaborationFit": r.CollaborationFit,
	}
}

// progressTracker records stage transitions on the job row, emitting a
// progress milestone only when the percentage actually changes.
type progressTracker struct {
	jobs  JobStore
	jobID string
	last  int
}

func (t *progressTracker) advance(ctx context.Context, stage Stage) error {
	percent := ProgressFor(stage)
	label := stageLabel[stage]
	logger.CtxInfo(ctx, "stage: %s", stage)

	if percent == t.last {
		return t.log(ctx, label)
	}
	t.last = percent
	if err := t.jobs.UpdateProgress(ctx, t.jobID, percent, label); err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to record progress")
	}
	return nil
}

func (t *progressTracker) log(ctx context.Context, line string) error {
	if err := t.jobs.AppendLog(ctx, t.jobID, line); err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to append job log")
	}
	return nil
}
