package domain

// VideoRecord is a read-only snapshot of one video's platform metadata,
// fetched per training run. It is never persisted directly; it only feeds
// the derived style artifacts.
type VideoRecord struct {
	ID                   string     `json:"id"`
	ChannelID            string     `json:"channel_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Tags                 []string   `json:"tags"`
	Duration             string     `json:"duration"`
	Stats                VideoStats `json:"stats"`
	TopicCategories      []string   `json:"topic_categories"`
	ThumbnailURL         string     `json:"thumbnail_url"`
	DefaultAudioLanguage string     `json:"default_audio_language"`
}

// VideoStats holds the public counters for a video.
type VideoStats struct {
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

// TranscriptSegment is one timed span of transcript text.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptAsset is the schema-constrained transcription result for one video.
type TranscriptAsset struct {
	VideoID        string              `json:"videoId"`
	TranscriptText string              `json:"transcriptText"`
	Segments       []TranscriptSegment `json:"segments"`
}

// StyleRecommendations is the structured advice block of a style analysis.
type StyleRecommendations struct {
	ContentIdeas     []string `json:"contentIdeas"`
	TitleFormulas    []string `json:"titleFormulas"`
	HookTechniques   []string `json:"hookTechniques"`
	UploadCadence    string   `json:"uploadCadence"`
	AudienceGrowth   []string `json:"audienceGrowth"`
	ThumbnailAdvice  string   `json:"thumbnailAdvice"`
	CollaborationFit []string `json:"collaborationFit"`
}

// StyleAnalysis is the structured-output contract for the style analysis
// stage. Field names mirror the JSON schema sent to the inference provider.
type StyleAnalysis struct {
	Tone               string               `json:"tone"`
	VocabularyLevel    string               `json:"vocabularyLevel"`
	Pacing             string               `json:"pacing"`
	Themes             []string             `json:"themes"`
	HumorStyle         string               `json:"humorStyle"`
	NarrativeStructure string               `json:"narrativeStructure"`
	VisualStyle        string               `json:"visualStyle"`
	AudienceEngagement []string             `json:"audienceEngagement"`
	Recommendations    StyleRecommendations `json:"recommendations"`
}
