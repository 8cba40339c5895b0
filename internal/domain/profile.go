package domain

import "time"

// UserProfile holds the billing-relevant slice of a user's account: the
// credit balance and the trained flag. Credits are a shared mutable
// balance; deductions go through a single conditional UPDATE so the
// balance can never go negative.
type UserProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	Credits   int       `gorm:"default:0" json:"credits"`
	AITrained bool      `gorm:"column:ai_trained;default:false" json:"ai_trained"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// StyleProfile is the persisted result of a training run: the derived
// tone/pacing/theme attributes, the recommendations block, the normalized
// embedding vector, and the usage accounting. At most one row exists per
// user; retraining replaces it via upsert.
type StyleProfile struct {
	ID                 string          `gorm:"type:text;primaryKey" json:"id"`
	UserID             string          `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	Tone               string          `gorm:"type:text" json:"tone"`
	VocabularyLevel    string          `gorm:"type:text" json:"vocabulary_level"`
	Pacing             string          `gorm:"type:text" json:"pacing"`
	Themes             StringArray     `gorm:"type:text" json:"themes"`
	HumorStyle         string          `gorm:"type:text" json:"humor_style"`
	NarrativeStructure string          `gorm:"type:text" json:"narrative_structure"`
	VisualStyle        string          `gorm:"type:text" json:"visual_style"`
	AudienceEngagement StringArray     `gorm:"type:text" json:"audience_engagement"`
	Recommendations    JSONMap         `gorm:"type:text" json:"recommendations"`
	Embedding          FloatArray      `gorm:"type:text" json:"embedding"`
	Transcripts        TranscriptArray `gorm:"type:text" json:"transcripts"`
	ThumbnailURLs      StringArray     `gorm:"type:text" json:"thumbnail_urls"`
	VideoURLs          StringArray     `gorm:"type:text" json:"video_urls"`
	VoiceID            string          `gorm:"type:text" json:"voice_id"`
	TokensConsumed     int             `gorm:"default:0" json:"tokens_consumed"`
	CreditsConsumed    int             `gorm:"default:0" json:"credits_consumed"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName returns the database table name for StyleProfile.
func (StyleProfile) TableName() string {
	return "style_profiles"
}
