package domain

import "time"

// VoiceProfile records one voice enrollment with the cloning provider.
// Unlike StyleProfile this is a plain insert: repeated training runs
// create additional rows, one per successful enrollment.
type VoiceProfile struct {
	ID              string      `gorm:"type:text;primaryKey" json:"id"`
	UserID          string      `gorm:"type:text;not null;index" json:"user_id"`
	VoiceID         string      `gorm:"type:text;not null" json:"voice_id"`
	SampleRefs      StringArray `gorm:"type:text" json:"sample_refs"`
	ClonesCreated   int         `gorm:"default:0" json:"clones_created"`
	CreditsConsumed int         `gorm:"default:0" json:"credits_consumed"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName returns the database table name for VoiceProfile.
func (VoiceProfile) TableName() string {
	return "voice_profiles"
}
