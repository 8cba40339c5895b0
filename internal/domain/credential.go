package domain

import "time"

// ChannelCredential links a user to their connected video platform channel
// and holds the OAuth tokens used to read it. The access token is replaced
// in place after a successful refresh; a credential with no refresh token
// and an invalid access token is unusable until the user re-authenticates.
type ChannelCredential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	ChannelID    string    `gorm:"type:text;not null" json:"channel_id"`
	ChannelTitle string    `gorm:"type:text" json:"channel_title"`
	AccessToken  string    `gorm:"type:text" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChannelCredential.
func (ChannelCredential) TableName() string {
	return "channel_credentials"
}
