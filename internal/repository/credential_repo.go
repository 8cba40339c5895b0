package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/creatorly/styletrain/internal/domain"
)

// CredentialRepository handles channel credential persistence.
type CredentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// GetByUserID loads the connected channel credential for a user. A missing
// row or a credential without an access token is reported as
// ErrChannelNotFound: the user has never connected a channel, or the
// connection was revoked.
func (r *CredentialRepository) GetByUserID(ctx context.Context, userID string) (*domain.ChannelCredential, error) {
	var cred domain.ChannelCredential
	if err := r.db.WithContext(ctx).First(&cred, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrChannelNotFound, "no connected channel for user %s", userID)
		}
		return nil, domain.WrapError(domain.ErrPersistence, err, "failed to load channel credential")
	}
	if cred.AccessToken == "" {
		return nil, domain.NewError(domain.ErrChannelNotFound, "channel credential for user %s has no access token", userID)
	}
	return &cred, nil
}

// UpdateAccessToken persists a refreshed access token back onto the
// credential row.
func (r *CredentialRepository) UpdateAccessToken(ctx context.Context, userID, accessToken string) error {
	if err := r.db.WithContext(ctx).Model(&domain.ChannelCredential{}).
		Where("user_id = ?", userID).
		Update("access_token", accessToken).Error; err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to persist refreshed token")
	}
	return nil
}

// Upsert creates or replaces the credential for a user (used when the
// dashboard completes an OAuth connect flow).
func (r *CredentialRepository) Upsert(ctx context.Context, cred *domain.ChannelCredential) error {
	existing := &domain.ChannelCredential{}
	err := r.db.WithContext(ctx).First(existing, "user_id = ?", cred.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(cred).Error
	}
	if err != nil {
		return err
	}
	cred.ID = existing.ID
	return r.db.WithContext(ctx).Save(cred).Error
}
