package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/creatorly/styletrain/internal/domain"
)

// StyleRepository handles style profile persistence.
type StyleRepository struct {
	db *gorm.DB
}

// NewStyleRepository creates a new StyleRepository.
func NewStyleRepository(db *gorm.DB) *StyleRepository {
	return &StyleRepository{db: db}
}

// Upsert creates or replaces the style profile keyed by user ID. At most
// one row exists per user; retraining overwrites it rather than adding a
// second profile.
func (r *StyleRepository) Upsert(ctx context.Context, profile *domain.StyleProfile) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(profile).Error; err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to upsert style profile")
	}
	return nil
}

// GetByUserID retrieves the style profile for a user.
func (r *StyleRepository) GetByUserID(ctx context.Context, userID string) (*domain.StyleProfile, error) {
	var profile domain.StyleProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrPersistence, err, "failed to load style profile")
	}
	return &profile, nil
}

// CountByUserID counts style profile rows for a user. Used by tests to
// verify the one-row-per-user invariant.
func (r *StyleRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StyleProfile{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
