package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/creatorly/styletrain/internal/domain"
)

// ProfileRepository handles the user profile's credit balance and trained flag.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves a user profile.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.ErrPersistence, "no profile for user %s", userID)
		}
		return nil, domain.WrapError(domain.ErrPersistence, err, "failed to load user profile")
	}
	return &profile, nil
}

// DeductCredits atomically decrements the balance by cost and sets the
// trained flag, but only if the balance covers the cost. The guard lives in
// the WHERE clause, not in application code: concurrent credit-consuming
// jobs for the same user race on this row, and a read-then-write pair would
// lose updates. Zero rows affected means the balance was insufficient at
// the instant of the update.
func (r *ProfileRepository) DeductCredits(ctx context.Context, userID string, cost int) error {
	result := r.db.WithContext(ctx).Model(&domain.UserProfile{}).
		Where("user_id = ? AND credits >= ?", userID, cost).
		Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits - ?", cost),
			"ai_trained": true,
		})
	if result.Error != nil {
		return domain.WrapError(domain.ErrPersistence, result.Error, "failed to deduct credits")
	}
	if result.RowsAffected == 0 {
		return domain.NewError(domain.ErrInsufficientCredits,
			"user %s has insufficient credits for cost %d", userID, cost)
	}
	return nil
}

// AddCredits increments a user's balance (referral grants, top-ups).
func (r *ProfileRepository) AddCredits(ctx context.Context, userID string, amount int) error {
	return r.db.WithContext(ctx).Model(&domain.UserProfile{}).
		Where("user_id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount)).Error
}
