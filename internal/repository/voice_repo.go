package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/creatorly/styletrain/internal/domain"
)

// VoiceRepository handles voice profile persistence. Voice profiles are
// plain inserts: each training run that reaches enrollment adds a row.
type VoiceRepository struct {
	db *gorm.DB
}

// NewVoiceRepository creates a new VoiceRepository.
func NewVoiceRepository(db *gorm.DB) *VoiceRepository {
	return &VoiceRepository{db: db}
}

// Create inserts a new voice profile record.
func (r *VoiceRepository) Create(ctx context.Context, profile *domain.VoiceProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return domain.WrapError(domain.ErrPersistence, err, "failed to insert voice profile")
	}
	return nil
}

// ListByUser retrieves a user's voice profiles, newest first.
func (r *VoiceRepository) ListByUser(ctx context.Context, userID string) ([]domain.VoiceProfile, error) {
	var profiles []domain.VoiceProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
