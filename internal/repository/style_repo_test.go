package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/creatorly/styletrain/internal/domain"
)

func TestStyleUpsert_SingleRowPerUser(t *testing.T) {
	db := testDB(t)
	repo := NewStyleRepository(db)
	ctx := context.Background()

	first := &domain.StyleProfile{
		ID:     uuid.NewString(),
		UserID: "u1",
		Tone:   "calm",
		Themes: []string{"cooking"},
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &domain.StyleProfile{
		ID:      uuid.NewString(),
		UserID:  "u1",
		Tone:    "energetic",
		Themes:  []string{"gaming", "tech"},
		VoiceID: "voice-2",
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := repo.CountByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}

	got, err := repo.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Tone != "energetic" {
		t.Errorf("retrain should replace attributes, got tone %q", got.Tone)
	}
	if got.VoiceID != "voice-2" {
		t.Errorf("retrain should replace voice ID, got %q", got.VoiceID)
	}
	if len(got.Themes) != 2 {
		t.Errorf("retrain should replace themes, got %v", got.Themes)
	}
}
