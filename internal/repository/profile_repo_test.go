package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	return db
}

func TestDeductCredits(t *testing.T) {
	db := testDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	if err := db.Create(&domain.UserProfile{UserID: "u1", Credits: 5}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.DeductCredits(ctx, "u1", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := repo.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if profile.Credits != 2 {
		t.Errorf("expected 2 credits, got %d", profile.Credits)
	}
	if !profile.AITrained {
		t.Error("trained flag should be set by deduction")
	}
}

func TestDeductCredits_InsufficientBalance(t *testing.T) {
	db := testDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	if err := db.Create(&domain.UserProfile{UserID: "u1", Credits: 2}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := repo.DeductCredits(ctx, "u1", 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrInsufficientCredits {
		t.Errorf("expected insufficient_credits, got %s", domain.CodeOf(err))
	}

	profile, err := repo.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if profile.Credits != 2 {
		t.Errorf("balance must be untouched, got %d", profile.Credits)
	}
	if profile.AITrained {
		t.Error("trained flag must stay unset on failed deduction")
	}
}

func TestDeductCredits_ConcurrentNeverOverdraws(t *testing.T) {
	db := testDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	if err := db.Create(&domain.UserProfile{UserID: "u1", Credits: 5}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Ten concurrent deductions of 1 against a balance of 5: at most five
	// may succeed, and the balance can never go below zero.
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded int
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DeductCredits(ctx, "u1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	profile, err := repo.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if profile.Credits < 0 {
		t.Errorf("balance went negative: %d", profile.Credits)
	}
	if succeeded > 5 {
		t.Errorf("more deductions succeeded than the balance allowed: %d", succeeded)
	}
	if profile.Credits != 5-succeeded {
		t.Errorf("balance %d does not match %d successful deductions", profile.Credits, succeeded)
	}
}
