package pipeline

import (
	"math"
	"testing"

	"github.com/creatorly/styletrain/internal/domain"
)

func TestNormalizeL2(t *testing.T) {
	got := normalizeL2([]float64{3, 4})
	if len(got) != 2 {
		t.Fatalf("expected 2 components, got %d", len(got))
	}
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Errorf("expected [0.6 0.8], got %v", got)
	}

	var sum float64
	for _, x := range got {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("expected unit length, got norm^2 = %f", sum)
	}
}

func TestNormalizeL2_ZeroVectorPassesThrough(t *testing.T) {
	got := normalizeL2(make([]float64, 768))
	if len(got) != 768 {
		t.Fatalf("expected 768 components, got %d", len(got))
	}
	for i, x := range got {
		if x != 0 {
			t.Fatalf("zero vector must pass through unchanged, component %d = %f", i, x)
		}
	}
}

func TestEmbeddingTextDeterministic(t *testing.T) {
	a := &domain.StyleAnalysis{
		Tone:   "energetic",
		Pacing: "fast",
		Themes: []string{"gaming", "tech"},
	}
	first := embeddingText(a)
	second := embeddingText(a)
	if first != second {
		t.Error("embedding text should be stable for the same analysis")
	}
	if first == "" {
		t.Error("embedding text should not be empty")
	}
}
