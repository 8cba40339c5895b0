package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/creatorly/styletrain/internal/domain"
)

// embeddingText flattens the analysis into the text that gets embedded.
// The field order is fixed so the same analysis always embeds the same way.
func embeddingText(a *domain.StyleAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tone: %s\n", a.Tone)
	fmt.Fprintf(&b, "Vocabulary level: %s\n", a.VocabularyLevel)
	fmt.Fprintf(&b, "Pacing: %s\n", a.Pacing)
	fmt.Fprintf(&b, "Themes: %s\n", strings.Join(a.Themes, ", "))
	fmt.Fprintf(&b, "Humor style: %s\n", a.HumorStyle)
	fmt.Fprintf(&b, "Narrative structure: %s\n", a.NarrativeStructure)
	fmt.Fprintf(&b, "Visual style: %s\n", a.VisualStyle)
	fmt.Fprintf(&b, "Audience engagement: %s\n", strings.Join(a.AudienceEngagement, ", "))
	return b.String()
}

// normalizeL2 scales the vector to unit length. A zero vector has no
// direction; it is passed through unchanged rather than divided by zero.
func normalizeL2(v []float64) []float32 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}
