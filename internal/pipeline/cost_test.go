package pipeline

import "testing"

func TestCreditCost(t *testing.T) {
	tests := []struct {
		name   string
		tokens int
		clones int
		want   int
	}{
		{"nothing used", 0, 0, 0},
		{"one token rounds up", 1, 0, 1},
		{"exact thousand", 1000, 0, 1},
		{"just over a thousand", 1001, 0, 2},
		{"clone only", 0, 1, 1},
		{"typical run", 2500, 1, 4},
		{"two clones round up together", 0, 2, 2},
		{"large run", 10500, 1, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CreditCost(tt.tokens, tt.clones); got != tt.want {
				t.Errorf("CreditCost(%d, %d) = %d, want %d", tt.tokens, tt.clones, got, tt.want)
			}
		})
	}
}

func TestVoiceCloneCredits(t *testing.T) {
	tests := []struct {
		clones int
		want   int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
	}

	for _, tt := range tests {
		if got := VoiceCloneCredits(tt.clones); got != tt.want {
			t.Errorf("VoiceCloneCredits(%d) = %d, want %d", tt.clones, got, tt.want)
		}
	}
}
