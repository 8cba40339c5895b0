package pipeline

import "math"

const (
	tokensPerCredit      = 1000
	creditsPerVoiceClone = 0.75
)

// CreditCost converts a run's resource usage into credits: one credit per
// started thousand tokens, plus 0.75 credit per voice clone, each term
// rounded up independently.
func CreditCost(tokensUsed, clonesCreated int) int {
	tokenCredits := (tokensUsed + tokensPerCredit - 1) / tokensPerCredit
	return tokenCredits + VoiceCloneCredits(clonesCreated)
}

// VoiceCloneCredits is the clone share of a run's cost, rounded up.
func VoiceCloneCredits(clonesCreated int) int {
	return int(math.Ceil(float64(clonesCreated) * creditsPerVoiceClone))
}
