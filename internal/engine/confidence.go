package engine

// Additive confidence weights. The scheme is strictly monotonic: every
// present signal adds, nothing subtracts, and the sum is clamped to [0, 1].
const (
	weightKnownType      = 0.3
	weightService        = 0.2
	weightDate           = 0.2
	weightAmount         = 0.2
	weightMultiplePattrs = 0.1
)

// ConfidenceSignals are the inputs to the scorer for one candidate type.
type ConfidenceSignals struct {
	KnownType       bool
	ServiceResolved bool
	DateFound       bool
	AmountFound     bool
	PatternMatches  int
}

// Score combines classifier strength and extractor success into a bounded
// confidence value.
func Score(signals ConfidenceSignals) float64 {
	score := 0.0
	if signals.KnownType {
		score += weightKnownType
	}
	if signals.ServiceResolved {
		score += weightService
	}
	if signals.DateFound {
		score += weightDate
	}
	if signals.AmountFound {
		score += weightAmount
	}
	if signals.PatternMatches >= 2 {
		score += weightMultiplePattrs
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
