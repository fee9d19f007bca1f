package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAdditiveScheme(t *testing.T) {
	tests := []struct {
		name    string
		signals ConfidenceSignals
		want    float64
	}{
		{"type only", ConfidenceSignals{KnownType: true}, 0.3},
		{"type and service", ConfidenceSignals{KnownType: true, ServiceResolved: true}, 0.5},
		{"all signals", ConfidenceSignals{
			KnownType: true, ServiceResolved: true, DateFound: true, AmountFound: true, PatternMatches: 2,
		}, 1.0},
		{"single pattern adds nothing", ConfidenceSignals{KnownType: true, PatternMatches: 1}, 0.3},
		{"nothing", ConfidenceSignals{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.signals), 1e-9)
		})
	}
}

func TestScoreMonotonicity(t *testing.T) {
	// Adding any single signal to any base never lowers the score.
	bases := []ConfidenceSignals{
		{},
		{KnownType: true},
		{KnownType: true, ServiceResolved: true},
		{KnownType: true, ServiceResolved: true, AmountFound: true},
		{KnownType: true, ServiceResolved: true, AmountFound: true, DateFound: true, PatternMatches: 1},
	}

	additions := []func(ConfidenceSignals) ConfidenceSignals{
		func(s ConfidenceSignals) ConfidenceSignals { s.KnownType = true; return s },
		func(s ConfidenceSignals) ConfidenceSignals { s.ServiceResolved = true; return s },
		func(s ConfidenceSignals) ConfidenceSignals { s.DateFound = true; return s },
		func(s ConfidenceSignals) ConfidenceSignals { s.AmountFound = true; return s },
		func(s ConfidenceSignals) ConfidenceSignals { s.PatternMatches += 2; return s },
	}

	for _, base := range bases {
		baseScore := Score(base)
		for _, add := range additions {
			assert.GreaterOrEqual(t, Score(add(base)), baseScore)
		}
	}
}

func TestScoreBounded(t *testing.T) {
	score := Score(ConfidenceSignals{
		KnownType: true, ServiceResolved: true, DateFound: true, AmountFound: true, PatternMatches: 10,
	})
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, 0.0)
}
