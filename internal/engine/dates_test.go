package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDateTrialWindowWins(t *testing.T) {
	receivedAt := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)
	content := &NormalizedContent{
		Text: "your trial ends on march 1, 2025. after that you'll be billed $9.99 monthly.",
	}

	date, raw, ok := ExtractDate(content, receivedAt)

	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "march 1, 2025", raw)
}

func TestExtractDateTrialWindowBeatsFutureBias(t *testing.T) {
	// The trial window date is in the past relative to receipt, yet it
	// still wins over the later billing date because of the window rule.
	receivedAt := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	content := &NormalizedContent{
		Text: "your trial ended on march 1, 2025 and billing begins april 15, 2025.",
	}

	date, _, ok := ExtractDate(content, receivedAt)

	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestExtractDateFutureBias(t *testing.T) {
	// No trial wording: the earliest date after receipt wins, past dates
	// are skipped.
	receivedAt := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	content := &NormalizedContent{
		Text: "we charged you on january 5, 2025. your next payment is due february 10, 2025, then march 10, 2025.",
	}

	date, _, ok := ExtractDate(content, receivedAt)

	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), date)
}

func TestExtractDateNoCandidates(t *testing.T) {
	_, _, ok := ExtractDate(&NormalizedContent{Text: "thanks for your payment"}, time.Now())
	assert.False(t, ok)
}

func TestExtractDateOnlyPastDates(t *testing.T) {
	receivedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	content := &NormalizedContent{Text: "you were billed on 2025-01-15."}

	_, _, ok := ExtractDate(content, receivedAt)
	assert.False(t, ok)
}

func TestExtractDateFormats(t *testing.T) {
	receivedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"month day year", "renews january 27, 2025", time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)},
		{"ordinal day", "renews on march 1st, 2025", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"day month year", "renews 27 january 2025", time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)},
		{"iso", "renews 2025-04-05", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)},
		{"slash", "renews 4/5/2025", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, _, ok := ExtractDate(&NormalizedContent{Text: tt.text}, receivedAt)
			require.True(t, ok)
			assert.Equal(t, tt.want, date)
		})
	}
}
