package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractAmountFrom(t *testing.T, text string) (AmountMatch, bool) {
	t.Helper()
	return ExtractAmount(&NormalizedContent{Text: text})
}

func TestExtractAmountDollarPerMonth(t *testing.T) {
	amount, ok := extractAmountFrom(t, "your subscription has been renewed for $15.99/month.")

	require.True(t, ok)
	assert.True(t, amount.Value.Equal(decimal.RequireFromString("15.99")))
	assert.Equal(t, "USD", amount.Currency)
}

func TestExtractAmountCurrencyForms(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		value    string
		currency string
	}{
		{"usd token", "billed 12.50 usd on renewal", "12.50", "USD"},
		{"euro symbol", "the new price is €9.99 per month", "9.99", "EUR"},
		{"pound symbol", "your plan costs £6 monthly", "6", "GBP"},
		{"no decimals", "charged $5 for this period", "5", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := extractAmountFrom(t, tt.text)
			require.True(t, ok)
			assert.True(t, amount.Value.Equal(decimal.RequireFromString(tt.value)),
				"got %s", amount.Value)
			assert.Equal(t, tt.currency, amount.Currency)
		})
	}
}

func TestExtractAmountIgnoresBareNumbers(t *testing.T) {
	// No symbol or token means no amount and no fabricated currency.
	_, ok := extractAmountFrom(t, "you have 9.99 reasons to stay subscribed")
	assert.False(t, ok)
}

func TestExtractAmountRangeFilter(t *testing.T) {
	_, ok := extractAmountFrom(t, "you could win $50000 today")
	assert.False(t, ok)

	_, ok = extractAmountFrom(t, "a $0 introductory charge")
	assert.False(t, ok)
}

func TestExtractAmountModeWins(t *testing.T) {
	// 9.99 appears twice, 29.99 once: the mode wins.
	amount, ok := extractAmountFrom(t,
		"your plan is $9.99/month. you were charged $9.99 today instead of the regular $29.99.")

	require.True(t, ok)
	assert.True(t, amount.Value.Equal(decimal.RequireFromString("9.99")))
}

func TestExtractAmountMedianOfDistinct(t *testing.T) {
	// All values distinct: median of sorted distinct amounts.
	amount, ok := extractAmountFrom(t, "plans at $5.99, $9.99 and $19.99 per month")

	require.True(t, ok)
	assert.True(t, amount.Value.Equal(decimal.RequireFromString("9.99")))
}

func TestExtractAmountMedianEvenCountTakesLowerMiddle(t *testing.T) {
	amount, ok := extractAmountFrom(t, "compare $5.99 and $9.99 today")

	require.True(t, ok)
	assert.True(t, amount.Value.Equal(decimal.RequireFromString("5.99")))
}

func TestExtractAmountTiedModesFallBackToMedian(t *testing.T) {
	// 5.99 and 19.99 both appear twice: no unique mode, median decides.
	amount, ok := extractAmountFrom(t,
		"was $5.99, now $19.99. yes, $19.99 instead of $5.99, plus a $9.99 add-on")

	require.True(t, ok)
	assert.True(t, amount.Value.Equal(decimal.RequireFromString("9.99")))
}

func TestExtractAmountCurrencyFollowsWinningValue(t *testing.T) {
	amount, ok := extractAmountFrom(t, "£7.99 here, but also $7.99 elsewhere, and again £7.99")

	require.True(t, ok)
	assert.True(t, amount.Value.Equal(decimal.RequireFromString("7.99")))
	// First occurrence of the winning value carries the currency.
	assert.Equal(t, "GBP", amount.Currency)
}
