package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detect(t *testing.T, e *Engine, from, subject, body string, receivedAt time.Time) []core.DetectedSubscription {
	t.Helper()
	msg, err := core.NewEmailMessage(from, "user@inbox.example", subject, body, "", receivedAt, nil)
	require.NoError(t, err)
	detections, err := e.Detect(msg)
	require.NoError(t, err)
	return detections
}

func TestDetectNetflixRenewal(t *testing.T) {
	e := NewDefault()
	receivedAt := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	detections := detect(t, e,
		"billing@netflix.com",
		"Your Netflix subscription has been renewed",
		"Your Netflix subscription has been renewed for $15.99/month. Next billing date is January 27, 2025.",
		receivedAt)

	require.Len(t, detections, 1)
	d := detections[0]
	assert.Equal(t, "Netflix", d.ServiceName)
	assert.Equal(t, core.TypeBillingConfirmation, d.Type)
	require.NotNil(t, d.Cost)
	assert.True(t, d.Cost.Equal(decimal.RequireFromString("15.99")))
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, core.CycleMonthly, d.BillingCycle)
	require.NotNil(t, d.NextBillingDate)
	assert.Equal(t, time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC), *d.NextBillingDate)
	assert.GreaterOrEqual(t, d.Confidence, 0.8)
	assert.NotEmpty(t, d.Extracted["snippet"])
}

func TestDetectTrialReminder(t *testing.T) {
	e := NewDefault()
	receivedAt := time.Date(2025, 2, 26, 8, 0, 0, 0, time.UTC)

	detections := detect(t, e,
		"trial@acmeapp.io",
		"Your free trial ends in 3 days",
		"Your trial ends on March 1, 2025. After that you'll be billed $9.99 monthly.",
		receivedAt)

	require.Len(t, detections, 1)
	d := detections[0]
	assert.Equal(t, "Acmeapp", d.ServiceName)
	assert.Equal(t, core.TypeTrialReminder, d.Type)
	require.NotNil(t, d.TrialEndDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *d.TrialEndDate)
	require.NotNil(t, d.Cost)
	assert.True(t, d.Cost.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, core.CycleMonthly, d.BillingCycle)
}

func TestDetectSpamShortCircuit(t *testing.T) {
	e := NewDefault()

	detections := detect(t, e,
		"promo@dealsnow.biz",
		"Congratulations you won a free trial!! Act now!",
		"",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Empty(t, detections)
}

func TestDetectUnresolvedServiceIsSoftFailure(t *testing.T) {
	e := NewDefault()

	detections := detect(t, e,
		"unknown@privaterelay.appleid.com",
		"Receipt",
		"Thanks for your payment.",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Empty(t, detections)
}

func TestDetectInvalidMessageFailsFast(t *testing.T) {
	e := NewDefault()
	msg := &core.EmailMessage{From: "a@b.com", ReceivedAt: time.Now()}

	_, err := e.Detect(msg)

	var invalidErr *core.InvalidMessageError
	require.ErrorAs(t, err, &invalidErr)
}

func TestDetectMultipleSimultaneousTypes(t *testing.T) {
	e := NewDefault()

	detections := detect(t, e,
		"billing@spotify.com",
		"Payment received",
		"Thank you for subscribing. Your payment was received and your membership is now active.",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.Len(t, detections, 2)
	types := []core.DetectionType{detections[0].Type, detections[1].Type}
	assert.Contains(t, types, core.TypeBillingConfirmation)
	assert.Contains(t, types, core.TypeSubscriptionStart)
}

func TestDetectIdempotence(t *testing.T) {
	e := NewDefault()
	msg, err := core.NewEmailMessage(
		"billing@netflix.com", "user@inbox.example",
		"Your Netflix subscription has been renewed",
		"Your Netflix subscription has been renewed for $15.99/month. Next billing date is January 27, 2025.",
		"", time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	first, err := e.Detect(msg)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Detect(msg)
		require.NoError(t, err)

		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestDetectConfidenceMonotonicity(t *testing.T) {
	e := NewDefault()
	receivedAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	confidenceFor := func(body string) float64 {
		detections := detect(t, e, "billing@netflix.com", "Subscription update", body, receivedAt)
		require.NotEmpty(t, detections)
		for _, d := range detections {
			if d.Type == core.TypeBillingConfirmation {
				return d.Confidence
			}
		}
		t.Fatal("no billing_confirmation detection")
		return 0
	}

	base := confidenceFor("Your subscription has been renewed.")
	withAmount := confidenceFor("Your subscription has been renewed for $15.99.")
	withAmountAndDate := confidenceFor("Your subscription has been renewed for $15.99. Next billing date is January 27, 2025.")

	assert.GreaterOrEqual(t, withAmount, base)
	assert.GreaterOrEqual(t, withAmountAndDate, withAmount)
}

func TestDetectNoCandidatesYieldsEmptyList(t *testing.T) {
	e := NewDefault()

	detections := detect(t, e,
		"newsletter@netflix.com",
		"What to watch this weekend",
		"Here are three new shows we think you'll love.",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Empty(t, detections)
}
