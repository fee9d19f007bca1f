package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DetectionType is the classified kind of subscription lifecycle event a
// message represents. The set is closed; adding a type means adding a
// pattern set and an extraction strategy for it.
type DetectionType string

const (
	TypeTrialSignup         DetectionType = "trial_signup"
	TypeTrialReminder       DetectionType = "trial_reminder"
	TypeBillingConfirmation DetectionType = "billing_confirmation"
	TypeSubscriptionStart   DetectionType = "subscription_start"
	TypePriceChange         DetectionType = "price_change"
)

// DetectionTypes lists every type in a fixed order. Iteration over this
// slice (never over a map) keeps detection output deterministic.
var DetectionTypes = []DetectionType{
	TypeTrialSignup,
	TypeTrialReminder,
	TypeBillingConfirmation,
	TypeSubscriptionStart,
	TypePriceChange,
}

// BillingCycle is the cadence a subscription renews on.
type BillingCycle string

const (
	CycleWeekly       BillingCycle = "weekly"
	CycleMonthly      BillingCycle = "monthly"
	CycleQuarterly    BillingCycle = "quarterly"
	CycleSemiAnnually BillingCycle = "semi-annually"
	CycleAnnually     BillingCycle = "annually"
)

// EmailMessage represents a single inbound email. It is immutable once
// constructed; the engine never modifies it.
type EmailMessage struct {
	From       string
	To         string
	Subject    string
	BodyText   string
	BodyHTML   string
	ReceivedAt time.Time
	Headers    map[string]string
}

// NewEmailMessage builds an EmailMessage, enforcing the boundary invariant
// that at least one of subject, bodyText and bodyHTML is non-empty. A zero
// receivedAt defaults to the current time so that the engine itself never
// reads the clock.
func NewEmailMessage(from, to, subject, bodyText, bodyHTML string, receivedAt time.Time, headers map[string]string) (*EmailMessage, error) {
	if subject == "" && bodyText == "" && bodyHTML == "" {
		return nil, &InvalidMessageError{Reason: "subject, bodyText and bodyHtml are all empty"}
	}
	if from == "" {
		return nil, &InvalidMessageError{Reason: "missing sender address"}
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	return &EmailMessage{
		From:       from,
		To:         to,
		Subject:    subject,
		BodyText:   bodyText,
		BodyHTML:   bodyHTML,
		ReceivedAt: receivedAt,
		Headers:    headers,
	}, nil
}

// DetectedSubscription is one subscription lifecycle event extracted from a
// message. Constructed once per matching detection type per call and never
// mutated afterwards; ownership passes entirely to the caller.
type DetectedSubscription struct {
	ServiceName     string            `json:"service_name"`
	Type            DetectionType     `json:"detection_type"`
	Confidence      float64           `json:"confidence"`
	Cost            *decimal.Decimal  `json:"cost,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	BillingCycle    BillingCycle      `json:"billing_cycle,omitempty"`
	TrialEndDate    *time.Time        `json:"trial_end_date,omitempty"`
	NextBillingDate *time.Time        `json:"next_billing_date,omitempty"`
	Extracted       map[string]string `json:"extracted_data,omitempty"`
}

// AnalysisStatus is the caller-side disposition of an analysis.
type AnalysisStatus string

const (
	// StatusAutoAdd means at least one detection cleared the auto-add
	// confidence threshold.
	StatusAutoAdd AnalysisStatus = "auto_add"
	// StatusPendingReview means detections exist but none cleared the
	// threshold.
	StatusPendingReview AnalysisStatus = "pending_review"
	// StatusNoDetection means the engine found nothing actionable.
	StatusNoDetection AnalysisStatus = "no_detection"
)

// AnalysisResult is the service-level outcome for one message: the engine's
// detections plus the bookkeeping the consumer contract needs (dedup
// fingerprint, threshold disposition).
type AnalysisResult struct {
	Fingerprint string                 `json:"fingerprint"`
	Status      AnalysisStatus         `json:"status"`
	Detections  []DetectedSubscription `json:"detections"`
	AnalyzedAt  time.Time              `json:"analyzed_at"`
	FromStore   bool                   `json:"from_store"`
}

// DetectionRecord is the persisted form of an AnalysisResult, keyed by the
// message fingerprint so that redelivery of the same physical email is
// idempotent.
type DetectionRecord struct {
	Fingerprint string
	Status      AnalysisStatus
	Detections  []DetectedSubscription
	AnalyzedAt  time.Time
	ExpiresAt   time.Time
}
