package engine

import (
	"github.com/ronnydonkey/subtracker/internal/core"
)

// LegacyType is the detection vocabulary of the original single-result
// pipeline. It survives only as an output adapter; the multi-type canonical
// set drives everything internally.
type LegacyType string

const (
	LegacyTrialStart  LegacyType = "trialStart"
	LegacyTrialEnd    LegacyType = "trialEnd"
	LegacyBilling     LegacyType = "billing"
	LegacyPriceChange LegacyType = "priceChange"
	LegacyUnknown     LegacyType = "unknown"

	// LegacyCancellation exists in the legacy vocabulary but has no
	// canonical counterpart; the canonical pipeline never emits it.
	LegacyCancellation LegacyType = "cancellation"
)

var legacyTypeMap = map[core.DetectionType]LegacyType{
	core.TypeTrialSignup:         LegacyTrialStart,
	core.TypeTrialReminder:       LegacyTrialEnd,
	core.TypeBillingConfirmation: LegacyBilling,
	core.TypeSubscriptionStart:   LegacyBilling,
	core.TypePriceChange:         LegacyPriceChange,
}

// LegacyDetection is the single-best-guess result shape consumed by legacy
// callers.
type LegacyDetection struct {
	ServiceName string                     `json:"service_name"`
	Type        LegacyType                 `json:"detection_type"`
	Confidence  float64                    `json:"confidence"`
	Detection   *core.DetectedSubscription `json:"detection,omitempty"`
}

// DetectPrimary runs the canonical pipeline and collapses the result to the
// legacy single-detection contract: the highest-confidence candidate wins,
// an empty result maps to the unknown type.
func (e *Engine) DetectPrimary(msg *core.EmailMessage) (*LegacyDetection, error) {
	detections, err := e.Detect(msg)
	if err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return &LegacyDetection{Type: LegacyUnknown}, nil
	}

	best := core.BestDetection(detections)
	return &LegacyDetection{
		ServiceName: best.ServiceName,
		Type:        legacyTypeMap[best.Type],
		Confidence:  best.Confidence,
		Detection:   best,
	}, nil
}
