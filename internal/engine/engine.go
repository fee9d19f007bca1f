// Package engine implements the subscription detection pipeline: a
// deterministic, side-effect-free classification and extraction pass over a
// single email message. The engine performs no I/O, holds no per-call
// state, and is safe to invoke from any number of goroutines; its only
// shared data are the immutable pattern and registry tables built at
// construction time.
package engine

import (
	"strings"
	"time"

	"github.com/ronnydonkey/subtracker/internal/core"
)

// Engine runs the full detection pipeline. One Engine is built at process
// start and reused for every message.
type Engine struct {
	patterns *PatternLibrary
	resolver *ServiceResolver
	noise    *NoiseFilter
}

// New assembles an engine from its static tables.
func New(registry *ServiceRegistry, patterns *PatternLibrary, noise *NoiseFilter) *Engine {
	return &Engine{
		patterns: patterns,
		resolver: NewServiceResolver(registry),
		noise:    noise,
	}
}

// NewDefault builds an engine with the built-in tables and no extras.
func NewDefault() *Engine {
	patterns, err := NewPatternLibrary(nil)
	if err != nil {
		// Built-in expressions are compile-time constants; a failure here
		// is a programming error.
		panic(err)
	}
	return New(NewServiceRegistry(nil), patterns, NewNoiseFilter(nil))
}

// Detect classifies a message and extracts one DetectedSubscription per
// candidate detection type. The returned list is unsorted; selecting a
// single best candidate, applying the auto-add threshold and deduplicating
// repeated deliveries are all caller responsibilities.
//
// Soft misses (unresolved service, absent entities, unparseable dates)
// yield an empty list or absent fields; only a structurally invalid message
// produces an error.
func (e *Engine) Detect(msg *core.EmailMessage) ([]core.DetectedSubscription, error) {
	content, err := Normalize(msg)
	if err != nil {
		return nil, err
	}

	if e.noise.IsNoise(content, msg.From) {
		return []core.DetectedSubscription{}, nil
	}

	serviceName := e.resolver.Resolve(msg.From, content)
	if serviceName == "" {
		// A detection nobody can attribute to a service is not
		// actionable; degrade to an empty result rather than emit it.
		return []core.DetectedSubscription{}, nil
	}

	candidates := e.patterns.Classify(content)
	if len(candidates) == 0 {
		return []core.DetectedSubscription{}, nil
	}

	amount, amountOK := ExtractAmount(content)
	cycle := ExtractBillingCycle(content)
	date, dateRaw, dateOK := ExtractDate(content, msg.ReceivedAt)

	detections := make([]core.DetectedSubscription, 0, len(candidates))
	for _, candidate := range candidates {
		detections = append(detections, e.assemble(candidate, serviceName, amount, amountOK, cycle, date, dateRaw, dateOK))
	}
	return detections, nil
}

// assemble builds one detection record for a candidate type from the shared
// extractor results.
func (e *Engine) assemble(
	candidate Candidate,
	serviceName string,
	amount AmountMatch,
	amountOK bool,
	cycle core.BillingCycle,
	date time.Time,
	dateRaw string,
	dateOK bool,
) core.DetectedSubscription {
	extracted := map[string]string{
		"snippet": candidate.Matches[0],
	}
	if len(candidate.Matches) > 1 {
		extracted["matched_patterns"] = strings.Join(candidate.Matches, "; ")
	}

	detection := core.DetectedSubscription{
		ServiceName:  serviceName,
		Type:         candidate.Type,
		BillingCycle: cycle,
		Extracted:    extracted,
	}

	if amountOK {
		cost := amount.Value
		detection.Cost = &cost
		detection.Currency = amount.Currency
		extracted["amount_raw"] = amount.Raw
	}

	if dateOK {
		d := date
		switch candidate.Type {
		case core.TypeTrialSignup, core.TypeTrialReminder:
			detection.TrialEndDate = &d
		default:
			detection.NextBillingDate = &d
		}
		extracted["date_raw"] = dateRaw
	}

	detection.Confidence = Score(ConfidenceSignals{
		KnownType:       true,
		ServiceResolved: serviceName != "",
		DateFound:       dateOK,
		AmountFound:     amountOK,
		PatternMatches:  len(candidate.Matches),
	})

	return detection
}
