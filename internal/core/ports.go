package core

import (
	"context"
)

// Detector is the engine boundary: a pure, synchronous detection call over
// one message. Implementations must be safe for concurrent use and must
// produce identical output for identical input.
type Detector interface {
	// Detect classifies a message and extracts subscription lifecycle
	// events from it. An empty slice means nothing actionable was found.
	Detect(msg *EmailMessage) ([]DetectedSubscription, error)
}

// DetectionStore caches analysis results keyed by message fingerprint so
// that repeated deliveries of the same physical email short-circuit to the
// stored outcome.
type DetectionStore interface {
	// Get retrieves a stored record for a fingerprint.
	Get(ctx context.Context, fingerprint string) (*DetectionRecord, bool)

	// Set stores a record.
	Set(ctx context.Context, record *DetectionRecord)

	// Delete removes a record.
	Delete(ctx context.Context, fingerprint string) error

	// Cleanup removes expired records.
	Cleanup(ctx context.Context) error
}
