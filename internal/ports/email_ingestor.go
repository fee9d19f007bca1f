package ports

import (
	"context"

	"github.com/ronnydonkey/subtracker/internal/core"
)

// EmailIngestor defines the interface for message ingestion surfaces (SMTP
// endpoint, one-shot CLI).
type EmailIngestor interface {
	// ProcessMessage analyzes a single message and returns the outcome.
	ProcessMessage(ctx context.Context, msg *core.EmailMessage) (*core.AnalysisResult, error)

	// Start starts the ingestor.
	Start() error

	// Stop stops the ingestor.
	Stop() error
}
