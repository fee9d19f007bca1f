package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ronnydonkey/subtracker/internal/core"
	"go.uber.org/zap"
)

// CLIIngestor processes a single message and prints the outcome, for
// one-shot invocations and local debugging.
type CLIIngestor struct {
	service    *core.DetectorService
	logger     *zap.Logger
	verbose    bool
	jsonOutput bool
}

// NewCLIIngestor creates a new CLI ingestor.
func NewCLIIngestor(service *core.DetectorService, logger *zap.Logger, verbose, jsonOutput bool) (*CLIIngestor, error) {
	return &CLIIngestor{
		service:    service,
		logger:     logger,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}, nil
}

// ProcessMessage analyzes a message and displays the results.
func (i *CLIIngestor) ProcessMessage(ctx context.Context, msg *core.EmailMessage) (*core.AnalysisResult, error) {
	i.logger.Debug("Processing message", zap.String("sender", msg.From))

	if !i.jsonOutput {
		fmt.Printf("\n=== Message Summary ===\n")
		fmt.Printf("From: %s\n", msg.From)
		fmt.Printf("To: %s\n", msg.To)
		fmt.Printf("Subject: %s\n", msg.Subject)
		fmt.Printf("Received: %s\n", msg.ReceivedAt.Format(time.RFC3339))
		fmt.Printf("Body length: %d bytes\n", len(msg.BodyText)+len(msg.BodyHTML))

		if i.verbose && msg.BodyText != "" {
			preview := msg.BodyText
			if len(preview) > 500 {
				preview = preview[:500] + "..."
			}
			fmt.Printf("\nBody preview:\n%s\n", preview)
		}
		fmt.Printf("\n=== Analysis ===\n")
	}

	startTime := time.Now()
	result, err := i.service.AnalyzeMessage(ctx, msg)
	if err != nil {
		i.logger.Error("Failed to analyze message", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	if i.jsonOutput {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, err
		}
		fmt.Println(string(encoded))
		return result, nil
	}

	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Fingerprint: %s\n", result.Fingerprint)
	fmt.Printf("Processing time: %v\n", duration)

	if len(result.Detections) == 0 {
		fmt.Printf("\nNo subscription activity detected.\n")
		return result, nil
	}

	for n, d := range result.Detections {
		fmt.Printf("\n=== Detection %d ===\n", n+1)
		fmt.Printf("Service: %s\n", d.ServiceName)
		fmt.Printf("Type: %s\n", d.Type)
		fmt.Printf("Confidence: %.2f\n", d.Confidence)
		if d.Cost != nil {
			fmt.Printf("Cost: %s %s\n", d.Cost.StringFixed(2), d.Currency)
		}
		if d.BillingCycle != "" {
			fmt.Printf("Billing cycle: %s\n", d.BillingCycle)
		}
		if d.TrialEndDate != nil {
			fmt.Printf("Trial ends: %s\n", d.TrialEndDate.Format("2006-01-02"))
		}
		if d.NextBillingDate != nil {
			fmt.Printf("Next billing: %s\n", d.NextBillingDate.Format("2006-01-02"))
		}
		if snippet, ok := d.Extracted["snippet"]; ok {
			fmt.Printf("Matched: %q\n", snippet)
		}
	}

	return result, nil
}

// Start is a no-op for the CLI ingestor.
func (i *CLIIngestor) Start() error {
	return nil
}

// Stop is a no-op for the CLI ingestor.
func (i *CLIIngestor) Stop() error {
	return nil
}
