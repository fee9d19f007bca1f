package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DetectorService wraps the pure detection engine with the operational
// concerns the engine is forbidden to have: logging, result storage for
// idempotent redelivery, and the auto-add confidence threshold.
type DetectorService struct {
	detector     Detector
	store        DetectionStore
	logger       *zap.Logger
	storeEnabled bool
	storeTTL     time.Duration
	threshold    float64
}

// NewDetectorService creates a new detector service.
func NewDetectorService(
	detector Detector,
	store DetectionStore,
	logger *zap.Logger,
	storeEnabled bool,
	storeTTL time.Duration,
	threshold float64,
) *DetectorService {
	return &DetectorService{
		detector:     detector,
		store:        store,
		logger:       logger,
		storeEnabled: storeEnabled,
		storeTTL:     storeTTL,
		threshold:    threshold,
	}
}

// Fingerprint derives a stable identifier for one physical email. The
// Message-ID header wins when present; otherwise sender, subject, receipt
// time and body are hashed together.
func Fingerprint(msg *EmailMessage) string {
	if id, ok := msg.Headers["Message-Id"]; ok && id != "" {
		sum := sha256.Sum256([]byte("message-id:" + strings.TrimSpace(id)))
		return hex.EncodeToString(sum[:])
	}
	h := sha256.New()
	h.Write([]byte(msg.From))
	h.Write([]byte{0})
	h.Write([]byte(msg.Subject))
	h.Write([]byte{0})
	h.Write([]byte(msg.ReceivedAt.UTC().Format(time.RFC3339)))
	h.Write([]byte{0})
	h.Write([]byte(msg.BodyText))
	h.Write([]byte{0})
	h.Write([]byte(msg.BodyHTML))
	return hex.EncodeToString(h.Sum(nil))
}

// AnalyzeMessage runs detection for one message. Redelivery of an already
// analyzed message returns the stored result instead of re-running the
// engine; the engine itself is idempotent, so this is purely an
// optimization plus a dedup guarantee for the caller.
func (s *DetectorService) AnalyzeMessage(ctx context.Context, msg *EmailMessage) (*AnalysisResult, error) {
	fingerprint := Fingerprint(msg)

	if s.storeEnabled {
		if record, ok := s.store.Get(ctx, fingerprint); ok {
			s.logger.Debug("Store hit for message",
				zap.String("fingerprint", fingerprint),
				zap.String("sender", msg.From))
			return &AnalysisResult{
				Fingerprint: fingerprint,
				Status:      record.Status,
				Detections:  record.Detections,
				AnalyzedAt:  record.AnalyzedAt,
				FromStore:   true,
			}, nil
		}
	}

	detections, err := s.detector.Detect(msg)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Fingerprint: fingerprint,
		Status:      s.classify(detections),
		Detections:  detections,
		AnalyzedAt:  time.Now().UTC(),
	}

	if len(detections) == 0 {
		s.logger.Info("No subscription detected",
			zap.String("sender", msg.From),
			zap.String("subject", msg.Subject))
	} else {
		best := BestDetection(detections)
		s.logger.Info("Subscription activity detected",
			zap.String("sender", msg.From),
			zap.String("service", best.ServiceName),
			zap.String("type", string(best.Type)),
			zap.Float64("confidence", best.Confidence),
			zap.Int("detections", len(detections)),
			zap.String("status", string(result.Status)))
	}

	if s.storeEnabled {
		s.store.Set(ctx, &DetectionRecord{
			Fingerprint: fingerprint,
			Status:      result.Status,
			Detections:  detections,
			AnalyzedAt:  result.AnalyzedAt,
			ExpiresAt:   result.AnalyzedAt.Add(s.storeTTL),
		})
	}

	return result, nil
}

// classify applies the auto-add threshold. The threshold is a caller-side
// policy; the engine never sees it.
func (s *DetectorService) classify(detections []DetectedSubscription) AnalysisStatus {
	if len(detections) == 0 {
		return StatusNoDetection
	}
	for _, d := range detections {
		if d.Confidence >= s.threshold {
			return StatusAutoAdd
		}
	}
	return StatusPendingReview
}

// BestDetection selects the highest-confidence detection from a non-empty
// list. Ties keep the earlier entry, preserving the engine's deterministic
// type order.
func BestDetection(detections []DetectedSubscription) *DetectedSubscription {
	if len(detections) == 0 {
		return nil
	}
	best := &detections[0]
	for i := range detections[1:] {
		if detections[i+1].Confidence > best.Confidence {
			best = &detections[i+1]
		}
	}
	return best
}
