package store

import (
	"context"
	"testing"
	"time"

	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRecord(fingerprint string, expiresAt time.Time) *core.DetectionRecord {
	return &core.DetectionRecord{
		Fingerprint: fingerprint,
		Status:      core.StatusAutoAdd,
		Detections: []core.DetectedSubscription{
			{ServiceName: "Netflix", Type: core.TypeBillingConfirmation, Confidence: 0.9},
		},
		AnalyzedAt: time.Now().UTC(),
		ExpiresAt:  expiresAt,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	defer s.Stop()
	ctx := context.Background()

	s.Set(ctx, testRecord("fp1", time.Now().Add(time.Hour)))

	record, ok := s.Get(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, core.StatusAutoAdd, record.Status)
	assert.Len(t, record.Detections, 1)
	assert.Equal(t, "Netflix", record.Detections[0].ServiceName)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	defer s.Stop()

	_, ok := s.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestMemoryStoreExpiredRecordIsInvisible(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	defer s.Stop()
	ctx := context.Background()

	s.Set(ctx, testRecord("fp1", time.Now().Add(-time.Minute)))

	_, ok := s.Get(ctx, "fp1")
	assert.False(t, ok)
}

func TestMemoryStoreCleanupRemovesExpired(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	defer s.Stop()
	ctx := context.Background()

	s.Set(ctx, testRecord("live", time.Now().Add(time.Hour)))
	s.Set(ctx, testRecord("dead", time.Now().Add(-time.Minute)))

	require.NoError(t, s.Cleanup(ctx))

	_, ok := s.Get(ctx, "live")
	assert.True(t, ok)
	s.mu.RLock()
	_, exists := s.records["dead"]
	s.mu.RUnlock()
	assert.False(t, exists)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), time.Hour)
	defer s.Stop()
	ctx := context.Background()

	s.Set(ctx, testRecord("fp1", time.Now().Add(time.Hour)))
	require.NoError(t, s.Delete(ctx, "fp1"))

	_, ok := s.Get(ctx, "fp1")
	assert.False(t, ok)
}
