package store

import (
	"context"
	"sync"
	"time"

	"github.com/ronnydonkey/subtracker/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the DetectionStore
// interface.
type MemoryStore struct {
	records     map[string]*core.DetectionRecord
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryStore creates a new in-memory detection store.
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		records:     make(map[string]*core.DetectionRecord),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go s.startCleanupTask()

	return s
}

// Get retrieves a stored record for a fingerprint.
func (s *MemoryStore) Get(ctx context.Context, fingerprint string) (*core.DetectionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[fingerprint]
	if !ok {
		return nil, false
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, false
	}
	return record, true
}

// Set stores a record.
func (s *MemoryStore) Set(ctx context.Context, record *core.DetectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Fingerprint] = record
}

// Delete removes a record.
func (s *MemoryStore) Delete(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, fingerprint)
	return nil
}

// Cleanup removes expired records.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for fingerprint, record := range s.records {
		if now.After(record.ExpiresAt) {
			delete(s.records, fingerprint)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired detection records", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired records.
func (s *MemoryStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up detection store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task.
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}
