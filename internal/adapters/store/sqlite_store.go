package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ronnydonkey/subtracker/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the DetectionStore interface.
// Detections are serialized as JSON; the store is a dedup cache, not the
// system of record.
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteStore creates a new SQLite detection store.
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS detection_cache (
			fingerprint TEXT PRIMARY KEY,
			status TEXT,
			detections TEXT,
			analyzed_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_detection_expires_at ON detection_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	s := &SQLiteStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go s.startCleanupTask()

	return s, nil
}

// Get retrieves a stored record for a fingerprint.
func (s *SQLiteStore) Get(ctx context.Context, fingerprint string) (*core.DetectionRecord, bool) {
	var status, detectionsJSON, analyzedAt, expiresAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT status, detections, analyzed_at, expires_at
		FROM detection_cache
		WHERE fingerprint = ? AND expires_at > ?
	`, fingerprint, time.Now().UTC().Format(time.RFC3339)).Scan(&status, &detectionsJSON, &analyzedAt, &expiresAt)

	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error("Failed to query detection store", zap.Error(err), zap.String("fingerprint", fingerprint))
		}
		return nil, false
	}

	var detections []core.DetectedSubscription
	if err := json.Unmarshal([]byte(detectionsJSON), &detections); err != nil {
		s.logger.Error("Failed to decode stored detections", zap.Error(err), zap.String("fingerprint", fingerprint))
		return nil, false
	}

	analyzed, err := time.Parse(time.RFC3339, analyzedAt)
	if err != nil {
		s.logger.Error("Failed to parse analyzed_at timestamp", zap.Error(err))
		return nil, false
	}
	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		s.logger.Error("Failed to parse expires_at timestamp", zap.Error(err))
		return nil, false
	}

	return &core.DetectionRecord{
		Fingerprint: fingerprint,
		Status:      core.AnalysisStatus(status),
		Detections:  detections,
		AnalyzedAt:  analyzed,
		ExpiresAt:   expires,
	}, true
}

// Set stores a record.
func (s *SQLiteStore) Set(ctx context.Context, record *core.DetectionRecord) {
	detectionsJSON, err := json.Marshal(record.Detections)
	if err != nil {
		s.logger.Error("Failed to encode detections", zap.Error(err), zap.String("fingerprint", record.Fingerprint))
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO detection_cache (fingerprint, status, detections, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.Fingerprint, string(record.Status), string(detectionsJSON),
		record.AnalyzedAt.UTC().Format(time.RFC3339), record.ExpiresAt.UTC().Format(time.RFC3339))

	if err != nil {
		s.logger.Error("Failed to insert detection record", zap.Error(err), zap.String("fingerprint", record.Fingerprint))
	}
}

// Delete removes a record.
func (s *SQLiteStore) Delete(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM detection_cache
		WHERE fingerprint = ?
	`, fingerprint)

	if err != nil {
		return fmt.Errorf("failed to delete detection record: %w", err)
	}

	return nil
}

// Cleanup removes expired records.
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM detection_cache
		WHERE expires_at <= ?
	`, time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to clean up expired records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired detection records", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired records.
func (s *SQLiteStore) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database.
func (s *SQLiteStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
