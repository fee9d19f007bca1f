package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ronnydonkey/subtracker/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the DetectionStore interface, for
// deployments where several ingestion workers share one dedup cache.
type MySQLStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLStore creates a new MySQL detection store.
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS detection_cache (
			fingerprint VARCHAR(64) PRIMARY KEY,
			status VARCHAR(32),
			detections JSON,
			analyzed_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_detection_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s := &MySQLStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go s.startCleanupTask()

	return s, nil
}

// Get retrieves a stored record for a fingerprint.
func (s *MySQLStore) Get(ctx context.Context, fingerprint string) (*core.DetectionRecord, bool) {
	var status, detectionsJSON string
	var analyzedAt, expiresAt time.Time

	err := s.db.QueryRowContext(ctx, `
		SELECT status, detections, analyzed_at, expires_at
		FROM detection_cache
		WHERE fingerprint = ? AND expires_at > NOW()
	`, fingerprint).Scan(&status, &detectionsJSON, &analyzedAt, &expiresAt)

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

	return &core.DetectionRecord{
		Fingerprint: fingerprint,
		Status:      core.AnalysisStatus(status),
		Detections:  detections,
		AnalyzedAt:  analyzedAt,
		ExpiresAt:   expiresAt,
	}, true
}

// Set stores a record.
func (s *MySQLStore) Set(ctx context.Context, record *core.DetectionRecord) {
	detectionsJSON, err := json.Marshal(record.Detections)
	if err != nil {
		s.logger.Error("Failed to encode detections", zap.Error(err), zap.String("fingerprint", record.Fingerprint))
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO detection_cache (fingerprint, status, detections, analyzed_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			detections = VALUES(detections),
			analyzed_at = VALUES(analyzed_at),
			expires_at = VALUES(expires_at)
	`, record.Fingerprint, string(record.Status), string(detectionsJSON), record.AnalyzedAt, record.ExpiresAt)

	if err != nil {
		s.logger.Error("Failed to insert detection record", zap.Error(err), zap.String("fingerprint", record.Fingerprint))
	}
}

// Delete removes a record.
func (s *MySQLStore) Delete(ctx context.Context, fingerprint string) error {
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
func (s *MySQLStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM detection_cache
		WHERE expires_at <= NOW()
	`)

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
func (s *MySQLStore) startCleanupTask() {
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
func (s *MySQLStore) Stop() {
	close(s.stopCh)
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
