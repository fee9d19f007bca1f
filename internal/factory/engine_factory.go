package factory

import (
	"fmt"

	"github.com/ronnydonkey/subtracker/internal/config"
	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/ronnydonkey/subtracker/internal/engine"
	"go.uber.org/zap"
)

// EngineFactory builds the detection engine's static tables from
// configuration. The tables are constructed once here and shared,
// immutable, across every detection.
type EngineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEngineFactory creates a new engine factory.
func NewEngineFactory(cfg *config.Config, logger *zap.Logger) *EngineFactory {
	return &EngineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEngine builds an engine with the built-in tables plus any extras
// from configuration.
func (f *EngineFactory) CreateEngine() (*engine.Engine, error) {
	extraServices := f.cfg.GetStringMapString("engine.extra_services")
	if len(extraServices) > 0 {
		f.logger.Info("Loaded extra service identifiers", zap.Int("count", len(extraServices)))
	}
	registry := engine.NewServiceRegistry(extraServices)

	extraPhrases := f.cfg.GetStringSlice("engine.extra_noise_phrases")
	if len(extraPhrases) > 0 {
		f.logger.Info("Loaded extra noise phrases", zap.Int("count", len(extraPhrases)))
	}
	noise := engine.NewNoiseFilter(extraPhrases)

	patterns, err := engine.NewPatternLibrary(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern library: %w", err)
	}

	return engine.New(registry, patterns, noise), nil
}

// GetAutoAddThreshold returns the configured auto-add confidence threshold.
func (f *EngineFactory) GetAutoAddThreshold() float64 {
	return f.cfg.GetFloat64("engine.auto_add_threshold")
}

// GetMaxBodySize returns the configured body size bound for ingestion.
func (f *EngineFactory) GetMaxBodySize() int {
	return f.cfg.GetInt("engine.max_body_size")
}

var _ core.Detector = (*engine.Engine)(nil)
