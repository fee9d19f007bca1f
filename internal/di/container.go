package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/ronnydonkey/subtracker/internal/config"
	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/ronnydonkey/subtracker/internal/engine"
	"github.com/ronnydonkey/subtracker/internal/factory"
	"github.com/ronnydonkey/subtracker/internal/logging"
	"github.com/ronnydonkey/subtracker/internal/ports"
	"github.com/ronnydonkey/subtracker/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register detection engine
	if err := container.Provide(func(f *factory.EngineFactory) (*engine.Engine, error) {
		return f.CreateEngine()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(e *engine.Engine) core.Detector {
		return e
	}); err != nil {
		return nil, err
	}

	// Register detection store
	if err := container.Provide(func(f *factory.StoreFactory) (core.DetectionStore, error) {
		return f.CreateDetectionStore()
	}); err != nil {
		return nil, err
	}

	// Register store TTL and enabled flag
	if err := container.Provide(func(f *factory.StoreFactory) (time.Duration, error) {
		return f.GetStoreTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StoreFactory) bool {
		return f.IsStoreEnabled()
	}); err != nil {
		return nil, err
	}

	// Register auto-add threshold
	if err := container.Provide(func(f *factory.EngineFactory, logger *zap.Logger) float64 {
		threshold := f.GetAutoAddThreshold()
		logger.Info("Using auto-add confidence threshold", zap.Float64("threshold", threshold))
		return threshold
	}); err != nil {
		return nil, err
	}

	// Register detector service
	if err := container.Provide(core.NewDetectorService); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register email ingestor
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngestor, error) {
		return f.CreateEmailIngestor()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
