package factory

import (
	"fmt"

	"github.com/ronnydonkey/subtracker/internal/adapters/ingest"
	"github.com/ronnydonkey/subtracker/internal/config"
	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/ronnydonkey/subtracker/internal/ports"
	"github.com/ronnydonkey/subtracker/internal/utils"
	"go.uber.org/zap"
)

// IngestFactory creates email ingestors based on configuration
type IngestFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.DetectorService
	textProcessor *utils.TextProcessor
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.DetectorService,
	textProcessor *utils.TextProcessor,
) *IngestFactory {
	return &IngestFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateEmailIngestor creates an email ingestor based on the configuration
func (f *IngestFactory) CreateEmailIngestor() (ports.EmailIngestor, error) {
	ingestType := f.cfg.GetString("server.ingest_type")

	switch ingestType {
	case "smtp":
		return ingest.NewSMTPIngestor(
			f.service,
			f.logger,
			f.textProcessor,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetInt("engine.max_body_size"),
		), nil
	case "cli":
		return ingest.NewCLIIngestor(f.service, f.logger, false, false)
	default:
		return nil, fmt.Errorf("unsupported ingest type: %s", ingestType)
	}
}
