package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"time"

	"github.com/ronnydonkey/subtracker/internal/adapters/ingest"
	"github.com/ronnydonkey/subtracker/internal/adapters/store"
	"github.com/ronnydonkey/subtracker/internal/config"
	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/ronnydonkey/subtracker/internal/factory"
	"github.com/ronnydonkey/subtracker/internal/logging"
	"github.com/ronnydonkey/subtracker/internal/utils"
	"go.uber.org/zap"
)

var (
	// Detection flags
	threshold   = flag.Float64("threshold", 0.8, "Auto-add confidence threshold")
	maxBodySize = flag.Int("max-body-size", 65536, "Maximum message body size to analyze")
	legacyBest  = flag.Bool("best", false, "Emit a single best detection in the legacy result shape")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	jsonOutput = flag.Bool("json", false, "Output results as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.NewFromFile(*configFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Build the engine
	engineFactory := factory.NewEngineFactory(cfg, logger)
	detector, err := engineFactory.CreateEngine()
	if err != nil {
		logger.Fatal("Failed to build detection engine", zap.Error(err))
	}

	// One-shot runs keep results in memory only; the store still
	// exercises the same code path as the daemon.
	detectionStore := store.NewMemoryStore(logger, time.Hour)
	defer detectionStore.Stop()

	service := core.NewDetectorService(
		detector,
		detectionStore,
		logger,
		false,
		time.Hour,
		engineFactory.GetAutoAddThreshold(),
	)

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Debug("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Debug("Reading email from stdin")
	}

	// Parse email
	parsed, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email message", zap.Error(err))
	}

	msg, err := ingest.MessageFromMail(parsed, "", time.Now().UTC())
	if err != nil {
		logger.Fatal("Invalid email message", zap.Error(err))
	}

	textProcessor := utils.NewTextProcessor(logger)
	msg, err = core.NewEmailMessage(
		msg.From,
		msg.To,
		msg.Subject,
		textProcessor.ProcessText(msg.BodyText, engineFactory.GetMaxBodySize()),
		textProcessor.ProcessText(msg.BodyHTML, engineFactory.GetMaxBodySize()),
		msg.ReceivedAt,
		msg.Headers,
	)
	if err != nil {
		logger.Fatal("Invalid email message", zap.Error(err))
	}

	if *legacyBest {
		result, err := detector.DetectPrimary(msg)
		if err != nil {
			logger.Fatal("Detection failed", zap.Error(err))
		}
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to encode result", zap.Error(err))
		}
		fmt.Println(string(encoded))
		return
	}

	cli, err := ingest.NewCLIIngestor(service, logger, *verbose, *jsonOutput)
	if err != nil {
		logger.Fatal("Failed to create CLI ingestor", zap.Error(err))
	}

	result, err := cli.ProcessMessage(context.Background(), msg)
	if err != nil {
		logger.Fatal("Detection failed", zap.Error(err))
	}

	// Non-zero exit when nothing was detected, for shell pipelines.
	if result.Status == core.StatusNoDetection {
		os.Exit(2)
	}
}

// createConfigFromFlags builds a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()
	v.Set("engine.auto_add_threshold", *threshold)
	v.Set("engine.max_body_size", *maxBodySize)
	v.Set("logging.level", map[bool]string{true: "debug", false: "info"}[*verbose])
	return config.NewFromViper(v)
}
