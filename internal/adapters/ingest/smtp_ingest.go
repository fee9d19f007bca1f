package ingest

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/ronnydonkey/subtracker/internal/utils"
	"go.uber.org/zap"
)

// SMTPIngestor accepts inbound messages over SMTP and runs each one through
// the detector service. It is an ingestion endpoint only: messages are
// analyzed and acknowledged, never relayed onward.
type SMTPIngestor struct {
	service       *core.DetectorService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	listenAddr    string
	maxBodySize   int
	server        *smtp.Server
}

// NewSMTPIngestor creates a new SMTP ingestion endpoint.
func NewSMTPIngestor(
	service *core.DetectorService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	listenAddr string,
	maxBodySize int,
) *SMTPIngestor {
	return &SMTPIngestor{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		listenAddr:    listenAddr,
		maxBodySize:   maxBodySize,
	}
}

// Start starts the SMTP server.
func (i *SMTPIngestor) Start() error {
	i.server = smtp.NewServer(&smtpBackend{ingestor: i})

	i.server.Addr = i.listenAddr
	i.server.Domain = "localhost"
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP ingestor starting", zap.String("address", i.listenAddr))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server.
func (i *SMTPIngestor) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// ProcessMessage analyzes a single message.
func (i *SMTPIngestor) ProcessMessage(ctx context.Context, msg *core.EmailMessage) (*core.AnalysisResult, error) {
	return i.service.AnalyzeMessage(ctx, msg)
}

// smtpBackend implements the go-smtp Backend interface.
type smtpBackend struct {
	ingestor *SMTPIngestor
}

// NewSession creates a new SMTP session.
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingestor:   b.ingestor,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface.
type smtpSession struct {
	ingestor   *SMTPIngestor
	sender     string
	recipients []string
}

// Reset resets the session state.
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for ingestion).
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address.
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient.
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the message payload: parse, analyze, acknowledge. Analysis
// failures are logged but never bounce the message; a malformed email is
// the sender's problem, not the SMTP client's.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingestor.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	parsed, err := mail.ReadMessage(bufio.NewReader(bytes.NewReader(rawData)))
	if err != nil {
		s.ingestor.logger.Warn("Failed to parse message",
			zap.Error(err),
			zap.String("sender", s.sender))
		return nil
	}

	recipient := ""
	if len(s.recipients) > 0 {
		recipient = s.recipients[0]
	}

	msg, err := MessageFromMail(parsed, recipient, time.Now().UTC())
	if err != nil {
		s.ingestor.logger.Warn("Rejected invalid message",
			zap.Error(err),
			zap.String("sender", s.sender))
		return nil
	}

	// Bound and sanitize bodies before the message reaches the engine.
	msg, err = core.NewEmailMessage(
		msg.From,
		msg.To,
		msg.Subject,
		s.ingestor.textProcessor.ProcessText(msg.BodyText, s.ingestor.maxBodySize),
		s.ingestor.textProcessor.ProcessText(msg.BodyHTML, s.ingestor.maxBodySize),
		msg.ReceivedAt,
		msg.Headers,
	)
	if err != nil {
		s.ingestor.logger.Warn("Rejected invalid message",
			zap.Error(err),
			zap.String("sender", s.sender))
		return nil
	}

	result, err := s.ingestor.service.AnalyzeMessage(context.Background(), msg)
	if err != nil {
		s.ingestor.logger.Error("Failed to analyze message",
			zap.Error(err),
			zap.String("sender", msg.From))
		return nil
	}

	s.ingestor.logger.Info("Ingested message",
		zap.String("sender", msg.From),
		zap.String("recipient", recipient),
		zap.String("status", string(result.Status)),
		zap.Int("detections", len(result.Detections)),
		zap.Bool("from_store", result.FromStore))

	return nil
}

// Logout handles session teardown.
func (s *smtpSession) Logout() error {
	return nil
}
