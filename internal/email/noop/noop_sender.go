package noop

import (
	"context"

	"go.uber.org/zap"

	"facturo/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates a no-op EmailSender that only logs outgoing documents.
func NewNoopSender(log *zap.Logger) port.EmailSender {
	return &noopSender{log: log.Named("noop_email")}
}

func (s *noopSender) SendDocumentEmail(_ context.Context, msg port.DocumentEmail) error {
	s.log.Info("document email suppressed",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("attachment", msg.Filename),
		zap.Int("attachment_bytes", len(msg.Attachment)))
	return nil
}
