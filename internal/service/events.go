package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ImportEvent announces a finished CSV ingestion run to interested
// consumers (notification fanout, downstream sync jobs).
type ImportEvent struct {
	Kind       string    `json:"kind"`
	FileName   string    `json:"fileName"`
	CourseID   string    `json:"courseId,omitempty"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ImportEventPublisher publishes import completion events.
type ImportEventPublisher interface {
	PublishImportCompleted(ctx context.Context, event ImportEvent) error
}

type natsImportPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSImportPublisher builds a NATS-backed publisher. A nil connection
// yields a publisher that drops events, so the import path works without a
// broker.
func NewNATSImportPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) ImportEventPublisher {
	if subject == "" {
		subject = "nptel.imports.completed"
	}

	return &natsImportPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "import_event_publisher").Logger(),
	}
}

func (p *natsImportPublisher) PublishImportCompleted(_ context.Context, event ImportEvent) error {
	if p.conn == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish import event")
		return err
	}

	return nil
}
