// Package notify announces newly published record sets to other services.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// DefaultSubject is used when no subject is configured
const DefaultSubject = "visits.recordset.reloaded"

// Publisher announces record set reloads
type Publisher interface {
	PublishReload(ctx context.Context, rs *models.RecordSet) error
	Close()
}

// ReloadEvent is the message body sent after a reload
type ReloadEvent struct {
	RecordSetID   string    `json:"record_set_id"`
	Source        string    `json:"source"`
	LoadedAt      time.Time `json:"loaded_at"`
	Records       int       `json:"records"`
	RowsDropped   int       `json:"rows_dropped"`
	ChunksSkipped int       `json:"chunks_skipped"`
	Partial       bool      `json:"partial"`
}

// NewReloadEvent summarizes rs
func NewReloadEvent(rs *models.RecordSet) ReloadEvent {
	return ReloadEvent{
		RecordSetID:   rs.ID,
		Source:        rs.Source,
		LoadedAt:      rs.LoadedAt,
		Records:       rs.Len(),
		RowsDropped:   rs.Report.RowsDropped,
		ChunksSkipped: rs.Report.ChunksSkipped,
		Partial:       rs.Report.Partial,
	}
}

// NATSPublisher publishes reload events on a plain NATS subject
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS. The connection retries in the
// background, so a broker that is down at startup does not block the service.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("visits-backend"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishReload sends a ReloadEvent for rs
func (p *NATSPublisher) PublishReload(ctx context.Context, rs *models.RecordSet) error {
	data, err := json.Marshal(NewReloadEvent(rs))
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", p.subject, err)
	}
	return nil
}

// Close drains and closes the connection
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// NopPublisher discards events; used when NATS is not configured
type NopPublisher struct{}

func (NopPublisher) PublishReload(context.Context, *models.RecordSet) error { return nil }

func (NopPublisher) Close() {}
