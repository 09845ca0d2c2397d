package ingest

import (
	"encoding/json"
	"log"

	"FlowScope/internal/config"
	"FlowScope/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher publishes flow records to a NATS subject. The wire format is
// JSON, one record per message.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.IngestConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes a record and publishes it to the configured subject.
func (p *Publisher) Publish(rec *model.FlowRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
