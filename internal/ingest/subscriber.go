package ingest

import (
	"encoding/json"
	"log"

	"FlowScope/internal/config"
	"FlowScope/internal/model"

	"github.com/nats-io/nats.go"
)

// RecordHandler is a function that processes a received flow record.
type RecordHandler func(rec model.FlowRecord)

// Subscriber subscribes to a NATS subject and decodes flow records.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.IngestConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes and invokes handler for each decoded record. Messages
// that fail to decode are logged and dropped.
func (s *Subscriber) Start(handler RecordHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var rec model.FlowRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			log.Printf("Error unmarshalling flow record: %v", err)
			return
		}
		handler(rec)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for records...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
