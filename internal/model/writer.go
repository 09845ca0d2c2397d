package model

import "time"

// RecordWriter defines a generic interface for persisting batches of flow
// records to a durable store.
type RecordWriter interface {
	// Write persists a batch of records. Implementations must treat an
	// empty batch as a no-op, not an error.
	Write(records []FlowRecord) error

	// GetInterval returns the configured flush interval for this writer.
	GetInterval() time.Duration
}
