package export

import (
	"context"
	"errors"
	"fmt"

	"FlowScope/internal/model"
)

// ErrNoData is returned when an export is requested for an empty record
// set. Callers decide whether that is fatal or a no-op.
var ErrNoData = errors.New("no data to export")

// Format names a registered export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Blob is a finished export: the serialized bytes and their MIME type,
// ready to hand to a download collaborator.
type Blob struct {
	Data []byte `json:"-"`
	MIME string `json:"mime"`
}

// encoder serializes a record set into a blob, reporting row progress
// through report (called with the number of rows encoded so far). A
// non-nil error from report aborts the encode.
type encoder func(records []model.FlowRecord, report func(done int) error) (*Blob, error)

// registry maps format names to their encoders. Encoders register
// themselves in init, mirroring how storage writers are assembled.
var registry = make(map[Format]encoder)

func register(f Format, enc encoder) {
	if _, exists := registry[f]; exists {
		panic(fmt.Sprintf("export format %q already registered", f))
	}
	registry[f] = enc
}

// Records serializes a record set synchronously. An empty set is rejected
// with ErrNoData regardless of format.
func Records(f Format, records []model.FlowRecord) (*Blob, error) {
	enc, ok := registry[f]
	if !ok {
		return nil, fmt.Errorf("unknown export format: %q", f)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return enc(records, nil)
}

// Progress is one event in the finite progress sequence of an export job.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// progressInterval is the row granularity of progress events.
const progressInterval = 1000

// Job is a cancellable export over a record set. Consume Events while Run
// executes; the channel is closed when the job finishes or is cancelled.
// A job runs at most once and is not restartable.
type Job struct {
	format  Format
	records []model.FlowRecord
	events  chan Progress
	started bool
}

// NewJob prepares an export job for the given format and record set.
func NewJob(f Format, records []model.FlowRecord) *Job {
	return &Job{
		format:  f,
		records: records,
		events:  make(chan Progress, 16),
	}
}

// Events returns the progress event sequence. It is closed by Run.
func (j *Job) Events() <-chan Progress {
	return j.events
}

// Run executes the export, emitting progress events as rows are encoded
// and honoring context cancellation between batches.
func (j *Job) Run(ctx context.Context) (*Blob, error) {
	if j.started {
		return nil, errors.New("export job already consumed")
	}
	j.started = true
	defer close(j.events)

	enc, ok := registry[j.format]
	if !ok {
		return nil, fmt.Errorf("unknown export format: %q", j.format)
	}
	if len(j.records) == 0 {
		return nil, ErrNoData
	}

	total := len(j.records)
	blob, err := enc(j.records, func(done int) error {
		// Cancellation takes priority over event delivery: a ready
		// events channel must not race the done channel.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		select {
		case j.events <- Progress{Done: done, Total: total}:
		default:
			// Slow consumer; progress is advisory, drop the event.
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	select {
	case j.events <- Progress{Done: total, Total: total}:
	default:
	}
	return blob, nil
}
