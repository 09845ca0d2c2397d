package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"FlowScope/internal/alerter"
	"FlowScope/internal/config"
	"FlowScope/internal/metrics"
	"FlowScope/internal/model"
	"FlowScope/internal/notification"
	"FlowScope/internal/session"
	"FlowScope/internal/storage"
)

// ingestBatchSize bounds how many records a worker folds into the session
// per lock acquisition.
const ingestBatchSize = 256

// spool buffers records bound for one writer between flushes.
type spool struct {
	writer model.RecordWriter
	name   string

	mu      sync.Mutex
	pending []model.FlowRecord
}

func (sp *spool) add(records []model.FlowRecord) {
	sp.mu.Lock()
	sp.pending = append(sp.pending, records...)
	sp.mu.Unlock()
}

func (sp *spool) drain() []model.FlowRecord {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	pending := sp.pending
	sp.pending = nil
	return pending
}

// Manager orchestrates the ingest pipeline: a worker pool folds records
// from the input channel into the session store, per-writer flushers
// persist them on their own intervals, and the alerter evaluates rules
// over the live statistics.
type Manager struct {
	session *session.Session
	spools  []*spool
	alerter *alerter.Alerter

	recordChannel chan model.FlowRecord
	numWorkers    int
	workerWg      sync.WaitGroup

	done      chan struct{}
	flusherWg sync.WaitGroup
}

// NewManager builds a manager from the configuration: it constructs the
// configured writers, the saved-filter store and (when enabled) the
// alerter around the given session.
func NewManager(cfg *config.Config, sess *session.Session) (*Manager, error) {
	m := &Manager{
		session:       sess,
		recordChannel: make(chan model.FlowRecord, cfg.Engine.SizeOfRecordChannel),
		numWorkers:    cfg.Engine.NumWorkers,
		done:          make(chan struct{}),
	}
	if m.numWorkers <= 0 {
		m.numWorkers = 1
	}

	for _, def := range cfg.Storage.Writers {
		if !def.Enabled {
			continue
		}
		interval, err := time.ParseDuration(def.FlushInterval)
		if err != nil {
			log.Printf("Warning: invalid flush_interval for writer type '%s': %v, skipping.", def.Type, err)
			continue
		}

		var writer model.RecordWriter
		switch def.Type {
		case "archive":
			writer = storage.NewArchiveWriter(def.Archive.RootPath, interval)
		case "clickhouse":
			writer, err = storage.NewClickHouseWriter(def.ClickHouse, interval)
			if err != nil {
				log.Printf("Warning: failed to create writer type '%s': %v, skipping.", def.Type, err)
				continue
			}
		default:
			log.Printf("Warning: unknown writer type '%s' in config, skipping.", def.Type)
			continue
		}
		m.spools = append(m.spools, &spool{writer: writer, name: def.Type})
	}

	if cfg.Alerter.Enabled {
		var notifier model.Notifier
		if cfg.SMTP.Host != "" {
			notifier = notification.NewEmailNotifier(cfg.SMTP)
		}
		if notifier != nil {
			a, err := alerter.NewAlerter(&cfg.Alerter, sess, notifier)
			if err != nil {
				return nil, fmt.Errorf("failed to create alerter: %w", err)
			}
			m.alerter = a
			log.Println("Alerter enabled and initialized.")
		} else {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	return m, nil
}

// Start launches the worker pool, one flusher per writer, and the alerter.
func (m *Manager) Start() {
	for _, sp := range m.spools {
		m.flusherWg.Add(1)
		go m.runFlusher(sp)
		log.Printf("Started flusher for '%s' writer with interval %s.", sp.name, sp.writer.GetInterval())
	}

	if m.alerter != nil {
		m.alerter.Start()
	}

	m.workerWg.Add(m.numWorkers)
	for i := 0; i < m.numWorkers; i++ {
		go m.worker()
	}
	log.Printf("Manager started with %d workers.", m.numWorkers)
}

// Stop drains the pipeline: no new records are accepted, workers finish
// the buffered backlog, flushers take a final flush, and the alerter
// shuts down.
func (m *Manager) Stop() {
	log.Println("Manager stopping...")
	close(m.recordChannel)

	log.Println("Waiting for workers to finish...")
	m.workerWg.Wait()

	close(m.done)
	log.Println("Waiting for flushers to finish...")
	m.flusherWg.Wait()

	if m.alerter != nil {
		m.alerter.Stop()
	}
	log.Println("Manager stopped.")
}

// InputChannel returns the channel records should be sent to.
func (m *Manager) InputChannel() chan<- model.FlowRecord {
	return m.recordChannel
}

// worker folds records into the session in small batches so a burst of
// messages does not recompute the derived views once per record.
func (m *Manager) worker() {
	defer m.workerWg.Done()

	batch := make([]model.FlowRecord, 0, ingestBatchSize)
	for rec := range m.recordChannel {
		batch = append(batch[:0], rec)
	drain:
		for len(batch) < ingestBatchSize {
			select {
			case next, ok := <-m.recordChannel:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}

		m.session.Ingest(batch...)
		for _, sp := range m.spools {
			sp.add(batch)
		}
		metrics.RecordsIngested.Add(float64(len(batch)))
		metrics.SessionRecords.Set(float64(m.session.RecordCount()))
	}
}

// runFlusher periodically drains a spool into its writer, with a final
// flush on shutdown.
func (m *Manager) runFlusher(sp *spool) {
	defer m.flusherWg.Done()

	interval := sp.writer.GetInterval()
	if interval <= 0 {
		log.Printf("Invalid interval %s for '%s' writer, flusher will not run.", interval, sp.name)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flush(sp)
		case <-m.done:
			m.flush(sp)
			return
		}
	}
}

func (m *Manager) flush(sp *spool) {
	pending := sp.drain()
	if len(pending) == 0 {
		return
	}
	if err := sp.writer.Write(pending); err != nil {
		log.Printf("Error flushing %d records to '%s' writer: %v", len(pending), sp.name, err)
		return
	}
	metrics.WriterFlushes.WithLabelValues(sp.name).Inc()
}
