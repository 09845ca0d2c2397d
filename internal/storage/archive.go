package storage

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FlowScope/internal/model"
)

// SummaryData holds the metadata written next to each archived batch.
type SummaryData struct {
	Records      int    `json:"records"`
	TotalBytes   uint64 `json:"total_bytes"`
	TotalPackets uint64 `json:"total_packets"`
	Timestamp    string `json:"timestamp"`
}

// ArchiveWriter writes flow record batches to disk in gob format, one
// timestamped directory per flush, with a JSON summary alongside. It
// implements the model.RecordWriter interface.
type ArchiveWriter struct {
	rootPath string
	interval time.Duration
}

// NewArchiveWriter creates a writer rooted at rootPath.
func NewArchiveWriter(rootPath string, interval time.Duration) model.RecordWriter {
	return &ArchiveWriter{rootPath: rootPath, interval: interval}
}

// GetInterval returns the configured flush interval for this writer.
func (w *ArchiveWriter) GetInterval() time.Duration {
	return w.interval
}

// Write serializes a record batch into a timestamped archive directory.
// Empty batches are skipped.
func (w *ArchiveWriter) Write(records []model.FlowRecord) error {
	if len(records) == 0 {
		return nil
	}

	timestamp := time.Now().UTC().Format("2006-01-02_15-04-05")
	batchDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(batchDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	recordsPath := filepath.Join(batchDir, "records.dat")
	file, err := os.Create(recordsPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file '%s': %w", recordsPath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(records); err != nil {
		return fmt.Errorf("failed to encode records to gob: %w", err)
	}

	var totalBytes, totalPackets uint64
	for i := range records {
		totalBytes += records[i].Bytes
		totalPackets += records[i].Packets
	}
	summary := SummaryData{
		Records:      len(records),
		TotalBytes:   totalBytes,
		TotalPackets: totalPackets,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	summaryPath := filepath.Join(batchDir, "summary.json")
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	enc := json.NewEncoder(summaryFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}

	return nil
}

// ReadArchive loads a previously archived record batch from a batch
// directory.
func ReadArchive(batchDir string) ([]model.FlowRecord, error) {
	file, err := os.Open(filepath.Join(batchDir, "records.dat"))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	var records []model.FlowRecord
	if err := gob.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return records, nil
}
