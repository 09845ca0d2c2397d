package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"FlowScope/internal/export"
	"FlowScope/internal/model"
	"FlowScope/internal/session"
	"FlowScope/internal/storage"
	flowpcap "FlowScope/pkg/pcap"
)

// pcap-analyzer builds an offline analysis session from a capture file,
// prints the statistics summary, and optionally exports the record set.
func main() {
	outPath := flag.String("o", "", "Export the record set to this file (format by extension: .csv or .json)")
	topN := flag.Int("top", 10, "Number of rows to keep per statistics table")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: pcap-analyzer [flags] <path_to_pcap_file>")
		os.Exit(1)
	}
	pcapFilePath := flag.Arg(0)

	reader, err := flowpcap.NewReader(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()
	log.Printf("Reading packets from '%s'...", pcapFilePath)

	sess := session.New(storage.NewMemoryStore(), *topN)

	records := make(chan model.FlowRecord, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		batch := make([]model.FlowRecord, 0, 1024)
		for rec := range records {
			batch = append(batch, rec)
			if len(batch) == cap(batch) {
				sess.Ingest(batch...)
				batch = batch[:0]
			}
		}
		sess.Ingest(batch...)
	}()

	reader.ReadRecords(records)
	close(records)
	<-done
	log.Printf("Finished reading: %d flow records.", sess.RecordCount())

	printSummary(sess)

	if *outPath != "" {
		if err := exportRecords(sess, *outPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	}
}

func printSummary(sess *session.Session) {
	snap := sess.Stats()
	s := snap.Summary

	fmt.Printf("\nRecords: %d  Bytes: %d  Packets: %d\n", s.Records, s.TotalBytes, s.TotalPackets)
	fmt.Printf("Accepted: %d  Rejected: %d  Unique sources: %d  Unique destinations: %d\n",
		s.Accepted, s.Rejected, s.UniqueSources, s.UniqueDests)
	if !s.PeakHour.IsZero() {
		fmt.Printf("Peak hour: %s (%d bytes)\n", s.PeakHour.Format("2006-01-02 15:00"), s.PeakHourBytes)
	}

	fmt.Println("\nTop talkers (by bytes):")
	for _, row := range snap.BySource {
		fmt.Printf("  %-40s %12d bytes  %6d conns  %5.1f%%\n", row.Key, row.Bytes, row.Connections, row.Percent)
	}
	fmt.Println("\nTop ports (by connections):")
	for _, row := range snap.ByPort {
		fmt.Printf("  %-40s %12d bytes  %6d conns\n", row.Key, row.Bytes, row.Connections)
	}
}

// exportRecords runs the export as a job and prints its progress events.
func exportRecords(sess *session.Session, path string) error {
	format := export.FormatJSON
	if len(path) > 4 && path[len(path)-4:] == ".csv" {
		format = export.FormatCSV
	}

	job := export.NewJob(format, sess.Filtered())
	go func() {
		for p := range job.Events() {
			log.Printf("Export progress: %d/%d records", p.Done, p.Total)
		}
	}()

	blob, err := job.Run(context.Background())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob.Data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	log.Printf("Exported %d bytes (%s) to %s", len(blob.Data), blob.MIME, path)
	return nil
}
