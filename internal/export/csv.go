package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"FlowScope/internal/model"
)

func init() {
	register(FormatCSV, encodeCSV)
}

// mimeCSV is the MIME type attached to CSV blobs.
const mimeCSV = "text/csv"

var csvHeader = []string{
	"timestamp", "src_addr", "dst_addr", "src_port", "dst_port",
	"protocol", "action", "bytes", "packets",
	"account_id", "vpc_id", "subnet_id", "instance_id", "region",
}

// encodeCSV writes records as RFC 4180 CSV with a header row. Quoting of
// values containing delimiters, quotes or newlines is handled by
// encoding/csv.
func encodeCSV(records []model.FlowRecord, report func(done int) error) (*Blob, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		row := []string{
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.SrcAddr,
			rec.DstAddr,
			strconv.Itoa(int(rec.SrcPort)),
			strconv.Itoa(int(rec.DstPort)),
			rec.Protocol,
			string(rec.Action),
			strconv.FormatUint(rec.Bytes, 10),
			strconv.FormatUint(rec.Packets, 10),
			rec.AccountID,
			rec.VPCID,
			rec.SubnetID,
			rec.InstanceID,
			rec.Region,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
		if report != nil && (i+1)%progressInterval == 0 {
			if err := report(i + 1); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return &Blob{Data: buf.Bytes(), MIME: mimeCSV}, nil
}

// ParseRecordsCSV reads records back from the CSV produced by the CSV
// encoder. Used for re-import and round-trip verification.
func ParseRecordsCSV(data []byte) ([]model.FlowRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected CSV header: %d columns, want %d", len(header), len(csvHeader))
	}

	var records []model.FlowRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", row[0], err)
		}
		srcPort, err := strconv.ParseUint(row[3], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid src_port %q: %w", row[3], err)
		}
		dstPort, err := strconv.ParseUint(row[4], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid dst_port %q: %w", row[4], err)
		}
		bytesCount, err := strconv.ParseUint(row[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes %q: %w", row[7], err)
		}
		packets, err := strconv.ParseUint(row[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid packets %q: %w", row[8], err)
		}

		records = append(records, model.FlowRecord{
			Timestamp:  ts,
			SrcAddr:    row[1],
			DstAddr:    row[2],
			SrcPort:    uint16(srcPort),
			DstPort:    uint16(dstPort),
			Protocol:   row[5],
			Action:     model.Action(row[6]),
			Bytes:      bytesCount,
			Packets:    packets,
			AccountID:  row[9],
			VPCID:      row[10],
			SubnetID:   row[11],
			InstanceID: row[12],
			Region:     row[13],
		})
	}
	return records, nil
}
