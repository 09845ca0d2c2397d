package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"FlowScope/internal/stats"
)

// encodeStatsCSV flattens the snapshot's ranked tables into
// category-prefixed rows.
func encodeStatsCSV(snap *stats.Snapshot) (*Blob, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "key", "connections", "bytes", "packets", "percent"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	tables := []struct {
		name string
		rows []stats.TableRow
	}{
		{"source", snap.BySource},
		{"dest", snap.ByDest},
		{"protocol", snap.ByProtocol},
		{"port", snap.ByPort},
		{"region", snap.ByRegion},
		{"vpc", snap.ByVPC},
		{"account", snap.ByAccount},
	}

	for _, table := range tables {
		for _, row := range table.rows {
			record := []string{
				table.name,
				row.Key,
				strconv.FormatUint(row.Connections, 10),
				strconv.FormatUint(row.Bytes, 10),
				strconv.FormatUint(row.Packets, 10),
				strconv.FormatFloat(row.Percent, 'f', 2, 64),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return &Blob{Data: buf.Bytes(), MIME: mimeCSV}, nil
}
