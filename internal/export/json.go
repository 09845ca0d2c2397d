package export

import (
	"encoding/json"
	"fmt"

	"FlowScope/internal/model"
	"FlowScope/internal/stats"
)

func init() {
	register(FormatJSON, encodeJSON)
}

const mimeJSON = "application/json"

// encodeJSON writes records as a pretty-printed JSON array.
func encodeJSON(records []model.FlowRecord, report func(done int) error) (*Blob, error) {
	if report != nil {
		// json.MarshalIndent is a single step; report the batch bounds so
		// the event sequence stays well-formed.
		if err := report(0); err != nil {
			return nil, err
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return &Blob{Data: data, MIME: mimeJSON}, nil
}

// Stats serializes a statistics snapshot. CSV output flattens the ranked
// tables into category rows; JSON is the pretty-printed snapshot itself.
func Stats(f Format, snap *stats.Snapshot) (*Blob, error) {
	if snap == nil {
		return nil, ErrNoData
	}
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal statistics: %w", err)
		}
		return &Blob{Data: data, MIME: mimeJSON}, nil
	case FormatCSV:
		return encodeStatsCSV(snap)
	default:
		return nil, fmt.Errorf("unknown export format: %q", f)
	}
}
