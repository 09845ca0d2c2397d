package stats

import (
	"fmt"
	"sort"
	"time"

	"FlowScope/internal/model"
)

// TableRow is one entry of a ranked statistics table.
type TableRow struct {
	Key         string  `json:"key"`
	Connections uint64  `json:"connections"`
	Bytes       uint64  `json:"bytes"`
	Packets     uint64  `json:"packets"`
	Percent     float64 `json:"percent"`
}

// Summary holds the aggregate counters over a filtered record set.
type Summary struct {
	Records       uint64 `json:"records"`
	TotalBytes    uint64 `json:"total_bytes"`
	TotalPackets  uint64 `json:"total_packets"`
	Accepted      uint64 `json:"accepted"`
	Rejected      uint64 `json:"rejected"`
	UniqueSources uint64 `json:"unique_sources"`
	UniqueDests   uint64 `json:"unique_dests"`

	// Hour-granularity bucket with the highest byte volume. Zero time
	// when the record set is empty.
	PeakHour      time.Time `json:"peak_hour"`
	PeakHourBytes uint64    `json:"peak_hour_bytes"`
}

// Snapshot is the derived statistics view over a filtered record set. It
// is recomputed on every filter change and never persisted on its own.
type Snapshot struct {
	Summary    Summary    `json:"summary"`
	BySource   []TableRow `json:"by_source"`
	ByDest     []TableRow `json:"by_dest"`
	ByProtocol []TableRow `json:"by_protocol"`
	ByPort     []TableRow `json:"by_port"`
	ByRegion   []TableRow `json:"by_region"`
	ByVPC      []TableRow `json:"by_vpc"`
	ByAccount  []TableRow `json:"by_account"`
}

type accumulator struct {
	rows  map[string]*TableRow
	order []string
}

func newAccumulator() *accumulator {
	return &accumulator{rows: make(map[string]*TableRow)}
}

func (a *accumulator) add(key string, rec *model.FlowRecord) {
	if key == "" {
		return
	}
	row, ok := a.rows[key]
	if !ok {
		row = &TableRow{Key: key}
		a.rows[key] = row
		a.order = append(a.order, key)
	}
	row.Connections++
	row.Bytes += rec.Bytes
	row.Packets += rec.Packets
}

// table finalizes the accumulator: percent of total bytes per row, then a
// descending sort by the chosen column (ties broken by key for stable
// output). totalBytes of zero yields zero percentages, never NaN.
func (a *accumulator) table(totalBytes uint64, byConnections bool, topN int) []TableRow {
	rows := make([]TableRow, 0, len(a.order))
	for _, key := range a.order {
		row := *a.rows[key]
		if totalBytes > 0 {
			row.Percent = float64(row.Bytes) / float64(totalBytes) * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if byConnections {
			if rows[i].Connections != rows[j].Connections {
				return rows[i].Connections > rows[j].Connections
			}
		} else if rows[i].Bytes != rows[j].Bytes {
			return rows[i].Bytes > rows[j].Bytes
		}
		return rows[i].Key < rows[j].Key
	})
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

// Aggregate folds a filtered record set into a statistics snapshot in a
// single pass. topN of zero keeps every row. An empty record set yields a
// fully zero-valued snapshot.
func Aggregate(records []model.FlowRecord, topN int) *Snapshot {
	bySource := newAccumulator()
	byDest := newAccumulator()
	byProtocol := newAccumulator()
	byPort := newAccumulator()
	byRegion := newAccumulator()
	byVPC := newAccumulator()
	byAccount := newAccumulator()

	var summary Summary
	srcSeen := make(map[string]struct{})
	dstSeen := make(map[string]struct{})
	hourBytes := make(map[time.Time]uint64)

	for i := range records {
		rec := &records[i]
		summary.Records++
		summary.TotalBytes += rec.Bytes
		summary.TotalPackets += rec.Packets
		if rec.Action == model.ActionReject {
			summary.Rejected++
		} else {
			summary.Accepted++
		}
		srcSeen[rec.SrcAddr] = struct{}{}
		dstSeen[rec.DstAddr] = struct{}{}

		bySource.add(rec.SrcAddr, rec)
		byDest.add(rec.DstAddr, rec)
		byProtocol.add(rec.Protocol, rec)
		byPort.add(fmt.Sprintf("%d/%s", rec.DstPort, rec.Protocol), rec)
		byRegion.add(rec.Region, rec)
		byVPC.add(rec.VPCID, rec)
		byAccount.add(rec.AccountID, rec)

		hour := rec.Timestamp.Truncate(time.Hour)
		hourBytes[hour] += rec.Bytes
	}

	summary.UniqueSources = uint64(len(srcSeen))
	summary.UniqueDests = uint64(len(dstSeen))
	summary.PeakHour, summary.PeakHourBytes = peakHour(hourBytes)

	total := summary.TotalBytes
	return &Snapshot{
		Summary:    summary,
		BySource:   bySource.table(total, false, topN),
		ByDest:     byDest.table(total, false, topN),
		ByProtocol: byProtocol.table(total, false, topN),
		ByPort:     byPort.table(total, true, topN),
		ByRegion:   byRegion.table(total, false, topN),
		ByVPC:      byVPC.table(total, false, topN),
		ByAccount:  byAccount.table(total, false, topN),
	}
}

func peakHour(buckets map[time.Time]uint64) (time.Time, uint64) {
	var peak time.Time
	var peakBytes uint64
	for hour, bytes := range buckets {
		if bytes > peakBytes || (bytes == peakBytes && peakBytes > 0 && hour.Before(peak)) {
			peak = hour
			peakBytes = bytes
		}
	}
	return peak, peakBytes
}
