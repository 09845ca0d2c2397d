package stats

import (
	"testing"
	"time"

	"FlowScope/internal/model"
)

func testRecords() []model.FlowRecord {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return []model.FlowRecord{
		{Timestamp: base, SrcAddr: "10.0.1.10", DstAddr: "10.0.2.20", DstPort: 443, Protocol: "TCP", Action: model.ActionAccept, Bytes: 6000, Packets: 10, Region: "us-east-1", VPCID: "vpc-1", AccountID: "111"},
		{Timestamp: base.Add(10 * time.Minute), SrcAddr: "10.0.1.10", DstAddr: "10.0.2.20", DstPort: 443, Protocol: "TCP", Action: model.ActionAccept, Bytes: 2000, Packets: 5, Region: "us-east-1", VPCID: "vpc-1", AccountID: "111"},
		{Timestamp: base.Add(90 * time.Minute), SrcAddr: "10.0.3.30", DstAddr: "8.8.8.8", DstPort: 53, Protocol: "UDP", Action: model.ActionReject, Bytes: 2000, Packets: 4, Region: "eu-west-1", VPCID: "vpc-2"},
	}
}

func TestAggregate_Summary(t *testing.T) {
	snap := Aggregate(testRecords(), 0)
	s := snap.Summary

	if s.Records != 3 || s.TotalBytes != 10000 || s.TotalPackets != 19 {
		t.Errorf("Totals wrong: %+v", s)
	}
	if s.Accepted != 2 || s.Rejected != 1 {
		t.Errorf("Verdict counts wrong: accepted=%d rejected=%d", s.Accepted, s.Rejected)
	}
	if s.UniqueSources != 2 || s.UniqueDests != 2 {
		t.Errorf("Unique endpoint counts wrong: src=%d dst=%d", s.UniqueSources, s.UniqueDests)
	}

	wantPeak := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if !s.PeakHour.Equal(wantPeak) || s.PeakHourBytes != 8000 {
		t.Errorf("Peak hour wrong: %v (%d bytes)", s.PeakHour, s.PeakHourBytes)
	}
}

func TestAggregate_Tables(t *testing.T) {
	snap := Aggregate(testRecords(), 0)

	if len(snap.BySource) != 2 {
		t.Fatalf("Expected 2 source rows, got %d", len(snap.BySource))
	}
	top := snap.BySource[0]
	if top.Key != "10.0.1.10" || top.Bytes != 8000 || top.Connections != 2 {
		t.Errorf("Top source row wrong: %+v", top)
	}
	if top.Percent != 80 {
		t.Errorf("Top source percent should be 80, got %v", top.Percent)
	}

	// Per-table byte totals always sum to the overall total.
	var sum uint64
	for _, row := range snap.BySource {
		sum += row.Bytes
		if row.Percent < 0 || row.Percent > 100 {
			t.Errorf("Percent out of range for %s: %v", row.Key, row.Percent)
		}
	}
	if sum != snap.Summary.TotalBytes {
		t.Errorf("Source rows sum to %d, want %d", sum, snap.Summary.TotalBytes)
	}

	if len(snap.ByProtocol) != 2 || snap.ByProtocol[0].Key != "TCP" {
		t.Errorf("Protocol table wrong: %+v", snap.ByProtocol)
	}
}

func TestAggregate_PortTableRankedByConnections(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	records := []model.FlowRecord{
		// One heavy flow to 443 versus two light flows to 22.
		{Timestamp: base, SrcAddr: "a", DstAddr: "b", DstPort: 443, Protocol: "TCP", Bytes: 9000, Packets: 1, Action: model.ActionAccept},
		{Timestamp: base, SrcAddr: "a", DstAddr: "b", DstPort: 22, Protocol: "TCP", Bytes: 100, Packets: 1, Action: model.ActionAccept},
		{Timestamp: base, SrcAddr: "c", DstAddr: "b", DstPort: 22, Protocol: "TCP", Bytes: 100, Packets: 1, Action: model.ActionAccept},
	}

	snap := Aggregate(records, 0)
	if len(snap.ByPort) != 2 {
		t.Fatalf("Expected 2 port rows, got %d", len(snap.ByPort))
	}
	if snap.ByPort[0].Key != "22/TCP" {
		t.Errorf("Port table should rank by connections, got top row %+v", snap.ByPort[0])
	}
}

func TestAggregate_TopN(t *testing.T) {
	snap := Aggregate(testRecords(), 1)
	if len(snap.BySource) != 1 || len(snap.ByDest) != 1 {
		t.Errorf("topN=1 should truncate tables, got %d source and %d dest rows",
			len(snap.BySource), len(snap.ByDest))
	}
}

func TestAggregate_Empty(t *testing.T) {
	snap := Aggregate(nil, 10)
	if snap.Summary.Records != 0 || snap.Summary.TotalBytes != 0 {
		t.Errorf("Empty input should yield zero summary: %+v", snap.Summary)
	}
	if !snap.Summary.PeakHour.IsZero() {
		t.Errorf("Empty input should have zero peak hour, got %v", snap.Summary.PeakHour)
	}
	if len(snap.BySource) != 0 || len(snap.ByPort) != 0 {
		t.Error("Empty input should yield empty tables")
	}
}

func TestAggregate_SkipsEmptyKeys(t *testing.T) {
	records := []model.FlowRecord{
		{SrcAddr: "a", DstAddr: "b", Protocol: "TCP", Bytes: 10, Packets: 1, Action: model.ActionAccept},
	}
	snap := Aggregate(records, 0)
	if len(snap.ByRegion) != 0 || len(snap.ByVPC) != 0 || len(snap.ByAccount) != 0 {
		t.Error("Records without resource identifiers should not create table rows")
	}
}
