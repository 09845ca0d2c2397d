package filter

import (
	"reflect"
	"testing"
	"time"

	"FlowScope/internal/model"
)

func sampleRecords() []model.FlowRecord {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return []model.FlowRecord{
		{
			Timestamp: base,
			SrcAddr:   "10.0.1.10",
			DstAddr:   "172.16.0.5",
			SrcPort:   43211,
			DstPort:   443,
			Protocol:  "TCP",
			Action:    model.ActionAccept,
			Bytes:     1024,
			Packets:   8,
			VPCID:     "vpc-00001",
			Region:    "us-east-1",
		},
		{
			Timestamp: base.Add(30 * time.Minute),
			SrcAddr:   "10.0.2.10",
			DstAddr:   "8.8.8.8",
			SrcPort:   51000,
			DstPort:   53,
			Protocol:  "UDP",
			Action:    model.ActionReject,
			Bytes:     512,
			Packets:   2,
			VPCID:     "vpc-00002",
			Region:    "eu-west-1",
		},
		{
			Timestamp: base.Add(2 * time.Hour),
			SrcAddr:   "192.168.5.5",
			DstAddr:   "10.0.1.10",
			SrcPort:   40000,
			DstPort:   22,
			Protocol:  "TCP",
			Action:    model.ActionAccept,
			Bytes:     20480,
			Packets:   64,
			Region:    "us-east-1",
		},
	}
}

func TestApply_EmptyCriteriaIsIdentity(t *testing.T) {
	records := sampleRecords()

	got := Apply(records, &model.FilterCriteria{})
	if !reflect.DeepEqual(got, records) {
		t.Errorf("Empty criteria should return all records unchanged, got %d of %d", len(got), len(records))
	}

	got = Apply(records, nil)
	if !reflect.DeepEqual(got, records) {
		t.Errorf("Nil criteria should return all records unchanged, got %d of %d", len(got), len(records))
	}
}

func TestApply_ProtocolScenario(t *testing.T) {
	records := []model.FlowRecord{
		{SrcAddr: "10.0.1.10", Protocol: "TCP", Action: model.ActionAccept, Bytes: 1024},
		{SrcAddr: "10.0.2.10", Protocol: "UDP", Action: model.ActionReject, Bytes: 512},
	}

	got := Apply(records, &model.FilterCriteria{Protocols: []string{"TCP"}})
	if len(got) != 1 {
		t.Fatalf("Expected exactly 1 record, got %d", len(got))
	}
	if got[0].SrcAddr != "10.0.1.10" || got[0].Bytes != 1024 {
		t.Errorf("Wrong record survived the protocol filter: %+v", got[0])
	}
}

func TestApply_SubsetAndIdempotence(t *testing.T) {
	records := sampleRecords()
	criteria := &model.FilterCriteria{
		Protocols: []string{"TCP"},
		Actions:   []model.Action{model.ActionAccept},
	}

	once := Apply(records, criteria)
	if len(once) > len(records) {
		t.Fatalf("Filtered set larger than input: %d > %d", len(once), len(records))
	}
	full := make(map[string]bool, len(records))
	for _, rec := range records {
		full[rec.SrcAddr+rec.DstAddr] = true
	}
	for _, rec := range once {
		if !full[rec.SrcAddr+rec.DstAddr] {
			t.Errorf("Filtered record %s->%s not present in the input set", rec.SrcAddr, rec.DstAddr)
		}
	}

	twice := Apply(once, criteria)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Filtering is not idempotent: %d then %d records", len(once), len(twice))
	}
}

func TestApply_AddrMatching(t *testing.T) {
	records := sampleRecords()

	got := Apply(records, &model.FilterCriteria{SrcAddrs: []string{"10.0.1.10"}})
	if len(got) != 1 || got[0].SrcAddr != "10.0.1.10" {
		t.Errorf("SrcAddrs filter: expected 1 record from 10.0.1.10, got %d", len(got))
	}

	// Addrs matches either endpoint: 10.0.1.10 appears once as source and
	// once as destination.
	got = Apply(records, &model.FilterCriteria{Addrs: []string{"10.0.1.10"}})
	if len(got) != 2 {
		t.Errorf("Addrs filter: expected 2 records touching 10.0.1.10, got %d", len(got))
	}
}

func TestApply_CIDRRules(t *testing.T) {
	records := sampleRecords()

	got := Apply(records, &model.FilterCriteria{
		CIDRRules: []model.CIDRRule{{CIDR: "10.0.0.0/16", Include: true}},
	})
	if len(got) != 3 {
		t.Errorf("Include 10.0.0.0/16: expected 3 records, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{
		CIDRRules: []model.CIDRRule{{CIDR: "192.168.0.0/16", Include: false}},
	})
	if len(got) != 2 {
		t.Errorf("Exclude 192.168.0.0/16: expected 2 records, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{
		CIDRRules: []model.CIDRRule{
			{CIDR: "10.0.0.0/16", Include: true},
			{CIDR: "8.8.8.0/24", Include: false},
		},
	})
	if len(got) != 2 {
		t.Errorf("Include+exclude: expected 2 records, got %d", len(got))
	}
}

func TestApply_MalformedCIDRNeverMatches(t *testing.T) {
	records := sampleRecords()

	// A rule set consisting only of malformed include rules matches
	// nothing rather than raising an error.
	got := Apply(records, &model.FilterCriteria{
		CIDRRules: []model.CIDRRule{{CIDR: "not-a-cidr", Include: true}},
	})
	if len(got) != 0 {
		t.Errorf("Malformed include CIDR should match nothing, got %d records", len(got))
	}

	// A malformed exclude rule drops out of the rule set entirely.
	got = Apply(records, &model.FilterCriteria{
		CIDRRules: []model.CIDRRule{
			{CIDR: "10.0.0.0/16", Include: true},
			{CIDR: "999.999.0.0/40", Include: false},
		},
	})
	if len(got) != 3 {
		t.Errorf("Malformed exclude CIDR should be ignored, got %d records", len(got))
	}
}

func TestApply_PortFilters(t *testing.T) {
	records := sampleRecords()
	port := func(p uint16) *uint16 { return &p }

	got := Apply(records, &model.FilterCriteria{
		Ports: []model.PortFilter{{Exact: port(443), Include: true}},
	})
	if len(got) != 1 || got[0].DstPort != 443 {
		t.Errorf("Exact port 443: expected 1 record, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{
		Ports: []model.PortFilter{{Range: &model.PortRange{From: 22, To: 53}, Include: true}},
	})
	if len(got) != 2 {
		t.Errorf("Port range 22-53: expected 2 records, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{
		Ports: []model.PortFilter{{Exact: port(53), Include: false}},
	})
	if len(got) != 2 {
		t.Errorf("Exclude port 53: expected 2 records, got %d", len(got))
	}
}

func TestApply_TimeRangeInclusive(t *testing.T) {
	records := sampleRecords()
	start := records[0].Timestamp
	end := records[1].Timestamp

	got := Apply(records, &model.FilterCriteria{
		TimeRange: &model.TimeRange{Start: start, End: end},
	})
	if len(got) != 2 {
		t.Errorf("Time range should include both bounds, got %d records", len(got))
	}
}

func TestApply_NumericThresholds(t *testing.T) {
	records := sampleRecords()
	u64 := func(v uint64) *uint64 { return &v }

	got := Apply(records, &model.FilterCriteria{MinBytes: u64(1024)})
	if len(got) != 2 {
		t.Errorf("MinBytes 1024: expected 2 records, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{MinBytes: u64(512), MaxBytes: u64(1024)})
	if len(got) != 2 {
		t.Errorf("Bytes 512-1024: expected 2 records, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{MinPackets: u64(65)})
	if len(got) != 0 {
		t.Errorf("MinPackets 65: expected no records, got %d", len(got))
	}
}

func TestApply_ResourceIDs(t *testing.T) {
	records := sampleRecords()

	got := Apply(records, &model.FilterCriteria{VPCIDs: []string{"vpc-00001"}})
	if len(got) != 1 {
		t.Errorf("VPC filter: expected 1 record, got %d", len(got))
	}

	got = Apply(records, &model.FilterCriteria{Regions: []string{"us-east-1"}})
	if len(got) != 2 {
		t.Errorf("Region filter: expected 2 records, got %d", len(got))
	}
}

func TestValidateCriteria(t *testing.T) {
	if err := ValidateCriteria(&model.FilterCriteria{
		CIDRRules: []model.CIDRRule{{CIDR: "10.0.0.0/8", Include: true}},
	}); err != nil {
		t.Errorf("Well-formed criteria should validate, got: %v", err)
	}

	if err := ValidateCriteria(&model.FilterCriteria{
		CIDRRules: []model.CIDRRule{{CIDR: "bogus", Include: true}},
	}); err == nil {
		t.Error("Malformed CIDR should fail validation")
	}

	if err := ValidateCriteria(&model.FilterCriteria{
		Ports: []model.PortFilter{{Range: &model.PortRange{From: 100, To: 10}, Include: true}},
	}); err == nil {
		t.Error("Inverted port range should fail validation")
	}

	if err := ValidateCriteria(&model.FilterCriteria{
		Ports: []model.PortFilter{{Include: true}},
	}); err == nil {
		t.Error("Port filter with neither exact nor range should fail validation")
	}
}
