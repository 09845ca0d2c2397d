package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPortFilterUnmarshalJSON(t *testing.T) {
	// Bare numbers are accepted for backwards compatibility with older
	// saved filters and decode as an exact include filter.
	var pf PortFilter
	if err := json.Unmarshal([]byte(`443`), &pf); err != nil {
		t.Fatalf("Failed to decode bare port number: %v", err)
	}
	if pf.Exact == nil || *pf.Exact != 443 || !pf.Include {
		t.Errorf("Bare number should decode as exact include filter, got %+v", pf)
	}

	var ranged PortFilter
	if err := json.Unmarshal([]byte(`{"range":{"from":1024,"to":2048},"include":false}`), &ranged); err != nil {
		t.Fatalf("Failed to decode structured port filter: %v", err)
	}
	if ranged.Range == nil || ranged.Range.From != 1024 || ranged.Range.To != 2048 {
		t.Errorf("Range fields lost in decode: %+v", ranged)
	}
	if ranged.Include {
		t.Error("Include flag should decode as false")
	}

	if err := json.Unmarshal([]byte(`"ssh"`), &pf); err == nil {
		t.Error("Non-numeric scalar should fail to decode")
	}
}

func TestPortFilterContains(t *testing.T) {
	p := uint16(80)
	exact := PortFilter{Exact: &p, Include: true}
	if !exact.Contains(80) || exact.Contains(81) {
		t.Error("Exact filter should contain only its own port")
	}

	ranged := PortFilter{Range: &PortRange{From: 1000, To: 2000}, Include: true}
	for port, want := range map[uint16]bool{999: false, 1000: true, 1500: true, 2000: true, 2001: false} {
		if got := ranged.Contains(port); got != want {
			t.Errorf("Range contains(%d) = %v, want %v", port, got, want)
		}
	}

	var empty PortFilter
	if empty.Contains(80) {
		t.Error("Filter with neither exact nor range should contain nothing")
	}
}

func TestTimeRangeContains(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := TimeRange{Start: start, End: start.Add(time.Hour)}

	if !tr.Contains(start) || !tr.Contains(tr.End) {
		t.Error("Time range bounds should be inclusive")
	}
	if tr.Contains(start.Add(-time.Second)) || tr.Contains(tr.End.Add(time.Second)) {
		t.Error("Instants outside the range should not match")
	}
}

func TestFilterCriteriaIsEmpty(t *testing.T) {
	if !(&FilterCriteria{}).IsEmpty() {
		t.Error("Zero criteria should report empty")
	}
	// ActiveOnly changes topology reduction, not record filtering, so it
	// does not count against emptiness.
	if !(&FilterCriteria{ActiveOnly: true}).IsEmpty() {
		t.Error("ActiveOnly alone should still report empty")
	}
	if (&FilterCriteria{Protocols: []string{"TCP"}}).IsEmpty() {
		t.Error("Criteria with a protocol should not report empty")
	}
}

func TestProtocolName(t *testing.T) {
	for num, want := range map[uint8]string{1: "ICMP", 6: "TCP", 17: "UDP"} {
		if got := ProtocolName(num); got != want {
			t.Errorf("ProtocolName(%d) = %q, want %q", num, got, want)
		}
	}
	if got := ProtocolName(200); got != "OTHER" {
		t.Errorf("Unknown protocol should report OTHER, got %q", got)
	}
}
