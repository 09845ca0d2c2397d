package query

import (
	"testing"
	"time"
)

func TestWhereClause(t *testing.T) {
	where, args := whereClause(Request{})
	if where != "" || args != nil {
		t.Errorf("Empty request should build no clause, got %q %v", where, args)
	}

	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	where, args = whereClause(Request{
		Start:  start,
		End:    end,
		VPCID:  "vpc-00001",
		Region: "us-east-1",
	})
	want := " WHERE Timestamp >= ? AND Timestamp <= ? AND VPCID = ? AND Region = ?"
	if where != want {
		t.Errorf("Wrong clause:\n got %q\nwant %q", where, want)
	}
	if len(args) != 4 {
		t.Fatalf("Expected 4 args, got %d", len(args))
	}
	if args[2] != "vpc-00001" || args[3] != "us-east-1" {
		t.Errorf("Args in wrong order: %v", args)
	}

	where, args = whereClause(Request{InstanceID: "i-0abc123"})
	if where != " WHERE InstanceID = ?" || len(args) != 1 {
		t.Errorf("Single-field clause wrong: %q %v", where, args)
	}
}
