package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FlowScope/internal/config"
	"FlowScope/internal/model"
	"FlowScope/internal/storage"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Request scopes a flow record query. Zero-valued fields impose no
// constraint; Limit of zero falls back to defaultLimit.
type Request struct {
	Start      time.Time `json:"start,omitempty"`
	End        time.Time `json:"end,omitempty"`
	VPCID      string    `json:"vpc_id,omitempty"`
	Region     string    `json:"region,omitempty"`
	AccountID  string    `json:"account_id,omitempty"`
	InstanceID string    `json:"instance_id,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Totals summarizes the stored records matching a request.
type Totals struct {
	Records      uint64 `json:"records"`
	TotalBytes   uint64 `json:"total_bytes"`
	TotalPackets uint64 `json:"total_packets"`
}

const defaultLimit = 100000

// Querier loads flow records from the durable store into a session.
type Querier interface {
	QueryRecords(ctx context.Context, req Request) ([]model.FlowRecord, error)
	AggregateTotals(ctx context.Context, req Request) (*Totals, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := storage.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

// whereClause builds the WHERE fragment and argument list for a request.
func whereClause(req Request) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if !req.Start.IsZero() {
		clauses = append(clauses, "Timestamp >= ?")
		args = append(args, req.Start)
	}
	if !req.End.IsZero() {
		clauses = append(clauses, "Timestamp <= ?")
		args = append(args, req.End)
	}
	if req.VPCID != "" {
		clauses = append(clauses, "VPCID = ?")
		args = append(args, req.VPCID)
	}
	if req.Region != "" {
		clauses = append(clauses, "Region = ?")
		args = append(args, req.Region)
	}
	if req.AccountID != "" {
		clauses = append(clauses, "AccountID = ?")
		args = append(args, req.AccountID)
	}
	if req.InstanceID != "" {
		clauses = append(clauses, "InstanceID = ?")
		args = append(args, req.InstanceID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// QueryRecords loads the records matching the request, newest last.
func (q *clickhouseQuerier) QueryRecords(ctx context.Context, req Request) ([]model.FlowRecord, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			Timestamp, SrcAddr, DstAddr, SrcPort, DstPort,
			Protocol, Action, Bytes, Packets,
			AccountID, VPCID, SubnetID, InstanceID, Region
		FROM flow_records
	`)

	where, args := whereClause(req)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" ORDER BY Timestamp LIMIT ?")
	args = append(args, limit)

	rows, err := q.conn.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var records []model.FlowRecord
	for rows.Next() {
		var rec model.FlowRecord
		var action string
		if err := rows.Scan(
			&rec.Timestamp, &rec.SrcAddr, &rec.DstAddr, &rec.SrcPort, &rec.DstPort,
			&rec.Protocol, &action, &rec.Bytes, &rec.Packets,
			&rec.AccountID, &rec.VPCID, &rec.SubnetID, &rec.InstanceID, &rec.Region,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Action = model.Action(action)
		records = append(records, rec)
	}

	return records, nil
}

// AggregateTotals summarizes the stored records matching the request.
func (q *clickhouseQuerier) AggregateTotals(ctx context.Context, req Request) (*Totals, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			COUNT(*) AS Records,
			SUM(Bytes) AS TotalBytes,
			SUM(Packets) AS TotalPackets
		FROM flow_records
	`)

	where, args := whereClause(req)
	queryBuilder.WriteString(where)

	var totals Totals
	row := q.conn.QueryRow(ctx, queryBuilder.String(), args...)
	if err := row.Scan(&totals.Records, &totals.TotalBytes, &totals.TotalPackets); err != nil {
		return nil, fmt.Errorf("failed to scan totals: %w", err)
	}

	return &totals, nil
}
