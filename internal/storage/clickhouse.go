package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"FlowScope/internal/config"
	"FlowScope/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS flow_records (
    Timestamp   DateTime,
    SrcAddr     String,
    DstAddr     String,
    SrcPort     UInt16,
    DstPort     UInt16,
    Protocol    String,
    Action      String,
    Bytes       UInt64,
    Packets     UInt64,
    AccountID   String,
    VPCID       String,
    SubnetID    String,
    InstanceID  String,
    Region      String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Timestamp, SrcAddr, DstAddr);
`

// ClickHouseWriter persists flow record batches into the flow_records
// table. It implements the model.RecordWriter interface.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewClickHouseWriter connects to ClickHouse and ensures the table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration) (model.RecordWriter, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn, interval: interval}, nil
}

// GetInterval returns the configured flush interval for this writer.
func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

// Connect opens a ClickHouse connection and verifies it with a ping.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write inserts a record batch into the flow_records table.
func (w *ClickHouseWriter) Write(records []model.FlowRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO flow_records")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for i := range records {
		rec := &records[i]
		err = batch.Append(
			rec.Timestamp,
			rec.SrcAddr,
			rec.DstAddr,
			rec.SrcPort,
			rec.DstPort,
			rec.Protocol,
			string(rec.Action),
			rec.Bytes,
			rec.Packets,
			rec.AccountID,
			rec.VPCID,
			rec.SubnetID,
			rec.InstanceID,
			rec.Region,
		)
		if err != nil {
			return fmt.Errorf("failed to append record to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d flow records to ClickHouse", len(records))
	return nil
}
