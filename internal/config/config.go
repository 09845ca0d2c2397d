package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IngestConfig holds the NATS transport settings shared by the probe
// publisher and the engine subscriber.
type IngestConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// EngineConfig holds the ingest pipeline settings.
type EngineConfig struct {
	NumWorkers          int `yaml:"num_workers"`
	SizeOfRecordChannel int `yaml:"size_of_record_channel"`
	TopN                int `yaml:"top_n"`
}

// ClickHouseConfig holds the connection settings for the flow record
// store.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WriterDef defines a single record writer from the config file.
type WriterDef struct {
	Type          string           `yaml:"type"` // "clickhouse" or "archive"
	Enabled       bool             `yaml:"enabled"`
	FlushInterval string           `yaml:"flush_interval"`
	ClickHouse    ClickHouseConfig `yaml:"clickhouse"`
	Archive       ArchiveConfig    `yaml:"archive"`
}

// ArchiveConfig holds the settings for the on-disk session archive writer.
type ArchiveConfig struct {
	RootPath string `yaml:"root_path"`
}

// StorageConfig groups the configured record writers and the saved-filter
// store.
type StorageConfig struct {
	Writers     []WriterDef `yaml:"writers"`
	FilterStore string      `yaml:"filter_store"` // sqlite file path; empty disables persistence
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// AlerterRule defines one threshold rule over the live statistics
// snapshot.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"` // total_bytes, total_packets, total_records, rejected_connections
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the alerter settings.
type AlerterConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval string        `yaml:"check_interval"`
	Rules         []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the email notifier settings. To is a comma-separated
// recipient list; SubjectPrefix, when set, is prepended to every subject.
type SMTPConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Ingest  IngestConfig  `yaml:"ingest"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	API     APIConfig     `yaml:"api"`
	Alerter AlerterConfig `yaml:"alerter"`
	SMTP    SMTPConfig    `yaml:"smtp"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}
