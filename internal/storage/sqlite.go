package storage

import (
	"errors"
	"fmt"

	"FlowScope/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// kvEntry is the table backing the key-value store.
type kvEntry struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}

func (kvEntry) TableName() string { return "kv_entries" }

// SQLiteStore is a sqlite-backed implementation of the model.Store
// interface, used to persist saved filters across sessions.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the sqlite database at path
// and migrates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open filter store '%s': %w", path, err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate filter store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the value for key, or model.ErrNotFound.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var entry kvEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return entry.Value, nil
}

// Put stores or replaces the value for key.
func (s *SQLiteStore) Put(key string, value []byte) error {
	entry := kvEntry{Key: key, Value: value}
	if err := s.db.Save(&entry).Error; err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	if err := s.db.Delete(&kvEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// List returns all stored keys.
func (s *SQLiteStore) List() ([]string, error) {
	var keys []string
	if err := s.db.Model(&kvEntry{}).Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}
