// Package store keeps a write-once local log of messages seen by the bot.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// EmailRecord mirrors a subset of a listed message.
type EmailRecord struct {
	ID           uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	GmailID      string    `json:"gmail_id" gorm:"column:gmail_id;not null;uniqueIndex"`
	Sender       string    `json:"sender"`
	Recipient    string    `json:"recipient,omitempty"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Folder       string    `json:"folder"`
	ReceivedDate time.Time `json:"received_date" gorm:"column:received_date"`
}

// TableName specifies the table name for EmailRecord
func (EmailRecord) TableName() string {
	return "emails"
}

// Store is safe for concurrent use; conflicting inserts are resolved by the
// unique gmail_id index.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&EmailRecord{}); err != nil {
		return nil, fmt.Errorf("migrate emails: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert stores rec unless a record with the same GmailID already exists.
// It reports whether a row was written.
func (s *Store) Insert(ctx context.Context, rec EmailRecord) (bool, error) {
	rec.ID = 0
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "gmail_id"}}, DoNothing: true}).
		Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("insert email %s: %w", rec.GmailID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Recent returns up to limit records, newest insert first.
func (s *Store) Recent(ctx context.Context, limit int) ([]EmailRecord, error) {
	var recs []EmailRecord
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return recs, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&EmailRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count emails: %w", err)
	}
	return n, nil
}
