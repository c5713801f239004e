package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/naseer2426/telegram-proxy/internal/relay"
)

var _ relay.Recorder = &Store{}

// RelayLog is one relay attempt. Rows are only ever inserted.
type RelayLog struct {
	ID             uint      `gorm:"primaryKey"`
	CreatedAt      time.Time `gorm:"index"`
	RequestID      string    `gorm:"size:64;index"`
	Route          string    `gorm:"size:32"`
	ClientIP       string    `gorm:"size:64"`
	Country        string    `gorm:"size:128"`
	City           string    `gorm:"size:128"`
	OS             string    `gorm:"size:256"`
	UpstreamStatus int
	Error          string `gorm:"type:text"`
}

func newRelayLog(entry relay.Entry) *RelayLog {
	return &RelayLog{
		RequestID:      entry.RequestID,
		Route:          entry.Route,
		ClientIP:       entry.ClientIP,
		Country:        entry.Country,
		City:           entry.City,
		OS:             entry.OS,
		UpstreamStatus: entry.UpstreamStatus,
		Error:          entry.Error,
	}
}

// Store writes relay attempts to Postgres.
type Store struct {
	db *gorm.DB
}

func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Record(ctx context.Context, entry relay.Entry) error {
	if err := s.db.WithContext(ctx).Create(newRelayLog(entry)).Error; err != nil {
		return fmt.Errorf("insert relay log: %w", err)
	}
	return nil
}
