package journal

import (
	"time"
)

// Status is the terminal state of a transfer record
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record is one journalled transfer outcome
type Record struct {
	ID        int64     `json:"id"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Operation string    `json:"operation"`
	Status    Status    `json:"status"`
	Bytes     int64     `json:"bytes"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for journal persistence
type Store interface {
	Append(record *Record) error
	Recent(limit int) ([]*Record, error)
	Close() error
}
