package storage

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("journal closed")

// Config configures the journal.
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Entry records one notification attempt.
// Keep it compact and schema-stable.
type Entry struct {
	At        time.Time `json:"at"`
	Homework  string    `json:"homework"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
}

// Journal is the append-only persistence API used by the poll loop.
type Journal interface {
	Append(ctx context.Context, e Entry) error
	Close() error
}
