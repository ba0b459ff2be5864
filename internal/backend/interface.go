package backend

import (
	"context"

	"dernek/internal/amqp"
	"dernek/internal/source"
)

// CleanupFunc releases backend resources
type CleanupFunc func() error

// Pinger is implemented by backends with a reachable dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult contains the store and its optional companions
type BackendResult struct {
	Store source.ReadWriter
	// Notifier is nil when change notifications are disabled
	Notifier *amqp.Client
	Cleanup  CleanupFunc
}

// Ping checks the store if it supports it.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; an empty seed file yields an empty store
	SeedFile string

	// Change notifications, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
