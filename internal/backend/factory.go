package backend

import (
	"context"
	"errors"
	"fmt"

	"dernek/internal/amqp"
	dlog "dernek/internal/log"
	"dernek/internal/source"
	"dernek/internal/source/memory"
	"dernek/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *dlog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *dlog.Logger) Factory {
	if logger == nil {
		logger = dlog.New(dlog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(dlog.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   source.ReadWriter
		cleanup []func() error
	)

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		cleanup = append(cleanup, repo.Close)
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	case MemoryBackend:
		mem, err := memory.NewFromFile(config.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed file: %w", err)
		}
		store = mem
		f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: store}

	// Notifications are optional; a broker outage must not block startup.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change notifications", "error", err)
		} else {
			result.Notifier = client
			cleanup = append(cleanup, client.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanup) - 1; i >= 0; i-- {
			errs = append(errs, cleanup[i]())
		}
		return errors.Join(errs...)
	}
	return result, nil
}
