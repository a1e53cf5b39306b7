package backend

import (
	"context"
	"errors"
	"fmt"

	"churchledger/internal/amqp"
	"churchledger/internal/log"
	"churchledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the store and, when configured, the AMQP publisher.
// An unreachable broker is logged and the backend runs without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver:      config.Driver,
		SQLitePath:  config.SQLiteDBPath,
		DatabaseURL: config.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", config.Driver, err)
	}

	result := &BackendResult{Store: store, Cleanup: store.Close}

	if config.AMQPEnabled() {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
			result.Events = client
			result.Cleanup = func() error {
				return errors.Join(client.Close(), store.Close())
			}
		}
	}

	f.logger.Info("Initialized backend",
		"driver", config.Driver,
		"amqp_enabled", result.Events != nil)

	return result, nil
}
