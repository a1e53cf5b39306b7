package backend

import (
	"context"

	"churchledger/internal/services"
	"churchledger/internal/storage"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// BackendResult contains the opened store, the optional event publisher and
// the cleanup function that closes both.
type BackendResult struct {
	Store *storage.Store
	// Events is nil when AMQP is disabled or unreachable.
	Events  services.EventPublisher
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Driver string

	SQLiteDBPath string
	DatabaseURL  string

	// AMQP ledger events, optional
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// AMQPEnabled reports whether an event publisher should be attempted.
func (c Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}
