package backend

import (
	"context"
	"errors"
	"fmt"

	"planner/internal/amqp"
	"planner/internal/cache"
	"planner/internal/kv"
	"planner/internal/log"
)

var _ Factory = (*DefaultFactory)(nil)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *log.Logger
	// dialEvents is replaced in tests.
	dialEvents func(url, exchange, queue string, logger *log.Logger) (*amqp.Client, error)
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentBackend})
	}
	return &DefaultFactory{logger: logger, dialEvents: amqp.NewClient}
}

// CreateBackend opens the configured store, layers the read cache over it and
// connects the change-event publisher when a broker is configured. A broker
// that cannot be reached is logged and the backend runs without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, closeStore, err := f.openStore(config)
	if err != nil {
		return nil, err
	}
	cleanups := []CleanupFunc{closeStore}

	caches := cache.NewManager()
	if config.CacheSize > 0 {
		cached := kv.NewCached(store, config.CacheSize, config.CacheTTL)
		caches.Register(cached.Cleaner())
		store = cached
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = f.dialEvents(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
			events = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			cleanups = append([]CleanupFunc{events.Close}, cleanups...)
		}
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type,
		"cache_size", config.CacheSize,
		"events_enabled", events != nil)

	return &Result{
		Store:  store,
		Caches: caches,
		Events: events,
		Cleanup: func() error {
			var errs []error
			for _, c := range cleanups {
				if c == nil {
					continue
				}
				if err := c(); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (kv.Store, CleanupFunc, error) {
	switch config.Type {
	case SQLiteBackend:
		db, err := kv.OpenSQLite(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return db, db.Close, nil
	case FileBackend:
		dir, err := kv.OpenDir(config.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		f.logger.Info("Opened file store", "data_dir", config.DataDir)
		return dir, nil, nil
	case MemoryBackend:
		f.logger.Info("Using in-memory store, data is lost on exit")
		return kv.NewMemory(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
