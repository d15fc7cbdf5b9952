// Package mongo persists the reconciliation log.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultMaxPoolSize    = 10
	appName               = "portal"
)

// Config selects the deployment and database holding the reconciliation
// log.
type Config struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	Timeout     time.Duration
}

func (c Config) clientOptions() (*options.ClientOptions, time.Duration) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	pool := c.MaxPoolSize
	if pool == 0 {
		pool = defaultMaxPoolSize
	}
	opts := options.Client().
		ApplyURI(c.URI).
		SetAppName(appName).
		SetMaxPoolSize(pool).
		SetServerSelectionTimeout(timeout)
	return opts, timeout
}

// Connect opens the reconciliation database. The primary must answer a
// ping within Timeout.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	opts, timeout := cfg.clientOptions()
	if err := opts.Validate(); err != nil {
		return nil, nil, fmt.Errorf("reconciliation store config: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("reconciliation store connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("reconciliation store %s unreachable: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}
