package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/whiteknight/neoknight/internal/config"
	"github.com/whiteknight/neoknight/internal/logger"
)

// Connector owns the Neo4j driver for the lifetime of the process.
type Connector struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// Connect validates cfg, creates the driver and verifies connectivity.
// Missing settings fail with *config.MissingConfigurationError.
func Connect(ctx context.Context, cfg config.Neo4j, l *slog.Logger) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	l = logger.OrDefault(l)
	l.Info("connected to neo4j", slog.String("uri", cfg.URI), slog.String("database", cfg.Database))
	return &Connector{driver: driver, database: cfg.Database, logger: l}, nil
}

// Executor returns an executor sharing the connector's driver.
func (c *Connector) Executor() *Neo4jExecutor {
	return NewExecutor(c.driver, c.database, c.logger)
}

// Ping verifies the store is reachable.
func (c *Connector) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close closes the driver and its pool.
func (c *Connector) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
