// Package graph runs compiled Cypher against Neo4j and returns driver records
// as plain rows.
package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/tracing"
)

// Query is a read command with an optional count command over the same match.
type Query struct {
	Text   string
	Params map[string]any
	// CountText is skipped when empty.
	CountText   string
	CountColumn string
}

// Result holds the rows of a query and, when requested, the total count.
type Result struct {
	Rows  []Row
	Count *int64
}

// Executor runs compiled commands.
type Executor interface {
	Query(ctx context.Context, q Query) (*Result, error)
	Run(ctx context.Context, command string, params map[string]any) error
}

// Neo4jExecutor runs commands through a Neo4j driver. Every call opens and
// closes its own sessions; the driver pool is shared.
type Neo4jExecutor struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewExecutor creates an executor on database.
func NewExecutor(driver neo4j.DriverWithContext, database string, l *slog.Logger) *Neo4jExecutor {
	return &Neo4jExecutor{
		driver:   driver,
		database: database,
		logger:   logger.OrDefault(l).With(logger.Scope("graph")),
	}
}

// Query runs the query and its count concurrently.
func (e *Neo4jExecutor) Query(ctx context.Context, q Query) (*Result, error) {
	ctx, span := tracing.Start(ctx, "graph.query", attribute.String("db.statement", q.Text))
	defer span.End()

	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.read(gctx, q.Text, q.Params)
		if err != nil {
			return fmt.Errorf("running query: %w", err)
		}
		res.Rows = rows
		return nil
	})
	if q.CountText != "" {
		g.Go(func() error {
			rows, err := e.read(gctx, q.CountText, q.Params)
			if err != nil {
				return fmt.Errorf("running count: %w", err)
			}
			n, err := countOf(rows, q.CountColumn)
			if err != nil {
				return err
			}
			res.Count = &n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	e.logger.Debug("query executed", slog.Int("rows", len(res.Rows)))
	return &res, nil
}

// Run executes a write command and discards its records.
func (e *Neo4jExecutor) Run(ctx context.Context, command string, params map[string]any) error {
	ctx, span := tracing.Start(ctx, "graph.run", attribute.String("db.statement", command))
	defer span.End()

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, command, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		tracing.Fail(span, err)
		return fmt.Errorf("running command: %w", err)
	}
	return nil
}

func (e *Neo4jExecutor) read(ctx context.Context, text string, params map[string]any) ([]Row, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: e.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, text, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]Row, len(records))
		for i, rec := range records {
			rows[i] = FromRecord(rec)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]Row), nil
}

func countOf(rows []Row, column string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	v, ok := rows[0].Get(column)
	if !ok {
		return 0, fmt.Errorf("count column %q missing", column)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("count column %q holds %T", column, v)
	}
	return n, nil
}
