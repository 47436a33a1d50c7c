package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/tracing"
	"github.com/whiteknight/neoknight/internal/translator"
)

// Repository adds keyed lookups and writes to Keyless.
type Repository[T any] struct {
	*Keyless[T]
}

// New creates a repository for T. T must declare a key field.
func New[T any](f Features) (*Repository[T], error) {
	k, err := NewKeyless[T](f)
	if err != nil {
		return nil, err
	}
	if k.entity.Key == "" {
		return nil, fmt.Errorf("%w: %s", translator.ErrNoKey, k.entity.Label)
	}
	return &Repository[T]{Keyless: k}, nil
}

// Single returns the record with the given key.
func (r *Repository[T]) Single(ctx context.Context, key any) (*T, error) {
	return r.SingleWith(ctx, query.SingleRecordCommand[T]{Key: key})
}

// SingleWith returns the record with the given key and its navigated
// relationships. ErrNotFound is returned when nothing matches.
func (r *Repository[T]) SingleWith(ctx context.Context, cmd query.SingleRecordCommand[T]) (*T, error) {
	start := time.Now()
	ctx, span := r.span(ctx, "repository.single")
	defer span.End()

	rec, err := r.single(ctx, cmd)
	observe(r.entity.Label, "single", start, err)
	if err != nil {
		tracing.Fail(span, err)
		return nil, r.fail("loading", start, err)
	}
	r.logger.Debug("single finished", slog.Duration("elapsed", time.Since(start)))
	return rec, nil
}

func (r *Repository[T]) single(ctx context.Context, cmd query.SingleRecordCommand[T]) (*T, error) {
	tr, err := r.translator.Single(cmd)
	if err != nil {
		return nil, err
	}
	out, err := r.executor.Query(ctx, graph.Query{Text: tr.QueryText, Params: tr.Parameters})
	if err != nil {
		return nil, err
	}
	records, err := r.mapper.Map(tr.Strategy, tr.Aliases, out.Rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %v", ErrNotFound, r.entity.Key, cmd.Key)
	}
	return records[0], nil
}

// Delete removes the record with the given key and its relationships.
// Deleting a missing key is not an error.
func (r *Repository[T]) Delete(ctx context.Context, key any) error {
	start := time.Now()
	ctx, span := r.span(ctx, "repository.delete")
	defer span.End()

	err := r.delete(ctx, key)
	observe(r.entity.Label, "delete", start, err)
	if err != nil {
		tracing.Fail(span, err)
		return r.fail("deleting", start, err)
	}
	r.logger.Debug("delete finished", slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (r *Repository[T]) delete(ctx context.Context, key any) error {
	tr, err := r.translator.Single(query.SingleRecordCommand[T]{Key: key})
	if err != nil {
		return err
	}
	return r.executor.Run(ctx, tr.WithAction(translator.ActionDelete), tr.Parameters)
}
