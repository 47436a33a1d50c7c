// Package repository runs query commands against the graph store: translate,
// execute, map. Specifications that cannot be translated are answered by
// loading every root entity and evaluating them in memory, subject to the
// client-side evaluation policy.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/whiteknight/neoknight/internal/entity"
	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/mapper"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/tracing"
	"github.com/whiteknight/neoknight/internal/translator"
)

// Features are the collaborators a repository needs.
type Features struct {
	Executor graph.Executor
	// ClientSideEvaluation defaults to a warn policy.
	ClientSideEvaluation ClientSideEvaluationHandler
	// Rethrower is optional.
	Rethrower Rethrower
	// DefaultOrder applies to commands without an order. It defaults to the
	// key property, ascending.
	DefaultOrder *query.Order
	Logger       *slog.Logger
}

// Result is a page of records and the total number of matches.
type Result[T any] struct {
	Records []*T
	Count   int64
}

// Project maps records onto another shape.
func Project[T, P any](records []*T, fn func(*T) P) []P {
	out := make([]P, len(records))
	for i, r := range records {
		out[i] = fn(r)
	}
	return out
}

// Keyless queries entities that have no key property.
type Keyless[T any] struct {
	executor   graph.Executor
	handler    ClientSideEvaluationHandler
	rethrow    Rethrower
	order      *query.Order
	translator *translator.Translator[T]
	mapper     *mapper.Mapper[T]
	entity     *entity.Descriptor
	logger     *slog.Logger
}

// NewKeyless creates a query-only repository for T.
func NewKeyless[T any](f Features) (*Keyless[T], error) {
	if f.Executor == nil {
		return nil, errors.New("repository requires an executor")
	}
	l := logger.OrDefault(f.Logger)
	tr, err := translator.New[T](l)
	if err != nil {
		return nil, err
	}
	handler := f.ClientSideEvaluation
	if handler == nil {
		handler = NewEvaluationPolicy("", l)
	}
	order := f.DefaultOrder
	if order == nil && tr.Entity().Key != "" {
		order = &query.Order{Property: tr.Entity().Key}
	}
	return &Keyless[T]{
		executor:   f.Executor,
		handler:    handler,
		rethrow:    f.Rethrower,
		order:      order,
		translator: tr,
		mapper:     mapper.New[T](l),
		entity:     tr.Entity(),
		logger:     l.With(logger.Scope("repository"), slog.String("entity", tr.Entity().Label)),
	}, nil
}

// Query returns the records matching cmd and the total match count. Commands
// without an order use the default order, so pages are stable.
func (r *Keyless[T]) Query(ctx context.Context, cmd query.Command[T]) (Result[T], error) {
	if cmd.Order == nil && r.order != nil {
		cmd.Order = r.order
	}
	start := time.Now()
	ctx, span := r.span(ctx, "repository.query")
	defer span.End()

	res, err := r.query(ctx, cmd)
	observe(r.entity.Label, "query", start, err)
	if err != nil {
		tracing.Fail(span, err)
		return Result[T]{}, r.fail("querying", start, err)
	}

	r.logger.Debug("query finished",
		slog.Int("records", len(res.Records)),
		slog.Int64("count", res.Count),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (r *Keyless[T]) query(ctx context.Context, cmd query.Command[T]) (Result[T], error) {
	tr, err := r.translator.Query(cmd)
	if errors.Is(err, translator.ErrUnparsable) {
		return r.clientSide(ctx, cmd)
	}
	if err != nil {
		return Result[T]{}, err
	}

	out, err := r.executor.Query(ctx, graph.Query{
		Text:        tr.QueryText,
		Params:      tr.Parameters,
		CountText:   tr.CountText,
		CountColumn: tr.CountColumn,
	})
	if err != nil {
		return Result[T]{}, err
	}

	records, err := r.mapper.Map(tr.Strategy, tr.Aliases, out.Rows)
	if err != nil {
		return Result[T]{}, err
	}
	count := int64(len(records))
	if out.Count != nil {
		count = *out.Count
	}
	return Result[T]{Records: records, Count: count}, nil
}

// clientSide loads every root entity and applies cmd in memory.
func (r *Keyless[T]) clientSide(ctx context.Context, cmd query.Command[T]) (Result[T], error) {
	if err := r.handler.Handle(r.entity.Label); err != nil {
		return Result[T]{}, err
	}
	clientSideEvaluations.WithLabelValues(r.entity.Label).Inc()

	tr, err := r.translator.All()
	if err != nil {
		return Result[T]{}, err
	}
	out, err := r.executor.Query(ctx, graph.Query{Text: tr.QueryText, Params: tr.Parameters})
	if err != nil {
		return Result[T]{}, err
	}
	all, err := r.mapper.Map(tr.Strategy, tr.Aliases, out.Rows)
	if err != nil {
		return Result[T]{}, err
	}

	records, count, err := applyInMemory(r.entity, cmd, all)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Records: records, Count: count}, nil
}

// Upsert merges cmd.Entity on its key, or on all written properties for
// keyless entities.
func (r *Keyless[T]) Upsert(ctx context.Context, cmd query.UpdateCommand[T]) error {
	start := time.Now()
	ctx, span := r.span(ctx, "repository.upsert")
	defer span.End()

	err := r.upsert(ctx, cmd)
	observe(r.entity.Label, "upsert", start, err)
	if err != nil {
		tracing.Fail(span, err)
		return r.fail("upserting", start, err)
	}
	r.logger.Debug("upsert finished", slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (r *Keyless[T]) upsert(ctx context.Context, cmd query.UpdateCommand[T]) error {
	tr, err := r.translator.Update(cmd)
	if err != nil {
		return err
	}
	return r.executor.Run(ctx, tr.QueryText, tr.Parameters)
}

func (r *Keyless[T]) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracing.Start(ctx, name, attribute.String("neoknight.entity", r.entity.Label))
}

// fail wraps err with the entity and elapsed time, then applies the rethrower.
func (r *Keyless[T]) fail(verb string, start time.Time, err error) error {
	elapsed := time.Since(start)
	r.logger.Debug(verb+" failed", slog.Duration("elapsed", elapsed), logger.Error(err))
	err = fmt.Errorf("%s %s after %s: %w", verb, r.entity.Label, elapsed.Round(time.Microsecond), err)
	if r.rethrow != nil {
		return r.rethrow(err)
	}
	return err
}
