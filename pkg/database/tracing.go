package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pr-poehali-dev/fashion-store-creation/pkg/database"

type slowQueryLog struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowQueries atomic.Pointer[slowQueryLog]

// SetSlowQueryLogging makes every traced query that takes threshold or
// longer emit a warning on logger. A zero threshold or nil logger turns it off.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowQueries.Store(nil)
		return
	}
	slowQueries.Store(&slowQueryLog{threshold: threshold, logger: logger})
}

// queryTrace is one in-flight traced statement.
type queryTrace struct {
	ctx       context.Context
	span      trace.Span
	operation string
	started   time.Time
}

func (q *queryTrace) finish(err error) {
	elapsed := time.Since(q.started)
	if err != nil {
		q.span.RecordError(err)
		q.span.SetStatus(codes.Error, err.Error())
	}
	q.span.End()

	cfg := slowQueries.Load()
	if cfg == nil || elapsed < cfg.threshold {
		return
	}
	attrs := []any{
		slog.String("operation", q.operation),
		slog.Duration("duration", elapsed),
		slog.Duration("threshold", cfg.threshold),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	cfg.logger.WarnContext(q.ctx, "slow query", attrs...)
}

// TraceQuery opens a client span "db.<operation>" for statement and returns
// the context to run it with plus a finisher taking the statement's error:
//
//	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviews)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system.name", "postgresql"),
			attribute.String("db.operation.name", operation),
			attribute.String("db.query.text", statement),
		),
	)
	q := &queryTrace{ctx: ctx, span: span, operation: operation, started: time.Now()}
	return ctx, q.finish
}
