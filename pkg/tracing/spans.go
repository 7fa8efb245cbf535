package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DBSpanConfig describes a database operation being traced
type DBSpanConfig struct {
	Operation string // SELECT, INSERT, UPDATE, DELETE
	Table     string
}

// StartDBSpan starts a span for a database operation. The caller must
// call span.End(), typically via defer, and should report the outcome
// through EndDBSpan.
func StartDBSpan(ctx context.Context, cfg DBSpanConfig) (context.Context, trace.Span) {
	tracer := GetTracer("database")
	ctx, span := tracer.Start(ctx, fmt.Sprintf("db.%s %s", cfg.Operation, cfg.Table),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", cfg.Operation),
			attribute.String("db.sql.table", cfg.Table),
		),
	)
	return ctx, span
}

// EndDBSpan records the outcome of a database operation on the span.
// rowsAffected of -1 means the count is unknown.
func EndDBSpan(span trace.Span, err error, rowsAffected int64) {
	if rowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
