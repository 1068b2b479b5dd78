package classify

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"moodlift/internal/frames"
)

// Middleware wraps a Classifier with extra behavior.
type Middleware func(next Classifier) Classifier

// Chain applies middlewares so the first one is outermost.
func Chain(c Classifier, mws ...Middleware) Classifier {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// Limit bounds how many requests may be outstanding against the service at
// once. Callers past the bound queue in arrival order until a slot frees or
// their context ends; a context that ends while queued yields its error.
func Limit(n int) Middleware {
	if n < 1 {
		n = 1
	}
	return func(next Classifier) Classifier {
		sem := semaphore.NewWeighted(int64(n))
		return Func(func(ctx context.Context, frame frames.Frame) (string, error) {
			if err := sem.Acquire(ctx, 1); err != nil {
				return "", transportErr("queue", 0, err)
			}
			defer sem.Release(1)
			return next.Classify(ctx, frame)
		})
	}
}

const tracerName = "moodlift/internal/classify"

// Trace records one span per request on the global tracer provider.
func Trace() Middleware {
	return func(next Classifier) Classifier {
		tracer := otel.Tracer(tracerName)
		return Func(func(ctx context.Context, frame frames.Frame) (string, error) {
			ctx, span := tracer.Start(ctx, "classify",
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.Int("frame.bytes", len(frame.Data)),
					attribute.Int64("frame.seq", int64(frame.Seq)),
				),
			)
			defer span.End()

			label, err := next.Classify(ctx, frame)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return label, err
			}
			span.SetAttributes(attribute.String("emotion.label", label))
			return label, nil
		})
	}
}

// Log writes a debug line per request and a warning per failure. caller
// names who asked, e.g. "poll" or "capture".
func Log(log *slog.Logger, caller string) Middleware {
	return func(next Classifier) Classifier {
		return Func(func(ctx context.Context, frame frames.Frame) (string, error) {
			start := time.Now()
			label, err := next.Classify(ctx, frame)
			duration := time.Since(start)
			if err != nil {
				log.WarnContext(ctx, "classification failed",
					"caller", caller,
					"seq", frame.Seq,
					"duration", duration,
					"error", err,
				)
				return label, err
			}
			log.DebugContext(ctx, "classification finished",
				"caller", caller,
				"seq", frame.Seq,
				"duration", duration,
				"label", label,
			)
			return label, nil
		})
	}
}
