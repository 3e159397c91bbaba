package observability_test

import (
	"context"
	"testing"

	"github.com/niksmo/online-store/internal/adapter/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupTracing(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		shutdown, err := observability.SetupTracing(
			context.Background(), observability.TracingConfig{},
		)
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
		assert.ElementsMatch(t,
			[]string{"traceparent", "tracestate", "baggage"},
			otel.GetTextMapPropagator().Fields())
	})

	t.Run("Enabled", func(t *testing.T) {
		prev := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(prev) })

		shutdown, err := observability.SetupTracing(
			context.Background(),
			observability.TracingConfig{Endpoint: "127.0.0.1:4318", Insecure: true},
		)
		require.NoError(t, err)
		assert.NotSame(t, prev, otel.GetTracerProvider())

		_, span := otel.Tracer("test").Start(context.Background(), "op")
		assert.True(t, span.SpanContext().IsValid())
		span.End()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = shutdown(ctx)
	})
}
