package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_SetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "execute_node",
		attribute.String(NodeIDKey, "notify"),
		attribute.Int(AttemptKey, 2),
	)
	SetError(span, errors.New("upstream returned 503"), attribute.String(NodeTypeKey, "send_webhook"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	recorded := spans[0]
	assert.Equal(t, "execute_node", recorded.Name())
	assert.Contains(t, recorded.Attributes(), attribute.String(NodeIDKey, "notify"))
	assert.Equal(t, codes.Error, recorded.Status().Code)
	assert.Equal(t, "upstream returned 503", recorded.Status().Description)

	require.Len(t, recorded.Events(), 1)

	exception := recorded.Events()[0]
	assert.Equal(t, "exception", exception.Name)
	assert.Contains(t, exception.Attributes, attribute.String(NodeTypeKey, "send_webhook"))
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(context.Background(), NoopTracer(), "execute_graph")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
