package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-lookup/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Disabled(t *testing.T) {
	tele, err := New(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.False(t, tele.IsEnabled())
	assert.NotNil(t, tele.GetTracer())
	assert.NoError(t, tele.Shutdown(context.Background()))
}

func TestNilTelemetry_IsSafe(t *testing.T) {
	var tele *Telemetry
	assert.False(t, tele.IsEnabled())

	ctx, span := tele.GetTracer().Start(context.Background(), "op")
	defer span.End()

	tele.RecordError(ctx, errors.New("boom"), map[string]interface{}{"city": "London"})
	assert.NoError(t, tele.Shutdown(ctx))
}

func TestRecordError_MarksSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tele := &Telemetry{enabled: true, tracer: tp.Tracer("test"), provider: tp}

	ctx, span := tele.GetTracer().Start(context.Background(), "lookup")
	tele.RecordError(ctx, errors.New("city not found"), map[string]interface{}{"city": "Atlantis"})
	tele.RecordError(ctx, nil, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "city not found", ended[0].Status().Description)
	assert.Contains(t, ended[0].Attributes(), attribute.String("city", "Atlantis"))
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}
