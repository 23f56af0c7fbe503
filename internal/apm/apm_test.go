package apm

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/logger"
)

func TestParseHeaders(t *testing.T) {
	h, err := ParseHeaders("x-honeycomb-team=abc, api-key = k ,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x-honeycomb-team": "abc", "api-key": "k"}, h)

	h, err = ParseHeaders("")
	require.NoError(t, err)
	assert.Empty(t, h)

	_, err = ParseHeaders("novalue")
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
}

func TestNewTraceProvider_Empty(t *testing.T) {
	tp, err := NewTraceProvider(context.Background(), logger.Discard(), WithProvider(EmptyProvider))
	require.NoError(t, err)
	assert.NoError(t, tp.Stop())
}

func TestNewTraceProvider_UnknownProvider(t *testing.T) {
	_, err := NewTraceProvider(context.Background(), logger.Discard(), WithProvider("jaeger"))
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
}

func TestNewTraceProvider_ConsoleExportsOnStop(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out bytes.Buffer
	tp, err := NewTraceProvider(context.Background(), logger.Discard(),
		WithProvider(ConsoleProvider),
		WithServiceName("swapquote-test"),
		WithWriter(&out),
	)
	require.NoError(t, err)

	_, span := NewTracer("test").StartSpanFromContext(context.Background(), "swap.quote")
	span.End()

	require.NoError(t, tp.Stop())
	assert.Contains(t, out.String(), "swap.quote")
	assert.Contains(t, out.String(), "swapquote-test")
}

func TestSpan_NoticeError(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	ctx, span := NewTracer("test").StartSpanFromContext(context.Background(), "swap.quote")
	assert.True(t, span.SpanContext().IsValid())
	assert.Equal(t, span.SpanContext(), NewTracer("test").SpanFromContext(ctx).SpanContext())

	span.NoticeError(apperror.Newf(apperror.CodeNoLiquidity, "empty pool"))
	span.NoticeError(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("error.code", "NO_LIQUIDITY"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("error.kind", "market"))
	require.Len(t, ended[0].Events(), 1)
}
