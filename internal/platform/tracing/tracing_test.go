package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raceday/internal/platform/config"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TracingConfig{})
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "op")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledProviderRecordsSpans(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	defer func() { _ = p.Shutdown(context.Background()) }()

	_, span := p.Tracer().Start(context.Background(), "op")
	span.End()
	assert.True(t, span.SpanContext().IsValid())
}

func TestUnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}
