package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Equal(t, "AlwaysOnSampler", samplerFor(2.5).Description())
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestInitTracing(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "dojo-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = InitTracing(TracingConfig{ServiceName: "dojo-test", Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestBlobSpan_SetError(t *testing.T) {
	span, ctx := StartClientSpan(context.Background(), "storage.test.put")
	require.NotNil(t, ctx)
	span.SetError(nil)
	span.SetError(errors.New("boom"))
	span.End()
}
