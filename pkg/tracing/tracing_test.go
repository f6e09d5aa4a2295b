package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	tr, closeFn, err := InitTracer(Config{})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tr)
	assert.NotPanics(t, closeFn)
}

func TestSetServiceName(t *testing.T) {
	old := SetServiceName("signal_bot")
	defer SetServiceName(old)
	assert.Equal(t, "signal_bot", serviceName)
}
