package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestProvider_ExportsSpansOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(context.Background(), "miniblog-test", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "create-article")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "create-article")
	assert.Contains(t, buf.String(), "miniblog-test")
}
