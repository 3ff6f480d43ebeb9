package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextDefaultsToNoop(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
}

func TestWithLoggerRoundTrip(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	FromContext(ctx).Info("hello")
	require.Equal(t, 1, logs.Len())
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	logger, err := NewLogger(false)
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))
}
