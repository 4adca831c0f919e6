package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Defaults(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be json or console")
}

func TestNewLogger_ConstantFields(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Fields = map[string]string{"service": "advisord"}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	// Logging must not panic with constant fields attached.
	logger.Info(context.Background(), "startup")
}

func TestNamed_CreatesChild(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	child := logger.Named("pipeline")
	require.NotNil(t, child)
	assert.NotSame(t, logger, child)
}

func TestContextFields_RequestAndUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithUserID(ctx, "user-9")

	fields := ContextFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	assert.Equal(t, "user-9", UserIDFromContext(ctx))
}

func TestContextFields_EmptyValuesIgnored(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "")
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithUserID(ctx, "")
	assert.Empty(t, UserIDFromContext(ctx))
}
