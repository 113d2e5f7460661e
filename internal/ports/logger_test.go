package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := Discard()
	ctx := context.Background()
	logger.Debug(ctx, "already complete, skipping")
	logger.Info(ctx, "running", F(FieldStep, "build_zlib"))
	logger.Warn(ctx, "archive cached", F(FieldPath, "zlib-1.2.8.tar.gz"))
	logger.Error(ctx, "run failed", F(FieldError, assert.AnError))

	assert.Equal(t, LevelInfo, logger.Level())
	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.Level())

	child := logger.With(F(FieldRunID, "run-1"))
	assert.Same(t, logger, child)
}

func TestDiscard_ReturnsIndependentLoggers(t *testing.T) {
	t.Parallel()

	a, b := Discard(), Discard()
	a.SetLevel(LevelError)
	assert.Equal(t, LevelInfo, b.Level())
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, LoggerFromContext(context.Background()))

	step := Discard().With(F(FieldRunID, "run-1"), F(FieldStep, "build_curl"))
	ctx := ContextWithLogger(context.Background(), step)
	assert.Same(t, step, LoggerFromContext(ctx))
}

func TestLoggerFromContextOr(t *testing.T) {
	t.Parallel()

	fallback := Discard()
	assert.Same(t, fallback, LoggerFromContextOr(context.Background(), fallback))

	stored := Discard()
	ctx := ContextWithLogger(context.Background(), stored)
	got := LoggerFromContextOr(ctx, fallback)
	require.NotNil(t, got)
	assert.Same(t, stored, got)
}

func TestLevel_OrdersBySeverity(t *testing.T) {
	t.Parallel()

	assert.Less(t, int(LevelDebug), int(LevelInfo))
	assert.Less(t, int(LevelInfo), int(LevelWarn))
	assert.Less(t, int(LevelWarn), int(LevelError))
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
