package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := InitWriter("engine", "info", "production", &buf)
	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "engine", record["service"])
	assert.Equal(t, "hello", record["msg"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := InitWriter("engine", "warn", "production", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Positive(t, buf.Len())
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := InitWriter("engine", "info", "production", &buf)

	ctx := WithLogger(context.Background(), logger)
	ctx = WithComponent(ctx, "preference")
	FromContext(ctx).Info("applied")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "preference", record["component"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
