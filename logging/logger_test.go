package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestStructuredOutput ensures that a logger with a registered writer emits valid JSON carrying the
// message, the error, and the structured fields.
func TestStructuredOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(zerolog.InfoLevel, false, buf)

	logger.Info("resolved ", 2, " selectors", errors.New("partial abi"), Fields{"contract": "Token"})

	var event map[string]any
	err := json.Unmarshal(buf.Bytes(), &event)
	assert.NoError(t, err)
	assert.EqualValues(t, "resolved 2 selectors", event["message"])
	assert.EqualValues(t, "partial abi", event["error"])
	info, ok := event["info"].(map[string]any)
	assert.True(t, ok)
	assert.EqualValues(t, "Token", info["contract"])
}

// TestSubLoggerContext ensures sub-logger context keys appear on emitted events.
func TestSubLoggerContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(zerolog.InfoLevel, false, buf).NewSubLogger("module", "contracts")

	logger.Warn("missing pcmap")

	var event map[string]any
	err := json.Unmarshal(buf.Bytes(), &event)
	assert.NoError(t, err)
	assert.EqualValues(t, "contracts", event["module"])
	assert.EqualValues(t, "missing pcmap", event["message"])
}

// TestLevelFiltering ensures events below the configured level are dropped and that SetLevel takes
// effect on subsequent events.
func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(zerolog.WarnLevel, false, buf)

	logger.Info("dropped")
	assert.EqualValues(t, 0, buf.Len())

	logger.SetLevel(zerolog.InfoLevel)
	logger.Info("kept")
	assert.Greater(t, buf.Len(), 0)
}

// TestAddWriterDeduplicates ensures registering the same writer twice does not duplicate output.
func TestAddWriterDeduplicates(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(zerolog.InfoLevel, false)
	logger.AddWriter(buf)
	logger.AddWriter(buf)

	logger.Info("once")

	assert.EqualValues(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}
