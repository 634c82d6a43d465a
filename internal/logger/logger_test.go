package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"studio-storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warning "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, config.Log{Level: "info", Format: "json"}, "test")

	log.Debug("hidden")
	log.Info("cart loaded", "items", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cart loaded", line["msg"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, float64(2), line["items"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, config.Log{Level: "debug", Format: "text"}, "dev")

	log.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
