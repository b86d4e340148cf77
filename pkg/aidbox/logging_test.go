package aidbox_test

import (
	"bytes"
	"testing"

	"github.com/fivetwenty-io/aidbox-client/pkg/aidbox"
	"github.com/hashicorp/go-hclog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewHCLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := aidbox.NewHCLogger(hclog.New(&hclog.LoggerOptions{
		Name:   "aidbox",
		Level:  hclog.Debug,
		Output: &buf,
	}))

	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET", "url": "/Patient"})
	logger.Warn("slow", nil)

	out := buf.String()
	assert.Contains(t, out, "HTTP Request")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "url=/Patient")
	assert.Contains(t, out, "[WARN]")
}

func TestNewZerologLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := aidbox.NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug("hidden", map[string]interface{}{"a": 1})
	logger.Error("request failed", map[string]interface{}{"status_code": 403})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"status_code":403`)
	assert.Contains(t, out, `"message":"request failed"`)
}

func TestNoOpLogger(t *testing.T) {
	t.Parallel()

	var logger aidbox.Logger = aidbox.NoOpLogger{}

	assert.NotPanics(t, func() {
		logger.Info("ignored", map[string]interface{}{"k": "v"})
	})
}
