package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "debug", "json")
	log.WithField("plan", "p1").Debug("tick")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tick", entry["msg"])
	assert.Equal(t, "p1", entry["plan"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "chatty", "text")

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.Debug("hidden")
	assert.Empty(t, buf.String())
	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
