package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("book_id", "b1").Info("book added")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "book added", entry["msg"])
	assert.Equal(t, "b1", entry["book_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewWithWriter_BadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("loud", &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}
