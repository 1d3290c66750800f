package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithOutput("debug", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("unit", "medical_1").Info("Dispatching task")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Dispatching task", entry["msg"])
	assert.Equal(t, "medical_1", entry["unit"])
}

func TestNew_UnknownLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, New("loud").GetLevel())
}
