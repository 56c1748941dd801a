package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Domenick1991/skybooking/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	logger.WithField("flight_id", 7).Debug("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "created", entry["msg"])
	assert.Equal(t, float64(7), entry["flight_id"])
}

func TestNewWithOutput_BadLevelFallsBackToInfo(t *testing.T) {
	logger := NewWithOutput(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
