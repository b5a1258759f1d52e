package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"interior-design-backend/internal/logging"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New("debug", &buf)

	log.WithField("op", "analyze_room").Info("provider call")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "provider call", entry["msg"])
	assert.Equal(t, "analyze_room", entry["op"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := logging.New("loud", nil)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
