package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Configure(Options{Level: "info", Format: "json", Out: &buf})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("thread", "24").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "visible", entry["message"])
	require.Equal(t, "24", entry["thread"])
	require.Equal(t, "info", entry["level"])
}

func TestConfigureDefaultsToWarn(t *testing.T) {
	logger, err := Configure(Options{Out: &bytes.Buffer{}, NoColor: true})
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestConfigureRejectsBadInput(t *testing.T) {
	_, err := Configure(Options{Level: "loud"})
	require.Error(t, err)
	_, err = Configure(Options{Format: "xml"})
	require.Error(t, err)
}
