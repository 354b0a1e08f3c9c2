package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "niftysignal", "warn", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := FromContext(context.Background())
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInit_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "niftysignal", "chatty", "json")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "niftysignal", "debug", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := WithCorrelationID(context.Background(), "abc-123")
	FromContext(ctx).Info().Str("symbol", "TCS.NS").Msg("analysed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc-123", line["correlation_id"])
	assert.Equal(t, "niftysignal", line["service"])
	assert.Equal(t, "TCS.NS", line["symbol"])
}
