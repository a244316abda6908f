package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trade.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	lg, closer, err := New(path, zerolog.InfoLevel)
	require.NoError(t, err)
	lg.Info().Msg("Starting real-time strategy")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "previous run\n"))
	assert.Contains(t, text, "Starting real-time strategy")
	assert.Contains(t, text, "INF")
}

func TestWritersReceiveSameLinesAndRespectLevel(t *testing.T) {
	var console, file bytes.Buffer
	lg := Module(NewWithWriters(&console, &file, zerolog.InfoLevel), "engine")

	lg.Debug().Msg("hidden")
	lg.Info().Str("price", "2.02").Msg("current price")

	assert.NotContains(t, file.String(), "hidden")
	assert.Contains(t, file.String(), "current price")
	assert.Contains(t, file.String(), "module=engine")
	assert.Contains(t, console.String(), "current price")
	assert.NotContains(t, file.String(), "\x1b[", "file output has no colour codes")
}
