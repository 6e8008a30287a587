package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Info, &buf, true)

	logger.Debug("hidden")
	logger.Warn("rcon check failed", "err", errors.New("refused"), "players", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "rcon check failed", entry["message"])
	require.Equal(t, "refused", entry["err"])
	require.EqualValues(t, 3, entry["players"])
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Debug, &buf, true).With("room_id", "!abc:example.org")
	logger.Info("matrix sync started")

	require.Contains(t, buf.String(), `"room_id":"!abc:example.org"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want Level
	}{
		{raw: "debug", want: Debug},
		{raw: " WARNING ", want: Warn},
		{raw: "error", want: Error},
		{raw: "", want: Info},
		{raw: "verbose", want: Info},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.raw))
		})
	}
}
