package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"srcdsbot/internal/status"
)

func TestObserveStatus(t *testing.T) {
	r := New()
	r.ObserveStatus(status.ServerStatus{
		PlayerCount:    2,
		MaxPlayerCount: 16,
		Players: []status.PlayerEntry{
			{ID: 1, Ping: 30, Loss: 0},
			{ID: 2, Ping: 120, Loss: 4},
		},
	})

	require.Equal(t, 1.0, testutil.ToFloat64(r.parses.WithLabelValues("ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.players))
	require.Equal(t, 16.0, testutil.ToFloat64(r.maxPlayers))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "srcdsbot_player_ping_ms_count 2")
}

func TestObserveError(t *testing.T) {
	r := New()
	r.ObserveError(errors.New("dial rcon 127.0.0.1:27015: connection refused"))
	r.ObserveError(&status.MalformedDialectError{
		Line: 0,
		Raw:  `1 "BOT" BOT 00:01 0 0 active`,
		Err:  &status.MissingFieldError{Field: status.FieldSteamID, Line: 0},
	})

	require.Equal(t, 1.0, testutil.ToFloat64(r.parses.WithLabelValues("rcon_error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.parses.WithLabelValues("parse_error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("steam_id")))
}

func TestObserveErrorRowLayout(t *testing.T) {
	_, err := status.Parse("hostname: x\nversion : 1\nudp/ip  : 10.0.0.1:27015 \nmap     : de_dust2\n" +
		"players : 1 (8 max)\n" +
		`# 4 "Kyle" x STEAM_0:0:4 05:00 12 0 active 10.0.0.4:27005` + "\n")
	require.Error(t, err)

	r := New()
	r.ObserveError(err)
	require.Zero(t, testutil.ToFloat64(r.parses.WithLabelValues("rcon_error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.parses.WithLabelValues("parse_error")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("player_line")))
}

func TestHandler(t *testing.T) {
	r := New()
	r.ObserveStatus(status.ServerStatus{PlayerCount: 3, MaxPlayerCount: 10})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "srcdsbot_server_players 3")
}
