package matrix

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"srcdsbot/internal/dockerctl"
	"srcdsbot/internal/status"
)

func TestFormatPlayers(t *testing.T) {
	st := status.ServerStatus{
		PlayerCount: 2,
		Players: []status.PlayerEntry{
			{ID: 2, Name: "Alice", SteamID: "STEAM_0:1:1234567", TimeConnected: "12:04", Ping: 35, Loss: 0, State: status.StateActive},
			{ID: 4, Name: "Agent 47 Rules", SteamID: "STEAM_0:0:7654321", TimeConnected: "1:02:11", Ping: 85, Loss: 3},
		},
	}

	lines := strings.Split(formatPlayers(st), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "#2 Alice  ping 35 loss 0  12:04  active"))
	require.Contains(t, lines[0], "https://steamcommunity.com/profiles/76561197962734863")
	require.True(t, strings.HasPrefix(lines[1], "#4 Agent 47 Rules  ping 85 loss 3  1:02:11  https://"))
	require.Equal(t, "2 players, average ping 60 ms", lines[2])
}

func TestFormatPlayersEmpty(t *testing.T) {
	require.Equal(t, "no players online", formatPlayers(status.ServerStatus{}))
}

func TestFormatStatusHealth(t *testing.T) {
	st := status.ServerStatus{Hostname: "Pugs", Version: "7", Address: status.Address{Host: "10.0.0.5", Port: 27015}, Map: "ctf_2fort", MaxPlayerCount: 24}
	ctr := dockerctl.Status{Exists: true, Running: true, Health: "healthy", StartedAt: now.Add(-90 * time.Minute)}

	got := formatStatus(st, ctr, now)
	require.Equal(t, "Pugs\nmap ctf_2fort on 10.0.0.5:27015 (version 7)\nplayers 0/24\ncontainer up 1h30m0s, healthy", got)
}

func TestFormatStatusSpawning(t *testing.T) {
	st := status.ServerStatus{
		Hostname:       "Surf",
		Version:        "7",
		Address:        status.Address{Host: "10.0.0.5", Port: 27016},
		Map:            "surf_utopia",
		PlayerCount:    2,
		MaxPlayerCount: 24,
		Players: []status.PlayerEntry{
			{ID: 1, State: status.StateSpawning},
			{ID: 2, State: status.StateActive},
		},
	}

	got := formatStatus(st, dockerctl.Status{Exists: true}, now)
	require.Equal(t, "Surf\nmap surf_utopia on 10.0.0.5:27016 (version 7)\nplayers 2/24 (1 spawning)", got)
}
