// Package status parses the reply to the Source engine RCON "status" command.
package status

import (
	"net"
	"strconv"

	"github.com/leighmacdonald/steamid/v4/steamid"
)

type PlayerState string

const (
	StateActive   PlayerState = "active"
	StateSpawning PlayerState = "spawning"
)

// Address is the endpoint reported on the udp/ip line.
type Address struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

type ServerStatus struct {
	Hostname       string        `json:"hostname"`
	Version        string        `json:"version"`
	Address        Address       `json:"address"`
	Map            string        `json:"map"`
	PlayerCount    int           `json:"player_count"`
	MaxPlayerCount int           `json:"max_player_count"`
	Players        []PlayerEntry `json:"players"`
}

// PlayerEntry is one "#" row of the dump. State is empty when the server does
// not print it.
type PlayerEntry struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	SteamID       string      `json:"steam_id"`
	TimeConnected string      `json:"time_connected"`
	Ping          int         `json:"ping"`
	Loss          int         `json:"loss"`
	IP            string      `json:"ip"`
	State         PlayerState `json:"state,omitempty"`
}

// SteamID64 converts the textual STEAM_X:Y:Z id. The result is invalid when the
// account number does not describe an individual account.
func (p PlayerEntry) SteamID64() steamid.SteamID {
	return steamid.New(p.SteamID)
}
