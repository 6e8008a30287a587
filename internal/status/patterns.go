package status

import "regexp"

var (
	hostnameRe       = regexp.MustCompile(`hostname *: *(.*)`)
	versionRe        = regexp.MustCompile(`version *: *(.*)`)
	addressHostRe    = regexp.MustCompile(`udp/ip *: *(.*):\d`)
	addressPortRe    = regexp.MustCompile(`udp/ip *: *.*:(\d+) `)
	mapRe            = regexp.MustCompile(`map *: *([\p{L}\p{N}_]+)`)
	playerCountRe    = regexp.MustCompile(`players *: *(\d+)`)
	maxPlayerCountRe = regexp.MustCompile(`players *: *[^(\n]*\((\d+)`)

	playerLineRe = regexp.MustCompile(`(?m)^[ \t]*# *(\d+.*)$`)

	// A leading numeric column is skipped for dumps that print slot and userid.
	playerRe = regexp.MustCompile(
		`^(?:\d+ +)?(?P<id>\d+) *"(?P<name>.*)" *(?P<steam_id>STEAM_\d:\d:\d+) +` +
			`(?P<connected>(?:\d{1,2}:)?\d{2}:\d{2}) (?P<tail>.*)$`)

	stateRe = regexp.MustCompile(`\b(active|spawning)\b`)
	ipRe    = regexp.MustCompile(`((?:\d{1,3}\.){3}\d{1,3}):\d`)
)

// Per-field probes over a player fragment. They only name the first missing
// field once playerRe has rejected a line.
var playerFieldProbes = []struct {
	field Field
	re    *regexp.Regexp
}{
	{FieldPlayerID, regexp.MustCompile(`\d+ *"`)},
	{FieldPlayerName, regexp.MustCompile(`\d+ *"(.*)"`)},
	{FieldSteamID, regexp.MustCompile(`STEAM_\d:\d:\d+`)},
	{FieldTimeConnected, regexp.MustCompile(` (?:\d{1,2}:)?\d{2}:\d{2} `)},
	{FieldIP, ipRe},
}

var (
	playerID        = playerRe.SubexpIndex("id")
	playerName      = playerRe.SubexpIndex("name")
	playerSteamID   = playerRe.SubexpIndex("steam_id")
	playerConnected = playerRe.SubexpIndex("connected")
	playerTail      = playerRe.SubexpIndex("tail")
)
