package status

import "strings"

// playerFragments returns the text after "#" of every player row, in order.
func playerFragments(text string) []string {
	matches := playerLineRe.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func extractPlayers(text string, opts Options) ([]PlayerEntry, error) {
	fragments := playerFragments(text)
	players := make([]PlayerEntry, 0, len(fragments))
	for i, fragment := range fragments {
		player, err := extractPlayer(fragment, i, opts)
		if err != nil {
			return nil, &MalformedDialectError{Line: i, Raw: fragment, Err: err}
		}
		players = append(players, player)
	}
	return players, nil
}

func extractPlayer(fragment string, line int, opts Options) (PlayerEntry, error) {
	idx := playerRe.FindStringSubmatchIndex(fragment)
	if idx == nil {
		return PlayerEntry{}, diagnose(fragment, line)
	}
	group := func(n int) string { return fragment[idx[2*n]:idx[2*n+1]] }

	id, err := atoi(group(playerID), FieldPlayerID)
	if err != nil {
		return PlayerEntry{}, err
	}
	player := PlayerEntry{
		ID:            id,
		Name:          group(playerName),
		SteamID:       group(playerSteamID),
		TimeConnected: group(playerConnected),
	}

	tail := group(playerTail)
	ip := ipRe.FindStringSubmatch(tail)
	if ip == nil {
		return PlayerEntry{}, &MissingFieldError{Field: FieldIP, Line: line, Raw: fragment}
	}
	player.IP = ip[1]

	if state := stateRe.FindString(tail); state != "" {
		player.State = PlayerState(state)
	} else if opts.RequireState {
		return PlayerEntry{}, &MissingFieldError{Field: FieldState, Line: line, Raw: fragment}
	}

	// Everything after the id, so the id column never counts as ping or loss.
	numbers := bareNumbers(fragment[idx[2*playerID+1]:])
	switch {
	case len(numbers) == 0:
		return PlayerEntry{}, &MissingFieldError{Field: FieldPing, Line: line, Raw: fragment}
	case len(numbers) == 1:
		return PlayerEntry{}, &MissingFieldError{Field: FieldLoss, Line: line, Raw: fragment}
	}
	pair := numbers[:2]
	if opts.PreferTrailingNumericFields {
		pair = numbers[len(numbers)-2:]
	}
	if player.Ping, err = atoi(pair[0], FieldPing); err != nil {
		return PlayerEntry{}, err
	}
	if player.Loss, err = atoi(pair[1], FieldLoss); err != nil {
		return PlayerEntry{}, err
	}
	return player, nil
}

// diagnose names the first field absent from a fragment that playerRe rejected,
// or the row itself when every field is there but out of place.
func diagnose(fragment string, line int) error {
	for _, probe := range playerFieldProbes {
		if !probe.re.MatchString(fragment) {
			return &MissingFieldError{Field: probe.field, Line: line, Raw: fragment}
		}
	}
	return &MissingFieldError{Field: FieldPlayerLine, Line: line, Raw: fragment}
}

// bareNumbers returns the whitespace-delimited tokens made only of digits.
func bareNumbers(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if isDigits(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
