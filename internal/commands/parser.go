package commands

import "strings"

type Type int

const (
	Unknown Type = iota
	Help
	Status
	Players
	StartServer
	StopServer
	RestartServer
)

var names = map[string]Type{
	"help":          Help,
	"status":        Status,
	"players":       Players,
	"startserver":   StartServer,
	"stopserver":    StopServer,
	"restartserver": RestartServer,
}

// Usage lists every command in the order help prints them.
var Usage = []string{"status", "players", "startserver", "stopserver", "restartserver", "help"}

type Command struct {
	Type Type
	Raw  string
}

func Parse(body, prefix string) Command {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return Command{Type: Unknown, Raw: trimmed}
	}
	if prefix == "" {
		prefix = "!"
	}
	if !strings.HasPrefix(trimmed, prefix) {
		return Command{Type: Unknown, Raw: trimmed}
	}

	fields := strings.Fields(strings.TrimPrefix(trimmed, prefix))
	if len(fields) == 0 {
		return Command{Type: Unknown, Raw: trimmed}
	}

	typ, ok := names[strings.ToLower(fields[0])]
	if !ok {
		return Command{Type: Unknown, Raw: trimmed}
	}
	return Command{Type: typ, Raw: trimmed}
}

// Mutating reports whether the command changes the container state.
func (t Type) Mutating() bool {
	return t == StartServer || t == StopServer || t == RestartServer
}
