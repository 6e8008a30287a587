package matrix

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"srcdsbot/internal/commands"
	"srcdsbot/internal/dockerctl"
	"srcdsbot/internal/status"
)

func formatStatus(st status.ServerStatus, ctr dockerctl.Status, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", st.Hostname)
	fmt.Fprintf(&b, "map %s on %s (version %s)\n", st.Map, st.Address, st.Version)
	fmt.Fprintf(&b, "players %d/%d", st.PlayerCount, st.MaxPlayerCount)
	if spawning := lo.CountBy(st.Players, func(p status.PlayerEntry) bool {
		return p.State == status.StateSpawning
	}); spawning > 0 {
		fmt.Fprintf(&b, " (%d spawning)", spawning)
	}
	if uptime := ctr.Uptime(now); uptime > 0 {
		fmt.Fprintf(&b, "\ncontainer up %s", uptime.Truncate(time.Minute))
		if ctr.Health != "" {
			fmt.Fprintf(&b, ", %s", ctr.Health)
		}
	}
	return b.String()
}

func formatPlayers(st status.ServerStatus) string {
	if len(st.Players) == 0 {
		return "no players online"
	}

	lines := lo.Map(st.Players, func(p status.PlayerEntry, _ int) string {
		line := fmt.Sprintf("#%d %s  ping %d loss %d  %s", p.ID, p.Name, p.Ping, p.Loss, p.TimeConnected)
		if p.State != "" {
			line += "  " + string(p.State)
		}
		if url := profileURL(p); url != "" {
			line += "  " + url
		}
		return line
	})

	avg := float64(lo.SumBy(st.Players, func(p status.PlayerEntry) int { return p.Ping })) / float64(len(st.Players))
	lines = append(lines, fmt.Sprintf("%d players, average ping %.0f ms", len(st.Players), avg))
	return strings.Join(lines, "\n")
}

func profileURL(p status.PlayerEntry) string {
	sid := p.SteamID64()
	if !sid.Valid() {
		return ""
	}
	return "https://steamcommunity.com/profiles/" + strconv.FormatInt(sid.Int64(), 10)
}

func helpText(prefix string) string {
	return "commands: " + strings.Join(lo.Map(commands.Usage, func(name string, _ int) string {
		return prefix + name
	}), ", ")
}
