package matrix

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"srcdsbot/internal/commands"
	"srcdsbot/internal/config"
	"srcdsbot/internal/dockerctl"
	"srcdsbot/internal/logx"
	"srcdsbot/internal/metrics"
	"srcdsbot/internal/status"
)

type fakeRCON struct {
	st    status.ServerStatus
	err   error
	calls int
}

func (f *fakeRCON) Status(context.Context) (status.ServerStatus, error) {
	f.calls++
	return f.st, f.err
}

type fakeContainer struct {
	status    dockerctl.Status
	started   bool
	stopped   bool
	restarted bool
}

func (f *fakeContainer) Status(context.Context) (dockerctl.Status, error) { return f.status, nil }
func (f *fakeContainer) Close() error                                     { return nil }
func (f *fakeContainer) Name() string                                     { return "srcds" }

func (f *fakeContainer) Start(context.Context) error {
	f.started = true
	return nil
}

func (f *fakeContainer) Stop(context.Context, time.Duration) error {
	f.stopped = true
	return nil
}

func (f *fakeContainer) Restart(context.Context, time.Duration) error {
	f.restarted = true
	return nil
}

var now = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func newTestBot(rc *fakeRCON, ctr *fakeContainer) *Bot {
	var logs bytes.Buffer
	return &Bot{
		cfg:     config.Config{CommandPrefix: "!", RCONTimeout: time.Second},
		log:     logx.NewWithWriter(logx.Debug, &logs, true),
		docker:  ctr,
		rcon:    rc,
		metrics: metrics.New(),
		now:     func() time.Time { return now },
	}
}

func running() *fakeContainer {
	return &fakeContainer{status: dockerctl.Status{Exists: true, Running: true, State: "running", StartedAt: now.Add(-2 * time.Hour)}}
}

var emptyServer = status.ServerStatus{
	Hostname:       "Pugs",
	Version:        "1.0.0.1/1 1 secure",
	Address:        status.Address{Host: "10.0.0.5", Port: 27015},
	Map:            "cp_process_final",
	MaxPlayerCount: 12,
	Players:        []status.PlayerEntry{},
}

func TestRunCommandStopRefusesWithPlayers(t *testing.T) {
	st := emptyServer
	st.PlayerCount = 1
	st.Players = []status.PlayerEntry{{ID: 2, Name: "Alice", SteamID: "STEAM_0:1:1", TimeConnected: "01:00", IP: "10.0.0.2", State: status.StateActive}}
	ctr := running()
	bot := newTestBot(&fakeRCON{st: st}, ctr)

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.StopServer})
	require.Equal(t, "abort: players are online: Alice", got)
	require.False(t, ctr.stopped)
}

func TestRunCommandStopRefusesWhenStatusUnreadable(t *testing.T) {
	ctr := running()
	bot := newTestBot(&fakeRCON{err: &status.MissingFieldError{Field: status.FieldHostname, Line: -1}}, ctr)

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.RestartServer})
	require.Equal(t, "refused to restart: could not confirm zero players via RCON", got)
	require.False(t, ctr.restarted)
}

func TestRunCommandStopEmptyServer(t *testing.T) {
	ctr := running()
	bot := newTestBot(&fakeRCON{st: emptyServer}, ctr)

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.StopServer})
	require.Equal(t, "server stopped", got)
	require.True(t, ctr.stopped)
}

func TestRunCommandRestartEmptyServer(t *testing.T) {
	ctr := running()
	bot := newTestBot(&fakeRCON{st: emptyServer}, ctr)

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.RestartServer})
	require.Equal(t, "server restarting", got)
	require.True(t, ctr.restarted)
}

func TestRunCommandStart(t *testing.T) {
	ctr := &fakeContainer{status: dockerctl.Status{Exists: true, State: "exited"}}
	bot := newTestBot(&fakeRCON{}, ctr)

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.StartServer})
	require.Equal(t, "starting srcds...", got)
	require.True(t, ctr.started)

	ctr.status.Running = true
	got = bot.runCommand(context.Background(), commands.Command{Type: commands.StartServer})
	require.Equal(t, "server is already running", got)
}

func TestRunCommandStatus(t *testing.T) {
	rc := &fakeRCON{st: emptyServer}
	bot := newTestBot(rc, running())

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.Status})
	require.Equal(t, "Pugs\nmap cp_process_final on 10.0.0.5:27015 (version 1.0.0.1/1 1 secure)\nplayers 0/12\ncontainer up 2h0m0s", got)
	require.Equal(t, 1, rc.calls)
}

func TestRunCommandStatusStoppedContainer(t *testing.T) {
	rc := &fakeRCON{st: emptyServer}
	bot := newTestBot(rc, &fakeContainer{status: dockerctl.Status{Exists: true, State: "exited"}})

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.Status})
	require.Equal(t, "srcds is stopped (exited)", got)
	require.Zero(t, rc.calls)
}

func TestRunCommandPlayersError(t *testing.T) {
	bot := newTestBot(&fakeRCON{err: errors.New("dial rcon 10.0.0.5:27015: connection refused")}, running())

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.Players})
	require.True(t, strings.HasPrefix(got, "could not list players: "))
}

func TestRunCommandBusy(t *testing.T) {
	bot := newTestBot(&fakeRCON{st: emptyServer}, running())
	bot.busy.Store(true)

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.Status})
	require.Equal(t, "busy, try again", got)
}

func TestRunCommandHelp(t *testing.T) {
	bot := newTestBot(&fakeRCON{}, running())

	got := bot.runCommand(context.Background(), commands.Command{Type: commands.Help})
	require.Equal(t, "commands: !status, !players, !startserver, !stopserver, !restartserver, !help", got)
}
