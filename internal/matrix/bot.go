package matrix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"srcdsbot/internal/commands"
	"srcdsbot/internal/config"
	"srcdsbot/internal/dockerctl"
	"srcdsbot/internal/logx"
	"srcdsbot/internal/metrics"
	"srcdsbot/internal/rcon"
	"srcdsbot/internal/status"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

type statusSource interface {
	Status(ctx context.Context) (status.ServerStatus, error)
}

type containerControl interface {
	Name() string
	Status(ctx context.Context) (dockerctl.Status, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context, timeout time.Duration) error
	Restart(ctx context.Context, timeout time.Duration) error
	Close() error
}

type Bot struct {
	cfg      config.Config
	log      *logx.Logger
	matrix   *mautrix.Client
	docker   containerControl
	rcon     statusSource
	metrics  *metrics.Recorder
	roomID   id.RoomID
	busy     atomic.Bool
	allowed  map[string]struct{}
	selfUser id.UserID
	now      func() time.Time
}

func New(ctx context.Context, cfg config.Config, logger *logx.Logger, recorder *metrics.Recorder) (*Bot, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dockerController, err := dockerctl.New(cfg.DockerContainerName)
	if err != nil {
		return nil, err
	}

	accessToken, err := resolveAccessToken(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve matrix access token: %w", err)
	}

	userID := id.UserID(strings.TrimSpace(cfg.MatrixUserID))
	matrixClient, err := mautrix.NewClient(cfg.MatrixHomeserver, userID, accessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}
	matrixClient.Log = logger.With("component", "mautrix").Zerolog()

	if matrixClient.UserID == "" {
		whoami, whoamiErr := matrixClient.Whoami(ctx)
		if whoamiErr != nil {
			return nil, fmt.Errorf("resolve MATRIX_USER_ID with /whoami: %w", whoamiErr)
		}
		matrixClient.UserID = whoami.UserID
	}

	syncer := mautrix.NewDefaultSyncer()
	syncer.FilterJSON = &mautrix.Filter{
		Room: &mautrix.RoomFilter{
			Rooms: []id.RoomID{id.RoomID(cfg.MatrixRoomID)},
			Timeline: &mautrix.FilterPart{
				Types: []event.Type{event.EventMessage},
			},
		},
	}

	matrixClient.Syncer = syncer
	matrixClient.Store = NewFileSyncStore(cfg.StatePath())

	parser := status.New(cfg.StatusOptions())
	bot := &Bot{
		cfg:      cfg,
		log:      logger,
		matrix:   matrixClient,
		docker:   dockerController,
		rcon:     rcon.New(cfg.RCONHost, cfg.RCONPort, cfg.RCONPass, cfg.RCONTimeout, parser),
		metrics:  recorder,
		roomID:   id.RoomID(cfg.MatrixRoomID),
		allowed:  cfg.AllowedMXIDs,
		selfUser: matrixClient.UserID,
		now:      time.Now,
	}

	syncer.OnEventType(event.EventMessage, bot.handleMessage)
	return bot, nil
}

func (b *Bot) Run(ctx context.Context) error {
	if err := b.bootstrapSyncToken(ctx); err != nil {
		return err
	}

	b.log.Info("matrix sync started", "room_id", b.roomID.String(), "user_id", b.selfUser.String())
	err := b.matrix.SyncWithContext(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (b *Bot) Close() error {
	return b.docker.Close()
}

func (b *Bot) bootstrapSyncToken(ctx context.Context) error {
	nextBatch, err := b.matrix.Store.LoadNextBatch(ctx, b.matrix.UserID)
	if err != nil {
		return fmt.Errorf("load sync token: %w", err)
	}
	if nextBatch != "" {
		return nil
	}

	resp, err := b.matrix.SyncRequest(ctx, 0, "", "", false, "")
	if err != nil {
		return fmt.Errorf("initial sync request for token bootstrap: %w", err)
	}
	if resp.NextBatch == "" {
		return errors.New("initial sync returned empty next_batch")
	}
	if err := b.matrix.Store.SaveNextBatch(ctx, b.matrix.UserID, resp.NextBatch); err != nil {
		return fmt.Errorf("save initial sync token: %w", err)
	}
	b.log.Info("initialized sync token without replay")
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, evt *event.Event) {
	if evt == nil {
		return
	}
	if evt.RoomID != b.roomID {
		return
	}
	if evt.Sender == b.selfUser {
		return
	}
	if _, ok := b.allowed[evt.Sender.String()]; !ok {
		return
	}

	if err := evt.Content.ParseRaw(evt.Type); err != nil {
		b.log.Warn("failed parsing matrix event content", "event_id", evt.ID.String(), "err", err)
		return
	}
	content := evt.Content.AsMessage()
	if content == nil || !content.MsgType.IsText() {
		return
	}

	cmd := commands.Parse(content.Body, b.cfg.CommandPrefix)
	if cmd.Type == commands.Unknown {
		return
	}

	b.log.Debug("command received", "sender", evt.Sender.String(), "command", cmd.Raw)
	b.reply(ctx, b.runCommand(ctx, cmd))
}

// runCommand executes one command and returns the reply text. Only one command
// runs at a time.
func (b *Bot) runCommand(ctx context.Context, cmd commands.Command) string {
	if !b.busy.CompareAndSwap(false, true) {
		return "busy, try again"
	}
	defer b.busy.Store(false)

	switch cmd.Type {
	case commands.Help:
		return helpText(b.cfg.CommandPrefix)
	case commands.Status:
		return b.handleStatus(ctx)
	case commands.Players:
		return b.handlePlayers(ctx)
	case commands.StartServer:
		return b.handleStart(ctx)
	case commands.StopServer:
		return b.handleStop(ctx)
	case commands.RestartServer:
		return b.handleRestart(ctx)
	default:
		return ""
	}
}

func (b *Bot) queryStatus(ctx context.Context) (status.ServerStatus, error) {
	queryCtx, cancel := context.WithTimeout(ctx, b.cfg.RCONTimeout)
	defer cancel()

	st, err := b.rcon.Status(queryCtx)
	if err != nil {
		if b.metrics != nil {
			b.metrics.ObserveError(err)
		}
		if field, ok := status.FailedField(err); ok {
			b.log.Warn("status reply not understood", "field", string(field), "err", err)
		} else {
			b.log.Warn("rcon status query failed", "err", err)
		}
		return status.ServerStatus{}, err
	}
	if b.metrics != nil {
		b.metrics.ObserveStatus(st)
	}
	return st, nil
}

func (b *Bot) handleStatus(ctx context.Context) string {
	ctr, err := b.docker.Status(ctx)
	if err != nil {
		return "error checking server status: " + err.Error()
	}
	if !ctr.Exists {
		return "configured container was not found"
	}
	if !ctr.Running {
		return b.docker.Name() + " is stopped (" + ctr.State + ")"
	}

	st, err := b.queryStatus(ctx)
	if err != nil {
		return "server is running but status query failed: " + err.Error()
	}
	return formatStatus(st, ctr, b.now())
}

func (b *Bot) handlePlayers(ctx context.Context) string {
	st, err := b.queryStatus(ctx)
	if err != nil {
		return "could not list players: " + err.Error()
	}
	return formatPlayers(st)
}

func (b *Bot) handleStart(ctx context.Context) string {
	ctr, err := b.docker.Status(ctx)
	if err != nil {
		return "error checking server status: " + err.Error()
	}
	if !ctr.Exists {
		return "configured container was not found"
	}
	if ctr.Running {
		return "server is already running"
	}

	if err := b.docker.Start(ctx); err != nil {
		return "failed to start server: " + err.Error()
	}
	return "starting " + b.docker.Name() + "..."
}

func (b *Bot) handleStop(ctx context.Context) string {
	if msg, ok := b.guardEmpty(ctx, "stop"); !ok {
		return msg
	}

	stopCtx, cancelStop := context.WithTimeout(ctx, 30*time.Second)
	err := b.docker.Stop(stopCtx, 30*time.Second)
	cancelStop()
	if err != nil {
		return "failed to stop server: " + err.Error()
	}
	return "server stopped"
}

func (b *Bot) handleRestart(ctx context.Context) string {
	if msg, ok := b.guardEmpty(ctx, "restart"); !ok {
		return msg
	}

	restartCtx, cancelRestart := context.WithTimeout(ctx, 45*time.Second)
	err := b.docker.Restart(restartCtx, 30*time.Second)
	cancelRestart()
	if err != nil {
		return "failed to restart server: " + err.Error()
	}
	return "server restarting"
}

// guardEmpty refuses verb unless the container runs and the parsed status
// shows nobody connected.
func (b *Bot) guardEmpty(ctx context.Context, verb string) (string, bool) {
	ctr, err := b.docker.Status(ctx)
	if err != nil {
		return "error checking server status: " + err.Error(), false
	}
	if !ctr.Exists {
		return "configured container was not found", false
	}
	if !ctr.Running {
		return "server is already stopped", false
	}

	st, err := b.queryStatus(ctx)
	if err != nil {
		return "refused to " + verb + ": could not confirm zero players via RCON", false
	}
	if len(st.Players) > 0 || st.PlayerCount > 0 {
		names := make([]string, 0, len(st.Players))
		for _, p := range st.Players {
			names = append(names, p.Name)
		}
		if len(names) == 0 {
			return fmt.Sprintf("abort: %d players are online", st.PlayerCount), false
		}
		return "abort: players are online: " + strings.Join(names, ", "), false
	}
	return "", true
}

func (b *Bot) reply(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if _, err := b.matrix.SendText(ctx, b.roomID, text); err != nil {
		b.log.Error("failed sending matrix message", "err", err)
	}
}

func resolveAccessToken(ctx context.Context, cfg config.Config) (string, error) {
	if token := strings.TrimSpace(cfg.MatrixAccessToken); token != "" {
		return token, nil
	}

	if fileToken := readSecretFile(cfg.AccessTokenPath()); fileToken != "" {
		return fileToken, nil
	}

	loginClient, err := mautrix.NewClient(cfg.MatrixHomeserver, id.UserID(cfg.MatrixUserID), "")
	if err != nil {
		return "", fmt.Errorf("create matrix login client: %w", err)
	}

	resp, err := loginClient.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: cfg.MatrixUser,
		},
		Password:         cfg.MatrixPassword,
		StoreCredentials: true,
	})
	if err != nil {
		return "", fmt.Errorf("matrix password login failed: %w", err)
	}

	if err := writeFileAtomically(cfg.AccessTokenPath(), []byte(resp.AccessToken+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persist access token: %w", err)
	}
	return resp.AccessToken, nil
}

func readSecretFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
