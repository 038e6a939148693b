package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rocketrun/rocketrun-server/internal/account"
	"github.com/rocketrun/rocketrun-server/internal/game"
	"github.com/rocketrun/rocketrun-server/internal/session"
	"github.com/rocketrun/rocketrun-server/internal/store"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

const storeTimeout = 5 * time.Second

// LobbyHandler handles account and session lifecycle messages.
type LobbyHandler struct {
	sm     *session.Manager
	store  store.Store
	router *Router
}

// NewLobbyHandler creates a new lobby handler.
func NewLobbyHandler(sm *session.Manager, st store.Store, router *Router) *LobbyHandler {
	return &LobbyHandler{
		sm:     sm,
		store:  st,
		router: router,
	}
}

type helloRequest struct {
	Nickname string `json:"nickname"`
}

type helloResponse struct {
	AccountID string `json:"account_id"`
	Nickname  string `json:"nickname"`
	BestScore int    `json:"best_score"`
}

// HandleHello binds the connection to an account, creating one on first
// contact with a nickname.
func (h *LobbyHandler) HandleHello(client *ws.Client, msg ws.Message) {
	var req helloRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Nickname == "" {
		client.SendMessage(ws.NewErrorMessage("nickname is required"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	acc, err := h.store.FindByNickname(ctx, req.Nickname)
	if err != nil {
		slog.Error("account lookup failed", "nickname", req.Nickname, "error", err)
		client.SendMessage(ws.NewErrorMessage("account lookup failed"))
		return
	}
	if acc == nil {
		acc = account.New(req.Nickname)
		if err := h.store.CreateAccount(ctx, acc); err != nil {
			slog.Error("account creation failed", "nickname", req.Nickname, "error", err)
			client.SendMessage(ws.NewErrorMessage("account creation failed"))
			return
		}
		slog.Info("account created", "nickname", acc.Nickname)
	} else if err := h.store.UpdateLastSeen(ctx, acc.ID); err != nil {
		slog.Warn("failed to update last seen", "account", acc.ID, "error", err)
	}

	best, err := h.store.BestScore(ctx, acc.ID)
	if err != nil {
		slog.Warn("best score lookup failed", "account", acc.ID, "error", err)
	}

	client.AccountID = acc.ID

	resp, _ := ws.NewMessage(ws.TypeHello, helloResponse{
		AccountID: acc.ID,
		Nickname:  acc.Nickname,
		BestScore: best,
	})
	client.SendMessage(resp)
}

type sessionResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

// HandleCreateSession creates a session with the sender as pilot.
func (h *LobbyHandler) HandleCreateSession(client *ws.Client, _ ws.Message) {
	player, ok := h.newPlayer(client)
	if !ok {
		return
	}

	sess := h.sm.CreateSession()
	sess.AddPilot(player, client)
	h.router.RegisterPlayer(client.ID, player.ID)

	resp, _ := ws.NewMessage(ws.TypeCreateSession, sessionResponse{
		Code:     sess.Code,
		PlayerID: player.ID,
	})
	client.SendMessage(resp)

	h.broadcastSessionInfo(sess)

	slog.Info("player created session", "player", player.Nickname, "session", sess.Code)
}

type joinSessionRequest struct {
	Code string `json:"code"`
}

// HandleJoinSession joins an existing session. The first player to join an
// unpiloted session takes the pilot seat; everyone else spectates.
func (h *LobbyHandler) HandleJoinSession(client *ws.Client, msg ws.Message) {
	var req joinSessionRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Code == "" {
		client.SendMessage(ws.NewErrorMessage("session code is required"))
		return
	}

	sess := h.sm.GetSession(req.Code)
	if sess == nil {
		client.SendMessage(ws.NewErrorMessage("session not found"))
		return
	}

	player, ok := h.newPlayer(client)
	if !ok {
		return
	}

	seated := sess.AddPilot(player, client)
	if !seated {
		seated = sess.AddSpectator(player, client)
	}
	if !seated {
		client.SendMessage(ws.NewErrorMessage("session is full"))
		return
	}
	h.router.RegisterPlayer(client.ID, player.ID)

	resp, _ := ws.NewMessage(ws.TypeJoinSession, sessionResponse{
		Code:     sess.Code,
		PlayerID: player.ID,
	})
	client.SendMessage(resp)

	h.broadcastSessionInfo(sess)

	slog.Info("player joined session", "player", player.Nickname, "session", sess.Code, "spectator", player.Spectator)
}

// HandleStartRun starts a run. Only the pilot of a waiting session may start.
func (h *LobbyHandler) HandleStartRun(client *ws.Client, _ ws.Message) {
	sess, ok := h.pilotSession(client)
	if !ok {
		return
	}
	if sess.State != game.StateWaiting {
		client.SendMessage(ws.NewErrorMessage("run already started"))
		return
	}

	startMsg := sess.PrepareRun()
	sess.BroadcastMessage(startMsg)
	sess.StartRunLoop()

	slog.Info("run started", "session", sess.Code)
}

// HandleRestartRun starts a fresh run after a crash. Only the pilot of an
// ended session may restart.
func (h *LobbyHandler) HandleRestartRun(client *ws.Client, _ ws.Message) {
	sess, ok := h.pilotSession(client)
	if !ok {
		return
	}
	if sess.State != game.StateEnded {
		client.SendMessage(ws.NewErrorMessage("no ended run to restart"))
		return
	}

	startMsg := sess.PrepareRun()
	sess.BroadcastMessage(startMsg)
	sess.StartRunLoop()

	slog.Info("run restarted", "session", sess.Code)
}

// HandleLeaveSession handles a player leaving a session.
func (h *LobbyHandler) HandleLeaveSession(client *ws.Client, _ ws.Message) {
	h.removePlayer(client)
}

// HandleDisconnect handles client disconnection.
func (h *LobbyHandler) HandleDisconnect(client *ws.Client) {
	h.removePlayer(client)
}

func (h *LobbyHandler) removePlayer(client *ws.Client) {
	playerID := h.router.GetPlayerID(client.ID)
	if playerID == "" {
		return
	}

	sess := h.sm.FindSessionByPlayerID(playerID)
	if sess != nil {
		sess.RemovePlayer(playerID)
		if sess.IsEmpty() {
			h.sm.RemoveSession(sess.Code)
		} else {
			h.broadcastSessionInfo(sess)
		}
	}

	h.router.UnregisterPlayer(client.ID)
	slog.Info("player left", "player", playerID)
}

// newPlayer builds a player from the client's account. A client already
// seated in a session cannot spawn a second player.
func (h *LobbyHandler) newPlayer(client *ws.Client) (*game.Player, bool) {
	if h.router.GetPlayerID(client.ID) != "" {
		client.SendMessage(ws.NewErrorMessage("already in a session"))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	acc, err := h.store.FindByID(ctx, client.AccountID)
	if err != nil || acc == nil {
		client.SendMessage(ws.NewErrorMessage("account not found"))
		return nil, false
	}

	player := game.NewPlayer(acc.Nickname)
	player.AccountID = acc.ID
	return player, true
}

// pilotSession resolves the client to the session it pilots.
func (h *LobbyHandler) pilotSession(client *ws.Client) (*session.Session, bool) {
	playerID := h.router.GetPlayerID(client.ID)
	sess := h.sm.FindSessionByPlayerID(playerID)
	if sess == nil {
		client.SendMessage(ws.NewErrorMessage("not in a session"))
		return nil, false
	}
	if !sess.IsPilot(playerID) {
		client.SendMessage(ws.NewErrorMessage("only the pilot can do that"))
		return nil, false
	}
	return sess, true
}

type sessionInfoResponse struct {
	Code    string         `json:"code"`
	State   string         `json:"state"`
	Players []*game.Player `json:"players"`
	PilotID string         `json:"pilot_id,omitempty"`
}

func (h *LobbyHandler) broadcastSessionInfo(sess *session.Session) {
	info := sessionInfoResponse{
		Code:    sess.Code,
		State:   sess.State.String(),
		Players: sess.Players(),
	}
	if sess.Pilot != nil {
		info.PilotID = sess.Pilot.ID
	}
	resp, _ := ws.NewMessage(ws.TypeSessionInfo, info)
	sess.BroadcastMessage(resp)
}
