package handler

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketrun/rocketrun-server/internal/session"
	"github.com/rocketrun/rocketrun-server/internal/store"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

// Router dispatches incoming messages to the appropriate handler.
type Router struct {
	lobby    *LobbyHandler
	gameplay *GameplayHandler

	// playerMap tracks client ID -> player ID mapping, shared across handlers.
	playerMap map[string]string
	mu        sync.RWMutex
}

// NewRouter creates a new message router.
func NewRouter(sm *session.Manager, st store.Store) *Router {
	r := &Router{
		playerMap: make(map[string]string),
	}
	r.lobby = NewLobbyHandler(sm, st, r)
	r.gameplay = NewGameplayHandler(sm, r)
	return r
}

// RegisterPlayer maps a client ID to a player ID.
func (r *Router) RegisterPlayer(clientID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerMap[clientID] = playerID
}

// UnregisterPlayer removes a client's player mapping.
func (r *Router) UnregisterPlayer(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playerMap, clientID)
}

// GetPlayerID returns the player ID for a client, or empty string if not found.
func (r *Router) GetPlayerID(clientID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playerMap[clientID]
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	var msg ws.Message
	if err := json.Unmarshal(cm.Data, &msg); err != nil {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage("invalid message format"))
		return
	}

	// hello is always allowed; it binds the connection to an account
	if msg.Type == ws.TypeHello {
		r.lobby.HandleHello(cm.Client, msg)
		return
	}

	if cm.Client.AccountID == "" {
		cm.Client.SendMessage(ws.NewErrorMessage("say hello first"))
		return
	}

	switch msg.Type {
	// Lobby messages
	case ws.TypeCreateSession:
		r.lobby.HandleCreateSession(cm.Client, msg)
	case ws.TypeJoinSession:
		r.lobby.HandleJoinSession(cm.Client, msg)
	case ws.TypeLeaveSession:
		r.lobby.HandleLeaveSession(cm.Client, msg)
	case ws.TypeStartRun:
		r.lobby.HandleStartRun(cm.Client, msg)
	case ws.TypeRestartRun:
		r.lobby.HandleRestartRun(cm.Client, msg)

	// Gameplay reports
	case ws.TypeGapPassed:
		r.gameplay.HandleGapPassed(cm.Client, msg)
	case ws.TypeObstacleHit:
		r.gameplay.HandleObstacleHit(cm.Client, msg)
	case ws.TypeGravityShift:
		r.gameplay.HandleGravityShift(cm.Client, msg)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// HandleDisconnect handles client disconnection.
func (r *Router) HandleDisconnect(client *ws.Client) {
	r.lobby.HandleDisconnect(client)
}
