package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/rocketrun/rocketrun-server/internal/session"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

// GameplayHandler handles collision reports sent during a run. The host
// engine detects contacts; the server decides what they mean, so every
// report is validated against the session before it changes anything.
type GameplayHandler struct {
	sm     *session.Manager
	router *Router
}

// NewGameplayHandler creates a new gameplay handler.
func NewGameplayHandler(sm *session.Manager, router *Router) *GameplayHandler {
	return &GameplayHandler{sm: sm, router: router}
}

type obstacleReport struct {
	ObstacleID string `json:"obstacle_id"`
}

// HandleGapPassed handles a scoring-gap passage report.
func (h *GameplayHandler) HandleGapPassed(client *ws.Client, msg ws.Message) {
	sess, report, ok := h.pilotReport(client, msg)
	if !ok {
		return
	}

	sess.GapPassed(report.ObstacleID)
	slog.Debug("gap passed", "session", sess.Code, "obstacle", report.ObstacleID)
}

// HandleObstacleHit handles a fatal collision report. It ends the run.
func (h *GameplayHandler) HandleObstacleHit(client *ws.Client, msg ws.Message) {
	sess, report, ok := h.pilotReport(client, msg)
	if !ok {
		return
	}

	sess.EndRun(report.ObstacleID, false)
}

// HandleGravityShift handles a gravity region contact report.
func (h *GameplayHandler) HandleGravityShift(client *ws.Client, msg ws.Message) {
	sess, report, ok := h.pilotReport(client, msg)
	if !ok {
		return
	}

	sess.GravityShift(report.ObstacleID)
}

// pilotReport parses an obstacle report and checks the sender pilots the
// session. Spectator reports are rejected; they only watch.
func (h *GameplayHandler) pilotReport(client *ws.Client, msg ws.Message) (*session.Session, obstacleReport, bool) {
	var report obstacleReport
	if err := json.Unmarshal(msg.Data, &report); err != nil || report.ObstacleID == "" {
		client.SendMessage(ws.NewErrorMessage("obstacle_id is required"))
		return nil, report, false
	}

	playerID := h.router.GetPlayerID(client.ID)
	sess := h.sm.FindSessionByPlayerID(playerID)
	if sess == nil {
		client.SendMessage(ws.NewErrorMessage("not in a session"))
		return nil, report, false
	}
	if !sess.IsPilot(playerID) {
		client.SendMessage(ws.NewErrorMessage("only the pilot reports collisions"))
		return nil, report, false
	}
	return sess, report, true
}
