package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketrun/rocketrun-server/internal/game"
	"github.com/rocketrun/rocketrun-server/internal/session"
	"github.com/rocketrun/rocketrun-server/internal/store"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

// setupRunningSession wires a pilot through hello, create and start so
// gameplay reports have a live run to land in.
func setupRunningSession(t *testing.T) (*Router, *session.Session, *ws.Client, chan sentMessage, *store.MemoryStore) {
	t.Helper()

	router, sm, st := setupRouter(t)
	client, ch := newTestClient("pilot-client")
	sayHello(t, router, client, ch, "ace")
	created := createSession(t, router, client, ch)

	send(router, client, ws.TypeStartRun, struct{}{})
	waitForType(t, ch, ws.TypeRunStart)

	sess := sm.GetSession(created.Code)
	require.NotNil(t, sess)
	t.Cleanup(func() { sess.EndRun("", true) })

	return router, sess, client, ch, st
}

func TestHandleGapPassed_IncrementsScore(t *testing.T) {
	router, sess, client, _, _ := setupRunningSession(t)

	send(router, client, ws.TypeGapPassed, obstacleReport{ObstacleID: "obstacle-1"})
	send(router, client, ws.TypeGapPassed, obstacleReport{ObstacleID: "obstacle-1"})
	send(router, client, ws.TypeGapPassed, obstacleReport{ObstacleID: "obstacle-2"})

	assert.Equal(t, 2, sess.Score())
}

func TestHandleGapPassed_RequiresObstacleID(t *testing.T) {
	router, _, client, ch, _ := setupRunningSession(t)
	drainCh(ch)

	send(router, client, ws.TypeGapPassed, obstacleReport{})

	resp := waitForType(t, ch, ws.TypeError)
	var errMsg ws.ErrorMessage
	json.Unmarshal(resp.Data, &errMsg)
	assert.Equal(t, "obstacle_id is required", errMsg.Message)
}

func TestHandleObstacleHit_EndsRunAndPersists(t *testing.T) {
	router, sess, client, ch, st := setupRunningSession(t)

	send(router, client, ws.TypeGapPassed, obstacleReport{ObstacleID: "obstacle-1"})
	send(router, client, ws.TypeObstacleHit, obstacleReport{ObstacleID: "obstacle-2"})

	over := waitForType(t, ch, ws.TypeRunOver)
	var data struct {
		Score     int `json:"score"`
		BestScore int `json:"best_score"`
	}
	require.NoError(t, json.Unmarshal(over.Data, &data))
	assert.Equal(t, 1, data.Score)
	assert.Equal(t, 1, data.BestScore)
	assert.Equal(t, game.StateEnded, sess.State)

	best, err := st.BestScore(context.Background(), client.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 1, best)
}

func TestHandleGravityShift_OnlyKnownRegions(t *testing.T) {
	router, sess, client, _, _ := setupRunningSession(t)

	send(router, client, ws.TypeGravityShift, obstacleReport{ObstacleID: "obstacle-99"})

	assert.Equal(t, game.DefaultGravityMult, sess.GravityMult())
}

func TestGameplayReports_SpectatorRejected(t *testing.T) {
	router, sess, _, _, _ := setupRunningSession(t)

	spectator, ch := newTestClient("watcher-client")
	sayHello(t, router, spectator, ch, "watcher")
	send(router, spectator, ws.TypeJoinSession, joinSessionRequest{Code: sess.Code})
	waitForType(t, ch, ws.TypeJoinSession)
	drainCh(ch)

	send(router, spectator, ws.TypeGapPassed, obstacleReport{ObstacleID: "obstacle-1"})

	resp := waitForType(t, ch, ws.TypeError)
	var errMsg ws.ErrorMessage
	json.Unmarshal(resp.Data, &errMsg)
	assert.Equal(t, "only the pilot reports collisions", errMsg.Message)
	assert.Zero(t, sess.Score())
}

func TestGameplayReports_OutsideSessionRejected(t *testing.T) {
	router, _, _ := setupRouter(t)
	client, ch := newTestClient("loner")
	sayHello(t, router, client, ch, "loner")

	send(router, client, ws.TypeGapPassed, obstacleReport{ObstacleID: "obstacle-1"})

	resp := waitForType(t, ch, ws.TypeError)
	var errMsg ws.ErrorMessage
	json.Unmarshal(resp.Data, &errMsg)
	assert.Equal(t, "not in a session", errMsg.Message)
}
