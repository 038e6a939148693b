package handler

import (
	"encoding/json"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocketrun/rocketrun-server/internal/level"
	"github.com/rocketrun/rocketrun-server/internal/session"
	"github.com/rocketrun/rocketrun-server/internal/store"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

// testLevels builds a minimal registry with tight spawn timing.
func testLevels(t *testing.T) *level.Registry {
	t.Helper()

	base := `
item_vel: {x: -200, y: 0}
start_offset_secs: 0.0
seconds_per_item: 0.06
tunnel_weight: 1.0
gravity_weight: 0.0
min_items_between_gravity: 0
tunnel_settings:
  center_y_range: {min: -100, max: 100}
  gap_height_range: {min: 200, max: 250}
  obstacle_width: 96
  scoring_gap_width: 32
gravity_settings:
  gravity_width: 32
`
	fsys := fstest.MapFS{
		"base.spawner.yaml": &fstest.MapFile{Data: []byte(base)},
	}
	levels, err := level.Load(fsys)
	require.NoError(t, err)
	return levels
}

func setupRouter(t *testing.T) (*Router, *session.Manager, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	sm := session.NewManagerWithSeed(testLevels(t), st, 42)
	return NewRouter(sm, st), sm, st
}

// sentMessage captures one message written to a client's send channel.
type sentMessage struct {
	Type string
	Data json.RawMessage
}

func newTestClient(id string) (*ws.Client, chan sentMessage) {
	ch := make(chan sentMessage, 64)
	client := &ws.Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}

	// Read sent messages in background
	go func() {
		for data := range client.Send {
			var msg sentMessage
			json.Unmarshal(data, &msg)
			ch <- msg
		}
	}()

	return client, ch
}

func send(router *Router, client *ws.Client, msgType string, payload any) {
	data, _ := json.Marshal(payload)
	raw, _ := json.Marshal(ws.Message{Type: msgType, Data: data})
	router.HandleMessage(&ws.ClientMessage{Client: client, Data: raw})
}

func readResponse(t *testing.T, ch chan sentMessage) sentMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for response")
		return sentMessage{}
	}
}

// waitForType reads messages until one of the wanted type arrives. Run
// loop broadcasts interleave with direct responses, so tests skip past
// whatever they are not looking for.
func waitForType(t *testing.T, ch chan sentMessage, msgType string) sentMessage {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-ch:
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s message", msgType)
			return sentMessage{}
		}
	}
}

func drainCh(ch chan sentMessage) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// sayHello introduces the client and binds it to an account.
func sayHello(t *testing.T, router *Router, client *ws.Client, ch chan sentMessage, nickname string) helloResponse {
	t.Helper()
	send(router, client, ws.TypeHello, helloRequest{Nickname: nickname})
	resp := waitForType(t, ch, ws.TypeHello)

	var hello helloResponse
	require.NoError(t, json.Unmarshal(resp.Data, &hello))
	require.NotEmpty(t, hello.AccountID)
	return hello
}

// createSession creates a session piloted by the client.
func createSession(t *testing.T, router *Router, client *ws.Client, ch chan sentMessage) sessionResponse {
	t.Helper()
	send(router, client, ws.TypeCreateSession, struct{}{})
	resp := waitForType(t, ch, ws.TypeCreateSession)

	var created sessionResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.NotEmpty(t, created.Code)
	return created
}
