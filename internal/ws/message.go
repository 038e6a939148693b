package ws

import "encoding/json"

// Message represents a WebSocket message with type-based routing.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types - Lobby
const (
	TypeHello         = "hello"
	TypeCreateSession = "create_session"
	TypeJoinSession   = "join_session"
	TypeLeaveSession  = "leave_session"
	TypeStartRun      = "start_run"
	TypeRestartRun    = "restart_run"
)

// Message types - Gameplay (client reports, server decides)
const (
	TypeGapPassed    = "gap_passed"
	TypeObstacleHit  = "obstacle_hit"
	TypeGravityShift = "gravity_shift"
)

// Message types - Server events
const (
	TypeSessionInfo    = "session_info"
	TypeRunStart       = "run_start"
	TypeObstacleSpawn  = "obstacle_spawn"
	TypeRunState       = "run_state"
	TypeVelocityChange = "velocity_change"
	TypeGravityState   = "gravity_state"
	TypeRunOver        = "run_over"
	TypeError          = "error"
)

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewErrorMessage creates a Message with an error payload.
func NewErrorMessage(msg string) Message {
	data, _ := json.Marshal(ErrorMessage{Message: msg})
	return Message{Type: TypeError, Data: data}
}

// NewMessage creates a Message with a typed payload.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Data: data}, nil
}
