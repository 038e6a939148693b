package game

type RunState int

const (
	StateWaiting RunState = iota
	StatePlaying
	StateEnded
)

func (s RunState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}
