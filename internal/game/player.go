package game

import "github.com/google/uuid"

// Player is one connected participant: the pilot flying the run, or a
// spectator watching it.
type Player struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id,omitempty"`
	Nickname  string `json:"nickname"`
	Spectator bool   `json:"spectator"`
}

// NewPlayer creates a player with a fresh ID.
func NewPlayer(nickname string) *Player {
	return &Player{
		ID:       uuid.New().String(),
		Nickname: nickname,
	}
}
