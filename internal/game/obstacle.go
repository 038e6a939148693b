package game

import "encoding/json"

// ObstacleKind identifies which archetype the spawner produced.
type ObstacleKind int

const (
	KindTunnel ObstacleKind = iota
	KindGravity
)

func (k ObstacleKind) String() string {
	switch k {
	case KindTunnel:
		return "tunnel"
	case KindGravity:
		return "gravity"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes ObstacleKind as a string.
func (k ObstacleKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON deserializes ObstacleKind from a string.
func (k *ObstacleKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "gravity":
		*k = KindGravity
	default:
		*k = KindTunnel
	}
	return nil
}

// TunnelSpec describes one tunnel obstacle: two barriers separated by a
// vertical gap, with a scoring sub-region the player flies through.
type TunnelSpec struct {
	CenterY         float64 `json:"center_y"`
	GapHeight       float64 `json:"gap_height"`
	ObstacleWidth   float64 `json:"obstacle_width"`
	ScoringGapWidth float64 `json:"scoring_gap_width"`
}

// GravitySpec describes one gravity region. The force-field behavior
// inside the region belongs to the host engine's physics.
type GravitySpec struct {
	GravityWidth float64 `json:"gravity_width"`
}

// ObstacleSpec is one spawn decision. Exactly one of Tunnel or Gravity is
// set, matching Kind. Velocity is the constant leftward drift the consumer
// applies to every body it instantiates for this obstacle. IDs are
// sequential within a run, so a seeded run reproduces them exactly.
type ObstacleSpec struct {
	ID       string       `json:"id"`
	Kind     ObstacleKind `json:"kind"`
	Velocity Vec2         `json:"velocity"`
	Tunnel   *TunnelSpec  `json:"tunnel,omitempty"`
	Gravity  *GravitySpec `json:"gravity,omitempty"`
}
