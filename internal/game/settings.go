package game

import (
	"errors"
	"fmt"
)

// Vec2 represents a 2D vector.
type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Range is an inclusive [Min, Max] interval sampled uniformly at spawn time.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v falls inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// TunnelSettings holds per-instance parameters for a tunnel obstacle:
// two barriers with a vertical gap and a scoring region between them.
type TunnelSettings struct {
	CenterYRange    Range   `yaml:"center_y_range" json:"center_y_range"`
	GapHeightRange  Range   `yaml:"gap_height_range" json:"gap_height_range"`
	ObstacleWidth   float64 `yaml:"obstacle_width" json:"obstacle_width"`
	ScoringGapWidth float64 `yaml:"scoring_gap_width" json:"scoring_gap_width"`
}

// GravitySettings holds per-instance parameters for a gravity region.
type GravitySettings struct {
	GravityWidth float64 `yaml:"gravity_width" json:"gravity_width"`
}

// SpawnerSettings holds the spawn parameters for one difficulty level.
// Settings are immutable once loaded; per-run state lives in Spawner.
type SpawnerSettings struct {
	ItemVel         Vec2    `yaml:"item_vel" json:"item_vel"`
	StartOffsetSecs float64 `yaml:"start_offset_secs" json:"start_offset_secs"`
	SecondsPerItem  float64 `yaml:"seconds_per_item" json:"seconds_per_item"`

	TunnelWeight  float64 `yaml:"tunnel_weight" json:"tunnel_weight"`
	GravityWeight float64 `yaml:"gravity_weight" json:"gravity_weight"`

	MinItemsBetweenGravity int `yaml:"min_items_between_gravity" json:"min_items_between_gravity"`

	TunnelSettings  TunnelSettings  `yaml:"tunnel_settings" json:"tunnel_settings"`
	GravitySettings GravitySettings `yaml:"gravity_settings" json:"gravity_settings"`
}

// Validate checks the settings invariants. Runtime spawn decisions never
// fail, so every malformed value must be rejected here, at load time.
func (s SpawnerSettings) Validate() error {
	if s.SecondsPerItem <= 0 {
		return fmt.Errorf("seconds_per_item must be positive, got %v", s.SecondsPerItem)
	}
	if s.StartOffsetSecs < 0 {
		return fmt.Errorf("start_offset_secs must not be negative, got %v", s.StartOffsetSecs)
	}
	if s.TunnelWeight < 0 {
		return fmt.Errorf("tunnel_weight must not be negative, got %v", s.TunnelWeight)
	}
	if s.GravityWeight < 0 {
		return fmt.Errorf("gravity_weight must not be negative, got %v", s.GravityWeight)
	}
	if s.TunnelWeight+s.GravityWeight <= 0 {
		return errors.New("tunnel_weight and gravity_weight must not both be zero")
	}
	if s.MinItemsBetweenGravity < 0 {
		return fmt.Errorf("min_items_between_gravity must not be negative, got %d", s.MinItemsBetweenGravity)
	}
	if err := validateRange("tunnel_settings.center_y_range", s.TunnelSettings.CenterYRange); err != nil {
		return err
	}
	if err := validateRange("tunnel_settings.gap_height_range", s.TunnelSettings.GapHeightRange); err != nil {
		return err
	}
	if s.TunnelSettings.ObstacleWidth <= 0 {
		return fmt.Errorf("tunnel_settings.obstacle_width must be positive, got %v", s.TunnelSettings.ObstacleWidth)
	}
	if s.TunnelSettings.ScoringGapWidth <= 0 {
		return fmt.Errorf("tunnel_settings.scoring_gap_width must be positive, got %v", s.TunnelSettings.ScoringGapWidth)
	}
	if s.GravitySettings.GravityWidth <= 0 {
		return fmt.Errorf("gravity_settings.gravity_width must be positive, got %v", s.GravitySettings.GravityWidth)
	}
	return nil
}

func validateRange(field string, r Range) error {
	if r.Min > r.Max {
		return fmt.Errorf("%s: min %v exceeds max %v", field, r.Min, r.Max)
	}
	return nil
}
