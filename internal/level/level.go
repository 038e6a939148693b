// Package level loads and validates per-difficulty spawner settings.
// Levels are YAML documents named <name>.spawner.yaml; a set of defaults
// ships embedded in the binary and a directory can override them.
package level

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rocketrun/rocketrun-server/internal/game"
)

// Level is one named difficulty level plus its progression hook.
type Level struct {
	Name     string
	Settings game.SpawnerSettings

	// NextLevel, when set, is queued once the run score reaches
	// NextLevelAtScore.
	NextLevel        string
	NextLevelAtScore int
}

// document is the on-disk shape of a level file.
type document struct {
	game.SpawnerSettings `yaml:",inline"`

	NextLevel        string `yaml:"next_level"`
	NextLevelAtScore int    `yaml:"next_level_at_score"`
}

// Parse decodes and validates a single level document. Unknown fields are
// rejected so a typo in a tuning file fails the load instead of silently
// falling back to a zero value.
func Parse(name string, data []byte) (Level, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return Level{}, fmt.Errorf("level %q: %w", name, err)
	}
	if err := doc.SpawnerSettings.Validate(); err != nil {
		return Level{}, fmt.Errorf("level %q: %w", name, err)
	}
	if doc.NextLevelAtScore < 0 {
		return Level{}, fmt.Errorf("level %q: next_level_at_score must not be negative, got %d", name, doc.NextLevelAtScore)
	}
	if doc.NextLevel != "" && doc.NextLevelAtScore == 0 {
		return Level{}, fmt.Errorf("level %q: next_level %q requires a positive next_level_at_score", name, doc.NextLevel)
	}

	return Level{
		Name:             name,
		Settings:         doc.SpawnerSettings,
		NextLevel:        doc.NextLevel,
		NextLevelAtScore: doc.NextLevelAtScore,
	}, nil
}
