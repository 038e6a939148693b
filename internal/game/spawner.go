package game

import (
	"fmt"
	"math/rand"
)

// maxSpawnsPerTick caps catch-up spawning after a frame-time spike (window
// unfocus, debugger pause). Surplus accumulated time carries over, so no
// spawn is lost and order is preserved across calls.
const maxSpawnsPerTick = 8

// Spawner decides, once per fixed interval, which obstacle to emit next.
// One Spawner belongs to exactly one run; it is not safe for concurrent
// use and is driven synchronously by the session tick loop.
type Spawner struct {
	settings SpawnerSettings
	next     *SpawnerSettings
	rng      *rand.Rand

	accum        float64
	numItems     int
	sinceGravity int
}

// NewSpawner creates a spawner for the given level settings. The caller
// injects the random source so runs can be reproduced from a seed.
func NewSpawner(settings SpawnerSettings, rng *rand.Rand) *Spawner {
	s := &Spawner{rng: rng}
	s.Reset(settings)
	return s
}

// Reset clears all run state and installs fresh level settings.
func (s *Spawner) Reset(settings SpawnerSettings) {
	s.settings = settings
	s.next = nil
	s.numItems = 0
	s.sinceGravity = 0
	// Pre-charge the accumulator so the first spawn lands
	// start_offset_secs after the run begins.
	s.accum = settings.SecondsPerItem - settings.StartOffsetSecs
}

// Settings returns the level settings currently in effect.
func (s *Spawner) Settings() SpawnerSettings {
	return s.settings
}

// ItemCount returns the total number of obstacles emitted since the last reset.
func (s *Spawner) ItemCount() int {
	return s.numItems
}

// QueueLevel schedules new level settings. They take effect immediately
// after the next spawn, so the obstacle already due keeps the old timing.
func (s *Spawner) QueueLevel(settings SpawnerSettings) {
	next := settings
	s.next = &next
}

// Advance accumulates elapsed time and emits one obstacle per full spawn
// interval, in order. It returns the emitted specs and whether a queued
// level took effect during this call.
func (s *Spawner) Advance(dt float64) ([]ObstacleSpec, bool) {
	s.accum += dt

	var specs []ObstacleSpec
	changed := false
	for s.accum >= s.settings.SecondsPerItem && len(specs) < maxSpawnsPerTick {
		s.accum -= s.settings.SecondsPerItem
		specs = append(specs, s.spawnOne())

		if s.next != nil {
			s.settings = *s.next
			s.next = nil
			changed = true
		}
	}
	return specs, changed
}

// spawnOne makes a single spawn decision: one weighted draw picks the
// archetype, then the gravity spacing constraint may override it. The
// substitution is silent, so an obstacle is emitted either way.
func (s *Spawner) spawnOne() ObstacleSpec {
	s.numItems++
	id := fmt.Sprintf("obstacle-%d", s.numItems)

	total := s.settings.TunnelWeight + s.settings.GravityWeight
	draw := s.rng.Float64() * total

	gravity := draw >= s.settings.TunnelWeight
	if gravity && s.sinceGravity < s.settings.MinItemsBetweenGravity {
		gravity = false
	}

	if gravity {
		s.sinceGravity = 0
		return ObstacleSpec{
			ID:       id,
			Kind:     KindGravity,
			Velocity: s.settings.ItemVel,
			Gravity: &GravitySpec{
				GravityWidth: s.settings.GravitySettings.GravityWidth,
			},
		}
	}

	s.sinceGravity++
	tunnel := s.settings.TunnelSettings
	return ObstacleSpec{
		ID:       id,
		Kind:     KindTunnel,
		Velocity: s.settings.ItemVel,
		Tunnel: &TunnelSpec{
			CenterY:         s.sample(tunnel.CenterYRange),
			GapHeight:       s.sample(tunnel.GapHeightRange),
			ObstacleWidth:   tunnel.ObstacleWidth,
			ScoringGapWidth: tunnel.ScoringGapWidth,
		},
	}
}

func (s *Spawner) sample(r Range) float64 {
	return r.Min + s.rng.Float64()*(r.Max-r.Min)
}
