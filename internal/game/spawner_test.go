package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() SpawnerSettings {
	return SpawnerSettings{
		ItemVel:                Vec2{X: -200, Y: 0},
		StartOffsetSecs:        0.1,
		SecondsPerItem:         2.0,
		TunnelWeight:           0.8,
		GravityWeight:          0.2,
		MinItemsBetweenGravity: 3,
		TunnelSettings: TunnelSettings{
			CenterYRange:    Range{Min: -200, Max: 200},
			GapHeightRange:  Range{Min: 200, Max: 300},
			ObstacleWidth:   96,
			ScoringGapWidth: 32,
		},
		GravitySettings: GravitySettings{GravityWidth: 32},
	}
}

func advanceAll(s *Spawner, dts []float64) []ObstacleSpec {
	var specs []ObstacleSpec
	for _, dt := range dts {
		emitted, _ := s.Advance(dt)
		specs = append(specs, emitted...)
	}
	return specs
}

func TestSpawner_FirstSpawnAfterStartOffset(t *testing.T) {
	settings := testSettings()
	settings.StartOffsetSecs = 0.5
	s := NewSpawner(settings, rand.New(rand.NewSource(1)))

	specs, _ := s.Advance(0.4)
	assert.Empty(t, specs, "no spawn before start offset elapses")

	specs, _ = s.Advance(0.2)
	require.Len(t, specs, 1, "first spawn lands at start offset")

	// Subsequent spawns follow the fixed interval.
	specs, _ = s.Advance(settings.SecondsPerItem)
	assert.Len(t, specs, 1)
}

func TestSpawner_CatchUpEmitsExactCount(t *testing.T) {
	settings := testSettings()
	settings.StartOffsetSecs = 0.5
	s := NewSpawner(settings, rand.New(rand.NewSource(1)))

	// Six ticks of 1.0s sum to 3 * seconds_per_item.
	specs := advanceAll(s, []float64{1, 1, 1, 1, 1, 1})
	assert.Len(t, specs, 3)
}

func TestSpawner_CatchUpWithinOneTickPreservesOrder(t *testing.T) {
	s := NewSpawner(testSettings(), rand.New(rand.NewSource(7)))

	specs, _ := s.Advance(3 * 2.0)
	require.Len(t, specs, 3, "a single large tick emits every due spawn")
	for i, spec := range specs {
		assert.Equal(t, i+1, specIndex(t, spec), "spawn order matches emission order")
	}
}

func specIndex(t *testing.T, spec ObstacleSpec) int {
	t.Helper()
	var n int
	_, err := fmt.Sscanf(spec.ID, "obstacle-%d", &n)
	require.NoError(t, err)
	return n
}

func TestSpawner_CatchUpCapCarriesRemainder(t *testing.T) {
	settings := testSettings()
	s := NewSpawner(settings, rand.New(rand.NewSource(7)))

	specs, _ := s.Advance(20 * settings.SecondsPerItem)
	assert.Len(t, specs, maxSpawnsPerTick, "one tick emits at most the cap")

	// The surplus carried over: the remaining spawns drain on later ticks
	// without any additional elapsed time.
	specs, _ = s.Advance(0)
	assert.Len(t, specs, maxSpawnsPerTick)
	specs, _ = s.Advance(0)
	assert.NotEmpty(t, specs)
}

func TestSpawner_Deterministic(t *testing.T) {
	dts := []float64{0.3, 1.7, 2.0, 0.5, 5.5, 0.05, 4.0}

	a := NewSpawner(testSettings(), rand.New(rand.NewSource(42)))
	b := NewSpawner(testSettings(), rand.New(rand.NewSource(42)))

	specsA := advanceAll(a, dts)
	specsB := advanceAll(b, dts)

	require.NotEmpty(t, specsA)
	assert.Equal(t, specsA, specsB, "same seed and tick sequence reproduces the run")
}

func TestSpawner_TunnelOnlyWhenGravityWeightZero(t *testing.T) {
	settings := testSettings()
	settings.TunnelWeight = 1
	settings.GravityWeight = 0
	s := NewSpawner(settings, rand.New(rand.NewSource(3)))

	for i := 0; i < 200; i++ {
		specs, _ := s.Advance(settings.SecondsPerItem)
		for _, spec := range specs {
			require.Equal(t, KindTunnel, spec.Kind)
			require.NotNil(t, spec.Tunnel)
			assert.Nil(t, spec.Gravity)
		}
	}
}

func TestSpawner_GravitySpacingConstraint(t *testing.T) {
	settings := testSettings()
	// Gravity-heavy weights so the constraint is exercised constantly.
	settings.TunnelWeight = 0.1
	settings.GravityWeight = 0.9
	settings.MinItemsBetweenGravity = 3
	s := NewSpawner(settings, rand.New(rand.NewSource(11)))

	sinceGravity := settings.MinItemsBetweenGravity
	sawGravity := false
	for i := 0; i < 500; i++ {
		specs, _ := s.Advance(settings.SecondsPerItem)
		for _, spec := range specs {
			if spec.Kind == KindGravity {
				require.GreaterOrEqual(t, sinceGravity, settings.MinItemsBetweenGravity,
					"gravity obstacle emitted with only %d items since the previous one", sinceGravity)
				sinceGravity = 0
				sawGravity = true
			} else {
				sinceGravity++
			}
		}
	}
	assert.True(t, sawGravity, "gravity-heavy settings should emit gravity obstacles")
}

func TestSpawner_TunnelSamplesStayInRange(t *testing.T) {
	settings := testSettings()
	settings.TunnelWeight = 1
	settings.GravityWeight = 0
	s := NewSpawner(settings, rand.New(rand.NewSource(5)))

	for i := 0; i < 500; i++ {
		specs, _ := s.Advance(settings.SecondsPerItem)
		for _, spec := range specs {
			require.NotNil(t, spec.Tunnel)
			assert.True(t, settings.TunnelSettings.CenterYRange.Contains(spec.Tunnel.CenterY),
				"center_y %v outside configured range", spec.Tunnel.CenterY)
			assert.True(t, settings.TunnelSettings.GapHeightRange.Contains(spec.Tunnel.GapHeight),
				"gap_height %v outside configured range", spec.Tunnel.GapHeight)
		}
	}
}

func TestSpawner_DegenerateRangeSamplesExactValue(t *testing.T) {
	settings := testSettings()
	settings.TunnelWeight = 1
	settings.GravityWeight = 0
	settings.TunnelSettings.CenterYRange = Range{Min: 50, Max: 50}
	s := NewSpawner(settings, rand.New(rand.NewSource(9)))

	specs, _ := s.Advance(settings.SecondsPerItem)
	require.Len(t, specs, 1)
	assert.Equal(t, 50.0, specs[0].Tunnel.CenterY)
}

func TestSpawner_QueuedLevelAppliesAfterNextSpawn(t *testing.T) {
	base := testSettings()
	// Align the first spawn with the interval so the accumulator is empty
	// right after each spawn and the assertions stay phase-exact.
	base.StartOffsetSecs = base.SecondsPerItem
	fast := testSettings()
	fast.ItemVel = Vec2{X: -280, Y: 0}
	fast.SecondsPerItem = 1.8

	s := NewSpawner(base, rand.New(rand.NewSource(2)))
	s.QueueLevel(fast)

	// The spawn already due keeps the old settings.
	specs, changed := s.Advance(base.SecondsPerItem)
	require.Len(t, specs, 1)
	assert.True(t, changed)
	assert.Equal(t, base.ItemVel, specs[0].Velocity)
	assert.Equal(t, fast, s.Settings())

	// Everything after the switch uses the new settings.
	specs, changed = s.Advance(fast.SecondsPerItem)
	require.Len(t, specs, 1)
	assert.False(t, changed)
	assert.Equal(t, fast.ItemVel, specs[0].Velocity)
}

func TestSpawner_ResetClearsRunState(t *testing.T) {
	settings := testSettings()
	s := NewSpawner(settings, rand.New(rand.NewSource(4)))

	specs, _ := s.Advance(10 * settings.SecondsPerItem)
	require.NotEmpty(t, specs)
	require.Positive(t, s.ItemCount())

	s.Reset(settings)
	assert.Zero(t, s.ItemCount())

	specs, _ = s.Advance(settings.StartOffsetSecs / 2)
	assert.Empty(t, specs, "reset restores the start offset delay")
}

func TestSpawner_GravityResetsCounterTunnelIncrements(t *testing.T) {
	settings := testSettings()
	settings.TunnelWeight = 0
	settings.GravityWeight = 1
	settings.MinItemsBetweenGravity = 2
	s := NewSpawner(settings, rand.New(rand.NewSource(6)))

	// With all weight on gravity, emissions alternate: two forced tunnels
	// to satisfy the spacing, then one gravity, repeating.
	var kinds []ObstacleKind
	for i := 0; i < 9; i++ {
		specs, _ := s.Advance(settings.SecondsPerItem)
		require.Len(t, specs, 1)
		kinds = append(kinds, specs[0].Kind)
	}
	want := []ObstacleKind{
		KindTunnel, KindTunnel, KindGravity,
		KindTunnel, KindTunnel, KindGravity,
		KindTunnel, KindTunnel, KindGravity,
	}
	assert.Equal(t, want, kinds)
}
