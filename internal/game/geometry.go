package game

// Bounds is the visible world rectangle, origin at the center. It must
// match the client camera so every consumer places obstacles identically.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// WorldBounds returns the play area shared with the client.
func WorldBounds() Bounds {
	return Bounds{MinX: WorldMinX, MaxX: WorldMaxX, MinY: WorldMinY, MaxY: WorldMaxY}
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// StartOffsetX returns the x coordinate where spawned obstacles begin.
// Obstacles enter from past the right edge, offset by start_offset_secs
// of travel at the item velocity.
func StartOffsetX(s SpawnerSettings, b Bounds) float64 {
	return b.MaxX - s.ItemVel.X*s.StartOffsetSecs
}

// TunnelPlacement is the world-space layout of one tunnel obstacle: the
// barrier pair filling everything outside the gap, and the scoring region
// sitting in the gap just behind the barriers' trailing edge.
type TunnelPlacement struct {
	BarrierX     float64 `json:"barrier_x"`
	TopHeight    float64 `json:"top_height"`
	BottomHeight float64 `json:"bottom_height"`

	ScoringX      float64 `json:"scoring_x"`
	ScoringY      float64 `json:"scoring_y"`
	ScoringWidth  float64 `json:"scoring_width"`
	ScoringHeight float64 `json:"scoring_height"`
}

// PlaceTunnel computes the placement for a tunnel spec within bounds.
func PlaceTunnel(spec TunnelSpec, s SpawnerSettings, b Bounds) TunnelPlacement {
	topHeight := b.MaxY - (spec.CenterY + spec.GapHeight/2)
	bottomHeight := (spec.CenterY - spec.GapHeight/2) - b.MinY
	scoringHeight := b.Height() - topHeight - bottomHeight

	startX := StartOffsetX(s, b)
	return TunnelPlacement{
		BarrierX:      startX + spec.ObstacleWidth/2,
		TopHeight:     topHeight,
		BottomHeight:  bottomHeight,
		ScoringX:      startX + spec.ObstacleWidth - spec.ScoringGapWidth/2,
		ScoringY:      spec.CenterY,
		ScoringWidth:  spec.ScoringGapWidth,
		ScoringHeight: scoringHeight,
	}
}

// GravityPlacement is the world-space layout of one gravity region. The
// region spans the full world height.
type GravityPlacement struct {
	CenterX float64 `json:"center_x"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// PlaceGravity computes the placement for a gravity spec within bounds.
func PlaceGravity(spec GravitySpec, s SpawnerSettings, b Bounds) GravityPlacement {
	return GravityPlacement{
		CenterX: StartOffsetX(s, b) + spec.GravityWidth/2,
		Width:   spec.GravityWidth,
		Height:  b.Height(),
	}
}
