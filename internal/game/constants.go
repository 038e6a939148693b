package game

import "time"

// World bounds (world units, origin at the center; must match the client camera)
const (
	WorldMinX = -640.0
	WorldMaxX = 640.0
	WorldMinY = -360.0
	WorldMaxY = 360.0
)

// Session limits
const (
	// MaxClients is one pilot plus spectators.
	MaxClients = 4
)

// Run timing
const (
	TickRate     = 20 // ticks per second
	TickInterval = time.Second / TickRate
)

// Gravity
const (
	// DefaultGravityMult is the downward gravity multiplier a run starts with.
	DefaultGravityMult = 1.0
)

// VelocityRampSecs is how long the client ramps live obstacle velocity
// after a level change.
const VelocityRampSecs = 0.5
