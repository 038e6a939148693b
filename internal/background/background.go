// Package background reimplements the game's background and gravity-region
// shaders as pure functions of time, uv, and configured colors/speeds. The
// host engine runs the real GPU versions; these exist for parity tests and
// the server's PNG preview, and never touch spawner state.
package background

import (
	"image"
	"image/color"
	"math"
)

// RGBA is a normalized color, each channel in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Blend mixes two colors channel-wise.
func Blend(c1, c2 RGBA, t float64) RGBA {
	return RGBA{
		R: lerp(c1.R, c2.R, t),
		G: lerp(c1.G, c2.G, t),
		B: lerp(c1.B, c2.B, t),
		A: lerp(c1.A, c2.A, t),
	}
}

func fract(v float64) float64 {
	return v - math.Floor(v)
}

// hash is the classic sin-dot shader hash, deterministic per cell.
func hash(x, y float64) float64 {
	return fract(math.Sin(x*12.9898+y*78.233) * 43758.5453)
}

// Grid layout of the procedural background.
const (
	gridCellsX = 16.0
	gridCellsY = 9.0
	lineWidth  = 0.04 // fraction of a cell
	scrollRate = 0.05 // cells per second, leftward drift
)

// GridMaterial mirrors the background shader uniforms: two colors and the
// accumulated play time (the engine freezes it while physics is paused).
type GridMaterial struct {
	C1   RGBA
	C2   RGBA
	Time float64
}

// DefaultGrid returns the background colors the game ships with.
func DefaultGrid() GridMaterial {
	return GridMaterial{
		C1: RGBA{R: 0.4, G: 0.4, B: 0.4, A: 1.0},
		C2: RGBA{R: 0.7, G: 0.7, B: 0.7, A: 1.0},
	}
}

// ColorAt evaluates the background at a uv coordinate in [0, 1]^2: a
// two-color grid whose cells carry a stable noise blend and drift slowly
// left over time. Pure; same inputs always give the same color.
func (m GridMaterial) ColorAt(u, v float64) RGBA {
	x := u*gridCellsX + m.Time*scrollRate
	y := v * gridCellsY

	// Grid lines in the second color.
	fx := fract(x)
	fy := fract(y)
	if fx < lineWidth || fy < lineWidth {
		return m.C2
	}

	n := hash(math.Floor(x), math.Floor(y))
	return Blend(m.C1, m.C2, n)
}

// Render rasterizes the background for the preview endpoint.
func (m GridMaterial) Render(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for py := 0; py < height; py++ {
		v := (float64(py) + 0.5) / float64(height)
		for px := 0; px < width; px++ {
			u := (float64(px) + 0.5) / float64(width)
			img.SetRGBA(px, py, toNRGBA(m.ColorAt(u, v)))
		}
	}
	return img
}

func toNRGBA(c RGBA) color.RGBA {
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(math.Round(v * 255))
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
