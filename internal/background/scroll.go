package background

// ScrollMaterial mirrors the gravity-region shader uniforms: a tinted
// texture scrolled vertically and tiled TextureYMult times over the
// region's height. ScrollDirection is -1 for downward regions and +1 for
// upward ones.
type ScrollMaterial struct {
	Color           RGBA
	ScrollSpeed     float64
	ScrollDirection float64
	TextureYMult    float64
}

// ScrollDown returns the material used for regions that pull the player down.
func ScrollDown(textureYMult float64) ScrollMaterial {
	return ScrollMaterial{
		Color:           RGBA{R: 1, A: 1},
		ScrollSpeed:     1.0,
		ScrollDirection: -1.0,
		TextureYMult:    textureYMult,
	}
}

// ScrollUp returns the material used for regions that pull the player up.
func ScrollUp(textureYMult float64) ScrollMaterial {
	return ScrollMaterial{
		Color:           RGBA{B: 1, A: 1},
		ScrollSpeed:     1.0,
		ScrollDirection: 1.0,
		TextureYMult:    textureYMult,
	}
}

// SampleUV maps a region uv plus time to the wrapped texture coordinate
// the shader samples. The texture repeats vertically, so v is tiled by
// TextureYMult and offset by the scroll before wrapping into [0, 1).
func (m ScrollMaterial) SampleUV(u, v, time float64) (float64, float64) {
	sv := fract(v*m.TextureYMult + time*m.ScrollSpeed*m.ScrollDirection)
	return u, sv
}
