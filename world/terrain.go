// Package world generates and samples the static environment: the
// terrain heightfield, water bodies, and vegetation. Everything here is
// read-only after generation.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
)

// Terrain is a procedural heightfield over a bounded square world, Y up.
type Terrain struct {
	noise       opensimplex.Noise
	size        float32
	heightScale float32
	frequency   float32
	octaves     int
	lacunarity  float32
	gain        float32
	slopeStep   float32
}

// NewTerrain creates a terrain sampler from world config and a seed.
func NewTerrain(cfg *config.WorldConfig, seed int64) *Terrain {
	return &Terrain{
		noise:       opensimplex.NewNormalized(seed),
		size:        float32(cfg.Size),
		heightScale: float32(cfg.HeightScale),
		frequency:   float32(cfg.Frequency),
		octaves:     cfg.Octaves,
		lacunarity:  float32(cfg.Lacunarity),
		gain:        float32(cfg.Gain),
		slopeStep:   float32(cfg.SlopeStep),
	}
}

// Size returns the world edge length.
func (t *Terrain) Size() float32 {
	return t.size
}

// Contains reports whether the point lies inside the world bounds.
func (t *Terrain) Contains(x, z float32) bool {
	return x >= 0 && x <= t.size && z >= 0 && z <= t.size
}

// HeightAt samples the terrain height at a world position.
// Out-of-bounds coordinates are clamped to the border.
func (t *Terrain) HeightAt(x, z float32) float32 {
	x = clampf(x, 0, t.size)
	z = clampf(z, 0, t.size)
	return t.fbm(x, z) * t.heightScale
}

// SlopeAt estimates normalized steepness at a position via central
// differences. 0 is flat; 1 corresponds to a 45 degree grade or worse.
func (t *Terrain) SlopeAt(x, z float32) float32 {
	s := t.slopeStep
	if s <= 0 {
		s = 1
	}
	dhdx := (t.HeightAt(x+s, z) - t.HeightAt(x-s, z)) / (2 * s)
	dhdz := (t.HeightAt(x, z+s) - t.HeightAt(x, z-s)) / (2 * s)
	grade := float32(math.Sqrt(float64(dhdx*dhdx + dhdz*dhdz)))
	return clampf(grade, 0, 1)
}

// fbm layers octaves of simplex noise into a 0..1 height fraction.
func (t *Terrain) fbm(x, z float32) float32 {
	freq := t.frequency
	amp := float32(1)
	var sum, norm float32
	for i := 0; i < t.octaves; i++ {
		sum += amp * float32(t.noise.Eval2(float64(x*freq), float64(z*freq)))
		norm += amp
		freq *= t.lacunarity
		amp *= t.gain
	}
	if norm == 0 {
		return 0
	}
	return clampf(sum/norm, 0, 1)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
