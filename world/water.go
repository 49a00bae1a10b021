package world

import (
	"math"
	"math/rand"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
)

// WaterCategory classifies a body of water.
type WaterCategory uint8

const (
	WaterLake WaterCategory = iota
	WaterPond
	WaterRiver
)

// String returns a human-readable category name.
func (c WaterCategory) String() string {
	switch c {
	case WaterLake:
		return "lake"
	case WaterPond:
		return "pond"
	case WaterRiver:
		return "river"
	default:
		return "unknown"
	}
}

// WaterBody is a circular body of water on the terrain. Rivers are
// represented as chains of small overlapping bodies.
type WaterBody struct {
	Category WaterCategory
	X, Z     float32
	Radius   float32
	Surface  float32 // water surface height
}

// ContainsXZ reports whether the point lies within the body footprint.
func (w *WaterBody) ContainsXZ(x, z float32) bool {
	dx := x - w.X
	dz := z - w.Z
	return dx*dx+dz*dz <= w.Radius*w.Radius
}

// EdgeDistance returns the horizontal distance from the point to the
// body edge. Negative inside the body.
func (w *WaterBody) EdgeDistance(x, z float32) float32 {
	dx := x - w.X
	dz := z - w.Z
	return float32(math.Sqrt(float64(dx*dx+dz*dz))) - w.Radius
}

// DepthAt returns the water depth at the point, zero outside the body
// or where the terrain pokes above the surface.
func (w *WaterBody) DepthAt(t *Terrain, x, z float32) float32 {
	if !w.ContainsXZ(x, z) {
		return 0
	}
	d := w.Surface - t.HeightAt(x, z)
	if d < 0 {
		return 0
	}
	return d
}

// Water holds every body in the world.
type Water struct {
	bodies []WaterBody
}

// NewWater builds a Water from pre-placed bodies, for crafted
// scenarios.
func NewWater(bodies []WaterBody) *Water {
	return &Water{bodies: bodies}
}

// GenerateWater places still bodies in terrain basins and threads one
// river strip across the map when configured.
func GenerateWater(t *Terrain, cfg *config.WaterConfig, rng *rand.Rand) *Water {
	w := &Water{}
	size := t.Size()

	placed := 0
	for attempt := 0; attempt < cfg.PlaceAttempts && placed < cfg.Bodies; attempt++ {
		radius := float32(cfg.MinRadius) + rng.Float32()*float32(cfg.MaxRadius-cfg.MinRadius)
		x := radius + rng.Float32()*(size-2*radius)
		z := radius + rng.Float32()*(size-2*radius)

		h := t.HeightAt(x, z)
		if h > float32(cfg.MaxBasinHeight) {
			continue
		}
		if w.overlaps(x, z, radius) {
			continue
		}

		cat := WaterPond
		if radius >= float32(cfg.LakeRadius) {
			cat = WaterLake
		}
		w.bodies = append(w.bodies, WaterBody{
			Category: cat,
			X:        x,
			Z:        z,
			Radius:   radius,
			Surface:  h + float32(cfg.SurfaceOffset),
		})
		placed++
	}

	if cfg.RiverWidth > 0 {
		w.carveRiver(t, float32(cfg.RiverWidth), float32(cfg.SurfaceOffset), rng)
	}
	return w
}

// carveRiver lays a chain of river segments west to east along a
// meandering path.
func (w *Water) carveRiver(t *Terrain, width, surfaceOffset float32, rng *rand.Rand) {
	size := t.Size()
	step := width * 1.5
	z := size * (0.3 + rng.Float32()*0.4)
	phase := rng.Float32() * 2 * math.Pi
	for x := float32(0); x <= size; x += step {
		z += float32(math.Sin(float64(phase+x*0.02))) * step * 0.5
		z = clampf(z, width, size-width)
		w.bodies = append(w.bodies, WaterBody{
			Category: WaterRiver,
			X:        x,
			Z:        z,
			Radius:   width,
			Surface:  t.HeightAt(x, z) + surfaceOffset*0.5,
		})
	}
}

func (w *Water) overlaps(x, z, radius float32) bool {
	for i := range w.bodies {
		b := &w.bodies[i]
		dx := x - b.X
		dz := z - b.Z
		min := radius + b.Radius + 4
		if dx*dx+dz*dz < min*min {
			return true
		}
	}
	return false
}

// Bodies returns all water bodies.
func (w *Water) Bodies() []WaterBody {
	return w.bodies
}

// NearestBody returns the body whose edge is closest to the point and
// the signed edge distance. Returns nil when the world has no water.
func (w *Water) NearestBody(x, z float32) (*WaterBody, float32) {
	var best *WaterBody
	bestDist := float32(math.MaxFloat32)
	for i := range w.bodies {
		d := w.bodies[i].EdgeDistance(x, z)
		if d < bestDist {
			bestDist = d
			best = &w.bodies[i]
		}
	}
	return best, bestDist
}

// DistanceToWater returns the distance from the point to the nearest
// water edge, zero inside any body. Worlds without water report a very
// large distance.
func (w *Water) DistanceToWater(x, z float32) float32 {
	_, d := w.NearestBody(x, z)
	if d < 0 {
		return 0
	}
	return d
}

// InWater reports whether the point lies inside any body footprint.
func (w *Water) InWater(x, z float32) bool {
	for i := range w.bodies {
		if w.bodies[i].ContainsXZ(x, z) {
			return true
		}
	}
	return false
}
