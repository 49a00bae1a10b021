package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
)

// Tree is a single placed tree. CanopyHeight is already scaled.
type Tree struct {
	X, Z         float32
	Scale        float32
	CanopyHeight float32
}

// CanopyY returns the canopy perch height for this tree.
func (tr *Tree) CanopyY(t *Terrain) float32 {
	return t.HeightAt(tr.X, tr.Z) + tr.CanopyHeight
}

// Vegetation holds every tree plus a static lookup grid.
type Vegetation struct {
	trees       []Tree
	grid        [][]int32
	cellSize    float32
	cols        int
	coverRadius float32
	coverNorm   float32
}

// NewVegetation builds a Vegetation from pre-placed trees, for
// crafted scenarios.
func NewVegetation(trees []Tree, size, coverRadius float32) *Vegetation {
	v := &Vegetation{trees: trees, coverRadius: coverRadius}
	v.buildGrid(size)
	return v
}

// GenerateVegetation places trees by noise-biased rejection sampling.
// Trees never land in water, too close to a shoreline, or on ground
// above the planting slope limit.
func GenerateVegetation(t *Terrain, water *Water, cfg *config.VegetationConfig, rng *rand.Rand) *Vegetation {
	size := t.Size()
	density := opensimplex.NewNormalized(rng.Int63())

	v := &Vegetation{
		coverRadius: float32(cfg.CoverRadius),
	}

	for attempt := 0; attempt < cfg.PlaceAttempts && len(v.trees) < cfg.Trees; attempt++ {
		x := rng.Float32() * size
		z := rng.Float32() * size

		// Grove clustering: dense where the noise runs high, sparse elsewhere
		d := float32(density.Eval2(float64(x)*cfg.DensityFreq, float64(z)*cfg.DensityFreq))
		accept := float32(cfg.DensityFloor) + (1-float32(cfg.DensityFloor))*d*d
		if rng.Float32() > accept {
			continue
		}
		if t.SlopeAt(x, z) > float32(cfg.MaxSlope) {
			continue
		}
		if water.DistanceToWater(x, z) < float32(cfg.WaterMargin) {
			continue
		}

		scale := float32(cfg.MinScale) + rng.Float32()*float32(cfg.MaxScale-cfg.MinScale)
		v.trees = append(v.trees, Tree{
			X:            x,
			Z:            z,
			Scale:        scale,
			CanopyHeight: float32(cfg.CanopyHeight) * scale,
		})
	}

	v.buildGrid(size)
	return v
}

// buildGrid indexes trees into coarse cells for radius queries.
func (v *Vegetation) buildGrid(size float32) {
	v.cellSize = v.coverRadius
	if v.cellSize <= 0 {
		v.cellSize = 8
	}
	v.cols = int(size/v.cellSize) + 1
	v.grid = make([][]int32, v.cols*v.cols)
	for i := range v.trees {
		c := v.cellIndex(v.trees[i].X, v.trees[i].Z)
		v.grid[c] = append(v.grid[c], int32(i))
	}

	// Expected tree count that saturates canopy cover
	area := v.coverRadius * v.coverRadius
	v.coverNorm = area / 18
	if v.coverNorm < 1 {
		v.coverNorm = 1
	}
}

func (v *Vegetation) cellIndex(x, z float32) int {
	cx := int(x / v.cellSize)
	cz := int(z / v.cellSize)
	if cx < 0 {
		cx = 0
	}
	if cz < 0 {
		cz = 0
	}
	if cx >= v.cols {
		cx = v.cols - 1
	}
	if cz >= v.cols {
		cz = v.cols - 1
	}
	return cz*v.cols + cx
}

// Trees returns all placed trees.
func (v *Vegetation) Trees() []Tree {
	return v.trees
}

// TreesWithin appends the indices of trees within radius of the point
// to buf and returns it.
func (v *Vegetation) TreesWithin(x, z, radius float32, buf []int) []int {
	if len(v.grid) == 0 {
		return buf
	}
	r2 := radius * radius
	minCX := int((x - radius) / v.cellSize)
	maxCX := int((x + radius) / v.cellSize)
	minCZ := int((z - radius) / v.cellSize)
	maxCZ := int((z + radius) / v.cellSize)
	for cz := minCZ; cz <= maxCZ; cz++ {
		if cz < 0 || cz >= v.cols {
			continue
		}
		for cx := minCX; cx <= maxCX; cx++ {
			if cx < 0 || cx >= v.cols {
				continue
			}
			for _, idx := range v.grid[cz*v.cols+cx] {
				tr := &v.trees[idx]
				dx := tr.X - x
				dz := tr.Z - z
				if dx*dx+dz*dz <= r2 {
					buf = append(buf, int(idx))
				}
			}
		}
	}
	return buf
}

// CanopyCoverAt returns the local canopy density around a point in
// 0..1. Dense cover conceals ambushers, so wary animals treat it as a
// higher ambient threat.
func (v *Vegetation) CanopyCoverAt(x, z float32) float32 {
	if len(v.trees) == 0 {
		return 0
	}
	var weight float32
	for _, idx := range v.TreesWithin(x, z, v.coverRadius, make([]int, 0, 16)) {
		weight += v.trees[idx].Scale
	}
	cover := weight / v.coverNorm
	if cover > 1 {
		cover = 1
	}
	return cover
}

// ConcealmentAt implements the environment sampler contract consumed
// by the awareness scorer.
func (v *Vegetation) ConcealmentAt(x, z float32) float32 {
	return v.CanopyCoverAt(x, z)
}
