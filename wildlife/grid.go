// Package wildlife simulates the prey herds the tiger hunts.
package wildlife

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
)

// Neighbor holds a nearby entity with precomputed spatial data so
// behavior passes never recompute deltas in the hot loop.
type Neighbor struct {
	E      ecs.Entity
	DX, DZ float32 // Delta from query origin on the ground plane
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid
// over the ground plane. The world is bounded, so cells clamp at the
// edges instead of wrapping.
type SpatialGrid struct {
	cellSize float32
	cols     int
	size     float32
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering a square world.
func NewSpatialGrid(size, cellSize float32) *SpatialGrid {
	cols := int(size/cellSize) + 1
	cells := make([][]ecs.Entity, cols*cols)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		size:     size,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given ground position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, z float32) {
	idx := g.cellIndex(x, z)
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial
// queries. This prevents herd pile-ups from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius and appends to dst (up
// to MaxQueryResults). Returns the updated slice. Reuse dst across
// calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, z, radius float32, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := int(x / g.cellSize)
	centerRow := int(z / g.cellSize)

	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.cols {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}

				dx := pos.X - x
				dz := pos.Z - z
				distSq := dx*dx + dz*dz

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DZ: dz, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position, clamped to
// the grid.
func (g *SpatialGrid) cellIndex(x, z float32) int {
	col := int(x / g.cellSize)
	row := int(z / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.cols {
		row = g.cols - 1
	}

	return row*g.cols + col
}
