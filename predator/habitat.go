package predator

import (
	"math"
	"sort"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// Habitat is the strategy an agent uses to live in its terrain
// feature: where it holds, how it stalks through the feature, when its
// strike geometry is satisfied, and how it falls back to a new site.
type Habitat interface {
	// Anchor returns the current hold point.
	Anchor() components.Vec3
	// SpawnPoint returns where a fresh agent appears.
	SpawnPoint() components.Vec3
	// PlanWaypoints builds a stalking route toward the target through
	// the habitat, nearest candidates first.
	PlanWaypoints(agent, target components.Vec3, buf []components.Vec3) []components.Vec3
	// StrikeReady reports whether the strike geometry is satisfied.
	StrikeReady(agent, target components.Vec3) bool
	// Relocate rebinds to the nearest eligible free site around a
	// point. Reports whether a site was found.
	Relocate(near components.Vec3, owner uint32) bool
	// Release frees the bound site.
	Release()
}

// Route candidates per plan. Stalkers re-plan when they run out.
const maxWaypoints = 6

// siteRegistry tracks which habitat sites are claimed so two agents
// never share a perch or a pool. Owned by the controller.
type siteRegistry struct {
	terrain *world.Terrain
	water   *world.Water
	veg     *world.Vegetation

	treeOwner map[int]uint32
	bodyOwner map[int]uint32
	scratch   []int
}

func newSiteRegistry(terrain *world.Terrain, water *world.Water, veg *world.Vegetation) *siteRegistry {
	return &siteRegistry{
		terrain:   terrain,
		water:     water,
		veg:       veg,
		treeOwner: make(map[int]uint32),
		bodyOwner: make(map[int]uint32),
	}
}

func (r *siteRegistry) treeFree(i int) bool {
	_, taken := r.treeOwner[i]
	return !taken
}

func (r *siteRegistry) bodyFree(i int) bool {
	_, taken := r.bodyOwner[i]
	return !taken
}

// stalkerSiteOK checks tree eligibility: a big enough tree, away from
// water, on ground a cat can work from.
func (r *siteRegistry) stalkerSiteOK(i int, p *speciesParams) bool {
	tr := &r.veg.Trees()[i]
	if tr.Scale < p.minTreeScale {
		return false
	}
	if r.water.DistanceToWater(tr.X, tr.Z) < p.minWaterDistance {
		return false
	}
	return r.terrain.SlopeAt(tr.X, tr.Z) <= p.maxSiteSlope
}

// lurkerSiteOK checks water body eligibility: an enclosed still body
// of usable size. Rivers never qualify.
func (r *siteRegistry) lurkerSiteOK(i int, p *speciesParams) bool {
	b := &r.water.Bodies()[i]
	if b.Category != world.WaterLake && b.Category != world.WaterPond {
		return false
	}
	return b.Radius >= p.minBodyRadius
}

// canopyHabitat binds a stalker to a tree and routes it across the
// canopy.
type canopyHabitat struct {
	reg  *siteRegistry
	p    *speciesParams
	tree int
}

func newCanopyHabitat(reg *siteRegistry, p *speciesParams, tree int, owner uint32) *canopyHabitat {
	reg.treeOwner[tree] = owner
	return &canopyHabitat{reg: reg, p: p, tree: tree}
}

func (h *canopyHabitat) perch(i int) components.Vec3 {
	tr := &h.reg.veg.Trees()[i]
	return components.Vec3{X: tr.X, Y: tr.CanopyY(h.reg.terrain), Z: tr.Z}
}

func (h *canopyHabitat) Anchor() components.Vec3 {
	return h.perch(h.tree)
}

func (h *canopyHabitat) SpawnPoint() components.Vec3 {
	return h.perch(h.tree)
}

func (h *canopyHabitat) PlanWaypoints(agent, target components.Vec3, buf []components.Vec3) []components.Vec3 {
	h.reg.scratch = h.reg.veg.TreesWithin(target.X, target.Z, h.p.waypointBandMax, h.reg.scratch[:0])
	toTarget := target.Sub(agent).FlatNormalized()

	type cand struct {
		perch components.Vec3
		dist  float32
	}
	cands := make([]cand, 0, len(h.reg.scratch))
	for _, idx := range h.reg.scratch {
		perch := h.perch(idx)
		d := perch.DistXZ(target)
		if d < h.p.waypointBandMin {
			continue
		}
		dir := perch.Sub(agent).FlatNormalized()
		if dir.Dot(toTarget) < h.p.waypointAlignMin {
			continue
		}
		cands = append(cands, cand{perch: perch, dist: d})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	for i := 0; i < len(cands) && i < maxWaypoints; i++ {
		buf = append(buf, cands[i].perch)
	}
	return buf
}

func (h *canopyHabitat) StrikeReady(agent, target components.Vec3) bool {
	if agent.DistXZ(target) > h.p.strikeRange {
		return false
	}
	return agent.Y-target.Y >= h.p.minHeightAdvantage
}

func (h *canopyHabitat) Relocate(near components.Vec3, owner uint32) bool {
	h.reg.scratch = h.reg.veg.TreesWithin(near.X, near.Z, h.p.relocateRadius, h.reg.scratch[:0])
	best := -1
	var bestD float32 = math.MaxFloat32
	for _, idx := range h.reg.scratch {
		if idx == h.tree || !h.reg.treeFree(idx) {
			continue
		}
		if !h.reg.stalkerSiteOK(idx, h.p) {
			continue
		}
		tr := &h.reg.veg.Trees()[idx]
		d := near.DistXZ(components.Vec3{X: tr.X, Z: tr.Z})
		if d < bestD {
			bestD = d
			best = idx
		}
	}
	if best < 0 {
		return false
	}
	delete(h.reg.treeOwner, h.tree)
	h.reg.treeOwner[best] = owner
	h.tree = best
	return true
}

func (h *canopyHabitat) Release() {
	delete(h.reg.treeOwner, h.tree)
}

// waterHabitat binds a lurker to a still body and routes it along the
// shoreline just below the surface.
type waterHabitat struct {
	reg       *siteRegistry
	p         *speciesParams
	body      int
	holdAngle float32
}

func newWaterHabitat(reg *siteRegistry, p *speciesParams, body int, holdAngle float32, owner uint32) *waterHabitat {
	reg.bodyOwner[body] = owner
	return &waterHabitat{reg: reg, p: p, body: body, holdAngle: holdAngle}
}

func (h *waterHabitat) bodyRef() *world.WaterBody {
	return &h.reg.water.Bodies()[h.body]
}

// ringRadius keeps hold points inside the shoreline.
func (h *waterHabitat) ringRadius() float32 {
	b := h.bodyRef()
	r := b.Radius - h.p.shoreMargin
	if r < b.Radius*0.3 {
		r = b.Radius * 0.3
	}
	return r
}

// ringPoint returns the submerged hold point at an angle on the ring.
func (h *waterHabitat) ringPoint(angle float32) components.Vec3 {
	b := h.bodyRef()
	r := h.ringRadius()
	return components.Vec3{
		X: b.X + float32(math.Cos(float64(angle)))*r,
		Y: b.Surface - h.p.submergeDepth,
		Z: b.Z + float32(math.Sin(float64(angle)))*r,
	}
}

func (h *waterHabitat) Anchor() components.Vec3 {
	return h.ringPoint(h.holdAngle)
}

func (h *waterHabitat) SpawnPoint() components.Vec3 {
	return h.ringPoint(h.holdAngle)
}

func (h *waterHabitat) PlanWaypoints(agent, target components.Vec3, buf []components.Vec3) []components.Vec3 {
	b := h.bodyRef()
	targetAngle := float32(math.Atan2(float64(target.Z-b.Z), float64(target.X-b.X)))
	toTarget := target.Sub(agent).FlatNormalized()

	type cand struct {
		point components.Vec3
		dist  float32
	}
	offsets := [...]float32{0, -0.35, 0.35, -0.7, 0.7, -1.05, 1.05}
	cands := make([]cand, 0, len(offsets))
	for _, off := range offsets {
		pt := h.ringPoint(targetAngle + off)
		d := pt.DistXZ(target)
		if d < h.p.waypointBandMin || d > h.p.waypointBandMax {
			continue
		}
		dir := pt.Sub(agent).FlatNormalized()
		if dir.Dot(toTarget) < h.p.waypointAlignMin {
			continue
		}
		cands = append(cands, cand{point: pt, dist: d})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	for i := 0; i < len(cands) && i < maxWaypoints; i++ {
		buf = append(buf, cands[i].point)
	}
	return buf
}

func (h *waterHabitat) StrikeReady(agent, target components.Vec3) bool {
	if agent.DistXZ(target) > h.p.strikeRange {
		return false
	}
	// No height advantage needed from water, but the prey must be at
	// the waterline, not up a bluff.
	return target.Y-h.bodyRef().Surface <= h.p.maxStrikeHeight
}

func (h *waterHabitat) Relocate(near components.Vec3, owner uint32) bool {
	bodies := h.reg.water.Bodies()
	best := -1
	var bestD float32 = math.MaxFloat32
	for i := range bodies {
		if i == h.body || !h.reg.bodyFree(i) {
			continue
		}
		if !h.reg.lurkerSiteOK(i, h.p) {
			continue
		}
		d := bodies[i].EdgeDistance(near.X, near.Z)
		if d > h.p.relocateRadius {
			continue
		}
		if d < bestD {
			bestD = d
			best = i
		}
	}
	if best < 0 {
		// No other pool in reach; slide back into this one.
		b := h.bodyRef()
		h.holdAngle = float32(math.Atan2(float64(near.Z-b.Z), float64(near.X-b.X)))
		return true
	}
	delete(h.reg.bodyOwner, h.body)
	h.reg.bodyOwner[best] = owner
	h.body = best
	b := &bodies[best]
	h.holdAngle = float32(math.Atan2(float64(near.Z-b.Z), float64(near.X-b.X)))
	return true
}

func (h *waterHabitat) Release() {
	delete(h.reg.bodyOwner, h.body)
}
