package wildlife

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// Hunter is the herds' view of the creature hunting them.
type Hunter interface {
	Position() components.Vec3
	MovementState() components.MovementState
	Alive() bool
	StealthEffectiveness() float32
	AddNutrition(amount float32)
}

// Separation pushes herd members apart inside this radius.
const separationRadius = 2.5

// Panic spreads to herd mates inside this radius of a fleeing animal.
const panicRadius = 8.0

// GrazerInfo is a render/debug snapshot of one animal.
type GrazerInfo struct {
	Pos     components.Vec3
	Heading float32
	Fleeing bool
}

// System owns the prey herds: spawning, grazing, panic, and the kill
// check against a running hunter.
type System struct {
	ecw    *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Grazer]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Grazer]
	posMap *ecs.Map1[components.Position]
	grMap  *ecs.Map1[components.Grazer]

	grid    *SpatialGrid
	terrain *world.Terrain
	water   *world.Water
	rng     *rand.Rand

	flightDistance  float32
	stealthDiscount float32
	grazeSpeed      float32
	fleeSpeed       float32
	fleeDuration    float32
	catchRange      float32
	killReward      float32
	respawnInterval float32
	maxPopulation   int
	herdSize        int

	homes        []components.Vec3 // one anchor site per herd
	centroids    []components.Vec3
	herdCounts   []int
	respawnAccum float32
	count        int

	neighborBuf []Neighbor
	removeBuf   []ecs.Entity
}

// NewSystem builds the herds and seeds the initial population.
func NewSystem(cfg *config.Config, terrain *world.Terrain, water *world.Water, rng *rand.Rand) *System {
	w := ecs.NewWorld()
	wc := &cfg.Wildlife

	s := &System{
		ecw:    w,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Grazer](w),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Grazer](w),
		posMap: ecs.NewMap1[components.Position](w),
		grMap:  ecs.NewMap1[components.Grazer](w),

		grid:    NewSpatialGrid(terrain.Size(), float32(wc.GridCellSize)),
		terrain: terrain,
		water:   water,
		rng:     rng,

		flightDistance:  float32(wc.FlightDistance),
		stealthDiscount: float32(wc.StealthDiscount),
		grazeSpeed:      float32(wc.GrazeSpeed),
		fleeSpeed:       float32(wc.FleeSpeed),
		fleeDuration:    float32(wc.FleeDuration),
		catchRange:      float32(wc.CatchRange),
		killReward:      float32(wc.KillReward),
		respawnInterval: float32(wc.RespawnInterval),
		maxPopulation:   wc.MaxPopulation,
		herdSize:        wc.HerdSize,
	}

	for h := 0; h < wc.Herds; h++ {
		home := s.findHerdSite()
		s.homes = append(s.homes, home)
		for i := 0; i < wc.HerdSize && s.count < wc.MaxPopulation; i++ {
			s.spawnGrazer(uint8(h), home)
		}
	}
	s.centroids = make([]components.Vec3, len(s.homes))
	s.herdCounts = make([]int, len(s.homes))
	return s
}

// findHerdSite picks a flat, dry point with room around it.
func (s *System) findHerdSite() components.Vec3 {
	size := s.terrain.Size()
	for attempt := 0; attempt < 200; attempt++ {
		x := size * (0.1 + 0.8*s.rng.Float32())
		z := size * (0.1 + 0.8*s.rng.Float32())
		if s.terrain.SlopeAt(x, z) > 0.5 {
			continue
		}
		if s.water.DistanceToWater(x, z) < 4 {
			continue
		}
		return components.Vec3{X: x, Y: s.terrain.HeightAt(x, z), Z: z}
	}
	// Degenerate terrain; settle for the center.
	c := size * 0.5
	return components.Vec3{X: c, Y: s.terrain.HeightAt(c, c), Z: c}
}

func (s *System) spawnGrazer(herd uint8, home components.Vec3) {
	x := home.X + (s.rng.Float32()-0.5)*10
	z := home.Z + (s.rng.Float32()-0.5)*10
	pos := components.Position{X: x, Y: s.terrain.HeightAt(x, z), Z: z}
	vel := components.Velocity{}
	gr := components.Grazer{
		Speed:  s.grazeSpeed * (0.8 + 0.4*s.rng.Float32()),
		Calm:   s.rng.Float32() * 3,
		HerdID: herd,
	}
	s.mapper.NewEntity(&pos, &vel, &gr)
	s.count++
}

// Update advances the herds one frame. Returns the number of animals
// the hunter caught this frame (0 or 1).
func (s *System) Update(dt float32, hunter Hunter) int {
	s.rebuildIndex()

	hunterAlive := hunter != nil && hunter.Alive()
	var hunterPos components.Vec3
	var effFlight float32
	canCatch := false
	if hunterAlive {
		hunterPos = hunter.Position()
		// Stealth shrinks how close the cat can get before the herd spooks.
		effFlight = s.flightDistance * (1 - hunter.StealthEffectiveness()*s.stealthDiscount)
		canCatch = hunter.MovementState() == components.MoveRunning
	}

	var caught ecs.Entity
	haveCatch := false
	kills := 0

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, gr := query.Get()

		p := pos.Vec()
		toHunter := p.Sub(hunterPos)
		hunterDistSq := toHunter.LengthSq()

		if hunterAlive {
			if canCatch && !haveCatch && hunterDistSq <= s.catchRange*s.catchRange {
				caught = entity
				haveCatch = true
			}
			if hunterDistSq <= effFlight*effFlight {
				gr.Flee = s.fleeDuration
			}
		}

		// Panic spreads: a calm animal near a fleeing herd mate bolts too.
		s.neighborBuf = s.grid.QueryRadiusInto(s.neighborBuf[:0], p.X, p.Z, panicRadius, entity, s.posMap)
		if gr.Flee <= 0 {
			for _, n := range s.neighborBuf {
				ng := s.grMap.Get(n.E)
				if ng != nil && ng.Flee > 0 {
					gr.Flee = s.fleeDuration * 0.75
					break
				}
			}
		}

		if gr.Flee > 0 {
			gr.Flee -= dt
			away := toHunter.FlatNormalized()
			if away.LengthSq() == 0 {
				away = components.Vec3{X: 1}
			}
			vel.SetVec(away.Scale(s.fleeSpeed))
		} else {
			gr.Calm -= dt
			if gr.Calm <= 0 {
				vel.SetVec(s.wanderVelocity(p, gr))
				gr.Calm = 2 + s.rng.Float32()*4
			}
		}

		// Separation from close herd mates.
		var push components.Vec3
		for _, n := range s.neighborBuf {
			if n.DistSq < separationRadius*separationRadius && n.DistSq > 0 {
				push.X -= n.DX
				push.Z -= n.DZ
			}
		}
		if push.LengthSq() > 0 {
			vel.SetVec(vel.Vec().Add(push.FlatNormalized().Scale(gr.Speed * 0.5)))
		}

		s.integrate(pos, vel, dt)
	}

	if haveCatch && hunterAlive {
		s.mapper.Remove(caught)
		s.count--
		hunter.AddNutrition(s.killReward)
		kills = 1
	}

	s.respawnAccum += dt
	if s.respawnAccum >= s.respawnInterval {
		s.respawnAccum = 0
		s.restock()
	}
	return kills
}

// rebuildIndex refreshes the spatial grid and the herd centroids.
func (s *System) rebuildIndex() {
	s.grid.Clear()
	for i := range s.centroids {
		s.centroids[i] = components.Vec3{}
		s.herdCounts[i] = 0
	}

	query := s.filter.Query()
	for query.Next() {
		pos, _, gr := query.Get()
		s.grid.Insert(query.Entity(), pos.X, pos.Z)
		h := int(gr.HerdID)
		if h < len(s.centroids) {
			s.centroids[h] = s.centroids[h].Add(pos.Vec())
			s.herdCounts[h]++
		}
	}
	for i := range s.centroids {
		if s.herdCounts[i] > 0 {
			s.centroids[i] = s.centroids[i].Scale(1 / float32(s.herdCounts[i]))
		}
	}
}

// wanderVelocity picks a grazing direction with a pull back toward the
// herd so members never drift apart for good.
func (s *System) wanderVelocity(p components.Vec3, gr *components.Grazer) components.Vec3 {
	angle := s.rng.Float64() * 2 * math.Pi
	dir := components.Vec3{
		X: float32(math.Cos(angle)),
		Z: float32(math.Sin(angle)),
	}
	h := int(gr.HerdID)
	if h < len(s.centroids) && s.herdCounts[h] > 0 {
		toHerd := s.centroids[h].Sub(p)
		if toHerd.DistXZ(components.Vec3{}) > 12 {
			dir = dir.Add(toHerd.FlatNormalized()).FlatNormalized()
		}
	}
	// Rest sometimes.
	if s.rng.Float32() < 0.25 {
		return components.Vec3{}
	}
	return dir.Scale(gr.Speed)
}

// integrate moves the animal, keeps it on dry ground, and sticks it to
// the terrain.
func (s *System) integrate(pos *components.Position, vel *components.Velocity, dt float32) {
	size := s.terrain.Size()
	nx := pos.X + vel.X*dt
	nz := pos.Z + vel.Z*dt

	if nx < 1 || nx > size-1 {
		vel.X = -vel.X
		nx = pos.X
	}
	if nz < 1 || nz > size-1 {
		vel.Z = -vel.Z
		nz = pos.Z
	}
	// Turn back rather than swim.
	if s.water.InWater(nx, nz) {
		vel.X = -vel.X
		vel.Z = -vel.Z
		nx = pos.X
		nz = pos.Z
	}

	pos.X = nx
	pos.Z = nz
	pos.Y = s.terrain.HeightAt(nx, nz)
}

// restock tops existing herds back up toward the population cap.
func (s *System) restock() {
	if len(s.homes) == 0 {
		return
	}
	missing := s.maxPopulation - s.count
	if missing <= 0 {
		return
	}
	if missing > s.herdSize {
		missing = s.herdSize
	}
	h := s.rng.Intn(len(s.homes))
	for i := 0; i < missing; i++ {
		s.spawnGrazer(uint8(h), s.homes[h])
	}
}

// Count returns the live prey population.
func (s *System) Count() int {
	return s.count
}

// Snapshot appends render/debug info for every animal to buf and
// returns it.
func (s *System) Snapshot(buf []GrazerInfo) []GrazerInfo {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, gr := query.Get()
		buf = append(buf, GrazerInfo{
			Pos:     pos.Vec(),
			Heading: vel.Vec().HeadingXZ(),
			Fleeing: gr.Flee > 0,
		})
	}
	return buf
}
