package predator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// Target is the subsystem's view of the creature being hunted.
type Target interface {
	Position() components.Vec3
	Velocity() components.Vec3
	MovementState() components.MovementState
	Stage() components.Stage
	Alive() bool
	StealthEffectiveness() float32
	TakeDamage(amount float32, source string)
}

// Knockdownable is implemented by targets that can be floored by a
// successful ambush strike.
type Knockdownable interface {
	ApplyKnockdown(seconds float32)
}

// EffectHooks receives notable moments for presentation and
// telemetry. Every field is optional.
type EffectHooks struct {
	AgentSpawned   func(a *Agent)
	StrikeLaunched func(a *Agent)
	AmbushStrike   func(a *Agent, knockdown bool)
	AgentRetreated func(a *Agent)
	AgentDefeated  func(a *Agent)
}

// Statistics is a snapshot of the controller state for panels and
// telemetry rows.
type Statistics struct {
	Stalkers      int
	Lurkers       int
	SinceAmbush   float32
	Awareness     float32
	Tier          Tier
	TotalSpawned  int
	TotalAmbushes int
	TotalDefeated int
}

// Controller owns the ambush population: it scores awareness, steps
// every agent at a fixed AI rate, resolves their hits against the
// target, spawns replacements up to the species caps, and retires the
// defeated.
type Controller struct {
	cfg     *config.Config
	terrain *world.Terrain
	water   *world.Water
	veg     *world.Vegetation
	rng     *rand.Rand
	hooks   EffectHooks

	scorer *Scorer
	sites  *siteRegistry

	stalkerParams speciesParams
	lurkerParams  speciesParams

	agents  []*Agent
	pending []*Hit
	nextID  uint32

	acc         float32
	sinceAmbush float32
	spawnAccum  float32

	totalSpawned  int
	totalAmbushes int
	totalDefeated int

	disposed bool
}

// NewController wires the subsystem against a generated world. A nil
// rng gets a time seed; everything else is required.
func NewController(cfg *config.Config, terrain *world.Terrain, water *world.Water, veg *world.Vegetation, rng *rand.Rand, hooks EffectHooks) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("predator: nil config")
	}
	if terrain == nil || water == nil || veg == nil {
		return nil, fmt.Errorf("predator: nil world collaborator")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Controller{
		cfg:           cfg,
		terrain:       terrain,
		water:         water,
		veg:           veg,
		rng:           rng,
		hooks:         hooks,
		scorer:        NewScorer(&cfg.Awareness, veg),
		sites:         newSiteRegistry(terrain, water, veg),
		stalkerParams: newSpeciesParams(&cfg.Stalker, cfg.Physics.Gravity),
		lurkerParams:  newSpeciesParams(&cfg.Lurker, cfg.Physics.Gravity),
		// A fresh world owes the player no grace period.
		sinceAmbush: float32(cfg.Population.AmbushCooldown),
	}
	return c, nil
}

// Update advances the subsystem by a frame delta, running zero or more
// fixed AI ticks. Safe to call with a nil or dead target.
func (c *Controller) Update(dt float32, target Target) {
	if c.disposed || target == nil || !target.Alive() {
		return
	}
	if math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) || dt < 0 {
		dt = 0
	}
	if dt > c.cfg.Derived.MaxDelta32 {
		dt = c.cfg.Derived.MaxDelta32
	}
	step := c.cfg.Derived.AITickInterval
	c.acc += dt
	for c.acc >= step {
		c.acc -= step
		c.step(step, target)
	}
}

// step runs one fixed AI tick: score, advance, resolve, spawn, retire.
func (c *Controller) step(dt float32, target Target) {
	c.sinceAmbush += dt
	c.spawnAccum += dt

	c.scorer.Update(dt, target, c.agents)
	c.advanceAgents(dt, target)
	c.resolveHits(target)

	if c.spawnAccum >= float32(c.cfg.Population.SpawnCheckInterval) {
		c.spawnAccum = 0
		if c.sinceAmbush >= float32(c.cfg.Population.AmbushCooldown) {
			c.spawnPass(target)
		}
	}

	c.cleanup()
}

func (c *Controller) advanceAgents(dt float32, target Target) {
	for _, a := range c.agents {
		prev := a.State()
		if hit := a.Update(dt, target); hit != nil {
			c.pending = append(c.pending, hit)
		}
		cur := a.State()
		if cur == prev {
			continue
		}
		switch cur {
		case StateStrike:
			if c.hooks.StrikeLaunched != nil {
				c.hooks.StrikeLaunched(a)
			}
		case StateRetreat:
			if c.hooks.AgentRetreated != nil {
				c.hooks.AgentRetreated(a)
			}
		}
	}
}

// resolveHits applies queued hits to the target. An ambush hit resets
// the global clock and sends its agent into cooldown; ground swipes
// just deal damage.
func (c *Controller) resolveHits(target Target) {
	for _, h := range c.pending {
		target.TakeDamage(h.Damage, h.Agent.Species().String())
		if !h.Ambush {
			continue
		}
		c.sinceAmbush = 0
		c.totalAmbushes++
		if h.Knockdown {
			if kd, ok := target.(Knockdownable); ok {
				kd.ApplyKnockdown(h.Agent.KnockdownDuration())
			}
		}
		h.Agent.enterCooldown()
		if c.hooks.AmbushStrike != nil {
			c.hooks.AmbushStrike(h.Agent, h.Knockdown)
		}
	}
	c.pending = c.pending[:0]
}

// spawnPass rolls one spawn attempt per species under its cap. The
// roll scales with the target's evolution stage.
func (c *Controller) spawnPass(target Target) {
	stalkers, lurkers := c.countSpecies()
	chance := float32(c.cfg.Population.BaseSpawnChance) * c.cfg.Derived.StageScale32[target.Stage()]
	if stalkers < c.cfg.Population.MaxStalkers && c.rng.Float32() < chance {
		c.spawnStalker(target)
	}
	if lurkers < c.cfg.Population.MaxLurkers && c.rng.Float32() < chance {
		c.spawnLurker(target)
	}
}

func (c *Controller) countSpecies() (stalkers, lurkers int) {
	for _, a := range c.agents {
		switch a.Species() {
		case SpeciesStalker:
			stalkers++
		case SpeciesLurker:
			lurkers++
		}
	}
	return stalkers, lurkers
}

// spawnStalker claims a random eligible tree in the standoff band
// around the target. Silently does nothing when no site qualifies.
func (c *Controller) spawnStalker(target Target) {
	tpos := target.Position()
	minR := float32(c.cfg.Population.SpawnRadiusMin)
	maxR := float32(c.cfg.Population.SpawnRadiusMax)

	c.sites.scratch = c.veg.TreesWithin(tpos.X, tpos.Z, maxR, c.sites.scratch[:0])
	eligible := c.sites.scratch[:0]
	for _, idx := range c.sites.scratch {
		tr := &c.veg.Trees()[idx]
		if tpos.DistXZ(components.Vec3{X: tr.X, Z: tr.Z}) < minR {
			continue
		}
		if !c.sites.treeFree(idx) || !c.sites.stalkerSiteOK(idx, &c.stalkerParams) {
			continue
		}
		eligible = append(eligible, idx)
	}
	if len(eligible) == 0 {
		return
	}
	tree := eligible[c.rng.Intn(len(eligible))]

	id := c.nextID
	c.nextID++
	h := newCanopyHabitat(c.sites, &c.stalkerParams, tree, id)
	c.admit(newAgent(id, SpeciesStalker, &c.stalkerParams, h, c.terrain, c.rng))
}

// spawnLurker claims an eligible still body whose shore falls inside
// the standoff band, holding on the shore nearest the target.
func (c *Controller) spawnLurker(target Target) {
	tpos := target.Position()
	minR := float32(c.cfg.Population.SpawnRadiusMin)
	maxR := float32(c.cfg.Population.SpawnRadiusMax)

	bodies := c.water.Bodies()
	best := -1
	var bestD float32 = math.MaxFloat32
	for i := range bodies {
		if !c.sites.bodyFree(i) || !c.sites.lurkerSiteOK(i, &c.lurkerParams) {
			continue
		}
		d := bodies[i].EdgeDistance(tpos.X, tpos.Z)
		if d < minR || d > maxR {
			continue
		}
		if d < bestD {
			bestD = d
			best = i
		}
	}
	if best < 0 {
		return
	}
	b := &bodies[best]
	holdAngle := float32(math.Atan2(float64(tpos.Z-b.Z), float64(tpos.X-b.X)))

	id := c.nextID
	c.nextID++
	h := newWaterHabitat(c.sites, &c.lurkerParams, best, holdAngle, id)
	c.admit(newAgent(id, SpeciesLurker, &c.lurkerParams, h, c.terrain, c.rng))
}

func (c *Controller) admit(a *Agent) {
	c.agents = append(c.agents, a)
	c.totalSpawned++
	if c.hooks.AgentSpawned != nil {
		c.hooks.AgentSpawned(a)
	}
}

// cleanup compacts the agent slice in place, releasing sites held by
// the departed.
func (c *Controller) cleanup() {
	n := 0
	for _, a := range c.agents {
		if a.ShouldDespawn() {
			a.habitat.Release()
			c.totalDefeated++
			if c.hooks.AgentDefeated != nil {
				c.hooks.AgentDefeated(a)
			}
			continue
		}
		c.agents[n] = a
		n++
	}
	for i := n; i < len(c.agents); i++ {
		c.agents[i] = nil
	}
	c.agents = c.agents[:n]
}

// ActiveAgents appends the live agents to buf and returns it.
func (c *Controller) ActiveAgents(buf []*Agent) []*Agent {
	return append(buf, c.agents...)
}

// Awareness exposes the scorer for panels and telemetry.
func (c *Controller) Awareness() *Scorer {
	return c.scorer
}

// Statistics returns a snapshot of the population state.
func (c *Controller) Statistics() Statistics {
	stalkers, lurkers := c.countSpecies()
	return Statistics{
		Stalkers:      stalkers,
		Lurkers:       lurkers,
		SinceAmbush:   c.sinceAmbush,
		Awareness:     c.scorer.Value(),
		Tier:          c.scorer.Tier(),
		TotalSpawned:  c.totalSpawned,
		TotalAmbushes: c.totalAmbushes,
		TotalDefeated: c.totalDefeated,
	}
}

// Dispose releases every claimed site and drops the population.
// Subsequent Update calls are no-ops. Safe to call twice.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	for _, a := range c.agents {
		a.habitat.Release()
	}
	c.agents = nil
	c.pending = nil
	c.disposed = true
}
