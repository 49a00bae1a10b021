package predator

import (
	"math/rand"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// Species identifies an ambush predator kind.
type Species uint8

const (
	SpeciesStalker Species = iota // tree-dwelling cat
	SpeciesLurker                 // water-dwelling crocodilian
)

// String returns a human-readable species name.
func (s Species) String() string {
	switch s {
	case SpeciesStalker:
		return "stalker"
	case SpeciesLurker:
		return "lurker"
	default:
		return "unknown"
	}
}

// State is the agent's behavior state.
type State uint8

const (
	StateHidden State = iota
	StateStalking
	StateAlert
	StateStrike
	StateGroundCombat
	StateRetreat
	StateCooldown
	StateDefeated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateStalking:
		return "stalking"
	case StateAlert:
		return "alert"
	case StateStrike:
		return "strike"
	case StateGroundCombat:
		return "ground_combat"
	case StateRetreat:
		return "retreat"
	case StateCooldown:
		return "cooldown"
	case StateDefeated:
		return "defeated"
	default:
		return "unknown"
	}
}

// Concealment level per state. Highest while hidden, gone from the
// moment the agent commits to a strike.
const (
	concealHidden   = 1.0
	concealStalking = 0.6
	concealAlert    = 0.25
)

// In ground combat, dropping below half health always forces a retreat.
const forcedRetreatFrac = 0.5

// Hit is emitted by an agent when an attack connects. Ambush hits come
// from the airborne strike; the rest are ground combat swipes.
type Hit struct {
	Agent     *Agent
	Damage    float32
	Knockdown bool
	Ambush    bool
}

// speciesParams is the float32 working copy of a species config,
// shared by every agent of that species.
type speciesParams struct {
	maxHealth          float32
	power              float32
	habitatSpeed       float32
	groundSpeed        float32
	strikeSpeed        float32
	detectionRadius    float32
	detectionMult      float32
	strikeRange        float32
	minHeightAdvantage float32
	maxStrikeHeight    float32
	hitRange           float32
	strikeDuration     float32
	arcFraction        float32
	launchImpulse      float32
	alertDuration      float32
	stalkTimeout       float32
	maxFollow          float32
	combatDuration     float32
	closeRange         float32
	swipeChance        float32
	combatDamageFactor float32
	retreatChance      float32
	lowHealthFrac      float32
	knockdownChance    float32
	knockdownDuration  float32
	cooldownDuration   float32
	waypointBandMin    float32
	waypointBandMax    float32
	waypointAlignMin   float32
	arriveRadius       float32
	relocateRadius     float32
	minTreeScale       float32
	minWaterDistance   float32
	maxSiteSlope       float32
	minBodyRadius      float32
	shoreMargin        float32
	submergeDepth      float32
	gravity            float32
}

func newSpeciesParams(cfg *config.SpeciesConfig, gravity float64) speciesParams {
	return speciesParams{
		maxHealth:          float32(cfg.MaxHealth),
		power:              float32(cfg.Power),
		habitatSpeed:       float32(cfg.HabitatSpeed),
		groundSpeed:        float32(cfg.GroundSpeed),
		strikeSpeed:        float32(cfg.StrikeSpeed),
		detectionRadius:    float32(cfg.DetectionRadius),
		detectionMult:      float32(cfg.DetectionMult),
		strikeRange:        float32(cfg.StrikeRange),
		minHeightAdvantage: float32(cfg.MinHeightAdvantage),
		maxStrikeHeight:    float32(cfg.MaxStrikeHeight),
		hitRange:           float32(cfg.HitRange),
		strikeDuration:     float32(cfg.StrikeDuration),
		arcFraction:        float32(cfg.ArcFraction),
		launchImpulse:      float32(cfg.LaunchImpulse),
		alertDuration:      float32(cfg.AlertDuration),
		stalkTimeout:       float32(cfg.StalkTimeout),
		maxFollow:          float32(cfg.MaxFollow),
		combatDuration:     float32(cfg.CombatDuration),
		closeRange:         float32(cfg.CloseRange),
		swipeChance:        float32(cfg.SwipeChance),
		combatDamageFactor: float32(cfg.CombatDamageFactor),
		retreatChance:      float32(cfg.RetreatChance),
		lowHealthFrac:      float32(cfg.LowHealthFrac),
		knockdownChance:    float32(cfg.KnockdownChance),
		knockdownDuration:  float32(cfg.KnockdownDuration),
		cooldownDuration:   float32(cfg.CooldownDuration),
		waypointBandMin:    float32(cfg.WaypointBandMin),
		waypointBandMax:    float32(cfg.WaypointBandMax),
		waypointAlignMin:   float32(cfg.WaypointAlignMin),
		arriveRadius:       float32(cfg.ArriveRadius),
		relocateRadius:     float32(cfg.RelocateRadius),
		minTreeScale:       float32(cfg.MinTreeScale),
		minWaterDistance:   float32(cfg.MinWaterDistance),
		maxSiteSlope:       float32(cfg.MaxSiteSlope),
		minBodyRadius:      float32(cfg.MinBodyRadius),
		shoreMargin:        float32(cfg.ShoreMargin),
		submergeDepth:      float32(cfg.SubmergeDepth),
		gravity:            float32(gravity),
	}
}

// Agent is one ambush predator. Both species share the machine; the
// habitat strategy carries the differences.
type Agent struct {
	id      uint32
	species Species
	p       *speciesParams
	habitat Habitat
	terrain *world.Terrain
	rng     *rand.Rand

	pos     components.Vec3
	vel     components.Vec3
	heading float32

	health  float32
	state   State
	elapsed float32

	attacking bool
	landedHit bool
	grounded  bool
	hasRefuge bool

	waypoints []components.Vec3
	wpIndex   int

	despawn bool
}

func newAgent(id uint32, species Species, p *speciesParams, habitat Habitat, terrain *world.Terrain, rng *rand.Rand) *Agent {
	a := &Agent{
		id:      id,
		species: species,
		p:       p,
		habitat: habitat,
		terrain: terrain,
		rng:     rng,
		health:  p.maxHealth,
		state:   StateHidden,
	}
	a.pos = habitat.SpawnPoint()
	return a
}

// ID returns the agent's session-unique id.
func (a *Agent) ID() uint32 { return a.id }

// Species returns the agent's species.
func (a *Agent) Species() Species { return a.species }

// State returns the current behavior state.
func (a *Agent) State() State { return a.state }

// StateElapsed returns seconds spent in the current state.
func (a *Agent) StateElapsed() float32 { return a.elapsed }

// Position returns the agent's world position.
func (a *Agent) Position() components.Vec3 { return a.pos }

// Heading returns the yaw angle on the horizontal plane.
func (a *Agent) Heading() float32 { return a.heading }

// Health returns current health.
func (a *Agent) Health() float32 { return a.health }

// MaxHealth returns the health ceiling.
func (a *Agent) MaxHealth() float32 { return a.p.maxHealth }

// Alive reports whether the agent has not been defeated.
func (a *Agent) Alive() bool { return a.state != StateDefeated }

// Attacking reports whether a strike is in progress.
func (a *Agent) Attacking() bool { return a.attacking }

// LandedHit reports whether the current or last strike connected.
func (a *Agent) LandedHit() bool { return a.landedHit }

// HabitatAnchor returns the agent's current habitat hold point.
func (a *Agent) HabitatAnchor() components.Vec3 { return a.habitat.Anchor() }

// ShouldDespawn reports whether the controller should remove the agent
// on its next cleanup pass.
func (a *Agent) ShouldDespawn() bool { return a.despawn }

// EffectiveDetectionRadius returns the detection radius after the
// habitat advantage multiplier.
func (a *Agent) EffectiveDetectionRadius() float32 {
	return a.p.detectionRadius * a.p.detectionMult
}

// Concealment returns how hidden the agent currently is, 0..1.
func (a *Agent) Concealment() float32 {
	switch a.state {
	case StateHidden:
		return concealHidden
	case StateStalking:
		return concealStalking
	case StateAlert:
		return concealAlert
	default:
		return 0
	}
}

// KnockdownDuration returns the knockdown length this species applies.
func (a *Agent) KnockdownDuration() float32 { return a.p.knockdownDuration }

// Power returns the full ambush strike damage for this species.
func (a *Agent) Power() float32 { return a.p.power }

// setState transitions to s and resets the state clock. Defeated is
// terminal and never exited.
func (a *Agent) setState(s State) {
	if a.state == StateDefeated {
		return
	}
	a.state = s
	a.elapsed = 0
}

// TakeDamage applies incoming damage. Reaching zero health defeats the
// agent from any state. Dropping below half health during ground
// combat forces a retreat.
func (a *Agent) TakeDamage(amount float32) {
	if amount <= 0 || a.state == StateDefeated {
		return
	}
	a.health -= amount
	if a.health <= 0 {
		a.health = 0
		a.attacking = false
		a.setState(StateDefeated)
		a.despawn = true
		return
	}
	if a.state == StateGroundCombat && a.health < forcedRetreatFrac*a.p.maxHealth {
		a.beginRetreat()
	}
}

// Heal restores health up to the ceiling.
func (a *Agent) Heal(amount float32) {
	if amount <= 0 || a.state == StateDefeated {
		return
	}
	a.health += amount
	if a.health > a.p.maxHealth {
		a.health = a.p.maxHealth
	}
}

// enterCooldown forces the post-strike recovery state. Called by the
// controller when an ambush connects.
func (a *Agent) enterCooldown() {
	a.attacking = false
	a.setState(StateCooldown)
}

// beginRetreat transitions to retreat and looks for a new habitat site
// to fall back to.
func (a *Agent) beginRetreat() {
	a.hasRefuge = a.habitat.Relocate(a.pos, a.id)
	a.attacking = false
	a.setState(StateRetreat)
}

// Update advances the agent by one throttled AI tick and returns a hit
// event when an attack connects this tick, nil otherwise.
func (a *Agent) Update(dt float32, target Target) *Hit {
	if dt <= 0 || a.state == StateDefeated || target == nil {
		return nil
	}
	a.elapsed += dt

	tpos := target.Position()
	switch a.state {
	case StateHidden:
		a.tickHidden(tpos)
	case StateStalking:
		a.tickStalking(dt, tpos)
	case StateAlert:
		a.tickAlert(target)
	case StateStrike:
		return a.tickStrike(dt, tpos)
	case StateGroundCombat:
		return a.tickGroundCombat(dt, tpos)
	case StateRetreat:
		a.tickRetreat(dt, tpos)
	case StateCooldown:
		if a.elapsed >= a.p.cooldownDuration {
			a.beginRetreat()
		}
	}
	return nil
}

func (a *Agent) tickHidden(tpos components.Vec3) {
	if a.pos.DistXZ(tpos) <= a.EffectiveDetectionRadius() {
		a.waypoints = a.waypoints[:0]
		a.wpIndex = 0
		a.setState(StateStalking)
	}
}

func (a *Agent) tickStalking(dt float32, tpos components.Vec3) {
	dist := a.pos.DistXZ(tpos)
	if dist > a.p.maxFollow || a.elapsed > a.p.stalkTimeout {
		a.setState(StateHidden)
		return
	}
	if a.habitat.StrikeReady(a.pos, tpos) {
		a.faceToward(tpos)
		a.setState(StateAlert)
		return
	}

	if a.wpIndex >= len(a.waypoints) {
		a.waypoints = a.habitat.PlanWaypoints(a.pos, tpos, a.waypoints[:0])
		a.wpIndex = 0
		if len(a.waypoints) == 0 {
			// Nowhere to go through this habitat; hold until the
			// stalk clock sends the agent back to hiding.
			return
		}
	}

	dest := a.waypoints[a.wpIndex]
	a.moveToward(dest, a.p.habitatSpeed, dt)
	if a.pos.Dist(dest) <= a.p.arriveRadius {
		a.wpIndex++
	}
}

func (a *Agent) tickAlert(target Target) {
	tpos := target.Position()
	a.faceToward(tpos)
	if a.elapsed < a.p.alertDuration {
		return
	}
	if a.habitat.StrikeReady(a.pos, tpos) {
		a.launchStrike(target)
		a.setState(StateStrike)
		return
	}
	a.setState(StateStalking)
}

// launchStrike aims at where the target will be when the pounce
// arrives and converts the agent to a ballistic projectile.
func (a *Agent) launchStrike(target Target) {
	tpos := target.Position()
	dist := a.pos.DistXZ(tpos)
	lead := dist / a.p.strikeSpeed
	predicted := tpos.Add(target.Velocity().Scale(lead))

	dir := predicted.Sub(a.pos).FlatNormalized()
	if dir.LengthSq() == 0 {
		dir = components.Vec3{X: 1}
	}
	a.vel = dir.Scale(a.p.strikeSpeed)
	a.vel.Y = a.p.launchImpulse
	a.heading = dir.HeadingXZ()
	a.attacking = true
	a.landedHit = false
	a.grounded = false
}

func (a *Agent) tickStrike(dt float32, tpos components.Vec3) *Hit {
	airTime := a.p.strikeDuration * a.p.arcFraction
	if !a.grounded && a.elapsed <= airTime {
		a.vel.Y -= a.p.gravity * dt
		a.pos = a.pos.Add(a.vel.Scale(dt))
		ground := a.terrain.HeightAt(a.pos.X, a.pos.Z)
		if a.pos.Y <= ground {
			a.pos.Y = ground
			a.vel.Y = 0
			a.grounded = true
		}
	} else {
		a.grounded = true
		a.pos.Y = a.terrain.HeightAt(a.pos.X, a.pos.Z)
	}

	var hit *Hit
	if a.attacking && !a.landedHit && a.pos.Dist(tpos) <= a.p.hitRange {
		a.landedHit = true
		hit = &Hit{
			Agent:     a,
			Damage:    a.p.power,
			Ambush:    true,
			Knockdown: a.rng.Float32() < a.p.knockdownChance,
		}
	}

	if a.elapsed >= a.p.strikeDuration {
		a.attacking = false
		a.setState(StateGroundCombat)
	}
	return hit
}

func (a *Agent) tickGroundCombat(dt float32, tpos components.Vec3) *Hit {
	var hit *Hit
	if a.pos.DistXZ(tpos) <= a.p.closeRange {
		a.faceToward(tpos)
		if a.rng.Float32() < a.p.swipeChance {
			hit = &Hit{
				Agent:  a,
				Damage: a.p.power * a.p.combatDamageFactor,
				Ambush: false,
			}
		}
	} else {
		a.moveGround(tpos, a.p.groundSpeed, dt)
	}

	if a.elapsed >= a.p.combatDuration {
		if a.health < a.p.lowHealthFrac*a.p.maxHealth || a.rng.Float32() < a.p.retreatChance {
			a.beginRetreat()
		} else {
			// Stay committed for another combat window.
			a.elapsed = 0
		}
	}
	return hit
}

func (a *Agent) tickRetreat(dt float32, tpos components.Vec3) {
	if a.pos.DistXZ(tpos) >= a.p.maxFollow {
		a.setState(StateHidden)
		return
	}
	if a.hasRefuge {
		anchor := a.habitat.Anchor()
		a.moveToward(anchor, a.p.groundSpeed, dt)
		if a.pos.Dist(anchor) <= a.p.arriveRadius {
			a.pos = anchor
			a.setState(StateHidden)
		}
		return
	}
	away := a.pos.Sub(tpos).FlatNormalized()
	if away.LengthSq() == 0 {
		away = components.Vec3{X: 1}
	}
	a.moveGround(a.pos.Add(away.Scale(a.p.groundSpeed)), a.p.groundSpeed, dt)
}

// moveToward moves in full 3D toward dest, used for canopy walks,
// submerged glides, and climbs back to a perch.
func (a *Agent) moveToward(dest components.Vec3, speed, dt float32) {
	dir := dest.Sub(a.pos)
	step := speed * dt
	if dir.Length() <= step {
		a.pos = dest
	} else {
		n := dir.Normalized()
		a.pos = a.pos.Add(n.Scale(step))
	}
	if dir.X != 0 || dir.Z != 0 {
		a.heading = dir.HeadingXZ()
	}
}

// moveGround moves horizontally toward dest with Y snapped to terrain.
func (a *Agent) moveGround(dest components.Vec3, speed, dt float32) {
	dir := dest.Sub(a.pos).FlatNormalized()
	if dir.LengthSq() == 0 {
		return
	}
	a.pos = a.pos.Add(dir.Scale(speed * dt))
	a.pos.Y = a.terrain.HeightAt(a.pos.X, a.pos.Z)
	a.heading = dir.HeadingXZ()
}

func (a *Agent) faceToward(p components.Vec3) {
	d := p.Sub(a.pos)
	if d.X != 0 || d.Z != 0 {
		a.heading = d.HeadingXZ()
	}
}
