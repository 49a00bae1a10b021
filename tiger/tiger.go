// Package tiger implements the player animal: the moving, evolving
// target the ambush predators hunt. In the full game it is driven by
// player input; here a scripted roamer steers it so headless runs have
// a live target.
package tiger

import (
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// Tiger holds the target's full state.
type Tiger struct {
	cfg     *config.TigerConfig
	terrain *world.Terrain

	pos     components.Vec3
	vel     components.Vec3
	heading float32
	state   components.MovementState
	stage   components.Stage

	health    float32
	maxHealth float32
	nutrition float32
	knockdown float32

	intentDir   components.Vec3
	intentState components.MovementState

	lastDamageSource string
}

// New creates a tiger standing at the given spawn point.
func New(cfg *config.TigerConfig, terrain *world.Terrain, spawn components.Vec3) *Tiger {
	spawn.Y = terrain.HeightAt(spawn.X, spawn.Z)
	return &Tiger{
		cfg:       cfg,
		terrain:   terrain,
		pos:       spawn,
		state:     components.MoveIdle,
		stage:     components.StageCub,
		health:    float32(cfg.MaxHealth),
		maxHealth: float32(cfg.MaxHealth),
	}
}

// Position returns the tiger's world position.
func (t *Tiger) Position() components.Vec3 { return t.pos }

// Velocity returns the tiger's current velocity.
func (t *Tiger) Velocity() components.Vec3 { return t.vel }

// Heading returns the yaw angle on the horizontal plane.
func (t *Tiger) Heading() float32 { return t.heading }

// MovementState returns the current movement tag.
func (t *Tiger) MovementState() components.MovementState { return t.state }

// Stage returns the current evolution stage.
func (t *Tiger) Stage() components.Stage { return t.stage }

// Alive reports whether the tiger is alive.
func (t *Tiger) Alive() bool { return t.health > 0 }

// Health returns current health.
func (t *Tiger) Health() float32 { return t.health }

// MaxHealth returns the health ceiling.
func (t *Tiger) MaxHealth() float32 { return t.maxHealth }

// Nutrition returns accumulated nutrition toward the next stage.
func (t *Tiger) Nutrition() float32 { return t.nutrition }

// KnockedDown reports whether movement is currently suppressed.
func (t *Tiger) KnockedDown() bool { return t.knockdown > 0 }

// LastDamageSource names whatever hurt the tiger most recently.
func (t *Tiger) LastDamageSource() string { return t.lastDamageSource }

// TakeDamage applies damage from a named source. Zero and negative
// amounts are ignored. Health never goes below zero; reaching zero is
// terminal.
func (t *Tiger) TakeDamage(amount float32, source string) {
	if amount <= 0 || !t.Alive() {
		return
	}
	t.health -= amount
	if t.health < 0 {
		t.health = 0
	}
	t.lastDamageSource = source
}

// Heal restores health up to the ceiling. Dead tigers stay dead.
func (t *Tiger) Heal(amount float32) {
	if amount <= 0 || !t.Alive() {
		return
	}
	t.health += amount
	if t.health > t.maxHealth {
		t.health = t.maxHealth
	}
}

// StealthEffectiveness returns how hard the tiger currently is to
// notice, 0..1. Crouching is the stealthiest, running the loudest, and
// later stages move a little more quietly.
func (t *Tiger) StealthEffectiveness() float32 {
	var base float32
	switch t.state {
	case components.MoveCrouching:
		base = float32(t.cfg.CrouchStealth)
	case components.MoveIdle:
		base = float32(t.cfg.IdleStealth)
	case components.MoveWalking:
		base = float32(t.cfg.WalkStealth)
	case components.MoveRunning:
		base = float32(t.cfg.RunStealth)
	}
	base += float32(t.cfg.StageStealthBonus) * float32(t.stage)
	if base > 1 {
		base = 1
	}
	if base < 0 {
		base = 0
	}
	return base
}

// ApplyKnockdown suppresses movement for the given duration. Repeated
// knockdowns extend, never shorten.
func (t *Tiger) ApplyKnockdown(seconds float32) {
	if seconds > t.knockdown {
		t.knockdown = seconds
	}
}

// SetIntent sets the desired movement direction and gait for the next
// update. The direction is flattened and normalized.
func (t *Tiger) SetIntent(dir components.Vec3, state components.MovementState) {
	t.intentDir = dir.FlatNormalized()
	t.intentState = state
}

// AddNutrition feeds stage progression. Promotions are monotonic.
func (t *Tiger) AddNutrition(amount float32) {
	if amount <= 0 || !t.Alive() {
		return
	}
	t.nutrition += amount
	switch {
	case t.nutrition >= float32(t.cfg.ApexAt):
		t.promote(components.StageApex)
	case t.nutrition >= float32(t.cfg.AdultAt):
		t.promote(components.StageAdult)
	case t.nutrition >= float32(t.cfg.JuvenileAt):
		t.promote(components.StageJuvenile)
	}
}

func (t *Tiger) promote(s components.Stage) {
	if s > t.stage {
		t.stage = s
	}
}

// speedFor maps a gait to ground speed.
func (t *Tiger) speedFor(state components.MovementState) float32 {
	switch state {
	case components.MoveWalking:
		return float32(t.cfg.WalkSpeed)
	case components.MoveRunning:
		return float32(t.cfg.RunSpeed)
	case components.MoveCrouching:
		return float32(t.cfg.CrouchSpeed)
	default:
		return 0
	}
}

// Update integrates movement intent onto the terrain surface and runs
// timers. Dead tigers do not move.
func (t *Tiger) Update(dt float32) {
	if dt <= 0 {
		return
	}
	if !t.Alive() {
		t.vel = components.Vec3{}
		return
	}

	if t.knockdown > 0 {
		t.knockdown -= dt
		if t.knockdown < 0 {
			t.knockdown = 0
		}
		t.vel = components.Vec3{}
		t.state = components.MoveIdle
		return
	}

	t.state = t.intentState
	speed := t.speedFor(t.state)
	if speed > 0 && t.intentDir.LengthSq() > 0 {
		t.vel = t.intentDir.Scale(speed)
		t.heading = t.intentDir.HeadingXZ()
	} else {
		t.vel = components.Vec3{}
		if t.state != components.MoveCrouching {
			t.state = components.MoveIdle
		}
	}

	t.pos = t.pos.Add(t.vel.Scale(dt))
	size := t.terrain.Size()
	if t.pos.X < 0 {
		t.pos.X = 0
	}
	if t.pos.X > size {
		t.pos.X = size
	}
	if t.pos.Z < 0 {
		t.pos.Z = 0
	}
	if t.pos.Z > size {
		t.pos.Z = size
	}
	t.pos.Y = t.terrain.HeightAt(t.pos.X, t.pos.Z)

	if t.state == components.MoveIdle {
		t.Heal(float32(t.cfg.IdleRegen) * dt)
	}
}
