package tiger

import (
	"math/rand"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

type roamMode uint8

const (
	roamRest roamMode = iota
	roamTrek
	roamDrink
)

// Roamer scripts tiger movement for headless runs: treks across the
// map, sprint bursts, crouched approaches to water, and rests. The mix
// keeps every movement state in play.
type Roamer struct {
	cfg   *config.RoamConfig
	rng   *rand.Rand
	mode  roamMode
	gait  components.MovementState
	dest  components.Vec3
	timer float32
}

// NewRoamer creates a roamer with its own random stream.
func NewRoamer(cfg *config.RoamConfig, rng *rand.Rand) *Roamer {
	return &Roamer{cfg: cfg, rng: rng}
}

// Steer decides the tiger's intent for this frame.
func (r *Roamer) Steer(t *Tiger, dt float32, terrain *world.Terrain, water *world.Water) {
	if !t.Alive() {
		return
	}

	r.timer -= dt
	arrived := r.mode != roamRest && t.Position().DistXZ(r.dest) <= float32(r.cfg.ArriveRadius)
	if r.timer <= 0 || arrived {
		r.retarget(t, terrain, water, arrived)
	}

	switch r.mode {
	case roamRest:
		t.SetIntent(components.Vec3{}, components.MoveIdle)
	case roamDrink:
		dir := r.dest.Sub(t.Position())
		if dir.LengthSq() < 0.01 {
			t.SetIntent(components.Vec3{}, components.MoveCrouching)
			return
		}
		t.SetIntent(dir, components.MoveCrouching)
	default:
		t.SetIntent(r.dest.Sub(t.Position()), r.gait)
	}
}

// retarget rolls the next activity.
func (r *Roamer) retarget(t *Tiger, terrain *world.Terrain, water *world.Water, arrived bool) {
	r.timer = float32(r.cfg.MinLeg) + r.rng.Float32()*float32(r.cfg.MaxLeg-r.cfg.MinLeg)

	// Arriving at a drink spot means staying crouched at the shore
	// until the leg timer runs out.
	if arrived && r.mode == roamDrink {
		r.mode = roamRest
		return
	}

	roll := r.rng.Float64()
	switch {
	case roll < r.cfg.RestChance:
		r.mode = roamRest
	case roll < r.cfg.RestChance+r.cfg.DrinkChance && len(water.Bodies()) > 0:
		r.mode = roamDrink
		r.dest = r.drinkSpot(t, water)
	default:
		r.mode = roamTrek
		r.dest = r.trekDest(terrain, water)
		r.gait = components.MoveWalking
		if r.rng.Float64() < r.cfg.RunChance {
			r.gait = components.MoveRunning
		}
	}
}

// drinkSpot picks a point just outside the nearest still body's edge.
func (r *Roamer) drinkSpot(t *Tiger, water *world.Water) components.Vec3 {
	body, _ := water.NearestBody(t.Position().X, t.Position().Z)
	center := components.Vec3{X: body.X, Z: body.Z}
	dir := t.Position().Sub(center).FlatNormalized()
	if dir.LengthSq() == 0 {
		dir = components.Vec3{X: 1}
	}
	standoff := body.Radius + float32(r.cfg.DrinkRadius)
	return center.Add(dir.Scale(standoff))
}

// trekDest picks a dry random destination.
func (r *Roamer) trekDest(terrain *world.Terrain, water *world.Water) components.Vec3 {
	size := terrain.Size()
	for i := 0; i < 8; i++ {
		d := components.Vec3{
			X: size * (0.05 + 0.9*r.rng.Float32()),
			Z: size * (0.05 + 0.9*r.rng.Float32()),
		}
		if !water.InWater(d.X, d.Z) {
			return d
		}
	}
	return components.Vec3{X: size / 2, Z: size / 2}
}
