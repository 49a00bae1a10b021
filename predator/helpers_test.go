package predator

import (
	"math/rand"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// stubTarget is a scriptable hunt target.
type stubTarget struct {
	pos     components.Vec3
	vel     components.Vec3
	move    components.MovementState
	stage   components.Stage
	dead    bool
	stealth float32

	hits       []float32
	sources    []string
	knockdowns []float32
}

func (t *stubTarget) Position() components.Vec3 { return t.pos }
func (t *stubTarget) Velocity() components.Vec3 { return t.vel }

func (t *stubTarget) MovementState() components.MovementState { return t.move }
func (t *stubTarget) Stage() components.Stage                 { return t.stage }
func (t *stubTarget) Alive() bool                             { return !t.dead }
func (t *stubTarget) StealthEffectiveness() float32           { return t.stealth }

func (t *stubTarget) TakeDamage(amount float32, source string) {
	t.hits = append(t.hits, amount)
	t.sources = append(t.sources, source)
}

func (t *stubTarget) ApplyKnockdown(seconds float32) {
	t.knockdowns = append(t.knockdowns, seconds)
}

// stubHabitat scripts habitat answers for state machine tests.
type stubHabitat struct {
	anchor     components.Vec3
	spawn      components.Vec3
	waypoints  []components.Vec3
	ready      bool
	relocateOK bool

	relocated int
	released  int
}

func (h *stubHabitat) Anchor() components.Vec3     { return h.anchor }
func (h *stubHabitat) SpawnPoint() components.Vec3 { return h.spawn }

func (h *stubHabitat) PlanWaypoints(agent, target components.Vec3, buf []components.Vec3) []components.Vec3 {
	return append(buf, h.waypoints...)
}

func (h *stubHabitat) StrikeReady(agent, target components.Vec3) bool { return h.ready }

func (h *stubHabitat) Relocate(near components.Vec3, owner uint32) bool {
	h.relocated++
	return h.relocateOK
}

func (h *stubHabitat) Release() { h.released++ }

// flatTerrain returns a zero-relief board for exact geometry checks.
func flatTerrain(size float32) *world.Terrain {
	wc := config.Default().World
	wc.Size = float64(size)
	wc.HeightScale = 0
	return world.NewTerrain(&wc, 1)
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

// stalkerTestParams returns a working copy of the default stalker
// tuning for tests to bend.
func stalkerTestParams() *speciesParams {
	cfg := config.Default()
	p := newSpeciesParams(&cfg.Stalker, cfg.Physics.Gravity)
	return &p
}
