package predator

import (
	"math"
	"testing"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// spawnEagerConfig makes every spawn roll succeed so population tests
// are deterministic.
func spawnEagerConfig() *config.Config {
	cfg := config.Default()
	cfg.Population.BaseSpawnChance = 1
	cfg.Population.SpawnCheckInterval = 1
	cfg.Population.MaxStalkers = 2
	cfg.Population.MaxLurkers = 1
	return cfg
}

// craftedController builds a flat world with a ring of eligible perch
// trees 40.0 out from the center and a lake well east, then centers
// the target in the ring.
func craftedController(t *testing.T, cfg *config.Config, hooks EffectHooks) (*Controller, *stubTarget) {
	t.Helper()
	terrain := flatTerrain(256)
	center := components.Vec3{X: 128, Z: 128}

	var trees []world.Tree
	for i := 0; i < 12; i++ {
		ang := 2 * math.Pi * float64(i) / 12
		trees = append(trees, world.Tree{
			X:            center.X + 40*float32(math.Cos(ang)),
			Z:            center.Z + 40*float32(math.Sin(ang)),
			Scale:        1.2,
			CanopyHeight: 7,
		})
	}
	veg := world.NewVegetation(trees, 256, 9)
	water := world.NewWater([]world.WaterBody{{
		Category: world.WaterLake,
		X:        center.X + 95,
		Z:        center.Z,
		Radius:   12,
		Surface:  0.4,
	}})

	c, err := NewController(cfg, terrain, water, veg, testRNG(), hooks)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return c, &stubTarget{pos: center, stage: components.StageAdult}
}

func TestNewControllerRejectsNilCollaborators(t *testing.T) {
	cfg := config.Default()
	if _, err := NewController(cfg, nil, nil, nil, nil, EffectHooks{}); err == nil {
		t.Fatal("nil world collaborators should be rejected")
	}
	if _, err := NewController(nil, flatTerrain(64), world.NewWater(nil), world.NewVegetation(nil, 64, 9), nil, EffectHooks{}); err == nil {
		t.Fatal("nil config should be rejected")
	}
}

func TestSpawnRespectsCaps(t *testing.T) {
	c, target := craftedController(t, spawnEagerConfig(), EffectHooks{})
	defer c.Dispose()

	for i := 0; i < 200; i++ {
		c.Update(0.1, target)
		st := c.Statistics()
		if st.Stalkers > 2 || st.Lurkers > 1 {
			t.Fatalf("population exceeded caps at tick %d: %+v", i, st)
		}
	}
	st := c.Statistics()
	if st.Stalkers != 2 || st.Lurkers != 1 {
		t.Fatalf("expected a full population, got %+v", st)
	}
	if st.TotalSpawned != 3 {
		t.Errorf("spawn total = %d, want 3", st.TotalSpawned)
	}
}

func TestSpawnWaitsOutGlobalCooldown(t *testing.T) {
	cfg := spawnEagerConfig()
	cfg.Population.AmbushCooldown = 30
	c, target := craftedController(t, cfg, EffectHooks{})
	defer c.Dispose()

	c.sinceAmbush = 0 // a strike just landed

	for i := 0; i < 100; i++ { // 10s
		c.Update(0.1, target)
	}
	if got := c.Statistics().TotalSpawned; got != 0 {
		t.Fatalf("no spawns inside the ambush window, got %d", got)
	}
	for i := 0; i < 210; i++ { // out to 31s
		c.Update(0.1, target)
	}
	if got := c.Statistics().TotalSpawned; got == 0 {
		t.Fatal("spawning should resume once the ambush window ends")
	}
}

func TestResolveAppliesAmbushEffects(t *testing.T) {
	cfg := config.Default()
	terrain := flatTerrain(64)
	c, err := NewController(cfg, terrain, world.NewWater(nil), world.NewVegetation(nil, 64, 9), testRNG(), EffectHooks{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	a := newAgent(9, SpeciesStalker, &c.stalkerParams, &stubHabitat{}, terrain, c.rng)
	a.setState(StateStrike)
	c.agents = append(c.agents, a)

	target := &stubTarget{}
	c.sinceAmbush = 12
	c.pending = append(c.pending, &Hit{Agent: a, Damage: 45, Ambush: true, Knockdown: true})
	c.resolveHits(target)

	if len(target.hits) != 1 || target.hits[0] != 45 {
		t.Fatalf("damage not applied: %+v", target.hits)
	}
	if target.sources[0] != "stalker" {
		t.Errorf("damage source = %q, want stalker", target.sources[0])
	}
	if len(target.knockdowns) != 1 || target.knockdowns[0] != a.KnockdownDuration() {
		t.Errorf("knockdown = %+v, want one of %v", target.knockdowns, a.KnockdownDuration())
	}
	if c.sinceAmbush != 0 {
		t.Errorf("ambush clock should reset, got %v", c.sinceAmbush)
	}
	if a.State() != StateCooldown {
		t.Errorf("striker should enter cooldown, state %v", a.State())
	}
	if c.Statistics().TotalAmbushes != 1 {
		t.Errorf("ambush count = %d, want 1", c.Statistics().TotalAmbushes)
	}
}

func TestResolveGroundSwipeLeavesClock(t *testing.T) {
	cfg := config.Default()
	terrain := flatTerrain(64)
	c, err := NewController(cfg, terrain, world.NewWater(nil), world.NewVegetation(nil, 64, 9), testRNG(), EffectHooks{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	a := newAgent(3, SpeciesLurker, &c.lurkerParams, &stubHabitat{}, terrain, c.rng)
	a.setState(StateGroundCombat)
	c.agents = append(c.agents, a)

	target := &stubTarget{}
	c.sinceAmbush = 12
	c.pending = append(c.pending, &Hit{Agent: a, Damage: 20, Ambush: false})
	c.resolveHits(target)

	if len(target.hits) != 1 || target.sources[0] != "lurker" {
		t.Fatalf("swipe damage not applied: %+v %v", target.hits, target.sources)
	}
	if len(target.knockdowns) != 0 {
		t.Error("ground swipes never floor the target")
	}
	if c.sinceAmbush != 12 {
		t.Errorf("ground swipes must not touch the ambush clock, got %v", c.sinceAmbush)
	}
	if a.State() != StateGroundCombat {
		t.Errorf("swiping agent should stay in combat, state %v", a.State())
	}
}

func TestDeadTargetFreezesController(t *testing.T) {
	cfg := spawnEagerConfig()
	c, target := craftedController(t, cfg, EffectHooks{})
	defer c.Dispose()

	target.dead = true
	c.Update(0.5, target)
	if got := c.Statistics().SinceAmbush; got != float32(cfg.Population.AmbushCooldown) {
		t.Errorf("clock should not advance against a dead target, got %v", got)
	}
	if c.Statistics().TotalSpawned != 0 {
		t.Error("nothing should spawn against a dead target")
	}
}

func TestUpdateSurvivesBadDeltas(t *testing.T) {
	cfg := spawnEagerConfig()
	c, target := craftedController(t, cfg, EffectHooks{})
	defer c.Dispose()

	base := float32(cfg.Population.AmbushCooldown)
	c.Update(float32(math.NaN()), target)
	c.Update(float32(math.Inf(1)), target)
	c.Update(-5, target)
	if got := c.Statistics().SinceAmbush; got != base {
		t.Errorf("degenerate deltas must not tick the subsystem, got %v", got)
	}

	c.Update(1000, target)
	advanced := c.Statistics().SinceAmbush - base
	if advanced > float32(cfg.Physics.MaxDelta)+0.001 {
		t.Errorf("oversized delta should clamp to %v, advanced %v", cfg.Physics.MaxDelta, advanced)
	}
}

func TestDefeatedAgentCleanup(t *testing.T) {
	c, target := craftedController(t, spawnEagerConfig(), EffectHooks{})
	defer c.Dispose()

	for i := 0; i < 30; i++ {
		c.Update(0.1, target)
	}
	agents := c.ActiveAgents(nil)
	if len(agents) == 0 {
		t.Fatal("setup should spawn")
	}
	claimed := len(c.sites.treeOwner)
	victim := agents[0]
	if victim.Species() != SpeciesStalker {
		t.Fatalf("first spawn should be a stalker, got %v", victim.Species())
	}

	victim.TakeDamage(victim.MaxHealth() + 100)
	c.Update(0.1, target)

	for _, a := range c.ActiveAgents(nil) {
		if a.ID() == victim.ID() {
			t.Fatal("defeated agent should be cleaned up")
		}
	}
	if got := c.Statistics().TotalDefeated; got != 1 {
		t.Errorf("defeat count = %d, want 1", got)
	}
	if got := len(c.sites.treeOwner); got != claimed-1 {
		t.Errorf("defeat should release the perch: %d claims, had %d", got, claimed)
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	c, target := craftedController(t, spawnEagerConfig(), EffectHooks{})

	for i := 0; i < 30; i++ {
		c.Update(0.1, target)
	}
	if len(c.ActiveAgents(nil)) == 0 {
		t.Fatal("setup should spawn")
	}

	c.Dispose()
	if got := c.ActiveAgents(nil); len(got) != 0 {
		t.Fatalf("dispose should clear the population, %d left", len(got))
	}
	if len(c.sites.treeOwner) != 0 || len(c.sites.bodyOwner) != 0 {
		t.Error("dispose should release every claimed site")
	}

	st := c.Statistics()
	c.Dispose() // second call is a no-op
	c.Update(0.1, target)
	if c.Statistics() != st {
		t.Error("a disposed controller must not advance")
	}
}

func TestStatisticsMirrorsState(t *testing.T) {
	c, target := craftedController(t, spawnEagerConfig(), EffectHooks{})
	defer c.Dispose()

	for i := 0; i < 40; i++ {
		c.Update(0.1, target)
	}
	st := c.Statistics()

	var stalkers, lurkers int
	for _, a := range c.ActiveAgents(nil) {
		switch a.Species() {
		case SpeciesStalker:
			stalkers++
		case SpeciesLurker:
			lurkers++
		}
	}
	if st.Stalkers != stalkers || st.Lurkers != lurkers {
		t.Errorf("species counts diverge: %+v vs %d/%d", st, stalkers, lurkers)
	}
	if st.Tier != TierFor(st.Awareness) {
		t.Errorf("tier %v does not match awareness %v", st.Tier, st.Awareness)
	}
	if st.TotalSpawned != stalkers+lurkers+st.TotalDefeated {
		t.Errorf("spawn ledger does not balance: %+v", st)
	}
}

func TestStalkerAmbushEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.Population.BaseSpawnChance = 1
	cfg.Population.SpawnCheckInterval = 1
	cfg.Population.MaxStalkers = 1
	cfg.Population.MaxLurkers = 0
	cfg.Stalker.KnockdownChance = 1

	terrain := flatTerrain(256)
	center := components.Vec3{X: 128, Z: 128}
	trees := []world.Tree{
		{X: center.X + 34, Z: center.Z, Scale: 1.2, CanopyHeight: 7},   // spawn perch
		{X: center.X + 11.5, Z: center.Z, Scale: 1.2, CanopyHeight: 7}, // pounce perch
	}
	veg := world.NewVegetation(trees, 256, 9)

	var spawns, strikes, ambushes int
	hooks := EffectHooks{
		AgentSpawned:   func(*Agent) { spawns++ },
		StrikeLaunched: func(*Agent) { strikes++ },
		AmbushStrike:   func(*Agent, bool) { ambushes++ },
	}
	c, err := NewController(cfg, terrain, world.NewWater(nil), veg, testRNG(), hooks)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	target := &stubTarget{pos: center, stage: components.StageAdult}
	for i := 0; i < 300; i++ { // 30s
		c.Update(0.1, target)
	}

	if spawns != 1 {
		t.Fatalf("spawn hook fired %d times, want 1", spawns)
	}
	if strikes == 0 || ambushes == 0 {
		t.Fatalf("hunt never finished: strikes %d ambushes %d", strikes, ambushes)
	}
	if len(target.hits) == 0 || target.sources[0] != "stalker" {
		t.Fatalf("target should carry stalker damage: %v", target.sources)
	}
	if len(target.knockdowns) == 0 {
		t.Error("a guaranteed knockdown should floor the target")
	}
	st := c.Statistics()
	if st.TotalAmbushes == 0 || st.SinceAmbush > 25 {
		t.Errorf("ambush clock should have reset recently: %+v", st)
	}
}

func TestLurkerAmbushFromShore(t *testing.T) {
	cfg := config.Default()
	cfg.Population.BaseSpawnChance = 1
	cfg.Population.SpawnCheckInterval = 1
	cfg.Population.MaxStalkers = 0
	cfg.Population.MaxLurkers = 1
	cfg.Lurker.KnockdownChance = 1

	terrain := flatTerrain(256)
	center := components.Vec3{X: 128, Z: 128}
	lake := world.WaterBody{Category: world.WaterLake, X: 128, Z: 180, Radius: 12, Surface: 0.4}
	c, err := NewController(cfg, terrain, world.NewWater([]world.WaterBody{lake}), world.NewVegetation(nil, 256, 9), testRNG(), EffectHooks{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	target := &stubTarget{pos: center, stage: components.StageAdult}
	for i := 0; i < 30; i++ {
		c.Update(0.1, target)
	}
	if c.Statistics().Lurkers != 1 {
		t.Fatalf("a lurker should hold the lake: %+v", c.Statistics())
	}

	// The tiger comes down to drink.
	target.pos = components.Vec3{X: 128, Z: 161}
	for i := 0; i < 100; i++ {
		c.Update(0.1, target)
	}

	if len(target.hits) == 0 {
		t.Fatal("the shore ambush never connected")
	}
	found := false
	for _, s := range target.sources {
		if s == "lurker" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected lurker damage, sources %v", target.sources)
	}
	if len(target.knockdowns) == 0 {
		t.Error("a guaranteed knockdown should floor the target")
	}
}
