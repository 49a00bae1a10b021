package wildlife

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// stubHunter scripts the predator side of the herd interactions.
type stubHunter struct {
	pos     components.Vec3
	move    components.MovementState
	dead    bool
	stealth float32

	nutrition float32
}

func (h *stubHunter) Position() components.Vec3             { return h.pos }
func (h *stubHunter) MovementState() components.MovementState { return h.move }
func (h *stubHunter) Alive() bool                           { return !h.dead }
func (h *stubHunter) StealthEffectiveness() float32         { return h.stealth }
func (h *stubHunter) AddNutrition(amount float32)           { h.nutrition += amount }

func flatTerrain(size float32) *world.Terrain {
	wc := config.Default().World
	wc.Size = float64(size)
	wc.HeightScale = 0
	return world.NewTerrain(&wc, 1)
}

func testSystem(t *testing.T, mutate func(*config.WildlifeConfig)) *System {
	t.Helper()
	cfg := config.Default()
	cfg.Wildlife.Herds = 2
	cfg.Wildlife.HerdSize = 4
	cfg.Wildlife.MaxPopulation = 10
	if mutate != nil {
		mutate(&cfg.Wildlife)
	}
	terrain := flatTerrain(256)
	return NewSystem(cfg, terrain, world.NewWater(nil), rand.New(rand.NewSource(11)))
}

func TestNewSystemSpawnsHerds(t *testing.T) {
	s := testSystem(t, nil)

	if got, want := s.Count(), 8; got != want {
		t.Fatalf("Count() = %d, want %d", got, want)
	}
	snap := s.Snapshot(nil)
	if len(snap) != 8 {
		t.Fatalf("Snapshot() returned %d animals, want 8", len(snap))
	}
	for i, g := range snap {
		if g.Pos.X < 0 || g.Pos.X > 256 || g.Pos.Z < 0 || g.Pos.Z > 256 {
			t.Errorf("animal %d spawned out of bounds at %+v", i, g.Pos)
		}
		if g.Fleeing {
			t.Errorf("animal %d spawned already fleeing", i)
		}
	}
}

func TestSpawnRespectsPopulationCap(t *testing.T) {
	s := testSystem(t, func(wc *config.WildlifeConfig) {
		wc.Herds = 5
		wc.HerdSize = 4
		wc.MaxPopulation = 7
	})
	if got := s.Count(); got != 7 {
		t.Fatalf("Count() = %d, want cap 7", got)
	}
}

func TestHerdFleesCloseHunter(t *testing.T) {
	s := testSystem(t, nil)
	snap := s.Snapshot(nil)
	hunter := &stubHunter{pos: snap[0].Pos, move: components.MoveWalking}

	s.Update(0.05, hunter)

	snap = s.Snapshot(snap[:0])
	fleeing := 0
	for _, g := range snap {
		if g.Fleeing {
			fleeing++
		}
	}
	if fleeing == 0 {
		t.Fatal("no animal fled a hunter standing in the herd")
	}
}

func TestStealthShrinksFlightDistance(t *testing.T) {
	tests := []struct {
		name     string
		stealth  float32
		wantFlee bool
	}{
		{"no stealth", 0, true},
		{"full stealth", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSystem(t, func(wc *config.WildlifeConfig) {
				wc.Herds = 1
				wc.HerdSize = 1
				wc.FlightDistance = 18
				wc.StealthDiscount = 0.6
			})
			snap := s.Snapshot(nil)
			// Between the discounted radius (7.2) and the full one (18).
			pos := snap[0].Pos
			pos.X += 12
			hunter := &stubHunter{pos: pos, stealth: tt.stealth}

			s.Update(0.05, hunter)

			snap = s.Snapshot(snap[:0])
			if got := snap[0].Fleeing; got != tt.wantFlee {
				t.Errorf("Fleeing = %v, want %v", got, tt.wantFlee)
			}
		})
	}
}

func TestRunningHunterCatchesOnePerFrame(t *testing.T) {
	s := testSystem(t, nil)
	snap := s.Snapshot(nil)
	// Stand in the middle of a herd so several animals are in range.
	hunter := &stubHunter{pos: snap[0].Pos, move: components.MoveRunning}

	before := s.Count()
	kills := s.Update(0.05, hunter)

	if kills != 1 {
		t.Fatalf("Update() kills = %d, want 1", kills)
	}
	if got := s.Count(); got != before-1 {
		t.Errorf("Count() = %d, want %d", got, before-1)
	}
	if hunter.nutrition != 40 {
		t.Errorf("hunter nutrition = %v, want kill reward 40", hunter.nutrition)
	}
}

func TestWalkingHunterCatchesNothing(t *testing.T) {
	s := testSystem(t, nil)
	snap := s.Snapshot(nil)
	hunter := &stubHunter{pos: snap[0].Pos, move: components.MoveWalking}

	if kills := s.Update(0.05, hunter); kills != 0 {
		t.Fatalf("walking hunter caught %d animals", kills)
	}
	if hunter.nutrition != 0 {
		t.Errorf("hunter gained %v nutrition without a catch", hunter.nutrition)
	}
}

func TestDeadHunterIsIgnored(t *testing.T) {
	s := testSystem(t, nil)
	snap := s.Snapshot(nil)
	hunter := &stubHunter{pos: snap[0].Pos, move: components.MoveRunning, dead: true}

	if kills := s.Update(0.05, hunter); kills != 0 {
		t.Fatalf("dead hunter caught %d animals", kills)
	}
	snap = s.Snapshot(snap[:0])
	for i, g := range snap {
		if g.Fleeing {
			t.Errorf("animal %d fled a dead hunter", i)
		}
	}
}

func TestRestockAfterLosses(t *testing.T) {
	s := testSystem(t, func(wc *config.WildlifeConfig) {
		wc.RespawnInterval = 1.0
	})
	snap := s.Snapshot(nil)
	hunter := &stubHunter{pos: snap[0].Pos, move: components.MoveRunning}

	// Two catches on separate frames.
	s.Update(0.05, hunter)
	hunter.pos = s.Snapshot(nil)[0].Pos
	s.Update(0.05, hunter)
	if got := s.Count(); got != 6 {
		t.Fatalf("Count() after two kills = %d, want 6", got)
	}

	// Let the restock timer run out with the hunter far away.
	hunter.pos = components.Vec3{X: 250, Z: 250}
	hunter.move = components.MoveIdle
	for i := 0; i < 25; i++ {
		s.Update(0.05, hunter)
	}
	if got := s.Count(); got <= 6 {
		t.Errorf("Count() after restock window = %d, want > 6", got)
	}
	if got := s.Count(); got > 10 {
		t.Errorf("Count() = %d, exceeds population cap 10", got)
	}
}

func TestAnimalsStayInBoundsAndDry(t *testing.T) {
	cfg := config.Default()
	cfg.Wildlife.Herds = 2
	cfg.Wildlife.HerdSize = 5
	terrain := flatTerrain(128)
	water := world.NewWater([]world.WaterBody{
		{Category: world.WaterLake, X: 64, Z: 64, Radius: 20, Surface: 0.5},
	})
	s := NewSystem(cfg, terrain, water, rand.New(rand.NewSource(3)))

	hunter := &stubHunter{pos: components.Vec3{X: 5, Z: 5}}
	for i := 0; i < 600; i++ {
		s.Update(1.0/60, hunter)
	}

	for i, g := range s.Snapshot(nil) {
		if g.Pos.X < 0 || g.Pos.X > 128 || g.Pos.Z < 0 || g.Pos.Z > 128 {
			t.Errorf("animal %d wandered out of bounds to %+v", i, g.Pos)
		}
		if water.InWater(g.Pos.X, g.Pos.Z) {
			t.Errorf("animal %d ended up in water at %+v", i, g.Pos)
		}
	}
}

func TestQueryRadiusInto(t *testing.T) {
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)

	at := func(x, z float32) ecs.Entity {
		pos := components.Position{X: x, Z: z}
		return posMap.NewEntity(&pos)
	}

	grid := NewSpatialGrid(100, 10)
	center := at(50, 50)
	near := at(53, 54)
	far := at(90, 90)
	for _, e := range []ecs.Entity{center, near, far} {
		p := posMap.Get(e)
		grid.Insert(e, p.X, p.Z)
	}

	got := grid.QueryRadiusInto(nil, 50, 50, 8, center, posMap)
	if len(got) != 1 {
		t.Fatalf("QueryRadiusInto returned %d neighbors, want 1", len(got))
	}
	if got[0].E != near {
		t.Errorf("neighbor = %v, want the close entity", got[0].E)
	}
	if got[0].DistSq != 3*3+4*4 {
		t.Errorf("DistSq = %v, want 25", got[0].DistSq)
	}
}
