package predator

import (
	"math"
	"testing"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

func testRegistry(trees []world.Tree, bodies []world.WaterBody) *siteRegistry {
	return newSiteRegistry(flatTerrain(256), world.NewWater(bodies), world.NewVegetation(trees, 256, 9))
}

func lurkerTestParams() *speciesParams {
	cfg := config.Default()
	p := newSpeciesParams(&cfg.Lurker, cfg.Physics.Gravity)
	return &p
}

func TestStalkerSiteEligibility(t *testing.T) {
	p := stalkerTestParams()
	trees := []world.Tree{
		{X: 50, Z: 50, Scale: 1.1, CanopyHeight: 7},
		{X: 60, Z: 50, Scale: 0.5, CanopyHeight: 3},
		{X: 120, Z: 120, Scale: 1.2, CanopyHeight: 7},
	}
	bodies := []world.WaterBody{{Category: world.WaterPond, X: 126, Z: 120, Radius: 3, Surface: 0.4}}
	reg := testRegistry(trees, bodies)

	if !reg.stalkerSiteOK(0, p) {
		t.Error("a large dry tree on flat ground should qualify")
	}
	if reg.stalkerSiteOK(1, p) {
		t.Error("a sapling cannot hold an ambush cat")
	}
	if reg.stalkerSiteOK(2, p) {
		t.Error("a tree on the waterline should not qualify")
	}
}

func TestStalkerSiteRejectsSteepGround(t *testing.T) {
	wc := config.Default().World
	wc.Size = 256
	wc.HeightScale = 60
	terrain := world.NewTerrain(&wc, 3)

	var sx, sz float32 = -1, -1
	for x := float32(8); x < 248 && sx < 0; x += 4 {
		for z := float32(8); z < 248; z += 4 {
			if terrain.SlopeAt(x, z) > 0.55 {
				sx, sz = x, z
				break
			}
		}
	}
	if sx < 0 {
		t.Skip("terrain sample has no steep ground")
	}

	p := stalkerTestParams()
	veg := world.NewVegetation([]world.Tree{{X: sx, Z: sz, Scale: 1.2, CanopyHeight: 7}}, 256, 9)
	reg := newSiteRegistry(terrain, world.NewWater(nil), veg)
	if reg.stalkerSiteOK(0, p) {
		t.Error("steep ground should disqualify the perch")
	}
}

func TestLurkerSiteEligibility(t *testing.T) {
	p := lurkerTestParams()
	bodies := []world.WaterBody{
		{Category: world.WaterLake, X: 50, Z: 50, Radius: 14, Surface: 0.4},
		{Category: world.WaterPond, X: 90, Z: 50, Radius: 9.5, Surface: 0.4},
		{Category: world.WaterPond, X: 130, Z: 50, Radius: 4, Surface: 0.4},
		{Category: world.WaterRiver, X: 170, Z: 50, Radius: 12, Surface: 0.4},
	}
	reg := testRegistry(nil, bodies)

	if !reg.lurkerSiteOK(0, p) || !reg.lurkerSiteOK(1, p) {
		t.Error("lakes and large ponds should qualify")
	}
	if reg.lurkerSiteOK(2, p) {
		t.Error("a puddle cannot hide a lurker")
	}
	if reg.lurkerSiteOK(3, p) {
		t.Error("rivers never qualify")
	}
}

func TestCanopyWaypointsRespectBandAndAlignment(t *testing.T) {
	p := stalkerTestParams()
	target := components.Vec3{X: 128, Z: 128}
	agent := components.Vec3{X: 140, Y: 7, Z: 128}
	trees := []world.Tree{
		{X: 126, Z: 119, Scale: 1.2, CanopyHeight: 7}, // ahead, in band
		{X: 117, Z: 128, Scale: 1.2, CanopyHeight: 7}, // ahead, in band
		{X: 131, Z: 128, Scale: 1.2, CanopyHeight: 7}, // inside the minimum band
		{X: 140, Z: 145, Scale: 1.2, CanopyHeight: 7}, // sideways, bad alignment
	}
	reg := testRegistry(trees, nil)
	h := newCanopyHabitat(reg, p, 0, 1)

	wps := h.PlanWaypoints(agent, target, nil)
	if len(wps) != 2 {
		t.Fatalf("route length = %d, want 2: %+v", len(wps), wps)
	}
	prev := float32(0)
	for i, wp := range wps {
		d := wp.DistXZ(target)
		if d < p.waypointBandMin || d > p.waypointBandMax {
			t.Errorf("waypoint %d at distance %v is outside the stalking band", i, d)
		}
		if d < prev {
			t.Error("waypoints should be ordered nearest the prey first")
		}
		prev = d
		if math.Abs(float64(wp.X-131)) < 1e-3 {
			t.Error("a perch inside the minimum band should be filtered out")
		}
		if math.Abs(float64(wp.Z-145)) < 1e-3 {
			t.Error("a poorly aligned perch should be filtered out")
		}
	}
}

func TestCanopyStrikeNeedsHeightAdvantage(t *testing.T) {
	p := stalkerTestParams()
	reg := testRegistry([]world.Tree{{X: 100, Z: 100, Scale: 1.2, CanopyHeight: 7}}, nil)
	h := newCanopyHabitat(reg, p, 0, 1)

	perch := h.Anchor()
	target := components.Vec3{X: 108, Z: 100}
	if !h.StrikeReady(perch, target) {
		t.Error("8.0 out and 7.0 up should satisfy the pounce")
	}
	if h.StrikeReady(perch, components.Vec3{X: 120, Z: 100}) {
		t.Error("20.0 out is beyond strike range")
	}
	low := components.Vec3{X: 104, Y: 1, Z: 100}
	if h.StrikeReady(low, target) {
		t.Error("without height advantage there is no pounce")
	}
}

func TestRelocateSkipsClaimedTrees(t *testing.T) {
	p := stalkerTestParams()
	trees := []world.Tree{
		{X: 100, Z: 100, Scale: 1.2, CanopyHeight: 7},
		{X: 110, Z: 100, Scale: 1.2, CanopyHeight: 7},
		{X: 120, Z: 100, Scale: 1.2, CanopyHeight: 7},
	}
	reg := testRegistry(trees, nil)
	h1 := newCanopyHabitat(reg, p, 0, 1)
	newCanopyHabitat(reg, p, 1, 2) // a rival owns the nearest fallback

	if !h1.Relocate(components.Vec3{X: 100, Z: 100}, 1) {
		t.Fatal("a free eligible tree is in reach")
	}
	if h1.tree != 2 {
		t.Fatalf("relocation should land on the free tree, got %d", h1.tree)
	}
	if owner, ok := reg.treeOwner[2]; !ok || owner != 1 {
		t.Error("relocation should claim the new tree")
	}
	if _, ok := reg.treeOwner[0]; ok {
		t.Error("relocation should release the old tree")
	}
}

func TestWaterStrikeNeedsShorelineTarget(t *testing.T) {
	p := lurkerTestParams()
	body := world.WaterBody{Category: world.WaterLake, X: 100, Z: 100, Radius: 12, Surface: 0.4}
	reg := testRegistry(nil, []world.WaterBody{body})
	h := newWaterHabitat(reg, p, 0, 0, 1)

	hold := h.Anchor()
	if hold.Y >= body.Surface {
		t.Errorf("the lurker should hold below the surface, y=%v", hold.Y)
	}

	shore := components.Vec3{X: 115, Z: 100}
	if !h.StrikeReady(hold, shore) {
		t.Error("a shoreline target in range should trigger the lunge")
	}
	bluff := components.Vec3{X: 115, Y: body.Surface + p.maxStrikeHeight + 1, Z: 100}
	if h.StrikeReady(hold, bluff) {
		t.Error("prey above the lunge height is safe")
	}
	far := components.Vec3{X: 140, Z: 100}
	if h.StrikeReady(hold, far) {
		t.Error("prey beyond strike range is safe")
	}
}

func TestLurkerRelocateFallsBackToOwnPool(t *testing.T) {
	p := lurkerTestParams()
	body := world.WaterBody{Category: world.WaterLake, X: 100, Z: 100, Radius: 12, Surface: 0.4}
	reg := testRegistry(nil, []world.WaterBody{body})
	h := newWaterHabitat(reg, p, 0, 0, 1)

	near := components.Vec3{X: 100, Z: 130}
	if !h.Relocate(near, 1) {
		t.Fatal("the home pool is always a refuge")
	}
	if h.body != 0 {
		t.Fatalf("with no alternative pool the lurker keeps its own, got %d", h.body)
	}
	// The hold swings to the shore facing the retreat origin.
	got := h.Anchor()
	if math.Abs(float64(got.X-100)) > 1e-3 || math.Abs(float64(got.Z-110.5)) > 1e-3 {
		t.Errorf("hold point should face the retreat origin, got %+v", got)
	}
}
