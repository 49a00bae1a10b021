package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"
)

// Terrain shading cell size in world units. Coarse on purpose: this is
// a debug view, not the game renderer.
const terrainCell = 8.0

// Draw renders the top-down debug view of the simulation.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 24, B: 18, A: 255})

	g.drawTerrain()
	g.drawWater()
	g.drawTrees()
	g.drawPrey()
	g.drawAgents()
	g.drawTiger()
	if g.flashTimer > 0 {
		alpha := uint8(g.flashTimer / 0.3 * 110)
		rl.DrawRectangle(0, 0, int32(g.screenWidth), int32(g.screenHeight),
			rl.Color{R: 220, G: 40, B: 40, A: alpha})
	}

	g.drawHUD()
	if g.showPanel {
		g.drawPanel()
	}

	rl.EndDrawing()
}

// drawTerrain shades visible terrain cells by height.
func (g *Game) drawTerrain() {
	minX, minY, maxX, maxY := g.camera.VisibleWorldBounds()
	size := g.terrain.Size()
	minX = clampf(minX, 0, size)
	minY = clampf(minY, 0, size)
	maxX = clampf(maxX, 0, size)
	maxY = clampf(maxY, 0, size)

	startX := float32(math.Floor(float64(minX/terrainCell))) * terrainCell
	startZ := float32(math.Floor(float64(minY/terrainCell))) * terrainCell

	cellPx := terrainCell*g.camera.Zoom + 1
	maxH := float32(g.cfg.World.HeightScale)
	for wz := startZ; wz < maxY; wz += terrainCell {
		for wx := startX; wx < maxX; wx += terrainCell {
			h := g.terrain.HeightAt(wx+terrainCell/2, wz+terrainCell/2)
			t := clampf(h/maxH, 0, 1)
			col := rl.Color{
				R: uint8(40 + t*90),
				G: uint8(90 + t*70),
				B: uint8(40 + t*50),
				A: 255,
			}
			sx, sy := g.camera.WorldToScreen(wx, wz)
			rl.DrawRectangle(int32(sx), int32(sy), int32(cellPx), int32(cellPx), col)
		}
	}
}

// drawWater renders water bodies as discs.
func (g *Game) drawWater() {
	waterCol := rl.Color{R: 50, G: 110, B: 190, A: 220}
	for _, b := range g.water.Bodies() {
		if !g.camera.IsVisible(b.X, b.Z, b.Radius) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(b.X, b.Z)
		rl.DrawCircle(int32(sx), int32(sy), b.Radius*g.camera.Zoom, waterCol)
	}
}

// drawTrees renders tree canopies.
func (g *Game) drawTrees() {
	canopy := rl.Color{R: 30, G: 120, B: 45, A: 200}
	for i := range g.veg.Trees() {
		tr := &g.veg.Trees()[i]
		r := 2.5 * tr.Scale
		if !g.camera.IsVisible(tr.X, tr.Z, r) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(tr.X, tr.Z)
		rl.DrawCircle(int32(sx), int32(sy), r*g.camera.Zoom, canopy)
	}
}

// drawPrey renders grazers as small oriented triangles.
func (g *Game) drawPrey() {
	g.grazerBuf = g.herds.Snapshot(g.grazerBuf[:0])
	for _, gr := range g.grazerBuf {
		if !g.camera.IsVisible(gr.Pos.X, gr.Pos.Z, 2) {
			continue
		}
		col := rl.Color{R: 210, G: 200, B: 160, A: 255}
		if gr.Fleeing {
			col = rl.Color{R: 240, G: 150, B: 60, A: 255}
		}
		g.drawOrientedTriangle(gr.Pos.X, gr.Pos.Z, gr.Heading, 1.4, col)
	}
}

// Agent body colors per state.
func stateColor(s predator.State) rl.Color {
	switch s {
	case predator.StateHidden:
		return rl.Color{R: 120, G: 120, B: 130, A: 255}
	case predator.StateStalking:
		return rl.Color{R: 200, G: 170, B: 60, A: 255}
	case predator.StateAlert:
		return rl.Color{R: 235, G: 120, B: 40, A: 255}
	case predator.StateStrike:
		return rl.Color{R: 240, G: 60, B: 50, A: 255}
	case predator.StateGroundCombat:
		return rl.Color{R: 200, G: 40, B: 90, A: 255}
	case predator.StateRetreat:
		return rl.Color{R: 90, G: 140, B: 200, A: 255}
	default:
		return rl.Color{R: 70, G: 70, B: 80, A: 255}
	}
}

// drawAgents renders ambush agents, fading with concealment.
func (g *Game) drawAgents() {
	g.agentBuf = g.predators.ActiveAgents(g.agentBuf[:0])
	for _, a := range g.agentBuf {
		pos := a.Position()
		if !g.camera.IsVisible(pos.X, pos.Z, a.EffectiveDetectionRadius()) {
			continue
		}

		col := stateColor(a.State())
		// Concealed agents fade toward the terrain. Full concealment
		// still leaves a ghost so the debug view can track them.
		conceal := a.Concealment()
		col.A = uint8(255 - conceal*195)
		g.drawOrientedTriangle(pos.X, pos.Z, a.Heading(), 2.0, col)

		if g.showDetection {
			ring := rl.Color{R: 220, G: 60, B: 60, A: 90}
			sx, sy := g.camera.WorldToScreen(pos.X, pos.Z)
			rl.DrawCircleLines(int32(sx), int32(sy), a.EffectiveDetectionRadius()*g.camera.Zoom, ring)
		}
		if g.showWaypoints {
			anchor := a.HabitatAnchor()
			ax, ay := g.camera.WorldToScreen(anchor.X, anchor.Z)
			sx, sy := g.camera.WorldToScreen(pos.X, pos.Z)
			rl.DrawLine(int32(sx), int32(sy), int32(ax), int32(ay), rl.Color{R: 200, G: 200, B: 200, A: 60})
		}

		// Health bar when hurt
		if a.Health() < a.MaxHealth() {
			g.drawHealthBar(pos.X, pos.Z-3, a.Health()/a.MaxHealth())
		}
	}
}

// drawTiger renders the target as a larger oriented triangle.
func (g *Game) drawTiger() {
	pos := g.tiger.Position()
	if !g.camera.IsVisible(pos.X, pos.Z, 4) {
		return
	}
	col := rl.Color{R: 245, G: 140, B: 30, A: 255}
	if !g.tiger.Alive() {
		col = rl.Color{R: 120, G: 60, B: 30, A: 255}
	} else if g.tiger.KnockedDown() {
		col = rl.Color{R: 245, G: 220, B: 120, A: 255}
	}
	g.drawOrientedTriangle(pos.X, pos.Z, g.tiger.Heading(), 3.0, col)
	g.drawHealthBar(pos.X, pos.Z-4, g.tiger.Health()/g.tiger.MaxHealth())
}

// drawOrientedTriangle draws a triangle at (wx, wz) pointing along the
// heading, with the given half-length in world units.
func (g *Game) drawOrientedTriangle(wx, wz, heading, size float32, col rl.Color) {
	sin, cos := math.Sincos(float64(heading))
	fx, fz := float32(cos), float32(sin)
	// Perpendicular for the base corners
	px, pz := fz, -fx

	tipX, tipY := g.camera.WorldToScreen(wx+fx*size, wz+fz*size)
	leftX, leftY := g.camera.WorldToScreen(wx-fx*size*0.7+px*size*0.6, wz-fz*size*0.7+pz*size*0.6)
	rightX, rightY := g.camera.WorldToScreen(wx-fx*size*0.7-px*size*0.6, wz-fz*size*0.7-pz*size*0.6)

	rl.DrawTriangle(
		rl.Vector2{X: tipX, Y: tipY},
		rl.Vector2{X: leftX, Y: leftY},
		rl.Vector2{X: rightX, Y: rightY},
		col,
	)
}

// drawHealthBar draws a small bar above a unit.
func (g *Game) drawHealthBar(wx, wz, frac float32) {
	sx, sy := g.camera.WorldToScreen(wx, wz)
	w := 24 * g.camera.Zoom
	h := float32(3)
	rl.DrawRectangle(int32(sx-w/2), int32(sy), int32(w), int32(h), rl.Color{R: 40, G: 40, B: 40, A: 200})
	fill := rl.Color{R: 90, G: 200, B: 90, A: 230}
	if frac < 0.35 {
		fill = rl.Color{R: 220, G: 70, B: 50, A: 230}
	}
	rl.DrawRectangle(int32(sx-w/2), int32(sy), int32(w*clampf(frac, 0, 1)), int32(h), fill)
}

// drawHUD renders the awareness bar and the status line.
func (g *Game) drawHUD() {
	scorer := g.predators.Awareness()
	tier := scorer.Tier()
	r, gr, b := tier.Color()
	tierCol := rl.Color{R: r, G: gr, B: b, A: 255}

	// Awareness bar across the top
	barW := g.screenWidth - 40
	rl.DrawRectangle(20, 16, int32(barW), 14, rl.Color{R: 30, G: 30, B: 36, A: 220})
	rl.DrawRectangle(20, 16, int32(barW*scorer.Value()), 14, tierCol)
	rl.DrawText(tier.String(), 24, 14, 16, rl.White)

	// Awareness history sparkline under the bar
	g.historyBuf = scorer.History(g.historyBuf[:0])
	if n := len(g.historyBuf); n > 1 {
		step := barW / float32(n-1)
		for i := 1; i < n; i++ {
			x0 := 20 + step*float32(i-1)
			x1 := 20 + step*float32(i)
			y0 := 56 - g.historyBuf[i-1]*22
			y1 := 56 - g.historyBuf[i]*22
			rl.DrawLine(int32(x0), int32(y0), int32(x1), int32(y1), tierCol)
		}
	}

	st := g.predators.Statistics()
	status := fmt.Sprintf("tick %d  %s  hp %.0f  prey %d  stalkers %d  lurkers %d  speed %dx",
		g.tick, g.tiger.Stage().String(), g.tiger.Health(), g.herds.Count(), st.Stalkers, st.Lurkers, g.speed)
	if g.paused {
		status += "  [paused]"
	}
	rl.DrawText(status, 20, int32(g.screenHeight)-28, 18, rl.RayWhite)
}

func clampf(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
