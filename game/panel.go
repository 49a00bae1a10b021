package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panelWidth  = 230
	panelMargin = 12
)

// drawPanel renders the control panel on the right edge.
func (g *Game) drawPanel() {
	x := g.screenWidth - panelWidth - panelMargin
	y := float32(70)

	rl.DrawRectangle(int32(x), int32(y), panelWidth, 240, rl.Color{R: 24, G: 26, B: 32, A: 230})
	rl.DrawText("controls", int32(x)+10, int32(y)+8, 16, rl.RayWhite)
	y += 34

	label := "pause"
	if g.paused {
		label = "resume"
	}
	if gui.Button(rl.Rectangle{X: x + 10, Y: y, Width: 100, Height: 24}, label) {
		g.paused = !g.paused
	}
	y += 34

	rl.DrawText(fmt.Sprintf("speed %dx", g.speed), int32(x)+10, int32(y), 14, rl.LightGray)
	y += 18
	speed := gui.SliderBar(rl.Rectangle{X: x + 10, Y: y, Width: panelWidth - 20, Height: 18},
		"1", "10", float32(g.speed), 1, 10)
	g.speed = int(speed + 0.5)
	y += 30

	if gui.Button(rl.Rectangle{X: x + 10, Y: y, Width: panelWidth - 20, Height: 24},
		onOff("detection rings", g.showDetection)) {
		g.showDetection = !g.showDetection
	}
	y += 30
	if gui.Button(rl.Rectangle{X: x + 10, Y: y, Width: panelWidth - 20, Height: 24},
		onOff("habitat lines", g.showWaypoints)) {
		g.showWaypoints = !g.showWaypoints
	}
	y += 34

	st := g.predators.Statistics()
	rl.DrawText(fmt.Sprintf("spawned %d  ambushes %d", st.TotalSpawned, st.TotalAmbushes),
		int32(x)+10, int32(y), 14, rl.LightGray)
	y += 18
	rl.DrawText(fmt.Sprintf("defeated %d  since ambush %.0fs", st.TotalDefeated, st.SinceAmbush),
		int32(x)+10, int32(y), 14, rl.LightGray)
}

func onOff(name string, on bool) string {
	if on {
		return name + ": on"
	}
	return name + ": off"
}
