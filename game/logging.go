package game

import "log/slog"

// logWorldSummary emits a one-line description of the generated world.
func (g *Game) logWorldSummary() {
	slog.Info("world ready",
		"seed", g.seed,
		"size", g.terrain.Size(),
		"water_bodies", len(g.water.Bodies()),
		"trees", len(g.veg.Trees()),
		"prey", g.herds.Count(),
		"tiger_x", g.tiger.Position().X,
		"tiger_z", g.tiger.Position().Z,
	)
}

// logWriteError reports a failed CSV write without aborting the run.
func logWriteError(what string, err error) {
	slog.Error("telemetry write failed", "file", what, "error", err)
}
