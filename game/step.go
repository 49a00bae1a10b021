package game

import (
	"log/slog"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/telemetry"
)

// How far the tiger can reach an engaged attacker.
const tigerReach = 3.0

// Step advances the simulation by one fixed tick.
func (g *Game) Step() {
	dt := g.cfg.Derived.DT32

	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseTarget)
	g.roamer.Steer(g.tiger, dt, g.terrain, g.water)
	g.tiger.Update(dt)

	g.perf.StartPhase(telemetry.PhaseWildlife)
	if kills := g.herds.Update(dt, g.tiger); kills > 0 {
		g.totalPreyKills += kills
		g.collector.Record(telemetry.NewPreyKillEvent(g.tick))
	}
	if stage := g.tiger.Stage(); stage != g.prevStage {
		g.prevStage = stage
		g.collector.Record(telemetry.NewStageUpEvent(g.tick, stage))
		slog.Info("stage up", "stage", stage.String(), "tick", g.tick)
	}

	g.perf.StartPhase(telemetry.PhasePredators)
	wasAlive := g.tiger.Alive()
	g.predators.Update(dt, g.tiger)
	g.retaliate(dt)
	g.closeRetiredHunts()
	if wasAlive && !g.tiger.Alive() {
		g.collector.Record(telemetry.NewTigerDeathEvent(g.tick))
		slog.Info("tiger killed", "tick", g.tick, "source", g.tiger.LastDamageSource())
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	scorer := g.predators.Awareness()
	g.collector.RecordAwareness(scorer.Value())
	if scorer.Tier() >= predator.TierDanger {
		g.dangerTimeSec += float64(dt)
	}

	if g.flashTimer > 0 {
		g.flashTimer -= dt
	}

	g.tick++
	g.flushTelemetry()

	g.perf.EndTick()
}

// retaliate lets the tiger claw back at attackers pressing it on the
// ground. One swipe per interval against the nearest engaged agent.
func (g *Game) retaliate(dt float32) {
	if !g.tiger.Alive() || g.tiger.KnockedDown() {
		return
	}
	g.swipeAccum += dt
	if g.swipeAccum < swipeInterval {
		return
	}

	tpos := g.tiger.Position()
	var target *predator.Agent
	var bestD float32
	g.agentBuf = g.predators.ActiveAgents(g.agentBuf[:0])
	for _, a := range g.agentBuf {
		if a.State() != predator.StateGroundCombat {
			continue
		}
		d := tpos.DistXZ(a.Position())
		if d > tigerReach {
			continue
		}
		if target == nil || d < bestD {
			target = a
			bestD = d
		}
	}
	if target == nil {
		return
	}

	g.swipeAccum = 0
	dmg := float32(swipeDamage) * g.cfg.Derived.StageScale32[g.tiger.Stage()]
	target.TakeDamage(dmg)
	g.hunts.RecordDamageTaken(target.ID(), dmg)
	g.collector.RecordDamageTaken(dmg)
}

// closeRetiredHunts drains records for agents that despawned without a
// defeat (successful retreats past the follow limit).
func (g *Game) closeRetiredHunts() {
	g.agentBuf = g.predators.ActiveAgents(g.agentBuf[:0])
	if len(g.agentBuf) == g.hunts.Count() {
		return
	}
	clear(g.liveIDs)
	for _, a := range g.agentBuf {
		g.liveIDs[a.ID()] = true
	}
	g.idBuf = g.hunts.IDs(g.idBuf[:0])
	for _, id := range g.idBuf {
		if g.liveIDs[id] {
			continue
		}
		if r := g.hunts.Close(id, g.tick, telemetry.OutcomeRetired); r != nil {
			if err := g.output.WriteHunt(r); err != nil {
				logWriteError("hunt", err)
			}
		}
	}
}

// flushTelemetry checks if the stats window should be flushed and
// writes it out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	pstats := g.predators.Statistics()
	stats := g.collector.Flush(g.tick, telemetry.Snapshot{
		TigerHealth: g.tiger.Health(),
		TigerStage:  g.tiger.Stage().String(),
		PreyCount:   g.herds.Count(),
		Stalkers:    pstats.Stalkers,
		Lurkers:     pstats.Lurkers,
		SinceAmbush: pstats.SinceAmbush,
		Tier:        pstats.Tier.String(),
	})
	perfStats := g.perf.Stats()

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteStats(stats); err != nil {
		logWriteError("stats", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		logWriteError("perf", err)
	}
}

// RunHeadless steps the simulation until the tick limit or the tiger's
// death and returns the run summary.
func (g *Game) RunHeadless() ExitStats {
	for g.tiger.Alive() {
		if g.opts.MaxTicks > 0 && g.tick >= g.opts.MaxTicks {
			break
		}
		g.Step()
	}

	stats := g.exitStats()
	slog.Info("run finished",
		"ticks", stats.Ticks,
		"sim_time", stats.SimTimeSec,
		"tiger_alive", stats.TigerAlive,
		"tiger_health", stats.TigerHealth,
		"tiger_stage", stats.TigerStage,
		"strikes", stats.Strikes,
		"hits", stats.Hits,
		"defeats", stats.Defeats,
		"prey_kills", stats.PreyKills,
		"danger_time_frac", stats.DangerTimeFrac,
	)
	return stats
}

func (g *Game) exitStats() ExitStats {
	simTime := float64(g.tick) * float64(g.cfg.Derived.DT32)
	frac := 0.0
	if simTime > 0 {
		frac = g.dangerTimeSec / simTime
	}
	return ExitStats{
		Ticks:          g.tick,
		SimTimeSec:     simTime,
		TigerAlive:     g.tiger.Alive(),
		TigerHealth:    g.tiger.Health(),
		TigerStage:     g.tiger.Stage().String(),
		Strikes:        g.totalStrikes,
		Hits:           g.totalHits,
		Knockdowns:     g.totalKnockdowns,
		Defeats:        g.totalDefeats,
		PreyKills:      g.totalPreyKills,
		DangerTimeFrac: frac,
	}
}
