package game

import (
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/telemetry"
)

// buildHooks wires controller events into the collector, the hunt
// tracker, and the run totals.
func (g *Game) buildHooks() predator.EffectHooks {
	return predator.EffectHooks{
		AgentSpawned: func(a *predator.Agent) {
			g.collector.Record(telemetry.NewAgentSpawnEvent(g.tick, a.ID(), a.Species()))
			g.hunts.Register(a.ID(), a.Species(), g.tick)
		},
		StrikeLaunched: func(a *predator.Agent) {
			g.collector.Record(telemetry.NewStrikeEvent(g.tick, a.ID(), a.Species()))
			g.hunts.RecordStrike(a.ID())
			g.totalStrikes++
		},
		AmbushStrike: func(a *predator.Agent, knockdown bool) {
			dmg := a.Power()
			g.collector.Record(telemetry.NewStrikeHitEvent(g.tick, a.ID(), a.Species(), dmg))
			if knockdown {
				g.collector.Record(telemetry.NewKnockdownEvent(g.tick, a.ID(), a.Species()))
				g.totalKnockdowns++
			}
			g.hunts.RecordHit(a.ID(), dmg, knockdown)
			g.totalHits++
			g.flashTimer = 0.3
		},
		AgentRetreated: func(a *predator.Agent) {
			g.collector.Record(telemetry.NewRetreatEvent(g.tick, a.ID(), a.Species()))
		},
		AgentDefeated: func(a *predator.Agent) {
			g.collector.Record(telemetry.NewAgentDefeatEvent(g.tick, a.ID(), a.Species()))
			g.totalDefeats++
			if r := g.hunts.Close(a.ID(), g.tick, telemetry.OutcomeKilled); r != nil {
				if err := g.output.WriteHunt(r); err != nil {
					logWriteError("hunt", err)
				}
			}
		},
	}
}
