package telemetry

import (
	"math"
	"testing"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"
)

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(10.0, 1.0/60) // 600 ticks per window

	if c.WindowDurationTicks() != 600 {
		t.Fatalf("WindowDurationTicks() = %d, want 600", c.WindowDurationTicks())
	}
	if c.ShouldFlush(599) {
		t.Error("ShouldFlush(599) = true, want false")
	}
	if !c.ShouldFlush(600) {
		t.Error("ShouldFlush(600) = false, want true")
	}

	c.Flush(600, Snapshot{})
	if c.ShouldFlush(601) {
		t.Error("ShouldFlush just after flush = true, want false")
	}
	if !c.ShouldFlush(1200) {
		t.Error("ShouldFlush one window after flush = false, want true")
	}
}

func TestCollectorFlushAggregatesAndResets(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)

	c.Record(NewAgentSpawnEvent(1, 1, predator.SpeciesStalker))
	c.Record(NewAgentSpawnEvent(2, 2, predator.SpeciesLurker))
	c.Record(NewStrikeEvent(10, 1, predator.SpeciesStalker))
	c.Record(NewStrikeEvent(20, 2, predator.SpeciesLurker))
	c.Record(NewStrikeHitEvent(21, 2, predator.SpeciesLurker, 60))
	c.Record(NewKnockdownEvent(21, 2, predator.SpeciesLurker))
	c.Record(NewRetreatEvent(30, 1, predator.SpeciesStalker))
	c.Record(NewAgentDefeatEvent(40, 2, predator.SpeciesLurker))
	c.Record(NewPreyKillEvent(50))
	c.RecordDamageTaken(25)
	c.RecordAwareness(0.2)
	c.RecordAwareness(0.4)

	stats := c.Flush(60, Snapshot{
		TigerHealth: 190,
		TigerStage:  "adult",
		PreyCount:   30,
		Stalkers:    1,
		Lurkers:     1,
		SinceAmbush: 3.5,
		Tier:        "danger",
	})

	if stats.StalkerSpawns != 1 || stats.LurkerSpawns != 1 {
		t.Errorf("spawns = %d/%d, want 1/1", stats.StalkerSpawns, stats.LurkerSpawns)
	}
	if stats.Strikes != 2 || stats.StrikeHits != 1 {
		t.Errorf("strikes/hits = %d/%d, want 2/1", stats.Strikes, stats.StrikeHits)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", stats.HitRate)
	}
	if stats.Knockdowns != 1 || stats.Retreats != 1 || stats.Defeats != 1 || stats.PreyKills != 1 {
		t.Errorf("knockdowns/retreats/defeats/kills = %d/%d/%d/%d, want all 1",
			stats.Knockdowns, stats.Retreats, stats.Defeats, stats.PreyKills)
	}
	if stats.DamageDealt != 60 {
		t.Errorf("DamageDealt = %v, want 60", stats.DamageDealt)
	}
	if stats.DamageTaken != 25 {
		t.Errorf("DamageTaken = %v, want 25", stats.DamageTaken)
	}
	if math.Abs(stats.AwarenessMean-0.3) > 1e-9 {
		t.Errorf("AwarenessMean = %v, want 0.3", stats.AwarenessMean)
	}
	if stats.AwarenessLast != 0.4 {
		t.Errorf("AwarenessLast = %v, want 0.4", stats.AwarenessLast)
	}
	if stats.TigerHealth != 190 || stats.TigerStage != "adult" || stats.Tier != "danger" {
		t.Errorf("snapshot fields not carried through: %+v", stats)
	}

	// Second window starts clean.
	empty := c.Flush(120, Snapshot{})
	if empty.Strikes != 0 || empty.StrikeHits != 0 || empty.DamageDealt != 0 || empty.AwarenessMean != 0 {
		t.Errorf("counters not reset after flush: %+v", empty)
	}
	if empty.WindowStartTick != 60 {
		t.Errorf("WindowStartTick = %d, want 60", empty.WindowStartTick)
	}
}

func TestCollectorHitRateWithoutStrikes(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)
	stats := c.Flush(60, Snapshot{})
	if stats.HitRate != 0 {
		t.Errorf("HitRate with no strikes = %v, want 0", stats.HitRate)
	}
}
