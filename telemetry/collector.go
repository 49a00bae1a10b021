package telemetry

import "github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"

// Collector accumulates events within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	stalkerSpawns int
	lurkerSpawns  int
	strikes       int
	strikeHits    int
	knockdowns    int
	retreats      int
	defeats       int
	preyKills     int
	stageUps      int
	damageDealt   float64 // to the tiger
	damageTaken   float64 // by agents

	// Awareness samples over the window
	awareness []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// Record folds a single event into the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventAgentSpawn:
		if e.Species == predator.SpeciesStalker {
			c.stalkerSpawns++
		} else {
			c.lurkerSpawns++
		}
	case EventStrike:
		c.strikes++
	case EventStrikeHit:
		c.strikeHits++
		c.damageDealt += float64(e.Amount)
	case EventKnockdown:
		c.knockdowns++
	case EventRetreat:
		c.retreats++
	case EventAgentDefeat:
		c.defeats++
	case EventPreyKill:
		c.preyKills++
	case EventStageUp:
		c.stageUps++
	}
}

// RecordDamageTaken records damage the tiger dealt to an agent.
func (c *Collector) RecordDamageTaken(amount float32) {
	c.damageTaken += float64(amount)
}

// RecordAwareness samples the awareness score once per tick.
func (c *Collector) RecordAwareness(value float32) {
	c.awareness = append(c.awareness, float64(value))
}

// ShouldFlush returns true if enough ticks have passed to flush the
// window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Snapshot holds the instantaneous world state sampled at window end.
type Snapshot struct {
	TigerHealth float32
	TigerStage  string
	PreyCount   int
	Stalkers    int
	Lurkers     int
	SinceAmbush float32
	Tier        string
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, snap Snapshot) WindowStats {
	var hitRate float64
	if c.strikes > 0 {
		hitRate = float64(c.strikeHits) / float64(c.strikes)
	}

	awMean, awStd, awP90, awLast := computeAwarenessStats(c.awareness)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		TigerHealth: float64(snap.TigerHealth),
		TigerStage:  snap.TigerStage,
		PreyCount:   snap.PreyCount,
		Stalkers:    snap.Stalkers,
		Lurkers:     snap.Lurkers,

		StalkerSpawns: c.stalkerSpawns,
		LurkerSpawns:  c.lurkerSpawns,
		Strikes:       c.strikes,
		StrikeHits:    c.strikeHits,
		HitRate:       hitRate,
		Knockdowns:    c.knockdowns,
		Retreats:      c.retreats,
		Defeats:       c.defeats,
		PreyKills:     c.preyKills,
		StageUps:      c.stageUps,
		DamageDealt:   c.damageDealt,
		DamageTaken:   c.damageTaken,

		AwarenessMean: awMean,
		AwarenessStd:  awStd,
		AwarenessP90:  awP90,
		AwarenessLast: awLast,
		Tier:          snap.Tier,
		SinceAmbush:   float64(snap.SinceAmbush),
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.stalkerSpawns = 0
	c.lurkerSpawns = 0
	c.strikes = 0
	c.strikeHits = 0
	c.knockdowns = 0
	c.retreats = 0
	c.defeats = 0
	c.preyKills = 0
	c.stageUps = 0
	c.damageDealt = 0
	c.damageTaken = 0
	c.awareness = c.awareness[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
