package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// World state at window end
	TigerHealth float64 `csv:"tiger_health"`
	TigerStage  string  `csv:"tiger_stage"`
	PreyCount   int     `csv:"prey"`
	Stalkers    int     `csv:"stalkers"`
	Lurkers     int     `csv:"lurkers"`

	// Events during window
	StalkerSpawns int     `csv:"stalker_spawns"`
	LurkerSpawns  int     `csv:"lurker_spawns"`
	Strikes       int     `csv:"strikes"`
	StrikeHits    int     `csv:"strike_hits"`
	HitRate       float64 `csv:"hit_rate"`
	Knockdowns    int     `csv:"knockdowns"`
	Retreats      int     `csv:"retreats"`
	Defeats       int     `csv:"defeats"`
	PreyKills     int     `csv:"prey_kills"`
	StageUps      int     `csv:"stage_ups"`
	DamageDealt   float64 `csv:"damage_dealt"`
	DamageTaken   float64 `csv:"damage_taken"`

	// Awareness over the window
	AwarenessMean float64 `csv:"awareness_mean"`
	AwarenessStd  float64 `csv:"awareness_std"`
	AwarenessP90  float64 `csv:"awareness_p90"`
	AwarenessLast float64 `csv:"awareness_last"`
	Tier          string  `csv:"tier"`
	SinceAmbush   float64 `csv:"since_ambush"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// computeAwarenessStats summarizes the per-tick awareness samples of
// one window.
func computeAwarenessStats(values []float64) (mean, std, p90, last float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
		if math.IsNaN(std) {
			std = 0
		}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p90, values[n-1]
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("tiger_health", s.TigerHealth),
		slog.String("tiger_stage", s.TigerStage),
		slog.Int("prey", s.PreyCount),
		slog.Int("stalkers", s.Stalkers),
		slog.Int("lurkers", s.Lurkers),
		slog.Int("stalker_spawns", s.StalkerSpawns),
		slog.Int("lurker_spawns", s.LurkerSpawns),
		slog.Int("strikes", s.Strikes),
		slog.Int("strike_hits", s.StrikeHits),
		slog.Float64("hit_rate", s.HitRate),
		slog.Int("knockdowns", s.Knockdowns),
		slog.Int("retreats", s.Retreats),
		slog.Int("defeats", s.Defeats),
		slog.Int("prey_kills", s.PreyKills),
		slog.Int("stage_ups", s.StageUps),
		slog.Float64("damage_dealt", s.DamageDealt),
		slog.Float64("damage_taken", s.DamageTaken),
		slog.Float64("awareness_mean", s.AwarenessMean),
		slog.Float64("awareness_std", s.AwarenessStd),
		slog.Float64("awareness_p90", s.AwarenessP90),
		slog.Float64("awareness_last", s.AwarenessLast),
		slog.String("tier", s.Tier),
		slog.Float64("since_ambush", s.SinceAmbush),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"tiger_health", s.TigerHealth,
		"tiger_stage", s.TigerStage,
		"prey", s.PreyCount,
		"stalkers", s.Stalkers,
		"lurkers", s.Lurkers,
		"stalker_spawns", s.StalkerSpawns,
		"lurker_spawns", s.LurkerSpawns,
		"strikes", s.Strikes,
		"strike_hits", s.StrikeHits,
		"hit_rate", s.HitRate,
		"knockdowns", s.Knockdowns,
		"retreats", s.Retreats,
		"defeats", s.Defeats,
		"prey_kills", s.PreyKills,
		"stage_ups", s.StageUps,
		"damage_dealt", s.DamageDealt,
		"damage_taken", s.DamageTaken,
		"awareness_mean", s.AwarenessMean,
		"awareness_std", s.AwarenessStd,
		"awareness_p90", s.AwarenessP90,
		"awareness_last", s.AwarenessLast,
		"tier", s.Tier,
		"since_ambush", s.SinceAmbush,
	)
}
