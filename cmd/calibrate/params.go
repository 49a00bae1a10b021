// Package main provides CMA-ES calibration for the ambush difficulty
// parameters.
package main

import (
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
)

// ParamSpec defines a single calibratable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all calibratable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibratable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Awareness weights. The four are renormalized to sum to
			// 1.0 on apply, so only their relative sizes matter here.
			{Name: "aw_proximity", Path: "awareness.proximity_weight", Min: 0.15, Max: 0.60, Default: 0.40},
			{Name: "aw_movement", Path: "awareness.movement_weight", Min: 0.10, Max: 0.45, Default: 0.25},
			{Name: "aw_stealth", Path: "awareness.stealth_weight", Min: 0.05, Max: 0.40, Default: 0.20},
			{Name: "aw_environment", Path: "awareness.environment_weight", Min: 0.05, Max: 0.30, Default: 0.15},
			// Awareness dynamics
			{Name: "rise_rate", Path: "awareness.rise_rate", Min: 0.5, Max: 6.0, Default: 2.5},
			{Name: "decay_rate", Path: "awareness.decay_rate", Min: 0.2, Max: 2.0, Default: 0.8},
			// Species lethality
			{Name: "stalker_power", Path: "stalker.power", Min: 25, Max: 70, Default: 45},
			{Name: "stalker_strike_range", Path: "stalker.strike_range", Min: 8, Max: 16, Default: 12},
			{Name: "stalker_knockdown", Path: "stalker.knockdown_chance", Min: 0.1, Max: 0.6, Default: 0.35},
			{Name: "lurker_power", Path: "lurker.power", Min: 35, Max: 90, Default: 60},
			{Name: "lurker_strike_range", Path: "lurker.strike_range", Min: 6, Max: 14, Default: 10},
			{Name: "lurker_knockdown", Path: "lurker.knockdown_chance", Min: 0.2, Max: 0.8, Default: 0.55},
			// Population pressure
			{Name: "base_spawn_chance", Path: "population.base_spawn_chance", Min: 0.05, Max: 0.60, Default: 0.25},
			{Name: "ambush_cooldown", Path: "population.ambush_cooldown", Min: 10, Max: 60, Default: 30},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	// Awareness weights, renormalized to sum to 1.0
	wp := clamped[i]
	i++
	wm := clamped[i]
	i++
	ws := clamped[i]
	i++
	we := clamped[i]
	i++
	sum := wp + wm + ws + we
	cfg.Awareness.ProximityWeight = wp / sum
	cfg.Awareness.MovementWeight = wm / sum
	cfg.Awareness.StealthWeight = ws / sum
	cfg.Awareness.EnvironmentWeight = we / sum

	cfg.Awareness.RiseRate = clamped[i]
	i++
	cfg.Awareness.DecayRate = clamped[i]
	i++

	cfg.Stalker.Power = clamped[i]
	i++
	cfg.Stalker.StrikeRange = clamped[i]
	i++
	cfg.Stalker.KnockdownChance = clamped[i]
	i++
	cfg.Lurker.Power = clamped[i]
	i++
	cfg.Lurker.StrikeRange = clamped[i]
	i++
	cfg.Lurker.KnockdownChance = clamped[i]
	i++

	cfg.Population.BaseSpawnChance = clamped[i]
	i++
	cfg.Population.AmbushCooldown = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Awareness.ProximityWeight,
		cfg.Awareness.MovementWeight,
		cfg.Awareness.StealthWeight,
		cfg.Awareness.EnvironmentWeight,
		cfg.Awareness.RiseRate,
		cfg.Awareness.DecayRate,
		cfg.Stalker.Power,
		cfg.Stalker.StrikeRange,
		cfg.Stalker.KnockdownChance,
		cfg.Lurker.Power,
		cfg.Lurker.StrikeRange,
		cfg.Lurker.KnockdownChance,
		cfg.Population.BaseSpawnChance,
		cfg.Population.AmbushCooldown,
	}
}
