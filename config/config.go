// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	World      WorldConfig      `yaml:"world"`
	Water      WaterConfig      `yaml:"water"`
	Vegetation VegetationConfig `yaml:"vegetation"`
	Tiger      TigerConfig      `yaml:"tiger"`
	Roam       RoamConfig       `yaml:"roam"`
	Awareness  AwarenessConfig  `yaml:"awareness"`
	Stalker    SpeciesConfig    `yaml:"stalker"`
	Lurker     SpeciesConfig    `yaml:"lurker"`
	Population PopulationConfig `yaml:"population"`
	Wildlife   WildlifeConfig   `yaml:"wildlife"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the debug view.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT       float64 `yaml:"dt"`       // Fixed simulation step in seconds
	Gravity  float64 `yaml:"gravity"`  // Downward acceleration for strike arcs
	MaxDelta float64 `yaml:"max_delta"` // Clamp for incoming frame deltas
}

// WorldConfig holds terrain generation parameters.
type WorldConfig struct {
	Size        float64 `yaml:"size"`         // Square world edge length in world units
	HeightScale float64 `yaml:"height_scale"` // Peak terrain height
	Frequency   float64 `yaml:"frequency"`    // Base noise frequency
	Octaves     int     `yaml:"octaves"`      // FBM octaves
	Lacunarity  float64 `yaml:"lacunarity"`   // Frequency multiplier per octave
	Gain        float64 `yaml:"gain"`         // Amplitude multiplier per octave
	SlopeStep   float64 `yaml:"slope_step"`   // Sample step for slope estimation
}

// WaterConfig holds water body generation parameters.
type WaterConfig struct {
	Bodies        int     `yaml:"bodies"`          // Target number of still bodies
	PlaceAttempts int     `yaml:"place_attempts"`  // Rejection sampling budget
	MinRadius     float64 `yaml:"min_radius"`
	MaxRadius     float64 `yaml:"max_radius"`
	LakeRadius    float64 `yaml:"lake_radius"`     // Radius at or above which a body is a lake
	MaxBasinHeight float64 `yaml:"max_basin_height"` // Bodies only settle below this terrain height
	SurfaceOffset float64 `yaml:"surface_offset"`  // Water surface above the basin floor
	RiverWidth    float64 `yaml:"river_width"`     // 0 disables the river strip
}

// VegetationConfig holds tree placement parameters.
type VegetationConfig struct {
	Trees         int     `yaml:"trees"`          // Target tree count
	PlaceAttempts int     `yaml:"place_attempts"` // Rejection sampling budget
	DensityFreq   float64 `yaml:"density_freq"`   // Noise frequency for grove clustering
	DensityFloor  float64 `yaml:"density_floor"`  // Minimum acceptance chance outside groves
	MinScale      float64 `yaml:"min_scale"`
	MaxScale      float64 `yaml:"max_scale"`
	CanopyHeight  float64 `yaml:"canopy_height"`  // Base canopy height before scale
	MaxSlope      float64 `yaml:"max_slope"`      // Planting limit
	WaterMargin   float64 `yaml:"water_margin"`   // Keep trunks this far from water
	CoverRadius   float64 `yaml:"cover_radius"`   // Radius for canopy cover sampling
}

// TigerConfig holds target parameters.
type TigerConfig struct {
	MaxHealth     float64 `yaml:"max_health"`
	WalkSpeed     float64 `yaml:"walk_speed"`
	RunSpeed      float64 `yaml:"run_speed"`
	CrouchSpeed   float64 `yaml:"crouch_speed"`
	IdleRegen     float64 `yaml:"idle_regen"`     // Health per second while idle
	CrouchStealth float64 `yaml:"crouch_stealth"` // Stealth effectiveness per movement state
	IdleStealth   float64 `yaml:"idle_stealth"`
	WalkStealth   float64 `yaml:"walk_stealth"`
	RunStealth    float64 `yaml:"run_stealth"`
	StageStealthBonus float64 `yaml:"stage_stealth_bonus"` // Added per stage past cub
	JuvenileAt    float64 `yaml:"juvenile_at"` // Nutrition thresholds for stage promotion
	AdultAt       float64 `yaml:"adult_at"`
	ApexAt        float64 `yaml:"apex_at"`
}

// RoamConfig holds scripted target movement parameters.
type RoamConfig struct {
	MinLeg       float64 `yaml:"min_leg"`       // Seconds per activity, lower bound
	MaxLeg       float64 `yaml:"max_leg"`       // Seconds per activity, upper bound
	RunChance    float64 `yaml:"run_chance"`    // Chance a trek leg is run instead of walked
	DrinkChance  float64 `yaml:"drink_chance"`  // Chance to head for water at retarget
	RestChance   float64 `yaml:"rest_chance"`   // Chance to idle at retarget
	DrinkRadius  float64 `yaml:"drink_radius"`  // Stop this close to the shoreline
	ArriveRadius float64 `yaml:"arrive_radius"`
}

// AwarenessConfig holds danger scoring parameters.
type AwarenessConfig struct {
	ProximityWeight   float64 `yaml:"proximity_weight"`
	MovementWeight    float64 `yaml:"movement_weight"`
	StealthWeight     float64 `yaml:"stealth_weight"`
	EnvironmentWeight float64 `yaml:"environment_weight"`
	MaxDistance       float64 `yaml:"max_distance"`        // Threats beyond this never register
	RiseRate          float64 `yaml:"rise_rate"`           // Blend rate when danger is increasing
	DecayRate         float64 `yaml:"decay_rate"`          // Blend rate when danger is falling
	ConcealmentPenalty float64 `yaml:"concealment_penalty"` // How strongly concealment shrinks spotting range
	CacheBucket       float64 `yaml:"cache_bucket"`        // Distance bucket width for the detection cache
	HistorySize       int     `yaml:"history_size"`
	NeutralEnvironment float64 `yaml:"neutral_environment"` // Environment factor when no sampler is wired
}

// SpeciesConfig holds per-species ambush agent parameters. The two
// species share the structure; geometry fields that only apply to one
// habitat are zero for the other.
type SpeciesConfig struct {
	MaxHealth          float64 `yaml:"max_health"`
	Power              float64 `yaml:"power"`
	HabitatSpeed       float64 `yaml:"habitat_speed"` // Canopy walk / submerged glide
	GroundSpeed        float64 `yaml:"ground_speed"`
	StrikeSpeed        float64 `yaml:"strike_speed"`
	DetectionRadius    float64 `yaml:"detection_radius"`
	DetectionMult      float64 `yaml:"detection_multiplier"` // Height or low-profile advantage
	StrikeRange        float64 `yaml:"strike_range"`
	MinHeightAdvantage float64 `yaml:"min_height_advantage"` // Stalkers: required drop onto the target
	MaxStrikeHeight    float64 `yaml:"max_strike_height"`    // Lurkers: target ceiling above the surface
	HitRange           float64 `yaml:"hit_range"`
	StrikeDuration     float64 `yaml:"strike_duration"`
	ArcFraction        float64 `yaml:"arc_fraction"`     // Portion of the strike spent airborne
	LaunchImpulse      float64 `yaml:"launch_impulse"`   // Upward velocity at strike start
	AlertDuration      float64 `yaml:"alert_duration"`   // Telegraph before the pounce
	StalkTimeout       float64 `yaml:"stalk_timeout"`    // Give up stalking after this long
	MaxFollow          float64 `yaml:"max_follow"`       // Break off beyond this distance
	CombatDuration     float64 `yaml:"combat_duration"`  // Ground combat commitment window
	CloseRange         float64 `yaml:"close_range"`
	SwipeChance        float64 `yaml:"swipe_chance"`     // Per AI tick within close range
	CombatDamageFactor float64 `yaml:"combat_damage_factor"`
	RetreatChance      float64 `yaml:"retreat_chance"`   // Roll when the combat window elapses
	LowHealthFrac      float64 `yaml:"low_health_frac"`  // Below this fraction, always retreat
	KnockdownChance    float64 `yaml:"knockdown_chance"`
	KnockdownDuration  float64 `yaml:"knockdown_duration"`
	CooldownDuration   float64 `yaml:"cooldown_duration"` // Post-strike recovery hold
	WaypointBandMin    float64 `yaml:"waypoint_band_min"` // Stalking ring around the target
	WaypointBandMax    float64 `yaml:"waypoint_band_max"`
	WaypointAlignMin   float64 `yaml:"waypoint_align_min"` // Direction agreement for route candidates
	ArriveRadius       float64 `yaml:"arrive_radius"`
	RelocateRadius     float64 `yaml:"relocate_radius"` // Retreat site search radius

	// Site eligibility
	MinTreeScale     float64 `yaml:"min_tree_scale"`     // Stalkers
	MinWaterDistance float64 `yaml:"min_water_distance"` // Stalkers
	MaxSiteSlope     float64 `yaml:"max_site_slope"`     // Stalkers
	MinBodyRadius    float64 `yaml:"min_body_radius"`    // Lurkers
	ShoreMargin      float64 `yaml:"shore_margin"`       // Lurkers hold this far inside the edge
	SubmergeDepth    float64 `yaml:"submerge_depth"`     // Lurkers hold this far below the surface
}

// PopulationConfig holds ambush population management parameters.
type PopulationConfig struct {
	MaxStalkers        int       `yaml:"max_stalkers"`
	MaxLurkers         int       `yaml:"max_lurkers"`
	AmbushCooldown     float64   `yaml:"ambush_cooldown"`      // Seconds after a successful ambush before spawning resumes
	SpawnCheckInterval float64   `yaml:"spawn_check_interval"` // Seconds between spawn passes
	BaseSpawnChance    float64   `yaml:"base_spawn_chance"`    // Per-species roll during a spawn pass
	StageScale         []float64 `yaml:"stage_scale"`          // Spawn chance multiplier per evolution stage
	SpawnRadiusMin     float64   `yaml:"spawn_radius_min"`     // Standoff band around the target
	SpawnRadiusMax     float64   `yaml:"spawn_radius_max"`
	AITickRate         float64   `yaml:"ai_tick_rate"` // Fixed agent update rate in Hz
}

// WildlifeConfig holds prey herd parameters.
type WildlifeConfig struct {
	Herds           int     `yaml:"herds"`
	HerdSize        int     `yaml:"herd_size"`
	MaxPopulation   int     `yaml:"max_population"`
	FlightDistance  float64 `yaml:"flight_distance"`
	StealthDiscount float64 `yaml:"stealth_discount"` // How much target stealth shrinks flight distance
	GrazeSpeed      float64 `yaml:"graze_speed"`
	FleeSpeed       float64 `yaml:"flee_speed"`
	FleeDuration    float64 `yaml:"flee_duration"`
	CatchRange      float64 `yaml:"catch_range"`
	KillReward      float64 `yaml:"kill_reward"`      // Nutrition per kill
	RespawnInterval float64 `yaml:"respawn_interval"` // Seconds between restock checks
	GridCellSize    float64 `yaml:"grid_cell_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	Gravity32      float32
	MaxDelta32     float32
	WorldSize32    float32
	AITickInterval float32   // 1 / Population.AITickRate
	StageScale32   []float32 // Population.StageScale as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// Default returns the embedded default configuration. Intended for tests.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// validate rejects configurations the simulation cannot run with.
func (c *Config) validate() error {
	w := c.Awareness
	sum := w.ProximityWeight + w.MovementWeight + w.StealthWeight + w.EnvironmentWeight
	if w.ProximityWeight < 0 || w.MovementWeight < 0 || w.StealthWeight < 0 || w.EnvironmentWeight < 0 {
		return fmt.Errorf("awareness weights must be non-negative")
	}
	if math.Abs(sum-1.0) > 1e-3 {
		return fmt.Errorf("awareness weights must sum to 1.0, got %.4f", sum)
	}
	if c.Population.MaxStalkers < 0 || c.Population.MaxLurkers < 0 {
		return fmt.Errorf("population caps must be non-negative")
	}
	if c.Population.AITickRate <= 0 {
		return fmt.Errorf("population ai_tick_rate must be positive, got %.4f", c.Population.AITickRate)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics dt must be positive, got %.4f", c.Physics.DT)
	}
	if c.World.Size <= 0 {
		return fmt.Errorf("world size must be positive, got %.1f", c.World.Size)
	}
	for _, name := range []string{"stalker", "lurker"} {
		sc := c.Stalker
		if name == "lurker" {
			sc = c.Lurker
		}
		if sc.MaxHealth <= 0 {
			return fmt.Errorf("%s max_health must be positive", name)
		}
		if sc.StrikeSpeed <= 0 {
			return fmt.Errorf("%s strike_speed must be positive", name)
		}
		if sc.StrikeDuration <= 0 {
			return fmt.Errorf("%s strike_duration must be positive", name)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.Gravity32 = float32(c.Physics.Gravity)
	c.Derived.MaxDelta32 = float32(c.Physics.MaxDelta)
	c.Derived.WorldSize32 = float32(c.World.Size)
	c.Derived.AITickInterval = float32(1.0 / c.Population.AITickRate)

	// Stage scaling defaults to neutral when unspecified or short
	scale := make([]float32, 4)
	for i := range scale {
		if i < len(c.Population.StageScale) {
			scale[i] = float32(c.Population.StageScale[i])
		} else {
			scale[i] = 1.0
		}
	}
	c.Derived.StageScale32 = scale
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
