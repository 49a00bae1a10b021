// Package game wires the world, the tiger, the herds, and the ambush
// predators into a runnable simulation with an optional debug view.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/camera"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/telemetry"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/tiger"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/wildlife"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/world"
)

// Tiger swipe tuning for ground combat retaliation.
const (
	swipeInterval = 1.0  // seconds between swipes
	swipeDamage   = 14.0 // base damage, scaled by stage
)

// Options configures game initialization.
type Options struct {
	Seed           int64   // RNG seed (0 = time-based)
	ConfigPath     string  // unused when Config is set; kept for logging
	Headless       bool    // skip all rendering state
	LogStats       bool    // emit window stats via slog
	StatsWindowSec float64 // stats window length (0 = config value)
	OutputDir      string  // CSV output directory ("" = disabled)
	MaxTicks       int32   // stop RunHeadless after N ticks (0 = unlimited)
	Speed          int     // initial steps per update in graphical mode (0 = 1)

	// Config overrides the global config for this instance. Used by
	// the calibrator to run many configs side by side.
	Config *config.Config

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// ExitStats summarizes a finished headless run.
type ExitStats struct {
	Ticks       int32
	SimTimeSec  float64
	TigerAlive  bool
	TigerHealth float32
	TigerStage  string
	Strikes     int
	Hits        int
	Knockdowns  int
	Defeats     int
	PreyKills   int
	// Fraction of sim time the awareness tier was danger or imminent.
	DangerTimeFrac float64
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	opts Options
	rng  *rand.Rand
	seed int64

	terrain *world.Terrain
	water   *world.Water
	veg     *world.Vegetation

	tiger     *tiger.Tiger
	roamer    *tiger.Roamer
	herds     *wildlife.System
	predators *predator.Controller

	collector *telemetry.Collector
	hunts     *telemetry.HuntTracker
	output    *telemetry.OutputManager
	perf      *telemetry.PerfCollector

	camera *camera.Camera

	tick   int32
	paused bool
	speed  int // simulation steps per update (1-10)

	// Retaliation clock
	swipeAccum float32

	// Screen flash countdown after an ambush lands
	flashTimer float32

	prevStage components.Stage

	// Run totals for exit stats
	totalStrikes    int
	totalHits       int
	totalKnockdowns int
	totalDefeats    int
	totalPreyKills  int
	dangerTimeSec   float64

	// Debug view state
	screenWidth   float32
	screenHeight  float32
	showDetection bool
	showWaypoints bool
	showPanel     bool

	// Reusable buffers
	agentBuf   []*predator.Agent
	grazerBuf  []wildlife.GrazerInfo
	historyBuf []float32
	idBuf      []uint32
	liveIDs    map[uint32]bool
}

// NewGame builds a full simulation from options.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	speed := opts.Speed
	if speed < 1 {
		speed = 1
	}
	if speed > 10 {
		speed = 10
	}

	g := &Game{
		cfg:          cfg,
		opts:         opts,
		rng:          rng,
		seed:         seed,
		speed:        speed,
		showPanel:    true,
		screenWidth:  float32(cfg.Screen.Width),
		screenHeight: float32(cfg.Screen.Height),
		liveIDs:      make(map[uint32]bool, 8),
	}

	// World generation: terrain first, water settles into its basins,
	// trees avoid both.
	g.terrain = world.NewTerrain(&cfg.World, rng.Int63())
	g.water = world.GenerateWater(g.terrain, &cfg.Water, rng)
	g.veg = world.GenerateVegetation(g.terrain, g.water, &cfg.Vegetation, rng)

	g.tiger = tiger.New(&cfg.Tiger, g.terrain, g.findSpawnSite())
	g.roamer = tiger.NewRoamer(&cfg.Roam, rng)
	g.prevStage = g.tiger.Stage()

	g.herds = wildlife.NewSystem(cfg, g.terrain, g.water, rng)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.hunts = telemetry.NewHuntTracker(cfg.Derived.DT32)
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g.output = om
	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	ctrl, err := predator.NewController(cfg, g.terrain, g.water, g.veg, rng, g.buildHooks())
	if err != nil {
		g.output.Close()
		return nil, fmt.Errorf("game: %w", err)
	}
	g.predators = ctrl

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, g.terrain.Size(), g.terrain.Size())
	}

	g.logWorldSummary()
	return g, nil
}

// findSpawnSite picks a dry, flat starting point for the tiger.
func (g *Game) findSpawnSite() components.Vec3 {
	size := g.terrain.Size()
	for attempt := 0; attempt < 200; attempt++ {
		x := size * (0.2 + 0.6*g.rng.Float32())
		z := size * (0.2 + 0.6*g.rng.Float32())
		if g.terrain.SlopeAt(x, z) > 0.5 {
			continue
		}
		if g.water.DistanceToWater(x, z) < 6 {
			continue
		}
		return components.Vec3{X: x, Z: z}
	}
	c := size * 0.5
	return components.Vec3{X: c, Z: c}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Seed returns the seed this run was built from.
func (g *Game) Seed() int64 {
	return g.seed
}

// Tiger exposes the target for tests and panels.
func (g *Game) Tiger() *tiger.Tiger {
	return g.tiger
}

// Predators exposes the controller for tests and panels.
func (g *Game) Predators() *predator.Controller {
	return g.predators
}

// PreyCount returns the live prey population.
func (g *Game) PreyCount() int {
	return g.herds.Count()
}

// Unload releases the controller, drains open hunt records, and closes
// output files. Safe to call twice.
func (g *Game) Unload() {
	if g.predators != nil {
		for _, r := range g.hunts.CloseAll(g.tick, telemetry.OutcomeDisposed) {
			if err := g.output.WriteHunt(r); err != nil {
				logWriteError("hunt", err)
			}
		}
		g.predators.Dispose()
	}
	if err := g.output.Close(); err != nil {
		logWriteError("output", err)
	}
	g.output = nil
}
