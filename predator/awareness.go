// Package predator implements the ambush AI: the danger awareness
// scorer, the shared agent state machine with its two habitat
// strategies, and the population controller that owns both species.
package predator

import (
	"math"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
)

// Tier quantizes awareness for UI use.
type Tier uint8

const (
	TierSafe Tier = iota
	TierAlert
	TierDanger
	TierImminent
)

// Tier thresholds are fixed; tuning happens through the factor weights.
const (
	tierAlertAt    = 0.2
	tierDangerAt   = 0.4
	tierImminentAt = 0.6
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierAlert:
		return "alert"
	case TierDanger:
		return "danger"
	case TierImminent:
		return "imminent"
	default:
		return "unknown"
	}
}

// Color returns the indicator color for the tier.
func (t Tier) Color() (r, g, b uint8) {
	switch t {
	case TierSafe:
		return 80, 200, 120
	case TierAlert:
		return 235, 200, 60
	case TierDanger:
		return 240, 140, 40
	default:
		return 220, 50, 50
	}
}

// TierFor maps a smoothed awareness value to its tier.
func TierFor(v float32) Tier {
	switch {
	case v < tierAlertAt:
		return TierSafe
	case v < tierDangerAt:
		return TierAlert
	case v < tierImminentAt:
		return TierDanger
	default:
		return TierImminent
	}
}

// Movement factor by gait. Running is the loudest thing a tiger does.
const (
	movementRun    = 1.0
	movementWalk   = 0.55
	movementIdle   = 0.30
	movementCrouch = 0.10
)

// EnvironmentSampler supplies local ambient concealment around the
// target. Dense cover hides ambushers, so it raises the score.
type EnvironmentSampler interface {
	ConcealmentAt(x, z float32) float32
}

type detectKey struct {
	id     uint32
	bucket int32
}

// Scorer maintains the target's smoothed danger awareness.
type Scorer struct {
	wProximity   float32
	wMovement    float32
	wStealth     float32
	wEnvironment float32

	maxDistance        float32
	riseRate           float32
	decayRate          float32
	concealmentPenalty float32
	cacheBucket        float32
	neutralEnvironment float32

	env EnvironmentSampler

	value   float32
	history []float32
	histLen int
	head    int

	// Detection results are stable within one update pass.
	cache map[detectKey]bool
}

// NewScorer builds a scorer from config. The environment sampler may
// be nil; the neutral factor is used instead.
func NewScorer(cfg *config.AwarenessConfig, env EnvironmentSampler) *Scorer {
	s := &Scorer{
		wProximity:         float32(cfg.ProximityWeight),
		wMovement:          float32(cfg.MovementWeight),
		wStealth:           float32(cfg.StealthWeight),
		wEnvironment:       float32(cfg.EnvironmentWeight),
		maxDistance:        float32(cfg.MaxDistance),
		riseRate:           float32(cfg.RiseRate),
		decayRate:          float32(cfg.DecayRate),
		concealmentPenalty: float32(cfg.ConcealmentPenalty),
		cacheBucket:        float32(cfg.CacheBucket),
		neutralEnvironment: float32(cfg.NeutralEnvironment),
		env:                env,
		history:            make([]float32, max(cfg.HistorySize, 1)),
		cache:              make(map[detectKey]bool, 16),
	}

	// Weights are validated at load time; renormalize anyway so a
	// hand-built config cannot push the score past 1.
	sum := s.wProximity + s.wMovement + s.wStealth + s.wEnvironment
	if sum > 1e-6 && math.Abs(float64(sum-1)) > 1e-3 {
		s.wProximity /= sum
		s.wMovement /= sum
		s.wStealth /= sum
		s.wEnvironment /= sum
	}
	if s.maxDistance <= 0 {
		s.maxDistance = 1
	}
	if s.cacheBucket <= 0 {
		s.cacheBucket = 1
	}
	return s
}

// Update advances the smoothed awareness by dt and returns it.
func (s *Scorer) Update(dt float32, target Target, threats []*Agent) float32 {
	if math.IsNaN(float64(dt)) || math.IsInf(float64(dt), 0) || dt < 0 {
		dt = 0
	}
	clear(s.cache)

	var raw float32
	if target != nil {
		raw = s.rawScore(target, threats)
	}
	// With no target there is nothing to be aware of; fall to zero.

	rate := s.decayRate
	if raw > s.value {
		rate = s.riseRate
	}
	alpha := rate * dt
	if alpha > 1 {
		alpha = 1
	}
	s.value += (raw - s.value) * alpha
	s.value = clamp01(s.value)

	s.history[s.head] = s.value
	s.head = (s.head + 1) % len(s.history)
	if s.histLen < len(s.history) {
		s.histLen++
	}
	return s.value
}

// rawScore blends the four weighted factors for this instant.
func (s *Scorer) rawScore(target Target, threats []*Agent) float32 {
	tpos := target.Position()

	var proximity float32
	for _, a := range threats {
		if a == nil {
			continue
		}
		d := tpos.DistXZ(a.Position())
		if !s.canDetectAmbusher(a, d) {
			continue
		}
		contrib := 1 - d/s.maxDistance
		if contrib > proximity {
			proximity = contrib
		}
	}
	proximity = clamp01(proximity)

	var movement float32
	switch target.MovementState() {
	case components.MoveRunning:
		movement = movementRun
	case components.MoveWalking:
		movement = movementWalk
	case components.MoveCrouching:
		movement = movementCrouch
	default:
		movement = movementIdle
	}

	stealth := clamp01(1 - target.StealthEffectiveness())

	environment := s.neutralEnvironment
	if s.env != nil {
		environment = clamp01(s.env.ConcealmentAt(tpos.X, tpos.Z))
	}

	return clamp01(s.wProximity*proximity + s.wMovement*movement +
		s.wStealth*stealth + s.wEnvironment*environment)
}

// canDetectAmbusher decides whether the target can register a threat
// at the given distance. Dead ambushers are always detectable; live
// ones shrink the spotting range with their concealment.
func (s *Scorer) canDetectAmbusher(a *Agent, dist float32) bool {
	if !a.Alive() {
		return true
	}
	key := detectKey{id: a.ID(), bucket: int32(dist / s.cacheBucket)}
	if v, ok := s.cache[key]; ok {
		return v
	}
	effective := s.maxDistance * (1 - a.Concealment()*s.concealmentPenalty)
	v := dist <= effective
	s.cache[key] = v
	return v
}

// Value returns the current smoothed awareness.
func (s *Scorer) Value() float32 {
	return s.value
}

// Tier returns the current awareness tier.
func (s *Scorer) Tier() Tier {
	return TierFor(s.value)
}

// History appends the recorded values, oldest first, to buf.
func (s *Scorer) History(buf []float32) []float32 {
	start := s.head - s.histLen
	for i := 0; i < s.histLen; i++ {
		idx := start + i
		if idx < 0 {
			idx += len(s.history)
		}
		buf = append(buf, s.history[idx%len(s.history)])
	}
	return buf
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
