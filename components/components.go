// Package components defines the shared leaf types and ECS components
// used across the simulation.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float32
}

// Vec returns the position as a vector.
func (p Position) Vec() Vec3 {
	return Vec3{p.X, p.Y, p.Z}
}

// SetVec overwrites the position from a vector.
func (p *Position) SetVec(v Vec3) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y, Z float32
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// SetVec overwrites the velocity from a vector.
func (v *Velocity) SetVec(o Vec3) {
	v.X, v.Y, v.Z = o.X, o.Y, o.Z
}

// Grazer holds the per-animal state of a prey herd member.
type Grazer struct {
	Speed  float32 // individual cruise speed variation
	Calm   float32 // seconds until the next wander retarget
	Flee   float32 // seconds of panic remaining
	HerdID uint8
}

// MovementState tags how the target is currently moving.
type MovementState uint8

const (
	MoveIdle MovementState = iota
	MoveWalking
	MoveRunning
	MoveCrouching
)

// String returns a human-readable movement state name.
func (m MovementState) String() string {
	switch m {
	case MoveIdle:
		return "idle"
	case MoveWalking:
		return "walking"
	case MoveRunning:
		return "running"
	case MoveCrouching:
		return "crouching"
	default:
		return "unknown"
	}
}

// Stage is the target's evolution stage. Later stages mean a more
// developed animal.
type Stage uint8

const (
	StageCub Stage = iota
	StageJuvenile
	StageAdult
	StageApex
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageCub:
		return "cub"
	case StageJuvenile:
		return "juvenile"
	case StageAdult:
		return "adult"
	case StageApex:
		return "apex"
	default:
		return "unknown"
	}
}
