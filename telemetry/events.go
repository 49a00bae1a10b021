// Package telemetry provides hunt tracking, windowed statistics, and
// structured experiment output.
package telemetry

import (
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/components"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventAgentSpawn EventType = iota
	EventStrike
	EventStrikeHit
	EventKnockdown
	EventRetreat
	EventAgentDefeat
	EventPreyKill
	EventStageUp
	EventTigerDeath
)

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int32
	AgentID uint32
	Species predator.Species

	// Optional fields depending on event type
	Amount float32          // damage dealt to the tiger, or taken by the agent
	Stage  components.Stage // for stage-up events
}

// NewAgentSpawnEvent creates an agent spawn event.
func NewAgentSpawnEvent(tick int32, agentID uint32, species predator.Species) Event {
	return Event{
		Type:    EventAgentSpawn,
		Tick:    tick,
		AgentID: agentID,
		Species: species,
	}
}

// NewStrikeEvent creates a strike launch event.
func NewStrikeEvent(tick int32, agentID uint32, species predator.Species) Event {
	return Event{
		Type:    EventStrike,
		Tick:    tick,
		AgentID: agentID,
		Species: species,
	}
}

// NewStrikeHitEvent creates a successful ambush strike event.
func NewStrikeHitEvent(tick int32, agentID uint32, species predator.Species, damage float32) Event {
	return Event{
		Type:    EventStrikeHit,
		Tick:    tick,
		AgentID: agentID,
		Species: species,
		Amount:  damage,
	}
}

// NewKnockdownEvent creates a knockdown event.
func NewKnockdownEvent(tick int32, agentID uint32, species predator.Species) Event {
	return Event{
		Type:    EventKnockdown,
		Tick:    tick,
		AgentID: agentID,
		Species: species,
	}
}

// NewRetreatEvent creates an agent retreat event.
func NewRetreatEvent(tick int32, agentID uint32, species predator.Species) Event {
	return Event{
		Type:    EventRetreat,
		Tick:    tick,
		AgentID: agentID,
		Species: species,
	}
}

// NewAgentDefeatEvent creates an agent defeat event.
func NewAgentDefeatEvent(tick int32, agentID uint32, species predator.Species) Event {
	return Event{
		Type:    EventAgentDefeat,
		Tick:    tick,
		AgentID: agentID,
		Species: species,
	}
}

// NewPreyKillEvent creates a prey kill event (the tiger caught a
// grazer).
func NewPreyKillEvent(tick int32) Event {
	return Event{
		Type: EventPreyKill,
		Tick: tick,
	}
}

// NewStageUpEvent creates a stage promotion event.
func NewStageUpEvent(tick int32, stage components.Stage) Event {
	return Event{
		Type:  EventStageUp,
		Tick:  tick,
		Stage: stage,
	}
}

// NewTigerDeathEvent creates a tiger death event.
func NewTigerDeathEvent(tick int32) Event {
	return Event{
		Type: EventTigerDeath,
		Tick: tick,
	}
}
