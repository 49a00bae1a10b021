package telemetry

import "github.com/stevelikesmusic/tiger-evolution-3d-sub001/predator"

// Hunt outcomes.
const (
	OutcomeKilled   = "killed"   // the tiger defeated the agent
	OutcomeRetired  = "retired"  // the agent despawned on its own
	OutcomeDisposed = "disposed" // the run ended while the hunt was live
)

// HuntRecord tracks one agent from spawn to removal.
type HuntRecord struct {
	AgentID     uint32  `csv:"agent_id"`
	Species     string  `csv:"species"`
	SpawnTick   int32   `csv:"spawn_tick"`
	EndTick     int32   `csv:"end_tick"`
	LifetimeSec float32 `csv:"lifetime_sec"`
	Strikes     int     `csv:"strikes"`
	Hits        int     `csv:"hits"`
	Knockdowns  int     `csv:"knockdowns"`
	DamageDealt float32 `csv:"damage_dealt"`
	DamageTaken float32 `csv:"damage_taken"`
	Outcome     string  `csv:"outcome"`
}

// HuntTracker manages per-agent hunt records.
type HuntTracker struct {
	records map[uint32]*HuntRecord
	dt      float32
}

// NewHuntTracker creates a new hunt tracker.
// dt: seconds per tick (used for lifetime conversion).
func NewHuntTracker(dt float32) *HuntTracker {
	return &HuntTracker{
		records: make(map[uint32]*HuntRecord),
		dt:      dt,
	}
}

// Register opens a record for a freshly spawned agent.
func (ht *HuntTracker) Register(agentID uint32, species predator.Species, spawnTick int32) {
	ht.records[agentID] = &HuntRecord{
		AgentID:   agentID,
		Species:   species.String(),
		SpawnTick: spawnTick,
	}
}

// Get returns the record for an agent, or nil if not found.
func (ht *HuntTracker) Get(agentID uint32) *HuntRecord {
	return ht.records[agentID]
}

// RecordStrike increments strike count.
func (ht *HuntTracker) RecordStrike(agentID uint32) {
	if r := ht.records[agentID]; r != nil {
		r.Strikes++
	}
}

// RecordHit increments successful ambush count and damage dealt.
func (ht *HuntTracker) RecordHit(agentID uint32, damage float32, knockdown bool) {
	if r := ht.records[agentID]; r != nil {
		r.Hits++
		r.DamageDealt += damage
		if knockdown {
			r.Knockdowns++
		}
	}
}

// RecordDamageTaken adds damage the tiger dealt to the agent.
func (ht *HuntTracker) RecordDamageTaken(agentID uint32, amount float32) {
	if r := ht.records[agentID]; r != nil {
		r.DamageTaken += amount
	}
}

// Close finalizes a record with an outcome and returns it for output.
// Returns nil for unknown agents.
func (ht *HuntTracker) Close(agentID uint32, endTick int32, outcome string) *HuntRecord {
	r := ht.records[agentID]
	if r == nil {
		return nil
	}
	delete(ht.records, agentID)
	r.EndTick = endTick
	r.LifetimeSec = float32(endTick-r.SpawnTick) * ht.dt
	r.Outcome = outcome
	return r
}

// CloseAll finalizes every live record, for end-of-run draining.
func (ht *HuntTracker) CloseAll(endTick int32, outcome string) []*HuntRecord {
	out := make([]*HuntRecord, 0, len(ht.records))
	for id := range ht.records {
		out = append(out, ht.Close(id, endTick, outcome))
	}
	return out
}

// IDs appends the IDs of all live records to buf and returns it.
func (ht *HuntTracker) IDs(buf []uint32) []uint32 {
	for id := range ht.records {
		buf = append(buf, id)
	}
	return buf
}

// Count returns the number of live hunt records.
func (ht *HuntTracker) Count() int {
	return len(ht.records)
}
