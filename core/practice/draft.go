package practice

import (
	"time"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
)

// DraftEntry is one drill selected for an upcoming session, stamped with the
// tier the user held when they picked it.
type DraftEntry struct {
	Drill drill.Drill `json:"drill"`
	Tier  drill.Tier  `json:"tier"`
}

// AddedAck is the transient acknowledgment returned by AddDrill. Callers must
// clear it after ClearAfter regardless of further additions.
type AddedAck struct {
	Message    string        `json:"message"`
	ClearAfter time.Duration `json:"clear_after"`
}

// Draft accumulates the drills chosen for an upcoming practice session. It is
// transient: a cancelled draft persists nothing and has no side effects on
// achievements or the journal.
type Draft struct {
	entries []DraftEntry
	state   AchievementState
	conf    core.PracticeConfig
}

// NewDraft starts an empty draft over the user's achievement state.
func NewDraft(state AchievementState, conf core.PracticeConfig) *Draft {
	return &Draft{state: state, conf: conf}
}

// AddDrill appends a copy of the drill stamped with the user's current tier
// for it. The same drill may be added multiple times; duplicates are
// independent entries.
func (d *Draft) AddDrill(dr drill.Drill) AddedAck {
	d.entries = append(d.entries, DraftEntry{
		Drill: dr,
		Tier:  d.state.TierFor(dr.ID, drill.Tier(d.conf.DefaultTier)),
	})
	return AddedAck{Message: "Drill added to session!", ClearAfter: d.conf.AddedAckDelay}
}

// RemoveDrill removes every entry with the given drill id and returns how
// many were removed. Sweeping duplicates in one call is how the app has
// always behaved; callers that want positional removal must rebuild the
// draft.
func (d *Draft) RemoveDrill(drillID string) int {
	kept := d.entries[:0]
	removed := 0
	for _, e := range d.entries {
		if e.Drill.ID == drillID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept
	return removed
}

// Clear empties the draft without touching achievements or the journal.
func (d *Draft) Clear() {
	d.entries = nil
}

func (d *Draft) Len() int { return len(d.entries) }

// Entries returns the drills in insertion order.
func (d *Draft) Entries() []DraftEntry {
	out := make([]DraftEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// TotalDuration sums the constituent drill durations, in minutes.
func (d *Draft) TotalDuration() int {
	total := 0
	for _, e := range d.entries {
		total += e.Drill.Duration
	}
	return total
}

// Focus lists the distinct categories of the drafted drills, in insertion order.
func (d *Draft) Focus() []string {
	seen := make(map[string]bool, len(d.entries))
	var out []string
	for _, e := range d.entries {
		if !seen[e.Drill.Category] {
			seen[e.Drill.Category] = true
			out = append(out, e.Drill.Category)
		}
	}
	return out
}
