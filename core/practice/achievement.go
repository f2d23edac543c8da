package practice

import "github.com/smanielp/cactusgolf/core/drill"

// AchievementState maps a drill identifier to the user's current mastery
// tier. Drills absent from the map are at the configured default tier.
type AchievementState map[string]drill.Tier

// TierFor returns the user's tier for a drill, or def when unset.
func (s AchievementState) TierFor(drillID string, def drill.Tier) drill.Tier {
	if t, ok := s[drillID]; ok && t.Valid() {
		return t
	}
	return def
}

func (s AchievementState) clone() AchievementState {
	out := make(AchievementState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Promote advances by exactly one tier every drill whose result met its
// requirement and whose current tier is below the top. Failed drills and
// drills already at tier3 are left unchanged. The input state is never
// mutated; calling Promote twice with the same inputs yields the same result
// as calling it once.
func Promote(state AchievementState, results []DrillResult, defaultTier drill.Tier) AchievementState {
	out := state.clone()
	for _, res := range results {
		if !res.Success() {
			continue
		}
		current := state.TierFor(res.Drill.ID, defaultTier)
		if next, ok := current.Next(); ok {
			out[res.Drill.ID] = next
		}
	}
	return out
}
