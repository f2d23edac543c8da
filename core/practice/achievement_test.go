package practice

import (
	"testing"

	"github.com/smanielp/cactusgolf/core/drill"
)

func result(id string, achieved, required int) DrillResult {
	return DrillResult{
		Drill:       testDrill(id, "putting", 10, "drill"),
		Achieved:    achieved,
		Requirement: Requirement{Count: required},
	}
}

func TestAchievementStateTierFor(t *testing.T) {
	state := AchievementState{
		"known":   drill.Tier2,
		"corrupt": drill.Tier("expert"), // unknown value from an old export
	}
	if got := state.TierFor("known", drill.Tier1); got != drill.Tier2 {
		t.Errorf("TierFor(known) = %s, want %s", got, drill.Tier2)
	}
	if got := state.TierFor("unseen", drill.Tier1); got != drill.Tier1 {
		t.Errorf("TierFor(unseen) = %s, want %s", got, drill.Tier1)
	}
	if got := state.TierFor("corrupt", drill.Tier1); got != drill.Tier1 {
		t.Errorf("TierFor(corrupt) = %s, want %s", got, drill.Tier1)
	}
}

func TestPromote(t *testing.T) {
	state := AchievementState{
		"mid": drill.Tier2,
		"top": drill.Tier3,
	}

	results := []DrillResult{
		result("new", 5, 5),  // success, unseen -> default tier1 -> tier2
		result("mid", 6, 5),  // success, tier2 -> tier3
		result("top", 9, 5),  // success but already at the cap
		result("fail", 2, 5), // failure, untouched
	}

	got := Promote(state, results, drill.Tier1)

	want := AchievementState{
		"new": drill.Tier2,
		"mid": drill.Tier3,
		"top": drill.Tier3,
	}
	for id, tier := range want {
		if got.TierFor(id, drill.Tier1) != tier {
			t.Errorf("promoted[%s] = %s, want %s", id, got[id], tier)
		}
	}
	if _, ok := got["fail"]; ok {
		t.Error("failed drill was promoted")
	}

	// input state untouched
	if state["mid"] != drill.Tier2 {
		t.Errorf("input state mutated: mid = %s", state["mid"])
	}
	if _, ok := state["new"]; ok {
		t.Error("input state mutated: new added")
	}
}

// A drill appearing twice in one session advances one tier, not two: both
// lookups read the pre-session state.
func TestPromoteDuplicateDrillOneTier(t *testing.T) {
	results := []DrillResult{
		result("putting-gate", 5, 5),
		result("putting-gate", 7, 5),
	}
	got := Promote(AchievementState{}, results, drill.Tier1)
	if got["putting-gate"] != drill.Tier2 {
		t.Errorf("duplicate success promoted to %s, want %s", got["putting-gate"], drill.Tier2)
	}
}

func TestPromoteIdempotent(t *testing.T) {
	state := AchievementState{"mid": drill.Tier2}
	results := []DrillResult{result("mid", 6, 5)}

	once := Promote(state, results, drill.Tier1)
	twice := Promote(state, results, drill.Tier1)
	if once["mid"] != twice["mid"] {
		t.Errorf("Promote not repeatable: %s vs %s", once["mid"], twice["mid"])
	}
}
