package practice

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/smanielp/cactusgolf/core/drill"
)

func testCatalog() map[string][]drill.Drill {
	return map[string][]drill.Drill{
		"putting": {
			testDrill("putting-gate", "putting", 15, "Make 5 out of 8 putts"),
			testDrill("putting-ladder", "putting", 10, "Lag 6 putts inside 3 feet"),
			testDrill("putting-clock", "putting", 20, "Hole 9 around the clock"),
		},
		"chipping": {
			testDrill("chipping-towel", "chipping", 10, "Land 3 chips on the towel"),
			testDrill("chipping-updown", "chipping", 25, "Get up and down 4 times"),
		},
	}
}

func TestBuildPlanSplitsTime(t *testing.T) {
	conf := testPracticeConfig() // 5 warmup minutes
	req := PlanRequest{AvailableMinutes: 60, FocusAreas: []string{"putting", "chipping"}}

	plan := BuildPlan(testCatalog(), AchievementState{}, req, conf, rand.New(rand.NewSource(1)))

	if plan.TotalMinutes != 60 || plan.WarmupMinutes != 5 {
		t.Errorf("TotalMinutes=%d WarmupMinutes=%d, want 60/5", plan.TotalMinutes, plan.WarmupMinutes)
	}
	if !reflect.DeepEqual(plan.FocusAreas, req.FocusAreas) {
		t.Errorf("FocusAreas = %v", plan.FocusAreas)
	}

	// (60-5)/2 = 27 per area, floor division
	for _, fa := range req.FocusAreas {
		area := plan.Areas[fa]
		if area.AllocatedMinutes != 27 {
			t.Errorf("%s AllocatedMinutes = %d, want 27", fa, area.AllocatedMinutes)
		}
		if area.ActualMinutes > area.AllocatedMinutes {
			t.Errorf("%s overflows its bucket: %d > %d", fa, area.ActualMinutes, area.AllocatedMinutes)
		}
		total := 0
		for _, d := range area.Drills {
			if d.Category != fa {
				t.Errorf("%s contains drill %s from category %s", fa, d.ID, d.Category)
			}
			total += d.Duration
		}
		if total != area.ActualMinutes {
			t.Errorf("%s ActualMinutes = %d, drills sum to %d", fa, area.ActualMinutes, total)
		}
	}
}

func TestBuildPlanReproducible(t *testing.T) {
	conf := testPracticeConfig()
	req := PlanRequest{AvailableMinutes: 45, FocusAreas: []string{"putting"}}

	a := BuildPlan(testCatalog(), AchievementState{}, req, conf, rand.New(rand.NewSource(42)))
	b := BuildPlan(testCatalog(), AchievementState{}, req, conf, rand.New(rand.NewSource(42)))
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different plans")
	}
}

func TestBuildPlanTierFilter(t *testing.T) {
	conf := testPracticeConfig()
	state := AchievementState{"putting-gate": drill.Tier2}
	req := PlanRequest{AvailableMinutes: 60, FocusAreas: []string{"putting"}, Tier: drill.Tier2}

	plan := BuildPlan(testCatalog(), state, req, conf, rand.New(rand.NewSource(1)))

	area := plan.Areas["putting"]
	if len(area.Drills) != 1 || area.Drills[0].ID != "putting-gate" {
		t.Errorf("tier filter kept %v, want only putting-gate", area.Drills)
	}
}

func TestBuildPlanEmptyArea(t *testing.T) {
	conf := testPracticeConfig()
	req := PlanRequest{AvailableMinutes: 60, FocusAreas: []string{"bunker"}}

	plan := BuildPlan(testCatalog(), AchievementState{}, req, conf, rand.New(rand.NewSource(1)))

	area, ok := plan.Areas["bunker"]
	if !ok {
		t.Fatal("missing area for bunker")
	}
	if len(area.Drills) != 0 || area.ActualMinutes != 0 {
		t.Errorf("empty category produced drills: %v", area)
	}
}

func TestBuildPlanWarmupLongerThanSession(t *testing.T) {
	conf := testPracticeConfig()
	conf.WarmupMinutes = 90
	req := PlanRequest{AvailableMinutes: 60, FocusAreas: []string{"putting"}}

	plan := BuildPlan(testCatalog(), AchievementState{}, req, conf, rand.New(rand.NewSource(1)))

	area := plan.Areas["putting"]
	if area.AllocatedMinutes != 0 {
		t.Errorf("AllocatedMinutes = %d, want 0", area.AllocatedMinutes)
	}
	if len(area.Drills) != 0 || area.ActualMinutes != 0 {
		t.Errorf("oversize warmup still packed drills: %+v", area)
	}
}

func TestPlanNotes(t *testing.T) {
	p := Plan{
		FocusAreas: []string{"putting", "chipping"},
		Areas: map[string]PlanArea{
			"putting":  {Drills: []drill.Drill{{Name: "Gate"}, {Name: "Ladder"}}},
			"chipping": {Drills: []drill.Drill{{Name: "Towel"}}},
		},
	}
	want := "Planned session: putting (Gate, Ladder); chipping (Towel)"
	if got := p.Notes(); got != want {
		t.Errorf("Notes() = %q, want %q", got, want)
	}
}
