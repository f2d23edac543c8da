package practice

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
)

// PlanRequest asks for a practice plan that fills the available minutes
// across the chosen focus areas. Tier, when set, keeps only drills the user
// currently holds at that tier.
type PlanRequest struct {
	AvailableMinutes int        `json:"available_minutes" validate:"required,min=10,max=240"`
	FocusAreas       []string   `json:"focus_areas" validate:"required,min=1,dive,category"`
	Tier             drill.Tier `json:"tier" validate:"omitempty,tier"`
}

func (pr *PlanRequest) Validate(validate *validator.Validate) error {
	for i, fa := range pr.FocusAreas {
		pr.FocusAreas[i] = core.CleanString(fa, true /* lower */)
	}
	return validate.Struct(pr)
}

// PlanArea is the drill packing for one focus area.
type PlanArea struct {
	Drills           []drill.Drill `json:"drills"`
	AllocatedMinutes int           `json:"allocated_minutes"`
	ActualMinutes    int           `json:"actual_minutes"`
}

// Plan is a generated practice session outline: a fixed warmup, then each
// focus area packed with drills up to its share of the remaining time.
type Plan struct {
	TotalMinutes  int                 `json:"total_minutes"`
	WarmupMinutes int                 `json:"warmup_minutes"`
	FocusAreas    []string            `json:"focus_areas"`
	Areas         map[string]PlanArea `json:"areas"`
}

// Notes renders the plan summary stored on a saved planned session.
func (p Plan) Notes() string {
	parts := make([]string, 0, len(p.FocusAreas))
	for _, fa := range p.FocusAreas {
		names := make([]string, 0, len(p.Areas[fa].Drills))
		for _, d := range p.Areas[fa].Drills {
			names = append(names, d.Name)
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", fa, strings.Join(names, ", ")))
	}
	return "Planned session: " + strings.Join(parts, "; ")
}

// BuildPlan reserves the warmup minutes, splits the remainder equally (floor)
// across the requested focus areas, then greedily packs shuffled drills into
// each bucket without overflowing it. Areas with no fitting drills come back
// empty rather than failing the whole plan.
func BuildPlan(
	catalog map[string][]drill.Drill,
	state AchievementState,
	req PlanRequest,
	conf core.PracticeConfig,
	rng *rand.Rand,
) Plan {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	remaining := req.AvailableMinutes - conf.WarmupMinutes
	if remaining < 0 {
		// a warmup longer than the session leaves nothing to allocate
		remaining = 0
	}
	areaTime := remaining / len(req.FocusAreas)

	plan := Plan{
		TotalMinutes:  req.AvailableMinutes,
		WarmupMinutes: conf.WarmupMinutes,
		FocusAreas:    req.FocusAreas,
		Areas:         make(map[string]PlanArea, len(req.FocusAreas)),
	}

	for _, fa := range req.FocusAreas {
		candidates := append([]drill.Drill(nil), catalog[fa]...)
		if req.Tier != "" {
			kept := candidates[:0]
			for _, d := range candidates {
				if state.TierFor(d.ID, drill.Tier(conf.DefaultTier)) == req.Tier {
					kept = append(kept, d)
				}
			}
			candidates = kept
		}
		// stable order before shuffling keeps plans reproducible under a
		// seeded rng regardless of catalog map iteration
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		area := PlanArea{AllocatedMinutes: areaTime}
		for _, d := range candidates {
			if area.ActualMinutes+d.Duration <= areaTime {
				area.Drills = append(area.Drills, d)
				area.ActualMinutes += d.Duration
			}
			if area.ActualMinutes >= areaTime {
				break
			}
		}
		plan.Areas[fa] = area
	}
	return plan
}
