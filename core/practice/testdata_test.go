package practice

import (
	"time"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
)

func testPracticeConfig() core.PracticeConfig {
	return core.PracticeConfig{
		DefaultTier:           string(drill.Tier1),
		RequirementTier:       string(drill.Tier1),
		DefaultTargetCount:    5,
		ImportDefaultDuration: 10,
		WarmupMinutes:         5,
		AddedAckDelay:         2 * time.Second,
	}
}

func testDrill(id, category string, duration int, tier1Text string) drill.Drill {
	return drill.Drill{
		ID:          id,
		Category:    category,
		Name:        id,
		Description: id + " description",
		Duration:    duration,
		Achievements: drill.Achievements{
			drill.Tier1: tier1Text,
			drill.Tier2: "harder: " + tier1Text,
			drill.Tier3: "hardest: " + tier1Text,
		},
	}
}
