package drill

import (
	_ "embed"
	"encoding/json"
	"log"
)

// seedJSON ships a starter catalog so the app is usable before any drills
// have been imported, and whenever the drill store is unreachable.
//go:embed drills.json
var seedJSON []byte

type seedDrill struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Duration     int               `json:"duration"`
	Achievements map[string]string `json:"achievements"`
}

func seedCatalog() map[string][]Drill {
	var raw map[string][]seedDrill
	if err := json.Unmarshal(seedJSON, &raw); err != nil {
		log.Printf("drill: corrupt seed catalog: %v", err)
		return map[string][]Drill{}
	}

	catalog := make(map[string][]Drill, len(raw))
	for category, ds := range raw {
		drills := make([]Drill, 0, len(ds))
		for _, sd := range ds {
			a := make(Achievements, len(sd.Achievements))
			for k, v := range sd.Achievements {
				if t, ok := ParseTier(k); ok {
					a[t] = v
				}
			}
			drills = append(drills, Drill{
				ID:           sd.ID,
				Category:     category,
				Name:         sd.Name,
				Description:  sd.Description,
				Duration:     sd.Duration,
				Achievements: a,
			})
		}
		catalog[category] = drills
	}
	return catalog
}

// SeedDrills flattens the embedded seed catalog, for the admin seeding command.
func SeedDrills() []Drill {
	var drills []Drill
	for _, ds := range seedCatalog() {
		drills = append(drills, ds...)
	}
	return drills
}
