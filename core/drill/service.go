package drill

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core"
)

var (
	// errors
	ErrNotFound = errors.New("drill not found")
	ErrIDExists = errors.New("a drill with this id already exists")
)

type (
	Repository interface {
		CreateDrill(ctx context.Context, d Drill) (Drill, error)
		BulkCreateDrills(ctx context.Context, drills []Drill) (int, error)
		QueryAllDrills(ctx context.Context) ([]Drill, error)
		// FilterDrills applies AND on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Drill.Name or Drill.Description.
		FilterDrills(ctx context.Context, filter QueryFilter) ([]Drill, error)
		GetDrillByID(ctx context.Context, id string) (Drill, error)
		UpdateDrill(ctx context.Context, d Drill) (Drill, error)
		DeleteDrill(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
		conf   *core.Config
	}
)

func NewService(repo Repository, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, logger: logger, conf: conf}
}

// Catalog returns all drills grouped by category, ordered by name within each
// category. When the store is unavailable or empty it serves the embedded seed
// catalog instead, so callers always see a usable (possibly default) catalog.
func (svc *Service) Catalog(ctx context.Context) (map[string][]Drill, error) {
	drills, err := svc.repo.QueryAllDrills(ctx)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("drill catalog unavailable, serving seed: %v", err), err)
		return seedCatalog(), nil
	}
	if len(drills) == 0 {
		return seedCatalog(), nil
	}

	catalog := make(map[string][]Drill)
	for _, d := range drills {
		catalog[d.Category] = append(catalog[d.Category], d)
	}
	for _, ds := range catalog {
		ds := ds
		sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
	}
	return catalog, nil
}

func (svc *Service) Create(ctx context.Context, nd NewDrill) (Drill, error) {
	now := time.Now().UTC()
	d := Drill{
		ID:           nd.ID,
		Category:     nd.Category,
		Name:         nd.Name,
		Description:  nd.Description,
		Duration:     nd.Duration,
		Achievements: withDefaultAchievements(nd.Achievements, nd.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if d.ID == "" {
		d.ID = MakeID(d.Category, d.Name)
	}
	if _, err := svc.repo.GetDrillByID(ctx, d.ID); err == nil {
		// same name in the same category; fall back to a unique id
		d.ID = d.ID + "-" + uuid.New().String()[:8]
	}
	return svc.repo.CreateDrill(ctx, d)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Drill, error) {
	return svc.repo.QueryAllDrills(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Drill, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.repo.QueryAllDrills(ctx)
	}
	return svc.repo.FilterDrills(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Drill, error) {
	return svc.repo.GetDrillByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ud UpdateDrill) (Drill, error) {
	d := Drill{
		ID:           id,
		Category:     ud.Category,
		Name:         ud.Name,
		Description:  ud.Description,
		Duration:     ud.Duration,
		Achievements: ud.Achievements,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateDrill(ctx, d)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteDrill(ctx, id)
}

// Seed loads the embedded starter catalog into the store, skipping drills
// that already exist. Returns how many were created.
func (svc *Service) Seed(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	drills := SeedDrills()
	for i := range drills {
		if drills[i].ID == "" {
			drills[i].ID = MakeID(drills[i].Category, drills[i].Name)
		}
		drills[i].Achievements = withDefaultAchievements(drills[i].Achievements, drills[i].Name)
		drills[i].CreatedAt = now
		drills[i].UpdatedAt = now
	}
	return svc.repo.BulkCreateDrills(ctx, drills)
}

// withDefaultAchievements fills any missing tier text the way the original
// catalog import did.
func withDefaultAchievements(a Achievements, name string) Achievements {
	out := make(Achievements, len(Tiers))
	for k, v := range a {
		out[k] = v
	}
	if out[Tier1] == "" {
		out[Tier1] = fmt.Sprintf("Complete the %s drill", name)
	}
	if out[Tier2] == "" {
		out[Tier2] = fmt.Sprintf("Improve performance in the %s drill", name)
	}
	if out[Tier3] == "" {
		out[Tier3] = fmt.Sprintf("Master the %s drill", name)
	}
	return out
}
